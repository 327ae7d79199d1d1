// Package settings persists user preferences as a JSON file under the user
// config directory and API keys in the system keychain.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"maestro/internal/domain"
)

// Settings are the user-editable preferences. Modes holds the persisted mode
// catalog (edited built-ins plus custom modes); a missing or partial list is
// merged over the shipped defaults at load time.
type Settings struct {
	UserName           string        `json:"userName"`
	Provider           string        `json:"provider"`
	TranscriptionModel string        `json:"transcriptionModel,omitempty"`
	ChatModel          string        `json:"chatModel,omitempty"`
	Language           string        `json:"language,omitempty"`
	RecordingShortcut  string        `json:"recordingShortcut"`
	Personalization    []string      `json:"personalization,omitempty"`
	SelectedMode       string        `json:"selectedMode"`
	Modes              []domain.Mode `json:"modes,omitempty"`
}

// Default returns the first-run settings.
func Default() Settings {
	return Settings{
		UserName:          "User",
		Provider:          "openai",
		RecordingShortcut: "CommandOrControl+,",
		SelectedMode:      "none",
	}
}

// Store reads and writes the settings file.
type Store struct {
	mu   sync.Mutex
	path string
}

// DefaultPath is the settings file location under the user config directory.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "maestro", "settings.json")
}

func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{path: path}
}

// Load returns the persisted settings, falling back to defaults for a
// missing file and for empty required fields.
func (s *Store) Load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := Default()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}

	if settings.UserName == "" {
		settings.UserName = "User"
	}
	if settings.Provider == "" {
		settings.Provider = "openai"
	}
	if settings.RecordingShortcut == "" {
		settings.RecordingShortcut = "CommandOrControl+,"
	}
	if settings.SelectedMode == "" {
		settings.SelectedMode = "none"
	}
	return settings, nil
}

func (s *Store) Save(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
