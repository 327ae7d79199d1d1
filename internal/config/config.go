package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config stores runtime configuration resolved from the environment.
// Preferences the user edits in the UI live in the settings store; this
// covers deploy-time knobs and API credentials supplied via env.
type Config struct {
	OpenAI   OpenAIConfig
	Deepgram DeepgramConfig
	Audio    AudioConfig
	Session  SessionConfig
	Paths    PathsConfig
}

type OpenAIConfig struct {
	APIKey             string
	APIBaseURL         string
	TranscriptionModel string
	ChatModel          string
}

type DeepgramConfig struct {
	APIKey      string
	APIBaseURL  string
	Model       string
	SmartFormat bool
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
}

type SessionConfig struct {
	MinAudioBytes int
}

type PathsConfig struct {
	SettingsFile string
	HistoryDB    string
}

// Load resolves configuration from environment variables and sensible defaults.
func Load() (Config, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return Config{}, errors.New("could not determine config directory")
		}
		base = filepath.Join(home, ".config")
	}
	configDir := filepath.Join(base, "maestro")

	cfg := Config{
		OpenAI: OpenAIConfig{
			APIKey:             strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
			APIBaseURL:         envOrDefault("OPENAI_API_BASE", "https://api.openai.com/v1"),
			TranscriptionModel: envOrDefault("MAESTRO_TRANSCRIPTION_MODEL", "whisper-1"),
			ChatModel:          envOrDefault("MAESTRO_CHAT_MODEL", "gpt-4o-mini"),
		},
		Deepgram: DeepgramConfig{
			APIKey:      strings.TrimSpace(os.Getenv("DEEPGRAM_API_KEY")),
			APIBaseURL:  envOrDefault("DEEPGRAM_API_BASE", "https://api.deepgram.com/v1"),
			Model:       envOrDefault("DEEPGRAM_MODEL", "nova-2"),
			SmartFormat: envOrDefaultBool("DEEPGRAM_SMART_FORMAT", true),
		},
		Audio: AudioConfig{
			RecorderCommand: envOrDefault("MAESTRO_FFMPEG_COMMAND", "ffmpeg"),
			InputFormat:     strings.TrimSpace(os.Getenv("MAESTRO_AUDIO_INPUT_FORMAT")),
			InputDevice:     strings.TrimSpace(os.Getenv("MAESTRO_AUDIO_INPUT_DEVICE")),
			SampleRate:      envOrDefaultInt("MAESTRO_SAMPLE_RATE", 16000),
			Channels:        envOrDefaultInt("MAESTRO_CHANNELS", 1),
		},
		Session: SessionConfig{
			MinAudioBytes: envOrDefaultInt("MAESTRO_MIN_AUDIO_BYTES", 1024),
		},
		Paths: PathsConfig{
			SettingsFile: envOrDefault("MAESTRO_SETTINGS_FILE", filepath.Join(configDir, "settings.json")),
			HistoryDB:    envOrDefault("MAESTRO_HISTORY_DB", filepath.Join(configDir, "history.db")),
		},
	}

	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Session.MinAudioBytes < 0 {
		cfg.Session.MinAudioBytes = 1024
	}

	return cfg, nil
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
