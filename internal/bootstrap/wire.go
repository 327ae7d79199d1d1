package bootstrap

import (
	"context"
	"fmt"

	"maestro/internal/audio"
	"maestro/internal/automation"
	"maestro/internal/config"
	"maestro/internal/domain"
	"maestro/internal/history"
	"maestro/internal/hotkeys"
	"maestro/internal/mode"
	"maestro/internal/ports"
	"maestro/internal/providers/deepgram"
	"maestro/internal/providers/openai"
	"maestro/internal/settings"
	"maestro/internal/shortcut"
	"maestro/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Controller *usecase.SessionController
	Registry   *shortcut.Registry
	Catalog    *mode.Catalog
	Settings   *settings.Store
	Secrets    *settings.Keychain
	History    *history.SQLiteStore
	Config     config.Config
	Current    settings.Settings
}

// Build wires all backend dependencies for the current runtime. The clipboard
// comes from the caller because it is backed by the UI runtime.
func Build(eventSink ports.EventSink, clipboard ports.Clipboard) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	settingsStore := settings.NewStore(cfg.Paths.SettingsFile)
	current, err := settingsStore.Load()
	if err != nil {
		return Services{}, fmt.Errorf("load settings: %w", err)
	}

	secrets := settings.NewSecretStore("maestro")
	catalog := mode.NewCatalog(current.Modes)

	historyStore, err := history.NewSQLiteStore(cfg.Paths.HistoryDB)
	if err != nil {
		return Services{}, fmt.Errorf("open history: %w", err)
	}

	transcriber, transformer, err := buildProviders(cfg, current, secrets)
	if err != nil {
		historyStore.Close()
		return Services{}, err
	}

	probe, paster := newAutomation()
	controller := usecase.NewSessionController(
		audio.NewFFMPEGRecorder(cfg.Audio.RecorderCommand),
		transcriber,
		transformer,
		catalog,
		historyStore,
		clipboard,
		probe,
		paster,
		eventSink,
		usecase.Config{
			Audio: ports.AudioConfig{
				SampleRate:  cfg.Audio.SampleRate,
				Channels:    cfg.Audio.Channels,
				InputFormat: cfg.Audio.InputFormat,
				InputDevice: cfg.Audio.InputDevice,
			},
			MinAudioBytes: cfg.Session.MinAudioBytes,
		},
	)
	controller.SetUserName(current.UserName)
	controller.SetSelectedMode(current.SelectedMode)

	registry := shortcut.NewRegistry(hotkeys.New(), eventSink)
	registry.SetHandler(func(purpose domain.Purpose) {
		controller.HandleDispatch(context.Background(), purpose)
	})

	return Services{
		Controller: controller,
		Registry:   registry,
		Catalog:    catalog,
		Settings:   settingsStore,
		Secrets:    secrets,
		History:    historyStore,
		Config:     cfg,
		Current:    current,
	}, nil
}

// ApplyShortcuts registers the toggle and per-mode bindings for the current
// settings. Individual mode conflicts are reported through the event sink;
// only a failed toggle registration is an error.
func (s Services) ApplyShortcuts() error {
	combo, err := shortcut.ParseAccelerator(s.Current.RecordingShortcut)
	if err != nil {
		combo, _ = shortcut.ParseAccelerator(settings.Default().RecordingShortcut)
	}
	if err := s.Registry.SetToggleBinding(combo); err != nil {
		return fmt.Errorf("register recording shortcut: %w", err)
	}
	s.Registry.SetModeBindings(s.Catalog.List())
	return nil
}

// Close releases held resources and unregisters global shortcuts.
func (s Services) Close() error {
	if s.Registry != nil {
		s.Registry.Clear()
	}
	if s.History != nil {
		return s.History.Close()
	}
	return nil
}

func newAutomation() (ports.FocusProbe, ports.Paster) {
	return automation.NewProbe(), automation.NewPaster()
}

// buildProviders resolves API keys (environment first, then keychain) and
// picks the transcription backend the settings ask for.
func buildProviders(cfg config.Config, current settings.Settings, secrets *settings.Keychain) (ports.Transcriber, ports.Transformer, error) {
	openaiKey := cfg.OpenAI.APIKey
	if openaiKey == "" {
		openaiKey, _ = secrets.Get("openai_api_key")
	}

	transcriptionModel := current.TranscriptionModel
	if transcriptionModel == "" {
		transcriptionModel = cfg.OpenAI.TranscriptionModel
	}
	chatModel := current.ChatModel
	if chatModel == "" {
		chatModel = cfg.OpenAI.ChatModel
	}

	transformer := openai.NewTransformer(openai.Config{
		APIKey:          openaiKey,
		APIBaseURL:      cfg.OpenAI.APIBaseURL,
		ChatModel:       chatModel,
		Personalization: current.Personalization,
	})

	var transcriber ports.Transcriber
	switch current.Provider {
	case "deepgram":
		deepgramKey := cfg.Deepgram.APIKey
		if deepgramKey == "" {
			deepgramKey, _ = secrets.Get("deepgram_api_key")
		}
		transcriber = deepgram.NewTranscriber(deepgram.Config{
			APIKey:      deepgramKey,
			APIBaseURL:  cfg.Deepgram.APIBaseURL,
			Model:       cfg.Deepgram.Model,
			Language:    current.Language,
			SmartFormat: cfg.Deepgram.SmartFormat,
		})
	case "", "openai":
		transcriber = openai.NewTranscriber(openai.Config{
			APIKey:             openaiKey,
			APIBaseURL:         cfg.OpenAI.APIBaseURL,
			TranscriptionModel: transcriptionModel,
			Language:           current.Language,
		})
	default:
		return nil, nil, fmt.Errorf("unknown transcription provider %q", current.Provider)
	}

	return transcriber, transformer, nil
}
