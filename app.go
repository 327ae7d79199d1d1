package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"maestro/internal/bootstrap"
	"maestro/internal/domain"
	"maestro/internal/mode"
	"maestro/internal/settings"
	"maestro/internal/shortcut"
	"maestro/internal/usecase"
)

const (
	eventSession  = "maestro:session"
	eventFinal    = "maestro:final"
	eventError    = "maestro:error"
	eventConflict = "maestro:conflict"
)

// App is the Wails application root. It implements ports.EventSink so the
// backend can push session updates straight to the frontend.
type App struct {
	ctx context.Context

	services bootstrap.Services
	bootErr  error
}

func NewApp() *App {
	return &App{}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a, &wailsClipboard{})
	if err != nil {
		a.bootErr = err
		a.SessionError(domain.ErrorCodeStartup, err.Error())
		return
	}
	a.services = services

	if err := services.ApplyShortcuts(); err != nil {
		a.SessionError(domain.ErrorCodeRegistration, err.Error())
	}
	if !a.HasAPIKey(services.Current.Provider) {
		a.SessionError(domain.ErrorCodeMissingAPIKey,
			fmt.Sprintf("no %s API key found; add one in settings", services.Current.Provider))
	}
	a.SessionStateChanged(domain.SessionStateIdle, domain.SessionReasonReady)
}

func (a *App) shutdown(_ context.Context) {
	if a.services.Controller != nil {
		_ = a.services.Close()
	}
}

// ToggleRecording starts a recording from idle and stops it while recording,
// exactly like the global shortcut.
func (a *App) ToggleRecording() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	a.services.Controller.HandleDispatch(a.ctx, domain.Purpose{Kind: domain.PurposeToggle})
	return a.services.Controller.Status(), nil
}

// StartModeRecording starts a recording that will be transformed with the
// given mode regardless of the selected one.
func (a *App) StartModeRecording(modeID string) (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	a.services.Controller.HandleDispatch(a.ctx, domain.Purpose{Kind: domain.PurposeStartInMode, ModeID: modeID})
	return a.services.Controller.Status(), nil
}

// CancelRecording discards an in-progress recording.
func (a *App) CancelRecording() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if err := a.services.Controller.Cancel(); err != nil {
		if errors.Is(err, usecase.ErrNoActiveSession) {
			return nil
		}
		return err
	}
	return nil
}

// GetStatus returns the current session status.
func (a *App) GetStatus() domain.Status {
	if a.services.Controller == nil {
		if a.bootErr != nil {
			return domain.Status{State: domain.SessionStateError, Active: false, Message: a.bootErr.Error()}
		}
		return domain.Status{State: domain.SessionStateIdle, Active: false}
	}
	return a.services.Controller.Status()
}

// GetModes returns the mode catalog in display order.
func (a *App) GetModes() ([]domain.Mode, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	return a.services.Catalog.List(), nil
}

// SaveMode creates or updates a mode and re-registers its shortcut.
func (a *App) SaveMode(m domain.Mode) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if m.Shortcut != "" {
		combo, err := shortcut.ParseAccelerator(m.Shortcut)
		if err != nil {
			return fmt.Errorf("invalid shortcut %q: %w", m.Shortcut, err)
		}
		if !shortcut.IsValid(combo) {
			return fmt.Errorf("shortcut %q needs a modifier or function key", m.Shortcut)
		}
	}
	if err := a.services.Catalog.Upsert(m); err != nil {
		return err
	}
	a.services.Registry.SetModeBindings(a.services.Catalog.List())
	return a.persistModes()
}

// DeleteMode removes a user-created mode. Built-ins are protected.
func (a *App) DeleteMode(id string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if err := a.services.Catalog.Remove(id); err != nil {
		return err
	}
	if a.selectedMode() == id {
		a.SetSelectedMode(mode.NoopModeID)
	}
	a.services.Registry.SetModeBindings(a.services.Catalog.List())
	return a.persistModes()
}

// ResetMode restores a built-in mode to its shipped definition.
func (a *App) ResetMode(id string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if err := a.services.Catalog.ResetToDefault(id); err != nil {
		return err
	}
	a.services.Registry.SetModeBindings(a.services.Catalog.List())
	return a.persistModes()
}

// SetSelectedMode records the mode used by plain toggle recordings.
func (a *App) SetSelectedMode(id string) {
	if a.services.Controller == nil {
		return
	}
	a.services.Controller.SetSelectedMode(id)
	a.services.Current.SelectedMode = id
	_ = a.services.Settings.Save(a.services.Current)
}

// GetSettings returns the persisted preferences.
func (a *App) GetSettings() (settings.Settings, error) {
	if err := a.requireReady(); err != nil {
		return settings.Settings{}, err
	}
	return a.services.Current, nil
}

// SaveSettings persists preferences and applies the ones that take effect
// immediately. Provider and model changes apply on the next launch.
func (a *App) SaveSettings(s settings.Settings) error {
	if err := a.requireReady(); err != nil {
		return err
	}

	if s.RecordingShortcut != a.services.Current.RecordingShortcut {
		combo, err := shortcut.ParseAccelerator(s.RecordingShortcut)
		if err != nil {
			return fmt.Errorf("invalid recording shortcut %q: %w", s.RecordingShortcut, err)
		}
		if err := a.services.Registry.SetToggleBinding(combo); err != nil {
			return err
		}
		a.services.Registry.SetModeBindings(a.services.Catalog.List())
	}

	s.Modes = a.services.Catalog.List()
	if err := a.services.Settings.Save(s); err != nil {
		return err
	}
	a.services.Current = s
	a.services.Controller.SetUserName(s.UserName)
	a.services.Controller.SetSelectedMode(s.SelectedMode)
	return nil
}

// SaveAPIKey stores a provider API key in the keychain.
func (a *App) SaveAPIKey(provider string, key string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	switch provider {
	case "openai", "deepgram":
		return a.services.Secrets.Set(provider+"_api_key", strings.TrimSpace(key))
	default:
		return fmt.Errorf("unknown provider %q", provider)
	}
}

// HasAPIKey reports whether a key is available for the provider, from either
// the environment or the keychain.
func (a *App) HasAPIKey(provider string) bool {
	if a.services.Secrets == nil {
		return false
	}
	switch provider {
	case "openai":
		if a.services.Config.OpenAI.APIKey != "" {
			return true
		}
	case "deepgram":
		if a.services.Config.Deepgram.APIKey != "" {
			return true
		}
	default:
		return false
	}
	stored, _ := a.services.Secrets.Get(provider + "_api_key")
	return stored != ""
}

// GetHistory returns the most recent dictations, newest first.
func (a *App) GetHistory(limit int) ([]domain.HistoryEntry, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	return a.services.History.List(a.ctx, limit)
}

// DeleteHistoryItem removes one dictation.
func (a *App) DeleteHistoryItem(id string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.History.Delete(a.ctx, id)
}

// ClearHistory removes all dictations.
func (a *App) ClearHistory() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.History.Clear(a.ctx)
}

// CopyToClipboard copies text on behalf of the frontend (history re-copy).
func (a *App) CopyToClipboard(text string) error {
	if a.ctx == nil {
		return errors.New("application is not initialized")
	}
	return runtime.ClipboardSetText(a.ctx, text)
}

// ShortcutDescription is the capture widget's view of a pressed key combo.
type ShortcutDescription struct {
	Accelerator string `json:"accelerator"`
	Display     string `json:"display"`
	Valid       bool   `json:"valid"`
	Error       string `json:"error,omitempty"`
}

// DescribeShortcut normalizes a raw key event into an accelerator and a
// display string, reporting whether it can be saved.
func (a *App) DescribeShortcut(ev domain.KeyEvent) ShortcutDescription {
	combo, err := shortcut.ParseKeyEvent(ev)
	if err != nil {
		return ShortcutDescription{Error: err.Error()}
	}
	return ShortcutDescription{
		Accelerator: shortcut.Accelerator(combo),
		Display:     shortcut.DisplayString(combo),
		Valid:       shortcut.IsValid(combo),
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.services.Controller == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

func (a *App) selectedMode() string {
	return a.services.Current.SelectedMode
}

func (a *App) persistModes() error {
	a.services.Current.Modes = a.services.Catalog.List()
	return a.services.Settings.Save(a.services.Current)
}

// SessionStateChanged emits session lifecycle updates to the frontend.
func (a *App) SessionStateChanged(state domain.SessionState, reason domain.SessionStateReason) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventSession, map[string]string{
		"state":   string(state),
		"reason":  string(reason),
		"message": sessionReasonMessage(reason),
	})
}

// FinalTranscript emits the finished dictation. When the decision was to show
// the window instead of pasting, the window is surfaced as well.
func (a *App) FinalTranscript(raw string, final string, result domain.DeliveryResult) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventFinal, map[string]any{
		"raw":    raw,
		"final":  final,
		"method": string(result.Method),
		"copied": result.Copied,
	})
	if result.Method == domain.DeliverShowWindow {
		runtime.WindowShow(a.ctx)
	}
}

// SessionError emits backend errors to the UI.
func (a *App) SessionError(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

// ShortcutConflict tells the UI that a mode shortcut was skipped.
func (a *App) ShortcutConflict(modeID string, accelerator string, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventConflict, map[string]string{
		"modeId":      modeID,
		"accelerator": accelerator,
		"detail":      detail,
	})
}

func sessionReasonMessage(reason domain.SessionStateReason) string {
	switch reason {
	case domain.SessionReasonReady:
		return "Ready"
	case domain.SessionReasonRecordingStarted:
		return "Recording..."
	case domain.SessionReasonTranscribing:
		return "Recording stopped. Transcribing..."
	case domain.SessionReasonTransforming:
		return "Applying mode..."
	case domain.SessionReasonDelivering:
		return "Delivering transcript..."
	case domain.SessionReasonDelivered:
		return "Transcript delivered"
	case domain.SessionReasonRecordingCancelled:
		return "Recording cancelled"
	case domain.SessionReasonNoTranscript:
		return "No speech detected"
	case domain.SessionReasonAudioTooShort:
		return "Recording too short"
	case domain.SessionReasonTranscriptionFailed:
		return "Transcription failed"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeAudioCapture:
		return "Microphone capture issue"
	case domain.ErrorCodeTranscription:
		return "Transcription error"
	case domain.ErrorCodeTransformation:
		return "Mode transformation failed; raw transcript delivered"
	case domain.ErrorCodeRegistration:
		return "Shortcut registration failed"
	case domain.ErrorCodeValidation:
		return "Invalid input"
	case domain.ErrorCodeDelivery:
		return "Auto-paste failed"
	case domain.ErrorCodeClipboard:
		return "Clipboard write failed"
	case domain.ErrorCodeHistory:
		return "History could not be saved"
	case domain.ErrorCodeMissingAPIKey:
		return "API key is not configured"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}

type wailsClipboard struct{}

func (c *wailsClipboard) SetText(ctx context.Context, text string) error {
	return runtime.ClipboardSetText(ctx, text)
}
