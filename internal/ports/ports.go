package ports

import (
	"context"

	"maestro/internal/domain"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// RecordingHandle is one live microphone capture. Stop drains the capture and
// returns the buffered audio; Discard tears it down without returning bytes.
type RecordingHandle interface {
	Stop() (domain.AudioClip, error)
	Discard()
}

// AudioRecorder creates microphone capture sessions.
type AudioRecorder interface {
	Start(ctx context.Context, cfg AudioConfig) (RecordingHandle, error)
}

// Transcriber converts captured audio into text.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, clip domain.AudioClip) (domain.Transcription, error)
}

// Transformer rewrites a transcript according to a mode's system prompt.
type Transformer interface {
	Transform(ctx context.Context, text string, systemPrompt string) (string, error)
}

// HotkeyBackend is the OS-level global hotkey subsystem. Register may fail
// when another application already claims the accelerator.
type HotkeyBackend interface {
	Register(accelerator string, fn func()) error
	Unregister(accelerator string) error
}

// FocusProbe heuristically checks whether the frontmost application has a
// focused text field. The probe is unreliable; implementations map failures
// to false and never return an error.
type FocusProbe interface {
	FocusedTextField(ctx context.Context) bool
}

// Paster simulates the paste keystroke in the frontmost application.
type Paster interface {
	Authorized() bool
	PasteKeystroke(ctx context.Context) error
}

// Clipboard writes text into the system clipboard.
type Clipboard interface {
	SetText(ctx context.Context, text string) error
}

// HistoryStore persists completed dictations. Append assigns the entry id.
type HistoryStore interface {
	Append(ctx context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error)
	List(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// EventSink emits backend state/events to the UI.
type EventSink interface {
	SessionStateChanged(state domain.SessionState, reason domain.SessionStateReason)
	FinalTranscript(raw string, final string, result domain.DeliveryResult)
	SessionError(code domain.ErrorCode, detail string)
	ShortcutConflict(modeID string, accelerator string, detail string)
}
