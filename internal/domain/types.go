package domain

import "time"

// SessionState models the dictation lifecycle.
type SessionState string

const (
	SessionStateIdle         SessionState = "idle"
	SessionStateRecording    SessionState = "recording"
	SessionStateTranscribing SessionState = "transcribing"
	SessionStateTransforming SessionState = "transforming"
	SessionStateDelivering   SessionState = "delivering"
	SessionStateError        SessionState = "error"
)

// SessionStateReason provides a structured reason for state transitions.
type SessionStateReason string

const (
	SessionReasonReady               SessionStateReason = "ready"
	SessionReasonRecordingStarted    SessionStateReason = "recording_started"
	SessionReasonTranscribing        SessionStateReason = "transcribing"
	SessionReasonTransforming        SessionStateReason = "transforming"
	SessionReasonDelivering          SessionStateReason = "delivering"
	SessionReasonDelivered           SessionStateReason = "delivered"
	SessionReasonRecordingCancelled  SessionStateReason = "recording_cancelled"
	SessionReasonNoTranscript        SessionStateReason = "no_transcript"
	SessionReasonAudioTooShort       SessionStateReason = "audio_too_short"
	SessionReasonTranscriptionFailed SessionStateReason = "transcription_failed"
)

// ErrorCode identifies non-fatal and fatal backend errors.
type ErrorCode string

const (
	ErrorCodeStartup        ErrorCode = "startup"
	ErrorCodeAudioCapture   ErrorCode = "audio_capture"
	ErrorCodeTranscription  ErrorCode = "transcription"
	ErrorCodeTransformation ErrorCode = "transformation"
	ErrorCodeRegistration   ErrorCode = "registration"
	ErrorCodeValidation     ErrorCode = "validation"
	ErrorCodeDelivery       ErrorCode = "delivery"
	ErrorCodeClipboard      ErrorCode = "clipboard"
	ErrorCodeHistory        ErrorCode = "history"
	ErrorCodeMissingAPIKey  ErrorCode = "missing_api_key"
)

// KeyCombo is a normalized modifier set plus one base key. The base key is
// case-normalized ("A".."Z", "0".."9", "F1".."F24", or a canonical name such
// as "Space" or "Left"). Equality is structural.
type KeyCombo struct {
	CtrlOrCmd bool   `json:"ctrlOrCmd"`
	Alt       bool   `json:"alt"`
	Shift     bool   `json:"shift"`
	Key       string `json:"key"`
}

// HasModifier reports whether at least one modifier flag is set.
func (c KeyCombo) HasModifier() bool {
	return c.CtrlOrCmd || c.Alt || c.Shift
}

// KeyEvent is a raw key press as delivered by the shortcut capture UI.
type KeyEvent struct {
	MetaKey  bool   `json:"metaKey"`
	CtrlKey  bool   `json:"ctrlKey"`
	AltKey   bool   `json:"altKey"`
	ShiftKey bool   `json:"shiftKey"`
	Key      string `json:"key"`
}

// PurposeKind distinguishes the two kinds of global shortcut binding.
type PurposeKind string

const (
	PurposeToggle      PurposeKind = "toggle"
	PurposeStartInMode PurposeKind = "start_in_mode"
)

// Purpose is what a dispatched shortcut asks the session controller to do.
// ModeID is set only for PurposeStartInMode.
type Purpose struct {
	Kind   PurposeKind `json:"kind"`
	ModeID string      `json:"modeId,omitempty"`
}

// Mode is a named prompt template applied to raw transcripts. The prompt may
// embed the literal {userName} placeholder. Shortcut is an accelerator string
// and may be empty.
type Mode struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Prompt   string `json:"prompt"`
	Enabled  bool   `json:"enabled"`
	Shortcut string `json:"shortcut,omitempty"`
}

// AudioClip is the opaque capture output handed to transcription.
type AudioClip struct {
	Data     []byte
	MIMEType string
}

// Transcription is the speech-to-text result.
type Transcription struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
	Model    string `json:"model,omitempty"`
}

// DeliveryMethod is how finished text reaches the user.
type DeliveryMethod string

const (
	DeliverPaste      DeliveryMethod = "paste"
	DeliverShowWindow DeliveryMethod = "show_window"
)

// DeliveryResult reports how a transcript was delivered.
type DeliveryResult struct {
	Method DeliveryMethod `json:"method"`
	Copied bool           `json:"copied"`
}

// HistoryEntry is one completed dictation. OriginalText is present only when
// a transformation changed the text.
type HistoryEntry struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	OriginalText string    `json:"originalText,omitempty"`
	ModeID       string    `json:"modeId,omitempty"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	Language     string    `json:"language,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Status summarizes the current runtime status.
type Status struct {
	State   SessionState `json:"state"`
	Active  bool         `json:"active"`
	Message string       `json:"message,omitempty"`
}
