package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"maestro/internal/domain"
	"maestro/internal/mode"
	"maestro/internal/ports"
)

var ErrNoActiveSession = errors.New("no active recording session")

// Config controls recording and transcription behavior.
type Config struct {
	Audio ports.AudioConfig

	// MinAudioBytes rejects empty or near-silent captures before the
	// transcription service is ever called.
	MinAudioBytes int
}

// SessionController governs the dictation lifecycle:
// idle → recording → transcribing → (transforming) → delivering → idle.
// At most one session is ever non-idle; the same shortcut that starts a
// recording stops it, and dispatches during the tail of the pipeline are
// ignored.
type SessionController struct {
	recorder    ports.AudioRecorder
	transcriber ports.Transcriber
	transformer ports.Transformer
	catalog     *mode.Catalog
	history     ports.HistoryStore
	deliver     deliverer
	events      ports.EventSink
	cfg         Config

	mu       sync.Mutex
	current  *activeSession
	selected string
	userName string
}

func NewSessionController(
	recorder ports.AudioRecorder,
	transcriber ports.Transcriber,
	transformer ports.Transformer,
	catalog *mode.Catalog,
	history ports.HistoryStore,
	clipboard ports.Clipboard,
	probe ports.FocusProbe,
	paster ports.Paster,
	events ports.EventSink,
	cfg Config,
) *SessionController {
	if cfg.MinAudioBytes <= 0 {
		cfg.MinAudioBytes = 1024
	}
	return &SessionController{
		recorder:    recorder,
		transcriber: transcriber,
		transformer: transformer,
		catalog:     catalog,
		history:     history,
		deliver:     newDeliverer(clipboard, probe, paster, events),
		events:      events,
		cfg:         cfg,
		selected:    mode.NoopModeID,
		userName:    "User",
	}
}

// SetSelectedMode records the mode currently selected in the UI; toggle
// dispatches without a mode-specific trigger use it.
func (c *SessionController) SetSelectedMode(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == "" {
		id = mode.NoopModeID
	}
	c.selected = id
}

// SetUserName updates the name substituted into prompt templates.
func (c *SessionController) SetUserName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if strings.TrimSpace(name) != "" {
		c.userName = name
	}
}

// HandleDispatch reacts to a fired shortcut. From idle it starts recording,
// stamping the trigger mode for mode-specific shortcuts. From recording it
// stops and runs the transcription pipeline. In any other state it is a
// no-op so overlapping captures are impossible.
func (c *SessionController) HandleDispatch(ctx context.Context, purpose domain.Purpose) {
	c.mu.Lock()

	if c.current == nil {
		triggerMode := ""
		if purpose.Kind == domain.PurposeStartInMode {
			triggerMode = purpose.ModeID
		}
		c.startLocked(ctx, triggerMode)
		c.mu.Unlock()
		return
	}

	session := c.current
	if session.getState() != domain.SessionStateRecording {
		c.mu.Unlock()
		return
	}

	session.setState(domain.SessionStateTranscribing)
	c.mu.Unlock()

	c.events.SessionStateChanged(domain.SessionStateTranscribing, domain.SessionReasonTranscribing)
	go c.finish(ctx, session)
}

// startLocked must be called with the controller lock held.
func (c *SessionController) startLocked(ctx context.Context, triggerMode string) {
	handle, err := c.recorder.Start(ctx, c.cfg.Audio)
	if err != nil {
		c.events.SessionError(domain.ErrorCodeAudioCapture, err.Error())
		return
	}

	c.current = &activeSession{
		handle:      handle,
		triggerMode: triggerMode,
		startedAt:   time.Now(),
		state:       domain.SessionStateRecording,
	}
	c.events.SessionStateChanged(domain.SessionStateRecording, domain.SessionReasonRecordingStarted)
}

// Cancel discards a recording without transcribing it. It is honored only
// while recording; once transcription has begun the in-flight call runs to
// its natural completion.
func (c *SessionController) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return ErrNoActiveSession
	}
	if c.current.getState() != domain.SessionStateRecording {
		return nil
	}

	c.current.handle.Discard()
	c.current = nil
	c.events.SessionStateChanged(domain.SessionStateIdle, domain.SessionReasonRecordingCancelled)
	return nil
}

// Status returns the current backend status.
func (c *SessionController) Status() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return domain.Status{State: domain.SessionStateIdle, Active: false}
	}
	state := c.current.getState()
	return domain.Status{State: state, Active: state != domain.SessionStateIdle}
}

func (c *SessionController) finish(ctx context.Context, session *activeSession) {
	clip, err := session.handle.Stop()
	if err != nil {
		c.events.SessionError(domain.ErrorCodeAudioCapture, err.Error())
		c.abort(session, domain.SessionReasonTranscriptionFailed)
		return
	}

	if len(clip.Data) < c.cfg.MinAudioBytes {
		c.events.SessionError(domain.ErrorCodeTranscription, "captured audio is too short to transcribe")
		c.abort(session, domain.SessionReasonAudioTooShort)
		return
	}

	transcription, err := c.transcriber.Transcribe(ctx, clip)
	if err != nil {
		c.events.SessionError(domain.ErrorCodeTranscription, err.Error())
		c.abort(session, domain.SessionReasonTranscriptionFailed)
		return
	}

	raw := strings.TrimSpace(transcription.Text)
	if raw == "" {
		c.events.SessionError(domain.ErrorCodeTranscription, "no speech detected")
		c.abort(session, domain.SessionReasonNoTranscript)
		return
	}

	final, modeID := c.transform(ctx, session, raw)

	session.setState(domain.SessionStateDelivering)
	c.events.SessionStateChanged(domain.SessionStateDelivering, domain.SessionReasonDelivering)
	result := c.deliver.Deliver(ctx, final)

	entry := domain.HistoryEntry{
		Text:      final,
		Provider:  c.transcriber.Name(),
		Model:     transcription.Model,
		Language:  transcription.Language,
		CreatedAt: time.Now(),
	}
	if final != raw {
		entry.OriginalText = raw
	}
	if modeID != mode.NoopModeID {
		entry.ModeID = modeID
	}
	if _, err := c.history.Append(ctx, entry); err != nil {
		c.events.SessionError(domain.ErrorCodeHistory, err.Error())
	}

	c.events.FinalTranscript(raw, final, result)
	c.finishSession(session, domain.SessionReasonDelivered)
}

// transform pipes the raw transcript through the selected mode's prompt. A
// failed transformation falls back to the raw transcript and the noop mode:
// a failed enhancement must never lose the user's words.
func (c *SessionController) transform(ctx context.Context, session *activeSession, raw string) (string, string) {
	c.mu.Lock()
	modeID := session.triggerMode
	if modeID == "" {
		modeID = c.selected
	}
	userName := c.userName
	c.mu.Unlock()

	if modeID == mode.NoopModeID {
		return raw, mode.NoopModeID
	}

	m, ok := c.catalog.Get(modeID)
	if !ok || !m.Enabled {
		return raw, mode.NoopModeID
	}

	session.setState(domain.SessionStateTransforming)
	c.events.SessionStateChanged(domain.SessionStateTransforming, domain.SessionReasonTransforming)

	transformed, err := c.transformer.Transform(ctx, raw, mode.RenderPrompt(m, userName))
	if err != nil {
		c.events.SessionError(domain.ErrorCodeTransformation, err.Error())
		return raw, mode.NoopModeID
	}

	transformed = strings.TrimSpace(transformed)
	if transformed == "" {
		return raw, mode.NoopModeID
	}
	return transformed, modeID
}

func (c *SessionController) abort(session *activeSession, reason domain.SessionStateReason) {
	c.finishSession(session, reason)
}

func (c *SessionController) finishSession(session *activeSession, reason domain.SessionStateReason) {
	session.setState(domain.SessionStateIdle)

	c.mu.Lock()
	if c.current == session {
		c.current = nil
	}
	c.mu.Unlock()

	c.events.SessionStateChanged(domain.SessionStateIdle, reason)
}
