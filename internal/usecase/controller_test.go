package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"maestro/internal/domain"
	"maestro/internal/mode"
	"maestro/internal/ports"
)

func TestToggleDispatchEndToEnd(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.transcriber.result = domain.Transcription{Text: "hello world", Language: "en", Model: "whisper-1"}
	controller := f.build()

	controller.HandleDispatch(context.Background(), domain.Purpose{Kind: domain.PurposeToggle})
	if status := controller.Status(); status.State != domain.SessionStateRecording {
		t.Fatalf("expected recording, got %+v", status)
	}

	controller.HandleDispatch(context.Background(), domain.Purpose{Kind: domain.PurposeToggle})
	f.events.waitIdle(t)

	if f.transcriber.calls != 1 {
		t.Fatalf("expected exactly one transcription, got %d", f.transcriber.calls)
	}
	if f.transformer.calls != 0 {
		t.Fatalf("noop mode must not invoke the transformer")
	}
	if f.clipboard.lastText != "hello world" {
		t.Fatalf("clipboard did not receive transcript: %q", f.clipboard.lastText)
	}

	entries := f.history.snapshot()
	if len(entries) != 1 || entries[0].Text != "hello world" {
		t.Fatalf("expected one history entry, got %+v", entries)
	}
	if entries[0].OriginalText != "" || entries[0].ModeID != "" {
		t.Fatalf("untransformed entry must omit original text and mode: %+v", entries[0])
	}
	if entries[0].Provider != "stub" || entries[0].Language != "en" {
		t.Fatalf("missing provider metadata: %+v", entries[0])
	}

	finals := f.events.snapshotFinals()
	if len(finals) != 1 || finals[0].final != "hello world" {
		t.Fatalf("expected final transcript event, got %+v", finals)
	}
	if status := controller.Status(); status.State != domain.SessionStateIdle {
		t.Fatalf("expected idle after delivery, got %+v", status)
	}
}

func TestDispatchDuringPipelineIsNoOp(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.transcriber.result = domain.Transcription{Text: "slow"}
	f.transcriber.block = make(chan struct{})
	controller := f.build()

	ctx := context.Background()
	controller.HandleDispatch(ctx, domain.Purpose{Kind: domain.PurposeToggle})
	controller.HandleDispatch(ctx, domain.Purpose{Kind: domain.PurposeToggle})

	// These fire while the transcription call is in flight.
	controller.HandleDispatch(ctx, domain.Purpose{Kind: domain.PurposeToggle})
	controller.HandleDispatch(ctx, domain.Purpose{Kind: domain.PurposeStartInMode, ModeID: "email"})
	close(f.transcriber.block)
	f.events.waitIdle(t)

	if f.recorder.calls != 1 {
		t.Fatalf("expected one capture session, got %d", f.recorder.calls)
	}
	if f.transcriber.calls != 1 {
		t.Fatalf("expected one transcription, got %d", f.transcriber.calls)
	}
}

func TestModeShortcutStampsTriggerMode(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.transcriber.result = domain.Transcription{Text: "status update"}
	f.transformer.result = "Casual status update!"
	controller := f.build()
	controller.SetSelectedMode(mode.NoopModeID)

	ctx := context.Background()
	controller.HandleDispatch(ctx, domain.Purpose{Kind: domain.PurposeStartInMode, ModeID: "slack"})
	controller.HandleDispatch(ctx, domain.Purpose{Kind: domain.PurposeToggle})
	f.events.waitIdle(t)

	if f.transformer.calls != 1 {
		t.Fatalf("mode-specific trigger should invoke the transformer")
	}
	entries := f.history.snapshot()
	if len(entries) != 1 || entries[0].ModeID != "slack" {
		t.Fatalf("expected slack mode entry, got %+v", entries)
	}
	if entries[0].OriginalText != "status update" {
		t.Fatalf("transformed entry must keep the original transcript: %+v", entries[0])
	}
}

func TestTransformerReceivesRenderedPrompt(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.transcriber.result = domain.Transcription{Text: "draft this"}
	f.transformer.result = "Dear team, ..."
	controller := f.build()
	controller.SetUserName("Ada")
	controller.SetSelectedMode("email")

	ctx := context.Background()
	controller.HandleDispatch(ctx, domain.Purpose{Kind: domain.PurposeToggle})
	controller.HandleDispatch(ctx, domain.Purpose{Kind: domain.PurposeToggle})
	f.events.waitIdle(t)

	if !strings.Contains(f.transformer.lastPrompt, "Sign it on behalf of Ada.") {
		t.Fatalf("prompt placeholder not rendered: %q", f.transformer.lastPrompt)
	}
	if f.transformer.lastText != "draft this" {
		t.Fatalf("transformer got wrong text: %q", f.transformer.lastText)
	}
}

func TestTransformationFailureFallsBackToRawTranscript(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.transcriber.result = domain.Transcription{Text: "keep my words"}
	f.transformer.err = errors.New("chat completion unavailable")
	controller := f.build()
	controller.SetSelectedMode("enhanced")

	ctx := context.Background()
	controller.HandleDispatch(ctx, domain.Purpose{Kind: domain.PurposeToggle})
	controller.HandleDispatch(ctx, domain.Purpose{Kind: domain.PurposeToggle})
	f.events.waitIdle(t)

	entries := f.history.snapshot()
	if len(entries) != 1 || entries[0].Text != "keep my words" {
		t.Fatalf("fallback must deliver the raw transcript, got %+v", entries)
	}
	if entries[0].ModeID != "" || entries[0].OriginalText != "" {
		t.Fatalf("fallback entry must record the noop mode: %+v", entries[0])
	}
	if f.clipboard.lastText != "keep my words" {
		t.Fatalf("clipboard must hold the raw transcript")
	}

	errs := f.events.snapshotErrors()
	if len(errs) == 0 || errs[0].code != domain.ErrorCodeTransformation {
		t.Fatalf("expected transformation error event, got %+v", errs)
	}
}

func TestSmallAudioRejectedBeforeTranscription(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.recorder.clip = domain.AudioClip{Data: []byte("tiny"), MIMEType: "audio/webm"}
	controller := f.build()

	ctx := context.Background()
	controller.HandleDispatch(ctx, domain.Purpose{Kind: domain.PurposeToggle})
	controller.HandleDispatch(ctx, domain.Purpose{Kind: domain.PurposeToggle})
	f.events.waitIdle(t)

	if f.transcriber.calls != 0 {
		t.Fatalf("transcriber must not be called for undersized audio")
	}
	errs := f.events.snapshotErrors()
	if len(errs) != 1 || errs[0].code != domain.ErrorCodeTranscription {
		t.Fatalf("expected transcription error, got %+v", errs)
	}
	if len(f.history.snapshot()) != 0 {
		t.Fatalf("nothing may be saved to history on rejection")
	}
	if reason := f.events.lastIdleReason(); reason != domain.SessionReasonAudioTooShort {
		t.Fatalf("unexpected idle reason: %s", reason)
	}
}

func TestTranscriptionFailureAbortsSession(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.transcriber.err = errors.New("service unavailable")
	controller := f.build()

	ctx := context.Background()
	controller.HandleDispatch(ctx, domain.Purpose{Kind: domain.PurposeToggle})
	controller.HandleDispatch(ctx, domain.Purpose{Kind: domain.PurposeToggle})
	f.events.waitIdle(t)

	if len(f.history.snapshot()) != 0 {
		t.Fatalf("failed transcription must not reach history")
	}
	if f.clipboard.lastText != "" {
		t.Fatalf("failed transcription must not touch the clipboard")
	}
	if len(f.events.snapshotFinals()) != 0 {
		t.Fatalf("no final transcript may be emitted on failure")
	}
	if reason := f.events.lastIdleReason(); reason != domain.SessionReasonTranscriptionFailed {
		t.Fatalf("unexpected idle reason: %s", reason)
	}
}

func TestEmptyTranscriptAborts(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.transcriber.result = domain.Transcription{Text: "   "}
	controller := f.build()

	ctx := context.Background()
	controller.HandleDispatch(ctx, domain.Purpose{Kind: domain.PurposeToggle})
	controller.HandleDispatch(ctx, domain.Purpose{Kind: domain.PurposeToggle})
	f.events.waitIdle(t)

	if len(f.history.snapshot()) != 0 {
		t.Fatalf("empty transcript must not reach history")
	}
	if reason := f.events.lastIdleReason(); reason != domain.SessionReasonNoTranscript {
		t.Fatalf("unexpected idle reason: %s", reason)
	}
}

func TestCancelDiscardsRecordingWithoutTranscribing(t *testing.T) {
	t.Parallel()

	f := newFixture()
	controller := f.build()

	if err := controller.Cancel(); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}

	controller.HandleDispatch(context.Background(), domain.Purpose{Kind: domain.PurposeToggle})
	if err := controller.Cancel(); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if f.recorder.lastHandle.discards != 1 {
		t.Fatalf("expected buffered audio to be discarded")
	}
	if f.transcriber.calls != 0 {
		t.Fatalf("cancel must not invoke transcription")
	}
	if status := controller.Status(); status.State != domain.SessionStateIdle {
		t.Fatalf("expected idle after cancel, got %+v", status)
	}
	if reason := f.events.lastIdleReason(); reason != domain.SessionReasonRecordingCancelled {
		t.Fatalf("unexpected idle reason: %s", reason)
	}
}

func TestCancelIgnoredOnceTranscribing(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.transcriber.result = domain.Transcription{Text: "finishes anyway"}
	f.transcriber.block = make(chan struct{})
	controller := f.build()

	ctx := context.Background()
	controller.HandleDispatch(ctx, domain.Purpose{Kind: domain.PurposeToggle})
	controller.HandleDispatch(ctx, domain.Purpose{Kind: domain.PurposeToggle})

	if err := controller.Cancel(); err != nil {
		t.Fatalf("cancel during transcription should be a silent no-op, got %v", err)
	}
	close(f.transcriber.block)
	f.events.waitIdle(t)

	if len(f.history.snapshot()) != 1 {
		t.Fatalf("in-flight transcription must complete and deliver")
	}
}

func TestRecorderStartFailureStaysIdle(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.recorder.err = errors.New("microphone busy")
	controller := f.build()

	controller.HandleDispatch(context.Background(), domain.Purpose{Kind: domain.PurposeToggle})

	if status := controller.Status(); status.State != domain.SessionStateIdle {
		t.Fatalf("expected idle after start failure, got %+v", status)
	}
	errs := f.events.snapshotErrors()
	if len(errs) != 1 || errs[0].code != domain.ErrorCodeAudioCapture {
		t.Fatalf("expected audio capture error, got %+v", errs)
	}
}

// fixture assembles a controller over hand-rolled fakes for every port.
type fixture struct {
	recorder    *fakeRecorder
	transcriber *fakeTranscriber
	transformer *fakeTransformer
	history     *fakeHistory
	clipboard   *fakeClipboard
	probe       *fakeProbe
	paster      *fakePaster
	events      *fakeEventSink
}

func newFixture() *fixture {
	return &fixture{
		recorder: &fakeRecorder{
			clip: domain.AudioClip{Data: make([]byte, 4096), MIMEType: "audio/webm"},
		},
		transcriber: &fakeTranscriber{},
		transformer: &fakeTransformer{},
		history:     &fakeHistory{},
		clipboard:   &fakeClipboard{},
		probe:       &fakeProbe{focused: true},
		paster:      &fakePaster{authorized: true},
		events:      newFakeEventSink(),
	}
}

func (f *fixture) build() *SessionController {
	return NewSessionController(
		f.recorder,
		f.transcriber,
		f.transformer,
		mode.NewCatalog(nil),
		f.history,
		f.clipboard,
		f.probe,
		f.paster,
		f.events,
		Config{MinAudioBytes: 1024},
	)
}

type fakeRecorder struct {
	clip       domain.AudioClip
	stopErr    error
	err        error
	calls      int
	lastHandle *fakeHandle
}

func (f *fakeRecorder) Start(_ context.Context, _ ports.AudioConfig) (ports.RecordingHandle, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls++
	f.lastHandle = &fakeHandle{clip: f.clip, stopErr: f.stopErr}
	return f.lastHandle, nil
}

type fakeHandle struct {
	clip     domain.AudioClip
	stopErr  error
	discards int
}

func (f *fakeHandle) Stop() (domain.AudioClip, error) {
	if f.stopErr != nil {
		return domain.AudioClip{}, f.stopErr
	}
	return f.clip, nil
}

func (f *fakeHandle) Discard() { f.discards++ }

type fakeTranscriber struct {
	result domain.Transcription
	err    error
	calls  int
	block  chan struct{}
}

func (f *fakeTranscriber) Name() string { return "stub" }

func (f *fakeTranscriber) Transcribe(_ context.Context, _ domain.AudioClip) (domain.Transcription, error) {
	f.calls++
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return domain.Transcription{}, f.err
	}
	return f.result, nil
}

type fakeTransformer struct {
	result     string
	err        error
	calls      int
	lastText   string
	lastPrompt string
}

func (f *fakeTransformer) Transform(_ context.Context, text string, systemPrompt string) (string, error) {
	f.calls++
	f.lastText = text
	f.lastPrompt = systemPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.result, nil
}

type fakeHistory struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
	err     error
}

func (f *fakeHistory) Append(_ context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.HistoryEntry{}, f.err
	}
	entry.ID = "h1"
	f.entries = append(f.entries, entry)
	return entry, nil
}

func (f *fakeHistory) List(_ context.Context, _ int) ([]domain.HistoryEntry, error) {
	return f.snapshot(), nil
}

func (f *fakeHistory) Delete(_ context.Context, _ string) error { return nil }

func (f *fakeHistory) Clear(_ context.Context) error { return nil }

func (f *fakeHistory) snapshot() []domain.HistoryEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.HistoryEntry, len(f.entries))
	copy(out, f.entries)
	return out
}

type fakeClipboard struct {
	mu       sync.Mutex
	lastText string
	err      error
}

func (f *fakeClipboard) SetText(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.lastText = text
	return nil
}

type fakeProbe struct {
	focused bool
}

func (f *fakeProbe) FocusedTextField(_ context.Context) bool { return f.focused }

type fakePaster struct {
	authorized bool
	err        error
	calls      int
}

func (f *fakePaster) Authorized() bool { return f.authorized }

func (f *fakePaster) PasteKeystroke(_ context.Context) error {
	f.calls++
	return f.err
}

type stateEvent struct {
	state  domain.SessionState
	reason domain.SessionStateReason
}

type finalEvent struct {
	raw    string
	final  string
	result domain.DeliveryResult
}

type errEvent struct {
	code   domain.ErrorCode
	detail string
}

type fakeEventSink struct {
	mu     sync.Mutex
	states []stateEvent
	finals []finalEvent
	errors []errEvent
	idle   chan domain.SessionStateReason
}

func newFakeEventSink() *fakeEventSink {
	return &fakeEventSink{idle: make(chan domain.SessionStateReason, 8)}
}

func (f *fakeEventSink) SessionStateChanged(state domain.SessionState, reason domain.SessionStateReason) {
	f.mu.Lock()
	f.states = append(f.states, stateEvent{state: state, reason: reason})
	f.mu.Unlock()
	if state == domain.SessionStateIdle {
		f.idle <- reason
	}
}

func (f *fakeEventSink) FinalTranscript(raw string, final string, result domain.DeliveryResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finals = append(f.finals, finalEvent{raw: raw, final: final, result: result})
}

func (f *fakeEventSink) SessionError(code domain.ErrorCode, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, errEvent{code: code, detail: detail})
}

func (f *fakeEventSink) ShortcutConflict(_ string, _ string, _ string) {}

func (f *fakeEventSink) waitIdle(t *testing.T) {
	t.Helper()
	select {
	case <-f.idle:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for session to return to idle")
	}
}

func (f *fakeEventSink) lastIdleReason() domain.SessionStateReason {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.states) - 1; i >= 0; i-- {
		if f.states[i].state == domain.SessionStateIdle {
			return f.states[i].reason
		}
	}
	return ""
}

func (f *fakeEventSink) snapshotFinals() []finalEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]finalEvent, len(f.finals))
	copy(out, f.finals)
	return out
}

func (f *fakeEventSink) snapshotErrors() []errEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]errEvent, len(f.errors))
	copy(out, f.errors)
	return out
}
