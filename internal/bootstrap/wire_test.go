package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"maestro/internal/domain"
)

type noopEvents struct{}

func (noopEvents) SessionStateChanged(domain.SessionState, domain.SessionStateReason) {}
func (noopEvents) FinalTranscript(string, string, domain.DeliveryResult)              {}
func (noopEvents) SessionError(domain.ErrorCode, string)                              {}
func (noopEvents) ShortcutConflict(string, string, string)                            {}

type noopClipboard struct{}

func (noopClipboard) SetText(context.Context, string) error { return nil }

func pointPathsAtTempDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("MAESTRO_SETTINGS_FILE", filepath.Join(dir, "settings.json"))
	t.Setenv("MAESTRO_HISTORY_DB", filepath.Join(dir, "history.db"))
}

func TestBuildAssemblesGraph(t *testing.T) {
	pointPathsAtTempDir(t)

	services, err := Build(noopEvents{}, noopClipboard{})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer services.Close()

	if services.Controller == nil || services.Registry == nil || services.Catalog == nil {
		t.Fatalf("incomplete graph: %+v", services)
	}
	if services.Current.Provider != "openai" {
		t.Fatalf("unexpected default provider: %q", services.Current.Provider)
	}
	if got := len(services.Catalog.List()); got < 6 {
		t.Fatalf("expected built-in modes in catalog, got %d", got)
	}
	if status := services.Controller.Status(); status.State != domain.SessionStateIdle {
		t.Fatalf("expected idle controller, got %+v", status)
	}
}

func TestBuildRejectsUnknownProvider(t *testing.T) {
	pointPathsAtTempDir(t)

	path := os.Getenv("MAESTRO_SETTINGS_FILE")
	if err := os.WriteFile(path, []byte(`{"provider":"bogus"}`), 0o644); err != nil {
		t.Fatalf("failed to seed settings: %v", err)
	}

	if _, err := Build(noopEvents{}, noopClipboard{}); err == nil {
		t.Fatalf("expected unknown provider error")
	}
}

func TestBuildSelectsDeepgram(t *testing.T) {
	pointPathsAtTempDir(t)

	path := os.Getenv("MAESTRO_SETTINGS_FILE")
	if err := os.WriteFile(path, []byte(`{"provider":"deepgram"}`), 0o644); err != nil {
		t.Fatalf("failed to seed settings: %v", err)
	}

	services, err := Build(noopEvents{}, noopClipboard{})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer services.Close()

	if services.Current.Provider != "deepgram" {
		t.Fatalf("unexpected provider: %q", services.Current.Provider)
	}
}
