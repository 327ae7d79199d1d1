package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"maestro/internal/domain"
	"maestro/internal/history"
)

func seedHistory(t *testing.T, texts ...string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("MAESTRO_HISTORY_DB", filepath.Join(dir, "history.db"))
	t.Setenv("MAESTRO_SETTINGS_FILE", filepath.Join(dir, "settings.json"))

	store, err := history.NewSQLiteStore(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	for _, text := range texts {
		if _, err := store.Append(context.Background(), domain.HistoryEntry{Text: text, Provider: "openai"}); err != nil {
			t.Fatalf("failed to seed entry: %v", err)
		}
	}
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(func() error { return nil })
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestHistoryListShowsEntries(t *testing.T) {
	seedHistory(t, "first dictation", "second dictation")

	out, err := runCommand(t, "history", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "first dictation") || !strings.Contains(out, "second dictation") {
		t.Fatalf("entries missing from output:\n%s", out)
	}
}

func TestHistoryListEmpty(t *testing.T) {
	seedHistory(t)

	out, err := runCommand(t, "history", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "history is empty") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestHistoryRemoveUnknownID(t *testing.T) {
	seedHistory(t)

	if _, err := runCommand(t, "history", "rm", "no-such-id"); err == nil {
		t.Fatalf("expected error for unknown id")
	}
}

func TestHistoryClearRequiresConfirmation(t *testing.T) {
	seedHistory(t, "keep me")

	if _, err := runCommand(t, "history", "clear"); err == nil {
		t.Fatalf("expected confirmation error")
	}
	if _, err := runCommand(t, "history", "clear", "--yes"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := truncate("short", 10); got != "short" {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := truncate("0123456789", 5); got != "0123…" {
		t.Fatalf("unexpected truncation: %q", got)
	}
}
