//go:build darwin

package automation

import (
	"context"
	"os/exec"
	"strings"
	"sync"
)

const focusedTextFieldScript = `tell application "System Events"
	set frontApp to first application process whose frontmost is true
	try
		set focusedElement to value of attribute "AXFocusedUIElement" of frontApp
		set elementRole to value of attribute "AXRole" of focusedElement
		if elementRole is in {"AXTextField", "AXTextArea", "AXComboBox", "AXSearchField"} then
			return "true"
		end if
		return "false"
	on error
		return "false"
	end try
end tell`

const pasteKeystrokeScript = `tell application "System Events" to keystroke "v" using command down`

const permissionProbeScript = `tell application "System Events" to return name of first application process whose frontmost is true`

func runScript(ctx context.Context, script string) (string, error) {
	out, err := exec.CommandContext(ctx, "osascript", "-e", script).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Probe asks System Events whether the focused UI element accepts text.
// Any script failure is treated as "no focused field".
type Probe struct{}

func (p *Probe) FocusedTextField(ctx context.Context) bool {
	out, err := runScript(ctx, focusedTextFieldScript)
	if err != nil {
		return false
	}
	return out == "true"
}

// Paster simulates Cmd+V into the frontmost application. A granted
// Accessibility permission is cached; a denied one is re-checked so the user
// can grant it without restarting.
type Paster struct {
	mu      sync.Mutex
	granted bool
}

func (p *Paster) Authorized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.granted {
		return true
	}
	if _, err := runScript(context.Background(), permissionProbeScript); err != nil {
		return false
	}
	p.granted = true
	return true
}

func (p *Paster) PasteKeystroke(ctx context.Context) error {
	_, err := runScript(ctx, pasteKeystrokeScript)
	return err
}
