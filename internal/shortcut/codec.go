// Package shortcut converts between raw key events, platform accelerator
// strings, and user-facing display strings, and owns the live set of
// registered global shortcuts.
package shortcut

import (
	"errors"
	"fmt"
	"regexp"
	goruntime "runtime"
	"strings"

	"maestro/internal/domain"
)

var (
	ErrModifierOnly   = errors.New("key event contains only modifier keys")
	ErrInvalidCombo   = errors.New("shortcut needs at least one modifier or a function key")
	ErrUnknownKey     = errors.New("unsupported key")
	errBadAccelerator = errors.New("malformed accelerator string")
)

// functionKeyPattern matches F1..F24.
var functionKeyPattern = regexp.MustCompile(`^F([1-9]|1[0-9]|2[0-4])$`)

// canonicalKeys maps raw UI key identifiers to canonical base key names.
var canonicalKeys = map[string]string{
	" ":          "Space",
	"ArrowUp":    "Up",
	"ArrowDown":  "Down",
	"ArrowLeft":  "Left",
	"ArrowRight": "Right",
	"Delete":     "Delete",
	"Backspace":  "Backspace",
	"Enter":      "Return",
	"Tab":        "Tab",
	"Escape":     "Escape",
}

// displayKeys maps canonical base keys to their display glyphs.
var displayKeys = map[string]string{
	"Space":     "Space",
	"Up":        "↑",
	"Down":      "↓",
	"Left":      "←",
	"Right":     "→",
	"Delete":    "Del",
	"Backspace": "⌫",
	"Return":    "↵",
	"Tab":       "⇥",
	"Escape":    "Esc",
}

// ParseKeyEvent normalizes a raw key press into a KeyCombo. Presses of a
// modifier key by itself are rejected so the capture UI can keep listening.
func ParseKeyEvent(ev domain.KeyEvent) (domain.KeyCombo, error) {
	switch ev.Key {
	case "Meta", "Control", "Alt", "Shift", "":
		return domain.KeyCombo{}, ErrModifierOnly
	}

	combo := domain.KeyCombo{
		CtrlOrCmd: ev.MetaKey || ev.CtrlKey,
		Alt:       ev.AltKey,
		Shift:     ev.ShiftKey,
	}

	key, err := normalizeKey(ev.Key)
	if err != nil {
		return domain.KeyCombo{}, err
	}
	combo.Key = key
	return combo, nil
}

func normalizeKey(raw string) (string, error) {
	if mapped, ok := canonicalKeys[raw]; ok {
		return mapped, nil
	}
	// Persisted accelerator strings already carry canonical names.
	for _, canonical := range canonicalKeys {
		if raw == canonical {
			return raw, nil
		}
	}
	if functionKeyPattern.MatchString(raw) {
		return raw, nil
	}
	if len(raw) == 1 {
		r := raw[0]
		switch {
		case r >= 'a' && r <= 'z':
			return strings.ToUpper(raw), nil
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return raw, nil
		case strings.ContainsRune(",./;'[]\\=-`", rune(r)):
			return raw, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKey, raw)
}

// IsValid reports whether a combo may be registered globally: it needs at
// least one modifier unless the base key is a function key.
func IsValid(combo domain.KeyCombo) bool {
	if combo.Key == "" {
		return false
	}
	return combo.HasModifier() || functionKeyPattern.MatchString(combo.Key)
}

// Accelerator renders a combo into the string understood by the global
// hotkey subsystem, e.g. "CommandOrControl+Shift+1".
func Accelerator(combo domain.KeyCombo) string {
	var parts []string
	if combo.CtrlOrCmd {
		parts = append(parts, "CommandOrControl")
	}
	if combo.Alt {
		parts = append(parts, "Alt")
	}
	if combo.Shift {
		parts = append(parts, "Shift")
	}
	parts = append(parts, combo.Key)
	return strings.Join(parts, "+")
}

// ParseAccelerator is the inverse of Accelerator, used when loading persisted
// shortcut strings.
func ParseAccelerator(s string) (domain.KeyCombo, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.KeyCombo{}, errBadAccelerator
	}

	var combo domain.KeyCombo
	parts := strings.Split(s, "+")
	for i, part := range parts {
		last := i == len(parts)-1
		switch part {
		case "CommandOrControl", "CmdOrCtrl":
			combo.CtrlOrCmd = true
		case "Alt":
			combo.Alt = true
		case "Shift":
			combo.Shift = true
		default:
			if !last {
				return domain.KeyCombo{}, fmt.Errorf("%w: %q", errBadAccelerator, s)
			}
			key, err := normalizeKey(part)
			if err != nil {
				return domain.KeyCombo{}, err
			}
			combo.Key = key
		}
	}
	if combo.Key == "" {
		return domain.KeyCombo{}, fmt.Errorf("%w: %q", errBadAccelerator, s)
	}
	return combo, nil
}

// DisplayString renders a combo for the UI using platform modifier glyphs.
// It is cosmetic only and never used for lookup or equality.
func DisplayString(combo domain.KeyCombo) string {
	mac := goruntime.GOOS == "darwin"

	var parts []string
	if combo.CtrlOrCmd {
		if mac {
			parts = append(parts, "⌘")
		} else {
			parts = append(parts, "Ctrl")
		}
	}
	if combo.Alt {
		if mac {
			parts = append(parts, "⌥")
		} else {
			parts = append(parts, "Alt")
		}
	}
	if combo.Shift {
		parts = append(parts, "⇧")
	}

	key := combo.Key
	if glyph, ok := displayKeys[key]; ok {
		key = glyph
	}
	parts = append(parts, key)
	return strings.Join(parts, "+")
}
