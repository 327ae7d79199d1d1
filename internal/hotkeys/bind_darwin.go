//go:build darwin

package hotkeys

import (
	"fmt"

	"golang.design/x/hotkey"

	"maestro/internal/domain"
)

// bind registers one combo with the system and pumps key-down events to fn
// until unbound. CtrlOrCmd maps to the command key on macOS.
func bind(combo domain.KeyCombo, fn func()) (func(), error) {
	key, ok := keyMap[combo.Key]
	if !ok {
		return nil, fmt.Errorf("key %q cannot be bound as a global shortcut", combo.Key)
	}

	var mods []hotkey.Modifier
	if combo.CtrlOrCmd {
		mods = append(mods, hotkey.ModCmd)
	}
	if combo.Alt {
		mods = append(mods, hotkey.ModOption)
	}
	if combo.Shift {
		mods = append(mods, hotkey.ModShift)
	}

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return nil, fmt.Errorf("system rejected shortcut registration: %w", err)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-hk.Keydown():
				fn()
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		_ = hk.Unregister()
	}, nil
}
