// Package hotkeys registers system-wide shortcuts through the OS hotkey API.
package hotkeys

import (
	"fmt"
	"sync"

	"maestro/internal/shortcut"
)

// Backend implements ports.HotkeyBackend. Platform files provide bind().
type Backend struct {
	mu    sync.Mutex
	bound map[string]func()
}

func New() *Backend {
	return &Backend{bound: make(map[string]func())}
}

func (b *Backend) Register(accelerator string, fn func()) error {
	combo, err := shortcut.ParseAccelerator(accelerator)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.bound[accelerator]; exists {
		return fmt.Errorf("accelerator %q is already registered", accelerator)
	}

	unbind, err := bind(combo, fn)
	if err != nil {
		return err
	}
	b.bound[accelerator] = unbind
	return nil
}

func (b *Backend) Unregister(accelerator string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	unbind, ok := b.bound[accelerator]
	if !ok {
		return fmt.Errorf("accelerator %q is not registered", accelerator)
	}
	delete(b.bound, accelerator)
	unbind()
	return nil
}
