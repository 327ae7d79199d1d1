package shortcut

import (
	"errors"
	"fmt"
	"sync"

	"maestro/internal/domain"
	"maestro/internal/ports"
)

// ErrRegistrationFailed wraps OS-level refusals to bind a shortcut, e.g. when
// another application already claims the combo.
var ErrRegistrationFailed = errors.New("shortcut registration failed")

// Binding ties a registered combo to its purpose.
type Binding struct {
	Combo   domain.KeyCombo
	Purpose domain.Purpose
}

// Registry owns the live combo→binding map: one optional toggle binding plus
// any number of mode bindings, each combo bound at most once. All mutations
// run to completion under the lock before any dispatch is resolved.
type Registry struct {
	backend ports.HotkeyBackend
	events  ports.EventSink

	mu       sync.Mutex
	handler  func(domain.Purpose)
	toggle   string             // accelerator of the toggle binding, "" when unbound
	bindings map[string]Binding // accelerator → binding, toggle included
}

func NewRegistry(backend ports.HotkeyBackend, events ports.EventSink) *Registry {
	return &Registry{
		backend:  backend,
		events:   events,
		bindings: make(map[string]Binding),
	}
}

// SetHandler installs the dispatch target invoked when a bound shortcut
// fires. Must be set before any binding is registered.
func (r *Registry) SetHandler(handler func(domain.Purpose)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = handler
}

// SetToggleBinding replaces the single toggle binding. On registration
// failure the previous toggle binding stays active. A mode binding holding
// the same combo is evicted first; the toggle wins conflicts.
func (r *Registry) SetToggleBinding(combo domain.KeyCombo) error {
	if !IsValid(combo) {
		return fmt.Errorf("%w: %s: %v", ErrRegistrationFailed, Accelerator(combo), ErrInvalidCombo)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	accel := Accelerator(combo)
	if accel == r.toggle {
		return nil
	}

	evicted, hadEvicted := r.bindings[accel]
	if hadEvicted {
		if err := r.backend.Unregister(accel); err == nil {
			delete(r.bindings, accel)
		}
		r.events.ShortcutConflict(evicted.Purpose.ModeID, accel, "shortcut reassigned to recording toggle")
	}

	if err := r.register(accel, Binding{Combo: combo, Purpose: domain.Purpose{Kind: domain.PurposeToggle}}); err != nil {
		if hadEvicted {
			_ = r.register(accel, evicted)
		}
		return fmt.Errorf("%w: %s: %v", ErrRegistrationFailed, accel, err)
	}

	if r.toggle != "" {
		_ = r.backend.Unregister(r.toggle)
		delete(r.bindings, r.toggle)
	}
	r.toggle = accel
	return nil
}

// SetModeBindings derives the desired mode bindings from the catalog (one per
// enabled mode with a shortcut, in catalog order), then diffs against the
// currently registered set. Conflicting shortcuts are skipped, not fatal:
// first seen wins, and the toggle combo always wins. One bad custom shortcut
// must not break the rest.
func (r *Registry) SetModeBindings(modes []domain.Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()

	desired := make(map[string]Binding)
	var order []string
	claimed := make(map[string]string) // accelerator → mode id accepted this pass

	for _, m := range modes {
		if !m.Enabled || m.Shortcut == "" {
			continue
		}
		combo, err := ParseAccelerator(m.Shortcut)
		if err != nil || !IsValid(combo) {
			r.events.ShortcutConflict(m.ID, m.Shortcut, "shortcut is not a valid key combination")
			continue
		}
		accel := Accelerator(combo)
		if accel == r.toggle {
			r.events.ShortcutConflict(m.ID, accel, "shortcut collides with the recording toggle")
			continue
		}
		if winner, taken := claimed[accel]; taken {
			r.events.ShortcutConflict(m.ID, accel, fmt.Sprintf("shortcut already used by mode %q", winner))
			continue
		}
		claimed[accel] = m.ID
		desired[accel] = Binding{
			Combo:   combo,
			Purpose: domain.Purpose{Kind: domain.PurposeStartInMode, ModeID: m.ID},
		}
		order = append(order, accel)
	}

	for accel := range r.bindings {
		if accel == r.toggle {
			continue
		}
		if _, keep := desired[accel]; !keep {
			_ = r.backend.Unregister(accel)
			delete(r.bindings, accel)
		}
	}

	for _, accel := range order {
		binding := desired[accel]
		if current, ok := r.bindings[accel]; ok {
			if current.Purpose == binding.Purpose {
				continue
			}
			_ = r.backend.Unregister(accel)
			delete(r.bindings, accel)
		}
		if err := r.register(accel, binding); err != nil {
			r.events.ShortcutConflict(binding.Purpose.ModeID, accel, err.Error())
		}
	}
}

// Dispatch is a pure lookup of the purpose bound to a combo.
func (r *Registry) Dispatch(combo domain.KeyCombo) (domain.Purpose, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	binding, ok := r.bindings[Accelerator(combo)]
	if !ok {
		return domain.Purpose{}, false
	}
	return binding.Purpose, true
}

// Bindings returns a snapshot of the registered bindings, toggle included.
func (r *Registry) Bindings() []Binding {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Binding, 0, len(r.bindings))
	for _, b := range r.bindings {
		out = append(out, b)
	}
	return out
}

// Clear unregisters everything. Used at shutdown.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for accel := range r.bindings {
		_ = r.backend.Unregister(accel)
		delete(r.bindings, accel)
	}
	r.toggle = ""
}

// register must be called with the lock held.
func (r *Registry) register(accel string, binding Binding) error {
	err := r.backend.Register(accel, func() {
		r.fire(accel)
	})
	if err != nil {
		return err
	}
	r.bindings[accel] = binding
	return nil
}

func (r *Registry) fire(accel string) {
	r.mu.Lock()
	binding, ok := r.bindings[accel]
	handler := r.handler
	r.mu.Unlock()

	if ok && handler != nil {
		handler(binding.Purpose)
	}
}
