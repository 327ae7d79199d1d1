// Package automation answers "is a text field focused?" and simulates the
// paste keystroke into the frontmost application. On macOS both go through
// osascript and require the Accessibility (automation) permission.
package automation

// NewProbe returns the platform focus probe.
func NewProbe() *Probe { return &Probe{} }

// NewPaster returns the platform paste simulator.
func NewPaster() *Paster { return &Paster{} }
