// Package mode owns the catalog of transformation modes: the shipped
// built-ins plus user-defined modes, in stable insertion order.
package mode

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"maestro/internal/domain"
)

// NoopModeID is the reserved mode that returns the transcript unchanged.
const NoopModeID = "none"

var (
	ErrValidation    = errors.New("invalid mode")
	ErrProtectedMode = errors.New("built-in modes cannot be deleted")
	ErrNotBuiltIn    = errors.New("mode has no shipped default")
	ErrUnknownMode   = errors.New("unknown mode")
)

var idPattern = regexp.MustCompile(`^[a-z0-9]+$`)

// defaultModes are the shipped built-ins, in catalog order. Their ids are
// reserved: they can be edited and reset but never deleted.
var defaultModes = []domain.Mode{
	{
		ID:       NoopModeID,
		Name:     "📝 Raw Transcript",
		Prompt:   "Return the transcript as-is without any modifications.",
		Enabled:  true,
		Shortcut: "CommandOrControl+Shift+1",
	},
	{
		ID:       "enhanced",
		Name:     "✨ Enhanced Transcript",
		Prompt:   "Clean up this transcript by removing filler words (um, uh, like, you know), fixing contradictions and corrections (e.g., \"tell john wait it's jack\" becomes \"tell jack\"), improving grammar and clarity while maintaining the original meaning and tone.",
		Enabled:  true,
		Shortcut: "CommandOrControl+Shift+2",
	},
	{
		ID:       "email",
		Name:     "📧 Email",
		Prompt:   "Draft a professional email based on the information below. Remove any subject line from the output. Format it as a complete email body. Sign it on behalf of {userName}.",
		Enabled:  true,
		Shortcut: "CommandOrControl+Shift+3",
	},
	{
		ID:       "slack",
		Name:     "💬 Slack",
		Prompt:   "Convert the following into a casual, friendly Slack message. Make it conversational and appropriate for team communication. Keep it concise and engaging.",
		Enabled:  true,
		Shortcut: "CommandOrControl+Shift+4",
	},
	{
		ID:       "whatsapp",
		Name:     "📱 WhatsApp",
		Prompt:   "Convert the following into a casual WhatsApp message. Make it friendly, conversational, and suitable for personal or informal business communication. Keep it concise and use emojis sparingly if appropriate.",
		Enabled:  true,
		Shortcut: "CommandOrControl+Shift+5",
	},
	{
		ID:       "linkedin",
		Name:     "💼 LinkedIn",
		Prompt:   "Convert the following into a professional LinkedIn post or message. Make it engaging, professional, and suitable for business networking. Include relevant insights and maintain a thought-leadership tone.",
		Enabled:  true,
		Shortcut: "CommandOrControl+Shift+6",
	},
}

// IsBuiltIn reports whether id is one of the reserved shipped mode ids.
func IsBuiltIn(id string) bool {
	for _, m := range defaultModes {
		if m.ID == id {
			return true
		}
	}
	return false
}

// DefaultModes returns a copy of the shipped catalog.
func DefaultModes() []domain.Mode {
	out := make([]domain.Mode, len(defaultModes))
	copy(out, defaultModes)
	return out
}

// Catalog is the sole authority for mode definitions. Iteration order is
// insertion order with built-ins first; the registry's conflict pass and the
// UI both depend on it being stable.
type Catalog struct {
	mu    sync.RWMutex
	order []string
	modes map[string]domain.Mode
}

// NewCatalog builds the effective catalog by merging persisted entries over
// the shipped defaults. A nil or partial persisted list (first run, corrupted
// settings) still yields every built-in.
func NewCatalog(persisted []domain.Mode) *Catalog {
	c := &Catalog{modes: make(map[string]domain.Mode)}

	overlay := make(map[string]domain.Mode, len(persisted))
	for _, m := range persisted {
		overlay[m.ID] = m
	}

	for _, def := range defaultModes {
		m := def
		if saved, ok := overlay[def.ID]; ok {
			m = saved
			m.ID = def.ID
		}
		c.insert(m)
	}
	for _, m := range persisted {
		if IsBuiltIn(m.ID) {
			continue
		}
		if idPattern.MatchString(m.ID) {
			c.insert(m)
		}
	}
	return c
}

// insert must be called with the lock held (or before the catalog escapes).
func (c *Catalog) insert(m domain.Mode) {
	if _, exists := c.modes[m.ID]; !exists {
		c.order = append(c.order, m.ID)
	}
	c.modes[m.ID] = m
}

// Get returns the mode for id, if present.
func (c *Catalog) Get(id string) (domain.Mode, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.modes[id]
	return m, ok
}

// List returns all modes in catalog order.
func (c *Catalog) List() []domain.Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Mode, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.modes[id])
	}
	return out
}

// Upsert inserts a new mode or replaces an existing one with the same id.
func (c *Catalog) Upsert(m domain.Mode) error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	if !idPattern.MatchString(m.ID) {
		return fmt.Errorf("%w: id %q must match [a-z0-9]+", ErrValidation, m.ID)
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: display name is required", ErrValidation)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.insert(m)
	return nil
}

// Remove deletes a user-created mode. Built-in ids are protected.
func (c *Catalog) Remove(id string) error {
	if IsBuiltIn(id) {
		return fmt.Errorf("%w: %q", ErrProtectedMode, id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.modes[id]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMode, id)
	}
	delete(c.modes, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// ResetToDefault restores the shipped prompt and shortcut for a built-in id.
func (c *Catalog) ResetToDefault(id string) error {
	for _, def := range defaultModes {
		if def.ID == id {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.modes[id] = def
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrNotBuiltIn, id)
}

// RenderPrompt substitutes every occurrence of the {userName} placeholder.
// No other templating is supported.
func RenderPrompt(m domain.Mode, userName string) string {
	return strings.ReplaceAll(m.Prompt, "{userName}", userName)
}
