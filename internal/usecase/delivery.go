package usecase

import (
	"context"
	"fmt"

	"maestro/internal/domain"
	"maestro/internal/ports"
)

// Decide picks paste-vs-show for a finished transcript. Without automation
// permission the window is always shown; the clipboard still receives the
// text so the user can paste manually.
func Decide(hadFocusedTextField bool, hasAutomationPermission bool) domain.DeliveryMethod {
	if !hasAutomationPermission {
		return domain.DeliverShowWindow
	}
	if hadFocusedTextField {
		return domain.DeliverPaste
	}
	return domain.DeliverShowWindow
}

// deliverer copies the final text to the clipboard and either simulates the
// paste keystroke into the previously focused application or asks the UI to
// surface the result window. A failed paste never loses the text.
type deliverer struct {
	clipboard ports.Clipboard
	probe     ports.FocusProbe
	paster    ports.Paster
	events    ports.EventSink
}

func newDeliverer(clipboard ports.Clipboard, probe ports.FocusProbe, paster ports.Paster, events ports.EventSink) deliverer {
	return deliverer{clipboard: clipboard, probe: probe, paster: paster, events: events}
}

func (d deliverer) Deliver(ctx context.Context, text string) domain.DeliveryResult {
	copied := true
	if err := d.clipboard.SetText(ctx, text); err != nil {
		copied = false
		d.events.SessionError(domain.ErrorCodeClipboard, fmt.Sprintf("clipboard write failed: %v", err))
	}

	method := Decide(d.probe.FocusedTextField(ctx), d.paster.Authorized())
	if method == domain.DeliverPaste {
		if err := d.paster.PasteKeystroke(ctx); err != nil {
			d.events.SessionError(domain.ErrorCodeDelivery, fmt.Sprintf("auto-paste failed: %v", err))
			method = domain.DeliverShowWindow
		}
	}

	return domain.DeliveryResult{Method: method, Copied: copied}
}
