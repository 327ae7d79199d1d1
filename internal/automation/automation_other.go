//go:build !darwin

package automation

import (
	"context"
	"errors"
)

type Probe struct{}

func (p *Probe) FocusedTextField(_ context.Context) bool { return false }

type Paster struct{}

func (p *Paster) Authorized() bool { return false }

func (p *Paster) PasteKeystroke(_ context.Context) error {
	return errors.New("paste automation is only supported on macOS")
}
