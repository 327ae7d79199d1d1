//go:build !darwin

package hotkeys

import (
	"errors"

	"maestro/internal/domain"
)

var errUnsupported = errors.New("global shortcuts are only supported on macOS")

func bind(_ domain.KeyCombo, _ func()) (func(), error) {
	return nil, errUnsupported
}
