package usecase

import (
	"sync"
	"time"

	"maestro/internal/domain"
	"maestro/internal/ports"
)

type activeSession struct {
	handle      ports.RecordingHandle
	triggerMode string // mode id stamped by a mode-specific shortcut, "" otherwise
	startedAt   time.Time

	stateMu sync.Mutex
	state   domain.SessionState
}

func (s *activeSession) setState(state domain.SessionState) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.state = state
}

func (s *activeSession) getState() domain.SessionState {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}
