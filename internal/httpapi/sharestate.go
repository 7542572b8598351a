package httpapi

import (
	"context"
	"sync"
)

// ShareState records the screen-sharing status reported by the client and
// serves it to the presentation guard's poller.
type ShareState struct {
	mu     sync.Mutex
	active bool
}

func NewShareState() *ShareState {
	return &ShareState{}
}

// Set records the latest reported sharing state.
func (s *ShareState) Set(active bool) {
	s.mu.Lock()
	s.active = active
	s.mu.Unlock()
}

// SharingActive implements guard.ShareDetector.
func (s *ShareState) SharingActive(context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, nil
}
