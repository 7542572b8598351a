// Package ttlcache provides the small time-expiring collections that keep
// the caption pipeline from reprocessing text it has already handled.
package ttlcache

import (
	"sync"
	"time"
)

// Set is a bounded, time-expiring set of string keys. Entries older than the
// TTL are logically absent: every query lazily prunes expired entries before
// the lookup, so physical cleanup never needs a background task.
type Set struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]time.Time
}

// SetOption configures a Set.
type SetOption func(*Set)

// WithNowFunc replaces the clock. Intended for tests.
func WithNowFunc(now func() time.Time) SetOption {
	return func(s *Set) {
		s.now = now
	}
}

// NewSet creates a set whose entries expire after ttl.
func NewSet(ttl time.Duration, opts ...SetOption) *Set {
	s := &Set{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seen reports whether key is present within the TTL window, recording it as
// seen-now when it was not. The first call for a key returns false, later
// calls within the window return true.
func (s *Set) Seen(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)

	if _, ok := s.entries[key]; ok {
		return true
	}
	s.entries[key] = now
	return false
}

// Contains reports whether key is present within the TTL window without
// recording it.
func (s *Set) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(s.now())
	_, ok := s.entries[key]
	return ok
}

// Mark records key as seen-now regardless of prior state.
func (s *Set) Mark(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)
	s.entries[key] = now
}

// Len returns the number of live entries.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(s.now())
	return len(s.entries)
}

// pruneLocked drops expired entries. Must be called with s.mu held.
func (s *Set) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.ttl)
	for key, ts := range s.entries {
		if ts.Before(cutoff) {
			delete(s.entries, key)
		}
	}
}
