// Package debounce coalesces the rapid partial re-renders of a live caption
// row into one stable emission per quiet period.
package debounce

import (
	"sync"
	"time"

	"github.com/meetlive/caption-coach/internal/captions"
)

// DefaultQuietPeriod is how long a caption must stay unchanged before it is
// considered settled. Live captions mutate on nearly every word.
const DefaultQuietPeriod = 900 * time.Millisecond

// Fragment is one raw caption observation from the scraper. Speaker may be
// empty when the caption row carried no attribution.
type Fragment struct {
	Text    string
	Speaker string
}

// EmitFunc receives the settled caption once per quiet period.
type EmitFunc func(Fragment)

// Buffer holds at most one pending caption. Each Offer replaces the pending
// slot and restarts the quiet-period timer; when the timer fires the pending
// caption is emitted exactly once and the buffer returns to idle.
//
// Attribution never downgrades: an unattributed fragment is discarded rather
// than overwriting a pending speaker-attributed one. Self-speaker fragments
// are rejected up front.
type Buffer struct {
	quiet time.Duration
	emit  EmitFunc

	mu      sync.Mutex
	pending *Fragment
	timer   *time.Timer
	closed  bool
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithQuietPeriod overrides the quiet-period duration. Intended for tests.
func WithQuietPeriod(d time.Duration) Option {
	return func(b *Buffer) {
		if d > 0 {
			b.quiet = d
		}
	}
}

// NewBuffer creates a debounce buffer that calls emit with each settled
// caption.
func NewBuffer(emit EmitFunc, opts ...Option) *Buffer {
	b := &Buffer{
		quiet: DefaultQuietPeriod,
		emit:  emit,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Offer feeds one raw fragment into the buffer. It returns false when the
// fragment was discarded: self speech, or an unattributed update that would
// have overwritten an attributed pending caption.
func (b *Buffer) Offer(f Fragment) bool {
	incomingSpeaker := captions.NormalizeSpeaker(f.Speaker)
	if incomingSpeaker != "" && captions.IsSelfSpeaker(incomingSpeaker) {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false
	}

	if b.pending != nil {
		existingSpeaker := captions.NormalizeSpeaker(b.pending.Speaker)
		if existingSpeaker != "" && incomingSpeaker == "" {
			return false
		}
	}

	b.pending = &Fragment{Text: f.Text, Speaker: f.Speaker}

	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.quiet, b.fire)
	return true
}

// fire emits the pending caption and resets the buffer to idle.
func (b *Buffer) fire() {
	b.mu.Lock()
	next := b.pending
	b.pending = nil
	b.timer = nil
	closed := b.closed
	b.mu.Unlock()

	if closed || next == nil || next.Text == "" {
		return
	}
	b.emit(*next)
}

// Pending returns a copy of the caption currently waiting out its quiet
// period, if any. Intended for state inspection and tests.
func (b *Buffer) Pending() (Fragment, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending == nil {
		return Fragment{}, false
	}
	return *b.pending, true
}

// Close cancels any pending timer and drops the pending caption. Further
// Offers are rejected.
func (b *Buffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.pending = nil
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
