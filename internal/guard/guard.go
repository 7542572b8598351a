// Package guard hides the caption panel whenever the user shares their
// screen, so the overlay never leaks into a presentation.
package guard

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/meetlive/caption-coach/pkg/log"
)

// DefaultCheckInterval is how often the sharing state is polled.
const DefaultCheckInterval = 1500 * time.Millisecond

// startPresentingTokens match UI controls that begin a screen share,
// in English, Russian and Ukrainian.
var startPresentingTokens = []string{
	"показать экран",
	"поделиться экраном",
	"представить экран",
	"демонстрация экрана",
	"present now",
	"share screen",
	"present your screen",
	"present",
	"presenter",
	"показ екрана",
	"демонстрація екрана",
	"показати екран",
	"поділитися екраном",
}

// presentingTokens match indicators shown while a share is already running.
var presentingTokens = []string{
	"you are presenting",
	"stop presenting",
	"вы показываете экран",
	"прекратить показ",
	"остановить показ",
	"ви демонструєте екран",
	"зупинити показ",
	"демонстрация экрана",
	"демонстрація екрана",
}

// ShareDetector reports whether a screen share is currently active.
type ShareDetector interface {
	SharingActive(ctx context.Context) (bool, error)
}

// HideFunc hides the panel and persists the hidden state. It must be
// idempotent; the panel is never re-shown automatically.
type HideFunc func(ctx context.Context) error

// Guard watches for screen sharing and hides the panel once per sharing
// session. Re-showing the panel is always an explicit user action.
type Guard struct {
	detector ShareDetector
	hide     HideFunc
	interval time.Duration

	mu                sync.Mutex
	hiddenThisSession bool
}

// Option configures a Guard.
type Option func(*Guard)

// WithCheckInterval overrides the polling interval.
func WithCheckInterval(interval time.Duration) Option {
	return func(g *Guard) {
		g.interval = interval
	}
}

func New(detector ShareDetector, hide HideFunc, opts ...Option) *Guard {
	g := &Guard{
		detector: detector,
		hide:     hide,
		interval: DefaultCheckInterval,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run polls the detector until ctx is cancelled.
func (g *Guard) Run(ctx context.Context) {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.check(ctx)
		}
	}
}

func (g *Guard) check(ctx context.Context) {
	active, err := g.detector.SharingActive(ctx)
	if err != nil {
		log.Warn("screen share check failed: %v", err)
		return
	}
	g.mu.Lock()
	if !active {
		// Sharing ended; the next share hides the panel again.
		g.hiddenThisSession = false
		g.mu.Unlock()
		return
	}
	if g.hiddenThisSession {
		g.mu.Unlock()
		return
	}
	g.mu.Unlock()

	if err := g.hide(ctx); err != nil {
		log.Error("failed to hide panel during screen share: %v", err)
		return
	}
	g.mu.Lock()
	g.hiddenThisSession = true
	g.mu.Unlock()
}

// InterceptAction hides the panel when a UI action label looks like the
// start of a screen share. Returns true when the panel was hidden.
func (g *Guard) InterceptAction(ctx context.Context, label string) bool {
	if !IsStartPresentAction(label) {
		return false
	}
	if err := g.hide(ctx); err != nil {
		log.Error("failed to hide panel for action %q: %v", label, err)
		return false
	}
	g.mu.Lock()
	g.hiddenThisSession = true
	g.mu.Unlock()
	return true
}

// IsStartPresentAction reports whether label matches a start-share control.
func IsStartPresentAction(label string) bool {
	return matchesAny(label, startPresentingTokens)
}

// IsPresentingIndicator reports whether label matches an active-share
// indicator.
func IsPresentingIndicator(label string) bool {
	return matchesAny(label, presentingTokens)
}

func matchesAny(label string, tokens []string) bool {
	haystack := strings.ToLower(strings.TrimSpace(label))
	if haystack == "" {
		return false
	}
	for _, token := range tokens {
		if strings.Contains(haystack, token) {
			return true
		}
	}
	return false
}
