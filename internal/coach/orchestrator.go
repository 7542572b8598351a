// Package coach manages interview-coaching sessions: one current question,
// per-language answer variants, and the fan-out of hint requests.
package coach

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/meetlive/caption-coach/internal/captions"
	"github.com/meetlive/caption-coach/internal/ttlcache"
	"github.com/meetlive/caption-coach/pkg/log"
)

// Answer variants a session can hold. VariantSame means "reply in the
// language of the question".
const (
	VariantUkrainian = "uk"
	VariantEnglish   = "en"
	VariantSame      = "same"
)

// DefaultDedupTTL is how long a (variant, question) pair is considered
// already asked.
const DefaultDedupTTL = 45 * time.Second

const thinkingPlaceholder = "Thinking..."

// Requester produces one hint for one question variant.
type Requester interface {
	Coach(ctx context.Context, question, variant string) (string, error)
}

// Sink receives coach output for display.
type Sink interface {
	PushCoachHint(question, hint string)
	SetCoachTabsVisible(visible bool)
}

type session struct {
	question      string
	responses     map[string]string
	activeVariant string
}

// Orchestrator owns the coaching session. A new question replaces the
// session wholesale; hint responses are applied only if their question and
// variant still match the session when they arrive.
type Orchestrator struct {
	requester Requester
	sink      Sink

	mu      sync.Mutex
	session session
	dedup   *ttlcache.Set
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDedupSet replaces the recent-question set, mainly for tests.
func WithDedupSet(set *ttlcache.Set) Option {
	return func(o *Orchestrator) {
		o.dedup = set
	}
}

func NewOrchestrator(requester Requester, sink Sink, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		requester: requester,
		sink:      sink,
		dedup:     ttlcache.NewSet(DefaultDedupTTL),
		session:   session{activeVariant: VariantSame, responses: map[string]string{}},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Ask starts a new coaching session for question. English questions fan out
// to Ukrainian and English variants with selectable tabs; anything else gets
// a single same-language request. force bypasses recent-question dedup and
// is used for Cyrillic questions, which have already passed the caller's own
// filtering.
func (o *Orchestrator) Ask(ctx context.Context, question string, force bool) {
	// Latin letters alone are not enough: Cyrillic questions routinely carry
	// English tech terms and must stay on the single same-language path.
	english := captions.LooksLikeEnglish(question) && !captions.HasCyrillic(question)

	active := VariantSame
	if english {
		active = VariantUkrainian
	}

	o.mu.Lock()
	o.session = session{
		question:      question,
		responses:     map[string]string{},
		activeVariant: active,
	}
	o.mu.Unlock()

	o.sink.SetCoachTabsVisible(english)
	o.sink.PushCoachHint(question, thinkingPlaceholder)

	if english {
		go o.request(ctx, question, VariantUkrainian, force)
		go o.request(ctx, question, VariantEnglish, force)
		return
	}
	go o.request(ctx, question, VariantSame, force)
}

// SetActiveVariant switches the visible answer tab and re-renders from
// whatever responses have already arrived.
func (o *Orchestrator) SetActiveVariant(variant string) {
	o.mu.Lock()
	o.session.activeVariant = variant
	question := o.session.question
	hint := o.session.responses[variant]
	if hint == "" {
		hint = o.session.responses[VariantSame]
	}
	o.mu.Unlock()

	if hint == "" {
		hint = thinkingPlaceholder
	}
	o.sink.PushCoachHint(question, hint)
}

// ActiveVariant returns the currently selected answer tab.
func (o *Orchestrator) ActiveVariant() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session.activeVariant
}

// CurrentQuestion returns the question the session is answering.
func (o *Orchestrator) CurrentQuestion() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session.question
}

// Reset clears the session, e.g. when the panel is hidden.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.session = session{activeVariant: VariantSame, responses: map[string]string{}}
	o.mu.Unlock()
	o.sink.PushCoachHint("", "")
}

func dedupeKey(question, variant string) string {
	return variant + "|" + strings.ToLower(strings.TrimSpace(question))
}

func (o *Orchestrator) request(ctx context.Context, question, variant string, force bool) {
	key := dedupeKey(question, variant)
	if !force && o.dedup.Contains(key) {
		log.Debug("coach request skipped, recently asked: %s", key)
		return
	}

	hint, err := o.requester.Coach(ctx, question, variant)
	if err != nil {
		log.Warn("coach request failed for %q (%s): %v", question, variant, err)
		if o.isRelevant(question, variant) {
			o.sink.PushCoachHint(question, err.Error())
		}
		return
	}

	o.dedup.Mark(key)

	o.mu.Lock()
	current := o.session.question == question
	if current {
		o.session.responses[variant] = hint
	}
	o.mu.Unlock()
	if !current {
		// The interviewer moved on while this hint was in flight.
		return
	}

	if o.isRelevant(question, variant) {
		o.sink.PushCoachHint(question, hint)
	}
}

// isRelevant reports whether a response for (question, variant) should be
// shown right now.
func (o *Orchestrator) isRelevant(question, variant string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session.question == question && o.session.activeVariant == variant
}
