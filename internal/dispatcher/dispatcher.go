// Package dispatcher turns utterances into LLM translation and coaching
// calls, deduplicating concurrent requests and caching recent results.
package dispatcher

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"github.com/meetlive/caption-coach/internal/captions"
	"github.com/meetlive/caption-coach/internal/llm"
	"github.com/meetlive/caption-coach/internal/resultcache"
	"github.com/meetlive/caption-coach/pkg/log"
)

const (
	translationTemperature = 0
	coachTemperature       = 0.2

	// Resume context beyond this length is cut before it reaches the prompt.
	maxResumeRunes = 6000

	// The coach reply contract is exactly three lines; anything past that
	// is model chatter and gets dropped.
	maxCoachLines = 3
)

// Completer is the LLM surface the dispatcher needs.
type Completer interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (string, error)
}

// ResumeProvider supplies the candidate profile text for coach prompts.
type ResumeProvider interface {
	ResumeContext(ctx context.Context) (string, error)
}

// Result carries the LLM output and whether it was served from cache.
type Result struct {
	Text   string
	Cached bool
}

// TranslateRequest asks for one caption translation.
type TranslateRequest struct {
	Text       string
	TargetLang string
	Model      string
}

// CoachRequest asks for a three-line answer hint for one interviewer question.
type CoachRequest struct {
	Question string
	Variant  string // "uk", "en", "ru", or "same"
	Model    string
}

// Dispatcher serializes identical in-flight requests through singleflight
// and keeps finished results in a bounded TTL cache, so a caption that
// repeats within the cache window never hits the API twice.
type Dispatcher struct {
	client   Completer
	cache    *resultcache.Cache
	detector *captions.Detector
	resume   ResumeProvider
	group    singleflight.Group
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithResumeProvider attaches a source of candidate profile text.
func WithResumeProvider(p ResumeProvider) Option {
	return func(d *Dispatcher) {
		d.resume = p
	}
}

// WithDetector overrides the question-language detector.
func WithDetector(det *captions.Detector) Option {
	return func(d *Dispatcher) {
		d.detector = det
	}
}

func New(client Completer, cache *resultcache.Cache, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		client:   client,
		cache:    cache,
		detector: captions.NewDetector(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// translationKey builds the cache key for a translation request. The text is
// trimmed and lowercased so caption re-renders with different casing share
// one entry.
func translationKey(text, targetLang, model string) string {
	return fmt.Sprintf("%s|%s|%s", targetLang, model, strings.ToLower(strings.TrimSpace(text)))
}

func coachKey(question, model, variant string) string {
	return fmt.Sprintf("coach|%s|%s|%s", variant, model, strings.ToLower(strings.TrimSpace(question)))
}

// Translate returns the translation for req.Text, serving from cache when a
// recent identical request already completed.
func (d *Dispatcher) Translate(ctx context.Context, req TranslateRequest) (Result, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return Result{}, fmt.Errorf("empty source text")
	}

	key := translationKey(text, req.TargetLang, req.Model)
	if cached, ok := d.cache.Get(key); ok {
		return Result{Text: cached, Cached: true}, nil
	}

	value, err, shared := d.group.Do(key, func() (any, error) {
		translated, err := d.client.Complete(ctx, llm.CompletionRequest{
			Model:        req.Model,
			Temperature:  translationTemperature,
			SystemPrompt: translationSystemPrompt,
			UserPrompt:   buildTranslationPrompt(req.TargetLang, text),
		})
		if err != nil {
			return "", err
		}
		d.cache.Put(key, translated)
		return translated, nil
	})
	if err != nil {
		return Result{}, err
	}
	if shared {
		log.Debug("translation request coalesced: %s", key)
	}
	return Result{Text: value.(string)}, nil
}

// Coach returns a three-line answer hint for req.Question in the requested
// language variant.
func (d *Dispatcher) Coach(ctx context.Context, req CoachRequest) (Result, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return Result{}, fmt.Errorf("empty question text")
	}

	key := coachKey(question, req.Model, req.Variant)
	if cached, ok := d.cache.Get(key); ok {
		return Result{Text: cached, Cached: true}, nil
	}

	value, err, _ := d.group.Do(key, func() (any, error) {
		hint, err := d.client.Complete(ctx, llm.CompletionRequest{
			Model:        req.Model,
			Temperature:  coachTemperature,
			SystemPrompt: buildCoachSystemPrompt(req.Variant, question, d.detector),
			ExtraSystem:  buildProfileBlock(d.resumeContext(ctx)),
			UserPrompt:   buildCoachUserPrompt(question),
		})
		if err != nil {
			return "", err
		}
		hint = trimCoachReply(hint)
		if hint == "" {
			return "", fmt.Errorf("empty coach response")
		}
		d.cache.Put(key, hint)
		return hint, nil
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Text: value.(string)}, nil
}

func (d *Dispatcher) resumeContext(ctx context.Context) string {
	if d.resume == nil {
		return ""
	}
	text, err := d.resume.ResumeContext(ctx)
	if err != nil {
		log.Warn("failed to load resume context: %v", err)
		return ""
	}
	return truncateRunes(text, maxResumeRunes)
}

// trimCoachReply keeps the first three non-empty lines of the model output.
func trimCoachReply(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == maxCoachLines {
			break
		}
	}
	return strings.Join(lines, "\n")
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
