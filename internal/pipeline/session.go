// Package pipeline wires caption fragments through debouncing, filtering
// and deduplication into translation and coaching requests.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/meetlive/caption-coach/internal/captions"
	"github.com/meetlive/caption-coach/internal/config"
	"github.com/meetlive/caption-coach/internal/debounce"
	"github.com/meetlive/caption-coach/internal/dispatcher"
	"github.com/meetlive/caption-coach/internal/ttlcache"
	"github.com/meetlive/caption-coach/pkg/log"
)

// DefaultSourceDedupTTL is how long a finalized caption suppresses repeats
// of itself.
const DefaultSourceDedupTTL = 20 * time.Second

// Status lines pushed to the UI.
const (
	statusTranslating = "Translating..."
	statusListening   = "Listening..."
	statusCoachKeeps  = "Coach keeps previous answer"
	statusCoachOnly   = "Coach-only mode for RU/UK"
)

// SettingsSource supplies the current runtime settings. A fresh snapshot is
// taken for every finalized utterance so toggles apply immediately.
type SettingsSource interface {
	LoadSettings(ctx context.Context) (config.RuntimeSettings, error)
}

// Translator is the translation surface the session needs.
type Translator interface {
	Translate(ctx context.Context, req dispatcher.TranslateRequest) (dispatcher.Result, error)
}

// Coacher starts a coaching session for a question.
type Coacher interface {
	Ask(ctx context.Context, question string, force bool)
}

// Sink receives pipeline output for display.
type Sink interface {
	PushStatus(message string, isError bool)
	AddTranslation(source, translated string, cached bool)
}

// Classifiers are the heuristic decisions the session makes about an
// utterance. They default to the captions package but stay swappable, since
// keyword heuristics need tuning without touching orchestration.
type Classifiers struct {
	IsCaptionLike      func(text string) bool
	IsQuestion         func(text string) bool
	ShouldTriggerCoach func(text string, questionDetected bool) bool
	IsSubstantial      func(text string) bool
	IsContinuationCue  func(text string) bool
}

func defaultClassifiers() Classifiers {
	return Classifiers{
		IsCaptionLike:      captions.IsCaptionLike,
		IsQuestion:         captions.IsQuestion,
		ShouldTriggerCoach: captions.ShouldTriggerCoach,
		IsSubstantial:      captions.IsSubstantial,
		IsContinuationCue:  captions.IsContinuationCue,
	}
}

// Session processes caption fragments for one call. Fragments arrive via
// Handle, settle in the debounce buffer, and each finalized utterance runs
// through filtering, dedup and the translate/coach branching.
type Session struct {
	ctx        context.Context
	settings   SettingsSource
	translator Translator
	coacher    Coacher
	sink       Sink

	buffer      *debounce.Buffer
	sourceDedup *ttlcache.Set
	history     *History
	classify    Classifiers
}

// Option configures a Session.
type Option func(*sessionConfig)

type sessionConfig struct {
	quietPeriod    time.Duration
	sourceDedupTTL time.Duration
	historySize    int
	classifiers    Classifiers
}

// WithQuietPeriod overrides the debounce window.
func WithQuietPeriod(d time.Duration) Option {
	return func(c *sessionConfig) {
		c.quietPeriod = d
	}
}

// WithSourceDedupTTL overrides the repeated-caption window.
func WithSourceDedupTTL(ttl time.Duration) Option {
	return func(c *sessionConfig) {
		c.sourceDedupTTL = ttl
	}
}

// WithHistorySize overrides the translation history capacity.
func WithHistorySize(n int) Option {
	return func(c *sessionConfig) {
		c.historySize = n
	}
}

// WithClassifiers replaces the utterance heuristics. Nil fields keep their
// defaults.
func WithClassifiers(c Classifiers) Option {
	return func(cfg *sessionConfig) {
		if c.IsCaptionLike != nil {
			cfg.classifiers.IsCaptionLike = c.IsCaptionLike
		}
		if c.IsQuestion != nil {
			cfg.classifiers.IsQuestion = c.IsQuestion
		}
		if c.ShouldTriggerCoach != nil {
			cfg.classifiers.ShouldTriggerCoach = c.ShouldTriggerCoach
		}
		if c.IsSubstantial != nil {
			cfg.classifiers.IsSubstantial = c.IsSubstantial
		}
		if c.IsContinuationCue != nil {
			cfg.classifiers.IsContinuationCue = c.IsContinuationCue
		}
	}
}

// NewSession creates a session. ctx bounds all background work the session
// starts; cancelling it abandons in-flight requests.
func NewSession(
	ctx context.Context,
	settings SettingsSource,
	translator Translator,
	coacher Coacher,
	sink Sink,
	opts ...Option,
) *Session {
	cfg := sessionConfig{
		quietPeriod:    debounce.DefaultQuietPeriod,
		sourceDedupTTL: DefaultSourceDedupTTL,
		historySize:    DefaultHistorySize,
		classifiers:    defaultClassifiers(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Session{
		ctx:         ctx,
		settings:    settings,
		translator:  translator,
		coacher:     coacher,
		sink:        sink,
		sourceDedup: ttlcache.NewSet(cfg.sourceDedupTTL),
		history:     NewHistory(cfg.historySize),
		classify:    cfg.classifiers,
	}
	s.buffer = debounce.NewBuffer(s.process, debounce.WithQuietPeriod(cfg.quietPeriod))
	return s
}

// Handle feeds one raw caption fragment into the debounce buffer.
func (s *Session) Handle(text, speaker string) {
	s.buffer.Offer(debounce.Fragment{Text: text, Speaker: speaker})
}

// History returns the recent translations, newest first.
func (s *Session) History() []HistoryEntry {
	return s.history.Entries()
}

// Close drops any pending fragment and stops the debounce timer.
func (s *Session) Close() {
	s.buffer.Close()
}

// process handles one finalized utterance.
func (s *Session) process(f debounce.Fragment) {
	ctx := s.ctx

	settings, err := s.settings.LoadSettings(ctx)
	if err != nil {
		log.Error("failed to load settings: %v", err)
		return
	}
	if !settings.Enabled || !settings.PanelVisible {
		return
	}

	speaker := captions.NormalizeSpeaker(f.Speaker)
	// Only clear, speaker-attributed captions from interlocutors count.
	if speaker == "" || captions.IsSelfSpeaker(speaker) {
		return
	}

	text := captions.Normalize(f.Text)
	// Dedup on the case-folded text: rolling caption re-renders recase words
	// mid-sentence. The original casing still flows to requests and display.
	if !s.classify.IsCaptionLike(text) || s.sourceDedup.Seen(strings.ToLower(text)) {
		return
	}

	questionDetected := s.classify.IsQuestion(text)

	// Cyrillic utterances are already in the viewer's language; run the
	// coach only, never the translator.
	if captions.HasCyrillic(text) {
		if s.classify.IsContinuationCue(text) {
			s.sink.PushStatus(statusCoachKeeps, false)
			return
		}
		if settings.CoachEnabled && (s.classify.ShouldTriggerCoach(text, questionDetected) || s.classify.IsSubstantial(text)) {
			s.coacher.Ask(ctx, text, true)
		}
		s.sink.PushStatus(statusCoachOnly, false)
		return
	}

	if settings.CoachEnabled && s.classify.ShouldTriggerCoach(text, questionDetected) {
		s.coacher.Ask(ctx, text, false)
	}

	s.sink.PushStatus(statusTranslating, false)

	res, err := s.translator.Translate(ctx, dispatcher.TranslateRequest{
		Text:       text,
		TargetLang: settings.TargetLanguage,
		Model:      settings.Model,
	})
	if err != nil {
		s.sink.PushStatus(err.Error(), true)
		return
	}

	s.history.Add(text, captions.DetectScriptLanguage(text), res.Text, res.Cached)
	s.sink.AddTranslation(text, res.Text, res.Cached)
	s.sink.PushStatus(statusListening, false)
}

// CoachRequester adapts a Dispatcher to the coach.Requester interface,
// resolving the model from the current settings per request.
type CoachRequester struct {
	Settings   SettingsSource
	Dispatcher interface {
		Coach(ctx context.Context, req dispatcher.CoachRequest) (dispatcher.Result, error)
	}
}

func (r CoachRequester) Coach(ctx context.Context, question, variant string) (string, error) {
	settings, err := r.Settings.LoadSettings(ctx)
	if err != nil {
		return "", err
	}
	res, err := r.Dispatcher.Coach(ctx, dispatcher.CoachRequest{
		Question: question,
		Variant:  variant,
		Model:    settings.Model,
	})
	if err != nil {
		return "", err
	}
	return res.Text, nil
}
