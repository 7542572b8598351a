package coach

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetlive/caption-coach/internal/ttlcache"
)

type hintCall struct {
	question string
	hint     string
}

type recordingSink struct {
	mu    sync.Mutex
	hints []hintCall
	tabs  []bool
}

func (s *recordingSink) PushCoachHint(question, hint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hints = append(s.hints, hintCall{question: question, hint: hint})
}

func (s *recordingSink) SetCoachTabsVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tabs = append(s.tabs, visible)
}

func (s *recordingSink) lastHint() (hintCall, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.hints) == 0 {
		return hintCall{}, false
	}
	return s.hints[len(s.hints)-1], true
}

func (s *recordingSink) lastTabs() (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tabs) == 0 {
		return false, false
	}
	return s.tabs[len(s.tabs)-1], true
}

type scriptedRequester struct {
	mu      sync.Mutex
	calls   []string // "variant|question"
	replies map[string]string
	errs    map[string]error
	release chan struct{} // when set, Coach blocks until closed
}

func newScriptedRequester() *scriptedRequester {
	return &scriptedRequester{
		replies: map[string]string{},
		errs:    map[string]error{},
	}
}

func (r *scriptedRequester) Coach(_ context.Context, question, variant string) (string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, variant+"|"+question)
	release := r.release
	reply, okReply := r.replies[variant]
	err := r.errs[variant]
	r.mu.Unlock()

	if release != nil {
		<-release
	}
	if err != nil {
		return "", err
	}
	if !okReply {
		reply = "hint for " + variant
	}
	return reply, nil
}

func (r *scriptedRequester) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *scriptedRequester) calledWith(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.calls {
		if c == key {
			return true
		}
	}
	return false
}

func TestAsk_EnglishQuestionFansOutToBothVariants(t *testing.T) {
	requester := newScriptedRequester()
	sink := &recordingSink{}
	o := NewOrchestrator(requester, sink)

	o.Ask(context.Background(), "How do you handle retries?", false)

	require.Eventually(t, func() bool {
		return requester.callCount() == 2
	}, time.Second, 10*time.Millisecond)
	assert.True(t, requester.calledWith("uk|How do you handle retries?"))
	assert.True(t, requester.calledWith("en|How do you handle retries?"))

	visible, ok := sink.lastTabs()
	require.True(t, ok)
	assert.True(t, visible)
	assert.Equal(t, VariantUkrainian, o.ActiveVariant())
}

func TestAsk_CyrillicQuestionUsesSameVariant(t *testing.T) {
	requester := newScriptedRequester()
	sink := &recordingSink{}
	o := NewOrchestrator(requester, sink)

	o.Ask(context.Background(), "Як ви тестуєте свій код?", true)

	require.Eventually(t, func() bool {
		return requester.callCount() == 1
	}, time.Second, 10*time.Millisecond)
	assert.True(t, requester.calledWith("same|Як ви тестуєте свій код?"))

	visible, ok := sink.lastTabs()
	require.True(t, ok)
	assert.False(t, visible)
	assert.Equal(t, VariantSame, o.ActiveVariant())
}

func TestAsk_CyrillicQuestionWithLatinTermsStaysSameVariant(t *testing.T) {
	requester := newScriptedRequester()
	sink := &recordingSink{}
	o := NewOrchestrator(requester, sink)

	o.Ask(context.Background(), "Опишіть ваш CI/CD flow?", true)

	require.Eventually(t, func() bool {
		return requester.callCount() == 1
	}, time.Second, 10*time.Millisecond)
	assert.True(t, requester.calledWith("same|Опишіть ваш CI/CD flow?"))
	assert.False(t, requester.calledWith("uk|Опишіть ваш CI/CD flow?"))

	visible, ok := sink.lastTabs()
	require.True(t, ok)
	assert.False(t, visible)
	assert.Equal(t, VariantSame, o.ActiveVariant())
}

func TestAsk_ShowsThinkingPlaceholderImmediately(t *testing.T) {
	requester := newScriptedRequester()
	requester.release = make(chan struct{})
	sink := &recordingSink{}
	o := NewOrchestrator(requester, sink)

	o.Ask(context.Background(), "Why Go?", false)

	last, ok := sink.lastHint()
	require.True(t, ok)
	assert.Equal(t, "Why Go?", last.question)
	assert.Equal(t, thinkingPlaceholder, last.hint)
	close(requester.release)
}

func TestAsk_ActiveVariantResponseIsShown(t *testing.T) {
	requester := newScriptedRequester()
	requester.replies[VariantUkrainian] = "Keywords: стратегія\nAnswer: так\nExample: проект"
	sink := &recordingSink{}
	o := NewOrchestrator(requester, sink)

	o.Ask(context.Background(), "Why Go?", false)

	require.Eventually(t, func() bool {
		last, ok := sink.lastHint()
		return ok && last.hint == requester.replies[VariantUkrainian]
	}, time.Second, 10*time.Millisecond)
}

func TestSetActiveVariant_RendersStoredResponse(t *testing.T) {
	requester := newScriptedRequester()
	requester.replies[VariantUkrainian] = "ukrainian hint"
	requester.replies[VariantEnglish] = "english hint"
	sink := &recordingSink{}
	o := NewOrchestrator(requester, sink)

	o.Ask(context.Background(), "Why Go?", false)
	require.Eventually(t, func() bool {
		return requester.callCount() == 2
	}, time.Second, 10*time.Millisecond)

	o.SetActiveVariant(VariantEnglish)
	require.Eventually(t, func() bool {
		last, ok := sink.lastHint()
		return ok && last.hint == "english hint"
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, VariantEnglish, o.ActiveVariant())
}

func TestSetActiveVariant_FallsBackToThinking(t *testing.T) {
	requester := newScriptedRequester()
	requester.release = make(chan struct{})
	sink := &recordingSink{}
	o := NewOrchestrator(requester, sink)

	o.Ask(context.Background(), "Why Go?", false)
	o.SetActiveVariant(VariantEnglish)

	last, ok := sink.lastHint()
	require.True(t, ok)
	assert.Equal(t, thinkingPlaceholder, last.hint)
	close(requester.release)
}

func TestAsk_NewQuestionReplacesSession(t *testing.T) {
	requester := newScriptedRequester()
	requester.release = make(chan struct{})
	sink := &recordingSink{}
	o := NewOrchestrator(requester, sink)

	o.Ask(context.Background(), "First question?", false)
	o.Ask(context.Background(), "Second question?", false)
	assert.Equal(t, "Second question?", o.CurrentQuestion())

	// Late replies for the first question must not surface.
	close(requester.release)
	require.Eventually(t, func() bool {
		return requester.callCount() == 4
	}, time.Second, 10*time.Millisecond)

	last, ok := sink.lastHint()
	require.True(t, ok)
	assert.Equal(t, "Second question?", last.question)
}

func TestRequest_DedupSkipsRecentQuestion(t *testing.T) {
	requester := newScriptedRequester()
	sink := &recordingSink{}
	o := NewOrchestrator(requester, sink)

	o.Ask(context.Background(), "Why Go?", false)
	require.Eventually(t, func() bool {
		return requester.callCount() == 1
	}, time.Second, 10*time.Millisecond)

	o.Ask(context.Background(), "Why Go?", false)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, requester.callCount())
}

func TestRequest_ForceBypassesDedup(t *testing.T) {
	requester := newScriptedRequester()
	sink := &recordingSink{}
	o := NewOrchestrator(requester, sink)

	o.Ask(context.Background(), "Почему вы выбрали Go?", true)
	require.Eventually(t, func() bool {
		return requester.callCount() == 1
	}, time.Second, 10*time.Millisecond)

	o.Ask(context.Background(), "Почему вы выбрали Go?", true)
	require.Eventually(t, func() bool {
		return requester.callCount() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestRequest_DedupExpires(t *testing.T) {
	now := time.Now()
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	requester := newScriptedRequester()
	sink := &recordingSink{}
	o := NewOrchestrator(requester, sink, WithDedupSet(ttlcache.NewSet(DefaultDedupTTL, ttlcache.WithNowFunc(clock))))

	o.Ask(context.Background(), "Why Go?", false)
	require.Eventually(t, func() bool {
		return requester.callCount() == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	now = now.Add(DefaultDedupTTL + time.Second)
	mu.Unlock()

	o.Ask(context.Background(), "Why Go?", false)
	require.Eventually(t, func() bool {
		return requester.callCount() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestRequest_FailedRequestIsNotDeduped(t *testing.T) {
	requester := newScriptedRequester()
	requester.errs[VariantSame] = fmt.Errorf("Coach API error 500: boom")
	sink := &recordingSink{}
	o := NewOrchestrator(requester, sink)

	o.Ask(context.Background(), "Почему Go?", true)
	require.Eventually(t, func() bool {
		last, ok := sink.lastHint()
		return ok && last.hint == "Coach API error 500: boom"
	}, time.Second, 10*time.Millisecond)

	requester.mu.Lock()
	delete(requester.errs, VariantSame)
	requester.mu.Unlock()

	o.Ask(context.Background(), "Почему Go?", false)
	require.Eventually(t, func() bool {
		return requester.callCount() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestReset_ClearsSession(t *testing.T) {
	requester := newScriptedRequester()
	sink := &recordingSink{}
	o := NewOrchestrator(requester, sink)

	o.Ask(context.Background(), "Why Go?", false)
	o.Reset()

	assert.Empty(t, o.CurrentQuestion())
	assert.Equal(t, VariantSame, o.ActiveVariant())
	last, ok := sink.lastHint()
	require.True(t, ok)
	assert.Empty(t, last.question)
	assert.Empty(t, last.hint)
}
