package dispatcher

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetlive/caption-coach/internal/llm"
	"github.com/meetlive/caption-coach/internal/resultcache"
)

type fakeCompleter struct {
	mu       sync.Mutex
	requests []llm.CompletionRequest
	reply    string
	err      error
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeCompleter) lastRequest() llm.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type staticResume string

func (s staticResume) ResumeContext(context.Context) (string, error) {
	return string(s), nil
}

func TestTranslate_BuildsPromptForTargetLanguage(t *testing.T) {
	client := &fakeCompleter{reply: "Привіт, як справи?"}
	d := New(client, resultcache.New())

	res, err := d.Translate(context.Background(), TranslateRequest{
		Text:       "Hello, how are you?",
		TargetLang: "uk",
		Model:      "gpt-4o-mini",
	})
	require.NoError(t, err)
	assert.Equal(t, "Привіт, як справи?", res.Text)
	assert.False(t, res.Cached)

	req := client.lastRequest()
	assert.Equal(t, "gpt-4o-mini", req.Model)
	assert.Zero(t, req.Temperature)
	assert.Contains(t, req.SystemPrompt, "high fidelity")
	assert.Contains(t, req.UserPrompt, "Translate from English to Ukrainian:")
	assert.Contains(t, req.UserPrompt, "Hello, how are you?")
}

func TestTranslate_RussianTargetLabel(t *testing.T) {
	client := &fakeCompleter{reply: "Привет"}
	d := New(client, resultcache.New())

	_, err := d.Translate(context.Background(), TranslateRequest{Text: "Hello", TargetLang: "ru", Model: "m"})
	require.NoError(t, err)
	assert.Contains(t, client.lastRequest().UserPrompt, "Translate from English to Russian:")
}

func TestTranslate_SecondCallServedFromCache(t *testing.T) {
	client := &fakeCompleter{reply: "Привет"}
	d := New(client, resultcache.New())

	req := TranslateRequest{Text: "Hello there", TargetLang: "ru", Model: "m"}
	first, err := d.Translate(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := d.Translate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, 1, client.callCount())
}

func TestTranslate_CacheKeyIgnoresCaseAndPadding(t *testing.T) {
	client := &fakeCompleter{reply: "Привет"}
	d := New(client, resultcache.New())

	_, err := d.Translate(context.Background(), TranslateRequest{Text: "Hello There", TargetLang: "ru", Model: "m"})
	require.NoError(t, err)

	res, err := d.Translate(context.Background(), TranslateRequest{Text: "  hello there ", TargetLang: "ru", Model: "m"})
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, 1, client.callCount())
}

func TestTranslate_FailuresAreNotCached(t *testing.T) {
	client := &fakeCompleter{err: fmt.Errorf("boom")}
	d := New(client, resultcache.New())

	req := TranslateRequest{Text: "Hello", TargetLang: "ru", Model: "m"}
	_, err := d.Translate(context.Background(), req)
	require.Error(t, err)

	client.err = nil
	client.reply = "Привет"
	res, err := d.Translate(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 2, client.callCount())
}

func TestTranslate_RejectsEmptyText(t *testing.T) {
	d := New(&fakeCompleter{}, resultcache.New())
	_, err := d.Translate(context.Background(), TranslateRequest{Text: "   ", TargetLang: "ru", Model: "m"})
	require.Error(t, err)
}

func TestCoach_ExplicitVariantSetsLanguageRule(t *testing.T) {
	cases := []struct {
		variant string
		rule    string
	}{
		{"uk", "Reply only in Ukrainian."},
		{"en", "Reply only in English."},
		{"ru", "Reply only in Russian."},
	}
	for _, tc := range cases {
		t.Run(tc.variant, func(t *testing.T) {
			client := &fakeCompleter{reply: "Keywords: a\nAnswer: b\nExample: c"}
			d := New(client, resultcache.New())

			_, err := d.Coach(context.Background(), CoachRequest{
				Question: "Tell me about event-driven architecture",
				Variant:  tc.variant,
				Model:    "m",
			})
			require.NoError(t, err)
			req := client.lastRequest()
			assert.Contains(t, req.SystemPrompt, tc.rule)
			assert.InDelta(t, 0.2, req.Temperature, 0.001)
		})
	}
}

func TestCoach_SameVariantDetectsQuestionLanguage(t *testing.T) {
	cases := []struct {
		name     string
		question string
		rule     string
	}{
		{"english", "How would you scale this service?", "Reply only in English."},
		{"ukrainian", "Як би ви масштабували цей сервіс?", "Reply only in Ukrainian."},
		{"russian", "Почему вы выбрали этот подход?", "Reply only in Russian."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &fakeCompleter{reply: "Keywords: a\nAnswer: b\nExample: c"}
			d := New(client, resultcache.New())

			_, err := d.Coach(context.Background(), CoachRequest{Question: tc.question, Variant: "same", Model: "m"})
			require.NoError(t, err)
			assert.Contains(t, client.lastRequest().SystemPrompt, tc.rule)
		})
	}
}

func TestCoach_ProfileBlockFromResumeContext(t *testing.T) {
	client := &fakeCompleter{reply: "Keywords: a\nAnswer: b\nExample: c"}
	d := New(client, resultcache.New(), WithResumeProvider(staticResume("Senior backend engineer, 8 years of Go.")))

	_, err := d.Coach(context.Background(), CoachRequest{Question: "What is your experience?", Variant: "en", Model: "m"})
	require.NoError(t, err)
	req := client.lastRequest()
	assert.Contains(t, req.ExtraSystem, "facts to align with")
	assert.Contains(t, req.ExtraSystem, "Senior backend engineer")
	assert.Contains(t, req.UserPrompt, "Interviewer question:\nWhat is your experience?")
}

func TestCoach_MissingResumeContextGetsPlaceholder(t *testing.T) {
	client := &fakeCompleter{reply: "Keywords: a\nAnswer: b\nExample: c"}
	d := New(client, resultcache.New())

	_, err := d.Coach(context.Background(), CoachRequest{Question: "What is your experience?", Variant: "en", Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "Candidate profile/resume context is not provided.", client.lastRequest().ExtraSystem)
}

func TestCoach_OversizedResumeContextIsTruncated(t *testing.T) {
	client := &fakeCompleter{reply: "Keywords: a\nAnswer: b\nExample: c"}
	long := strings.Repeat("ы", 7000)
	d := New(client, resultcache.New(), WithResumeProvider(staticResume(long)))

	_, err := d.Coach(context.Background(), CoachRequest{Question: "What is your experience?", Variant: "en", Model: "m"})
	require.NoError(t, err)
	assert.Contains(t, client.lastRequest().ExtraSystem, strings.Repeat("ы", maxResumeRunes))
	assert.NotContains(t, client.lastRequest().ExtraSystem, strings.Repeat("ы", maxResumeRunes+1))
}

func TestCoach_ReplyTrimmedToThreeLines(t *testing.T) {
	client := &fakeCompleter{reply: "Keywords: a\n\n  Answer: b  \nExample: c\nBonus line\nAnother one"}
	d := New(client, resultcache.New())

	res, err := d.Coach(context.Background(), CoachRequest{Question: "Why Go?", Variant: "en", Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "Keywords: a\nAnswer: b\nExample: c", res.Text)
}

func TestCoach_VariantsCacheSeparately(t *testing.T) {
	client := &fakeCompleter{reply: "Keywords: a\nAnswer: b\nExample: c"}
	d := New(client, resultcache.New())

	_, err := d.Coach(context.Background(), CoachRequest{Question: "Why Go?", Variant: "uk", Model: "m"})
	require.NoError(t, err)
	_, err = d.Coach(context.Background(), CoachRequest{Question: "Why Go?", Variant: "en", Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, 2, client.callCount())

	res, err := d.Coach(context.Background(), CoachRequest{Question: "Why Go?", Variant: "uk", Model: "m"})
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, 2, client.callCount())
}

func TestCoach_EmptyReplyIsError(t *testing.T) {
	client := &fakeCompleter{reply: "   \n \n"}
	d := New(client, resultcache.New())

	_, err := d.Coach(context.Background(), CoachRequest{Question: "Why Go?", Variant: "en", Model: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty coach response")
}
