// Package captions provides the pure text classifiers the caption pipeline
// is built from: normalization, caption-likeness and question detection,
// speaker filtering and language heuristics.
//
// Live captions are noisy and partially rendered, so everything here is
// best-effort by design. The functions are total and side-effect free.
package captions

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MinTextLength is the shortest text accepted as a caption.
	MinTextLength = 2
	// MaxTextLength is the longest text accepted as a caption. Live caption
	// rows are short; anything longer is a rolled-up transcript block or
	// unrelated page text.
	MaxTextLength = 280
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize collapses internal whitespace runs to a single space and trims.
func Normalize(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

var speakerPunct = strings.NewReplacer(
	".", "", ",", "", "!", "", "?", "", ";", "", ":", "",
	"(", "", ")", "", "[", "", "]", "", `"`, "", "'", "",
)

// NormalizeSpeaker canonicalizes a speaker label: whitespace-normalized,
// lowercased, punctuation stripped.
func NormalizeSpeaker(name string) string {
	return speakerPunct.Replace(strings.ToLower(Normalize(name)))
}

// selfSpeakerLabels are the call UI's labels for the local participant,
// in the two UI languages the scraper encounters.
var selfSpeakerLabels = map[string]struct{}{
	"you": {},
	"вы":  {},
}

// IsSelfSpeaker reports whether a speaker label refers to the local
// participant. Self speech is never translated or coached.
func IsSelfSpeaker(name string) bool {
	_, ok := selfSpeakerLabels[NormalizeSpeaker(name)]
	return ok
}

// LooksLikeEnglish reports whether the text contains any Latin letters.
func LooksLikeEnglish(text string) bool {
	for _, r := range text {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			return true
		}
	}
	return false
}

// HasCyrillic reports whether the text contains any Cyrillic letters,
// including the Ukrainian-specific ІіЇїЄєҐґ and Russian Ёё.
func HasCyrillic(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}

// blockedChrome are UI-chrome phrases that show up in the same live regions
// as captions. Any text containing one is rejected outright.
var blockedChrome = []string{
	"you are presenting",
	"microphone",
	"camera",
	"joined",
	"left the meeting",
	"meeting details",
	"turn on captions",
	"raise hand",
}

// IsCaptionLike reports whether text plausibly is spoken-caption content:
// within length bounds, free of UI chrome, and containing Latin or Cyrillic
// letters.
func IsCaptionLike(text string) bool {
	if n := utf8.RuneCountInString(text); n < MinTextLength || n > MaxTextLength {
		return false
	}

	lower := strings.ToLower(text)
	for _, token := range blockedChrome {
		if strings.Contains(lower, token) {
			return false
		}
	}

	return LooksLikeEnglish(text) || HasCyrillic(text)
}

// RE2's \b only understands ASCII word characters, so the Cyrillic lexicons
// use explicit non-letter delimiters instead of word boundaries.
var (
	englishQuestionStart = regexp.MustCompile(`^(what|why|how|when|where|which|who|can|could|would|do|does|did|are|is|was|were)\b`)
	ruUkQuestionWord     = regexp.MustCompile(`(^|[^\p{L}])(як би ви|як|чому|що|коли|де|навіщо|хто|який|яка|яке|які|можете|можеш|можна|поясніть|поясни|розкажіть|розкажи|опишіть|опиши|покажіть|покажи|как|почему|что|когда|где|зачем|кто|какой|какая|какие|можешь|можно|объясните|объясни|расскажите|расскажи|опишите|покажите|покажи)($|[^\p{L}])`)
	imperativeAsk        = regexp.MustCompile(`(^|[^\p{L}])(describe|tell me|walk me through|explain|опиши|опишите|расскажи|расскажите|поясни|поясните|розкажи|розкажіть|опишіть|поясніть)($|[^\p{L}])`)
)

// IsQuestion reports whether text reads like a question or a request for an
// answer: an explicit "?", an English interrogative opener, or a RU/UK
// interrogative or imperative-ask token.
func IsQuestion(text string) bool {
	normalized := Normalize(text)
	if normalized == "" {
		return false
	}

	if strings.Contains(normalized, "?") {
		return true
	}

	lower := strings.ToLower(normalized)
	return englishQuestionStart.MatchString(lower) ||
		ruUkQuestionWord.MatchString(lower) ||
		imperativeAsk.MatchString(lower)
}

var promptLike = regexp.MustCompile(`(^|[^\p{L}])(опиши|опишите|расскажи|расскажите|поясни|поясните|розкажи|розкажіть|поясніть|яким чином|каким образом|сценарий|flow|флоу|інтеграц\p{L}*|интеграц\p{L}*|архитектур\p{L}*|архітектур\p{L}*)($|[^\p{L}])`)

// ShouldTriggerCoach decides whether an utterance warrants a coaching
// request. A detected question always triggers. Otherwise longer prompt-like
// phrases ("describe the architecture", "каким образом ...") trigger as a
// fallback for imperfect live captions that drop question marks.
func ShouldTriggerCoach(text string, questionDetected bool) bool {
	if questionDetected {
		return true
	}

	normalized := strings.ToLower(Normalize(text))
	if normalized == "" {
		return false
	}

	if len(strings.Fields(normalized)) < 4 {
		return false
	}

	return promptLike.MatchString(normalized)
}

// IsSubstantial reports whether the text is long enough to be a real
// interviewer prompt rather than a fragment: at least 4 words or 24 characters.
func IsSubstantial(text string) bool {
	normalized := Normalize(text)
	if normalized == "" {
		return false
	}
	return len(strings.Fields(normalized)) >= 4 || utf8.RuneCountInString(normalized) >= 24
}

// continueCueTokens signal "keep going" rather than a new question,
// in English, Russian and Ukrainian.
var continueCueTokens = []string{
	"продолжай",
	"продовжуй",
	"дальше",
	"далі",
	"угу продолжай",
	"ok continue",
	"continue",
	"go on",
	"keep going",
	"next",
}

// IsContinuationCue reports whether text is a short acknowledgement or a
// known continue/go-on phrase. The coach keeps its previous answer for these.
func IsContinuationCue(text string) bool {
	normalized := strings.ToLower(Normalize(text))
	if normalized == "" {
		return false
	}
	if utf8.RuneCountInString(normalized) <= 2 {
		return true
	}
	for _, token := range continueCueTokens {
		if normalized == token || strings.Contains(normalized, token) {
			return true
		}
	}
	return false
}
