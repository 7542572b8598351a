package captions

import (
	"regexp"
	"strings"

	"github.com/abadojack/whatlanggo"
)

// Lang identifies the language a coaching reply should be written in.
type Lang string

const (
	LangEnglish   Lang = "en"
	LangUkrainian Lang = "uk"
	LangRussian   Lang = "ru"
)

var (
	ukOnlyLetters = regexp.MustCompile(`[іїєґ]`)
	ruOnlyLetters = regexp.MustCompile(`[ыэёъ]`)

	nonLetter = regexp.MustCompile(`[^\p{L}]+`)

	ukQuestionKeywords = map[string]struct{}{
		"як": {}, "чому": {}, "де": {}, "коли": {}, "який": {}, "яка": {},
		"які": {}, "можете": {}, "можеш": {}, "приклад": {},
	}
	ruQuestionKeywords = map[string]struct{}{
		"как": {}, "почему": {}, "где": {}, "когда": {}, "какой": {}, "какая": {},
		"какие": {}, "можете": {}, "можешь": {}, "пожалуйста": {}, "пример": {},
	}
)

// countKeywordHits counts word tokens present in the keyword set, plus any
// occurrences of the multi-word phrase (e.g. "будь ласка") that word
// splitting would miss.
func countKeywordHits(value string, keywords map[string]struct{}, phrase string) int {
	hits := 0
	for _, token := range nonLetter.Split(value, -1) {
		if _, ok := keywords[token]; ok {
			hits++
		}
	}
	if phrase != "" {
		hits += strings.Count(value, phrase)
	}
	return hits
}

// Detector disambiguates the language of a question so the coach can reply
// in kind. The Ukrainian/Russian split is heuristic: distinguishing letters
// first, then interrogative-keyword tallies, then the configured tie-break.
type Detector struct {
	tieBreak Lang
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithTieBreak sets the language chosen when the Ukrainian/Russian signals
// tie. The default is Russian, matching mixed-register calls where Russian
// phrasing dominates; Ukrainian-first deployments can flip it.
func WithTieBreak(lang Lang) DetectorOption {
	return func(d *Detector) {
		if lang == LangUkrainian || lang == LangRussian {
			d.tieBreak = lang
		}
	}
}

// NewDetector creates a question-language detector.
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{tieBreak: LangRussian}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectQuestionLanguage classifies a question as English, Ukrainian or
// Russian. Text without Cyrillic letters is English. Cyrillic text is split
// on letters unique to each alphabet; when both or neither appear, fixed
// interrogative-keyword tallies decide, and a tie falls back to the
// configured default. Best-effort, not a guarantee.
func (d *Detector) DetectQuestionLanguage(text string) Lang {
	value := strings.ToLower(text)
	if !HasCyrillic(value) {
		return LangEnglish
	}

	hasUk := ukOnlyLetters.MatchString(value)
	hasRu := ruOnlyLetters.MatchString(value)
	if hasUk && !hasRu {
		return LangUkrainian
	}
	if hasRu && !hasUk {
		return LangRussian
	}

	ukHits := countKeywordHits(value, ukQuestionKeywords, "будь ласка")
	ruHits := countKeywordHits(value, ruQuestionKeywords, "")
	if ukHits > ruHits {
		return LangUkrainian
	}
	if ruHits > ukHits {
		return LangRussian
	}

	return d.tieBreak
}

// DetectScriptLanguage labels the utterance's overall language using
// whole-text script detection. Used for history metadata only, never for
// routing decisions; the fixed heuristics above stay authoritative there.
func DetectScriptLanguage(text string) string {
	return whatlanggo.DetectLang(text).Iso6391()
}
