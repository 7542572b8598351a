package captions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectQuestionLanguage(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name  string
		input string
		want  Lang
	}{
		{name: "no cyrillic is english", input: "How are you?", want: LangEnglish},
		{name: "russian letters", input: "Как дела?", want: LangRussian},
		{name: "ukrainian letters", input: "Як справи?", want: LangUkrainian},
		{name: "russian-only letter ы", input: "вы закончили работу", want: LangRussian},
		{name: "ukrainian-only letter ї", input: "де твої тести", want: LangUkrainian},
		{name: "keyword tally ukrainian", input: "чому саме так", want: LangUkrainian},
		{name: "keyword tally russian", input: "почему именно так", want: LangRussian},
		{name: "ambiguous defaults to russian", input: "добре дела", want: LangRussian},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.DetectQuestionLanguage(tt.input))
		})
	}
}

func TestDetectQuestionLanguage_TieBreakOption(t *testing.T) {
	d := NewDetector(WithTieBreak(LangUkrainian))
	// No distinguishing letters, no keyword hits on either side.
	assert.Equal(t, LangUkrainian, d.DetectQuestionLanguage("добре дела"))

	// English tie-break value is ignored; default stays.
	d2 := NewDetector(WithTieBreak(LangEnglish))
	assert.Equal(t, LangRussian, d2.DetectQuestionLanguage("добре дела"))
}

func TestDetectScriptLanguage(t *testing.T) {
	assert.Equal(t, "en", DetectScriptLanguage("This is a plain English sentence about software."))
}
