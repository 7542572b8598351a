package coach

import "strings"

// Line labels the model uses, with the localized spellings the language
// rules produce.
var (
	keywordPrefixes = []string{"keywords:", "ключевые слова:", "ключові слова:"}
	answerPrefixes  = []string{"answer:", "ответ:", "відповідь:"}
	examplePrefixes = []string{"example:", "пример:", "приклад:"}
)

// Hint is a parsed three-line coaching reply. When the reply does not match
// the expected shape, Structured is false and only Raw is set.
type Hint struct {
	Keywords   string
	Answer     string
	Example    string
	Raw        string
	Structured bool
}

// ParseHint splits a coaching reply into its Keywords/Answer/Example
// sections. The example line is optional; keywords and answer are required
// for the structured form.
func ParseHint(text string) Hint {
	hint := Hint{Raw: text}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	keywords := findLine(lines, keywordPrefixes)
	answer := findLine(lines, answerPrefixes)
	if keywords == "" || answer == "" {
		return hint
	}

	hint.Keywords = stripLabel(keywords)
	hint.Answer = stripLabel(answer)
	if example := findLine(lines, examplePrefixes); example != "" {
		hint.Example = stripLabel(example)
	}
	hint.Structured = true
	return hint
}

func findLine(lines []string, prefixes []string) string {
	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, prefix := range prefixes {
			if strings.HasPrefix(lower, prefix) {
				return line
			}
		}
	}
	return ""
}

// stripLabel drops everything up to and including the first colon.
func stripLabel(line string) string {
	if idx := strings.Index(line, ":"); idx >= 0 {
		return strings.TrimSpace(line[idx+1:])
	}
	return strings.TrimSpace(line)
}
