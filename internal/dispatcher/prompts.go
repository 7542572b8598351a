package dispatcher

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/meetlive/caption-coach/internal/captions"
)

const translationSystemPrompt = "You translate live interview captions with high fidelity. " +
	"Keep technical terms and product names unchanged when appropriate (e.g., React, TypeScript, DataDog). " +
	"Return only translated text, no notes."

const coachSystemPromptBody = `Use a simple, natural speaking style (not formal/corporate).
Output format must be exactly 3 short lines:
1) "Keywords: ..." with 4-7 key words/phrases that represent the answer strategy, not just words copied from the question.
Keywords should emphasize depth and execution quality (for example when relevant: architecture approach, async/events, idempotency, retries, error handling, monitoring, race conditions, rate limits, data consistency, security, observability, rollback).
Keywords must be extracted from the best-practice solution you are giving in the answer, not from the interviewer wording.
Prefer senior-level engineering terms when relevant: versioning strategy, backward compatibility, deprecation policy, migration plan, contract testing, canary rollout, feature flags, SLO/SLA, alerting, incident rollback.
Do not include generic filler words in Keywords.
2) "Answer: ..." short direct answer in plain language (2-4 sentences max).
3) "Example: ..." one concrete example from candidate profile if available, otherwise a safe generic example.
When useful, structure the answer in a lightweight STAR style (Situation/Task/Action/Result) but keep it brief and natural.
Do not ask any follow-up question. No markdown.
Strictly align with candidate profile facts; do not invent roles, years, companies, or technologies that conflict with profile.`

// targetLabel resolves a BCP 47 tag to the English language name used in the
// translation prompt, e.g. "uk" -> "Ukrainian".
func targetLabel(targetLang string) string {
	tag, err := language.Parse(targetLang)
	if err != nil {
		return "Russian"
	}
	name := display.English.Tags().Name(tag)
	if name == "" {
		return "Russian"
	}
	return name
}

func buildTranslationPrompt(targetLang, sourceText string) string {
	return fmt.Sprintf("Translate from English to %s:\n\n%s", targetLabel(targetLang), sourceText)
}

// languageRule picks the reply-language instruction for the coach prompt.
// Explicit variants win; "same" falls back to detecting the question language.
func languageRule(variant string, question string, detector *captions.Detector) string {
	lang := captions.Lang(variant)
	switch lang {
	case captions.LangUkrainian, captions.LangEnglish, captions.LangRussian:
	default:
		lang = detector.DetectQuestionLanguage(question)
	}

	switch lang {
	case captions.LangUkrainian:
		return "Reply only in Ukrainian."
	case captions.LangEnglish:
		return "Reply only in English."
	default:
		return "Reply only in Russian."
	}
}

func buildCoachSystemPrompt(variant, question string, detector *captions.Detector) string {
	rule := languageRule(variant, question, detector)
	return fmt.Sprintf("You are an interview response coach. Help candidate answer honestly and clearly. %s\n%s", rule, coachSystemPromptBody)
}

func buildProfileBlock(resumeContext string) string {
	resumeContext = strings.TrimSpace(resumeContext)
	if resumeContext == "" {
		return "Candidate profile/resume context is not provided."
	}
	return "Candidate profile/resume context (facts to align with):\n" + resumeContext
}

func buildCoachUserPrompt(question string) string {
	return "Interviewer question:\n" + question
}
