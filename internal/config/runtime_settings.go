package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Translation target languages the pipeline supports.
var supportedTargetLanguages = map[string]struct{}{
	"uk": {},
	"ru": {},
}

// Coach reply languages. "same" means "answer in the question's language".
var supportedCoachLanguages = map[string]struct{}{
	"same": {},
	"uk":   {},
	"en":   {},
	"ru":   {},
}

// RuntimeSettings are the user-adjustable knobs, changeable at runtime
// through the HTTP API and persisted between restarts.
type RuntimeSettings struct {
	Enabled        bool   `json:"enabled"`
	TargetLanguage string `json:"target_language"`
	Model          string `json:"model"`
	CoachEnabled   bool   `json:"coach_enabled"`
	CoachLanguage  string `json:"coach_language"`
	PanelVisible   bool   `json:"panel_visible"`
}

// DefaultRuntimeSettings returns the settings used until the user changes
// anything.
func DefaultRuntimeSettings() RuntimeSettings {
	return RuntimeSettings{
		Enabled:        true,
		TargetLanguage: "uk",
		Model:          "gpt-4o-mini",
		CoachEnabled:   true,
		CoachLanguage:  "same",
		PanelVisible:   true,
	}
}

func (s RuntimeSettings) Validate() error {
	if strings.TrimSpace(s.TargetLanguage) == "" {
		return fmt.Errorf("target_language is required")
	}
	if _, err := language.Parse(s.TargetLanguage); err != nil {
		return fmt.Errorf("invalid target_language: %w", err)
	}
	if _, ok := supportedTargetLanguages[s.TargetLanguage]; !ok {
		return fmt.Errorf("unsupported target_language: %s", s.TargetLanguage)
	}
	if strings.TrimSpace(s.Model) == "" {
		return fmt.Errorf("model is required")
	}
	if _, ok := supportedCoachLanguages[s.CoachLanguage]; !ok {
		return fmt.Errorf("unsupported coach_language: %s", s.CoachLanguage)
	}
	return nil
}
