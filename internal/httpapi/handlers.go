package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/meetlive/caption-coach/internal/config"
	"github.com/meetlive/caption-coach/internal/guard"
)

type captionRequest struct {
	Text    string `json:"text"`
	Speaker string `json:"speaker"`
}

func (s *Server) handleCaptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req captionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	s.session.Handle(req.Text, req.Speaker)
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := s.settings.LoadSettings(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, settings)
	case http.MethodPut:
		var req config.RuntimeSettings
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.settings.SaveSettings(r.Context(), req); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, req)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type stateResponse struct {
	Panel    PanelState             `json:"panel"`
	Settings config.RuntimeSettings `json:"settings"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	settings, err := s.settings.LoadSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{
		Panel:    s.hub.State(),
		Settings: settings,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.session.History())
}

type resumeRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		text, err := s.settings.ResumeContext(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, resumeRequest{Text: text})
	case http.MethodPut:
		var req resumeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		if err := s.settings.SaveResumeContext(r.Context(), req.Text); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type shareRequest struct {
	Active bool `json:"active"`
	// Indicator is the raw on-screen banner text, for clients that scrape
	// the page rather than classify it themselves. When present it decides
	// the sharing state instead of Active.
	Indicator string `json:"indicator,omitempty"`
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req shareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	active := req.Active
	if req.Indicator != "" {
		active = guard.IsPresentingIndicator(req.Indicator)
	}
	s.share.Set(active)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "active": active})
}

type actionRequest struct {
	Label string `json:"label"`
}

func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.guard == nil {
		writeError(w, http.StatusNotImplemented, "presentation guard is not configured")
		return
	}
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	hidden := s.guard.InterceptAction(r.Context(), req.Label)
	if hidden {
		s.hub.PushStatus("Panel hidden while starting screen share", false)
	}
	writeJSON(w, http.StatusOK, map[string]any{"hidden": hidden})
}

type coachVariantRequest struct {
	Variant string `json:"variant"`
}

func (s *Server) handleCoachVariant(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.coach == nil {
		writeError(w, http.StatusNotImplemented, "coach is not configured")
		return
	}
	var req coachVariantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	switch req.Variant {
	case "uk", "en", "same":
	default:
		writeError(w, http.StatusBadRequest, "unsupported variant")
		return
	}

	s.coach.SetActiveVariant(req.Variant)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handlePanelHide(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := s.settings.SetPanelVisible(r.Context(), false); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if s.coach != nil {
		s.coach.Reset()
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handlePanelShow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := s.settings.SetPanelVisible(r.Context(), true); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}
