// Package httpapi exposes the caption pipeline to external capture clients:
// fragments in over HTTP or WebSocket, display events out over SSE or the
// same WebSocket.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/meetlive/caption-coach/internal/config"
	"github.com/meetlive/caption-coach/internal/pipeline"
)

type captionSession interface {
	Handle(text, speaker string)
	History() []pipeline.HistoryEntry
}

type settingsStore interface {
	LoadSettings(ctx context.Context) (config.RuntimeSettings, error)
	SaveSettings(ctx context.Context, settings config.RuntimeSettings) error
	SetPanelVisible(ctx context.Context, visible bool) error
	ResumeContext(ctx context.Context) (string, error)
	SaveResumeContext(ctx context.Context, text string) error
}

type actionGuard interface {
	InterceptAction(ctx context.Context, label string) bool
}

type coachControl interface {
	SetActiveVariant(variant string)
	Reset()
}

type Server struct {
	session  captionSession
	settings settingsStore
	hub      *Hub
	share    *ShareState
	guard    actionGuard
	coach    coachControl

	mux    *http.ServeMux
	server *http.Server
}

type Option func(*Server)

// WithGuard attaches the presentation guard for action interception.
func WithGuard(g actionGuard) Option {
	return func(s *Server) {
		s.guard = g
	}
}

// WithCoachControl attaches the coach session for tab switching.
func WithCoachControl(c coachControl) Option {
	return func(s *Server) {
		s.coach = c
	}
}

func NewServer(session captionSession, settings settingsStore, hub *Hub, share *ShareState, opts ...Option) *Server {
	s := &Server{
		session:  session,
		settings: settings,
		hub:      hub,
		share:    share,
		mux:      http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/captions", s.handleCaptions)
	s.mux.HandleFunc("/api/captions/stream", s.handleCaptionStream)
	s.mux.HandleFunc("/api/events", s.handleEvents)
	s.mux.HandleFunc("/api/settings", s.handleSettings)
	s.mux.HandleFunc("/api/state", s.handleState)
	s.mux.HandleFunc("/api/history", s.handleHistory)
	s.mux.HandleFunc("/api/resume", s.handleResume)
	s.mux.HandleFunc("/api/share", s.handleShare)
	s.mux.HandleFunc("/api/actions", s.handleActions)
	s.mux.HandleFunc("/api/coach/variant", s.handleCoachVariant)
	s.mux.HandleFunc("/api/panel/hide", s.handlePanelHide)
	s.mux.HandleFunc("/api/panel/show", s.handlePanelShow)
}
