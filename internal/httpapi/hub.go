package httpapi

import (
	"sync"

	"github.com/meetlive/caption-coach/internal/coach"
)

// Event types pushed to connected clients.
const (
	EventStatus      = "status"
	EventTranslation = "translation"
	EventCoachHint   = "coach_hint"
	EventCoachTabs   = "coach_tabs"
)

// Event is one display update for the panel.
type Event struct {
	Type       string `json:"type"`
	Message    string `json:"message,omitempty"`
	IsError    bool   `json:"is_error,omitempty"`
	Source     string `json:"source,omitempty"`
	Translated string `json:"translated,omitempty"`
	Cached     bool   `json:"cached,omitempty"`
	Question   string `json:"question,omitempty"`
	Hint       string `json:"hint,omitempty"`
	Keywords   string `json:"keywords,omitempty"`
	Answer     string `json:"answer,omitempty"`
	Example    string `json:"example,omitempty"`
	Structured bool   `json:"structured,omitempty"`
	Visible    bool   `json:"visible"`
}

// PanelState is the current display state, sent to clients on connect so
// they can render without waiting for the next event.
type PanelState struct {
	Status           string `json:"status"`
	StatusIsError    bool   `json:"status_is_error"`
	CoachQuestion    string `json:"coach_question"`
	CoachHint        string `json:"coach_hint"`
	CoachTabsVisible bool   `json:"coach_tabs_visible"`
}

// Hub fans pipeline and coach output out to all connected stream clients
// and remembers the latest state. A slow client drops events rather than
// blocking the pipeline.
type Hub struct {
	mu    sync.Mutex
	subs  map[chan Event]struct{}
	state PanelState
}

func NewHub() *Hub {
	return &Hub{
		subs: map[chan Event]struct{}{},
		state: PanelState{
			Status: "Waiting for captions...",
		},
	}
}

// Subscribe registers a client. The returned cancel func must be called
// when the client disconnects; it closes the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// State returns the current display state.
func (h *Hub) State() PanelState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// PushStatus implements the pipeline status sink.
func (h *Hub) PushStatus(message string, isError bool) {
	h.mu.Lock()
	h.state.Status = message
	h.state.StatusIsError = isError
	h.broadcastLocked(Event{Type: EventStatus, Message: message, IsError: isError})
	h.mu.Unlock()
}

// AddTranslation implements the pipeline translation sink.
func (h *Hub) AddTranslation(source, translated string, cached bool) {
	h.mu.Lock()
	h.broadcastLocked(Event{
		Type:       EventTranslation,
		Source:     source,
		Translated: translated,
		Cached:     cached,
	})
	h.mu.Unlock()
}

// PushCoachHint implements the coach sink. Replies in the expected
// three-line shape are split into sections; anything else passes through
// raw for the client to render as-is.
func (h *Hub) PushCoachHint(question, hint string) {
	ev := Event{Type: EventCoachHint, Question: question, Hint: hint}
	if parsed := coach.ParseHint(hint); parsed.Structured {
		ev.Keywords = parsed.Keywords
		ev.Answer = parsed.Answer
		ev.Example = parsed.Example
		ev.Structured = true
	}

	h.mu.Lock()
	h.state.CoachQuestion = question
	h.state.CoachHint = hint
	h.broadcastLocked(ev)
	h.mu.Unlock()
}

// SetCoachTabsVisible implements the coach sink.
func (h *Hub) SetCoachTabsVisible(visible bool) {
	h.mu.Lock()
	h.state.CoachTabsVisible = visible
	h.broadcastLocked(Event{Type: EventCoachTabs, Visible: visible})
	h.mu.Unlock()
}

func (h *Hub) broadcastLocked(ev Event) {
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			// Client is not keeping up; skip this event for it.
		}
	}
}
