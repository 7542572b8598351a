package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/meetlive/caption-coach/pkg/log"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Capture clients run on meeting pages, not on this host.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleCaptionStream is the duplex stream: the client sends caption
// fragments, the server sends display events.
func (s *Server) handleCaptionStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed: %v", err)
		return
	}

	events, cancel := s.hub.Subscribe()

	go s.writeEvents(conn, events)

	defer func() {
		cancel()
		_ = conn.Close()
	}()

	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		var frag captionRequest
		if err := conn.ReadJSON(&frag); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read failed: %v", err)
			}
			return
		}
		if frag.Text == "" {
			continue
		}
		s.session.Handle(frag.Text, frag.Speaker)
	}
}

func (s *Server) writeEvents(conn *websocket.Conn, events <-chan Event) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				_ = conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
