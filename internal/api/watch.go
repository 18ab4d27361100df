package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	watchWriteWait = 10 * time.Second
	watchPongWait  = 60 * time.Second
)

// handleWatch streams the decayed duck to a WebSocket client right away and
// then once per WatchInterval until either side goes away.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	d, err := s.Ducks.Get(r.Context(), code)
	if err != nil {
		s.writeServiceError(w, "watch duck", "Failed to fetch duck", err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WARN] watch %s: upgrade: %v", code, err)
		return
	}
	defer conn.Close()

	// Pings go out once per tick, so the pong deadline has to outlive a tick.
	pongWait := max(watchPongWait, 2*s.WatchInterval)
	conn.SetReadLimit(1 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Client messages are ignored; reading only detects close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(resp DuckResponse) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(watchWriteWait))
		if err := conn.WriteJSON(resp); err != nil {
			log.Printf("[WARN] watch %s: write: %v", code, err)
			return false
		}
		return true
	}

	if !send(toResponse(d)) {
		return
	}
	log.Printf("[INFO] watch %s opened", code)

	ticker := time.NewTicker(s.WatchInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			log.Printf("[INFO] watch %s closed", code)
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			d, err := s.Ducks.Get(r.Context(), code)
			if err != nil {
				log.Printf("[ERROR] watch %s: fetch: %v", code, err)
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "fetch failed"),
					time.Now().Add(watchWriteWait))
				return
			}
			if !send(toResponse(d)) {
				return
			}
			_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(watchWriteWait))
		}
	}
}
