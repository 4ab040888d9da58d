package web

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sweeney/flower-controller/internal/status"
)

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  512,
	WriteBufferSize: 4096,
}

// handleLive streams the JSON status over a websocket, sending a frame
// whenever the snapshot changes. Uptime and timestamp are left out of the
// comparison so an idle flower stays quiet.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var last []byte
	for {
		snap := s.tracker.Snapshot()
		key := liveKey(snap)
		if !bytes.Equal(key, last) {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, status.FormatJSON(snap)); err != nil {
				s.logger.Debug("websocket write failed", "error", err)
				return
			}
			last = key
		}
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func liveKey(snap status.Snapshot) []byte {
	snap.Now = snap.StartTime
	return status.FormatJSON(snap)
}
