package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleStream replays a symbol's tick series over a WebSocket, one JSON
// message per tick, then closes normally. ?from and ?to narrow the replay.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	ticker := r.PathValue("ticker")
	l := s.resolveTicker(w, ticker)
	if l == nil {
		return
	}
	win := parseWindow(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade error", zap.Error(err))
		return
	}
	defer conn.Close()

	gone := make(chan struct{})
	go readPump(conn, gone)

	sent := 0
	for _, m := range l.TimeSeries() {
		if !win.contains(m.Seconds) {
			continue
		}
		select {
		case <-gone:
			s.log.Debug("stream client left", zap.String("ticker", ticker), zap.Int("sent", sent))
			return
		default:
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(m); err != nil {
			s.log.Debug("stream write error", zap.String("ticker", ticker), zap.Error(err))
			return
		}
		sent++
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replay complete"))
	s.log.Debug("stream replayed", zap.String("ticker", ticker), zap.Int("sent", sent))

	// Wait for the client's close reply so it sees a clean shutdown.
	select {
	case <-gone:
	case <-time.After(writeWait):
	}
}

// readPump discards client frames and signals when the connection ends.
func readPump(conn *websocket.Conn, gone chan<- struct{}) {
	defer close(gone)
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
