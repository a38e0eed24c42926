package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zahid-01/Running-Tracker/internal/auth"
)

const (
	streamWriteTimeout = 5 * time.Second
	streamPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// viewStream pushes a board snapshot on connect and after every change.
// Alerts are not drained so polling clients still see them.
func (h *Handler) viewStream(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodGet, auth.ScopeWorkoutsRead) {
		return
	}
	if !websocket.IsWebSocketUpgrade(r) {
		writeError(w, http.StatusUpgradeRequired, "upgrade_required", "websocket upgrade required")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
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

	ping := time.NewTicker(streamPingInterval)
	defer ping.Stop()

	for {
		changed := h.board.Changed()
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if err := conn.WriteJSON(h.board.Snapshot(false)); err != nil {
			h.logger.Debug("view stream closed", zap.Error(err))
			return
		}

	wait:
		for {
			select {
			case <-changed:
				break wait
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(streamWriteTimeout)); err != nil {
					return
				}
			case <-closed:
				return
			case <-r.Context().Done():
				return
			}
		}
	}
}
