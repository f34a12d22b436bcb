package httpapi

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	statsPushInterval  = 5 * time.Second
	statsWriteDeadline = 10 * time.Second
)

// Default CheckOrigin rejects cross-origin upgrades, which is the policy
// we want for a cookie-authenticated stream.
var statsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleStatsStream upgrades to a websocket and pushes dashboard stats so
// the panel updates without polling. The session middleware has already
// authenticated the caller; the upgrade is a GET and needs no CSRF echo.
func (h *Handler) handleStatsStream(w http.ResponseWriter, r *http.Request) {
	conn, err := statsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the handshake error.
		return
	}
	defer conn.Close()

	// The stream is push-only; the read loop just surfaces the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(statsPushInterval)
	defer ticker.Stop()

	for {
		stats, err := h.store.DashboardStats(r.Context())
		if err != nil {
			log.Printf("stats stream: %v", err)
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(statsWriteDeadline))
		if err := conn.WriteJSON(stats); err != nil {
			return
		}
		select {
		case <-ticker.C:
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
