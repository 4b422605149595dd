package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"pulsechat/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// WebSocket upgrades the connection and hands it to the relay. The guard
// has already authenticated; the query-param token path exists for browser
// websocket clients.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "websocket upgrade failed", "user_id", user.ID, "error", err)
		return
	}

	h.relay.Serve(conn, user.ID)
}
