package handlers

import (
	"chatterbox/internal/realtime"

	"github.com/gin-gonic/gin"
)

type WSHandler struct {
	hub *realtime.Hub
}

func NewWSHandler(hub *realtime.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Serve handles GET /ws, upgrading the connection and handing it to
// the hub. The connection starts anonymous; the client binds its
// identity with a join event.
func (h *WSHandler) Serve(c *gin.Context) {
	realtime.ServeWS(h.hub, c.Writer, c.Request)
}
