package handlers

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// HandleWebSocket upgrades an editor client onto the session's push stream
func (h *AnalysisHandler) HandleWebSocket(c *websocket.Conn) {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		c.Close()
		return
	}

	h.Hub.HandleConnection(c, sessionID)
}
