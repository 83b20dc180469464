package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/lineup-editor/internal/services"
)

type WebSocketHandler struct {
	sessions *services.SessionManager
	hub      *services.Hub
}

func NewWebSocketHandler(sessions *services.SessionManager, hub *services.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		sessions: sessions,
		hub:      hub,
	}
}

// StreamSession upgrades to a websocket that receives every state of the
// session, starting with the current one
func (h *WebSocketHandler) StreamSession(c *gin.Context) {
	sess, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		sendDomainError(c, err)
		return
	}
	if err := h.hub.ServeSession(c.Writer, c.Request, sess.ID, sess.Editor.State()); err != nil {
		_ = c.Error(err)
	}
}
