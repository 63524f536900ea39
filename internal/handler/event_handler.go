package handler

import (
	"github.com/Daveman-1/BookstoreFrontEnd/internal/middleware"
	ws "github.com/Daveman-1/BookstoreFrontEnd/internal/websocket"
	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	hub *ws.Hub
}

func NewEventHandler(hub *ws.Hub) *EventHandler {
	return &EventHandler{hub: hub}
}

func (h *EventHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/ws", middleware.RequireAuth(), h.Serve)
}

// Serve upgrades a signed-in tab to the live event stream
// @Summary      Live events
// @Description  Websocket of sale, approval and stock events the user may see
// @Tags         events
// @Success      101
// @Router       /ws [get]
func (h *EventHandler) Serve(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return
	}
	h.hub.ServeWs(c, user)
}
