package statushandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"prepconnect/internal/services/presence"
	"prepconnect/internal/services/rooms"
	"prepconnect/internal/ws"
)

type Handler struct {
	hub         *ws.Hub
	presenceSvc presence.IPresenceService
	roomSvc     rooms.IRoomService
}

func New(hub *ws.Hub, presenceSvc presence.IPresenceService, roomSvc rooms.IRoomService) *Handler {
	return &Handler{hub: hub, presenceSvc: presenceSvc, roomSvc: roomSvc}
}

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/healthz", h.health)
	r.GET("/stats", h.stats)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *Handler) stats(c *gin.Context) {
	gd, iv := h.roomSvc.Stats()
	c.JSON(http.StatusOK, StatsResponse{
		Connections:     h.hub.Len(),
		RegisteredUsers: h.presenceSvc.Count(),
		DiscussionRooms: gd,
		InterviewRooms:  iv,
	})
}
