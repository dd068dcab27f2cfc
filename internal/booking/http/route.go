package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, customerMiddleware gin.HandlerFunc) {
	group := g.Group("/bookings")

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.PATCH("/:id/status", h.UpdateStatus)

		group.POST("", customerMiddleware, h.Create)
		group.POST("/:id/cancel", customerMiddleware, h.Cancel)
	}
}
