package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, providerMiddleware gin.HandlerFunc) {
	group := g.Group("/dashboard", authMiddleware)
	{
		group.GET("/stats", h.Stats)
		group.GET("/booking-stats", providerMiddleware, h.BookingStats)
	}
}
