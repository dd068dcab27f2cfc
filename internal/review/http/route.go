package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, customerMiddleware gin.HandlerFunc) {
	// === Public Routes ===
	g.GET("/providers/:id/reviews", h.ListForProvider)
	g.GET("/reviews/:id", h.Get)

	// === Authenticated Routes ===
	g.POST("/bookings/:id/review", authMiddleware, customerMiddleware, h.Create)

	reviews := g.Group("/reviews", authMiddleware)
	{
		reviews.GET("", h.ListMine)
		reviews.POST("/:id/helpful", h.MarkHelpful)
	}
}
