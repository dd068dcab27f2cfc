package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, customerMiddleware gin.HandlerFunc) {
	g.POST("/bookings/:id/pay", authMiddleware, customerMiddleware, h.Pay)

	group := g.Group("/payments")
	group.Use(authMiddleware, customerMiddleware)
	{
		group.GET("", h.List)
		group.POST("", h.Create)
		group.GET("/:id", h.Get)
		group.POST("/:id/process", h.Process)
		group.GET("/:id/receipt", h.Receipt)
	}
}
