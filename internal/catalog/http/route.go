package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers category and service listing routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, providerMiddleware gin.HandlerFunc) {
	g.GET("/categories", authMiddleware, h.ListCategories)

	group := g.Group("/services")
	group.Use(authMiddleware)
	{
		group.GET("", h.ListServices)
		group.GET("/:id", h.GetService)
		group.GET("/:id/images", h.ListImages)

		group.POST("", providerMiddleware, h.CreateService)
		group.PATCH("/:id", providerMiddleware, h.UpdateService)
		group.POST("/:id/images", providerMiddleware, h.UploadImage)
	}
}
