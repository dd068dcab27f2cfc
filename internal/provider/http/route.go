package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, providerMiddleware gin.HandlerFunc) {
	g.GET("/providers/:id", authMiddleware, h.Get)
	g.PUT("/me/provider-profile", authMiddleware, providerMiddleware, h.UpdateMine)
}
