package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, customerMiddleware gin.HandlerFunc) {
	g.POST("/search", authMiddleware, customerMiddleware, h.Search)
}
