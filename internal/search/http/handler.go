package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/servicehub-backend/internal/pkg/response"
	"github.com/nekogravitycat/servicehub-backend/internal/search"
)

type Handler struct {
	service search.Service
}

func NewHandler(service search.Service) *Handler {
	return &Handler{service: service}
}

// Search finds services around the given coordinates.
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.Search(c.Request.Context(), req.Params())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewSearchResponse(res))
}
