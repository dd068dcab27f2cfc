package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/servicehub-backend/internal/auth"
	"github.com/nekogravitycat/servicehub-backend/internal/dashboard"
	"github.com/nekogravitycat/servicehub-backend/internal/pkg/response"
)

type Handler struct {
	service dashboard.Service
}

func NewHandler(service dashboard.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), auth.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewStatsResponse(stats))
}

func (h *Handler) BookingStats(c *gin.Context) {
	stats, err := h.service.BookingStats(c.Request.Context(), auth.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingStatsResponse(stats))
}
