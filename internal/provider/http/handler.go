package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/servicehub-backend/internal/auth"
	"github.com/nekogravitycat/servicehub-backend/internal/pkg/request"
	"github.com/nekogravitycat/servicehub-backend/internal/pkg/response"
	"github.com/nekogravitycat/servicehub-backend/internal/provider"
)

type Handler struct {
	service provider.Service
}

func NewHandler(service provider.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	p, err := h.service.GetProfile(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewProfileResponse(p))
}

func (h *Handler) UpdateMine(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	p, err := h.service.UpdateProfile(c.Request.Context(), auth.GetActor(c), provider.UpdateRequest{
		BusinessName:      req.BusinessName,
		Description:       req.Description,
		YearsOfExperience: req.YearsOfExperience,
		ServiceRadiusKm:   req.ServiceRadiusKm,
		HourlyRate:        req.HourlyRate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewProfileResponse(p))
}
