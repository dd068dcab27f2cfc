package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/servicehub-backend/internal/auth"
	"github.com/nekogravitycat/servicehub-backend/internal/availability"
	"github.com/nekogravitycat/servicehub-backend/internal/pkg/request"
	"github.com/nekogravitycat/servicehub-backend/internal/pkg/response"
)

type Handler struct {
	service availability.Service
}

func NewHandler(service availability.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	slots, err := h.service.List(c.Request.Context(), auth.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]SlotResponse, len(slots))
	for i, s := range slots {
		items[i] = NewSlotResponse(s)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	slot, err := h.service.Create(c.Request.Context(), auth.GetActor(c), availability.CreateRequest{
		DayOfWeek:          *req.DayOfWeek,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		IsAvailable:        req.IsAvailable,
		MaxBookingsPerSlot: req.MaxBookingsPerSlot,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewSlotResponse(slot))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}
	var req UpdateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	slot, err := h.service.Update(c.Request.Context(), auth.GetActor(c), uri.ID, availability.UpdateRequest{
		DayOfWeek:          req.DayOfWeek,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		IsAvailable:        req.IsAvailable,
		MaxBookingsPerSlot: req.MaxBookingsPerSlot,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSlotResponse(slot))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), auth.GetActor(c), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
