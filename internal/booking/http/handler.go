package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/servicehub-backend/internal/auth"
	"github.com/nekogravitycat/servicehub-backend/internal/booking"
	"github.com/nekogravitycat/servicehub-backend/internal/pkg/request"
	"github.com/nekogravitycat/servicehub-backend/internal/pkg/response"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}
	req.Normalize()

	filter := booking.Filter{
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	if req.Status != "" {
		st := booking.Status(req.Status)
		filter.Status = &st
	}

	bookings, total, err := h.service.List(c.Request.Context(), auth.GetActor(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.ListParams, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), auth.GetActor(c), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.service.Create(c.Request.Context(), auth.GetActor(c), booking.CreateRequest{
		ProviderID:          req.ProviderID,
		ServiceID:           req.ServiceID,
		BookingDate:         req.BookingDate,
		EstimatedDuration:   req.EstimatedDuration,
		SpecialInstructions: req.SpecialInstructions,
		ServiceAddress:      req.ServiceAddress,
		ServiceLatitude:     req.ServiceLatitude,
		ServiceLongitude:    req.ServiceLongitude,
		QuotedPrice:         req.QuotedPrice,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	b, err := h.service.UpdateStatus(c.Request.Context(), auth.GetActor(c), uri.ID, booking.UpdateStatusRequest{
		Status:          booking.Status(req.Status),
		ProviderNotes:   req.ProviderNotes,
		RejectionReason: req.RejectionReason,
		FinalPrice:      req.FinalPrice,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Cancel(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), auth.GetActor(c), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}
