package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/servicehub-backend/internal/auth"
	"github.com/nekogravitycat/servicehub-backend/internal/payment"
	"github.com/nekogravitycat/servicehub-backend/internal/pkg/request"
	"github.com/nekogravitycat/servicehub-backend/internal/pkg/response"
)

type Handler struct {
	service payment.Service
}

func NewHandler(service payment.Service) *Handler {
	return &Handler{service: service}
}

// Pay answers 201 for both settled and declined payments; the outcome is in the body.
func (h *Handler) Pay(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	// An empty body pays online.
	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BindError(c, err)
		return
	}

	p, err := h.service.Pay(c.Request.Context(), auth.GetActor(c), uri.ID, payment.Method(req.Method))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewPaymentResponse(p))
}

func (h *Handler) Create(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	p, err := h.service.Create(c.Request.Context(), auth.GetActor(c), payment.CreateRequest{
		BookingID: req.BookingID,
		Amount:    req.Amount,
		Method:    payment.Method(req.Method),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewPaymentResponse(p))
}

func (h *Handler) Process(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	p, err := h.service.Process(c.Request.Context(), auth.GetActor(c), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPaymentResponse(p))
}

func (h *Handler) List(c *gin.Context) {
	var req ListPaymentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}
	req.Normalize()

	payments, total, err := h.service.List(c.Request.Context(), auth.GetActor(c), payment.Filter{
		BookingID: req.BookingID,
		Page:      req.Page,
		PageSize:  req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		items[i] = NewPaymentResponse(p)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.ListParams, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), auth.GetActor(c), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPaymentResponse(p))
}

func (h *Handler) Receipt(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.service.Receipt(c.Request.Context(), auth.GetActor(c), uri.ID, &buf); err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="receipt-%s.pdf"`, uri.ID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
