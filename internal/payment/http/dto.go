package http

import (
	"time"

	"github.com/nekogravitycat/servicehub-backend/internal/payment"
	"github.com/nekogravitycat/servicehub-backend/internal/pkg/request"
)

type PayRequest struct {
	Method string `json:"payment_method" binding:"omitempty,oneof=cash online card wallet"`
}

type CreatePaymentRequest struct {
	BookingID string  `json:"booking_id" binding:"required,uuid"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	Method    string  `json:"payment_method" binding:"omitempty,oneof=cash online card wallet"`
}

type ListPaymentsRequest struct {
	request.ListParams
	BookingID string `form:"booking_id" binding:"omitempty,uuid"`
}

type PaymentResponse struct {
	ID              string         `json:"id"`
	BookingID       string         `json:"booking_id"`
	Amount          float64        `json:"amount"`
	Method          string         `json:"payment_method"`
	Status          string         `json:"status"`
	TransactionID   *string        `json:"transaction_id"`
	GatewayResponse map[string]any `json:"gateway_response"`
	FailureReason   *string        `json:"failure_reason"`
	CreatedAt       time.Time      `json:"created_at"`
	ProcessedAt     *time.Time     `json:"processed_at"`
	CompletedAt     *time.Time     `json:"completed_at"`
	FailedAt        *time.Time     `json:"failed_at"`
}

func NewPaymentResponse(p *payment.Payment) PaymentResponse {
	gw := p.GatewayResponse
	if gw == nil {
		gw = map[string]any{}
	}
	return PaymentResponse{
		ID:              p.ID,
		BookingID:       p.BookingID,
		Amount:          p.Amount,
		Method:          string(p.Method),
		Status:          string(p.Status),
		TransactionID:   p.TransactionID,
		GatewayResponse: gw,
		FailureReason:   p.FailureReason,
		CreatedAt:       p.CreatedAt,
		ProcessedAt:     p.ProcessedAt,
		CompletedAt:     p.CompletedAt,
		FailedAt:        p.FailedAt,
	}
}
