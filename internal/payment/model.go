package payment

import (
	"math"
	"time"

	"github.com/nekogravitycat/servicehub-backend/internal/pkg/apperror"
)

type Method string

const (
	MethodCash   Method = "cash"
	MethodOnline Method = "online"
	MethodCard   Method = "card"
	MethodWallet Method = "wallet"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

const (
	gatewayName    = "FakePaymentGateway"
	declineReason  = "Insufficient funds or card declined"
	declineCode    = "CARD_DECLINED"
	successMessage = "Payment processed successfully"
	abandonReason  = "Payment was not settled in time"
)

var (
	ErrNotFound           = apperror.NotFound("payment not found")
	ErrBookingNotEligible = apperror.NotFound("booking not found or not eligible for payment")
	ErrAlreadyPaid        = apperror.Validation("payment already completed for this booking")
	ErrPaymentInProgress  = apperror.Conflict("a payment for this booking is already processing")
	ErrNotPending         = apperror.Validation("payment is not pending")
	ErrAmountMismatch     = apperror.Validation("amount must equal the booking's quoted price")
	ErrInvalidMethod      = apperror.Validation("payment method must be cash, online, card or wallet")
	ErrNoReceipt          = apperror.Validation("receipt is only available for completed payments")
)

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodOnline, MethodCard, MethodWallet:
		return true
	}
	return false
}

type Payment struct {
	ID         string
	BookingID  string
	CustomerID string
	Amount     float64
	Method     Method
	Status     Status

	TransactionID   *string
	GatewayResponse map[string]any
	FailureReason   *string

	CreatedAt   time.Time
	ProcessedAt *time.Time
	CompletedAt *time.Time
	FailedAt    *time.Time
}

// sameCents compares money at cent precision.
func sameCents(a, b float64) bool {
	return math.Round(a*100) == math.Round(b*100)
}

type Filter struct {
	CustomerID string
	BookingID  string
	Page       int
	PageSize   int
}
