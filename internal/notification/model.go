package notification

import (
	"time"

	"github.com/nekogravitycat/servicehub-backend/internal/pkg/apperror"
)

type Type string

const (
	TypeBookingRequest   Type = "booking_request"
	TypeBookingConfirmed Type = "booking_confirmed"
	TypeBookingCancelled Type = "booking_cancelled"
	TypeBookingCompleted Type = "booking_completed"
	TypePaymentReceived  Type = "payment_received"
	TypeReviewReceived   Type = "review_received"
	TypeSystem           Type = "system"
)

var (
	ErrNotFound     = apperror.NotFound("notification not found")
	ErrMissingUser  = apperror.Validation("notification recipient is required")
	ErrInvalidType  = apperror.Validation("invalid notification type")
	ErrMissingTitle = apperror.Validation("notification title is required")
)

func (t Type) Valid() bool {
	switch t {
	case TypeBookingRequest, TypeBookingConfirmed, TypeBookingCancelled, TypeBookingCompleted,
		TypePaymentReceived, TypeReviewReceived, TypeSystem:
		return true
	}
	return false
}

type Notification struct {
	ID        string
	UserID    string
	Type      Type
	Title     string
	Message   string
	BookingID *string
	ReviewID  *string
	IsRead    bool
	IsSent    bool
	CreatedAt time.Time
	ReadAt    *time.Time
}

// Event is a notification about to be written.
type Event struct {
	UserID    string
	Type      Type
	Title     string
	Message   string
	BookingID *string
	ReviewID  *string
}

func (e Event) validate() error {
	if e.UserID == "" {
		return ErrMissingUser
	}
	if !e.Type.Valid() {
		return ErrInvalidType
	}
	if e.Title == "" {
		return ErrMissingTitle
	}
	return nil
}

type Filter struct {
	UserID     string
	UnreadOnly bool
	Page       int
	PageSize   int
}
