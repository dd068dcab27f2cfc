package review

import (
	"time"

	"github.com/nekogravitycat/servicehub-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.NotFound("review not found")
	ErrBookingNotFound  = apperror.NotFound("booking not found")
	ErrProviderNotFound = apperror.NotFound("provider not found")
	ErrNotCustomer      = apperror.Forbidden("only customers can create reviews")
	ErrNotCompleted     = apperror.Validation("can only review completed bookings")
	ErrAlreadyReviewed  = apperror.Validation("booking already has a review")
	ErrInvalidRating    = apperror.Validation("ratings must be between 1 and 5")
	ErrOwnReview        = apperror.Validation("you cannot mark your own review as helpful")
)

// Review is written once per completed booking. Only HelpfulCount changes afterwards.
type Review struct {
	ID           string
	BookingID    string
	CustomerID   string
	CustomerName string
	ProviderID   string
	ProviderName string
	ServiceID    string
	ServiceName  string

	Rating              int
	QualityRating       int
	PunctualityRating   int
	CommunicationRating int
	ValueRating         int
	Title               *string
	Comment             *string

	IsVerified   bool
	IsFeatured   bool
	HelpfulCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Filter struct {
	ProviderID string
	CustomerID string
	Page       int
	PageSize   int
}

func validRating(v int) bool {
	return v >= 1 && v <= 5
}
