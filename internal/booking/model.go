package booking

import (
	"time"

	"github.com/nekogravitycat/servicehub-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/servicehub-backend/internal/user"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusRejected   Status = "rejected"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

var (
	ErrNotFound           = apperror.NotFound("booking not found")
	ErrNotCancellable     = apperror.NotFound("booking not found or cannot be cancelled")
	ErrConflict           = apperror.Conflict("booking was modified concurrently, reload and retry")
	ErrNotCustomer        = apperror.Forbidden("only customers can create bookings")
	ErrActorNotAllowed    = apperror.Forbidden("you are not allowed to make this status change")
	ErrSelfBooking        = apperror.Validation("customer and provider cannot be the same user")
	ErrNotProvider        = apperror.Validation("selected user is not a service provider")
	ErrDateNotFuture      = apperror.Validation("booking date must be in the future")
	ErrServiceMismatch    = apperror.Validation("service does not belong to the selected provider")
	ErrServiceInactive    = apperror.Validation("service is not currently available")
	ErrInvalidPrice       = apperror.Validation("quoted price must be greater than zero")
	ErrAddressRequired    = apperror.Validation("service address is required")
	ErrIncompleteCoords   = apperror.Validation("service latitude and longitude must be provided together")
	ErrInvalidStatus      = apperror.Validation("invalid booking status")
	ErrInvalidTransition  = apperror.Validation("invalid status transition")
	ErrInvalidSortField   = apperror.Validation("invalid sort field")
	ErrInvalidFinalPrice  = apperror.Validation("final price must be greater than zero")
	ErrInvalidPaymentStat = apperror.Validation("invalid payment status")
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// Terminal statuses accept no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusRejected
}

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// transitions maps from -> to -> the role allowed to perform it.
var transitions = map[Status]map[Status]string{
	StatusPending: {
		StatusConfirmed: user.RoleProvider,
		StatusRejected:  user.RoleProvider,
		StatusCancelled: user.RoleCustomer,
	},
	StatusConfirmed: {
		StatusInProgress: user.RoleProvider,
		StatusCancelled:  user.RoleCustomer,
	},
	StatusInProgress: {
		StatusCompleted: user.RoleProvider,
	},
}

// CheckTransition reports whether role may move a booking from one status to another.
func CheckTransition(from, to Status, role string) error {
	allowed, ok := transitions[from][to]
	if !ok {
		return ErrInvalidTransition
	}
	if allowed != role {
		return ErrActorNotAllowed
	}
	return nil
}

type Booking struct {
	ID           string
	CustomerID   string
	CustomerName string
	ProviderID   string
	ProviderName string
	ServiceID    string
	ServiceName  string

	BookingDate         time.Time
	EstimatedDuration   *string
	SpecialInstructions *string

	ServiceAddress      string
	ServiceLatitude     *float64
	ServiceLongitude    *float64
	DistanceKm          *float64
	EstimatedTravelTime *string

	Status        Status
	QuotedPrice   float64
	FinalPrice    *float64
	PaymentStatus PaymentStatus

	ProviderNotes   *string
	RejectionReason *string
	HasReview       bool
	Version         int

	CreatedAt   time.Time
	UpdatedAt   time.Time
	ConfirmedAt *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
}

// IsActive reports whether the booking still needs work.
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed || b.Status == StatusInProgress
}

func (b *Booking) CanBeReviewed() bool {
	return b.Status == StatusCompleted && !b.HasReview
}

func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsParticipant reports whether userID is the booking's customer or provider.
func (b *Booking) IsParticipant(userID string) bool {
	return b.CustomerID == userID || b.ProviderID == userID
}

// enter moves the booking to status and stamps the matching timestamp once.
func (b *Booking) enter(status Status, now time.Time) {
	b.Status = status
	switch status {
	case StatusConfirmed:
		if b.ConfirmedAt == nil {
			b.ConfirmedAt = &now
		}
	case StatusCompleted:
		if b.CompletedAt == nil {
			b.CompletedAt = &now
		}
	case StatusCancelled:
		if b.CancelledAt == nil {
			b.CancelledAt = &now
		}
	}
}

// Filter is used for listing bookings.
type Filter struct {
	CustomerID string
	ProviderID string
	Status     *Status
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
