package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nekogravitycat/servicehub-backend/internal/auth"
	"github.com/nekogravitycat/servicehub-backend/internal/catalog"
	"github.com/nekogravitycat/servicehub-backend/internal/db"
	"github.com/nekogravitycat/servicehub-backend/internal/geo"
	"github.com/nekogravitycat/servicehub-backend/internal/notification"
	"github.com/nekogravitycat/servicehub-backend/internal/user"
)

type CreateRequest struct {
	ProviderID          string
	ServiceID           string
	BookingDate         time.Time
	EstimatedDuration   *string
	SpecialInstructions *string
	ServiceAddress      string
	ServiceLatitude     *float64
	ServiceLongitude    *float64
	QuotedPrice         float64
}

type UpdateStatusRequest struct {
	Status          Status
	ProviderNotes   *string
	RejectionReason *string
	FinalPrice      *float64
}

type Service interface {
	Create(ctx context.Context, actor auth.Actor, req CreateRequest) (*Booking, error)
	GetByID(ctx context.Context, actor auth.Actor, id string) (*Booking, error)
	List(ctx context.Context, actor auth.Actor, filter Filter) ([]*Booking, int, error)
	UpdateStatus(ctx context.Context, actor auth.Actor, id string, req UpdateStatusRequest) (*Booking, error)
	Cancel(ctx context.Context, actor auth.Actor, id string) (*Booking, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

type ServiceLookup interface {
	GetService(ctx context.Context, id string) (*catalog.ProviderService, error)
}

// JobCounter is satisfied by provider.Repository.
type JobCounter interface {
	IncrementJobsCompleted(ctx context.Context, providerID string) error
}

type service struct {
	repo     Repository
	tx       db.TxManager
	users    UserLookup
	services ServiceLookup
	jobs     JobCounter
	notifier notification.Emitter
	now      func() time.Time
}

func NewService(repo Repository, tx db.TxManager, users UserLookup, services ServiceLookup, jobs JobCounter, notifier notification.Emitter) Service {
	return &service{
		repo:     repo,
		tx:       tx,
		users:    users,
		services: services,
		jobs:     jobs,
		notifier: notifier,
		now:      time.Now,
	}
}

var sortFields = map[string]bool{
	"created_at":   true,
	"booking_date": true,
	"status":       true,
	"quoted_price": true,
}

func (s *service) Create(ctx context.Context, actor auth.Actor, req CreateRequest) (*Booking, error) {
	if actor.Role != user.RoleCustomer {
		return nil, ErrNotCustomer
	}
	if actor.ID == req.ProviderID {
		return nil, ErrSelfBooking
	}

	provider, err := s.users.GetByID(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrNotProvider
		}
		return nil, err
	}
	if !provider.IsProvider() || !provider.IsActive {
		return nil, ErrNotProvider
	}

	if !req.BookingDate.After(s.now()) {
		return nil, ErrDateNotFuture
	}

	svc, err := s.services.GetService(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc.ProviderID != provider.ID {
		return nil, ErrServiceMismatch
	}
	if !svc.IsActive {
		return nil, ErrServiceInactive
	}

	if req.QuotedPrice <= 0 {
		return nil, ErrInvalidPrice
	}

	address := strings.TrimSpace(req.ServiceAddress)
	if address == "" {
		return nil, ErrAddressRequired
	}
	if (req.ServiceLatitude == nil) != (req.ServiceLongitude == nil) {
		return nil, ErrIncompleteCoords
	}

	// Distance runs from the service address to the provider's home; either side may be unknown.
	distance, err := geo.DistanceKm(req.ServiceLatitude, req.ServiceLongitude, provider.Latitude, provider.Longitude)
	if err != nil {
		return nil, err
	}
	var travel *string
	if distance != nil {
		t := geo.FormatTravelTime(geo.TravelMinutes(*distance))
		travel = &t
	}

	customer, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	b := &Booking{
		CustomerID:          customer.ID,
		CustomerName:        customer.FullName,
		ProviderID:          provider.ID,
		ProviderName:        provider.FullName,
		ServiceID:           svc.ID,
		ServiceName:         svc.Name,
		BookingDate:         req.BookingDate,
		EstimatedDuration:   req.EstimatedDuration,
		SpecialInstructions: req.SpecialInstructions,
		ServiceAddress:      address,
		ServiceLatitude:     req.ServiceLatitude,
		ServiceLongitude:    req.ServiceLongitude,
		DistanceKm:          distance,
		EstimatedTravelTime: travel,
		Status:              StatusPending,
		QuotedPrice:         req.QuotedPrice,
		PaymentStatus:       PaymentPending,
	}

	var n *notification.Notification
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, b); err != nil {
			return err
		}
		n, err = s.notifier.Emit(ctx, notification.Event{
			UserID:    b.ProviderID,
			Type:      notification.TypeBookingRequest,
			Title:     "New Booking Request",
			Message:   fmt.Sprintf("You have a new booking request from %s", b.CustomerName),
			BookingID: &b.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, n)
	return b, nil
}

// GetByID hides bookings the actor is not part of.
func (s *service) GetByID(ctx context.Context, actor auth.Actor, id string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.IsParticipant(actor.ID) {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *service) List(ctx context.Context, actor auth.Actor, filter Filter) ([]*Booking, int, error) {
	if filter.SortBy != "" && !sortFields[filter.SortBy] {
		return nil, 0, ErrInvalidSortField
	}
	filter.SortOrder = strings.ToUpper(filter.SortOrder)
	if filter.SortOrder != "" && filter.SortOrder != "ASC" && filter.SortOrder != "DESC" {
		return nil, 0, ErrInvalidSortField
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}

	switch actor.Role {
	case user.RoleCustomer:
		filter.CustomerID, filter.ProviderID = actor.ID, ""
	case user.RoleProvider:
		filter.CustomerID, filter.ProviderID = "", actor.ID
	default:
		return []*Booking{}, 0, nil
	}
	return s.repo.List(ctx, filter)
}

func (s *service) UpdateStatus(ctx context.Context, actor auth.Actor, id string, req UpdateStatusRequest) (*Booking, error) {
	if !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	b, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	role := participantRole(b, actor.ID)
	edits := req.ProviderNotes != nil || req.FinalPrice != nil
	changed := b.Status != req.Status

	// Repeating the current status only applies note and price edits.
	if !changed && !edits {
		return b, nil
	}
	if changed {
		if err := CheckTransition(b.Status, req.Status, role); err != nil {
			return nil, err
		}
	}

	if edits && role != user.RoleProvider {
		return nil, ErrActorNotAllowed
	}
	if req.FinalPrice != nil && *req.FinalPrice <= 0 {
		return nil, ErrInvalidFinalPrice
	}

	if req.ProviderNotes != nil {
		b.ProviderNotes = req.ProviderNotes
	}
	if req.FinalPrice != nil {
		b.FinalPrice = req.FinalPrice
	}
	if changed && req.Status == StatusRejected && req.RejectionReason != nil {
		reason := strings.TrimSpace(*req.RejectionReason)
		b.RejectionReason = &reason
	}
	if changed {
		b.enter(req.Status, s.now())
	}

	var n *notification.Notification
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateState(ctx, b); err != nil {
			return err
		}
		if !changed {
			return nil
		}

		if req.Status == StatusCompleted {
			if err := s.jobs.IncrementJobsCompleted(ctx, b.ProviderID); err != nil {
				return err
			}
		}

		ev, ok := statusEvent(b)
		if !ok {
			return nil
		}
		n, err = s.notifier.Emit(ctx, ev)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, n)
	return b, nil
}

func (s *service) Cancel(ctx context.Context, actor auth.Actor, id string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotCancellable
		}
		return nil, err
	}
	if actor.Role != user.RoleCustomer || b.CustomerID != actor.ID || !b.CanBeCancelled() {
		return nil, ErrNotCancellable
	}

	b.enter(StatusCancelled, s.now())

	var n *notification.Notification
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateState(ctx, b); err != nil {
			return err
		}
		n, err = s.notifier.Emit(ctx, notification.Event{
			UserID:    b.ProviderID,
			Type:      notification.TypeBookingCancelled,
			Title:     "Booking Cancelled",
			Message:   fmt.Sprintf("Booking from %s has been cancelled", b.CustomerName),
			BookingID: &b.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, n)
	return b, nil
}

// participantRole is the side of the booking userID is on.
func participantRole(b *Booking, userID string) string {
	if b.ProviderID == userID {
		return user.RoleProvider
	}
	return user.RoleCustomer
}

// statusEvent builds the customer notification for the status b just entered.
func statusEvent(b *Booking) (notification.Event, bool) {
	ev := notification.Event{UserID: b.CustomerID, BookingID: &b.ID}

	switch b.Status {
	case StatusConfirmed:
		ev.Type = notification.TypeBookingConfirmed
		ev.Title = "Booking Confirmed"
		ev.Message = fmt.Sprintf("Your booking with %s has been confirmed", b.ProviderName)
	case StatusCompleted:
		ev.Type = notification.TypeBookingCompleted
		ev.Title = "Booking Completed"
		ev.Message = fmt.Sprintf("Your booking with %s has been completed", b.ProviderName)
	case StatusCancelled:
		ev.Type = notification.TypeBookingCancelled
		ev.Title = "Booking Cancelled"
		ev.Message = fmt.Sprintf("Your booking with %s has been cancelled", b.ProviderName)
	case StatusRejected:
		ev.Type = notification.TypeBookingCancelled
		ev.Title = "Booking Rejected"
		ev.Message = fmt.Sprintf("Your booking with %s has been rejected", b.ProviderName)
		if b.RejectionReason != nil && *b.RejectionReason != "" {
			ev.Message += ": " + *b.RejectionReason
		}
	default:
		return notification.Event{}, false
	}
	return ev, true
}
