package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nekogravitycat/servicehub-backend/internal/auth"
	"github.com/nekogravitycat/servicehub-backend/internal/booking"
	"github.com/nekogravitycat/servicehub-backend/internal/db"
	"github.com/nekogravitycat/servicehub-backend/internal/notification"
	"github.com/nekogravitycat/servicehub-backend/internal/provider"
	"github.com/nekogravitycat/servicehub-backend/internal/user"
)

type CreateRequest struct {
	BookingID           string
	Rating              int
	QualityRating       int
	PunctualityRating   int
	CommunicationRating int
	ValueRating         int
	Title               *string
	Comment             *string
}

type Service interface {
	// Create reviews a completed booking and refreshes the provider's rating.
	Create(ctx context.Context, actor auth.Actor, req CreateRequest) (*Review, error)
	GetByID(ctx context.Context, id string) (*Review, error)
	// ListMine returns reviews the actor wrote (customers) or received (providers).
	ListMine(ctx context.Context, actor auth.Actor, filter Filter) ([]*Review, int, error)
	ListForProvider(ctx context.Context, providerID string, filter Filter) ([]*Review, int, error)
	MarkHelpful(ctx context.Context, actor auth.Actor, id string) (*Review, error)
}

type BookingReader interface {
	GetByID(ctx context.Context, id string) (*booking.Booking, error)
}

// RatingStore is satisfied by provider.Repository.
type RatingStore interface {
	GetProfile(ctx context.Context, providerID string) (*provider.Profile, error)
	RecomputeRating(ctx context.Context, providerID string) (float64, int, error)
}

type service struct {
	repo      Repository
	bookings  BookingReader
	providers RatingStore
	tx        db.TxManager
	notifier  notification.Emitter
}

func NewService(repo Repository, bookings BookingReader, providers RatingStore, tx db.TxManager, notifier notification.Emitter) Service {
	return &service{
		repo:      repo,
		bookings:  bookings,
		providers: providers,
		tx:        tx,
		notifier:  notifier,
	}
}

func (r CreateRequest) validate() error {
	for _, v := range []int{r.Rating, r.QualityRating, r.PunctualityRating, r.CommunicationRating, r.ValueRating} {
		if !validRating(v) {
			return ErrInvalidRating
		}
	}
	return nil
}

func (s *service) Create(ctx context.Context, actor auth.Actor, req CreateRequest) (*Review, error) {
	if actor.Role != user.RoleCustomer {
		return nil, ErrNotCustomer
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	b, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	// Someone else's booking reads as missing, whatever its state.
	if b.CustomerID != actor.ID {
		return nil, ErrBookingNotFound
	}
	if b.Status != booking.StatusCompleted {
		return nil, ErrNotCompleted
	}
	if !b.CanBeReviewed() {
		return nil, ErrAlreadyReviewed
	}

	r := &Review{
		BookingID:           b.ID,
		CustomerID:          b.CustomerID,
		CustomerName:        b.CustomerName,
		ProviderID:          b.ProviderID,
		ProviderName:        b.ProviderName,
		ServiceID:           b.ServiceID,
		ServiceName:         b.ServiceName,
		Rating:              req.Rating,
		QualityRating:       req.QualityRating,
		PunctualityRating:   req.PunctualityRating,
		CommunicationRating: req.CommunicationRating,
		ValueRating:         req.ValueRating,
		Title:               trimmed(req.Title),
		Comment:             trimmed(req.Comment),
		IsVerified:          true,
	}

	var n *notification.Notification
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, r); err != nil {
			return err
		}
		if _, _, err := s.providers.RecomputeRating(ctx, r.ProviderID); err != nil {
			return err
		}
		n, err = s.notifier.Emit(ctx, notification.Event{
			UserID:    r.ProviderID,
			Type:      notification.TypeReviewReceived,
			Title:     "New Review",
			Message:   fmt.Sprintf("Received %d-star review from %s", r.Rating, r.CustomerName),
			BookingID: &r.BookingID,
			ReviewID:  &r.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, n)
	return r, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Review, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListMine(ctx context.Context, actor auth.Actor, filter Filter) ([]*Review, int, error) {
	filter.CustomerID, filter.ProviderID = "", ""
	switch actor.Role {
	case user.RoleCustomer:
		filter.CustomerID = actor.ID
	case user.RoleProvider:
		filter.ProviderID = actor.ID
	default:
		return []*Review{}, 0, nil
	}
	return s.repo.List(ctx, filter)
}

func (s *service) ListForProvider(ctx context.Context, providerID string, filter Filter) ([]*Review, int, error) {
	if _, err := s.providers.GetProfile(ctx, providerID); err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			return nil, 0, ErrProviderNotFound
		}
		return nil, 0, err
	}
	filter.CustomerID = ""
	filter.ProviderID = providerID
	return s.repo.List(ctx, filter)
}

func (s *service) MarkHelpful(ctx context.Context, actor auth.Actor, id string) (*Review, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.CustomerID == actor.ID {
		return nil, ErrOwnReview
	}
	if err := s.repo.IncrementHelpful(ctx, id); err != nil {
		return nil, err
	}
	r.HelpfulCount++
	return r, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
