// Package bookingtest provides an in-memory booking repository for service tests.
package bookingtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/servicehub-backend/internal/booking"
)

// Store implements booking.Repository and dbtest.Snapshotter.
type Store struct {
	mu       sync.Mutex
	bookings map[string]booking.Booking

	// Writes counts successful UpdateState calls.
	Writes int
}

func NewStore() *Store {
	return &Store{bookings: map[string]booking.Booking{}}
}

func (s *Store) Snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := make(map[string]booking.Booking, len(s.bookings))
	for k, v := range s.bookings {
		saved[k] = v
	}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.bookings = saved
	}
}

// Put stores b as-is, assigning an id and version when missing.
func (s *Store) Put(b booking.Booking) *booking.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Version == 0 {
		b.Version = 1
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
		b.UpdatedAt = b.CreatedAt
	}
	s.bookings[b.ID] = b
	return &b
}

// MarkReviewed flags the booking as having a review.
func (s *Store) MarkReviewed(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.bookings[id]
	b.HasReview = true
	s.bookings[id] = b
}

func (s *Store) Create(_ context.Context, b *booking.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b.ID = uuid.NewString()
	b.Version = 1
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	s.bookings[b.ID] = *b
	return nil
}

func (s *Store) GetByID(_ context.Context, id string) (*booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	return &b, nil
}

func (s *Store) LockForPayment(ctx context.Context, id string) (*booking.Booking, error) {
	return s.GetByID(ctx, id)
}

func (s *Store) List(_ context.Context, filter booking.Filter) ([]*booking.Booking, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*booking.Booking
	for _, b := range s.bookings {
		if filter.CustomerID != "" && b.CustomerID != filter.CustomerID {
			continue
		}
		if filter.ProviderID != "" && b.ProviderID != filter.ProviderID {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	total := len(out)
	if filter.PageSize > 0 {
		start := 0
		if filter.Page > 1 {
			start = min((filter.Page-1)*filter.PageSize, total)
		}
		out = out[start:min(start+filter.PageSize, total)]
	}
	return out, total, nil
}

func (s *Store) UpdateState(_ context.Context, b *booking.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.bookings[b.ID]
	if !ok || cur.Version != b.Version {
		return booking.ErrConflict
	}

	cur.Status = b.Status
	cur.ConfirmedAt = b.ConfirmedAt
	cur.CompletedAt = b.CompletedAt
	cur.CancelledAt = b.CancelledAt
	cur.ProviderNotes = b.ProviderNotes
	cur.RejectionReason = b.RejectionReason
	cur.FinalPrice = b.FinalPrice
	cur.Version++
	cur.UpdatedAt = time.Now()
	s.bookings[b.ID] = cur

	b.Version = cur.Version
	b.UpdatedAt = cur.UpdatedAt
	s.Writes++
	return nil
}

func (s *Store) SetPaymentStatus(_ context.Context, id string, status booking.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return booking.ErrNotFound
	}
	b.PaymentStatus = status
	s.bookings[id] = b
	return nil
}
