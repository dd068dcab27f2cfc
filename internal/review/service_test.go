package review_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/servicehub-backend/internal/auth"
	"github.com/nekogravitycat/servicehub-backend/internal/booking"
	"github.com/nekogravitycat/servicehub-backend/internal/booking/bookingtest"
	"github.com/nekogravitycat/servicehub-backend/internal/db/dbtest"
	"github.com/nekogravitycat/servicehub-backend/internal/notification"
	"github.com/nekogravitycat/servicehub-backend/internal/notification/notificationtest"
	"github.com/nekogravitycat/servicehub-backend/internal/provider"
	"github.com/nekogravitycat/servicehub-backend/internal/review"
	"github.com/nekogravitycat/servicehub-backend/internal/tasks"
	"github.com/nekogravitycat/servicehub-backend/internal/user"
)

type fakeRepo struct {
	mu      sync.Mutex
	reviews map[string]review.Review
	order   []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{reviews: map[string]review.Review{}}
}

func (r *fakeRepo) Snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := make(map[string]review.Review, len(r.reviews))
	for k, v := range r.reviews {
		saved[k] = v
	}
	order := append([]string(nil), r.order...)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.reviews, r.order = saved, order
	}
}

func (r *fakeRepo) Create(_ context.Context, rv *review.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.reviews {
		if existing.BookingID == rv.BookingID {
			return review.ErrAlreadyReviewed
		}
	}
	rv.ID = uuid.NewString()
	rv.CreatedAt = time.Now()
	rv.UpdatedAt = rv.CreatedAt
	r.reviews[rv.ID] = *rv
	r.order = append(r.order, rv.ID)
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*review.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rv, ok := r.reviews[id]
	if !ok {
		return nil, review.ErrNotFound
	}
	return &rv, nil
}

func (r *fakeRepo) List(_ context.Context, filter review.Filter) ([]*review.Review, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*review.Review{}
	for i := len(r.order) - 1; i >= 0; i-- {
		rv := r.reviews[r.order[i]]
		if filter.ProviderID != "" && rv.ProviderID != filter.ProviderID {
			continue
		}
		if filter.CustomerID != "" && rv.CustomerID != filter.CustomerID {
			continue
		}
		out = append(out, &rv)
	}
	return out, len(out), nil
}

func (r *fakeRepo) IncrementHelpful(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rv, ok := r.reviews[id]
	if !ok {
		return review.ErrNotFound
	}
	rv.HelpfulCount++
	r.reviews[id] = rv
	return nil
}

func (r *fakeRepo) ratings(providerID string) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []int
	for _, rv := range r.reviews {
		if rv.ProviderID == providerID {
			out = append(out, rv.Rating)
		}
	}
	return out
}

// fakeProfiles recomputes from the review store like the SQL full scan does.
type fakeProfiles struct {
	reviews  *fakeRepo
	profiles map[string]provider.Profile
	fail     bool
}

func (p *fakeProfiles) Snapshot() func() {
	saved := make(map[string]provider.Profile, len(p.profiles))
	for k, v := range p.profiles {
		saved[k] = v
	}
	return func() { p.profiles = saved }
}

func (p *fakeProfiles) GetProfile(_ context.Context, providerID string) (*provider.Profile, error) {
	prof, ok := p.profiles[providerID]
	if !ok {
		return nil, provider.ErrNotFound
	}
	return &prof, nil
}

func (p *fakeProfiles) RecomputeRating(_ context.Context, providerID string) (float64, int, error) {
	if p.fail {
		return 0, 0, errors.New("profile write failed")
	}
	avg, count := provider.AverageRating(p.reviews.ratings(providerID))
	prof := p.profiles[providerID]
	prof.AverageRating, prof.TotalReviews = avg, count
	p.profiles[providerID] = prof
	return avg, count, nil
}

var (
	customer = auth.Actor{ID: "cust-1", Role: user.RoleCustomer}
	stranger = auth.Actor{ID: "cust-2", Role: user.RoleCustomer}
	pro      = auth.Actor{ID: "prov-1", Role: user.RoleProvider}
)

type env struct {
	svc      review.Service
	repo     *fakeRepo
	profiles *fakeProfiles
	bookings *bookingtest.Store
	notes    *notificationtest.Store
	tx       *dbtest.TxManager
	sched    *tasks.LocalScheduler
}

func setup(t *testing.T) *env {
	t.Helper()

	repo := newFakeRepo()
	profiles := &fakeProfiles{reviews: repo, profiles: map[string]provider.Profile{
		pro.ID: {UserID: pro.ID, FullName: "Pat Provider"},
	}}
	bookings := bookingtest.NewStore()
	notes := notificationtest.NewStore()
	sched := tasks.NewLocalScheduler(time.Second)
	t.Cleanup(func() { _ = sched.Shutdown(context.Background()) })

	tx := dbtest.NewTxManager(repo, profiles, notes)
	svc := review.NewService(repo, bookings, profiles, tx, notification.NewService(notes, sched))
	return &env{svc: svc, repo: repo, profiles: profiles, bookings: bookings, notes: notes, tx: tx, sched: sched}
}

func (e *env) booking(status booking.Status) *booking.Booking {
	return e.bookings.Put(booking.Booking{
		CustomerID:   customer.ID,
		CustomerName: "Casey Customer",
		ProviderID:   pro.ID,
		ProviderName: "Pat Provider",
		ServiceID:    "svc-1",
		ServiceName:  "Deep Clean",
		Status:       status,
	})
}

func stars(bookingID string, rating int) review.CreateRequest {
	return review.CreateRequest{
		BookingID:           bookingID,
		Rating:              rating,
		QualityRating:       rating,
		PunctualityRating:   4,
		CommunicationRating: 4,
		ValueRating:         3,
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success Updates Rating And Notifies", func(t *testing.T) {
		e := setup(t)
		b := e.booking(booking.StatusCompleted)

		title := "  Great job  "
		req := stars(b.ID, 5)
		req.Title = &title

		r, err := e.svc.Create(ctx, customer, req)
		require.NoError(t, err)
		assert.Equal(t, pro.ID, r.ProviderID)
		assert.Equal(t, "svc-1", r.ServiceID)
		assert.True(t, r.IsVerified)
		require.NotNil(t, r.Title)
		assert.Equal(t, "Great job", *r.Title)

		prof := e.profiles.profiles[pro.ID]
		assert.Equal(t, 5.0, prof.AverageRating)
		assert.Equal(t, 1, prof.TotalReviews)

		e.sched.Wait()
		notes := e.notes.ForUser(pro.ID)
		require.Len(t, notes, 1)
		assert.Equal(t, notification.TypeReviewReceived, notes[0].Type)
		assert.Equal(t, "Received 5-star review from Casey Customer", notes[0].Message)
		require.NotNil(t, notes[0].ReviewID)
		assert.Equal(t, r.ID, *notes[0].ReviewID)
		assert.True(t, notes[0].IsSent)
	})

	t.Run("Average Uses Every Review", func(t *testing.T) {
		e := setup(t)
		for _, rating := range []int{5, 4, 4} {
			b := e.booking(booking.StatusCompleted)
			_, err := e.svc.Create(ctx, customer, stars(b.ID, rating))
			require.NoError(t, err)
		}

		prof := e.profiles.profiles[pro.ID]
		assert.Equal(t, 4.33, prof.AverageRating)
		assert.Equal(t, 3, prof.TotalReviews)
	})

	t.Run("Gate Errors", func(t *testing.T) {
		e := setup(t)
		confirmed := e.booking(booking.StatusConfirmed)
		reviewed := e.booking(booking.StatusCompleted)
		e.bookings.MarkReviewed(reviewed.ID)
		done := e.booking(booking.StatusCompleted)

		cases := []struct {
			name  string
			actor auth.Actor
			req   review.CreateRequest
			err   error
		}{
			{"Not Completed", customer, stars(confirmed.ID, 5), review.ErrNotCompleted},
			{"Other Customer's Booking", stranger, stars(done.ID, 5), review.ErrBookingNotFound},
			{"Other Customer's Unfinished Booking", stranger, stars(confirmed.ID, 5), review.ErrBookingNotFound},
			{"Other Customer's Reviewed Booking", stranger, stars(reviewed.ID, 5), review.ErrBookingNotFound},
			{"Already Reviewed", customer, stars(reviewed.ID, 5), review.ErrAlreadyReviewed},
			{"Provider Cannot Review", pro, stars(done.ID, 5), review.ErrNotCustomer},
			{"Unknown Booking", customer, stars(uuid.NewString(), 5), review.ErrBookingNotFound},
			{"Rating Out Of Range", customer, stars(done.ID, 6), review.ErrInvalidRating},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := e.svc.Create(ctx, tc.actor, tc.req)
				assert.ErrorIs(t, err, tc.err)
			})
		}

		assert.Empty(t, e.repo.reviews)
		assert.Empty(t, e.notes.All())
	})

	t.Run("Concurrent Duplicate Maps To Already Reviewed", func(t *testing.T) {
		e := setup(t)
		b := e.booking(booking.StatusCompleted)

		_, err := e.svc.Create(ctx, customer, stars(b.ID, 5))
		require.NoError(t, err)

		// The booking snapshot still reads as unreviewed; the insert catches it.
		_, err = e.svc.Create(ctx, customer, stars(b.ID, 1))
		assert.ErrorIs(t, err, review.ErrAlreadyReviewed)

		assert.Len(t, e.repo.reviews, 1)
		assert.Equal(t, 5.0, e.profiles.profiles[pro.ID].AverageRating)
	})

	t.Run("Rating Failure Rolls Back Review", func(t *testing.T) {
		e := setup(t)
		b := e.booking(booking.StatusCompleted)
		e.profiles.fail = true

		_, err := e.svc.Create(ctx, customer, stars(b.ID, 5))
		require.Error(t, err)

		assert.Empty(t, e.repo.reviews)
		assert.Empty(t, e.notes.All())
		assert.Equal(t, 1, e.tx.Aborts)
		assert.Equal(t, 0, e.profiles.profiles[pro.ID].TotalReviews)
	})
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	e := setup(t)

	first := e.booking(booking.StatusCompleted)
	second := e.booking(booking.StatusCompleted)
	_, err := e.svc.Create(ctx, customer, stars(first.ID, 3))
	require.NoError(t, err)
	_, err = e.svc.Create(ctx, customer, stars(second.ID, 5))
	require.NoError(t, err)

	t.Run("Customer Sees Written", func(t *testing.T) {
		rs, total, err := e.svc.ListMine(ctx, customer, review.Filter{})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Equal(t, second.ID, rs[0].BookingID)
	})

	t.Run("Provider Sees Received", func(t *testing.T) {
		_, total, err := e.svc.ListMine(ctx, pro, review.Filter{CustomerID: "ignored"})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
	})

	t.Run("Stranger Sees None", func(t *testing.T) {
		_, total, err := e.svc.ListMine(ctx, stranger, review.Filter{})
		require.NoError(t, err)
		assert.Equal(t, 0, total)
	})

	t.Run("Public Provider Reviews", func(t *testing.T) {
		_, total, err := e.svc.ListForProvider(ctx, pro.ID, review.Filter{})
		require.NoError(t, err)
		assert.Equal(t, 2, total)

		_, _, err = e.svc.ListForProvider(ctx, "nobody", review.Filter{})
		assert.ErrorIs(t, err, review.ErrProviderNotFound)
	})
}

func TestService_MarkHelpful(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	b := e.booking(booking.StatusCompleted)
	r, err := e.svc.Create(ctx, customer, stars(b.ID, 4))
	require.NoError(t, err)

	updated, err := e.svc.MarkHelpful(ctx, stranger, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.HelpfulCount)

	_, err = e.svc.MarkHelpful(ctx, customer, r.ID)
	assert.ErrorIs(t, err, review.ErrOwnReview)

	_, err = e.svc.MarkHelpful(ctx, stranger, uuid.NewString())
	assert.ErrorIs(t, err, review.ErrNotFound)
}
