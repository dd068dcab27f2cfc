package availability

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/servicehub-backend/internal/auth"
)

type fakeRepo struct {
	slots map[string]Slot
}

func (r *fakeRepo) clash(s *Slot) bool {
	for _, other := range r.slots {
		if other.ID != s.ID && other.ProviderID == s.ProviderID &&
			other.DayOfWeek == s.DayOfWeek && other.StartTime == s.StartTime {
			return true
		}
	}
	return false
}

func (r *fakeRepo) Create(_ context.Context, s *Slot) error {
	if r.clash(s) {
		return ErrDuplicateSlot
	}
	s.ID = uuid.NewString()
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	r.slots[s.ID] = *s
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Slot, error) {
	s, ok := r.slots[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *fakeRepo) ListByProvider(_ context.Context, providerID string) ([]*Slot, error) {
	out := []*Slot{}
	for _, s := range r.slots {
		if s.ProviderID == providerID {
			cp := s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, s *Slot) error {
	if _, ok := r.slots[s.ID]; !ok {
		return ErrNotFound
	}
	if r.clash(s) {
		return ErrDuplicateSlot
	}
	r.slots[s.ID] = *s
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.slots[id]; !ok {
		return ErrNotFound
	}
	delete(r.slots, id)
	return nil
}

var (
	pro      = auth.Actor{ID: "prov-1", Role: "provider"}
	rival    = auth.Actor{ID: "prov-2", Role: "provider"}
	customer = auth.Actor{ID: "cust-1", Role: "customer"}
)

func setup() (Service, *fakeRepo) {
	repo := &fakeRepo{slots: map[string]Slot{}}
	return NewService(repo), repo
}

func TestParseClock(t *testing.T) {
	cases := map[string]string{
		"09:00":    "09:00:00",
		"9:30":     "09:30:00",
		"17:45:30": "17:45:30",
	}
	for in, want := range cases {
		got, err := ParseClock(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, bad := range []string{"", "25:00", "noon", "12:60"} {
		_, err := ParseClock(bad)
		assert.ErrorIs(t, err, ErrInvalidTime, bad)
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Defaults", func(t *testing.T) {
		svc, _ := setup()
		s, err := svc.Create(ctx, pro, CreateRequest{DayOfWeek: 0, StartTime: "09:00", EndTime: "12:00"})
		require.NoError(t, err)
		assert.True(t, s.IsAvailable)
		assert.Equal(t, 1, s.MaxBookingsPerSlot)
		assert.Equal(t, "09:00:00", s.StartTime)
		assert.Equal(t, "Monday", s.DayName())
	})

	t.Run("Validation", func(t *testing.T) {
		svc, _ := setup()
		zero := 0
		cases := []struct {
			name string
			req  CreateRequest
			err  error
		}{
			{"Day Out Of Range", CreateRequest{DayOfWeek: 7, StartTime: "09:00", EndTime: "10:00"}, ErrInvalidDay},
			{"Bad Time", CreateRequest{DayOfWeek: 1, StartTime: "9am", EndTime: "10:00"}, ErrInvalidTime},
			{"End Equals Start", CreateRequest{DayOfWeek: 1, StartTime: "10:00", EndTime: "10:00:00"}, ErrEndBeforeStart},
			{"End Before Start", CreateRequest{DayOfWeek: 1, StartTime: "14:00", EndTime: "09:00"}, ErrEndBeforeStart},
			{"Zero Max", CreateRequest{DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00", MaxBookingsPerSlot: &zero}, ErrInvalidMax},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.Create(ctx, pro, tc.req)
				assert.ErrorIs(t, err, tc.err)
			})
		}
	})

	t.Run("Customer Rejected", func(t *testing.T) {
		svc, _ := setup()
		_, err := svc.Create(ctx, customer, CreateRequest{DayOfWeek: 0, StartTime: "09:00", EndTime: "12:00"})
		assert.ErrorIs(t, err, ErrNotProvider)
	})

	t.Run("Unique Per Day And Start", func(t *testing.T) {
		svc, _ := setup()
		_, err := svc.Create(ctx, pro, CreateRequest{DayOfWeek: 2, StartTime: "09:00", EndTime: "12:00"})
		require.NoError(t, err)

		_, err = svc.Create(ctx, pro, CreateRequest{DayOfWeek: 2, StartTime: "09:00:00", EndTime: "11:00"})
		assert.ErrorIs(t, err, ErrDuplicateSlot)

		_, err = svc.Create(ctx, rival, CreateRequest{DayOfWeek: 2, StartTime: "09:00", EndTime: "12:00"})
		assert.NoError(t, err)
	})
}

func TestService_Ownership(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup()

	tue, err := svc.Create(ctx, pro, CreateRequest{DayOfWeek: 1, StartTime: "13:00", EndTime: "17:00"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, pro, CreateRequest{DayOfWeek: 0, StartTime: "09:00", EndTime: "12:00"})
	require.NoError(t, err)

	t.Run("List Is Ordered And Scoped", func(t *testing.T) {
		slots, err := svc.List(ctx, pro)
		require.NoError(t, err)
		require.Len(t, slots, 2)
		assert.Equal(t, 0, slots[0].DayOfWeek)

		slots, err = svc.List(ctx, rival)
		require.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("Other Provider Cannot Touch", func(t *testing.T) {
		off := false
		_, err := svc.Update(ctx, rival, tue.ID, UpdateRequest{IsAvailable: &off})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, svc.Delete(ctx, rival, tue.ID), ErrNotFound)
	})

	t.Run("Owner Updates", func(t *testing.T) {
		off := false
		end := "18:30"
		s, err := svc.Update(ctx, pro, tue.ID, UpdateRequest{IsAvailable: &off, EndTime: &end})
		require.NoError(t, err)
		assert.False(t, s.IsAvailable)
		assert.Equal(t, "18:30:00", repo.slots[tue.ID].EndTime)
	})

	t.Run("Owner Deletes", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, pro, tue.ID))
		_, ok := repo.slots[tue.ID]
		assert.False(t, ok)
	})
}
