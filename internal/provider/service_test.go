package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/servicehub-backend/internal/auth"
)

type fakeRepo struct {
	profiles map[string]*Profile
}

func (r *fakeRepo) GetProfile(_ context.Context, userID string) (*Profile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepo) UpsertProfile(_ context.Context, p *Profile) error {
	cp := *p
	r.profiles[p.UserID] = &cp
	return nil
}

func (r *fakeRepo) RecomputeRating(context.Context, string) (float64, int, error) { return 0, 0, nil }
func (r *fakeRepo) IncrementJobsCompleted(context.Context, string) error { return nil }

func ptr[T any](v T) *T { return &v }

func TestAverageRating(t *testing.T) {
	avg, n := AverageRating(nil)
	assert.Equal(t, 0.0, avg)
	assert.Equal(t, 0, n)

	avg, n = AverageRating([]int{5, 4, 4})
	assert.Equal(t, 4.33, avg)
	assert.Equal(t, 3, n)

	avg, n = AverageRating([]int{5, 4})
	assert.Equal(t, 4.5, avg)
	assert.Equal(t, 2, n)
}

func TestService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{profiles: map[string]*Profile{
		"p1": {UserID: "p1", ServiceRadiusKm: 10, AverageRating: 4.5, TotalReviews: 2},
	}}
	svc := NewService(repo)
	me := auth.Actor{ID: "p1", Role: "provider"}

	t.Run("Updates Editable Fields Only", func(t *testing.T) {
		p, err := svc.UpdateProfile(ctx, me, UpdateRequest{
			BusinessName:    ptr("  Pat's Plumbing "),
			ServiceRadiusKm: ptr(25),
			HourlyRate:      ptr(40.0),
		})
		require.NoError(t, err)
		assert.Equal(t, "Pat's Plumbing", *p.BusinessName)
		assert.Equal(t, 25, p.ServiceRadiusKm)
		assert.Equal(t, 4.5, repo.profiles["p1"].AverageRating)
		assert.Equal(t, 2, repo.profiles["p1"].TotalReviews)
	})

	t.Run("Blank Clears", func(t *testing.T) {
		p, err := svc.UpdateProfile(ctx, me, UpdateRequest{BusinessName: ptr(" ")})
		require.NoError(t, err)
		assert.Nil(t, p.BusinessName)
	})

	t.Run("Validation", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, me, UpdateRequest{ServiceRadiusKm: ptr(51)})
		assert.ErrorIs(t, err, ErrInvalidRadius)

		_, err = svc.UpdateProfile(ctx, me, UpdateRequest{HourlyRate: ptr(-1.0)})
		assert.ErrorIs(t, err, ErrInvalidRate)

		_, err = svc.UpdateProfile(ctx, me, UpdateRequest{YearsOfExperience: ptr(-1)})
		assert.ErrorIs(t, err, ErrInvalidExperience)
	})

	t.Run("Customer Rejected", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, auth.Actor{ID: "c1", Role: "customer"}, UpdateRequest{})
		assert.ErrorIs(t, err, ErrNotProvider)
	})
}
