package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/servicehub-backend/internal/geo"
)

func ptr[T any](v T) *T { return &v }

var origin = geo.Point{Lat: 40.7128, Lng: -74.0060}

func candidate(id string, lat, lng float64) Candidate {
	return Candidate{
		ServiceID:         id,
		ServiceName:       "Service " + id,
		CategoryName:      "Home Cleaning",
		BasePrice:         100,
		ProviderID:        "provider-" + id,
		ProviderLatitude:  ptr(lat),
		ProviderLongitude: ptr(lng),
	}
}

func ids(ms []Match) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.ServiceID
	}
	return out
}

func TestRank_Buckets(t *testing.T) {
	midtown := candidate("midtown", 40.7589, -73.9851)
	far := candidate("far", 40.9, -74.0060)          // ~20.8 km
	philly := candidate("philly", 39.9526, -75.1652) // ~130 km

	exact, err := geo.Haversine(origin, geo.Point{Lat: 40.7589, Lng: -73.9851})
	require.NoError(t, err)

	t.Run("Boundary Is Nearby", func(t *testing.T) {
		res, err := Rank(Params{Origin: origin, RadiusKm: exact}, []Candidate{midtown})
		require.NoError(t, err)
		require.Len(t, res.Nearby, 1)
		assert.True(t, res.Nearby[0].IsNearby)
		assert.Equal(t, exact, res.Nearby[0].DistanceKm)
		assert.Empty(t, res.Distant)
	})

	t.Run("Just Outside Radius Is Distant", func(t *testing.T) {
		res, err := Rank(Params{Origin: origin, RadiusKm: exact - 0.01}, []Candidate{midtown})
		require.NoError(t, err)
		assert.Empty(t, res.Nearby)
		require.Len(t, res.Distant, 1)
		assert.False(t, res.Distant[0].IsNearby)
	})

	t.Run("Partition And Exclusion", func(t *testing.T) {
		res, err := Rank(Params{Origin: origin}, []Candidate{philly, far, midtown})
		require.NoError(t, err)
		assert.Equal(t, []string{"midtown"}, ids(res.Nearby))
		assert.Equal(t, []string{"far"}, ids(res.Distant))
		assert.Equal(t, DefaultRadiusKm, res.Params.RadiusKm)
	})

	t.Run("Missing Coordinates Never Appear", func(t *testing.T) {
		noLat := candidate("no-lat", 0, 0)
		noLat.ProviderLatitude = nil
		noLng := candidate("no-lng", 0, 0)
		noLng.ProviderLongitude = nil
		corrupt := candidate("corrupt", 120, 0)

		res, err := Rank(Params{Origin: origin, RadiusKm: 50}, []Candidate{noLat, noLng, corrupt, midtown})
		require.NoError(t, err)
		assert.Equal(t, []string{"midtown"}, ids(res.Nearby))
		assert.Empty(t, res.Distant)
	})

	t.Run("Empty Buckets Are Non Nil", func(t *testing.T) {
		res, err := Rank(Params{Origin: origin}, nil)
		require.NoError(t, err)
		assert.NotNil(t, res.Nearby)
		assert.NotNil(t, res.Distant)
	})
}

func TestRank_Sorting(t *testing.T) {
	a := candidate("a", 40.72, -74.0)
	a.BasePrice, a.AverageRating, a.TotalReviews = 100, 4.0, 10
	b := candidate("b", 40.75, -74.0)
	b.BasePrice, b.AverageRating, b.TotalReviews = 50, 4.5, 3
	c := candidate("c", 40.73, -74.0)
	c.BasePrice, c.AverageRating, c.TotalReviews = 100, 4.0, 10
	all := []Candidate{a, b, c}

	cases := []struct {
		sortBy string
		want   []string
	}{
		{SortDistance, []string{"a", "c", "b"}},
		{SortPrice, []string{"b", "a", "c"}},
		{SortRating, []string{"b", "a", "c"}},
		{SortReviews, []string{"a", "c", "b"}},
		{"", []string{"a", "c", "b"}},
	}

	for _, tc := range cases {
		t.Run("Sort "+tc.sortBy, func(t *testing.T) {
			res, err := Rank(Params{Origin: origin, SortBy: tc.sortBy}, all)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(res.Nearby))
		})
	}

	t.Run("Price Ties Keep Input Order", func(t *testing.T) {
		res, err := Rank(Params{Origin: origin, SortBy: SortPrice}, []Candidate{c, b, a})
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "c", "a"}, ids(res.Nearby))
	})
}

func TestRank_Filters(t *testing.T) {
	cheap := candidate("cheap", 40.72, -74.0)
	cheap.BasePrice, cheap.AverageRating = 40, 3.5
	cheap.CategoryName = "Plumbing"
	good := candidate("good", 40.73, -74.0)
	good.BasePrice, good.AverageRating = 120, 4.8
	all := []Candidate{cheap, good}

	t.Run("Category Is Case Insensitive Substring", func(t *testing.T) {
		res, err := Rank(Params{Origin: origin, Category: "CLEAN"}, all)
		require.NoError(t, err)
		assert.Equal(t, []string{"good"}, ids(res.Nearby))
	})

	t.Run("Min Rating", func(t *testing.T) {
		res, err := Rank(Params{Origin: origin, MinRating: ptr(4.8)}, all)
		require.NoError(t, err)
		assert.Equal(t, []string{"good"}, ids(res.Nearby))
	})

	t.Run("Max Price", func(t *testing.T) {
		res, err := Rank(Params{Origin: origin, MaxPrice: ptr(40.0)}, all)
		require.NoError(t, err)
		assert.Equal(t, []string{"cheap"}, ids(res.Nearby))
	})

	t.Run("Combined", func(t *testing.T) {
		res, err := Rank(Params{Origin: origin, MaxPrice: ptr(100.0), MinRating: ptr(4.0)}, all)
		require.NoError(t, err)
		assert.Empty(t, res.Nearby)
	})
}

func TestParams_Validate(t *testing.T) {
	cases := []struct {
		name string
		p    Params
		err  error
	}{
		{"Radius Too Small", Params{Origin: origin, RadiusKm: 0.5}, ErrInvalidRadius},
		{"Radius Too Large", Params{Origin: origin, RadiusKm: 51}, ErrInvalidRadius},
		{"Negative Radius", Params{Origin: origin, RadiusKm: -5}, ErrInvalidRadius},
		{"Unknown Sort", Params{Origin: origin, SortBy: "name"}, ErrInvalidSortKey},
		{"Min Rating", Params{Origin: origin, MinRating: ptr(5.5)}, ErrInvalidMinRating},
		{"Max Price", Params{Origin: origin, MaxPrice: ptr(-1.0)}, ErrInvalidMaxPrice},
		{"Bad Origin", Params{Origin: geo.Point{Lat: 95}}, geo.ErrInvalidCoordinate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Rank(tc.p, nil)
			assert.ErrorIs(t, err, tc.err)
		})
	}

	t.Run("Bounds Are Inclusive", func(t *testing.T) {
		for _, r := range []float64{MinRadiusKm, MaxDistanceKm} {
			_, err := Rank(Params{Origin: origin, RadiusKm: r}, nil)
			assert.NoError(t, err)
		}
	})
}

type countingRepo struct {
	calls      int
	candidates []Candidate
	err        error
}

func (r *countingRepo) Candidates(context.Context, Params) ([]Candidate, error) {
	r.calls++
	return r.candidates, r.err
}

func TestService_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("Validates Before Querying", func(t *testing.T) {
		repo := &countingRepo{}
		_, err := NewService(repo).Search(ctx, Params{Origin: origin, RadiusKm: 60})
		assert.ErrorIs(t, err, ErrInvalidRadius)
		assert.Equal(t, 0, repo.calls)
	})

	t.Run("Ranks Repository Candidates", func(t *testing.T) {
		repo := &countingRepo{candidates: []Candidate{candidate("midtown", 40.7589, -73.9851)}}
		res, err := NewService(repo).Search(ctx, Params{Origin: origin})
		require.NoError(t, err)
		assert.Equal(t, 1, repo.calls)
		assert.Len(t, res.Nearby, 1)
	})

	t.Run("Repository Error", func(t *testing.T) {
		repo := &countingRepo{err: errors.New("db down")}
		_, err := NewService(repo).Search(ctx, Params{Origin: origin})
		assert.Error(t, err)
	})
}
