package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestHaversine(t *testing.T) {
	nyc := Point{Lat: 40.7128, Lng: -74.0060}
	midtown := Point{Lat: 40.7589, Lng: -73.9851}

	t.Run("Same Point Is Zero", func(t *testing.T) {
		d, err := Haversine(nyc, nyc)
		require.NoError(t, err)
		assert.Equal(t, 0.0, d)
	})

	t.Run("Symmetric", func(t *testing.T) {
		ab, err := Haversine(nyc, midtown)
		require.NoError(t, err)
		ba, err := Haversine(midtown, nyc)
		require.NoError(t, err)
		assert.Equal(t, ab, ba)
	})

	t.Run("Known NYC Distance", func(t *testing.T) {
		d, err := Haversine(nyc, midtown)
		require.NoError(t, err)
		assert.InDelta(t, 5.42, d, 0.01)
	})

	t.Run("Rounded To Two Decimals", func(t *testing.T) {
		d, err := Haversine(nyc, midtown)
		require.NoError(t, err)
		assert.Equal(t, math.Round(d*100)/100, d)
	})

	t.Run("Rejects Malformed Input", func(t *testing.T) {
		_, err := Haversine(Point{Lat: 91, Lng: 0}, nyc)
		assert.ErrorIs(t, err, ErrInvalidCoordinate)

		_, err = Haversine(nyc, Point{Lat: 0, Lng: math.NaN()})
		assert.ErrorIs(t, err, ErrInvalidCoordinate)

		_, err = Haversine(nyc, Point{Lat: 0, Lng: math.Inf(1)})
		assert.ErrorIs(t, err, ErrInvalidCoordinate)
	})
}

func TestDistanceKm(t *testing.T) {
	t.Run("Missing Input Yields Nil", func(t *testing.T) {
		cases := [][4]*float64{
			{nil, ptr(1), ptr(1), ptr(1)},
			{ptr(1), nil, ptr(1), ptr(1)},
			{ptr(1), ptr(1), nil, ptr(1)},
			{ptr(1), ptr(1), ptr(1), nil},
		}
		for _, c := range cases {
			d, err := DistanceKm(c[0], c[1], c[2], c[3])
			require.NoError(t, err)
			assert.Nil(t, d)
		}
	})

	t.Run("All Present", func(t *testing.T) {
		d, err := DistanceKm(ptr(40.7128), ptr(-74.0060), ptr(40.7589), ptr(-73.9851))
		require.NoError(t, err)
		require.NotNil(t, d)
		assert.InDelta(t, 5.42, *d, 0.01)
	})

	t.Run("Malformed Propagates", func(t *testing.T) {
		_, err := DistanceKm(ptr(100), ptr(0), ptr(0), ptr(0))
		assert.ErrorIs(t, err, ErrInvalidCoordinate)
	})
}

func TestTravelTime(t *testing.T) {
	assert.Equal(t, 0, TravelMinutes(0))
	assert.Equal(t, 11, TravelMinutes(5.42))
	assert.Equal(t, 60, TravelMinutes(30))
	assert.Equal(t, 1, TravelMinutes(0.26))
	assert.Equal(t, "12 minutes", FormatTravelTime(12))
}
