package geo

import (
	"fmt"
	"math"

	"github.com/nekogravitycat/servicehub-backend/internal/pkg/apperror"
)

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0

// averageSpeedKmh is the assumed travel speed for travel-time estimates.
const averageSpeedKmh = 30.0

var ErrInvalidCoordinate = apperror.Validation("invalid coordinate")

// Point is a coordinate in decimal degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Validate rejects non-finite or out-of-range coordinates.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return ErrInvalidCoordinate
	}
	if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}

// Haversine returns the great-circle distance in kilometers, rounded to 2 decimals.
func Haversine(a, b Point) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}

	lat1, lng1 := toRadians(a.Lat), toRadians(a.Lng)
	lat2, lng2 := toRadians(b.Lat), toRadians(b.Lng)

	dLat := lat2 - lat1
	dLng := lng2 - lng1

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Asin(math.Sqrt(h))

	return round2(EarthRadiusKm * c), nil
}

// DistanceKm is Haversine over optional inputs.
// It returns nil without error when any coordinate is missing: the caller
// cannot compute a distance, which is not the same as a distance of zero.
func DistanceKm(lat1, lng1, lat2, lng2 *float64) (*float64, error) {
	if lat1 == nil || lng1 == nil || lat2 == nil || lng2 == nil {
		return nil, nil
	}

	d, err := Haversine(Point{Lat: *lat1, Lng: *lng1}, Point{Lat: *lat2, Lng: *lng2})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// TravelMinutes estimates travel time at 30 km/h, rounded to whole minutes.
func TravelMinutes(distanceKm float64) int {
	return int(math.Round(distanceKm / averageSpeedKmh * 60))
}

// FormatTravelTime renders minutes the way bookings store them.
func FormatTravelTime(minutes int) string {
	return fmt.Sprintf("%d minutes", minutes)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
