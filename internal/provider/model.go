package provider

import (
	"math"
	"time"

	"github.com/nekogravitycat/servicehub-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.NotFound("provider not found")
	ErrNotProvider       = apperror.Forbidden("only providers have a provider profile")
	ErrInvalidRadius     = apperror.Validation("service radius must be between 1 and 50 km")
	ErrInvalidRate       = apperror.Validation("hourly rate must not be negative")
	ErrInvalidExperience = apperror.Validation("years of experience must not be negative")
)

// Profile is the provider-facing extension of a user account.
// AverageRating and TotalReviews are derived from reviews and only written by RecomputeRating.
type Profile struct {
	UserID             string
	FullName           string
	Email              string
	Latitude           *float64
	Longitude          *float64
	BusinessName       *string
	Description        *string
	YearsOfExperience  int
	ServiceRadiusKm    int
	HourlyRate         *float64
	AverageRating      float64
	TotalReviews       int
	TotalJobsCompleted int
	UpdatedAt          time.Time
}

// UpdateRequest holds editable fields; nil fields are left alone.
type UpdateRequest struct {
	BusinessName      *string
	Description       *string
	YearsOfExperience *int
	ServiceRadiusKm   *int
	HourlyRate        *float64
}

// AverageRating is the mean of ratings rounded to 2 decimals, 0 when there are none.
func AverageRating(ratings []int) (float64, int) {
	if len(ratings) == 0 {
		return 0, 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	avg := float64(sum) / float64(len(ratings))
	return math.Round(avg*100) / 100, len(ratings)
}
