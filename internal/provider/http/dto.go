package http

import (
	"github.com/nekogravitycat/servicehub-backend/internal/provider"
)

type ProfileResponse struct {
	UserID             string   `json:"user_id"`
	FullName           string   `json:"full_name"`
	BusinessName       *string  `json:"business_name"`
	Description        *string  `json:"description"`
	YearsOfExperience  int      `json:"years_of_experience"`
	ServiceRadiusKm    int      `json:"service_radius_km"`
	HourlyRate         *float64 `json:"hourly_rate"`
	AverageRating      float64  `json:"average_rating"`
	TotalReviews       int      `json:"total_reviews"`
	TotalJobsCompleted int      `json:"total_jobs_completed"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
}

func NewProfileResponse(p *provider.Profile) ProfileResponse {
	return ProfileResponse{
		UserID:             p.UserID,
		FullName:           p.FullName,
		BusinessName:       p.BusinessName,
		Description:        p.Description,
		YearsOfExperience:  p.YearsOfExperience,
		ServiceRadiusKm:    p.ServiceRadiusKm,
		HourlyRate:         p.HourlyRate,
		AverageRating:      p.AverageRating,
		TotalReviews:       p.TotalReviews,
		TotalJobsCompleted: p.TotalJobsCompleted,
		Latitude:           p.Latitude,
		Longitude:          p.Longitude,
	}
}

type UpdateProfileRequest struct {
	BusinessName      *string  `json:"business_name" binding:"omitempty,max=200"`
	Description       *string  `json:"description"`
	YearsOfExperience *int     `json:"years_of_experience" binding:"omitempty,min=0"`
	ServiceRadiusKm   *int     `json:"service_radius_km" binding:"omitempty,min=1,max=50"`
	HourlyRate        *float64 `json:"hourly_rate" binding:"omitempty,min=0"`
}
