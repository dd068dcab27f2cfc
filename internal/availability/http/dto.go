package http

import (
	"time"

	"github.com/nekogravitycat/servicehub-backend/internal/availability"
)

type CreateSlotRequest struct {
	DayOfWeek          *int   `json:"day_of_week" binding:"required,min=0,max=6"`
	StartTime          string `json:"start_time" binding:"required"`
	EndTime            string `json:"end_time" binding:"required"`
	IsAvailable        *bool  `json:"is_available"`
	MaxBookingsPerSlot *int   `json:"max_bookings_per_slot" binding:"omitempty,min=1"`
}

type UpdateSlotRequest struct {
	DayOfWeek          *int    `json:"day_of_week" binding:"omitempty,min=0,max=6"`
	StartTime          *string `json:"start_time"`
	EndTime            *string `json:"end_time"`
	IsAvailable        *bool   `json:"is_available"`
	MaxBookingsPerSlot *int    `json:"max_bookings_per_slot" binding:"omitempty,min=1"`
}

type SlotResponse struct {
	ID                 string    `json:"id"`
	ProviderID         string    `json:"provider_id"`
	DayOfWeek          int       `json:"day_of_week"`
	DayName            string    `json:"day_name"`
	StartTime          string    `json:"start_time"`
	EndTime            string    `json:"end_time"`
	IsAvailable        bool      `json:"is_available"`
	MaxBookingsPerSlot int       `json:"max_bookings_per_slot"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func NewSlotResponse(s *availability.Slot) SlotResponse {
	return SlotResponse{
		ID:                 s.ID,
		ProviderID:         s.ProviderID,
		DayOfWeek:          s.DayOfWeek,
		DayName:            s.DayName(),
		StartTime:          s.StartTime,
		EndTime:            s.EndTime,
		IsAvailable:        s.IsAvailable,
		MaxBookingsPerSlot: s.MaxBookingsPerSlot,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}
