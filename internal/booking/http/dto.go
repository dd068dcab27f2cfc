package http

import (
	"time"

	"github.com/nekogravitycat/servicehub-backend/internal/booking"
	"github.com/nekogravitycat/servicehub-backend/internal/pkg/request"
)

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	Status    string `form:"status" binding:"omitempty,oneof=pending confirmed in_progress completed cancelled rejected"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=created_at booking_date status quoted_price"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

type PartyTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type BookingResponse struct {
	ID                  string     `json:"id"`
	Customer            PartyTag   `json:"customer"`
	Provider            PartyTag   `json:"provider"`
	Service             PartyTag   `json:"service"`
	BookingDate         time.Time  `json:"booking_date"`
	EstimatedDuration   *string    `json:"estimated_duration"`
	SpecialInstructions *string    `json:"special_instructions"`
	ServiceAddress      string     `json:"service_address"`
	ServiceLatitude     *float64   `json:"service_latitude"`
	ServiceLongitude    *float64   `json:"service_longitude"`
	DistanceKm          *float64   `json:"distance_km"`
	EstimatedTravelTime *string    `json:"estimated_travel_time"`
	Status              string     `json:"status"`
	QuotedPrice         float64    `json:"quoted_price"`
	FinalPrice          *float64   `json:"final_price"`
	PaymentStatus       string     `json:"payment_status"`
	ProviderNotes       *string    `json:"provider_notes"`
	RejectionReason     *string    `json:"rejection_reason"`
	CanBeReviewed       bool       `json:"can_be_reviewed"`
	IsActive            bool       `json:"is_active"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	ConfirmedAt         *time.Time `json:"confirmed_at"`
	CompletedAt         *time.Time `json:"completed_at"`
	CancelledAt         *time.Time `json:"cancelled_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:                  b.ID,
		Customer:            PartyTag{ID: b.CustomerID, Name: b.CustomerName},
		Provider:            PartyTag{ID: b.ProviderID, Name: b.ProviderName},
		Service:             PartyTag{ID: b.ServiceID, Name: b.ServiceName},
		BookingDate:         b.BookingDate,
		EstimatedDuration:   b.EstimatedDuration,
		SpecialInstructions: b.SpecialInstructions,
		ServiceAddress:      b.ServiceAddress,
		ServiceLatitude:     b.ServiceLatitude,
		ServiceLongitude:    b.ServiceLongitude,
		DistanceKm:          b.DistanceKm,
		EstimatedTravelTime: b.EstimatedTravelTime,
		Status:              string(b.Status),
		QuotedPrice:         b.QuotedPrice,
		FinalPrice:          b.FinalPrice,
		PaymentStatus:       string(b.PaymentStatus),
		ProviderNotes:       b.ProviderNotes,
		RejectionReason:     b.RejectionReason,
		CanBeReviewed:       b.CanBeReviewed(),
		IsActive:            b.IsActive(),
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
		ConfirmedAt:         b.ConfirmedAt,
		CompletedAt:         b.CompletedAt,
		CancelledAt:         b.CancelledAt,
	}
}

type CreateBookingRequest struct {
	ProviderID          string    `json:"provider_id" binding:"required,uuid"`
	ServiceID           string    `json:"service_id" binding:"required,uuid"`
	BookingDate         time.Time `json:"booking_date" binding:"required"`
	EstimatedDuration   *string   `json:"estimated_duration" binding:"omitempty,max=50"`
	SpecialInstructions *string   `json:"special_instructions" binding:"omitempty,max=2000"`
	ServiceAddress      string    `json:"service_address" binding:"required,max=500"`
	ServiceLatitude     *float64  `json:"service_latitude" binding:"omitempty,min=-90,max=90"`
	ServiceLongitude    *float64  `json:"service_longitude" binding:"omitempty,min=-180,max=180"`
	QuotedPrice         float64   `json:"quoted_price" binding:"required,gt=0"`
}

// Validate performs custom validation for CreateBookingRequest.
func (r *CreateBookingRequest) Validate() error {
	if (r.ServiceLatitude == nil) != (r.ServiceLongitude == nil) {
		return booking.ErrIncompleteCoords
	}
	return nil
}

type UpdateStatusRequest struct {
	Status          string   `json:"status" binding:"required,oneof=pending confirmed in_progress completed cancelled rejected"`
	ProviderNotes   *string  `json:"provider_notes" binding:"omitempty,max=2000"`
	RejectionReason *string  `json:"rejection_reason" binding:"omitempty,max=2000"`
	FinalPrice      *float64 `json:"final_price" binding:"omitempty,gt=0"`
}
