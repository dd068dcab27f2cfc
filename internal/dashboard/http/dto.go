package http

import (
	"time"

	"github.com/nekogravitycat/servicehub-backend/internal/dashboard"
)

type ActivityResponse struct {
	Type    string    `json:"type"`
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
	Status  string    `json:"status,omitempty"`
	Rating  int       `json:"rating,omitempty"`
}

type CustomerStatsResponse struct {
	TotalBookings       int                `json:"total_bookings"`
	ActiveBookings      int                `json:"active_bookings"`
	CompletedBookings   int                `json:"completed_bookings"`
	TotalSpent          float64            `json:"total_spent"`
	UnreadNotifications int                `json:"unread_notifications"`
	RecentActivity      []ActivityResponse `json:"recent_activity"`
}

type ProviderStatsResponse struct {
	TotalServices       int                `json:"total_services"`
	PendingRequests     int                `json:"pending_requests"`
	TotalEarnings       float64            `json:"total_earnings"`
	AverageRating       float64            `json:"average_rating"`
	TotalReviews        int                `json:"total_reviews"`
	UnreadNotifications int                `json:"unread_notifications"`
	RecentActivity      []ActivityResponse `json:"recent_activity"`
}

type BookingStatsResponse struct {
	TotalBookings     int     `json:"total_bookings"`
	PendingBookings   int     `json:"pending_bookings"`
	ConfirmedBookings int     `json:"confirmed_bookings"`
	CompletedBookings int     `json:"completed_bookings"`
	CancelledBookings int     `json:"cancelled_bookings"`
	TotalRevenue      float64 `json:"total_revenue"`
	AverageRating     float64 `json:"average_rating"`
}

func newActivity(as []dashboard.Activity) []ActivityResponse {
	out := make([]ActivityResponse, len(as))
	for i, a := range as {
		out[i] = ActivityResponse{Type: a.Type, Message: a.Message, Date: a.Date, Status: a.Status, Rating: a.Rating}
	}
	return out
}

// NewStatsResponse renders whichever side of the dashboard is set.
func NewStatsResponse(s *dashboard.Stats) any {
	if s.Provider != nil {
		p := s.Provider
		return ProviderStatsResponse{
			TotalServices:       p.TotalServices,
			PendingRequests:     p.PendingRequests,
			TotalEarnings:       p.TotalEarnings,
			AverageRating:       p.AverageRating,
			TotalReviews:        p.TotalReviews,
			UnreadNotifications: p.UnreadNotifications,
			RecentActivity:      newActivity(p.RecentActivity),
		}
	}
	c := s.Customer
	return CustomerStatsResponse{
		TotalBookings:       c.TotalBookings,
		ActiveBookings:      c.ActiveBookings,
		CompletedBookings:   c.CompletedBookings,
		TotalSpent:          c.TotalSpent,
		UnreadNotifications: c.UnreadNotifications,
		RecentActivity:      newActivity(c.RecentActivity),
	}
}

func NewBookingStatsResponse(s *dashboard.BookingStats) BookingStatsResponse {
	return BookingStatsResponse{
		TotalBookings:     s.TotalBookings,
		PendingBookings:   s.PendingBookings,
		ConfirmedBookings: s.ConfirmedBookings,
		CompletedBookings: s.CompletedBookings,
		CancelledBookings: s.CancelledBookings,
		TotalRevenue:      s.TotalRevenue,
		AverageRating:     s.AverageRating,
	}
}
