package dashboard

import (
	"time"

	"github.com/nekogravitycat/servicehub-backend/internal/pkg/apperror"
)

var (
	ErrNotProvider = apperror.Forbidden("only providers can view booking statistics")
	ErrUnknownRole = apperror.Forbidden("dashboard is only available to customers and providers")
)

const (
	recentBookings = 5
	recentReviews  = 3
	maxActivity    = 10
)

// BookingTotals aggregates one party's bookings. Revenue is the quoted price of completed, paid bookings.
type BookingTotals struct {
	Total      int
	Pending    int
	Confirmed  int
	InProgress int
	Completed  int
	Cancelled  int
	Rejected   int
	Revenue    float64
}

func (t BookingTotals) Active() int {
	return t.Pending + t.Confirmed + t.InProgress
}

type Activity struct {
	Type    string
	Message string
	Date    time.Time
	Status  string
	Rating  int
}

type CustomerStats struct {
	TotalBookings       int
	ActiveBookings      int
	CompletedBookings   int
	TotalSpent          float64
	UnreadNotifications int
	RecentActivity      []Activity
}

type ProviderStats struct {
	TotalServices       int
	PendingRequests     int
	TotalEarnings       float64
	AverageRating       float64
	TotalReviews        int
	UnreadNotifications int
	RecentActivity      []Activity
}

// Stats holds exactly one of Customer or Provider.
type Stats struct {
	Customer *CustomerStats
	Provider *ProviderStats
}

type BookingStats struct {
	TotalBookings     int
	PendingBookings   int
	ConfirmedBookings int
	CompletedBookings int
	CancelledBookings int
	TotalRevenue      float64
	AverageRating     float64
}
