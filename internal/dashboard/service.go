package dashboard

import (
	"context"
	"fmt"
	"sort"

	"github.com/nekogravitycat/servicehub-backend/internal/auth"
	"github.com/nekogravitycat/servicehub-backend/internal/booking"
	"github.com/nekogravitycat/servicehub-backend/internal/review"
	"github.com/nekogravitycat/servicehub-backend/internal/user"
)

type Service interface {
	Stats(ctx context.Context, actor auth.Actor) (*Stats, error)
	BookingStats(ctx context.Context, actor auth.Actor) (*BookingStats, error)
}

type BookingLister interface {
	List(ctx context.Context, filter booking.Filter) ([]*booking.Booking, int, error)
}

type ReviewLister interface {
	List(ctx context.Context, filter review.Filter) ([]*review.Review, int, error)
}

type UnreadCounter interface {
	UnreadCount(ctx context.Context, userID string) (int, error)
}

type service struct {
	repo     Repository
	bookings BookingLister
	reviews  ReviewLister
	unread   UnreadCounter
}

func NewService(repo Repository, bookings BookingLister, reviews ReviewLister, unread UnreadCounter) Service {
	return &service{
		repo:     repo,
		bookings: bookings,
		reviews:  reviews,
		unread:   unread,
	}
}

func (s *service) Stats(ctx context.Context, actor auth.Actor) (*Stats, error) {
	switch actor.Role {
	case user.RoleCustomer:
		st, err := s.customerStats(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		return &Stats{Customer: st}, nil
	case user.RoleProvider:
		st, err := s.providerStats(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		return &Stats{Provider: st}, nil
	default:
		return nil, ErrUnknownRole
	}
}

func (s *service) customerStats(ctx context.Context, userID string) (*CustomerStats, error) {
	totals, err := s.repo.BookingTotals(ctx, "customer_id", userID)
	if err != nil {
		return nil, err
	}
	unread, err := s.unread.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	activity, err := s.recentActivity(ctx, user.RoleCustomer, userID)
	if err != nil {
		return nil, err
	}

	return &CustomerStats{
		TotalBookings:       totals.Total,
		ActiveBookings:      totals.Active(),
		CompletedBookings:   totals.Completed,
		TotalSpent:          totals.Revenue,
		UnreadNotifications: unread,
		RecentActivity:      activity,
	}, nil
}

func (s *service) providerStats(ctx context.Context, userID string) (*ProviderStats, error) {
	totals, err := s.repo.BookingTotals(ctx, "provider_id", userID)
	if err != nil {
		return nil, err
	}
	services, err := s.repo.ActiveServices(ctx, userID)
	if err != nil {
		return nil, err
	}
	avg, count, err := s.repo.ReviewSummary(ctx, userID)
	if err != nil {
		return nil, err
	}
	unread, err := s.unread.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	activity, err := s.recentActivity(ctx, user.RoleProvider, userID)
	if err != nil {
		return nil, err
	}

	return &ProviderStats{
		TotalServices:       services,
		PendingRequests:     totals.Pending,
		TotalEarnings:       totals.Revenue,
		AverageRating:       avg,
		TotalReviews:        count,
		UnreadNotifications: unread,
		RecentActivity:      activity,
	}, nil
}

// recentActivity merges the latest bookings and reviews, newest first.
func (s *service) recentActivity(ctx context.Context, role, userID string) ([]Activity, error) {
	bf := booking.Filter{Page: 1, PageSize: recentBookings, SortBy: "created_at", SortOrder: "DESC"}
	rf := review.Filter{Page: 1, PageSize: recentReviews}
	if role == user.RoleProvider {
		bf.ProviderID, rf.ProviderID = userID, userID
	} else {
		bf.CustomerID, rf.CustomerID = userID, userID
	}

	bookings, _, err := s.bookings.List(ctx, bf)
	if err != nil {
		return nil, err
	}
	reviews, _, err := s.reviews.List(ctx, rf)
	if err != nil {
		return nil, err
	}

	out := make([]Activity, 0, len(bookings)+len(reviews))
	for _, b := range bookings {
		a := Activity{Date: b.CreatedAt, Status: string(b.Status)}
		if role == user.RoleProvider {
			a.Type = "booking_request"
			a.Message = fmt.Sprintf("Booking request from %s", b.CustomerName)
		} else {
			a.Type = "booking"
			a.Message = fmt.Sprintf("Booked %s with %s", b.ServiceName, b.ProviderName)
		}
		out = append(out, a)
	}
	for _, r := range reviews {
		a := Activity{Date: r.CreatedAt, Rating: r.Rating}
		if role == user.RoleProvider {
			a.Type = "review_received"
			a.Message = fmt.Sprintf("Received %d-star review from %s", r.Rating, r.CustomerName)
		} else {
			a.Type = "review_given"
			a.Message = fmt.Sprintf("Reviewed %s - %d stars", r.ProviderName, r.Rating)
		}
		out = append(out, a)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > maxActivity {
		out = out[:maxActivity]
	}
	return out, nil
}

func (s *service) BookingStats(ctx context.Context, actor auth.Actor) (*BookingStats, error) {
	if actor.Role != user.RoleProvider {
		return nil, ErrNotProvider
	}

	totals, err := s.repo.BookingTotals(ctx, "provider_id", actor.ID)
	if err != nil {
		return nil, err
	}
	avg, _, err := s.repo.ReviewSummary(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	return &BookingStats{
		TotalBookings:     totals.Total,
		PendingBookings:   totals.Pending,
		ConfirmedBookings: totals.Confirmed,
		CompletedBookings: totals.Completed,
		CancelledBookings: totals.Cancelled,
		TotalRevenue:      totals.Revenue,
		AverageRating:     avg,
	}, nil
}
