package http

import (
	"time"

	"github.com/nekogravitycat/servicehub-backend/internal/pkg/request"
	"github.com/nekogravitycat/servicehub-backend/internal/review"
)

type CreateReviewRequest struct {
	Rating              int     `json:"rating" binding:"required,min=1,max=5"`
	QualityRating       int     `json:"quality_rating" binding:"required,min=1,max=5"`
	PunctualityRating   int     `json:"punctuality_rating" binding:"required,min=1,max=5"`
	CommunicationRating int     `json:"communication_rating" binding:"required,min=1,max=5"`
	ValueRating         int     `json:"value_rating" binding:"required,min=1,max=5"`
	Title               *string `json:"title" binding:"omitempty,max=200"`
	Comment             *string `json:"comment"`
}

type ListReviewsRequest struct {
	request.ListParams
}

type ReviewResponse struct {
	ID                  string    `json:"id"`
	BookingID           string    `json:"booking_id"`
	CustomerID          string    `json:"customer_id"`
	CustomerName        string    `json:"customer_name"`
	ProviderID          string    `json:"provider_id"`
	ProviderName        string    `json:"provider_name"`
	ServiceID           string    `json:"service_id"`
	ServiceName         string    `json:"service_name"`
	Rating              int       `json:"rating"`
	QualityRating       int       `json:"quality_rating"`
	PunctualityRating   int       `json:"punctuality_rating"`
	CommunicationRating int       `json:"communication_rating"`
	ValueRating         int       `json:"value_rating"`
	Title               *string   `json:"title"`
	Comment             *string   `json:"comment"`
	IsVerified          bool      `json:"is_verified"`
	IsFeatured          bool      `json:"is_featured"`
	HelpfulCount        int       `json:"helpful_count"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func NewReviewResponse(r *review.Review) ReviewResponse {
	return ReviewResponse{
		ID:                  r.ID,
		BookingID:           r.BookingID,
		CustomerID:          r.CustomerID,
		CustomerName:        r.CustomerName,
		ProviderID:          r.ProviderID,
		ProviderName:        r.ProviderName,
		ServiceID:           r.ServiceID,
		ServiceName:         r.ServiceName,
		Rating:              r.Rating,
		QualityRating:       r.QualityRating,
		PunctualityRating:   r.PunctualityRating,
		CommunicationRating: r.CommunicationRating,
		ValueRating:         r.ValueRating,
		Title:               r.Title,
		Comment:             r.Comment,
		IsVerified:          r.IsVerified,
		IsFeatured:          r.IsFeatured,
		HelpfulCount:        r.HelpfulCount,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

func newReviewResponses(rs []*review.Review) []ReviewResponse {
	items := make([]ReviewResponse, len(rs))
	for i, r := range rs {
		items[i] = NewReviewResponse(r)
	}
	return items
}
