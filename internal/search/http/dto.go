package http

import (
	"github.com/nekogravitycat/servicehub-backend/internal/geo"
	"github.com/nekogravitycat/servicehub-backend/internal/search"
)

type SearchRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Radius    float64  `json:"radius"`
	Category  string   `json:"category" binding:"max=100"`
	MinRating *float64 `json:"min_rating"`
	MaxPrice  *float64 `json:"max_price"`
	SortBy    string   `json:"sort_by"`
}

func (r *SearchRequest) Params() search.Params {
	return search.Params{
		Origin:    geo.Point{Lat: *r.Latitude, Lng: *r.Longitude},
		RadiusKm:  r.Radius,
		Category:  r.Category,
		MinRating: r.MinRating,
		MaxPrice:  r.MaxPrice,
		SortBy:    r.SortBy,
	}
}

type ProviderBrief struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
}

type ServiceWithDistance struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Description       string        `json:"description"`
	CategoryName      string        `json:"category_name"`
	BasePrice         float64       `json:"base_price"`
	PriceUnit         string        `json:"price_unit"`
	EstimatedDuration *string       `json:"estimated_duration"`
	Provider          ProviderBrief `json:"provider"`
	DistanceKm        float64       `json:"distance_km"`
	IsNearby          bool          `json:"is_nearby"`
}

func newServiceWithDistance(m search.Match) ServiceWithDistance {
	return ServiceWithDistance{
		ID:                m.ServiceID,
		Name:              m.ServiceName,
		Description:       m.Description,
		CategoryName:      m.CategoryName,
		BasePrice:         m.BasePrice,
		PriceUnit:         m.PriceUnit,
		EstimatedDuration: m.EstimatedDuration,
		Provider: ProviderBrief{
			ID:            m.ProviderID,
			Name:          m.ProviderName,
			AverageRating: m.AverageRating,
			TotalReviews:  m.TotalReviews,
		},
		DistanceKm: m.DistanceKm,
		IsNearby:   m.IsNearby,
	}
}

type SearchParamsEcho struct {
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	Radius       float64  `json:"radius"`
	Category     string   `json:"category,omitempty"`
	MinRating    *float64 `json:"min_rating,omitempty"`
	MaxPrice     *float64 `json:"max_price,omitempty"`
	SortBy       string   `json:"sort_by"`
	TotalNearby  int      `json:"total_nearby"`
	TotalDistant int      `json:"total_distant"`
}

type SearchResponse struct {
	NearbyServices  []ServiceWithDistance `json:"nearby_services"`
	DistantServices []ServiceWithDistance `json:"distant_services"`
	SearchParams    SearchParamsEcho      `json:"search_params"`
}

func NewSearchResponse(res *search.Result) SearchResponse {
	nearby := make([]ServiceWithDistance, len(res.Nearby))
	for i, m := range res.Nearby {
		nearby[i] = newServiceWithDistance(m)
	}
	distant := make([]ServiceWithDistance, len(res.Distant))
	for i, m := range res.Distant {
		distant[i] = newServiceWithDistance(m)
	}

	p := res.Params
	return SearchResponse{
		NearbyServices:  nearby,
		DistantServices: distant,
		SearchParams: SearchParamsEcho{
			Latitude:     p.Origin.Lat,
			Longitude:    p.Origin.Lng,
			Radius:       p.RadiusKm,
			Category:     p.Category,
			MinRating:    p.MinRating,
			MaxPrice:     p.MaxPrice,
			SortBy:       p.SortBy,
			TotalNearby:  len(nearby),
			TotalDistant: len(distant),
		},
	}
}
