// Package search ranks active services around an origin and splits them into
// nearby and distant tiers.
package search

import (
	"math"
	"sort"
	"strings"

	"github.com/nekogravitycat/servicehub-backend/internal/geo"
	"github.com/nekogravitycat/servicehub-backend/internal/pkg/apperror"
)

const (
	DefaultRadiusKm = 10.0
	MinRadiusKm     = 1.0
	MaxDistanceKm   = 50.0 // upper bound for the radius and for the distant tier

	SortDistance = "distance"
	SortRating   = "rating"
	SortPrice    = "price"
	SortReviews  = "reviews"
)

var (
	ErrInvalidRadius    = apperror.Validation("radius must be between 1 and 50 km")
	ErrInvalidSortKey   = apperror.Validation("sort_by must be one of distance, rating, price, reviews")
	ErrInvalidMinRating = apperror.Validation("min_rating must be between 0 and 5")
	ErrInvalidMaxPrice  = apperror.Validation("max_price must not be negative")
)

// Params is one search request. Zero Radius and empty SortBy take defaults.
type Params struct {
	Origin    geo.Point
	RadiusKm  float64
	Category  string
	MinRating *float64
	MaxPrice  *float64
	SortBy    string
}

// Normalize applies defaults, then Validate rejects anything out of range.
func (p *Params) Normalize() {
	if p.RadiusKm == 0 {
		p.RadiusKm = DefaultRadiusKm
	}
	if p.SortBy == "" {
		p.SortBy = SortDistance
	}
	p.Category = strings.TrimSpace(p.Category)
}

func (p *Params) Validate() error {
	if err := p.Origin.Validate(); err != nil {
		return err
	}
	if math.IsNaN(p.RadiusKm) || p.RadiusKm < MinRadiusKm || p.RadiusKm > MaxDistanceKm {
		return ErrInvalidRadius
	}
	switch p.SortBy {
	case SortDistance, SortRating, SortPrice, SortReviews:
	default:
		return ErrInvalidSortKey
	}
	if p.MinRating != nil && (*p.MinRating < 0 || *p.MinRating > 5) {
		return ErrInvalidMinRating
	}
	if p.MaxPrice != nil && *p.MaxPrice < 0 {
		return ErrInvalidMaxPrice
	}
	return nil
}

// Candidate is an active service joined with its provider's location and rating.
type Candidate struct {
	ServiceID         string
	ServiceName       string
	Description       string
	CategoryName      string
	BasePrice         float64
	PriceUnit         string
	EstimatedDuration *string
	ProviderID        string
	ProviderName      string
	ProviderLatitude  *float64
	ProviderLongitude *float64
	AverageRating     float64
	TotalReviews      int
}

// Match is a Candidate with its distance from the origin.
type Match struct {
	Candidate
	DistanceKm float64
	IsNearby   bool
}

// Result holds both tiers, each sorted by the requested key.
type Result struct {
	Nearby  []Match
	Distant []Match
	Params  Params
}

// Rank filters, measures and partitions candidates. Candidates without provider
// coordinates are skipped. Sorting is stable so ties keep the input order.
func Rank(p Params, candidates []Candidate) (*Result, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	res := &Result{
		Nearby:  []Match{},
		Distant: []Match{},
		Params:  p,
	}

	for _, c := range candidates {
		if !p.matches(c) {
			continue
		}

		d, err := geo.DistanceKm(&p.Origin.Lat, &p.Origin.Lng, c.ProviderLatitude, c.ProviderLongitude)
		if err != nil || d == nil {
			// Missing or corrupt provider coordinates: not searchable.
			continue
		}

		switch {
		case *d <= p.RadiusKm:
			res.Nearby = append(res.Nearby, Match{Candidate: c, DistanceKm: *d, IsNearby: true})
		case *d <= MaxDistanceKm:
			res.Distant = append(res.Distant, Match{Candidate: c, DistanceKm: *d})
		}
	}

	less := lessFunc(p.SortBy)
	sortMatches(res.Nearby, less)
	sortMatches(res.Distant, less)

	return res, nil
}

func (p *Params) matches(c Candidate) bool {
	if p.Category != "" && !strings.Contains(strings.ToLower(c.CategoryName), strings.ToLower(p.Category)) {
		return false
	}
	if p.MinRating != nil && c.AverageRating < *p.MinRating {
		return false
	}
	if p.MaxPrice != nil && c.BasePrice > *p.MaxPrice {
		return false
	}
	return true
}

func lessFunc(sortBy string) func(a, b *Match) bool {
	switch sortBy {
	case SortRating:
		return func(a, b *Match) bool { return a.AverageRating > b.AverageRating }
	case SortPrice:
		return func(a, b *Match) bool { return a.BasePrice < b.BasePrice }
	case SortReviews:
		return func(a, b *Match) bool { return a.TotalReviews > b.TotalReviews }
	default:
		return func(a, b *Match) bool { return a.DistanceKm < b.DistanceKm }
	}
}

func sortMatches(m []Match, less func(a, b *Match) bool) {
	sort.SliceStable(m, func(i, j int) bool { return less(&m[i], &m[j]) })
}
