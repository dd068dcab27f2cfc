package catalog

import (
	"time"

	"github.com/nekogravitycat/servicehub-backend/internal/pkg/apperror"
)

const (
	PriceUnitHour = "hour"
	PriceUnitJob  = "job"
	PriceUnitDay  = "day"
)

var (
	ErrCategoryNotFound = apperror.NotFound("category not found")
	ErrServiceNotFound  = apperror.NotFound("service not found")
	ErrImageNotFound    = apperror.NotFound("image not found")
	ErrNotProvider      = apperror.Forbidden("only providers can manage services")
	ErrNotOwner         = apperror.Forbidden("service belongs to another provider")
	ErrEmptyName        = apperror.Validation("name is required")
	ErrInvalidPrice     = apperror.Validation("base price must be greater than zero")
	ErrInvalidPriceUnit = apperror.Validation("price unit must be hour, job or day")
	ErrInactiveCategory = apperror.Validation("category is not active")
)

// Category groups services, e.g. "Plumbing".
type Category struct {
	ID          string
	Name        string
	Description *string
	Icon        *string
	IsActive    bool
	CreatedAt   time.Time
}

// ProviderService is a listing a provider offers at a base price.
type ProviderService struct {
	ID                string
	ProviderID        string
	ProviderName      string
	CategoryID        string
	CategoryName      string
	Name              string
	Description       string
	BasePrice         float64
	PriceUnit         string
	EstimatedDuration *string
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Image attaches an uploaded file to a service. A service has at most one primary image.
type Image struct {
	ID         string
	ServiceID  string
	FileID     string
	Caption    *string
	IsPrimary  bool
	UploadedAt time.Time
}

type ServiceFilter struct {
	ProviderID string
	CategoryID string
	ActiveOnly bool
	Page       int
	PageSize   int
}

func validPriceUnit(u string) bool {
	switch u {
	case PriceUnitHour, PriceUnitJob, PriceUnitDay:
		return true
	}
	return false
}
