package http

import (
	"time"

	"github.com/nekogravitycat/servicehub-backend/internal/catalog"
	"github.com/nekogravitycat/servicehub-backend/internal/file"
	"github.com/nekogravitycat/servicehub-backend/internal/pkg/request"
)

type CategoryResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
}

func NewCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Icon:        c.Icon,
	}
}

type ServiceResponse struct {
	ID                string    `json:"id"`
	ProviderID        string    `json:"provider_id"`
	ProviderName      string    `json:"provider_name"`
	CategoryID        string    `json:"category_id"`
	CategoryName      string    `json:"category_name"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	BasePrice         float64   `json:"base_price"`
	PriceUnit         string    `json:"price_unit"`
	EstimatedDuration *string   `json:"estimated_duration"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func NewServiceResponse(s *catalog.ProviderService) ServiceResponse {
	return ServiceResponse{
		ID:                s.ID,
		ProviderID:        s.ProviderID,
		ProviderName:      s.ProviderName,
		CategoryID:        s.CategoryID,
		CategoryName:      s.CategoryName,
		Name:              s.Name,
		Description:       s.Description,
		BasePrice:         s.BasePrice,
		PriceUnit:         s.PriceUnit,
		EstimatedDuration: s.EstimatedDuration,
		IsActive:          s.IsActive,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

type ImageResponse struct {
	ID           string    `json:"id"`
	ServiceID    string    `json:"service_id"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Caption      *string   `json:"caption"`
	IsPrimary    bool      `json:"is_primary"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

func NewImageResponse(img *catalog.Image) ImageResponse {
	return ImageResponse{
		ID:           img.ID,
		ServiceID:    img.ServiceID,
		URL:          file.FileURL(img.FileID),
		ThumbnailURL: file.ThumbnailURL(img.FileID),
		Caption:      img.Caption,
		IsPrimary:    img.IsPrimary,
		UploadedAt:   img.UploadedAt,
	}
}

type ListServicesRequest struct {
	request.ListParams
	ProviderID string `form:"provider_id" binding:"omitempty,uuid"`
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
}

type CreateServiceRequest struct {
	CategoryID        string  `json:"category_id" binding:"required,uuid"`
	Name              string  `json:"name" binding:"required,max=200"`
	Description       string  `json:"description" binding:"required"`
	BasePrice         float64 `json:"base_price" binding:"required,gt=0"`
	PriceUnit         string  `json:"price_unit" binding:"omitempty,oneof=hour job day"`
	EstimatedDuration *string `json:"estimated_duration" binding:"omitempty,max=50"`
}

type UpdateServiceRequest struct {
	CategoryID        *string  `json:"category_id" binding:"omitempty,uuid"`
	Name              *string  `json:"name" binding:"omitempty,max=200"`
	Description       *string  `json:"description"`
	BasePrice         *float64 `json:"base_price" binding:"omitempty,gt=0"`
	PriceUnit         *string  `json:"price_unit" binding:"omitempty,oneof=hour job day"`
	EstimatedDuration *string  `json:"estimated_duration" binding:"omitempty,max=50"`
	IsActive          *bool    `json:"is_active"`
}

// Validate rejects an update that changes nothing.
func (r *UpdateServiceRequest) Validate() error {
	if r.CategoryID == nil && r.Name == nil && r.Description == nil && r.BasePrice == nil &&
		r.PriceUnit == nil && r.EstimatedDuration == nil && r.IsActive == nil {
		return errNoFields
	}
	return nil
}

// UploadImageForm carries the non-file multipart fields.
type UploadImageForm struct {
	Caption   *string `form:"caption" binding:"omitempty,max=200"`
	IsPrimary bool    `form:"is_primary"`
}
