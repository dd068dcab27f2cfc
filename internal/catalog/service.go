package catalog

import (
	"context"
	"strings"

	"github.com/nekogravitycat/servicehub-backend/internal/auth"
	"github.com/nekogravitycat/servicehub-backend/internal/db"
	"github.com/nekogravitycat/servicehub-backend/internal/user"
)

type CreateServiceRequest struct {
	CategoryID        string
	Name              string
	Description       string
	BasePrice         float64
	PriceUnit         string
	EstimatedDuration *string
}

// UpdateServiceRequest holds optional changes; nil fields are left alone.
type UpdateServiceRequest struct {
	CategoryID        *string
	Name              *string
	Description       *string
	BasePrice         *float64
	PriceUnit         *string
	EstimatedDuration *string
	IsActive          *bool
}

type AddImageRequest struct {
	ServiceID string
	FileID    string
	Caption   *string
	IsPrimary bool
}

type Service interface {
	ListCategories(ctx context.Context) ([]*Category, error)

	CreateService(ctx context.Context, actor auth.Actor, req CreateServiceRequest) (*ProviderService, error)
	GetService(ctx context.Context, id string) (*ProviderService, error)
	ListServices(ctx context.Context, filter ServiceFilter) ([]*ProviderService, int, error)
	UpdateService(ctx context.Context, actor auth.Actor, id string, req UpdateServiceRequest) (*ProviderService, error)

	// CheckOwner returns the service when actor is the provider who owns it.
	CheckOwner(ctx context.Context, actor auth.Actor, serviceID string) (*ProviderService, error)
	AddImage(ctx context.Context, actor auth.Actor, req AddImageRequest) (*Image, error)
	ListImages(ctx context.Context, serviceID string) ([]*Image, error)
}

type service struct {
	repo Repository
	tx   db.TxManager
}

func NewService(repo Repository, tx db.TxManager) Service {
	return &service{repo: repo, tx: tx}
}

func (s *service) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.repo.ListCategories(ctx, true)
}

func (s *service) CreateService(ctx context.Context, actor auth.Actor, req CreateServiceRequest) (*ProviderService, error) {
	if actor.Role != user.RoleProvider {
		return nil, ErrNotProvider
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if req.BasePrice <= 0 {
		return nil, ErrInvalidPrice
	}
	if req.PriceUnit == "" {
		req.PriceUnit = PriceUnitHour
	}
	if !validPriceUnit(req.PriceUnit) {
		return nil, ErrInvalidPriceUnit
	}

	cat, err := s.repo.GetCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if !cat.IsActive {
		return nil, ErrInactiveCategory
	}

	svc := &ProviderService{
		ProviderID:        actor.ID,
		CategoryID:        cat.ID,
		CategoryName:      cat.Name,
		Name:              name,
		Description:       strings.TrimSpace(req.Description),
		BasePrice:         req.BasePrice,
		PriceUnit:         req.PriceUnit,
		EstimatedDuration: req.EstimatedDuration,
		IsActive:          true,
	}
	if err := s.repo.CreateService(ctx, svc); err != nil {
		return nil, err
	}

	// Reload for the denormalised provider name.
	return s.repo.GetService(ctx, svc.ID)
}

func (s *service) GetService(ctx context.Context, id string) (*ProviderService, error) {
	return s.repo.GetService(ctx, id)
}

func (s *service) ListServices(ctx context.Context, filter ServiceFilter) ([]*ProviderService, int, error) {
	return s.repo.ListServices(ctx, filter)
}

func (s *service) CheckOwner(ctx context.Context, actor auth.Actor, serviceID string) (*ProviderService, error) {
	if actor.Role != user.RoleProvider {
		return nil, ErrNotProvider
	}

	svc, err := s.repo.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if svc.ProviderID != actor.ID {
		return nil, ErrNotOwner
	}
	return svc, nil
}

func (s *service) UpdateService(ctx context.Context, actor auth.Actor, id string, req UpdateServiceRequest) (*ProviderService, error) {
	svc, err := s.CheckOwner(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrEmptyName
		}
		svc.Name = name
	}
	if req.Description != nil {
		svc.Description = strings.TrimSpace(*req.Description)
	}
	if req.BasePrice != nil {
		if *req.BasePrice <= 0 {
			return nil, ErrInvalidPrice
		}
		svc.BasePrice = *req.BasePrice
	}
	if req.PriceUnit != nil {
		if !validPriceUnit(*req.PriceUnit) {
			return nil, ErrInvalidPriceUnit
		}
		svc.PriceUnit = *req.PriceUnit
	}
	if req.EstimatedDuration != nil {
		svc.EstimatedDuration = req.EstimatedDuration
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}
	if req.CategoryID != nil && *req.CategoryID != svc.CategoryID {
		cat, err := s.repo.GetCategory(ctx, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		if !cat.IsActive {
			return nil, ErrInactiveCategory
		}
		svc.CategoryID = cat.ID
		svc.CategoryName = cat.Name
	}

	if err := s.repo.UpdateService(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *service) AddImage(ctx context.Context, actor auth.Actor, req AddImageRequest) (*Image, error) {
	if _, err := s.CheckOwner(ctx, actor, req.ServiceID); err != nil {
		return nil, err
	}

	img := &Image{
		ServiceID: req.ServiceID,
		FileID:    req.FileID,
		Caption:   req.Caption,
		IsPrimary: req.IsPrimary,
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if img.IsPrimary {
			if err := s.repo.ClearPrimaryImage(ctx, img.ServiceID); err != nil {
				return err
			}
		}
		return s.repo.CreateImage(ctx, img)
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (s *service) ListImages(ctx context.Context, serviceID string) ([]*Image, error) {
	if _, err := s.repo.GetService(ctx, serviceID); err != nil {
		return nil, err
	}
	return s.repo.ListImages(ctx, serviceID)
}
