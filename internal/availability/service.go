package availability

import (
	"context"

	"github.com/nekogravitycat/servicehub-backend/internal/auth"
	"github.com/nekogravitycat/servicehub-backend/internal/user"
)

type CreateRequest struct {
	DayOfWeek          int
	StartTime          string
	EndTime            string
	IsAvailable        *bool
	MaxBookingsPerSlot *int
}

type UpdateRequest struct {
	DayOfWeek          *int
	StartTime          *string
	EndTime            *string
	IsAvailable        *bool
	MaxBookingsPerSlot *int
}

// Service manages a provider's own weekly windows. Slots of other providers read as not found.
type Service interface {
	List(ctx context.Context, actor auth.Actor) ([]*Slot, error)
	Create(ctx context.Context, actor auth.Actor, req CreateRequest) (*Slot, error)
	Update(ctx context.Context, actor auth.Actor, id string, req UpdateRequest) (*Slot, error)
	Delete(ctx context.Context, actor auth.Actor, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, actor auth.Actor) ([]*Slot, error) {
	if actor.Role != user.RoleProvider {
		return nil, ErrNotProvider
	}
	return s.repo.ListByProvider(ctx, actor.ID)
}

func (s *service) Create(ctx context.Context, actor auth.Actor, req CreateRequest) (*Slot, error) {
	if actor.Role != user.RoleProvider {
		return nil, ErrNotProvider
	}

	slot := &Slot{
		ProviderID:         actor.ID,
		DayOfWeek:          req.DayOfWeek,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		IsAvailable:        true,
		MaxBookingsPerSlot: 1,
	}
	if req.IsAvailable != nil {
		slot.IsAvailable = *req.IsAvailable
	}
	if req.MaxBookingsPerSlot != nil {
		slot.MaxBookingsPerSlot = *req.MaxBookingsPerSlot
	}
	if err := slot.validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *service) owned(ctx context.Context, actor auth.Actor, id string) (*Slot, error) {
	if actor.Role != user.RoleProvider {
		return nil, ErrNotProvider
	}
	slot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if slot.ProviderID != actor.ID {
		return nil, ErrNotFound
	}
	return slot, nil
}

func (s *service) Update(ctx context.Context, actor auth.Actor, id string, req UpdateRequest) (*Slot, error) {
	slot, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.DayOfWeek != nil {
		slot.DayOfWeek = *req.DayOfWeek
	}
	if req.StartTime != nil {
		slot.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		slot.EndTime = *req.EndTime
	}
	if req.IsAvailable != nil {
		slot.IsAvailable = *req.IsAvailable
	}
	if req.MaxBookingsPerSlot != nil {
		slot.MaxBookingsPerSlot = *req.MaxBookingsPerSlot
	}
	if err := slot.validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *service) Delete(ctx context.Context, actor auth.Actor, id string) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
