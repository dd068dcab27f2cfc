package provider

import (
	"context"
	"strings"

	"github.com/nekogravitycat/servicehub-backend/internal/auth"
	"github.com/nekogravitycat/servicehub-backend/internal/user"
)

type Service interface {
	GetProfile(ctx context.Context, providerID string) (*Profile, error)
	UpdateProfile(ctx context.Context, actor auth.Actor, req UpdateRequest) (*Profile, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetProfile(ctx context.Context, providerID string) (*Profile, error) {
	return s.repo.GetProfile(ctx, providerID)
}

func (s *service) UpdateProfile(ctx context.Context, actor auth.Actor, req UpdateRequest) (*Profile, error) {
	if actor.Role != user.RoleProvider {
		return nil, ErrNotProvider
	}

	p, err := s.repo.GetProfile(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	if req.BusinessName != nil {
		p.BusinessName = trimmed(*req.BusinessName)
	}
	if req.Description != nil {
		p.Description = trimmed(*req.Description)
	}
	if req.YearsOfExperience != nil {
		if *req.YearsOfExperience < 0 {
			return nil, ErrInvalidExperience
		}
		p.YearsOfExperience = *req.YearsOfExperience
	}
	if req.ServiceRadiusKm != nil {
		if *req.ServiceRadiusKm < 1 || *req.ServiceRadiusKm > 50 {
			return nil, ErrInvalidRadius
		}
		p.ServiceRadiusKm = *req.ServiceRadiusKm
	}
	if req.HourlyRate != nil {
		if *req.HourlyRate < 0 {
			return nil, ErrInvalidRate
		}
		p.HourlyRate = req.HourlyRate
	}

	if err := s.repo.UpsertProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// trimmed turns blank input into nil.
func trimmed(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
