package search

import (
	"context"
)

type Service interface {
	Search(ctx context.Context, p Params) (*Result, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Search validates before touching the database.
func (s *service) Search(ctx context.Context, p Params) (*Result, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	candidates, err := s.repo.Candidates(ctx, p)
	if err != nil {
		return nil, err
	}
	return Rank(p, candidates)
}
