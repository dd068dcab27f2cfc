package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/servicehub-backend/internal/db"
)

// Repository loads search candidates.
type Repository interface {
	// Candidates returns active services of active providers that have coordinates,
	// ordered by service id. Filters in p are pushed down where possible.
	Candidates(ctx context.Context, p Params) ([]Candidate, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func (r *pgxRepository) Candidates(ctx context.Context, p Params) ([]Candidate, error) {
	qb := psql.Select(
		"s.id", "s.name", "s.description", "c.name", "s.base_price", "s.price_unit",
		"s.estimated_duration", "u.id", "u.full_name", "u.latitude", "u.longitude",
		"COALESCE(pp.average_rating, 0)", "COALESCE(pp.total_reviews, 0)",
	).
		From("provider_services s").
		Join("users u ON u.id = s.provider_id").
		Join("service_categories c ON c.id = s.category_id").
		LeftJoin("provider_profiles pp ON pp.user_id = u.id").
		Where(squirrel.Eq{"s.is_active": true, "u.is_active": true}).
		Where(squirrel.NotEq{"u.latitude": nil, "u.longitude": nil}).
		OrderBy("s.id")

	if p.Category != "" {
		qb = qb.Where(squirrel.ILike{"c.name": "%" + escapeLike(p.Category) + "%"})
	}
	if p.MinRating != nil {
		qb = qb.Where(squirrel.GtOrEq{"COALESCE(pp.average_rating, 0)": *p.MinRating})
	}
	if p.MaxPrice != nil {
		qb = qb.Where(squirrel.LtOrEq{"s.base_price": *p.MaxPrice})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build search candidates query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search candidates query failed: %w", err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(
			&c.ServiceID, &c.ServiceName, &c.Description, &c.CategoryName, &c.BasePrice, &c.PriceUnit,
			&c.EstimatedDuration, &c.ProviderID, &c.ProviderName, &c.ProviderLatitude, &c.ProviderLongitude,
			&c.AverageRating, &c.TotalReviews,
		); err != nil {
			return nil, fmt.Errorf("scan search candidate failed: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
