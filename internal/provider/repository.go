package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/servicehub-backend/internal/db"
)

type Repository interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpsertProfile(ctx context.Context, p *Profile) error

	// RecomputeRating rescans every review of the provider and stores the aggregate.
	RecomputeRating(ctx context.Context, providerID string) (avg float64, count int, err error)
	IncrementJobsCompleted(ctx context.Context, providerID string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Profiles are created lazily; a provider without a row reads as defaults.
func (r *pgxRepository) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	query, args, err := psql.Select(
		"u.id", "u.full_name", "u.email", "u.latitude", "u.longitude",
		"p.business_name", "p.description",
		"COALESCE(p.years_of_experience, 0)", "COALESCE(p.service_radius_km, 10)",
		"p.hourly_rate", "COALESCE(p.average_rating, 0)", "COALESCE(p.total_reviews, 0)",
		"COALESCE(p.total_jobs_completed, 0)", "COALESCE(p.updated_at, u.created_at)",
	).
		From("users u").
		LeftJoin("provider_profiles p ON p.user_id = u.id").
		Where(squirrel.Eq{"u.id": userID, "u.role": "provider"}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get profile query failed: %w", err)
	}

	var p Profile
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(
		&p.UserID, &p.FullName, &p.Email, &p.Latitude, &p.Longitude,
		&p.BusinessName, &p.Description,
		&p.YearsOfExperience, &p.ServiceRadiusKm,
		&p.HourlyRate, &p.AverageRating, &p.TotalReviews,
		&p.TotalJobsCompleted, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile failed: %w", err)
	}
	return &p, nil
}

func (r *pgxRepository) UpsertProfile(ctx context.Context, p *Profile) error {
	query, args, err := psql.Insert("provider_profiles").
		Columns("user_id", "business_name", "description", "years_of_experience", "service_radius_km", "hourly_rate").
		Values(p.UserID, p.BusinessName, p.Description, p.YearsOfExperience, p.ServiceRadiusKm, p.HourlyRate).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			business_name = EXCLUDED.business_name,
			description = EXCLUDED.description,
			years_of_experience = EXCLUDED.years_of_experience,
			service_radius_km = EXCLUDED.service_radius_km,
			hourly_rate = EXCLUDED.hourly_rate,
			updated_at = now()
			RETURNING updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert profile query failed: %w", err)
	}

	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&p.UpdatedAt); err != nil {
		return fmt.Errorf("upsert profile failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) RecomputeRating(ctx context.Context, providerID string) (float64, int, error) {
	const query = `
		INSERT INTO provider_profiles (user_id, average_rating, total_reviews)
		SELECT $1, COALESCE(ROUND(AVG(rating)::numeric, 2), 0), COUNT(*)
		FROM reviews
		WHERE provider_id = $1
		ON CONFLICT (user_id) DO UPDATE SET
			average_rating = EXCLUDED.average_rating,
			total_reviews = EXCLUDED.total_reviews,
			updated_at = now()
		RETURNING average_rating, total_reviews
	`

	var (
		avg   float64
		count int
	)
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, providerID).Scan(&avg, &count); err != nil {
		return 0, 0, fmt.Errorf("recompute rating failed: %w", err)
	}
	return avg, count, nil
}

func (r *pgxRepository) IncrementJobsCompleted(ctx context.Context, providerID string) error {
	const query = `
		INSERT INTO provider_profiles (user_id, total_jobs_completed)
		VALUES ($1, 1)
		ON CONFLICT (user_id) DO UPDATE SET
			total_jobs_completed = provider_profiles.total_jobs_completed + 1,
			updated_at = now()
	`

	if _, err := db.Conn(ctx, r.pool).Exec(ctx, query, providerID); err != nil {
		return fmt.Errorf("increment jobs completed failed: %w", err)
	}
	return nil
}
