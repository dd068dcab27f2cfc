package dashboard

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/servicehub-backend/internal/db"
)

type Repository interface {
	// BookingTotals counts bookings where column ("customer_id" or "provider_id") equals userID.
	BookingTotals(ctx context.Context, column, userID string) (BookingTotals, error)
	ActiveServices(ctx context.Context, providerID string) (int, error)
	// ReviewSummary is the live mean and count over the provider's reviews.
	ReviewSummary(ctx context.Context, providerID string) (float64, int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func (r *pgxRepository) BookingTotals(ctx context.Context, column, userID string) (BookingTotals, error) {
	var t BookingTotals
	if column != "customer_id" && column != "provider_id" {
		return t, fmt.Errorf("unsupported booking party column %q", column)
	}

	query, args, err := psql.Select(
		"count(*)",
		"count(*) FILTER (WHERE status = 'pending')",
		"count(*) FILTER (WHERE status = 'confirmed')",
		"count(*) FILTER (WHERE status = 'in_progress')",
		"count(*) FILTER (WHERE status = 'completed')",
		"count(*) FILTER (WHERE status = 'cancelled')",
		"count(*) FILTER (WHERE status = 'rejected')",
		"COALESCE(sum(quoted_price) FILTER (WHERE status = 'completed' AND payment_status = 'paid'), 0)",
	).
		From("service_bookings").
		Where(squirrel.Eq{column: userID}).
		ToSql()
	if err != nil {
		return t, fmt.Errorf("build booking totals query failed: %w", err)
	}

	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(
		&t.Total, &t.Pending, &t.Confirmed, &t.InProgress,
		&t.Completed, &t.Cancelled, &t.Rejected, &t.Revenue,
	); err != nil {
		return t, fmt.Errorf("booking totals failed: %w", err)
	}
	return t, nil
}

func (r *pgxRepository) ActiveServices(ctx context.Context, providerID string) (int, error) {
	query, args, err := psql.Select("count(*)").
		From("provider_services").
		Where(squirrel.Eq{"provider_id": providerID, "is_active": true}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build active services query failed: %w", err)
	}

	var n int
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count active services failed: %w", err)
	}
	return n, nil
}

func (r *pgxRepository) ReviewSummary(ctx context.Context, providerID string) (float64, int, error) {
	query, args, err := psql.Select("COALESCE(round(avg(rating)::numeric, 2), 0)::float8", "count(*)").
		From("reviews").
		Where(squirrel.Eq{"provider_id": providerID}).
		ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("build review summary query failed: %w", err)
	}

	var (
		avg   float64
		count int
	)
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&avg, &count); err != nil {
		return 0, 0, fmt.Errorf("review summary failed: %w", err)
	}
	return avg, count, nil
}
