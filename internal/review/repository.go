package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/servicehub-backend/internal/db"
)

type Repository interface {
	// Create fails with ErrAlreadyReviewed when the booking already has a review.
	Create(ctx context.Context, r *Review) error
	GetByID(ctx context.Context, id string) (*Review, error)
	List(ctx context.Context, filter Filter) ([]*Review, int, error)
	IncrementHelpful(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var selectColumns = []string{
	"r.id", "r.booking_id", "r.customer_id", "c.full_name", "r.provider_id", "p.full_name", "r.service_id", "s.name",
	"r.rating", "r.quality_rating", "r.punctuality_rating", "r.communication_rating", "r.value_rating",
	"r.title", "r.comment", "r.is_verified", "r.is_featured", "r.helpful_count", "r.created_at", "r.updated_at",
}

func selectReviews(extra ...string) squirrel.SelectBuilder {
	cols := make([]string, 0, len(selectColumns)+len(extra))
	cols = append(cols, selectColumns...)
	cols = append(cols, extra...)
	return psql.Select(cols...).
		From("reviews r").
		Join("users c ON r.customer_id = c.id").
		Join("users p ON r.provider_id = p.id").
		Join("provider_services s ON r.service_id = s.id")
}

func scanTargets(r *Review) []any {
	return []any{
		&r.ID, &r.BookingID, &r.CustomerID, &r.CustomerName, &r.ProviderID, &r.ProviderName, &r.ServiceID, &r.ServiceName,
		&r.Rating, &r.QualityRating, &r.PunctualityRating, &r.CommunicationRating, &r.ValueRating,
		&r.Title, &r.Comment, &r.IsVerified, &r.IsFeatured, &r.HelpfulCount, &r.CreatedAt, &r.UpdatedAt,
	}
}

func (repo *pgxRepository) Create(ctx context.Context, r *Review) error {
	query, args, err := psql.Insert("reviews").
		Columns(
			"booking_id", "customer_id", "provider_id", "service_id",
			"rating", "quality_rating", "punctuality_rating", "communication_rating", "value_rating",
			"title", "comment", "is_verified",
		).
		Values(
			r.BookingID, r.CustomerID, r.ProviderID, r.ServiceID,
			r.Rating, r.QualityRating, r.PunctualityRating, r.CommunicationRating, r.ValueRating,
			r.Title, r.Comment, r.IsVerified,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create review query failed: %w", err)
	}

	if err := db.Conn(ctx, repo.pool).QueryRow(ctx, query, args...).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt); err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation {
			return ErrAlreadyReviewed
		}
		return fmt.Errorf("create review failed: %w", err)
	}
	return nil
}

func (repo *pgxRepository) GetByID(ctx context.Context, id string) (*Review, error) {
	query, args, err := selectReviews().Where(squirrel.Eq{"r.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get review query failed: %w", err)
	}

	var r Review
	if err := db.Conn(ctx, repo.pool).QueryRow(ctx, query, args...).Scan(scanTargets(&r)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get review failed: %w", err)
	}
	return &r, nil
}

func (repo *pgxRepository) List(ctx context.Context, filter Filter) ([]*Review, int, error) {
	q := selectReviews("count(*) OVER()").OrderBy("r.created_at DESC", "r.id")

	if filter.ProviderID != "" {
		q = q.Where(squirrel.Eq{"r.provider_id": filter.ProviderID})
	}
	if filter.CustomerID != "" {
		q = q.Where(squirrel.Eq{"r.customer_id": filter.CustomerID})
	}
	if filter.PageSize > 0 {
		q = q.Limit(uint64(filter.PageSize))
		if filter.Page > 1 {
			q = q.Offset(uint64((filter.Page - 1) * filter.PageSize))
		}
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list reviews query failed: %w", err)
	}

	rows, err := db.Conn(ctx, repo.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews failed: %w", err)
	}
	defer rows.Close()

	var (
		out   []*Review
		total int
	)
	for rows.Next() {
		var r Review
		if err := rows.Scan(append(scanTargets(&r), &total)...); err != nil {
			return nil, 0, fmt.Errorf("scan review failed: %w", err)
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate reviews failed: %w", err)
	}
	return out, total, nil
}

func (repo *pgxRepository) IncrementHelpful(ctx context.Context, id string) error {
	query, args, err := psql.Update("reviews").
		Set("helpful_count", squirrel.Expr("helpful_count + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build increment helpful query failed: %w", err)
	}

	ct, err := db.Conn(ctx, repo.pool).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("increment helpful failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
