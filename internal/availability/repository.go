package availability

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
	Create(ctx context.Context, s *Slot) error
	GetByID(ctx context.Context, id string) (*Slot, error)
	ListByProvider(ctx context.Context, providerID string) ([]*Slot, error)
	Update(ctx context.Context, s *Slot) error
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var columns = []string{
	"id", "provider_id", "day_of_week",
	"to_char(start_time, 'HH24:MI:SS')", "to_char(end_time, 'HH24:MI:SS')",
	"is_available", "max_bookings_per_slot", "created_at", "updated_at",
}

func scanTargets(s *Slot) []any {
	return []any{
		&s.ID, &s.ProviderID, &s.DayOfWeek, &s.StartTime, &s.EndTime,
		&s.IsAvailable, &s.MaxBookingsPerSlot, &s.CreatedAt, &s.UpdatedAt,
	}
}

func isUniqueViolation(err error) bool {
	var e *pgconn.PgError
	return errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation
}

func (r *pgxRepository) Create(ctx context.Context, s *Slot) error {
	query, args, err := psql.Insert("provider_availability").
		Columns("provider_id", "day_of_week", "start_time", "end_time", "is_available", "max_bookings_per_slot").
		Values(
			s.ProviderID, s.DayOfWeek,
			squirrel.Expr("?::time", s.StartTime), squirrel.Expr("?::time", s.EndTime),
			s.IsAvailable, s.MaxBookingsPerSlot,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create slot query failed: %w", err)
	}

	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlot
		}
		return fmt.Errorf("create slot failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Slot, error) {
	query, args, err := psql.Select(columns...).
		From("provider_availability").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get slot query failed: %w", err)
	}

	var s Slot
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(scanTargets(&s)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get slot failed: %w", err)
	}
	return &s, nil
}

func (r *pgxRepository) ListByProvider(ctx context.Context, providerID string) ([]*Slot, error) {
	query, args, err := psql.Select(columns...).
		From("provider_availability").
		Where(squirrel.Eq{"provider_id": providerID}).
		OrderBy("day_of_week", "start_time").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list slots query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list slots failed: %w", err)
	}
	defer rows.Close()

	out := []*Slot{}
	for rows.Next() {
		var s Slot
		if err := rows.Scan(scanTargets(&s)...); err != nil {
			return nil, fmt.Errorf("scan slot failed: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *pgxRepository) Update(ctx context.Context, s *Slot) error {
	query, args, err := psql.Update("provider_availability").
		Set("day_of_week", s.DayOfWeek).
		Set("start_time", squirrel.Expr("?::time", s.StartTime)).
		Set("end_time", squirrel.Expr("?::time", s.EndTime)).
		Set("is_available", s.IsAvailable).
		Set("max_bookings_per_slot", s.MaxBookingsPerSlot).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": s.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update slot query failed: %w", err)
	}

	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if isUniqueViolation(err) {
			return ErrDuplicateSlot
		}
		return fmt.Errorf("update slot failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("provider_availability").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete slot query failed: %w", err)
	}

	ct, err := db.Conn(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete slot failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
