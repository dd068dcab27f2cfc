package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/servicehub-backend/internal/db"
)

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id string) (*Payment, error)
	// LockByID reads the payment with a row lock held until the surrounding transaction ends.
	LockByID(ctx context.Context, id string) (*Payment, error)
	List(ctx context.Context, filter Filter) ([]*Payment, int, error)
	Update(ctx context.Context, p *Payment) error
	HasStatus(ctx context.Context, bookingID string, status Status) (bool, error)
	// AbandonProcessing fails the booking's processing payments that started before cutoff.
	AbandonProcessing(ctx context.Context, bookingID string, cutoff, now time.Time) (int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var columns = []string{
	"id", "booking_id", "customer_id", "amount", "payment_method", "status",
	"transaction_id", "gateway_response", "failure_reason",
	"created_at", "processed_at", "completed_at", "failed_at",
}

func scanTargets(p *Payment) []any {
	return []any{
		&p.ID, &p.BookingID, &p.CustomerID, &p.Amount, &p.Method, &p.Status,
		&p.TransactionID, &p.GatewayResponse, &p.FailureReason,
		&p.CreatedAt, &p.ProcessedAt, &p.CompletedAt, &p.FailedAt,
	}
}

func (r *pgxRepository) Create(ctx context.Context, p *Payment) error {
	if p.GatewayResponse == nil {
		p.GatewayResponse = map[string]any{}
	}

	query, args, err := psql.Insert("payments").
		Columns("booking_id", "customer_id", "amount", "payment_method", "status", "gateway_response").
		Values(p.BookingID, p.CustomerID, p.Amount, p.Method, p.Status, p.GatewayResponse).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create payment query failed: %w", err)
	}

	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&p.ID, &p.CreatedAt); err != nil {
		return fmt.Errorf("create payment failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) get(ctx context.Context, id, suffix string) (*Payment, error) {
	q := psql.Select(columns...).From("payments").Where(squirrel.Eq{"id": id})
	if suffix != "" {
		q = q.Suffix(suffix)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get payment query failed: %w", err)
	}

	var p Payment
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(scanTargets(&p)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get payment failed: %w", err)
	}
	return &p, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Payment, error) {
	return r.get(ctx, id, "")
}

func (r *pgxRepository) LockByID(ctx context.Context, id string) (*Payment, error) {
	return r.get(ctx, id, "FOR UPDATE")
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Payment, int, error) {
	q := psql.Select(append(columns[:len(columns):len(columns)], "count(*) OVER()")...).
		From("payments").
		OrderBy("created_at DESC", "id")

	if filter.CustomerID != "" {
		q = q.Where(squirrel.Eq{"customer_id": filter.CustomerID})
	}
	if filter.BookingID != "" {
		q = q.Where(squirrel.Eq{"booking_id": filter.BookingID})
	}
	if filter.PageSize > 0 {
		q = q.Limit(uint64(filter.PageSize))
		if filter.Page > 1 {
			q = q.Offset(uint64((filter.Page - 1) * filter.PageSize))
		}
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list payments query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list payments failed: %w", err)
	}
	defer rows.Close()

	var (
		out   []*Payment
		total int
	)
	for rows.Next() {
		var p Payment
		if err := rows.Scan(append(scanTargets(&p), &total)...); err != nil {
			return nil, 0, fmt.Errorf("scan payment failed: %w", err)
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate payments failed: %w", err)
	}
	return out, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, p *Payment) error {
	query, args, err := psql.Update("payments").
		Set("status", p.Status).
		Set("transaction_id", p.TransactionID).
		Set("gateway_response", p.GatewayResponse).
		Set("failure_reason", p.FailureReason).
		Set("processed_at", p.ProcessedAt).
		Set("completed_at", p.CompletedAt).
		Set("failed_at", p.FailedAt).
		Where(squirrel.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update payment query failed: %w", err)
	}

	ct, err := db.Conn(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update payment failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) HasStatus(ctx context.Context, bookingID string, status Status) (bool, error) {
	sub, args, err := psql.Select("1").
		From("payments").
		Where(squirrel.Eq{"booking_id": bookingID, "status": status}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build payment status query failed: %w", err)
	}

	var exists bool
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, "SELECT EXISTS ("+sub+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check payment status failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) AbandonProcessing(ctx context.Context, bookingID string, cutoff, now time.Time) (int, error) {
	query, args, err := psql.Update("payments").
		Set("status", StatusFailed).
		Set("failure_reason", abandonReason).
		Set("failed_at", now).
		Where(squirrel.Eq{"booking_id": bookingID, "status": StatusProcessing}).
		Where(squirrel.Lt{"processed_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build abandon payments query failed: %w", err)
	}

	ct, err := db.Conn(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("abandon payments failed: %w", err)
	}
	return int(ct.RowsAffected()), nil
}
