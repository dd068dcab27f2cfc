package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/servicehub-backend/internal/db"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id string) (*Notification, error)
	List(ctx context.Context, filter Filter) ([]*Notification, int, error)
	MarkRead(ctx context.Context, userID, id string, at time.Time) (*Notification, error)
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkSent(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var columns = []string{
	"id", "user_id", "notification_type", "title", "message",
	"booking_id", "review_id", "is_read", "is_sent", "created_at", "read_at",
}

func scan(row pgx.Row, n *Notification) error {
	return row.Scan(
		&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message,
		&n.BookingID, &n.ReviewID, &n.IsRead, &n.IsSent, &n.CreatedAt, &n.ReadAt,
	)
}

func (r *pgxRepository) Create(ctx context.Context, n *Notification) error {
	query, args, err := psql.Insert("notifications").
		Columns("user_id", "notification_type", "title", "message", "booking_id", "review_id").
		Values(n.UserID, n.Type, n.Title, n.Message, n.BookingID, n.ReviewID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create notification query failed: %w", err)
	}

	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&n.ID, &n.CreatedAt); err != nil {
		return fmt.Errorf("create notification failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Notification, error) {
	query, args, err := psql.Select(columns...).
		From("notifications").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get notification query failed: %w", err)
	}

	var n Notification
	if err := scan(db.Conn(ctx, r.pool).QueryRow(ctx, query, args...), &n); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get notification failed: %w", err)
	}
	return &n, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Notification, int, error) {
	q := psql.Select(append(columns[:len(columns):len(columns)], "count(*) OVER()")...).
		From("notifications").
		Where(squirrel.Eq{"user_id": filter.UserID}).
		OrderBy("created_at DESC", "id DESC")
	if filter.UnreadOnly {
		q = q.Where(squirrel.Eq{"is_read": false})
	}
	if filter.PageSize > 0 {
		q = q.Limit(uint64(filter.PageSize))
		if filter.Page > 1 {
			q = q.Offset(uint64((filter.Page - 1) * filter.PageSize))
		}
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list notifications query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications failed: %w", err)
	}
	defer rows.Close()

	var (
		out   []*Notification
		total int
	)
	for rows.Next() {
		var n Notification
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message,
			&n.BookingID, &n.ReviewID, &n.IsRead, &n.IsSent, &n.CreatedAt, &n.ReadAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan notification failed: %w", err)
		}
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate notifications failed: %w", err)
	}
	return out, total, nil
}

// MarkRead keeps the first read_at.
func (r *pgxRepository) MarkRead(ctx context.Context, userID, id string, at time.Time) (*Notification, error) {
	query, args, err := psql.Update("notifications").
		Set("is_read", true).
		Set("read_at", squirrel.Expr("COALESCE(read_at, ?)", at)).
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build mark read query failed: %w", err)
	}

	var n Notification
	if err := scan(db.Conn(ctx, r.pool).QueryRow(ctx, query, args...), &n); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mark notification read failed: %w", err)
	}
	return &n, nil
}

func (r *pgxRepository) MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error) {
	query, args, err := psql.Update("notifications").
		Set("is_read", true).
		Set("read_at", at).
		Where(squirrel.Eq{"user_id": userID, "is_read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build mark all read query failed: %w", err)
	}

	tag, err := db.Conn(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read failed: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *pgxRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	query, args, err := psql.Select("count(*)").
		From("notifications").
		Where(squirrel.Eq{"user_id": userID, "is_read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build unread count query failed: %w", err)
	}

	var n int
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unread notifications failed: %w", err)
	}
	return n, nil
}

func (r *pgxRepository) MarkSent(ctx context.Context, id string) error {
	query, args, err := psql.Update("notifications").
		Set("is_sent", true).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark sent query failed: %w", err)
	}

	tag, err := db.Conn(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark notification sent failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
