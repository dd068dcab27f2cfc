package booking

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
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// UpdateState writes status, timestamps, notes and final price only if the
	// stored version still equals booking.Version, then bumps the version.
	// A lost race returns ErrConflict.
	UpdateState(ctx context.Context, booking *Booking) error

	// LockForPayment reads the booking with a row lock held until the surrounding transaction ends.
	LockForPayment(ctx context.Context, id string) (*Booking, error)
	SetPaymentStatus(ctx context.Context, id string, status PaymentStatus) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var selectColumns = []string{
	"b.id", "b.customer_id", "c.full_name", "b.provider_id", "p.full_name", "b.service_id", "s.name",
	"b.booking_date", "b.estimated_duration", "b.special_instructions",
	"b.service_address", "b.service_latitude", "b.service_longitude", "b.distance_km", "b.estimated_travel_time",
	"b.status", "b.quoted_price", "b.final_price", "b.payment_status",
	"b.provider_notes", "b.rejection_reason",
	"EXISTS (SELECT 1 FROM reviews rv WHERE rv.booking_id = b.id)",
	"b.version", "b.created_at", "b.updated_at", "b.confirmed_at", "b.completed_at", "b.cancelled_at",
}

func selectBookings(extra ...string) squirrel.SelectBuilder {
	cols := make([]string, 0, len(selectColumns)+len(extra))
	cols = append(cols, selectColumns...)
	cols = append(cols, extra...)
	return psql.Select(cols...).
		From("service_bookings b").
		Join("users c ON b.customer_id = c.id").
		Join("users p ON b.provider_id = p.id").
		Join("provider_services s ON b.service_id = s.id")
}

func scanTargets(b *Booking) []any {
	return []any{
		&b.ID, &b.CustomerID, &b.CustomerName, &b.ProviderID, &b.ProviderName, &b.ServiceID, &b.ServiceName,
		&b.BookingDate, &b.EstimatedDuration, &b.SpecialInstructions,
		&b.ServiceAddress, &b.ServiceLatitude, &b.ServiceLongitude, &b.DistanceKm, &b.EstimatedTravelTime,
		&b.Status, &b.QuotedPrice, &b.FinalPrice, &b.PaymentStatus,
		&b.ProviderNotes, &b.RejectionReason,
		&b.HasReview,
		&b.Version, &b.CreatedAt, &b.UpdatedAt, &b.ConfirmedAt, &b.CompletedAt, &b.CancelledAt,
	}
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	query, args, err := psql.Insert("service_bookings").
		Columns(
			"customer_id", "provider_id", "service_id",
			"booking_date", "estimated_duration", "special_instructions",
			"service_address", "service_latitude", "service_longitude", "distance_km", "estimated_travel_time",
			"status", "quoted_price", "payment_status",
		).
		Values(
			b.CustomerID, b.ProviderID, b.ServiceID,
			b.BookingDate, b.EstimatedDuration, b.SpecialInstructions,
			b.ServiceAddress, b.ServiceLatitude, b.ServiceLongitude, b.DistanceKm, b.EstimatedTravelTime,
			b.Status, b.QuotedPrice, b.PaymentStatus,
		).
		Suffix("RETURNING id, version, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).
		Scan(&b.ID, &b.Version, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) get(ctx context.Context, id string, suffix string) (*Booking, error) {
	q := selectBookings().Where(squirrel.Eq{"b.id": id})
	if suffix != "" {
		q = q.Suffix(suffix)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	var b Booking
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(scanTargets(&b)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return &b, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	return r.get(ctx, id, "")
}

// LockForPayment only locks the booking row; joined rows stay unlocked.
func (r *pgxRepository) LockForPayment(ctx context.Context, id string) (*Booking, error) {
	return r.get(ctx, id, "FOR UPDATE OF b")
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	query := selectBookings("count(*) OVER() as total_count")

	if filter.CustomerID != "" {
		query = query.Where(squirrel.Eq{"b.customer_id": filter.CustomerID})
	}
	if filter.ProviderID != "" {
		query = query.Where(squirrel.Eq{"b.provider_id": filter.ProviderID})
	}
	if filter.Status != nil {
		query = query.Where(squirrel.Eq{"b.status": *filter.Status})
	}

	// Sorting
	orderBy := "b.created_at"
	if filter.SortBy != "" {
		orderBy = "b." + filter.SortBy
	}

	orderDir := "DESC"
	if filter.SortOrder != "" {
		orderDir = filter.SortOrder
	}

	query = query.OrderBy(orderBy+" "+orderDir, "b.id")

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int

	for rows.Next() {
		var b Booking
		if err := rows.Scan(append(scanTargets(&b), &total)...); err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate bookings failed: %w", err)
	}

	return bookings, total, nil
}

func (r *pgxRepository) UpdateState(ctx context.Context, b *Booking) error {
	query, args, err := psql.Update("service_bookings").
		Set("status", b.Status).
		Set("confirmed_at", b.ConfirmedAt).
		Set("completed_at", b.CompletedAt).
		Set("cancelled_at", b.CancelledAt).
		Set("provider_notes", b.ProviderNotes).
		Set("rejection_reason", b.RejectionReason).
		Set("final_price", b.FinalPrice).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID, "version": b.Version}).
		Suffix("RETURNING version, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&b.Version, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrConflict
		}
		return fmt.Errorf("update booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) SetPaymentStatus(ctx context.Context, id string, status PaymentStatus) error {
	query, args, err := psql.Update("service_bookings").
		Set("payment_status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set payment status query failed: %w", err)
	}

	ct, err := db.Conn(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set payment status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
