package catalog

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
	ListCategories(ctx context.Context, activeOnly bool) ([]*Category, error)
	GetCategory(ctx context.Context, id string) (*Category, error)

	CreateService(ctx context.Context, s *ProviderService) error
	GetService(ctx context.Context, id string) (*ProviderService, error)
	ListServices(ctx context.Context, filter ServiceFilter) ([]*ProviderService, int, error)
	UpdateService(ctx context.Context, s *ProviderService) error

	CreateImage(ctx context.Context, img *Image) error
	ClearPrimaryImage(ctx context.Context, serviceID string) error
	ListImages(ctx context.Context, serviceID string) ([]*Image, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func (r *pgxRepository) ListCategories(ctx context.Context, activeOnly bool) ([]*Category, error) {
	qb := psql.Select("id", "name", "description", "icon", "is_active", "created_at").
		From("service_categories").
		OrderBy("name ASC")
	if activeOnly {
		qb = qb.Where(squirrel.Eq{"is_active": true})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list categories query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories failed: %w", err)
	}
	defer rows.Close()

	var out []*Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Icon, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category failed: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *pgxRepository) GetCategory(ctx context.Context, id string) (*Category, error) {
	query, args, err := psql.Select("id", "name", "description", "icon", "is_active", "created_at").
		From("service_categories").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get category query failed: %w", err)
	}

	var c Category
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).
		Scan(&c.ID, &c.Name, &c.Description, &c.Icon, &c.IsActive, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category failed: %w", err)
	}
	return &c, nil
}

func serviceSelect() squirrel.SelectBuilder {
	return psql.Select(
		"s.id", "s.provider_id", "u.full_name", "s.category_id", "c.name",
		"s.name", "s.description", "s.base_price", "s.price_unit",
		"s.estimated_duration", "s.is_active", "s.created_at", "s.updated_at",
	).
		From("provider_services s").
		Join("users u ON u.id = s.provider_id").
		Join("service_categories c ON c.id = s.category_id")
}

func scanService(row pgx.Row, extra ...any) (*ProviderService, error) {
	var s ProviderService
	dest := []any{
		&s.ID, &s.ProviderID, &s.ProviderName, &s.CategoryID, &s.CategoryName,
		&s.Name, &s.Description, &s.BasePrice, &s.PriceUnit,
		&s.EstimatedDuration, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *pgxRepository) CreateService(ctx context.Context, s *ProviderService) error {
	query, args, err := psql.Insert("provider_services").
		Columns("provider_id", "category_id", "name", "description", "base_price",
			"price_unit", "estimated_duration", "is_active").
		Values(s.ProviderID, s.CategoryID, s.Name, s.Description, s.BasePrice,
			s.PriceUnit, s.EstimatedDuration, s.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create service query failed: %w", err)
	}

	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return fmt.Errorf("create service failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetService(ctx context.Context, id string) (*ProviderService, error) {
	query, args, err := serviceSelect().Where(squirrel.Eq{"s.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get service query failed: %w", err)
	}

	s, err := scanService(db.Conn(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("get service failed: %w", err)
	}
	return s, nil
}

func (r *pgxRepository) ListServices(ctx context.Context, filter ServiceFilter) ([]*ProviderService, int, error) {
	qb := serviceSelect().Column("count(*) OVER() AS total_count")

	if filter.ProviderID != "" {
		qb = qb.Where(squirrel.Eq{"s.provider_id": filter.ProviderID})
	}
	if filter.CategoryID != "" {
		qb = qb.Where(squirrel.Eq{"s.category_id": filter.CategoryID})
	}
	if filter.ActiveOnly {
		qb = qb.Where(squirrel.Eq{"s.is_active": true, "u.is_active": true})
	}

	if filter.PageSize > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.PageSize
		}
		qb = qb.Limit(uint64(filter.PageSize)).Offset(uint64(offset))
	}

	query, args, err := qb.OrderBy("s.created_at DESC", "s.id").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list services query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list services failed: %w", err)
	}
	defer rows.Close()

	var (
		out   []*ProviderService
		total int
	)
	for rows.Next() {
		s, err := scanService(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan service failed: %w", err)
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *pgxRepository) UpdateService(ctx context.Context, s *ProviderService) error {
	query, args, err := psql.Update("provider_services").
		Set("category_id", s.CategoryID).
		Set("name", s.Name).
		Set("description", s.Description).
		Set("base_price", s.BasePrice).
		Set("price_unit", s.PriceUnit).
		Set("estimated_duration", s.EstimatedDuration).
		Set("is_active", s.IsActive).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": s.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update service query failed: %w", err)
	}

	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrServiceNotFound
		}
		return fmt.Errorf("update service failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) CreateImage(ctx context.Context, img *Image) error {
	query, args, err := psql.Insert("service_images").
		Columns("service_id", "file_id", "caption", "is_primary").
		Values(img.ServiceID, img.FileID, img.Caption, img.IsPrimary).
		Suffix("RETURNING id, uploaded_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create image query failed: %w", err)
	}

	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&img.ID, &img.UploadedAt); err != nil {
		return fmt.Errorf("create image failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) ClearPrimaryImage(ctx context.Context, serviceID string) error {
	query, args, err := psql.Update("service_images").
		Set("is_primary", false).
		Where(squirrel.Eq{"service_id": serviceID, "is_primary": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build clear primary image query failed: %w", err)
	}

	if _, err := db.Conn(ctx, r.pool).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("clear primary image failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) ListImages(ctx context.Context, serviceID string) ([]*Image, error) {
	query, args, err := psql.Select("id", "service_id", "file_id", "caption", "is_primary", "uploaded_at").
		From("service_images").
		Where(squirrel.Eq{"service_id": serviceID}).
		OrderBy("is_primary DESC", "uploaded_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list images query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list images failed: %w", err)
	}
	defer rows.Close()

	var out []*Image
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.ServiceID, &img.FileID, &img.Caption, &img.IsPrimary, &img.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan image failed: %w", err)
		}
		out = append(out, &img)
	}
	return out, rows.Err()
}
