package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/hoshigumi/cast-console-api/internal/models"
)

// CastRepository provides database access to the store roster.
type CastRepository struct {
	db *sqlx.DB
}

// NewCastRepository constructs the repository.
func NewCastRepository(db *sqlx.DB) *CastRepository {
	return &CastRepository{db: db}
}

// CastFilter narrows roster listings.
type CastFilter struct {
	Active   *bool
	Search   string
	Page     int
	PageSize int
}

// List returns roster entries matching the filter plus the unpaged total.
func (r *CastRepository) List(ctx context.Context, filter CastFilter) ([]models.Cast, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Active != nil {
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, name, is_active, hired_at, created_at, updated_at
FROM casts WHERE %s ORDER BY name ASC LIMIT %d OFFSET %d`, whereClause, size, offset)

	var casts []models.Cast
	if err := r.db.SelectContext(ctx, &casts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list casts: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM casts WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count casts: %w", err)
	}
	return casts, total, nil
}

// FindByID returns a single roster entry.
func (r *CastRepository) FindByID(ctx context.Context, id string) (*models.Cast, error) {
	const query = `SELECT id, name, is_active, hired_at, created_at, updated_at FROM casts WHERE id = $1 LIMIT 1`
	var cast models.Cast
	if err := r.db.GetContext(ctx, &cast, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find cast by id: %w", err)
	}
	return &cast, nil
}
