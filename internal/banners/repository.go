package banners

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
)

var ErrNotFound = errors.New("banners: not found")

type Repository interface {
	Create(ctx context.Context, b models.Banner) (models.Banner, error)
	Update(ctx context.Context, id int64, b models.Banner) (models.Banner, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Toggle(ctx context.Context, id int64) (models.Banner, error)
	GetByID(ctx context.Context, id int64) (models.Banner, error)
	List(ctx context.Context, activeOnly bool) ([]models.Banner, error)
}

type bannersDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type PostgresRepository struct {
	db bannersDB
}

func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("banners: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func NewRepositoryWithDB(conn bannersDB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

const bannerColumns = `id, title, description, image_url, link, button_text, sort_order, is_active, created_at, updated_at`

func scanBanner(row interface{ Scan(dest ...any) error }) (models.Banner, error) {
	var b models.Banner
	err := row.Scan(&b.ID, &b.Title, &b.Description, &b.ImageURL, &b.Link, &b.ButtonText,
		&b.SortOrder, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r *PostgresRepository) one(ctx context.Context, op, query string, args ...any) (models.Banner, error) {
	b, err := scanBanner(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Banner{}, ErrNotFound
	}
	if err != nil {
		return models.Banner{}, fmt.Errorf("banners: %s failed: %w", op, err)
	}
	return b, nil
}

func (r *PostgresRepository) Create(ctx context.Context, b models.Banner) (models.Banner, error) {
	return r.one(ctx, "insert",
		`INSERT INTO banners (title, description, image_url, link, button_text, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING `+bannerColumns,
		b.Title, b.Description, b.ImageURL, b.Link, b.ButtonText, b.SortOrder, b.IsActive)
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, b models.Banner) (models.Banner, error) {
	return r.one(ctx, "update",
		`UPDATE banners SET title = $2, description = $3, image_url = $4, link = $5, button_text = $6,
		sort_order = $7, is_active = $8, updated_at = NOW() WHERE id = $1 RETURNING `+bannerColumns,
		id, b.Title, b.Description, b.ImageURL, b.Link, b.ButtonText, b.SortOrder, b.IsActive)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM banners WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("banners: delete failed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresRepository) Toggle(ctx context.Context, id int64) (models.Banner, error) {
	return r.one(ctx, "toggle",
		`UPDATE banners SET is_active = NOT is_active, updated_at = NOW() WHERE id = $1 RETURNING `+bannerColumns, id)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (models.Banner, error) {
	return r.one(ctx, "get", `SELECT `+bannerColumns+` FROM banners WHERE id = $1`, id)
}

func (r *PostgresRepository) List(ctx context.Context, activeOnly bool) ([]models.Banner, error) {
	query := `SELECT ` + bannerColumns + ` FROM banners`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY sort_order, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("banners: list failed: %w", err)
	}
	defer rows.Close()

	items := make([]models.Banner, 0)
	for rows.Next() {
		b, err := scanBanner(rows)
		if err != nil {
			return nil, fmt.Errorf("banners: scan failed: %w", err)
		}
		items = append(items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("banners: list failed: %w", err)
	}
	return items, nil
}
