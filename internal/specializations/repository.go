package specializations

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/db"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
)

var (
	ErrNotFound  = errors.New("specializations: not found")
	ErrDuplicate = errors.New("specializations: duplicate name")
)

type Repository interface {
	Create(ctx context.Context, s models.Specialization) (models.Specialization, error)
	Update(ctx context.Context, id int64, s models.Specialization) (models.Specialization, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Toggle(ctx context.Context, id int64) (models.Specialization, error)
	GetByID(ctx context.Context, id int64) (models.Specialization, error)
	List(ctx context.Context, activeOnly bool) ([]models.Specialization, error)
}

type specializationsDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type PostgresRepository struct {
	db specializationsDB
}

func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("specializations: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func NewRepositoryWithDB(conn specializationsDB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

const columns = `id, name, description, icon, is_active, created_at, updated_at`

func scan(row interface{ Scan(dest ...any) error }) (models.Specialization, error) {
	var s models.Specialization
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Icon, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *PostgresRepository) one(ctx context.Context, op, query string, args ...any) (models.Specialization, error) {
	s, err := scan(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Specialization{}, ErrNotFound
		}
		if db.IsUniqueViolation(err) {
			return models.Specialization{}, ErrDuplicate
		}
		return models.Specialization{}, fmt.Errorf("specializations: %s failed: %w", op, err)
	}
	return s, nil
}

func (r *PostgresRepository) Create(ctx context.Context, s models.Specialization) (models.Specialization, error) {
	return r.one(ctx, "insert",
		`INSERT INTO specializations (name, description, icon, is_active) VALUES ($1, $2, $3, $4) RETURNING `+columns,
		s.Name, s.Description, s.Icon, s.IsActive)
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, s models.Specialization) (models.Specialization, error) {
	return r.one(ctx, "update",
		`UPDATE specializations SET name = $2, description = $3, icon = $4, is_active = $5, updated_at = NOW()
		WHERE id = $1 RETURNING `+columns,
		id, s.Name, s.Description, s.Icon, s.IsActive)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM specializations WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("specializations: delete failed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresRepository) Toggle(ctx context.Context, id int64) (models.Specialization, error) {
	return r.one(ctx, "toggle",
		`UPDATE specializations SET is_active = NOT is_active, updated_at = NOW() WHERE id = $1 RETURNING `+columns, id)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (models.Specialization, error) {
	return r.one(ctx, "get", `SELECT `+columns+` FROM specializations WHERE id = $1`, id)
}

func (r *PostgresRepository) List(ctx context.Context, activeOnly bool) ([]models.Specialization, error) {
	query := `SELECT ` + columns + ` FROM specializations`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("specializations: list failed: %w", err)
	}
	defer rows.Close()

	items := make([]models.Specialization, 0)
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("specializations: scan failed: %w", err)
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
