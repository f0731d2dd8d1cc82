package admins

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
	ErrNotFound  = errors.New("admins: not found")
	ErrDuplicate = errors.New("admins: duplicate email")
)

type Repository interface {
	Create(ctx context.Context, a models.Admin) (models.Admin, error)
	GetByID(ctx context.Context, id int64) (models.Admin, error)
	GetByEmail(ctx context.Context, email string) (models.Admin, error)
	UpdateProfile(ctx context.Context, id int64, fullName, email string) (models.Admin, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	Settings(ctx context.Context) (models.HospitalSettings, error)
	SaveSettings(ctx context.Context, s models.HospitalSettings) (models.HospitalSettings, error)
}

type adminsDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type PostgresRepository struct {
	db adminsDB
}

func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("admins: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func NewRepositoryWithDB(conn adminsDB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

const adminColumns = `id, email, full_name, password_hash, is_active, created_at, updated_at`

func (r *PostgresRepository) one(ctx context.Context, op, query string, args ...any) (models.Admin, error) {
	var a models.Admin
	err := r.db.QueryRow(ctx, query, args...).Scan(&a.ID, &a.Email, &a.FullName, &a.PasswordHash, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Admin{}, ErrNotFound
		}
		if db.IsUniqueViolation(err) {
			return models.Admin{}, ErrDuplicate
		}
		return models.Admin{}, fmt.Errorf("admins: %s failed: %w", op, err)
	}
	return a, nil
}

func (r *PostgresRepository) Create(ctx context.Context, a models.Admin) (models.Admin, error) {
	return r.one(ctx, "insert",
		`INSERT INTO admins (email, full_name, password_hash, is_active) VALUES ($1, $2, $3, $4) RETURNING `+adminColumns,
		a.Email, a.FullName, a.PasswordHash, a.IsActive)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (models.Admin, error) {
	return r.one(ctx, "get", `SELECT `+adminColumns+` FROM admins WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (models.Admin, error) {
	return r.one(ctx, "get by email", `SELECT `+adminColumns+` FROM admins WHERE LOWER(email) = LOWER($1)`, email)
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id int64, fullName, email string) (models.Admin, error) {
	return r.one(ctx, "update profile",
		`UPDATE admins SET full_name = COALESCE(NULLIF($2, ''), full_name), email = COALESCE(NULLIF($3, ''), email),
		updated_at = NOW() WHERE id = $1 RETURNING `+adminColumns,
		id, fullName, email)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE admins SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("admins: update password failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Settings(ctx context.Context) (models.HospitalSettings, error) {
	var s models.HospitalSettings
	err := r.db.QueryRow(ctx, `SELECT name, address, phone, email, working_hours, updated_at FROM hospital_settings WHERE id = 1`).
		Scan(&s.Name, &s.Address, &s.Phone, &s.Email, &s.WorkingHours, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.HospitalSettings{}, ErrNotFound
	}
	if err != nil {
		return models.HospitalSettings{}, fmt.Errorf("admins: settings failed: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) SaveSettings(ctx context.Context, s models.HospitalSettings) (models.HospitalSettings, error) {
	var out models.HospitalSettings
	err := r.db.QueryRow(ctx,
		`INSERT INTO hospital_settings (id, name, address, phone, email, working_hours, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, address = EXCLUDED.address, phone = EXCLUDED.phone,
			email = EXCLUDED.email, working_hours = EXCLUDED.working_hours, updated_at = NOW()
		RETURNING name, address, phone, email, working_hours, updated_at`,
		s.Name, s.Address, s.Phone, s.Email, s.WorkingHours,
	).Scan(&out.Name, &out.Address, &out.Phone, &out.Email, &out.WorkingHours, &out.UpdatedAt)
	if err != nil {
		return models.HospitalSettings{}, fmt.Errorf("admins: save settings failed: %w", err)
	}
	return out, nil
}
