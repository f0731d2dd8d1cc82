package doctors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/db"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
)

var (
	ErrNotFound  = errors.New("doctors: not found")
	ErrDuplicate = errors.New("doctors: duplicate email")
)

type Repository interface {
	Create(ctx context.Context, d models.Doctor) (models.Doctor, error)
	Update(ctx context.Context, id int64, d models.Doctor) (models.Doctor, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Toggle(ctx context.Context, id int64) (models.Doctor, error)
	GetByID(ctx context.Context, id int64) (models.Doctor, error)
	FindByName(ctx context.Context, name string) (models.Doctor, error)
	FindActiveByNameFragment(ctx context.Context, fragment string) (models.Doctor, error)
	List(ctx context.Context, filter ListFilter) ([]models.Doctor, error)
}

type doctorsDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type PostgresRepository struct {
	db doctorsDB
}

func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("doctors: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewRepositoryWithDB accepts any pgx-compatible handle, e.g. pgxmock.
func NewRepositoryWithDB(conn doctorsDB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

const doctorColumns = `id, name, COALESCE(email, ''), phone, specialization, COALESCE(specialization_id, 0),
	qualification, experience_years, consultation_fee::float8, opd_timings, languages, bio, image_url,
	is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDoctor(row rowScanner) (models.Doctor, error) {
	var d models.Doctor
	var specID int64
	err := row.Scan(
		&d.ID, &d.Name, &d.Email, &d.Phone, &d.Specialization, &specID,
		&d.Qualification, &d.ExperienceYears, &d.ConsultationFee, &d.OPDTimings, &d.Languages, &d.Bio, &d.ImageURL,
		&d.IsActive, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return models.Doctor{}, err
	}
	if specID > 0 {
		d.SpecializationID = &specID
	}
	if d.Languages == nil {
		d.Languages = []string{}
	}
	return d, nil
}

func (r *PostgresRepository) one(ctx context.Context, op, query string, args ...any) (models.Doctor, error) {
	d, err := scanDoctor(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Doctor{}, ErrNotFound
		}
		if db.IsUniqueViolation(err) {
			return models.Doctor{}, ErrDuplicate
		}
		return models.Doctor{}, fmt.Errorf("doctors: %s failed: %w", op, err)
	}
	return d, nil
}

func (r *PostgresRepository) Create(ctx context.Context, d models.Doctor) (models.Doctor, error) {
	query := `INSERT INTO doctors (name, email, phone, specialization, specialization_id, qualification,
		experience_years, consultation_fee, opd_timings, languages, bio, image_url, is_active)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + doctorColumns
	return r.one(ctx, "insert", query,
		d.Name, d.Email, d.Phone, d.Specialization, d.SpecializationID, d.Qualification,
		d.ExperienceYears, d.ConsultationFee, d.OPDTimings, nonNil(d.Languages), d.Bio, d.ImageURL, d.IsActive,
	)
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, d models.Doctor) (models.Doctor, error) {
	query := `UPDATE doctors SET name = $2, email = NULLIF($3, ''), phone = $4, specialization = $5,
		specialization_id = $6, qualification = $7, experience_years = $8, consultation_fee = $9,
		opd_timings = $10, languages = $11, bio = $12, image_url = $13, is_active = $14, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + doctorColumns
	return r.one(ctx, "update", query,
		id, d.Name, d.Email, d.Phone, d.Specialization, d.SpecializationID, d.Qualification,
		d.ExperienceYears, d.ConsultationFee, d.OPDTimings, nonNil(d.Languages), d.Bio, d.ImageURL, d.IsActive,
	)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("doctors: delete failed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresRepository) Toggle(ctx context.Context, id int64) (models.Doctor, error) {
	query := `UPDATE doctors SET is_active = NOT is_active, updated_at = NOW() WHERE id = $1 RETURNING ` + doctorColumns
	return r.one(ctx, "toggle", query, id)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (models.Doctor, error) {
	return r.one(ctx, "get", `SELECT `+doctorColumns+` FROM doctors WHERE id = $1`, id)
}

func (r *PostgresRepository) FindByName(ctx context.Context, name string) (models.Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE LOWER(name) = LOWER($1) ORDER BY is_active DESC, id LIMIT 1`
	return r.one(ctx, "find by name", query, name)
}

func (r *PostgresRepository) FindActiveByNameFragment(ctx context.Context, fragment string) (models.Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE is_active AND name ILIKE '%' || $1 || '%' ORDER BY id LIMIT 1`
	return r.one(ctx, "find by fragment", query, fragment)
}

func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]models.Doctor, error) {
	conds := make([]string, 0, 3)
	args := make([]any, 0, 2)
	if filter.ActiveOnly {
		conds = append(conds, "is_active")
	}
	if filter.Specialization != "" {
		args = append(args, filter.Specialization)
		conds = append(conds, fmt.Sprintf("LOWER(specialization) = LOWER($%d)", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR specialization ILIKE $%d)", len(args), len(args)))
	}

	query := `SELECT ` + doctorColumns + ` FROM doctors`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY name, id"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("doctors: list failed: %w", err)
	}
	defer rows.Close()

	items := make([]models.Doctor, 0)
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, fmt.Errorf("doctors: scan failed: %w", err)
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("doctors: list failed: %w", err)
	}
	return items, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
