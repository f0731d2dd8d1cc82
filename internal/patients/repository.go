package patients

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
	ErrNotFound  = errors.New("patients: not found")
	ErrDuplicate = errors.New("patients: duplicate contact")
)

type Repository interface {
	FindByEmail(ctx context.Context, email string) (models.Patient, error)
	FindByPhone(ctx context.Context, phone string) (models.Patient, error)
	FindByTelegramID(ctx context.Context, telegramID string) (models.Patient, error)
	GetByID(ctx context.Context, id int64) (models.Patient, error)
	Create(ctx context.Context, p models.Patient) (models.Patient, error)
	UpdateContact(ctx context.Context, id int64, p models.Patient) (models.Patient, error)
	List(ctx context.Context, search string, limit, offset int64) ([]models.Patient, int64, error)
}

type patientsDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type PostgresRepository struct {
	db patientsDB
}

func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("patients: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func NewRepositoryWithDB(conn patientsDB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

const patientColumns = `id, name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(telegram_id, ''),
	age, gender, blood_group, address, emergency_contact, medical_history, allergies, created_at, updated_at`

func scanPatient(row interface{ Scan(dest ...any) error }) (models.Patient, error) {
	var p models.Patient
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.TelegramID,
		&p.Age, &p.Gender, &p.BloodGroup, &p.Address, &p.EmergencyContact, &p.MedicalHistory, &p.Allergies,
		&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PostgresRepository) one(ctx context.Context, op, query string, args ...any) (models.Patient, error) {
	p, err := scanPatient(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Patient{}, ErrNotFound
		}
		if db.IsUniqueViolation(err) {
			return models.Patient{}, ErrDuplicate
		}
		return models.Patient{}, fmt.Errorf("patients: %s failed: %w", op, err)
	}
	return p, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (models.Patient, error) {
	return r.one(ctx, "find by email", `SELECT `+patientColumns+` FROM patients WHERE LOWER(email) = LOWER($1)`, email)
}

func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (models.Patient, error) {
	return r.one(ctx, "find by phone", `SELECT `+patientColumns+` FROM patients WHERE phone = $1`, phone)
}

func (r *PostgresRepository) FindByTelegramID(ctx context.Context, telegramID string) (models.Patient, error) {
	return r.one(ctx, "find by telegram id", `SELECT `+patientColumns+` FROM patients WHERE telegram_id = $1`, telegramID)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (models.Patient, error) {
	return r.one(ctx, "get", `SELECT `+patientColumns+` FROM patients WHERE id = $1`, id)
}

func (r *PostgresRepository) Create(ctx context.Context, p models.Patient) (models.Patient, error) {
	query := `INSERT INTO patients (name, email, phone, telegram_id, age, gender)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5, $6)
		RETURNING ` + patientColumns
	return r.one(ctx, "insert", query, p.Name, p.Email, p.Phone, p.TelegramID, p.Age, p.Gender)
}

// UpdateContact overwrites only the non-empty fields of p.
func (r *PostgresRepository) UpdateContact(ctx context.Context, id int64, p models.Patient) (models.Patient, error) {
	query := `UPDATE patients SET
			name = COALESCE(NULLIF($2, ''), name),
			email = COALESCE(NULLIF($3, ''), email),
			phone = COALESCE(NULLIF($4, ''), phone),
			telegram_id = COALESCE(NULLIF($5, ''), telegram_id),
			age = CASE WHEN $6 > 0 THEN $6 ELSE age END,
			gender = COALESCE(NULLIF($7, ''), gender),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + patientColumns
	return r.one(ctx, "update", query, id, p.Name, p.Email, p.Phone, p.TelegramID, p.Age, p.Gender)
}

func (r *PostgresRepository) List(ctx context.Context, search string, limit, offset int64) ([]models.Patient, int64, error) {
	where := ""
	args := []any{}
	if search != "" {
		args = append(args, "%"+search+"%")
		where = ` WHERE name ILIKE $1 OR phone ILIKE $1 OR email ILIKE $1`
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM patients`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("patients: count failed: %w", err)
	}

	args = append(args, limit, offset)
	query := `SELECT ` + patientColumns + ` FROM patients` + where +
		fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("patients: list failed: %w", err)
	}
	defer rows.Close()

	items := make([]models.Patient, 0)
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("patients: scan failed: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("patients: list failed: %w", err)
	}
	return items, total, nil
}
