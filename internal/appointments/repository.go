package appointments

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
	ErrNotFound   = errors.New("appointments: not found")
	ErrSlotTaken  = errors.New("appointments: slot already booked")
	ErrTokenTaken = errors.New("appointments: token already issued")
)

const tokenIndex = "appointments_token_uq"

type Repository interface {
	Insert(ctx context.Context, a models.Appointment) (models.Appointment, error)
	GetByID(ctx context.Context, id int64) (models.Appointment, error)
	GetByToken(ctx context.Context, token string) (models.Appointment, error)
	List(ctx context.Context, filter ListFilter) ([]models.Appointment, int64, error)
	ListByTelegramID(ctx context.Context, telegramID string) ([]models.Appointment, error)
	ListByPatient(ctx context.Context, patientID int64) ([]models.Appointment, error)
	ActiveTimes(ctx context.Context, doctorID int64, date string) ([]string, error)
	IsTaken(ctx context.Context, doctorID int64, date, clock string, excludeID int64) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status string) (models.Appointment, error)
	Reschedule(ctx context.Context, id int64, date, clock string) (models.Appointment, error)
}

type appointmentsDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type PostgresRepository struct {
	db appointmentsDB
}

func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewRepositoryWithDB accepts any pgx-compatible handle, e.g. pgxmock.
func NewRepositoryWithDB(conn appointmentsDB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// The doctor name is read live so renamed doctors show their current name.
const appointmentColumns = `a.id, a.token, COALESCE(a.patient_id, 0), COALESCE(a.doctor_id, 0), COALESCE(d.name, ''),
	a.patient_name, a.patient_email, a.patient_phone, a.patient_age, a.patient_gender, a.telegram_id,
	a.specialization, to_char(a.appointment_date, 'YYYY-MM-DD'), a.appointment_time, a.status, a.notes, a.channel,
	a.created_at, a.updated_at`

const appointmentFrom = ` FROM appointments a LEFT JOIN doctors d ON d.id = a.doctor_id`

func scanAppointment(row interface{ Scan(dest ...any) error }) (models.Appointment, error) {
	var a models.Appointment
	var patientID, doctorID int64
	err := row.Scan(&a.ID, &a.Token, &patientID, &doctorID, &a.DoctorName,
		&a.PatientName, &a.PatientEmail, &a.PatientPhone, &a.PatientAge, &a.PatientGender, &a.TelegramID,
		&a.Specialization, &a.Date, &a.Time, &a.Status, &a.Notes, &a.Channel,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return models.Appointment{}, err
	}
	if patientID > 0 {
		a.PatientID = &patientID
	}
	if doctorID > 0 {
		a.DoctorID = &doctorID
	}
	return a, nil
}

func (r *PostgresRepository) one(ctx context.Context, op, query string, args ...any) (models.Appointment, error) {
	a, err := scanAppointment(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Appointment{}, ErrNotFound
		}
		if db.IsUniqueViolation(err) {
			if db.ConstraintName(err) == tokenIndex {
				return models.Appointment{}, ErrTokenTaken
			}
			return models.Appointment{}, ErrSlotTaken
		}
		return models.Appointment{}, fmt.Errorf("appointments: %s failed: %w", op, err)
	}
	return a, nil
}

// Insert writes the row and reads it back through the doctor join.
func (r *PostgresRepository) Insert(ctx context.Context, a models.Appointment) (models.Appointment, error) {
	query := `WITH a AS (
			INSERT INTO appointments (token, patient_id, doctor_id, patient_name, patient_email, patient_phone, patient_age,
				patient_gender, telegram_id, specialization, appointment_date, appointment_time, status, notes, channel)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::date, $12, $13, $14, $15)
			RETURNING *
		)
		SELECT ` + appointmentColumns + ` FROM a LEFT JOIN doctors d ON d.id = a.doctor_id`
	return r.one(ctx, "insert", query,
		a.Token, a.PatientID, a.DoctorID, a.PatientName, a.PatientEmail, a.PatientPhone, a.PatientAge,
		a.PatientGender, a.TelegramID, a.Specialization, a.Date, a.Time, a.Status, a.Notes, a.Channel,
	)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (models.Appointment, error) {
	return r.one(ctx, "get", `SELECT `+appointmentColumns+appointmentFrom+` WHERE a.id = $1`, id)
}

func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (models.Appointment, error) {
	return r.one(ctx, "get by token", `SELECT `+appointmentColumns+appointmentFrom+` WHERE a.token = $1`, token)
}

func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]models.Appointment, int64, error) {
	conds := make([]string, 0, 4)
	args := make([]any, 0, 6)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("a.status = $%d", len(args)))
	}
	if filter.Date != "" {
		args = append(args, filter.Date)
		conds = append(conds, fmt.Sprintf("a.appointment_date = $%d::date", len(args)))
	}
	if filter.DoctorID > 0 {
		args = append(args, filter.DoctorID)
		conds = append(conds, fmt.Sprintf("a.doctor_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, fmt.Sprintf("(a.patient_name ILIKE $%d OR a.patient_phone ILIKE $%d OR a.patient_email ILIKE $%d)",
			len(args), len(args), len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM appointments a`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("appointments: count failed: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := `SELECT ` + appointmentColumns + appointmentFrom + where +
		fmt.Sprintf(` ORDER BY a.created_at DESC, a.id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	items, err := r.many(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListByTelegramID returns the chat user's live bookings, soonest first.
func (r *PostgresRepository) ListByTelegramID(ctx context.Context, telegramID string) ([]models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + appointmentFrom +
		` WHERE a.telegram_id = $1 AND a.status <> 'cancelled' ORDER BY a.appointment_date, a.appointment_time`
	return r.many(ctx, query, telegramID)
}

func (r *PostgresRepository) ListByPatient(ctx context.Context, patientID int64) ([]models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + appointmentFrom +
		` WHERE a.patient_id = $1 ORDER BY a.appointment_date DESC, a.appointment_time DESC`
	return r.many(ctx, query, patientID)
}

func (r *PostgresRepository) many(ctx context.Context, query string, args ...any) ([]models.Appointment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	defer rows.Close()

	items := make([]models.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	return items, nil
}

// ActiveTimes lists the slot times held by non-cancelled appointments.
func (r *PostgresRepository) ActiveTimes(ctx context.Context, doctorID int64, date string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT appointment_time FROM appointments
		WHERE doctor_id = $1 AND appointment_date = $2::date AND status <> 'cancelled'`,
		doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("appointments: active times failed: %w", err)
	}
	defer rows.Close()

	times := make([]string, 0)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: active times failed: %w", err)
	}
	return times, nil
}

func (r *PostgresRepository) IsTaken(ctx context.Context, doctorID int64, date, clock string, excludeID int64) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM appointments
			WHERE doctor_id = $1 AND appointment_date = $2::date AND appointment_time = $3
			AND status <> 'cancelled' AND id <> $4)`,
		doctorID, date, clock, excludeID,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("appointments: slot check failed: %w", err)
	}
	return taken, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int64, status string) (models.Appointment, error) {
	query := `WITH a AS (
			UPDATE appointments SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING *
		)
		SELECT ` + appointmentColumns + ` FROM a LEFT JOIN doctors d ON d.id = a.doctor_id`
	return r.one(ctx, "update status", query, id, status)
}

func (r *PostgresRepository) Reschedule(ctx context.Context, id int64, date, clock string) (models.Appointment, error) {
	query := `WITH a AS (
			UPDATE appointments SET appointment_date = $2::date, appointment_time = $3, updated_at = NOW()
			WHERE id = $1 RETURNING *
		)
		SELECT ` + appointmentColumns + ` FROM a LEFT JOIN doctors d ON d.id = a.doctor_id`
	return r.one(ctx, "reschedule", query, id, date, clock)
}
