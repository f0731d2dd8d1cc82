package dashboard

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
)

type Repository interface {
	Counts(ctx context.Context) (Stats, error)
	RecentAppointments(ctx context.Context, limit int) ([]models.Appointment, error)
	Doctors(ctx context.Context) ([]models.Doctor, error)
	Patients(ctx context.Context) ([]models.Patient, error)
	Appointments(ctx context.Context) ([]models.Appointment, error)
}

type dashboardDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresRepository struct {
	db dashboardDB
}

func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("dashboard: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewRepositoryWithDB accepts any pgx-compatible handle, e.g. pgxmock.
func NewRepositoryWithDB(conn dashboardDB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

const countsQuery = `SELECT
	(SELECT COUNT(*) FROM doctors),
	(SELECT COUNT(*) FROM doctors WHERE is_active),
	(SELECT COUNT(*) FROM specializations),
	(SELECT COUNT(*) FROM specializations WHERE is_active),
	(SELECT COUNT(*) FROM patients),
	COUNT(*),
	COUNT(*) FILTER (WHERE status = 'pending'),
	COUNT(*) FILTER (WHERE status = 'confirmed'),
	COUNT(*) FILTER (WHERE status = 'completed'),
	COUNT(*) FILTER (WHERE status = 'cancelled')
	FROM appointments`

func (r *PostgresRepository) Counts(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.db.QueryRow(ctx, countsQuery).Scan(
		&s.TotalDoctors, &s.ActiveDoctors,
		&s.TotalSpecializations, &s.ActiveSpecializations,
		&s.TotalPatients,
		&s.TotalAppointments, &s.PendingAppointments, &s.ConfirmedAppointments,
		&s.CompletedAppointments, &s.CancelledAppointments,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("dashboard: counts failed: %w", err)
	}
	return s, nil
}

const appointmentExportColumns = `a.id, a.token, COALESCE(d.name, ''), a.patient_name, a.patient_email, a.patient_phone,
	a.specialization, to_char(a.appointment_date, 'YYYY-MM-DD'), a.appointment_time, a.status, a.channel, a.created_at
	FROM appointments a LEFT JOIN doctors d ON d.id = a.doctor_id`

func (r *PostgresRepository) RecentAppointments(ctx context.Context, limit int) ([]models.Appointment, error) {
	return r.appointments(ctx, `SELECT `+appointmentExportColumns+` ORDER BY a.created_at DESC, a.id DESC LIMIT $1`, limit)
}

func (r *PostgresRepository) Appointments(ctx context.Context) ([]models.Appointment, error) {
	return r.appointments(ctx, `SELECT `+appointmentExportColumns+` ORDER BY a.appointment_date, a.appointment_time, a.id`)
}

func (r *PostgresRepository) appointments(ctx context.Context, query string, args ...any) ([]models.Appointment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("dashboard: appointments failed: %w", err)
	}
	defer rows.Close()

	items := make([]models.Appointment, 0)
	for rows.Next() {
		var a models.Appointment
		if err := rows.Scan(&a.ID, &a.Token, &a.DoctorName, &a.PatientName, &a.PatientEmail, &a.PatientPhone,
			&a.Specialization, &a.Date, &a.Time, &a.Status, &a.Channel, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("dashboard: scan appointment failed: %w", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dashboard: appointments failed: %w", err)
	}
	return items, nil
}

func (r *PostgresRepository) Doctors(ctx context.Context) ([]models.Doctor, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, specialization, COALESCE(email, ''), phone, experience_years, is_active
		FROM doctors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("dashboard: doctors failed: %w", err)
	}
	defer rows.Close()

	items := make([]models.Doctor, 0)
	for rows.Next() {
		var d models.Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.Specialization, &d.Email, &d.Phone, &d.ExperienceYears, &d.IsActive); err != nil {
			return nil, fmt.Errorf("dashboard: scan doctor failed: %w", err)
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dashboard: doctors failed: %w", err)
	}
	return items, nil
}

func (r *PostgresRepository) Patients(ctx context.Context) ([]models.Patient, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, COALESCE(email, ''), COALESCE(phone, ''), age, gender, created_at
		FROM patients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("dashboard: patients failed: %w", err)
	}
	defer rows.Close()

	items := make([]models.Patient, 0)
	for rows.Next() {
		var p models.Patient
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Age, &p.Gender, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("dashboard: scan patient failed: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dashboard: patients failed: %w", err)
	}
	return items, nil
}
