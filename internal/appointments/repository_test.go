package appointments

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
)

var appointmentRowColumns = []string{
	"id", "token", "patient_id", "doctor_id", "doctor_name",
	"patient_name", "patient_email", "patient_phone", "patient_age", "patient_gender", "telegram_id",
	"specialization", "appointment_date", "appointment_time", "status", "notes", "channel",
	"created_at", "updated_at",
}

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *PostgresRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewRepositoryWithDB(mock)
}

func appointmentRow(rows *pgxmock.Rows, id, doctorID int64, status string) *pgxmock.Rows {
	now := time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC)
	return rows.AddRow(id, fmt.Sprintf("APT-TESTTOKEN%06d", id), int64(5), doctorID, "Kannan S",
		"Jane Doe", "jane@example.com", "9876543210", 34, "female", "",
		"General Dentistry", "2025-03-10", "09:00", status, "", models.ChannelWeb,
		now, now)
}

func TestRepositoryInsert(t *testing.T) {
	mock, repo := newMock(t)
	doctorID, patientID := int64(1), int64(5)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO appointments`)).
		WithArgs("APT-TESTTOKEN000012", pgxmock.AnyArg(), pgxmock.AnyArg(), "Jane Doe", "jane@example.com", "9876543210", 34,
			"female", "", "General Dentistry", "2025-03-10", "09:00", models.AppointmentStatusPending, "", models.ChannelWeb).
		WillReturnRows(appointmentRow(pgxmock.NewRows(appointmentRowColumns), 12, 1, models.AppointmentStatusPending))

	a, err := repo.Insert(context.Background(), models.Appointment{
		Token:     "APT-TESTTOKEN000012",
		PatientID: &patientID, DoctorID: &doctorID,
		PatientName: "Jane Doe", PatientEmail: "jane@example.com", PatientPhone: "9876543210",
		PatientAge: 34, PatientGender: "female", Specialization: "General Dentistry",
		Date: "2025-03-10", Time: "09:00", Status: models.AppointmentStatusPending, Channel: models.ChannelWeb,
	})
	require.NoError(t, err)
	assert.Equal(t, "APT-TESTTOKEN000012", a.Token)
	assert.Equal(t, "Kannan S", a.DoctorName)
	require.NotNil(t, a.DoctorID)
	assert.Equal(t, int64(1), *a.DoctorID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryInsertSlotTaken(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO appointments`)).
		WithArgs(anyArgs(15)...).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "appointments_live_slot_idx"})

	_, err := repo.Insert(context.Background(), models.Appointment{Date: "2025-03-10", Time: "09:00"})
	assert.ErrorIs(t, err, ErrSlotTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryInsertTokenCollision(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO appointments`)).
		WithArgs(anyArgs(15)...).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "appointments_token_uq"})

	_, err := repo.Insert(context.Background(), models.Appointment{Token: "APT-TESTTOKEN000001", Date: "2025-03-10", Time: "09:00"})
	assert.ErrorIs(t, err, ErrTokenTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByToken(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE a.token = $1`)).
		WithArgs("APT-TESTTOKEN000007").
		WillReturnRows(appointmentRow(pgxmock.NewRows(appointmentRowColumns), 7, 1, models.AppointmentStatusPending))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE a.token = $1`)).
		WithArgs("APT-0000000000000007").
		WillReturnError(pgx.ErrNoRows)

	a, err := repo.GetByToken(context.Background(), "APT-TESTTOKEN000007")
	require.NoError(t, err)
	assert.Equal(t, int64(7), a.ID)
	assert.Equal(t, "APT-TESTTOKEN000007", a.Token)

	_, err = repo.GetByToken(context.Background(), "APT-0000000000000007")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByIDWithoutDoctor(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE a.id = $1`)).
		WithArgs(int64(3)).
		WillReturnRows(appointmentRow(pgxmock.NewRows(appointmentRowColumns), 3, 0, models.AppointmentStatusConfirmed))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE a.id = $1`)).
		WithArgs(int64(4)).
		WillReturnError(pgx.ErrNoRows)

	a, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Nil(t, a.DoctorID)
	require.NotNil(t, a.PatientID)
	assert.Equal(t, int64(5), *a.PatientID)

	_, err = repo.GetByID(context.Background(), 4)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListFilters(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM appointments a WHERE a.status = $1 AND a.appointment_date = $2::date AND a.doctor_id = $3`)).
		WithArgs("pending", "2025-03-10", int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(7)))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY a.created_at DESC, a.id DESC LIMIT $4 OFFSET $5`)).
		WithArgs("pending", "2025-03-10", int64(1), int64(2), int64(0)).
		WillReturnRows(appointmentRow(appointmentRow(pgxmock.NewRows(appointmentRowColumns),
			9, 1, models.AppointmentStatusPending), 8, 1, models.AppointmentStatusPending))

	items, total, err := repo.List(context.Background(), ListFilter{Status: "pending", Date: "2025-03-10", DoctorID: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	require.Len(t, items, 2)
	assert.Equal(t, "APT-TESTTOKEN000009", items[0].Token)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryActiveTimes(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`status <> 'cancelled'`)).
		WithArgs(int64(1), "2025-03-10").
		WillReturnRows(pgxmock.NewRows([]string{"appointment_time"}).AddRow("09:00").AddRow("14:00"))

	times, err := repo.ActiveTimes(context.Background(), 1, "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "14:00"}, times)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryIsTaken(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs(int64(1), "2025-03-10", "09:00", int64(4)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs(int64(1), "2025-03-10", "10:00", int64(0)).
		WillReturnError(errors.New("connection reset"))

	taken, err := repo.IsTaken(context.Background(), 1, "2025-03-10", "09:00", 4)
	require.NoError(t, err)
	assert.True(t, taken)

	_, err = repo.IsTaken(context.Background(), 1, "2025-03-10", "10:00", 0)
	assert.Contains(t, err.Error(), "appointments: slot check failed")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryRescheduleCollision(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE appointments SET appointment_date = $2::date`)).
		WithArgs(int64(3), "2025-03-11", "10:00").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Reschedule(context.Background(), 3, "2025-03-11", "10:00")
	assert.ErrorIs(t, err, ErrSlotTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdateStatus(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE appointments SET status = $2`)).
		WithArgs(int64(3), "confirmed").
		WillReturnRows(appointmentRow(pgxmock.NewRows(appointmentRowColumns), 3, 1, models.AppointmentStatusConfirmed))

	a, err := repo.UpdateStatus(context.Background(), 3, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusConfirmed, a.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}
