package dashboard

import (
	"time"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
)

type Stats struct {
	TotalDoctors          int64                `json:"totalDoctors"`
	ActiveDoctors         int64                `json:"activeDoctors"`
	TotalSpecializations  int64                `json:"totalSpecializations"`
	ActiveSpecializations int64                `json:"activeSpecializations"`
	TotalPatients         int64                `json:"totalPatients"`
	TotalAppointments     int64                `json:"totalAppointments"`
	PendingAppointments   int64                `json:"pendingAppointments"`
	ConfirmedAppointments int64                `json:"confirmedAppointments"`
	CompletedAppointments int64                `json:"completedAppointments"`
	CancelledAppointments int64                `json:"cancelledAppointments"`
	RecentAppointments    []models.Appointment `json:"recentAppointments"`
}

// Snapshot is everything an export contains.
type Snapshot struct {
	GeneratedAt  time.Time
	Doctors      []models.Doctor
	Patients     []models.Patient
	Appointments []models.Appointment
}
