package models

import "time"

const (
	AppointmentStatusPending   = "pending"
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"

	ChannelWeb  = "web"
	ChannelChat = "chat"

	UserRoleAdmin = "admin"

	DefaultSpecialization = "General Dentistry"
)

var AppointmentStatuses = []string{
	AppointmentStatusPending,
	AppointmentStatusConfirmed,
	AppointmentStatusCompleted,
	AppointmentStatusCancelled,
}

func IsValidStatus(status string) bool {
	for _, s := range AppointmentStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Admin struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Specialization struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Doctor struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	Specialization   string    `json:"specialization"`
	SpecializationID *int64    `json:"specializationId,omitempty"`
	Qualification    string    `json:"qualification"`
	ExperienceYears  int       `json:"experience"`
	ConsultationFee  float64   `json:"consultationFee"`
	OPDTimings       string    `json:"opdTimings"`
	Languages        []string  `json:"languages"`
	Bio              string    `json:"bio,omitempty"`
	ImageURL         string    `json:"image,omitempty"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type Patient struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	TelegramID       string    `json:"telegramId,omitempty"`
	Age              int       `json:"age,omitempty"`
	Gender           string    `json:"gender,omitempty"`
	BloodGroup       string    `json:"bloodGroup,omitempty"`
	Address          string    `json:"address,omitempty"`
	EmergencyContact string    `json:"emergencyContact,omitempty"`
	MedicalHistory   string    `json:"medicalHistory,omitempty"`
	Allergies        string    `json:"allergies,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Appointment keeps a copy of the patient contact fields so that bookings
// coming from channels without a patient record stay readable.
type Appointment struct {
	ID             int64     `json:"id"`
	Token          string    `json:"token"`
	PatientID      *int64    `json:"patientId,omitempty"`
	DoctorID       *int64    `json:"doctorId,omitempty"`
	DoctorName     string    `json:"doctorName,omitempty"`
	PatientName    string    `json:"patientName"`
	PatientEmail   string    `json:"patientEmail,omitempty"`
	PatientPhone   string    `json:"patientPhone"`
	PatientAge     int       `json:"patientAge,omitempty"`
	PatientGender  string    `json:"patientGender,omitempty"`
	TelegramID     string    `json:"telegramId,omitempty"`
	Specialization string    `json:"specialization"`
	Date           string    `json:"appointmentDate"`
	Time           string    `json:"appointmentTime"`
	Status         string    `json:"status"`
	Notes          string    `json:"notes,omitempty"`
	Channel        string    `json:"channel"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Banner struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image"`
	Link        string    `json:"link,omitempty"`
	ButtonText  string    `json:"buttonText,omitempty"`
	SortOrder   int       `json:"order"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type HospitalSettings struct {
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	WorkingHours string    `json:"workingHours"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Slot is one template start time on a given day.
type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}
