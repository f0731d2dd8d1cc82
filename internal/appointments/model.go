package appointments

import (
	"strings"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
)

// CreateInput is the canonical booking request. Client aliases are folded
// into it by NormalizeCreate.
type CreateInput struct {
	PatientName    string
	PatientEmail   string
	PatientPhone   string
	PatientAge     int
	PatientGender  string
	TelegramID     string
	Specialization string
	DoctorID       *int64
	DoctorName     string
	Date           string
	Time           string
	Notes          string
}

func (in *CreateInput) trim() {
	in.PatientName = strings.TrimSpace(in.PatientName)
	in.PatientEmail = strings.ToLower(strings.TrimSpace(in.PatientEmail))
	in.PatientPhone = strings.TrimSpace(in.PatientPhone)
	in.PatientGender = strings.ToLower(strings.TrimSpace(in.PatientGender))
	in.TelegramID = strings.TrimSpace(in.TelegramID)
	in.Specialization = strings.TrimSpace(in.Specialization)
	in.DoctorName = strings.TrimSpace(in.DoctorName)
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.Notes = strings.TrimSpace(in.Notes)
}

type ListFilter struct {
	Status   string
	Date     string
	DoctorID int64
	Search   string
	Limit    int64
	Offset   int64
}

type StatusRequest struct {
	Status   string `json:"status" validate:"required"`
	Override bool   `json:"override"`
}

type RescheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
	// aliases sent by older admin clients
	AppointmentDate string `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
}

func (r *RescheduleRequest) Normalize() {
	if strings.TrimSpace(r.Date) == "" {
		r.Date = r.AppointmentDate
	}
	if strings.TrimSpace(r.Time) == "" {
		r.Time = r.AppointmentTime
	}
	r.Date = strings.TrimSpace(r.Date)
	r.Time = strings.TrimSpace(r.Time)
	r.AppointmentDate, r.AppointmentTime = "", ""
}

// Created is returned by the create endpoints.
type Created struct {
	Success     bool               `json:"success"`
	Token       string             `json:"token"`
	Appointment models.Appointment `json:"appointment"`
}
