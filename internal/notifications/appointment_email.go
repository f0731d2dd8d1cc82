package notifications

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
)

const appointmentConfirmationTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Hello {{.Name}},</p>
  <p>We have received your appointment request at {{.Clinic}}. Here are the details:</p>
  <ul>
    <li>Reference: {{.Token}}</li>
    <li>Treatment: {{.Specialization}}</li>
    {{if .Doctor}}<li>Doctor: Dr. {{.Doctor}}</li>{{end}}
    <li>Date: {{.Date}}</li>
    <li>Time: {{.Time}}</li>
    <li>Status: {{.Status}}</li>
  </ul>
  {{if eq .Status "Pending"}}<p>Our front desk will call you to confirm the visit.</p>{{end}}
  {{if .Address}}<p>Address: {{.Address}}</p>{{end}}
  {{if .Phone}}<p>Questions? Call us on {{.Phone}}.</p>{{end}}
  <p>Thank you.</p>
</body>
</html>`

var appointmentConfirmationTmpl = template.Must(template.New("appointment_confirmation").Parse(appointmentConfirmationTemplate))

type appointmentConfirmationData struct {
	Name           string
	Clinic         string
	Token          string
	Specialization string
	Doctor         string
	Date           string
	Time           string
	Status         string
	Address        string
	Phone          string
}

func buildAppointmentConfirmationHTML(appointment models.Appointment, clinic models.HospitalSettings) (string, error) {
	data := appointmentConfirmationData{
		Name:           appointment.PatientName,
		Clinic:         clinic.Name,
		Token:          appointment.Token,
		Specialization: appointment.Specialization,
		Doctor:         appointment.DoctorName,
		Date:           appointment.Date,
		Time:           appointment.Time,
		Status:         statusLabel(appointment.Status),
		Address:        clinic.Address,
		Phone:          clinic.Phone,
	}
	var buf bytes.Buffer
	if err := appointmentConfirmationTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func statusLabel(status string) string {
	if status == "" {
		return ""
	}
	return strings.ToUpper(status[:1]) + status[1:]
}
