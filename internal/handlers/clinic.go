package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/httpx"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/schedule"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/transport"
)

type ClinicInfo struct {
	Name     string      `json:"name"`
	Address  string      `json:"address"`
	Phones   []string    `json:"phones"`
	Email    string      `json:"email,omitempty"`
	Hours    ClinicHours `json:"hours"`
	Summary  string      `json:"workingHours,omitempty"`
	MapsLink string      `json:"mapsLink"`
}

type ClinicHours struct {
	Weekdays string `json:"weekdays"`
	Saturday string `json:"saturday"`
	Sunday   string `json:"sunday"`
}

// GetClinic serves GET /clinic. Opening hours are derived from the booking
// templates so the two never disagree.
func (s *Server) GetClinic(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	settings, err := s.Clinic.Settings(ctx)
	if err != nil {
		log.Error("clinic info: settings error", slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, clinicInfo(settings))
}

func clinicInfo(settings models.HospitalSettings) ClinicInfo {
	phones := make([]string, 0, 2)
	for _, p := range strings.Split(settings.Phone, ",") {
		if p = strings.TrimSpace(p); p != "" {
			phones = append(phones, p)
		}
	}
	return ClinicInfo{
		Name:    settings.Name,
		Address: settings.Address,
		Phones:  phones,
		Email:   settings.Email,
		Hours: ClinicHours{
			Weekdays: "Monday - Friday: " + hoursFor(time.Monday),
			Saturday: "Saturday: " + hoursFor(time.Saturday),
			Sunday:   "Sunday: " + hoursFor(time.Sunday),
		},
		Summary:  settings.WorkingHours,
		MapsLink: "https://maps.google.com/?q=" + url.QueryEscape(settings.Name+" "+settings.Address),
	}
}

// hoursFor spans the first template slot to the end of the last one-hour slot.
func hoursFor(day time.Weekday) string {
	slots := schedule.TemplateFor(day)
	if len(slots) == 0 {
		return "Closed"
	}
	open, err1 := time.Parse(schedule.ClockLayout, slots[0])
	last, err2 := time.Parse(schedule.ClockLayout, slots[len(slots)-1])
	if err1 != nil || err2 != nil {
		return strings.Join(slots, ", ")
	}
	return fmt.Sprintf("%s - %s", open.Format("3:04 PM"), last.Add(time.Hour).Format("3:04 PM"))
}

type classifyRequest struct {
	Text string `json:"text" validate:"required"`
}

// ClassifySpecialization serves POST /ai/specialization.
func (s *Server) ClassifySpecialization(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	var req classifyRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("classify: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if err := s.Val.Struct(req); err != nil {
		log.Warn("classify: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(s.Val.ValidationErrors(err)))
		return
	}

	label := s.Classifier.Classify(req.Text)
	log.Info("classify: ok", slog.String("specialization", label))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"specialization": label})
}
