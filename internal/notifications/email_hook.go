package notifications

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
)

type AppointmentMailer interface {
	SendAppointmentConfirmation(ctx context.Context, appointment models.Appointment, clinic models.HospitalSettings) (string, error)
}

type ClinicSettings interface {
	Settings(ctx context.Context) (models.HospitalSettings, error)
}

// EmailHook mails a confirmation for every new web appointment that carries
// an e-mail address. Sending happens in the background.
type EmailHook struct {
	mailer   AppointmentMailer
	settings ClinicSettings
	log      *slog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewEmailHook(mailer AppointmentMailer, settings ClinicSettings, log *slog.Logger) *EmailHook {
	return &EmailHook{mailer: mailer, settings: settings, log: log}
}

func (h *EmailHook) AppointmentCreated(a models.Appointment) {
	if h == nil || h.mailer == nil || a.Channel != models.ChannelWeb || strings.TrimSpace(a.PatientEmail) == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		h.log.Warn("appointments email: hook closed, not sending", slog.String("token", a.Token))
		return
	}
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.send(a)
	}()
}

func (h *EmailHook) AppointmentStatusChanged(models.Appointment, string) {}

// Close stops accepting new sends and blocks until in-flight ones finish.
// It is safe to call more than once.
func (h *EmailHook) Close() {
	if h == nil {
		return
	}
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	h.wg.Wait()
}

func (h *EmailHook) send(a models.Appointment) {
	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	var clinic models.HospitalSettings
	if h.settings != nil {
		s, err := h.settings.Settings(ctx)
		if err != nil {
			h.log.Warn("appointments email: settings unavailable", slog.String("error", err.Error()))
		} else {
			clinic = s
		}
	}

	messageID, err := h.mailer.SendAppointmentConfirmation(ctx, a, clinic)
	if err != nil {
		h.log.Warn("appointments email: send failed",
			slog.String("token", a.Token),
			slog.String("email", a.PatientEmail),
			slog.String("error", err.Error()),
		)
		return
	}
	h.log.Info("appointments email: sent",
		slog.String("token", a.Token),
		slog.String("message_id", messageID),
	)
}
