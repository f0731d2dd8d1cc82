package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
)

const (
	brevoEndpoint     = "https://api.brevo.com/v3/smtp/email"
	brevoMaxErrorBody = 4096
)

var ErrMissingRecipient = errors.New("notifications: missing recipient email")

// BrevoError is a non-2xx answer from the transactional e-mail API.
type BrevoError struct {
	Status int
	Body   string
}

func (e *BrevoError) Error() string {
	return fmt.Sprintf("brevo send failed: status=%d body=%s", e.Status, e.Body)
}

type mailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailMessage struct {
	Sender      mailAddress       `json:"sender"`
	To          []mailAddress     `json:"to"`
	ReplyTo     *mailAddress      `json:"replyTo,omitempty"`
	Subject     string            `json:"subject"`
	HTMLContent string            `json:"htmlContent"`
	Tags        []string          `json:"tags,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
}

type mailAccepted struct {
	MessageID string `json:"messageId"`
}

// BrevoClient sends appointment mail through Brevo's SMTP API.
type BrevoClient struct {
	apiKey   string
	from     mailAddress
	sandbox  bool
	endpoint string
	rest     *resty.Client
}

// NewBrevoClient returns nil when the API key or sender is missing; callers
// treat a nil client as "e-mail disabled".
func NewBrevoClient(apiKey, senderEmail, senderName string, sandbox bool) *BrevoClient {
	apiKey = strings.TrimSpace(apiKey)
	senderEmail = strings.TrimSpace(senderEmail)
	if apiKey == "" || senderEmail == "" {
		return nil
	}
	from := mailAddress{Email: senderEmail, Name: strings.TrimSpace(senderName)}
	if from.Name == "" {
		from.Name = senderEmail
	}
	return &BrevoClient{
		apiKey:   apiKey,
		from:     from,
		sandbox:  sandbox,
		endpoint: brevoEndpoint,
		rest: resty.New().
			SetTimeout(8*time.Second).
			SetHeader("Accept", "application/json"),
	}
}

// WithEndpoint points the client at another URL, e.g. an httptest server.
func (c *BrevoClient) WithEndpoint(endpoint string) *BrevoClient {
	c.endpoint = endpoint
	return c
}

// SendAppointmentConfirmation mails the patient their booking reference and
// returns Brevo's message id. Replies go to the clinic address when set.
func (c *BrevoClient) SendAppointmentConfirmation(ctx context.Context, a models.Appointment, clinic models.HospitalSettings) (string, error) {
	to := strings.TrimSpace(a.PatientEmail)
	if to == "" {
		return "", ErrMissingRecipient
	}
	body, err := buildAppointmentConfirmationHTML(a, clinic)
	if err != nil {
		return "", fmt.Errorf("notifications: render confirmation: %w", err)
	}

	msg := mailMessage{
		Sender:      c.from,
		To:          []mailAddress{{Email: to, Name: a.PatientName}},
		Subject:     fmt.Sprintf("Appointment request %s - %s", a.Token, clinic.Name),
		HTMLContent: body,
		Tags:        []string{"appointment", a.Status},
	}
	if clinic.Email != "" {
		msg.ReplyTo = &mailAddress{Email: clinic.Email, Name: clinic.Name}
	}
	return c.deliver(ctx, msg)
}

func (c *BrevoClient) deliver(ctx context.Context, msg mailMessage) (string, error) {
	if c.sandbox {
		msg.Headers = map[string]string{"X-Sib-Sandbox": "drop"}
	}

	var accepted mailAccepted
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("api-key", c.apiKey).
		SetBody(msg).
		SetResult(&accepted).
		Post(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("brevo request failed: %w", err)
	}
	if resp.IsError() {
		body := strings.TrimSpace(resp.String())
		if len(body) > brevoMaxErrorBody {
			body = body[:brevoMaxErrorBody]
		}
		return "", &BrevoError{Status: resp.StatusCode(), Body: body}
	}
	if accepted.MessageID == "" {
		return "", errors.New("brevo response missing messageId")
	}
	return accepted.MessageID, nil
}
