// Package webchat serves the website's chat widget. Every request is
// stateless: it runs on a fresh booking session, and post-booking actions
// carry the booking reference that the web form returned.
package webchat

import (
	"context"
	"strings"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/apperr"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/booking"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/telegram"
)

const (
	ChatPostBooking = "post-booking"
	ChatGeneral     = "general-inquiry"

	// sessionID is the chat identity of widget sessions. No booking carries
	// it, so chat bookings stay private to Telegram.
	sessionID = "web"

	bookPath = "/book"
)

// Actions understood by the widget.
const (
	ActionShowAppointment = "show_appointment"
	ActionCalendarLink    = "calendar_link"
	ActionReschedule      = "reschedule"
	ActionCancel          = "cancel"

	ActionBook     = "book_appointment"
	ActionInfo     = "show_info"
	ActionDoctors  = "show_doctors"
	ActionHours    = "show_hours"
	ActionLocation = "show_location"
	ActionContact  = "show_contact"
)

type MenuOption struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Action string `json:"action,omitempty"`
	URL    string `json:"url,omitempty"`
}

type Response struct {
	Message string            `json:"message"`
	Menu    []MenuOption      `json:"menu,omitempty"`
	Data    map[string]string `json:"data,omitempty"`
}

var postBookingMenu = []MenuOption{
	{ID: "view_details", Label: "📋 View Details", Action: ActionShowAppointment},
	{ID: "add_calendar", Label: "📅 Add to Calendar", Action: ActionCalendarLink},
	{ID: "reschedule", Label: "🔁 Reschedule", Action: ActionReschedule},
	{ID: "cancel", Label: "❌ Cancel Appointment", Action: ActionCancel},
}

var generalMenu = []MenuOption{
	{ID: "book", Label: "🩺 Book Appointment", Action: ActionBook},
	{ID: "info", Label: "🏥 Hospital Info", Action: ActionInfo},
	{ID: "doctors", Label: "👨‍⚕️ Our Doctors", Action: ActionDoctors},
	{ID: "hours", Label: "🕐 Working Hours", Action: ActionHours},
	{ID: "location", Label: "📍 Location", Action: ActionLocation},
	{ID: "contact", Label: "☎️ Contact Us", Action: ActionContact},
}

// generalTopics maps widget actions onto the chat main menu.
var generalTopics = map[string]string{
	ActionInfo:     booking.MenuClinic,
	ActionDoctors:  booking.MenuDoctors,
	ActionHours:    booking.MenuHours,
	ActionLocation: booking.MenuLocation,
	ActionContact:  booking.MenuContact,
}

// Flow is the part of booking.Flow the widget drives.
type Flow interface {
	Handle(ctx context.Context, s *booking.Session, ev booking.Event) (booking.Reply, error)
	Open(ctx context.Context, s *booking.Session, token string) (booking.Reply, error)
}

type Classifier interface {
	Classify(text string) string
}

type Option func(*Service)

// WithBotUsername lets reschedule answers point at the Telegram bot, where
// the booking opens through a deep link.
func WithBotUsername(username string) Option {
	return func(s *Service) { s.botUsername = strings.TrimPrefix(strings.TrimSpace(username), "@") }
}

type Service struct {
	flow        Flow
	classifier  Classifier
	botUsername string
}

func NewService(flow Flow, classifier Classifier, opts ...Option) *Service {
	s := &Service{flow: flow, classifier: classifier}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Menu returns the widget title and options for a chat type.
func (s *Service) Menu(chatType string) (string, []MenuOption, error) {
	switch chatType {
	case ChatPostBooking:
		return "Appointment Confirmed! 🎉", postBookingMenu, nil
	case ChatGeneral:
		return "How can I help you? 👋", generalMenu, nil
	default:
		return "", nil, apperr.Validation("chatType", "must be post-booking or general-inquiry")
	}
}

// Action runs one widget button.
func (s *Service) Action(ctx context.Context, chatType, action, token string) (Response, error) {
	switch chatType {
	case ChatPostBooking:
		return s.postBooking(ctx, action, token)
	case ChatGeneral:
		return s.general(ctx, action)
	default:
		return Response{}, apperr.Validation("chatType", "must be post-booking or general-inquiry")
	}
}

func (s *Service) postBooking(ctx context.Context, action, token string) (Response, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Response{}, apperr.Required("appointmentToken")
	}
	session := booking.NewSession(sessionID)

	switch action {
	case ActionShowAppointment:
		reply, err := s.flow.Open(ctx, session, token)
		if err != nil {
			return Response{}, err
		}
		return Response{Message: reply.Text, Menu: postBookingMenu}, nil
	case ActionCalendarLink:
		reply, err := s.flow.Open(ctx, session, token)
		if err != nil {
			return Response{}, err
		}
		link := firstURL(reply)
		if link == "" {
			return Response{Message: "This appointment cannot be added to a calendar.", Menu: postBookingMenu}, nil
		}
		return Response{
			Message: "📅 Click the link below to add to your calendar!",
			Menu:    postBookingMenu,
			Data:    map[string]string{"calendarUrl": link},
		}, nil
	case ActionReschedule:
		if _, err := s.flow.Open(ctx, session, token); err != nil {
			return Response{}, err
		}
		resp := Response{
			Message: "🔁 To reschedule your appointment, please visit the booking page.",
			Menu:    postBookingMenu,
			Data:    map[string]string{"redirectUrl": bookPath},
		}
		if link := telegram.DeepLink(s.botUsername, token); link != "" {
			resp.Message = "🔁 You can pick a new time in our Telegram bot, or visit the booking page."
			resp.Data["telegramUrl"] = link
		}
		return resp, nil
	case ActionCancel:
		if _, err := s.flow.Open(ctx, session, token); err != nil {
			return Response{}, err
		}
		reply, err := s.flow.Handle(ctx, session, booking.Press(booking.KindCxlAppt, token))
		if err != nil {
			return Response{}, err
		}
		if session.State == booking.StateViewAppointment {
			// the flow refused and re-showed the appointment
			return Response{Message: reply.Text, Menu: postBookingMenu}, nil
		}
		return Response{Message: "❌ " + firstLine(reply.Text)}, nil
	default:
		return Response{}, apperr.Validation("action", "is not a post-booking action")
	}
}

func (s *Service) general(ctx context.Context, action string) (Response, error) {
	if action == ActionBook {
		return Response{
			Message: "🩺 Ready to book your appointment? Click below to get started!",
			Menu:    generalMenu,
			Data:    map[string]string{"redirectUrl": bookPath},
		}, nil
	}
	topic, ok := generalTopics[action]
	if !ok {
		return Response{}, apperr.Validation("action", "is not a general-inquiry action")
	}
	reply, err := s.flow.Handle(ctx, booking.NewSession(sessionID), booking.Press(booking.KindMenu, topic))
	if err != nil {
		return Response{}, err
	}
	resp := Response{Message: reply.Text, Menu: generalMenu}
	switch action {
	case ActionLocation:
		if link := firstURL(reply); link != "" {
			resp.Data = map[string]string{"mapUrl": link}
		}
	case ActionDoctors:
		resp.Data = map[string]string{"redirectUrl": "/doctors"}
	}
	return resp, nil
}

// Message answers free text. Post-booking chats get their menu back; general
// chats also get a specialization suggestion for a described concern.
func (s *Service) Message(ctx context.Context, chatType, text string) (Response, error) {
	text = strings.TrimSpace(text)
	switch chatType {
	case ChatPostBooking:
		return Response{Message: "I can help you with your appointment! Choose an option below:", Menu: postBookingMenu}, nil
	case ChatGeneral:
	default:
		return Response{}, apperr.Validation("chatType", "must be post-booking or general-inquiry")
	}

	resp := Response{Message: "How can I assist you today? Choose an option below:", Menu: generalMenu}
	if text == "" || s.classifier == nil {
		return resp, nil
	}
	label := s.classifier.Classify(text)
	if label == "" || label == models.DefaultSpecialization {
		return resp, nil
	}
	resp.Message = "It sounds like " + label + " could help. You can book a visit or choose another option below:"
	resp.Data = map[string]string{"specialization": label, "redirectUrl": bookPath}
	return resp, nil
}

func firstURL(r booking.Reply) string {
	for _, line := range r.Buttons {
		for _, b := range line {
			if b.URL != "" {
				return b.URL
			}
		}
	}
	return ""
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return line
}
