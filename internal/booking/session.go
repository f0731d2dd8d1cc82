package booking

// State is a step of the chat conversation.
type State string

const (
	StateMainMenu          State = "main_menu"
	StateCollectingName    State = "collecting_name"
	StateCollectingPhone   State = "collecting_phone"
	StateCollectingAge     State = "collecting_age"
	StateCollectingGender  State = "collecting_gender"
	StateCollectingConcern State = "collecting_concern"
	StateChoosingDoctor    State = "choosing_doctor"
	StateChoosingDate      State = "choosing_date"
	StateChoosingTime      State = "choosing_time"
	StateConfirming        State = "confirming"
	StateComplete          State = "complete"

	StateViewAppointment  State = "view_appointment"
	StateReschedulingDate State = "rescheduling_date"
	StateReschedulingTime State = "rescheduling_time"
)

// predecessors drives the back action.
var predecessors = map[State]State{
	StateCollectingName:    StateMainMenu,
	StateCollectingPhone:   StateCollectingName,
	StateCollectingAge:     StateCollectingPhone,
	StateCollectingGender:  StateCollectingAge,
	StateCollectingConcern: StateCollectingGender,
	StateChoosingDoctor:    StateCollectingConcern,
	StateChoosingDate:      StateChoosingDoctor,
	StateChoosingTime:      StateChoosingDate,
	StateConfirming:        StateChoosingTime,
	StateComplete:          StateMainMenu,
	StateViewAppointment:   StateMainMenu,
	StateReschedulingDate:  StateViewAppointment,
	StateReschedulingTime:  StateReschedulingDate,
}

// Previous returns the state the back action leads to.
func Previous(s State) State {
	if p, ok := predecessors[s]; ok {
		return p
	}
	return StateMainMenu
}

// Booking is the not-yet-committed booking context.
type Booking struct {
	Name           string `json:"name,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Age            int    `json:"age,omitempty"`
	Gender         string `json:"gender,omitempty"`
	Concern        string `json:"concern,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	DoctorID       int64  `json:"doctorId,omitempty"`
	DoctorName     string `json:"doctorName,omitempty"`
	Date           string `json:"date,omitempty"`
	Time           string `json:"time,omitempty"`
}

// Managed is the existing appointment being viewed or rescheduled. Granted
// is set when the session opened it with the full booking reference rather
// than from its own chat's list.
type Managed struct {
	Token         string `json:"token,omitempty"`
	AppointmentID int64  `json:"appointmentId,omitempty"`
	DoctorID      int64  `json:"doctorId,omitempty"`
	Date          string `json:"date,omitempty"`
	Granted       bool   `json:"granted,omitempty"`
}

// Session is one chat's conversation. The transport adapter owns it and
// hands it to Flow.Handle for every inbound event.
type Session struct {
	ChatID          string  `json:"chatId"`
	State           State   `json:"state"`
	Booking         Booking `json:"booking"`
	Managed         Managed `json:"managed"`
	Month           string  `json:"month,omitempty"`
	AwaitingConcern bool    `json:"awaitingConcern,omitempty"`
}

func NewSession(chatID string) *Session {
	return &Session{ChatID: chatID, State: StateMainMenu}
}

// Reset drops everything but the chat id.
func (s *Session) Reset() {
	*s = Session{ChatID: s.ChatID, State: StateMainMenu}
}

func (s *Session) setConcern(concern, specialization string) {
	s.Booking.Concern = concern
	s.Booking.Specialization = specialization
	s.AwaitingConcern = false
	s.setDoctor(0, "")
}

func (s *Session) setDoctor(id int64, name string) {
	s.Booking.DoctorID = id
	s.Booking.DoctorName = name
	s.Month = ""
	s.setDate("")
}

func (s *Session) setDate(date string) {
	s.Booking.Date = date
	s.Booking.Time = ""
}
