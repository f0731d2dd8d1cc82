package booking

import "strings"

// Kind names a button press.
type Kind string

const (
	KindNoop    Kind = "noop"
	KindStart   Kind = "start"
	KindMenu    Kind = "menu"
	KindBack    Kind = "back"
	KindCancel  Kind = "cancel"
	KindHome    Kind = "home"
	KindGender  Kind = "gender"
	KindIssue   Kind = "issue"
	KindDoctor  Kind = "doctor"
	KindMonth   Kind = "month"
	KindDate    Kind = "date"
	KindTime    Kind = "time"
	KindConfirm Kind = "confirm"
	KindDecline Kind = "decline"
	KindView    Kind = "view"
	KindResched Kind = "resched"
	KindCxlAppt Kind = "cxl"
	KindRemind  Kind = "remind"
)

// Main menu entries.
const (
	MenuBook     = "book"
	MenuMine     = "mine"
	MenuClinic   = "clinic"
	MenuDoctors  = "doctors"
	MenuHours    = "hours"
	MenuContact  = "contact"
	MenuLocation = "location"
	deepLinkMark = "apt_"
)

type Action struct {
	Kind  Kind
	Value string
}

// Encode renders the action as compact callback data.
func (a Action) Encode() string {
	if a.Value == "" {
		return string(a.Kind)
	}
	return string(a.Kind) + "|" + a.Value
}

func ParseAction(data string) Action {
	kind, value, _ := strings.Cut(strings.TrimSpace(data), "|")
	if kind == "" {
		return Action{Kind: KindNoop}
	}
	return Action{Kind: Kind(kind), Value: value}
}

// Event is one inbound message: typed text or a button press.
type Event struct {
	Text   string
	Action Action
}

func Text(s string) Event { return Event{Text: s} }

func Press(kind Kind, value string) Event {
	return Event{Action: Action{Kind: kind, Value: value}}
}

// Start is the /start command, optionally with a deep-link payload.
func Start(payload string) Event { return Press(KindStart, strings.TrimSpace(payload)) }

// DeepLinkPayload is the /start payload that opens an appointment.
func DeepLinkPayload(token string) string { return deepLinkMark + token }

func (e Event) isPress() bool { return e.Action.Kind != "" }

// Button is either an action button or, when URL is set, a link.
type Button struct {
	Label  string
	Action Action
	URL    string
}

// Reply is what the transport renders back to the chat.
type Reply struct {
	Text    string
	Buttons [][]Button
}

// Empty reports whether there is nothing to send.
func (r Reply) Empty() bool { return r.Text == "" }

func button(label string, kind Kind, value string) Button {
	return Button{Label: label, Action: Action{Kind: kind, Value: value}}
}

func row(buttons ...Button) []Button { return buttons }

func navRow() []Button {
	return row(button("« Back", KindBack, ""), button("✖ Cancel", KindCancel, ""))
}

func homeRow() []Button {
	return row(button("Main menu", KindHome, ""))
}
