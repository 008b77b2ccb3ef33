package dispatch

// Mode selects which side effect a scan performs for a non-responder.
type Mode int

const (
	// ModeMarkNotResponded writes the not_responded marker and sends a push.
	ModeMarkNotResponded Mode = iota
	// ModeIntervalPush sends a push only.
	ModeIntervalPush
	// ModeMorningEmail sends the morning email only.
	ModeMorningEmail
	// ModeEveningEmail sends the evening email only.
	ModeEveningEmail
)

// Channel names used in reports, metrics and audit rows.
const (
	ChannelPush  = "push"
	ChannelEmail = "email"
	ChannelNone  = "none"
)

func (m Mode) String() string {
	switch m {
	case ModeMarkNotResponded:
		return "mark_not_responded"
	case ModeIntervalPush:
		return "interval_push"
	case ModeMorningEmail:
		return "morning_email"
	case ModeEveningEmail:
		return "evening_email"
	}
	return "unknown"
}

// Channel returns the notification channel this mode uses.
func (m Mode) Channel() string {
	switch m {
	case ModeMarkNotResponded, ModeIntervalPush:
		return ChannelPush
	case ModeMorningEmail, ModeEveningEmail:
		return ChannelEmail
	}
	return ChannelNone
}

type message struct {
	subject string // push title or email subject
	body    string
}

var modeMessages = map[Mode]message{
	ModeMarkNotResponded: {
		subject: "MADRS Reminder",
		body:    "Please complete today's MADRS + Sleep Diary.",
	},
	ModeIntervalPush: {
		subject: "MADRS Reminder",
		body:    "You still haven't completed today's MADRS.",
	},
	ModeMorningEmail: {
		subject: "MADRS Morning Reminder",
		body:    "Good morning! Please complete today's MADRS questionnaire.",
	},
	ModeEveningEmail: {
		subject: "MADRS Evening Reminder",
		body:    "This is your evening reminder to complete today's MADRS.",
	},
}
