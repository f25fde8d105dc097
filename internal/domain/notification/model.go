package notification

import "time"

// Kind tags the source of a feed item.
type Kind string

const (
	KindAppointment Kind = "appointment"
	KindHealthAlert Kind = "health_alert"
	KindScheme      Kind = "scheme"
)

var icons = map[Kind]string{
	KindAppointment: "calendar",
	KindHealthAlert: "activity",
	KindScheme:      "shield",
}

// Icon returns the presentation tag for k, "bell" for unknown kinds.
func (k Kind) Icon() string {
	if icon, ok := icons[k]; ok {
		return icon
	}
	return "bell"
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
)

// Item is one entry of a notification feed. Items are built per request
// and never stored.
type Item struct {
	ID         string    `json:"id"`
	Type       Kind      `json:"type"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Date       time.Time `json:"date"`
	Priority   Priority  `json:"priority"`
	Read       bool      `json:"read"`
	ActionURL  string    `json:"actionUrl"`
	ActionText string    `json:"actionText"`
	Icon       string    `json:"icon"`
}
