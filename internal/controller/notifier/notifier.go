// Package notifier reports schedule activations to one or more channels.
package notifier

import "strconv"

type Event int

const (
	Activated Event = iota
	Reset
	BindingsModified
)

// A Notification describes one activation-related event.
type Notification struct {
	Schedule string
	Variant  string
	Zones    int
	Reason   string
}

type Notifier interface {
	Notify(event Event, notification Notification)
}

type Notifiers []Notifier

func (n Notifiers) Notify(event Event, notification Notification) {
	for _, l := range n {
		l.Notify(event, notification)
	}
}

func buildMessage(event Event, notification Notification) string {
	name := notification.Schedule
	if notification.Variant != "" {
		name += " (" + notification.Variant + ")"
	}
	switch event {
	case Activated:
		return "activated " + name + " across " + strconv.Itoa(notification.Zones) + " zones"
	case Reset:
		return "reset to " + name
	case BindingsModified:
		return name + ": effective variables differ from schedule defaults"
	}
	return ""
}
