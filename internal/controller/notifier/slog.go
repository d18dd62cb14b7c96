package notifier

import "log/slog"

type SLogNotifier struct {
	Logger *slog.Logger
}

var _ Notifier = &SLogNotifier{}

func (s SLogNotifier) Notify(event Event, notification Notification) {
	if event == BindingsModified {
		s.Logger.Warn(buildMessage(event, notification), "reason", notification.Reason)
		return
	}
	s.Logger.Info(buildMessage(event, notification), "reason", notification.Reason)
}
