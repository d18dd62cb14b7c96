package notifier

import (
	"github.com/slack-go/slack"
)

// SlackSender posts attachments to a Slack channel. Implemented by
// go-common/slackbot's SlackBot.
type SlackSender interface {
	Send(channel string, attachments []slack.Attachment) error
}

type SlackNotifier struct {
	Bot SlackSender
}

var _ Notifier = &SlackNotifier{}

func (s SlackNotifier) Notify(event Event, notification Notification) {
	color := "good"
	if event == BindingsModified {
		color = "warning"
	}
	_ = s.Bot.Send("", []slack.Attachment{{
		Color: color,
		Title: buildMessage(event, notification),
		Text:  notification.Reason,
	}})
}
