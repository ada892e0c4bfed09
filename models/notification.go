package models

// NotificationMessage is one qualifying Slack message that the pipeline resolves
type NotificationMessage struct {
	ChannelID string
	TS        string
	Text      string
}

// SlackMessageEvent is a "message" event from the monitored channel
type SlackMessageEvent struct {
	EventID  string
	Channel  string
	User     string
	BotID    string
	Text     string
	TS       string
	ThreadTS string
	SubType  string
}

// SlackMentionEvent is an "app_mention" event
type SlackMentionEvent struct {
	EventID  string
	Channel  string
	User     string
	Text     string
	TS       string
	ThreadTS string
}

// IsInThread reports whether the mention was posted as a thread reply
func (e SlackMentionEvent) IsInThread() bool {
	return e.ThreadTS != "" && e.ThreadTS != e.TS
}
