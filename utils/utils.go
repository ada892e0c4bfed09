package utils

import (
	"strings"
)

func AssertInvariant(condition bool, message string) {
	if !condition {
		panic("invariant violated - " + message)
	}
}

// SlackLink renders a Slack mrkdwn link; an empty url renders the bare text
func SlackLink(url, text string) string {
	if url == "" {
		return text
	}
	text = strings.NewReplacer("<", "", ">", "", "|", "").Replace(text)
	return "<" + url + "|" + text + ">"
}

// SlackMention renders a user mention; an empty user id renders nothing
func SlackMention(userID string) string {
	if userID == "" {
		return ""
	}
	return "<@" + userID + ">"
}
