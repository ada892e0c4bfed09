package slack

import (
	"context"
	"errors"

	"github.com/slack-go/slack"

	"inboundbot/clients"
)

// SlackClient implements the clients.SlackClient interface using the slack-go/slack SDK
type SlackClient struct {
	*slack.Client
}

// NewSlackClient creates a new Slack client with the provided bot token
func NewSlackClient(botToken string, options ...slack.Option) *SlackClient {
	return &SlackClient{
		Client: slack.New(botToken, options...),
	}
}

// AddReaction adds a reaction to a message. Adding a reaction that is already present is not an error.
func (c *SlackClient) AddReaction(ctx context.Context, name string, item clients.SlackItemRef) error {
	err := c.Client.AddReactionContext(ctx, name, slack.NewRefToMessage(item.Channel, item.Timestamp))
	if isSlackError(err, "already_reacted") {
		return nil
	}
	return err
}

// RemoveReaction removes a reaction from a message. Removing an absent reaction is not an error.
func (c *SlackClient) RemoveReaction(ctx context.Context, name string, item clients.SlackItemRef) error {
	err := c.Client.RemoveReactionContext(ctx, name, slack.NewRefToMessage(item.Channel, item.Timestamp))
	if isSlackError(err, "no_reaction") {
		return nil
	}
	return err
}

// PostThreadReply posts a reply in a thread with link and media unfurling disabled
func (c *SlackClient) PostThreadReply(
	ctx context.Context,
	channelID, threadTS, text string,
) (*clients.SlackPostMessageResponse, error) {
	channel, timestamp, err := c.Client.PostMessageContext(
		ctx,
		channelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionTS(threadTS),
		slack.MsgOptionDisableLinkUnfurl(),
		slack.MsgOptionDisableMediaUnfurl(),
	)
	if err != nil {
		return nil, err
	}

	return &clients.SlackPostMessageResponse{
		Channel:   channel,
		Timestamp: timestamp,
	}, nil
}

// GetConversationHistory fetches up to limit messages at or before latestTS.
// An empty latestTS reads from the most recent message.
func (c *SlackClient) GetConversationHistory(
	ctx context.Context,
	channelID, latestTS string,
	limit int,
) ([]clients.SlackMessage, error) {
	response, err := c.Client.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Latest:    latestTS,
		Inclusive: latestTS != "",
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}

	messages := make([]clients.SlackMessage, 0, len(response.Messages))
	for _, message := range response.Messages {
		messages = append(messages, clients.SlackMessage{
			User:     message.User,
			BotID:    message.BotID,
			Text:     message.Text,
			TS:       message.Timestamp,
			ThreadTS: message.ThreadTimestamp,
		})
	}
	return messages, nil
}

func isSlackError(err error, code string) bool {
	var slackErr slack.SlackErrorResponse
	if errors.As(err, &slackErr) {
		return slackErr.Err == code
	}
	return err != nil && err.Error() == code
}
