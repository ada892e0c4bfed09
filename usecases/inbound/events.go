package inbound

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/samber/mo"

	"inboundbot/clients"
	"inboundbot/models"
	"inboundbot/services/extraction"
)

const mentionHelpMessage = "Mention me in the thread of a signup notification and I'll process it again."

// excludedMessageSubtypes are message events that never start a resolution
var excludedMessageSubtypes = []string{"message_changed", "message_deleted", "channel_join", "channel_leave"}

// IsQualifyingMessage reports whether a channel message is a signup notification to process
func (s *InboundUseCase) IsQualifyingMessage(event models.SlackMessageEvent) bool {
	if event.Channel != s.config.ChannelID {
		return false
	}
	if slices.Contains(excludedMessageSubtypes, event.SubType) {
		return false
	}
	if event.ThreadTS != "" && event.ThreadTS != event.TS {
		return false
	}
	return strings.Contains(strings.ToLower(event.Text), strings.ToLower(s.config.NotificationMarker))
}

// ProcessNotification handles a new message in the monitored channel
func (s *InboundUseCase) ProcessNotification(ctx context.Context, event models.SlackMessageEvent) error {
	if !s.IsQualifyingMessage(event) {
		log.Printf("⏭️ Skipping non-qualifying message %s in %s (subtype: %q)", event.TS, event.Channel, event.SubType)
		return nil
	}

	return s.processNotificationMessage(ctx, models.NotificationMessage{
		ChannelID: event.Channel,
		TS:        event.TS,
		Text:      event.Text,
	})
}

// ProcessMention reprocesses the root message of the thread the bot was mentioned in
func (s *InboundUseCase) ProcessMention(ctx context.Context, event models.SlackMentionEvent) error {
	log.Printf("📋 Starting to process mention by %s in %s", event.User, event.Channel)

	if !event.IsInThread() {
		log.Printf("💬 Mention outside a thread in %s, replying with usage help", event.Channel)
		if _, err := s.slackClient.PostThreadReply(ctx, event.Channel, event.TS, mentionHelpMessage); err != nil {
			return fmt.Errorf("failed to post mention help reply: %w", err)
		}
		return nil
	}

	maybeRoot, err := s.fetchThreadRoot(ctx, event.Channel, event.ThreadTS)
	if err != nil {
		log.Printf("❌ Failed to fetch thread root %s in %s: %v", event.ThreadTS, event.Channel, err)
		reply := ":x: I couldn't load the original message of this thread. Please try again later."
		if _, postErr := s.slackClient.PostThreadReply(ctx, event.Channel, event.ThreadTS, reply); postErr != nil {
			log.Printf("❌ Failed to post thread root failure reply: %v", postErr)
		}
		return fmt.Errorf("failed to fetch thread root: %w", err)
	}
	if !maybeRoot.IsPresent() {
		log.Printf("⚠️ Thread root %s not found in %s", event.ThreadTS, event.Channel)
		reply := ":warning: I couldn't find the original message of this thread."
		if _, err := s.slackClient.PostThreadReply(ctx, event.Channel, event.ThreadTS, reply); err != nil {
			return fmt.Errorf("failed to post missing thread root reply: %w", err)
		}
		return nil
	}
	root := maybeRoot.MustGet()

	log.Printf("🔁 Reprocessing thread root %s in %s", root.TS, event.Channel)
	if err := s.processNotificationMessage(ctx, models.NotificationMessage{
		ChannelID: event.Channel,
		TS:        root.TS,
		Text:      root.Text,
	}); err != nil {
		return err
	}

	log.Printf("📋 Completed successfully - processed mention in %s", event.Channel)
	return nil
}

func (s *InboundUseCase) fetchThreadRoot(
	ctx context.Context,
	channelID, threadTS string,
) (mo.Option[clients.SlackMessage], error) {
	messages, err := s.slackClient.GetConversationHistory(ctx, channelID, threadTS, 1)
	if err != nil {
		return mo.None[clients.SlackMessage](), err
	}
	for _, message := range messages {
		if message.TS == threadTS {
			return mo.Some(message), nil
		}
	}
	return mo.None[clients.SlackMessage](), nil
}

// processNotificationMessage runs the pipeline for one message and always leaves a reply and a status reaction
func (s *InboundUseCase) processNotificationMessage(ctx context.Context, msg models.NotificationMessage) error {
	log.Printf("📋 Starting to process notification %s in %s", msg.TS, msg.ChannelID)
	s.updateMessageReaction(ctx, msg, models.CaseStatusProcessing)

	outcome, pipelineErr := s.runPipeline(ctx, msg)
	if pipelineErr != nil {
		log.Printf("❌ Failed to process notification %s: %v", msg.TS, pipelineErr)
		outcome = s.unexpectedFailureOutcome(pipelineErr)
	}

	if _, err := s.slackClient.PostThreadReply(ctx, msg.ChannelID, msg.TS, outcome.Reply); err != nil {
		log.Printf("❌ Failed to post reply for notification %s: %v", msg.TS, err)
		s.updateMessageReaction(ctx, msg, models.CaseStatusError)
		return fmt.Errorf("failed to post reply for notification %s: %w", msg.TS, err)
	}
	s.updateMessageReaction(ctx, msg, outcome.Status)

	if pipelineErr != nil {
		return fmt.Errorf("failed to process notification %s: %w", msg.TS, pipelineErr)
	}

	log.Printf("📋 Completed successfully - processed notification %s with status %s", msg.TS, outcome.Status)
	return nil
}

func (s *InboundUseCase) runPipeline(ctx context.Context, msg models.NotificationMessage) (outcome models.CaseOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing notification %s: %v", msg.TS, r)
		}
	}()

	fields := extraction.Extract(msg.Text)
	if !fields.Email.IsPresent() {
		log.Printf("⚠️ No customer admin email found in notification %s", msg.TS)
		return s.extractionFailureOutcome(fields), nil
	}

	resolution, err := s.resolver.Resolve(ctx, fields)
	if err != nil {
		return models.CaseOutcome{}, fmt.Errorf("failed to resolve customer: %w", err)
	}

	return s.HandleResolution(ctx, msg, fields, resolution), nil
}
