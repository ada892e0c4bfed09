package inbound

import (
	"context"
	"log"

	"inboundbot/clients"
	"inboundbot/models"
	"inboundbot/utils"
)

var statusReactions = []string{"eyes", "white_check_mark", "information_source", "warning", "x"}

func deriveReactionFromStatus(status models.CaseStatus) string {
	switch status {
	case models.CaseStatusProcessing:
		return "eyes"
	case models.CaseStatusSuccess:
		return "white_check_mark"
	case models.CaseStatusInformational:
		return "information_source"
	case models.CaseStatusNeedsAttention:
		return "warning"
	case models.CaseStatusError:
		return "x"
	default:
		utils.AssertInvariant(false, "invalid case status received")
		return ""
	}
}

func getOldReactions(newEmoji string) []string {
	var result []string
	for _, reaction := range statusReactions {
		if reaction != newEmoji {
			result = append(result, reaction)
		}
	}
	return result
}

// updateMessageReaction marks the message with the reaction for status.
// Terminal statuses clear the other status reactions; failures are logged and never returned.
func (s *InboundUseCase) updateMessageReaction(ctx context.Context, msg models.NotificationMessage, status models.CaseStatus) {
	newEmoji := deriveReactionFromStatus(status)
	item := clients.SlackItemRef{Channel: msg.ChannelID, Timestamp: msg.TS}

	if status != models.CaseStatusProcessing {
		for _, emoji := range getOldReactions(newEmoji) {
			if err := s.slackClient.RemoveReaction(ctx, emoji, item); err != nil {
				log.Printf("⚠️ Failed to remove %s reaction from %s: %v", emoji, msg.TS, err)
			}
		}
	}

	if err := s.slackClient.AddReaction(ctx, newEmoji, item); err != nil {
		log.Printf("⚠️ Failed to add %s reaction to %s: %v", newEmoji, msg.TS, err)
	}
}
