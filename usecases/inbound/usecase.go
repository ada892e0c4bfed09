package inbound

import (
	"time"

	"inboundbot/clients"
	"inboundbot/services"
)

const defaultNotificationMarker = "New Customer Signup"

type Config struct {
	// ChannelID is the only channel whose messages are processed
	ChannelID string
	// NotificationMarker is the phrase a qualifying message must contain
	NotificationMarker string
	// ReviewerUserID is mentioned in replies that need a human
	ReviewerUserID string
	// RecordBaseURL builds record links; the session instance URL is used when empty
	RecordBaseURL string
}

// InboundUseCase drives Field Extractor, Resolver and Case Handler for each inbound Slack event
type InboundUseCase struct {
	slackClient clients.SlackClient
	crm         services.CRMSession
	resolver    services.Resolver
	config      Config
	now         func() time.Time
}

// NewInboundUseCase creates a new instance of InboundUseCase
func NewInboundUseCase(
	slackClient clients.SlackClient,
	crm services.CRMSession,
	resolver services.Resolver,
	config Config,
) *InboundUseCase {
	if config.NotificationMarker == "" {
		config.NotificationMarker = defaultNotificationMarker
	}
	return &InboundUseCase{
		slackClient: slackClient,
		crm:         crm,
		resolver:    resolver,
		config:      config,
		now:         time.Now,
	}
}
