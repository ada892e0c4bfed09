package clients

import (
	"context"
	"encoding/json"

	"inboundbot/models"
)

// SlackClient is the subset of the Slack Web API the bot uses
type SlackClient interface {
	AddReaction(ctx context.Context, name string, item SlackItemRef) error
	RemoveReaction(ctx context.Context, name string, item SlackItemRef) error
	PostThreadReply(ctx context.Context, channelID, threadTS, text string) (*SlackPostMessageResponse, error)
	GetConversationHistory(ctx context.Context, channelID, latestTS string, limit int) ([]SlackMessage, error)
}

// SalesforceClient is the Salesforce REST surface the session manager drives
type SalesforceClient interface {
	Authenticate(ctx context.Context) (*CRMSession, error)
	Query(ctx context.Context, session *CRMSession, statement string) (*CRMQueryResult, error)
	Create(ctx context.Context, session *CRMSession, object string, fields map[string]any) (*models.CreateResult, error)
	Get(ctx context.Context, session *CRMSession, object, id string, fields []string) (json.RawMessage, error)
}
