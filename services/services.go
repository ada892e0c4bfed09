package services

import (
	"context"
	"encoding/json"

	"github.com/samber/mo"

	"inboundbot/clients"
	"inboundbot/models"
)

// CRMSession runs CRM operations against a managed, self-refreshing session
type CRMSession interface {
	Query(ctx context.Context, statement string) (*clients.CRMQueryResult, error)
	Create(ctx context.Context, object string, fields map[string]any) (*models.CreateResult, error)
	Get(ctx context.Context, object, id string, fields []string) (json.RawMessage, error)
	BillingAccountID() mo.Option[string]
	InstanceURL() string
}

// Resolver maps extracted notification fields to a CRM contact and account
type Resolver interface {
	Resolve(ctx context.Context, fields models.ExtractedFields) (*models.Resolution, error)
}

// EventDeduplicator reports whether an inbound event id is seen for the first time
type EventDeduplicator interface {
	FirstSeen(ctx context.Context, eventID string) (bool, error)
}
