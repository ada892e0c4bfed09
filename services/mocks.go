package services

import (
	"context"
	"encoding/json"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"inboundbot/clients"
	"inboundbot/models"
)

// MockCRMSession is a mock implementation of CRMSession
type MockCRMSession struct {
	mock.Mock
}

func (m *MockCRMSession) Query(ctx context.Context, statement string) (*clients.CRMQueryResult, error) {
	args := m.Called(ctx, statement)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.CRMQueryResult), args.Error(1)
}

func (m *MockCRMSession) Create(ctx context.Context, object string, fields map[string]any) (*models.CreateResult, error) {
	args := m.Called(ctx, object, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CreateResult), args.Error(1)
}

func (m *MockCRMSession) Get(ctx context.Context, object, id string, fields []string) (json.RawMessage, error) {
	args := m.Called(ctx, object, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockCRMSession) BillingAccountID() mo.Option[string] {
	args := m.Called()
	return args.Get(0).(mo.Option[string])
}

func (m *MockCRMSession) InstanceURL() string {
	args := m.Called()
	return args.String(0)
}

// MockResolver is a mock implementation of Resolver
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, fields models.ExtractedFields) (*models.Resolution, error) {
	args := m.Called(ctx, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Resolution), args.Error(1)
}

// MockEventDeduplicator is a mock implementation of EventDeduplicator
type MockEventDeduplicator struct {
	mock.Mock
}

func (m *MockEventDeduplicator) FirstSeen(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

// QueryResult builds a query result from raw JSON records
func QueryResult(records ...string) *clients.CRMQueryResult {
	result := &clients.CRMQueryResult{TotalSize: len(records), Done: true, Records: []json.RawMessage{}}
	for _, record := range records {
		result.Records = append(result.Records, json.RawMessage(record))
	}
	return result
}
