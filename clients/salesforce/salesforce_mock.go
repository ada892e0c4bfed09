package salesforce

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"inboundbot/clients"
	"inboundbot/models"
)

// MockSalesforceClient is a mock implementation of clients.SalesforceClient
type MockSalesforceClient struct {
	mock.Mock
}

func (m *MockSalesforceClient) Authenticate(ctx context.Context) (*clients.CRMSession, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.CRMSession), args.Error(1)
}

func (m *MockSalesforceClient) Query(
	ctx context.Context,
	session *clients.CRMSession,
	statement string,
) (*clients.CRMQueryResult, error) {
	args := m.Called(ctx, session, statement)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.CRMQueryResult), args.Error(1)
}

func (m *MockSalesforceClient) Create(
	ctx context.Context,
	session *clients.CRMSession,
	object string,
	fields map[string]any,
) (*models.CreateResult, error) {
	args := m.Called(ctx, session, object, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CreateResult), args.Error(1)
}

func (m *MockSalesforceClient) Get(
	ctx context.Context,
	session *clients.CRMSession,
	object, id string,
	fields []string,
) (json.RawMessage, error) {
	args := m.Called(ctx, session, object, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}
