package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"inboundbot/models"
)

// MockInboundProcessor is a mock implementation of InboundProcessor
type MockInboundProcessor struct {
	mock.Mock
}

func (m *MockInboundProcessor) ProcessNotification(ctx context.Context, event models.SlackMessageEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockInboundProcessor) ProcessMention(ctx context.Context, event models.SlackMentionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
