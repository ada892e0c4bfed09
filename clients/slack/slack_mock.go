package slack

import (
	"context"
	"sync"

	"inboundbot/clients"
)

// MockSlackClient implements clients.SlackClient for testing
type MockSlackClient struct {
	MockAddReaction            func(ctx context.Context, name string, item clients.SlackItemRef) error
	MockRemoveReaction         func(ctx context.Context, name string, item clients.SlackItemRef) error
	MockPostThreadReply        func(ctx context.Context, channelID, threadTS, text string) (*clients.SlackPostMessageResponse, error)
	MockGetConversationHistory func(ctx context.Context, channelID, latestTS string, limit int) ([]clients.SlackMessage, error)

	mu               sync.Mutex
	AddedReactions   []string
	RemovedReactions []string
	Replies          []string
}

// NewMockSlackClient creates a new mock Slack client
func NewMockSlackClient() *MockSlackClient {
	return &MockSlackClient{}
}

// AddReaction implements clients.SlackClient for testing
func (m *MockSlackClient) AddReaction(ctx context.Context, name string, item clients.SlackItemRef) error {
	m.mu.Lock()
	m.AddedReactions = append(m.AddedReactions, name)
	m.mu.Unlock()

	if m.MockAddReaction != nil {
		return m.MockAddReaction(ctx, name, item)
	}
	return nil
}

// RemoveReaction implements clients.SlackClient for testing
func (m *MockSlackClient) RemoveReaction(ctx context.Context, name string, item clients.SlackItemRef) error {
	m.mu.Lock()
	m.RemovedReactions = append(m.RemovedReactions, name)
	m.mu.Unlock()

	if m.MockRemoveReaction != nil {
		return m.MockRemoveReaction(ctx, name, item)
	}
	return nil
}

// PostThreadReply implements clients.SlackClient for testing
func (m *MockSlackClient) PostThreadReply(
	ctx context.Context,
	channelID, threadTS, text string,
) (*clients.SlackPostMessageResponse, error) {
	m.mu.Lock()
	m.Replies = append(m.Replies, text)
	m.mu.Unlock()

	if m.MockPostThreadReply != nil {
		return m.MockPostThreadReply(ctx, channelID, threadTS, text)
	}

	// Default mock response
	return &clients.SlackPostMessageResponse{
		Channel:   channelID,
		Timestamp: "1234567890.999999",
	}, nil
}

// GetConversationHistory implements clients.SlackClient for testing
func (m *MockSlackClient) GetConversationHistory(
	ctx context.Context,
	channelID, latestTS string,
	limit int,
) ([]clients.SlackMessage, error) {
	if m.MockGetConversationHistory != nil {
		return m.MockGetConversationHistory(ctx, channelID, latestTS, limit)
	}
	return []clients.SlackMessage{}, nil
}
