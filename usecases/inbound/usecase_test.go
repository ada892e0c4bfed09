package inbound

import (
	"context"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"inboundbot/clients"
	slackclient "inboundbot/clients/slack"
	"inboundbot/models"
	"inboundbot/services"
)

const (
	testChannelID   = "C0SIGNUPS"
	testReviewerID  = "U0REVIEWER"
	testInstanceURL = "https://acme.my.salesforce.com"
	testMessageTS   = "1768467600.000100"

	signupText = "*New Customer Signup*\n" +
		"*Customer Name:* Acme Corp\n" +
		"*Customer Admin:* Jane Doe <mailto:jane.doe@acme.io|jane.doe@acme.io>\n" +
		"*Plan:* Pro"
)

var (
	testNow = time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

	testMessage = models.NotificationMessage{ChannelID: testChannelID, TS: testMessageTS, Text: signupText}

	testFields = models.ExtractedFields{
		Email:       mo.Some("jane.doe@acme.io"),
		CompanyName: mo.Some("Acme Corp"),
		PersonName:  mo.Some(models.PersonName{FirstName: "Jane", LastName: "Doe"}),
	}
)

func setupInboundUseCase(t *testing.T) (*InboundUseCase, *slackclient.MockSlackClient, *services.MockCRMSession, *services.MockResolver) {
	t.Helper()
	mockSlack := slackclient.NewMockSlackClient()
	mockCRM := &services.MockCRMSession{}
	mockResolver := &services.MockResolver{}

	useCase := NewInboundUseCase(mockSlack, mockCRM, mockResolver, Config{
		ChannelID:      testChannelID,
		ReviewerUserID: testReviewerID,
	})
	useCase.now = func() time.Time { return testNow }

	mockCRM.On("InstanceURL").Return(testInstanceURL).Maybe()
	return useCase, mockSlack, mockCRM, mockResolver
}

func withBillingAccount(mockCRM *services.MockCRMSession, billingAccountID mo.Option[string]) {
	mockCRM.On("BillingAccountID").Return(billingAccountID).Maybe()
}

func testAccount(classification string) *models.Account {
	return &models.Account{ID: "001ACME", Name: "Acme Corp", Classification: classification, Website: "https://acme.io"}
}

func resolvedResolution(classification string) *models.Resolution {
	account := testAccount(classification)
	return &models.Resolution{
		Contact: &models.Contact{
			ID:        "003JANE",
			Name:      "Jane Doe",
			FirstName: "Jane",
			LastName:  "Doe",
			Email:     "jane.doe@acme.io",
			AccountID: account.ID,
			Account:   account,
		},
		Account:   account,
		MatchedBy: models.AccountMatchContactEmail,
	}
}

func expectResolve(mockResolver *services.MockResolver, resolution *models.Resolution, err error) *mock.Call {
	return mockResolver.On("Resolve", mock.Anything, testFields).Return(resolution, err).Once()
}

func threadReplyRecorder(mockSlack *slackclient.MockSlackClient) *[]string {
	threads := []string{}
	mockSlack.MockPostThreadReply = func(_ context.Context, channelID, threadTS, _ string) (*clients.SlackPostMessageResponse, error) {
		threads = append(threads, channelID+"/"+threadTS)
		return &clients.SlackPostMessageResponse{Channel: channelID, Timestamp: "1768467601.000200"}, nil
	}
	return &threads
}
