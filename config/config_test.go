package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("SLACK_SIGNING_SECRET", "signing-secret")
	t.Setenv("SALESFORCE_CLIENT_ID", "client-id")
	t.Setenv("SALESFORCE_CLIENT_SECRET", "client-secret")
}

func TestLoadConfig(t *testing.T) {
	t.Run("Success_Defaults", func(t *testing.T) {
		setRequiredEnv(t)

		config, err := LoadConfig()

		require.NoError(t, err)
		assert.Equal(t, "3000", config.Port)
		assert.Equal(t, "dev", config.Environment)
		assert.Equal(t, "New Customer Signup", config.NotificationMarker)
		assert.Equal(t, "C000000000", config.SlackConfig.ChannelID)
		assert.False(t, config.SlackConfig.IsSocketMode())
		assert.Equal(t, "https://login.salesforce.com", config.SalesforceConfig.LoginURL)
		assert.Equal(t, "v59.0", config.SalesforceConfig.APIVersion)
		assert.Equal(t, "Gong Reseller", config.SalesforceConfig.ResellerAccountName)
		assert.Equal(t, 90*time.Minute, config.SalesforceConfig.SessionMaxAge)
		assert.Empty(t, config.RedisURL)
	})

	t.Run("Success_Overrides", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SLACK_CHANNEL_ID", "C0SIGNUPS")
		t.Setenv("SLACK_APP_TOKEN", "xapp-test")
		t.Setenv("SESSION_MAX_AGE", "30m")
		t.Setenv("SALESFORCE_ACCOUNT_DOMAIN_FIELD", "Domain__c")
		t.Setenv("REDIS_URL", "redis://localhost:6379/0")

		config, err := LoadConfig()

		require.NoError(t, err)
		assert.Equal(t, "C0SIGNUPS", config.SlackConfig.ChannelID)
		assert.True(t, config.SlackConfig.IsSocketMode())
		assert.Equal(t, 30*time.Minute, config.SalesforceConfig.SessionMaxAge)
		assert.Equal(t, "Domain__c", config.SalesforceConfig.AccountDomainField)
		assert.Equal(t, "redis://localhost:6379/0", config.RedisURL)
	})

	t.Run("Success_SocketModeWithoutSigningSecret", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SLACK_SIGNING_SECRET", "")
		t.Setenv("SLACK_APP_TOKEN", "xapp-test")

		config, err := LoadConfig()

		require.NoError(t, err)
		assert.False(t, config.SlackConfig.IsHTTPConfigured())
	})

	t.Run("Error_MissingBotToken", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SLACK_BOT_TOKEN", "")

		_, err := LoadConfig()

		assert.Error(t, err)
	})

	t.Run("Error_NoSlackTransport", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SLACK_SIGNING_SECRET", "")
		t.Setenv("SLACK_APP_TOKEN", "")

		_, err := LoadConfig()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "SLACK_SIGNING_SECRET or SLACK_APP_TOKEN")
	})

	t.Run("Error_InvalidSessionMaxAge", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SESSION_MAX_AGE", "soon")

		_, err := LoadConfig()

		assert.Error(t, err)
	})
}
