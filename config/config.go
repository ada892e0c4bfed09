package config

import (
	"fmt"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type SlackConfig struct {
	BotToken        string `env:"SLACK_BOT_TOKEN" env-required:"true" env-description:"Slack bot token"`
	SigningSecret   string `env:"SLACK_SIGNING_SECRET" env-description:"Events API request signing secret"`
	AppToken        string `env:"SLACK_APP_TOKEN" env-description:"App-level token; enables Socket Mode when set"`
	ChannelID       string `env:"SLACK_CHANNEL_ID" env-default:"C000000000" env-description:"Channel carrying signup notifications"`
	ReviewerUserID  string `env:"SLACK_REVIEWER_USER_ID" env-description:"User mentioned in replies that need a human"`
	AlertWebhookURL string `env:"SLACK_ALERT_WEBHOOK_URL" env-description:"Incoming webhook for error alerts"`
}

// IsSocketMode returns true if an app-level token is configured
func (c SlackConfig) IsSocketMode() bool {
	return c.AppToken != ""
}

// IsHTTPConfigured returns true if the Events API endpoint can verify requests
func (c SlackConfig) IsHTTPConfigured() bool {
	return c.SigningSecret != ""
}

type SalesforceConfig struct {
	LoginURL            string        `env:"SALESFORCE_LOGIN_URL" env-default:"https://login.salesforce.com" env-description:"OAuth token endpoint base"`
	ClientID            string        `env:"SALESFORCE_CLIENT_ID" env-required:"true" env-description:"Connected app client id"`
	ClientSecret        string        `env:"SALESFORCE_CLIENT_SECRET" env-required:"true" env-description:"Connected app client secret"`
	BaseURL             string        `env:"SALESFORCE_BASE_URL" env-description:"Base URL for record links; defaults to the instance URL"`
	APIVersion          string        `env:"SALESFORCE_API_VERSION" env-default:"v59.0" env-description:"REST API version"`
	ResellerAccountName string        `env:"SALESFORCE_RESELLER_ACCOUNT_NAME" env-default:"Gong Reseller" env-description:"Account referenced as the billing account"`
	AccountDomainField  string        `env:"SALESFORCE_ACCOUNT_DOMAIN_FIELD" env-description:"Optional Account field holding the customer domain"`
	SessionMaxAge       time.Duration `env:"SESSION_MAX_AGE" env-default:"90m" env-description:"How long a Salesforce session is reused"`
}

type AppConfig struct {
	Port               string `env:"PORT" env-default:"3000"`
	Environment        string `env:"ENVIRONMENT" env-default:"dev"`
	ServerLogsURL      string `env:"SERVER_LOGS_URL"`
	RedisURL           string `env:"REDIS_URL" env-description:"Event dedupe store; in-memory when empty"`
	NotificationMarker string `env:"NOTIFICATION_MARKER" env-default:"New Customer Signup"`

	SlackConfig      SlackConfig
	SalesforceConfig SalesforceConfig
}

func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️ Could not load .env file, continuing with system env vars")
	}

	var config AppConfig
	if err := cleanenv.ReadEnv(&config); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.SlackConfig.IsHTTPConfigured() {
		log.Printf("✅ Slack Events API endpoint configured")
	}
	if config.SlackConfig.IsSocketMode() {
		log.Printf("✅ Slack Socket Mode configured")
	}
	if config.RedisURL == "" {
		log.Printf("⚠️ REDIS_URL not set - event dedupe is in-memory only")
	}

	return &config, nil
}

// Validate rejects empty required values and a missing Slack transport
func (c *AppConfig) Validate() error {
	if c.SlackConfig.BotToken == "" {
		return fmt.Errorf("SLACK_BOT_TOKEN must not be empty")
	}
	if c.SalesforceConfig.ClientID == "" || c.SalesforceConfig.ClientSecret == "" {
		return fmt.Errorf("SALESFORCE_CLIENT_ID and SALESFORCE_CLIENT_SECRET must not be empty")
	}
	if !c.SlackConfig.IsHTTPConfigured() && !c.SlackConfig.IsSocketMode() {
		return fmt.Errorf("either SLACK_SIGNING_SECRET or SLACK_APP_TOKEN must be set")
	}
	if c.SlackConfig.ChannelID == "" {
		return fmt.Errorf("SLACK_CHANNEL_ID must not be empty")
	}
	if c.SalesforceConfig.SessionMaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE must be positive, got %s", c.SalesforceConfig.SessionMaxAge)
	}
	return nil
}
