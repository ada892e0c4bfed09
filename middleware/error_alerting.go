package middleware

import (
	"context"
	"crypto/md5"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/slack-go/slack"
)

type SlackAlertConfig struct {
	WebhookURL  string
	Environment string
	AppName     string
	LogsURL     string
}

type ErrorAlertMiddleware struct {
	config        SlackAlertConfig
	httpClient    *http.Client
	alertedErrors map[string]time.Time // hash -> last alert time
	mutex         sync.Mutex
	alertCooldown time.Duration
	wg            sync.WaitGroup
}

func NewErrorAlertMiddleware(config SlackAlertConfig) *ErrorAlertMiddleware {
	return &ErrorAlertMiddleware{
		config:        config,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		alertedErrors: make(map[string]time.Time),
		alertCooldown: 10 * time.Minute, // Don't alert same error more than once per 10min
	}
}

// HTTPMiddleware recovers panics in HTTP handlers
func (m *ErrorAlertMiddleware) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer m.recoverAndAlert(fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Path))
		next.ServeHTTP(w, r)
	})
}

// WrapEventHandler turns an event handler into a task that never panics and alerts on failure
func (m *ErrorAlertMiddleware) WrapEventHandler(eventName string, handler func() error) func() {
	return func() {
		defer m.recoverAndAlert("Slack event: " + eventName)

		if err := handler(); err != nil {
			log.Printf("❌ Slack event %s failed: %v", eventName, err)
			m.alertOnError(err, "Slack event: "+eventName)
		}
	}
}

// Wait blocks until in-flight alerts are sent
func (m *ErrorAlertMiddleware) Wait() {
	m.wg.Wait()
}

func (m *ErrorAlertMiddleware) alertOnError(err error, context string) {
	errorMsg := fmt.Sprintf("%s: %v", context, err)
	hash := fmt.Sprintf("%x", md5.Sum([]byte(errorMsg)))

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if lastAlert, exists := m.alertedErrors[hash]; exists {
		if time.Since(lastAlert) < m.alertCooldown {
			return
		}
	}

	m.sendAsync(errorMsg, context)
	m.alertedErrors[hash] = time.Now()
}

func (m *ErrorAlertMiddleware) recoverAndAlert(context string) {
	if r := recover(); r != nil {
		errorMsg := fmt.Sprintf("%s: PANIC - %v", context, r)
		log.Printf("❌ %s", errorMsg)
		m.sendAsync(errorMsg, context+" (PANIC)")
	}
}

func (m *ErrorAlertMiddleware) sendAsync(errorMsg, context string) {
	if m.config.WebhookURL == "" {
		return // Slack alerts disabled
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.sendSlackAlert(errorMsg, context)
	}()
}

func (m *ErrorAlertMiddleware) sendSlackAlert(errorMsg, alertContext string) {
	envPrefix := ""
	if m.config.Environment == "dev" {
		envPrefix = "[dev] "
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(
			slack.PlainTextType, fmt.Sprintf("🚨 %s[%s] Error Alert", envPrefix, m.config.AppName), true, false)),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			slack.NewTextBlockObject(slack.MarkdownType, "*Service:* "+m.config.AppName, false, false),
			slack.NewTextBlockObject(slack.MarkdownType, "*Environment:* "+m.config.Environment, false, false),
			slack.NewTextBlockObject(slack.MarkdownType, "*Context:* "+alertContext, false, false),
		}, nil),
		slack.NewSectionBlock(slack.NewTextBlockObject(
			slack.MarkdownType, fmt.Sprintf("*Error:*\n```%s```", errorMsg), false, false), nil, nil),
	}
	if m.config.LogsURL != "" {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject(
			slack.MarkdownType, fmt.Sprintf("🔗 <%s|View Logs>", m.config.LogsURL), false, false), nil, nil))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := slack.PostWebhookCustomHTTPContext(ctx, m.config.WebhookURL, m.httpClient, &slack.WebhookMessage{
		Text:   errorMsg,
		Blocks: &slack.Blocks{BlockSet: blocks},
	}); err != nil {
		log.Printf("❌ Failed to send Slack alert: %v", err)
	}
}
