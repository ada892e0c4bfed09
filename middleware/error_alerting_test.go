package middleware

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type alertRecorder struct {
	mu       sync.Mutex
	payloads []map[string]any
}

func (r *alertRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payloads)
}

func setupAlertMiddleware(t *testing.T) (*ErrorAlertMiddleware, *alertRecorder) {
	t.Helper()
	recorder := &alertRecorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		var payload map[string]any
		assert.NoError(t, json.Unmarshal(body, &payload))
		recorder.mu.Lock()
		recorder.payloads = append(recorder.payloads, payload)
		recorder.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	return NewErrorAlertMiddleware(SlackAlertConfig{
		WebhookURL:  server.URL,
		Environment: "dev",
		AppName:     "inboundbot",
	}), recorder
}

func TestWrapEventHandler(t *testing.T) {
	t.Run("Success_NoAlert", func(t *testing.T) {
		middleware, recorder := setupAlertMiddleware(t)
		called := false

		middleware.WrapEventHandler("message", func() error {
			called = true
			return nil
		})()
		middleware.Wait()

		assert.True(t, called)
		assert.Equal(t, 0, recorder.count())
	})

	t.Run("Error_AlertsOncePerCooldown", func(t *testing.T) {
		middleware, recorder := setupAlertMiddleware(t)
		failing := middleware.WrapEventHandler("message", func() error {
			return fmt.Errorf("failed to resolve customer")
		})

		failing()
		failing()
		middleware.Wait()

		require.Equal(t, 1, recorder.count())
		assert.Contains(t, recorder.payloads[0]["text"], "Slack event: message: failed to resolve customer")
		assert.NotEmpty(t, recorder.payloads[0]["blocks"])
	})

	t.Run("Panic_IsRecoveredAndAlerted", func(t *testing.T) {
		middleware, recorder := setupAlertMiddleware(t)

		assert.NotPanics(t, func() {
			middleware.WrapEventHandler("app_mention", func() error {
				panic("nil map")
			})()
		})
		middleware.Wait()

		require.Equal(t, 1, recorder.count())
		assert.Contains(t, recorder.payloads[0]["text"], "PANIC - nil map")
	})

	t.Run("DisabledWithoutWebhook", func(t *testing.T) {
		middleware := NewErrorAlertMiddleware(SlackAlertConfig{})

		assert.NotPanics(t, func() {
			middleware.WrapEventHandler("message", func() error { return fmt.Errorf("boom") })()
		})
		middleware.Wait()
	})
}

func TestHTTPMiddleware(t *testing.T) {
	middleware, recorder := setupAlertMiddleware(t)
	handler := middleware.HTTPMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("handler exploded")
	}))

	assert.NotPanics(t, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/slack/events", nil))
	})
	middleware.Wait()

	require.Equal(t, 1, recorder.count())
	assert.Contains(t, recorder.payloads[0]["text"], "HTTP POST /slack/events: PANIC - handler exploded")
}
