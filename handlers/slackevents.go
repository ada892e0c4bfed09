package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

const maxEventBodyBytes = 1 << 20

type SlackEventsHandler struct {
	signingSecret string
	dispatcher    *EventDispatcher
}

func NewSlackEventsHandler(signingSecret string, dispatcher *EventDispatcher) *SlackEventsHandler {
	return &SlackEventsHandler{
		signingSecret: signingSecret,
		dispatcher:    dispatcher,
	}
}

// verifySlackSignature verifies the authenticity of a Slack webhook request
func (h *SlackEventsHandler) verifySlackSignature(r *http.Request, body []byte) error {
	verifier, err := slack.NewSecretsVerifier(r.Header, h.signingSecret)
	if err != nil {
		return err
	}
	if _, err := verifier.Write(body); err != nil {
		return err
	}
	return verifier.Ensure()
}

// HandleSlackEvent acknowledges every verified delivery with 200; processing happens on the dispatcher's worker
func (h *SlackEventsHandler) HandleSlackEvent(w http.ResponseWriter, r *http.Request) {
	log.Printf("📨 Slack event received from %s", r.RemoteAddr)

	bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, maxEventBodyBytes))
	if err != nil {
		log.Printf("❌ Failed to read request body: %v", err)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	if err := h.verifySlackSignature(r, bodyBytes); err != nil {
		log.Printf("❌ Slack signature verification failed: %v", err)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	event, err := slackevents.ParseEvent(json.RawMessage(bodyBytes), slackevents.OptionNoVerifyToken())
	if err != nil {
		log.Printf("❌ Failed to parse Slack event: %v", err)
		http.Error(w, "failed to parse body", http.StatusBadRequest)
		return
	}

	if event.Type == slackevents.URLVerification {
		log.Printf("🔐 Slack URL verification challenge received")
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(bodyBytes, &challenge); err != nil || challenge.Challenge == "" {
			log.Printf("❌ Challenge not found in verification request")
			http.Error(w, "challenge not found", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		if _, err := w.Write([]byte(challenge.Challenge)); err != nil {
			log.Printf("❌ Failed to write challenge response: %v", err)
		}
		return
	}

	if retryNum := r.Header.Get("X-Slack-Retry-Num"); retryNum != "" {
		log.Printf("🔁 Slack retry %s (reason: %s)", retryNum, r.Header.Get("X-Slack-Retry-Reason"))
	}

	h.dispatcher.Dispatch(r.Context(), event)
	w.WriteHeader(http.StatusOK)
}

func (h *SlackEventsHandler) SetupEndpoints(router *mux.Router) {
	log.Printf("🚀 Registering Slack webhook endpoints")

	router.HandleFunc("/slack/events", h.HandleSlackEvent).Methods("POST")
	log.Printf("✅ POST /slack/events endpoint registered")
}

// SetupHealthEndpoint registers GET /health
func SetupHealthEndpoint(router *mux.Router) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			log.Printf("❌ Failed to write health check response: %v", err)
		}
	}).Methods("GET")
}
