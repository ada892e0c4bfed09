package handlers

import (
	"context"
	"log"
	"sync"

	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

type socketModeConn interface {
	Ack(req socketmode.Request, payload ...interface{})
	RunContext(ctx context.Context) error
}

// SocketModeHandler receives Slack events over a Socket Mode connection
type SocketModeHandler struct {
	conn       socketModeConn
	events     <-chan socketmode.Event
	dispatcher *EventDispatcher
}

func NewSocketModeHandler(client *socketmode.Client, dispatcher *EventDispatcher) *SocketModeHandler {
	return &SocketModeHandler{
		conn:       client,
		events:     client.Events,
		dispatcher: dispatcher,
	}
}

// Run connects and handles events until ctx is cancelled or the connection fails.
// It returns only after the event loop has stopped, so no dispatch outlives it.
func (h *SocketModeHandler) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.eventLoop(runCtx)
	}()

	err := h.conn.RunContext(runCtx)
	cancel()
	wg.Wait()
	return err
}

func (h *SocketModeHandler) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-h.events:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				return
			}
			h.handleEvent(ctx, evt)
		}
	}
}

func (h *SocketModeHandler) handleEvent(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		log.Printf("🔌 Connecting to Slack Socket Mode")
	case socketmode.EventTypeConnected:
		log.Printf("✅ Connected to Slack Socket Mode")
	case socketmode.EventTypeConnectionError:
		log.Printf("❌ Slack Socket Mode connection error: %v", evt.Data)
	case socketmode.EventTypeEventsAPI:
		eventsAPIEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			log.Printf("⚠️ Ignoring Socket Mode event with unexpected payload %T", evt.Data)
			return
		}
		if evt.Request != nil {
			h.conn.Ack(*evt.Request)
		}
		h.dispatcher.Dispatch(ctx, eventsAPIEvent)
	}
}
