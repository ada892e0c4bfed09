package handlers

import (
	"context"
	"log"

	"github.com/gammazero/workerpool"
	"github.com/slack-go/slack/slackevents"

	"inboundbot/core"
	"inboundbot/middleware"
	"inboundbot/models"
	"inboundbot/services"
)

// InboundProcessor runs the resolution pipeline for Slack events
type InboundProcessor interface {
	ProcessNotification(ctx context.Context, event models.SlackMessageEvent) error
	ProcessMention(ctx context.Context, event models.SlackMentionEvent) error
}

// EventDispatcher drops redeliveries and queues Slack events on a single worker,
// so events are processed one at a time off the delivery path
type EventDispatcher struct {
	processor InboundProcessor
	dedup     services.EventDeduplicator
	pool      *workerpool.WorkerPool
	alerts    *middleware.ErrorAlertMiddleware
}

func NewEventDispatcher(
	processor InboundProcessor,
	dedup services.EventDeduplicator,
	pool *workerpool.WorkerPool,
	alerts *middleware.ErrorAlertMiddleware,
) *EventDispatcher {
	return &EventDispatcher{
		processor: processor,
		dedup:     dedup,
		pool:      pool,
		alerts:    alerts,
	}
}

// Dispatch queues a callback event and reports whether it was queued
func (d *EventDispatcher) Dispatch(ctx context.Context, event slackevents.EventsAPIEvent) bool {
	if event.Type != slackevents.CallbackEvent {
		log.Printf("📋 Ignoring non-callback event of type %s", event.Type)
		return false
	}

	eventID := callbackEventID(event)
	if eventID != "" {
		firstSeen, err := d.dedup.FirstSeen(ctx, eventID)
		if err != nil {
			log.Printf("⚠️ Failed to check event %s for redelivery, processing anyway: %v", eventID, err)
		} else if !firstSeen {
			log.Printf("⏭️ Dropping redelivered event %s", eventID)
			return false
		}
	}

	correlationID := core.NewID("evt")
	switch inner := event.InnerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		message := models.SlackMessageEvent{
			EventID:  eventID,
			Channel:  inner.Channel,
			User:     inner.User,
			BotID:    inner.BotID,
			Text:     inner.Text,
			TS:       inner.TimeStamp,
			ThreadTS: inner.ThreadTimeStamp,
			SubType:  inner.SubType,
		}
		log.Printf("📨 [%s] Queued message event %s from %s in %s", correlationID, eventID, message.User, message.Channel)
		d.submit(correlationID, "message", func() error {
			return d.processor.ProcessNotification(context.Background(), message)
		})
	case *slackevents.AppMentionEvent:
		mention := models.SlackMentionEvent{
			EventID:  eventID,
			Channel:  inner.Channel,
			User:     inner.User,
			Text:     inner.Text,
			TS:       inner.TimeStamp,
			ThreadTS: inner.ThreadTimeStamp,
		}
		log.Printf("📨 [%s] Queued app_mention event %s from %s in %s", correlationID, eventID, mention.User, mention.Channel)
		d.submit(correlationID, "app_mention", func() error {
			return d.processor.ProcessMention(context.Background(), mention)
		})
	default:
		log.Printf("📋 Unsupported event type: %s", event.InnerEvent.Type)
		return false
	}
	return true
}

func (d *EventDispatcher) submit(correlationID, eventName string, handler func() error) {
	task := d.alerts.WrapEventHandler(eventName, func() error {
		log.Printf("📋 [%s] Starting to process %s event", correlationID, eventName)
		if err := handler(); err != nil {
			return err
		}
		log.Printf("📋 [%s] Completed successfully - processed %s event", correlationID, eventName)
		return nil
	})
	d.pool.Submit(task)
}

func callbackEventID(event slackevents.EventsAPIEvent) string {
	switch data := event.Data.(type) {
	case *slackevents.EventsAPICallbackEvent:
		return data.EventID
	case slackevents.EventsAPICallbackEvent:
		return data.EventID
	default:
		return ""
	}
}
