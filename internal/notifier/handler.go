// Package notifier turns reservation events into guest notifications.
package notifier

import (
	"context"
	"staydesk/internal/reservations/events"
	"staydesk/pkg/kafka"
	"staydesk/pkg/logger"
)

type Handler struct {
	dedup  Deduper
	sender Sender
	log    *logger.Logger
}

func NewHandler(dedup Deduper, sender Sender, log *logger.Logger) *Handler {
	return &Handler{
		dedup:  dedup,
		sender: sender,
		log:    log,
	}
}

// Handle is a kafka.MessageHandler. Undecodable messages are permanent failures
// and go to the DLQ; dedup and delivery failures are transient and retried.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	eventID := msg.GetEventID()
	if eventID == "" {
		return kafka.NewPermanentError("event has no id", kafka.ErrInvalidMessage)
	}

	var event events.Event
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("failed to decode reservation event", err)
	}
	if event.Type == "" {
		event.Type = msg.GetEventType()
	}

	notification, ok := Compose(eventID, event)
	if !ok {
		h.log.Debug("Event needs no guest notification",
			"event_id", eventID,
			"event_type", event.Type,
			"reservation_id", event.ReservationID,
		)
		return nil
	}

	first, err := h.dedup.Claim(ctx, eventID)
	if err != nil {
		return kafka.NewTransientError("failed to check event dedup", err)
	}
	if !first {
		h.log.Info("Skipping duplicate event", "event_id", eventID, "event_type", event.Type)
		return nil
	}

	if err := h.sender.Send(ctx, notification); err != nil {
		if forgetErr := h.dedup.Forget(context.WithoutCancel(ctx), eventID); forgetErr != nil {
			h.log.Error("Failed to release dedup claim", "event_id", eventID, "error", forgetErr)
		}
		return kafka.NewTransientError("failed to send guest notification", err)
	}

	h.log.Info("Guest notified",
		"event_id", eventID,
		"event_type", event.Type,
		"reservation_id", event.ReservationID,
		"channel", notification.Channel,
	)
	return nil
}
