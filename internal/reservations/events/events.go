// Package events publishes reservation lifecycle changes to Kafka.
package events

import (
	"context"
	"staydesk/pkg/kafka"
	"staydesk/pkg/logger"
	"staydesk/pkg/middleware"
	"staydesk/pkg/model"
	"time"
)

const publishTimeout = 5 * time.Second

// Event is the JSON payload of every message on the reservation events topic.
type Event struct {
	Type          string              `json:"type"`
	ReservationID string              `json:"reservation_id"`
	UnitID        string              `json:"unit_id"`
	Kind          string              `json:"kind"`
	OwnerID       *string             `json:"owner_id"`
	Status        string              `json:"status"`
	PaymentStatus string              `json:"payment_status"`
	PeriodStart   time.Time           `json:"period_start"`
	PeriodEnd     time.Time           `json:"period_end"`
	HoldExpiresAt *time.Time          `json:"hold_expires_at,omitempty"`
	Guest         *model.GuestDetails `json:"guest,omitempty"`
	Amounts       model.Amounts       `json:"amounts"`
	OccurredAt    time.Time           `json:"occurred_at"`
}

func NewEvent(eventType string, r *model.Reservation, at time.Time) Event {
	return Event{
		Type:          eventType,
		ReservationID: r.ID,
		UnitID:        r.UnitID,
		Kind:          r.Kind,
		OwnerID:       r.OwnerID,
		Status:        r.Status,
		PaymentStatus: r.PaymentStatus,
		PeriodStart:   r.PeriodStart,
		PeriodEnd:     r.PeriodEnd,
		HoldExpiresAt: r.HoldExpiresAt,
		Guest:         r.Guest,
		Amounts:       r.Amounts,
		OccurredAt:    at,
	}
}

// Publisher announces a committed change. Implementations never fail the caller:
// the ledger write already happened and is the source of truth.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

type messagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaPublisher struct {
	producer messagePublisher
	source   string
	log      *logger.Logger
}

func NewKafkaPublisher(producer messagePublisher, source string, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		source:   source,
		log:      log,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) {
	requestID := middleware.RequestIDFromContext(ctx)

	msg, err := kafka.NewMessage().
		WithKey(event.UnitID).
		WithValue(event).
		WithEventType(event.Type).
		WithCorrelationID(requestID).
		WithSchemaVersion(kafka.SchemaVersion).
		WithSource(p.source).
		WithTimestamp(event.OccurredAt).
		Build()
	if err != nil {
		p.log.Error("Failed to build reservation event",
			"event_type", event.Type,
			"reservation_id", event.ReservationID,
			"error", err,
		)
		return
	}

	// the request may be finishing; the event should still go out
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish reservation event",
			"event_type", event.Type,
			"event_id", msg.GetEventID(),
			"reservation_id", event.ReservationID,
			"request_id", requestID,
			"error", err,
		)
	}
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) {}
