package events

import (
	"context"
	"errors"
	"staydesk/pkg/kafka"
	"staydesk/pkg/logger"
	"staydesk/pkg/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeProducer) Publish(_ context.Context, msg kafka.Message) error {
	f.msgs = append(f.msgs, msg)
	return f.err
}

func sampleReservation() *model.Reservation {
	owner := "cust-1"
	start := time.Date(2025, time.May, 1, 14, 0, 0, 0, time.UTC)
	return &model.Reservation{
		ID:            "665f1c2b9a1e4b0012345678",
		Kind:          model.KindRoom,
		UnitID:        "665f1c2b9a1e4b0087654321",
		OwnerID:       &owner,
		Status:        model.StatusPending,
		PaymentStatus: model.PaymentUnpaid,
		PeriodStart:   start,
		PeriodEnd:     start.Add(24 * time.Hour),
	}
}

func TestKafkaPublisher_KeysByUnit(t *testing.T) {
	producer := &fakeProducer{}
	pub := NewKafkaPublisher(producer, "reservations", logger.Discard())
	at := time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC)

	pub.Publish(context.Background(), NewEvent(kafka.EventReservationCreated, sampleReservation(), at))

	require.Len(t, producer.msgs, 1)
	msg := producer.msgs[0]
	assert.Equal(t, "665f1c2b9a1e4b0087654321", msg.Key)
	assert.Equal(t, kafka.EventReservationCreated, msg.GetEventType())
	assert.Equal(t, "reservations", msg.Headers[kafka.HeaderSource])

	var decoded Event
	require.NoError(t, msg.DecodeValue(&decoded))
	assert.Equal(t, "665f1c2b9a1e4b0012345678", decoded.ReservationID)
	assert.Equal(t, model.StatusPending, decoded.Status)
	assert.True(t, decoded.OccurredAt.Equal(at))
}

func TestKafkaPublisher_SwallowsProducerErrors(t *testing.T) {
	producer := &fakeProducer{err: errors.New("broker down")}
	pub := NewKafkaPublisher(producer, "reservations", logger.Discard())

	assert.NotPanics(t, func() {
		pub.Publish(context.Background(), NewEvent(kafka.EventHoldReleased, sampleReservation(), time.Now()))
	})
	assert.Len(t, producer.msgs, 1)
}
