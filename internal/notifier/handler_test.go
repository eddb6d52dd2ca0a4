package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"staydesk/internal/reservations/events"
	"staydesk/pkg/kafka"
	"staydesk/pkg/logger"
	"staydesk/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeduper struct {
	mu       sync.Mutex
	seen     map[string]bool
	claimErr error
	forgot   []string
}

func newFakeDeduper() *fakeDeduper {
	return &fakeDeduper{seen: map[string]bool{}}
}

func (d *fakeDeduper) Claim(ctx context.Context, eventID string) (bool, error) {
	if d.claimErr != nil {
		return false, d.claimErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen[eventID] {
		return false, nil
	}
	d.seen[eventID] = true
	return true, nil
}

func (d *fakeDeduper) Forget(ctx context.Context, eventID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, eventID)
	d.forgot = append(d.forgot, eventID)
	return nil
}

type fakeSender struct {
	sent []Notification
	err  error
}

func (s *fakeSender) Send(ctx context.Context, n Notification) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, n)
	return nil
}

func confirmedEvent() events.Event {
	return events.NewEvent(kafka.EventHoldConfirmed, &model.Reservation{
		ID:            "665f1c2b9a1e4b0012345678",
		Kind:          model.KindRoom,
		UnitID:        "665f1c2b9a1e4b0012345600",
		PeriodStart:   time.Date(2027, 1, 10, 14, 0, 0, 0, time.UTC),
		PeriodEnd:     time.Date(2027, 1, 12, 10, 0, 0, 0, time.UTC),
		Status:        model.StatusPending,
		PaymentStatus: model.PaymentUnpaid,
		Guest:         &model.GuestDetails{Name: "Ada", Phone: "+12015550123", Guests: 2},
		Amounts:       model.Amounts{Total: 1680},
	}, time.Date(2027, 1, 1, 9, 0, 0, 0, time.UTC))
}

func message(t *testing.T, eventID string, e events.Event) kafka.Message {
	t.Helper()
	msg, err := kafka.NewMessage().
		WithKey(e.UnitID).
		WithValue(e).
		WithEventID(eventID).
		WithEventType(e.Type).
		Build()
	require.NoError(t, err)
	return msg
}

func TestHandle_NotifiesOncePerEvent(t *testing.T) {
	dedup := newFakeDeduper()
	sender := &fakeSender{}
	h := NewHandler(dedup, sender, logger.Discard())
	msg := message(t, "evt-1", confirmedEvent())

	require.NoError(t, h.Handle(context.Background(), msg))
	require.NoError(t, h.Handle(context.Background(), msg), "redelivery is not an error")

	require.Len(t, sender.sent, 1)
	n := sender.sent[0]
	assert.Equal(t, "evt-1", n.EventID)
	assert.Equal(t, ChannelSMS, n.Channel)
	assert.Equal(t, "+12015550123", n.Recipient)
	assert.Contains(t, n.Body, "1680.00")
	assert.Contains(t, n.Body, "2027-01-10 09:00 EST", "period is shown in the guest's zone")
}

func TestHandle_SkipsEventsWithoutGuest(t *testing.T) {
	dedup := newFakeDeduper()
	sender := &fakeSender{}
	h := NewHandler(dedup, sender, logger.Discard())

	e := confirmedEvent()
	e.Type = kafka.EventHoldCreated
	e.Guest = nil

	require.NoError(t, h.Handle(context.Background(), message(t, "evt-2", e)))
	assert.Empty(t, sender.sent)
	assert.Empty(t, dedup.seen, "ignored events are not claimed")
}

func TestHandle_BadPayloadIsPermanent(t *testing.T) {
	h := NewHandler(newFakeDeduper(), &fakeSender{}, logger.Discard())

	msg := kafka.Message{Key: "u", Value: []byte("{not json"), Headers: map[string]string{kafka.HeaderEventID: "evt-3"}}
	err := h.Handle(context.Background(), msg)
	require.Error(t, err)
	assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))

	err = h.Handle(context.Background(), kafka.Message{Key: "u", Value: []byte("{}"), Headers: map[string]string{}})
	require.Error(t, err)
	assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))
}

func TestHandle_DedupFailureIsTransient(t *testing.T) {
	dedup := newFakeDeduper()
	dedup.claimErr = errors.New("dial tcp: connection refused")
	sender := &fakeSender{}
	h := NewHandler(dedup, sender, logger.Discard())

	err := h.Handle(context.Background(), message(t, "evt-4", confirmedEvent()))
	require.Error(t, err)
	assert.Equal(t, kafka.ErrorTypeTransient, kafka.ClassifyError(err))
	assert.Empty(t, sender.sent)
}

func TestHandle_SendFailureReleasesClaim(t *testing.T) {
	dedup := newFakeDeduper()
	sender := &fakeSender{err: errors.New("provider down")}
	h := NewHandler(dedup, sender, logger.Discard())
	msg := message(t, "evt-5", confirmedEvent())

	err := h.Handle(context.Background(), msg)
	require.Error(t, err)
	assert.Equal(t, kafka.ErrorTypeTransient, kafka.ClassifyError(err))
	assert.Equal(t, []string{"evt-5"}, dedup.forgot)

	sender.err = nil
	require.NoError(t, h.Handle(context.Background(), msg))
	assert.Len(t, sender.sent, 1, "retry after a failed send must deliver")
}

func TestCompose(t *testing.T) {
	base := confirmedEvent()

	tests := []struct {
		name        string
		mutate      func(e *events.Event)
		wantOK      bool
		wantChannel string
		wantSubject string
	}{
		{"confirmed hold", func(e *events.Event) {}, true, ChannelSMS, "Reservation received"},
		{"email preferred", func(e *events.Event) { e.Guest.Email = "ada@example.com" }, true, ChannelEmail, "Reservation received"},
		{"status change", func(e *events.Event) {
			e.Type = kafka.EventReservationStatusChanged
			e.Status = model.StatusCheckedIn
		}, true, ChannelSMS, "Reservation checked-in"},
		{"payment", func(e *events.Event) {
			e.Type = kafka.EventReservationPaymentMarked
			e.PaymentStatus = model.PaymentPaid
		}, true, ChannelSMS, "Payment paid"},
		{"amounts", func(e *events.Event) { e.Type = kafka.EventReservationAmountsCorrected }, true, ChannelSMS, "Reservation amount updated"},
		{"hold released", func(e *events.Event) { e.Type = kafka.EventHoldReleased }, false, "", ""},
		{"deleted", func(e *events.Event) { e.Type = kafka.EventReservationDeleted }, false, "", ""},
		{"no contact", func(e *events.Event) { e.Guest.Phone = "" }, false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := base
			guest := *base.Guest
			e.Guest = &guest
			tt.mutate(&e)

			n, ok := Compose("evt", e)
			assert.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantChannel, n.Channel)
			assert.Equal(t, tt.wantSubject, n.Subject)
			assert.Equal(t, e.ReservationID, n.ReservationID)
		})
	}
}
