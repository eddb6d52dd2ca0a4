package notifier

import (
	"context"
	"fmt"
	"staydesk/internal/reservations/events"
	"staydesk/pkg/kafka"
	"staydesk/pkg/locale"
	"staydesk/pkg/logger"
)

const periodLayout = "2006-01-02 15:04 MST"

const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

// Notification is one message to a guest.
type Notification struct {
	EventID       string
	EventType     string
	ReservationID string
	Channel       string
	Recipient     string
	Subject       string
	Body          string
}

// Sender delivers notifications.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// LogSender writes notifications to the structured log instead of a provider.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, n Notification) error {
	s.log.Info("Guest notification",
		"event_id", n.EventID,
		"event_type", n.EventType,
		"reservation_id", n.ReservationID,
		"channel", n.Channel,
		"recipient", n.Recipient,
		"subject", n.Subject,
		"body", n.Body,
	)
	return nil
}

// Compose builds the guest notification for e. Events without guest contact
// details, and events guests do not hear about, yield false.
func Compose(eventID string, e events.Event) (Notification, bool) {
	if e.Guest == nil {
		return Notification{}, false
	}

	n := Notification{
		EventID:       eventID,
		EventType:     e.Type,
		ReservationID: e.ReservationID,
		Channel:       ChannelSMS,
		Recipient:     e.Guest.Phone,
	}
	if e.Guest.Email != "" {
		n.Channel = ChannelEmail
		n.Recipient = e.Guest.Email
	}
	if n.Recipient == "" {
		return Notification{}, false
	}

	// guests read times in their own zone, guessed from the phone's country
	loc := locale.LocationForPhone(e.Guest.Phone)
	period := fmt.Sprintf("%s to %s", e.PeriodStart.In(loc).Format(periodLayout), e.PeriodEnd.In(loc).Format(periodLayout))

	switch e.Type {
	case kafka.EventHoldConfirmed, kafka.EventReservationCreated:
		n.Subject = "Reservation received"
		n.Body = fmt.Sprintf("Hi %s, we received your %s reservation for %s. Total due: %.2f.",
			e.Guest.Name, e.Kind, period, e.Amounts.Total)
	case kafka.EventReservationStatusChanged:
		n.Subject = "Reservation " + e.Status
		n.Body = fmt.Sprintf("Hi %s, your %s reservation for %s is now %s.",
			e.Guest.Name, e.Kind, period, e.Status)
	case kafka.EventReservationAmountsCorrected:
		n.Subject = "Reservation amount updated"
		n.Body = fmt.Sprintf("Hi %s, the total for your reservation for %s is now %.2f.",
			e.Guest.Name, period, e.Amounts.Total)
	case kafka.EventReservationPaymentMarked:
		n.Subject = "Payment " + e.PaymentStatus
		n.Body = fmt.Sprintf("Hi %s, the payment for your reservation for %s is marked %s.",
			e.Guest.Name, period, e.PaymentStatus)
	default:
		return Notification{}, false
	}
	return n, true
}
