package kafka

// Event types carried in the event-type header of reservation-events.
const (
	EventHoldCreated                 = "hold.created"
	EventHoldConfirmed               = "hold.confirmed"
	EventHoldReleased                = "hold.released"
	EventReservationCreated          = "reservation.created"
	EventReservationStatusChanged    = "reservation.status_changed"
	EventReservationAmountsCorrected = "reservation.amounts_corrected"
	EventReservationPaymentMarked    = "reservation.payment_marked"
	EventReservationDeleted          = "reservation.deleted"
)

const SchemaVersion = "1"
