package model

import "slices"

const (
	StatusHold      = "hold"
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"

	StatusCheckedIn  = "checked-in"
	StatusCheckedOut = "checked-out"

	StatusActive    = "active"
	StatusCompleted = "completed"
)

const (
	PaymentUnpaid   = "unpaid"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

var (
	roomSequence    = []string{StatusHold, StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut}
	vehicleSequence = []string{StatusHold, StatusPending, StatusConfirmed, StatusActive, StatusCompleted}
)

// StatusSequence returns the forward lifecycle for a unit kind, hold first.
func StatusSequence(kind string) []string {
	switch kind {
	case KindRoom:
		return roomSequence
	case KindVehicle:
		return vehicleSequence
	default:
		return nil
	}
}

func IsValidStatus(kind, status string) bool {
	return status == StatusCancelled || slices.Contains(StatusSequence(kind), status)
}

func IsTerminalStatus(status string) bool {
	switch status {
	case StatusCancelled, StatusCheckedOut, StatusCompleted:
		return true
	default:
		return false
	}
}

// IsForwardTransition reports whether to lies strictly after from in the kind's
// lifecycle. Steps may be skipped. Cancelled is reachable from any non-terminal status.
func IsForwardTransition(kind, from, to string) bool {
	if IsTerminalStatus(from) {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	seq := StatusSequence(kind)
	fromIdx := slices.Index(seq, from)
	toIdx := slices.Index(seq, to)
	return fromIdx >= 0 && toIdx > fromIdx
}

func IsValidPaymentStatus(status string) bool {
	switch status {
	case PaymentUnpaid, PaymentPaid, PaymentRefunded:
		return true
	default:
		return false
	}
}
