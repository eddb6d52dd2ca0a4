package model

import "time"

// HoldWindow is how long a hold blocks its unit before it lapses.
const HoldWindow = 10 * time.Minute

// ReservationFeeRate is applied to the base price and rounded to a whole amount.
const ReservationFeeRate = 0.12

type GuestDetails struct {
	Name   string `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Phone  string `json:"phone" bson:"phone" validate:"required,e164"`
	Email  string `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	Guests int    `json:"guests" bson:"guests" validate:"required,min=1,max=50"`
	Notes  string `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=500"`
}

type Amounts struct {
	UnitPrice      float64 `json:"unit_price" bson:"unit_price" validate:"gte=0"`
	Periods        int     `json:"periods" bson:"periods" validate:"gte=0"`
	BasePrice      float64 `json:"base_price" bson:"base_price" validate:"gte=0"`
	ReservationFee float64 `json:"reservation_fee" bson:"reservation_fee" validate:"gte=0"`
	Total          float64 `json:"total" bson:"total" validate:"gte=0"`
}

type Reservation struct {
	ID            string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Kind          string        `json:"kind" bson:"kind" validate:"required,oneof=room vehicle"`
	UnitID        string        `json:"unit_id" bson:"unit_id" validate:"required,mongodb"`
	OwnerID       *string       `json:"owner_id" bson:"owner_id"`
	PeriodStart   time.Time     `json:"period_start" bson:"period_start" validate:"required"`
	PeriodEnd     time.Time     `json:"period_end" bson:"period_end" validate:"required,gtfield=PeriodStart"`
	Status        string        `json:"status" bson:"status" validate:"required,reservation_status"`
	HoldExpiresAt *time.Time    `json:"hold_expires_at,omitempty" bson:"hold_expires_at,omitempty"`
	Guest         *GuestDetails `json:"guest,omitempty" bson:"guest,omitempty"`
	Amounts       Amounts       `json:"amounts" bson:"amounts"`
	PaymentStatus string        `json:"payment_status" bson:"payment_status" validate:"required,oneof=unpaid paid refunded"`
	CreatedAt     time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" bson:"updated_at"`
}

// IsOwnedBy reports whether callerID owns the reservation. Walk-ins have no owner.
func (r *Reservation) IsOwnedBy(callerID string) bool {
	return r.OwnerID != nil && callerID != "" && *r.OwnerID == callerID
}

type HoldRequest struct {
	UnitID      string    `json:"unit_id" validate:"required,mongodb"`
	PeriodStart time.Time `json:"period_start" validate:"required"`
	PeriodEnd   time.Time `json:"period_end" validate:"required"`
}

type ReservationRequest struct {
	UnitID      string       `json:"unit_id" validate:"required,mongodb"`
	PeriodStart time.Time    `json:"period_start" validate:"required"`
	PeriodEnd   time.Time    `json:"period_end" validate:"required"`
	Guest       GuestDetails `json:"guest"`
	// OwnerID lets staff book on behalf of a customer. Ignored for customers.
	OwnerID *string `json:"owner_id,omitempty"`
}

type StatusUpdate struct {
	Status string `json:"status" validate:"required"`
}

type PaymentUpdate struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=unpaid paid refunded"`
}

type AmountsCorrection struct {
	BasePrice      float64 `json:"base_price" validate:"gte=0"`
	ReservationFee float64 `json:"reservation_fee" validate:"gte=0"`
	Reason         string  `json:"reason" validate:"required,min=3,max=200"`
}

type ReservationFilter struct {
	UnitID string
	Kind   string
	Status string
	// OwnerID restricts results to one owner; customers only ever see their own.
	OwnerID string
}

// Interval is a blocking period returned by availability queries.
type Interval struct {
	ReservationID string    `json:"reservation_id"`
	Status        string    `json:"status"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
}

type Availability struct {
	UnitID    string     `json:"unit_id"`
	Start     time.Time  `json:"start"`
	End       time.Time  `json:"end"`
	Available bool       `json:"available"`
	Blocking  []Interval `json:"blocking"`
}

// AmountsAudit records an admin override of a reservation's amounts.
type AmountsAudit struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty"`
	ReservationID string    `json:"reservation_id" bson:"reservation_id"`
	Previous      Amounts   `json:"previous" bson:"previous"`
	Corrected     Amounts   `json:"corrected" bson:"corrected"`
	Reason        string    `json:"reason" bson:"reason"`
	CorrectedBy   string    `json:"corrected_by" bson:"corrected_by"`
	CorrectedAt   time.Time `json:"corrected_at" bson:"corrected_at"`
}
