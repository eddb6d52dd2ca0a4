package model

import "time"

const slotLockPrefix = "unit_lock_"

// SlotLock is an advisory per-unit lock held while a request checks and writes the ledger.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	UnitID    string    `bson:"unit_id" json:"unit_id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

func SlotLockID(unitID string) string {
	return slotLockPrefix + unitID
}
