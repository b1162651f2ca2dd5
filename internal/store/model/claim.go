package model

import (
	"time"

	"github.com/google/uuid"
)

// Claim is the durable record of a won slot. One row per slot, ever; the
// unique index on SlotID backs the at-most-one-claim guarantee at storage.
type Claim struct {
	ID        uuid.UUID `gorm:"primaryKey"`
	TenantID  uuid.UUID `gorm:"index;not null"`
	SlotID    uuid.UUID `gorm:"uniqueIndex:claims_slot_id;not null"`
	CompanyID uuid.UUID `gorm:"not null"`
	UserID    *uuid.UUID
	RequestID string    `gorm:"uniqueIndex:claims_request_id;not null"`
	ClaimedAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}
