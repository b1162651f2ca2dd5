package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
)

const (
	EventClaimConfirmed = "claim.confirmed"
	EventClaimCancelled = "claim.cancelled"
)

type OutboxEvent struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	TenantID      uuid.UUID `gorm:"type:uuid;index;not null"`
	EventID       string    `gorm:"uniqueIndex;not null"`
	EventName     string    `gorm:"not null"`
	Payload       []byte    `gorm:"type:jsonb;not null"`
	Target        string    `gorm:"not null"`
	Status        string    `gorm:"index:idx_outbox_status_next_attempt;not null;default:pending"`
	RetryCount    int       `gorm:"not null;default:0"`
	NextAttemptAt time.Time `gorm:"index:idx_outbox_status_next_attempt;not null"`
	LastError     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
