package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog rows are append-only. Nothing in the codebase updates or deletes
// them.
type AuditLog struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	TenantID    uuid.UUID `gorm:"index:idx_audit_tenant_created,sort:desc;not null"`
	ActorUserID *uuid.UUID
	ActorRole   string
	Action      string    `gorm:"not null"`
	TargetTable string    `gorm:"not null"`
	TargetID    string    `gorm:"not null"`
	Payload     []byte    `gorm:"type:jsonb"`
	CreatedAt   time.Time `gorm:"index:idx_audit_tenant_created,sort:desc"`
}
