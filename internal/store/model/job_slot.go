package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	SlotStatusAvailable = "available"
	SlotStatusClaimed   = "claimed"
	SlotStatusCancelled = "cancelled"
	SlotStatusCompleted = "completed"
)

// Cancel reasons accepted by the cancel operation.
const (
	CancelReasonNoShow        = "no_show"
	CancelReasonWeather       = "weather"
	CancelReasonClientChange  = "client_change"
	CancelReasonMaterialDelay = "material_delay"
	CancelReasonOther         = "other"
)

func ValidCancelReason(reason string) bool {
	switch reason {
	case CancelReasonNoShow, CancelReasonWeather, CancelReasonClientChange, CancelReasonMaterialDelay, CancelReasonOther:
		return true
	}
	return false
}

type JobSlot struct {
	ID               uuid.UUID  `gorm:"primaryKey"`
	TenantID         uuid.UUID  `gorm:"index:idx_job_slots_tenant_status;not null"`
	JobPostID        uuid.UUID  `gorm:"uniqueIndex:job_slots_post_date_no;not null"`
	JobPost          JobPost    `gorm:"foreignKey:JobPostID"`
	WorkDate         time.Time  `gorm:"type:date;uniqueIndex:job_slots_post_date_no;not null"`
	SlotNo           int        `gorm:"uniqueIndex:job_slots_post_date_no;not null;default:1"`
	Status           string     `gorm:"index:idx_job_slots_tenant_status;not null;default:available"`
	ClaimedByCompany *uuid.UUID
	ClaimedByUser    *uuid.UUID
	ClaimedAt        *time.Time
	CancelledAt      *time.Time
	CancelReason     *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
