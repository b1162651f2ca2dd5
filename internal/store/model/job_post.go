package model

import (
	"time"

	"github.com/google/uuid"
)

type JobPost struct {
	ID           uuid.UUID `gorm:"primaryKey"`
	TenantID     uuid.UUID `gorm:"index;not null"`
	ProjectID    uuid.UUID `gorm:"index;not null"`
	Project      Project   `gorm:"foreignKey:ProjectID"`
	Title        string    `gorm:"not null"`
	Trade        string    `gorm:"index;not null"`
	StartDate    time.Time `gorm:"type:date"`
	EndDate      time.Time `gorm:"type:date"`
	PricePerSlot int64     `gorm:"not null;default:0"`
	Published    bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
