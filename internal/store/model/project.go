package model

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID          uuid.UUID `gorm:"primaryKey"`
	TenantID    uuid.UUID `gorm:"index;not null"`
	Name        string    `gorm:"not null"`
	Address     string
	StartDate   time.Time `gorm:"type:date"`
	EndDate     time.Time `gorm:"type:date"`
	DwProjectID *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
