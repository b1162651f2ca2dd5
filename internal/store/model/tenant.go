package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	IntegrationModeStandalone = "standalone"
	IntegrationModeDandori    = "dandori"
)

type Tenant struct {
	ID              uuid.UUID `gorm:"primaryKey"`
	Name            string    `gorm:"not null"`
	IntegrationMode string    `gorm:"not null;default:standalone"`
	Active          bool      `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
