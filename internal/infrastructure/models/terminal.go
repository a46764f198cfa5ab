package models

import (
	"time"

	"github.com/google/uuid"
)

type Terminal struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"` // one terminal per tenant
	Name             string    `gorm:"type:varchar(255);not null"`
	SecretEncrypted  string    `gorm:"type:text;not null"`                    // AES-256-GCM
	SecretHash       string    `gorm:"type:varchar(64);uniqueIndex;not null"` // HMAC-SHA256
	SecretIdentifier *string   `gorm:"type:varchar(2048)"`                    // vault ARN
	IsActive         bool      `gorm:"default:true;not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Terminal) TableName() string {
	return "terminals"
}
