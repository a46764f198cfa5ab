package models

import (
	"time"

	"github.com/google/uuid"
)

type ApiKey struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	KeyPrefix   string    `gorm:"type:varchar(20);not null"`
	KeyHash     string    `gorm:"type:varchar(64);uniqueIndex;not null"` // HMAC-SHA256 of key
	Description string    `gorm:"type:varchar(255)"`
	IsActive    bool      `gorm:"default:true;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ApiKey) TableName() string {
	return "api_keys"
}
