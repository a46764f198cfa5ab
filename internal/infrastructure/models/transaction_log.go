package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TransactionRequestLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID      `gorm:"type:uuid;not null;index"`
	Type       string         `gorm:"type:varchar(20);not null"`
	Payload    datatypes.JSON `gorm:"type:jsonb"` // sanitized
	OrderID    string         `gorm:"type:varchar(255);index"`
	RawContent string         `gorm:"type:text"` // sanitized form body
	CreatedAt  time.Time
}

func (TransactionRequestLog) TableName() string {
	return "transaction_request_logs"
}

type TransactionResponseLog struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequestID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Status        string    `gorm:"type:varchar(20);not null"`
	Message       string    `gorm:"type:text"`
	TransactionID *string   `gorm:"type:varchar(255);index"`
	RawResponse   string    `gorm:"type:text"`
	CreatedAt     time.Time

	Request *TransactionRequestLog `gorm:"foreignKey:RequestID;constraint:OnDelete:RESTRICT"`
}

func (TransactionResponseLog) TableName() string {
	return "transaction_response_logs"
}

// All lists every model for AutoMigrate
func All() []interface{} {
	return []interface{}{
		&Tenant{},
		&ApiKey{},
		&Terminal{},
		&TransactionRequestLog{},
		&TransactionResponseLog{},
	}
}
