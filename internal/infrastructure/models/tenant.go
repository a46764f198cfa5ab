package models

import (
	"time"

	"github.com/google/uuid"
)

type Tenant struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyName string    `gorm:"type:varchar(255);not null"`
	CompanyCode string    `gorm:"type:varchar(50);uniqueIndex;not null"` // upper-cased
	IsActive    bool      `gorm:"default:true;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	ApiKey   *ApiKey   `gorm:"foreignKey:TenantID"`
	Terminal *Terminal `gorm:"foreignKey:TenantID"`
}

func (Tenant) TableName() string {
	return "tenants"
}
