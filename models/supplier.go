package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Supplier statuses
const (
	SupplierActive       = "active"
	SupplierPending      = "pending"
	SupplierDiscontinued = "discontinued"
)

// Supplier is a vendor that can be referenced by orders and emailed through the relay
type Supplier struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"not null" json:"email"`
	Status    string    `gorm:"not null;default:'active'" json:"status"`
	Location  string    `gorm:"not null" json:"location"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Supplier model
func (Supplier) TableName() string {
	return "suppliers"
}

// BeforeCreate assigns the identifier
func (s *Supplier) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// IsValidSupplierStatus reports whether s is a known supplier status
func IsValidSupplierStatus(s string) bool {
	return s == SupplierActive || s == SupplierPending || s == SupplierDiscontinued
}
