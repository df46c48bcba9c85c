package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Material statuses, always derived from stock
const (
	MaterialAvailable  = "available"
	MaterialOutOfStock = "out-of-stock"
)

// LowStockThreshold is the stock level below which a material is reported as low
const LowStockThreshold = 10

// Material is a fabric or product base that orders are made from
type Material struct {
	ID        string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string          `gorm:"not null;index" json:"name"`
	Type      string          `gorm:"not null" json:"type"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Stock     int             `gorm:"not null;default:0" json:"stock"`
	Status    string          `gorm:"not null" json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Material model
func (Material) TableName() string {
	return "materials"
}

// BeforeCreate assigns the identifier
func (m *Material) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// BeforeSave recomputes the status from stock on every write
func (m *Material) BeforeSave(tx *gorm.DB) error {
	m.Status = MaterialStatus(m.Stock)
	return nil
}

// MaterialStatus derives the availability status for a stock level
func MaterialStatus(stock int) string {
	if stock > 0 {
		return MaterialAvailable
	}
	return MaterialOutOfStock
}

// IsLowStock reports whether the material is in stock but below the alert threshold
func (m Material) IsLowStock() bool {
	return m.Stock > 0 && m.Stock < LowStockThreshold
}
