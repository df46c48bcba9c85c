package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Report types
const (
	ReportSales     = "sales"
	ReportCustomer  = "customer"
	ReportInventory = "inventory"
	ReportFinancial = "financial"
)

// Report records a generated CSV report
type Report struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Type       string    `gorm:"not null;index" json:"type"`
	DateFrom   *string   `json:"date_from"` // YYYY-MM-DD
	DateTo     *string   `json:"date_to"`
	FileName   string    `gorm:"not null" json:"file_name"`
	SizeKB     float64   `json:"size"`
	StorageKey string    `json:"-"`
	Generated  time.Time `gorm:"not null;index" json:"generated"`
}

// TableName specifies the table name for the Report model
func (Report) TableName() string {
	return "reports"
}

// BeforeCreate assigns the identifier and generation time
func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Generated.IsZero() {
		r.Generated = time.Now().UTC()
	}
	return nil
}

// IsValidReportType reports whether t names a report the service can generate
func IsValidReportType(t string) bool {
	switch t {
	case ReportSales, ReportCustomer, ReportInventory, ReportFinancial:
		return true
	}
	return false
}
