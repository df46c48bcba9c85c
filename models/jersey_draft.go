package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// JerseyDraft is the customer's buffered, not yet submitted jersey list for one order link
type JerseyDraft struct {
	StorageKey  string         `gorm:"primaryKey;type:varchar(255)" json:"-"`
	OrderID     string         `gorm:"type:varchar(36);not null;index" json:"order_id"`
	Entries     datatypes.JSON `gorm:"type:json" json:"entries"`
	FormData    datatypes.JSON `gorm:"type:json" json:"form_data"`
	FormEnabled bool           `json:"form_enabled"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TableName specifies the table name for the JerseyDraft model
func (JerseyDraft) TableName() string {
	return "jersey_drafts"
}

// DraftStorageKey is the buffer key for an order link
func DraftStorageKey(orderID, token string) string {
	return fmt.Sprintf("jersey_data_%s_%s", orderID, token)
}
