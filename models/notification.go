package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is an entry in the admin notification feed
type Notification struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Type         string    `gorm:"not null;default:'info'" json:"type"` // info, success, warning, error
	Title        string    `gorm:"not null" json:"title"`
	Message      string    `gorm:"type:text;not null" json:"message"`
	Read         bool      `gorm:"not null;default:false;index" json:"read"`
	Timestamp    time.Time `gorm:"not null;index" json:"timestamp"`
	OrderID      *string   `gorm:"type:varchar(36)" json:"order_id,omitempty"`
	CustomerName *string   `json:"customer_name,omitempty"`
	JerseyCount  *int      `json:"jersey_count,omitempty"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate assigns the identifier and timestamp
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now().UTC()
	}
	if n.Type == "" {
		n.Type = "info"
	}
	return nil
}
