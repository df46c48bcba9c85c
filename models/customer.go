package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer statuses
const (
	CustomerActive   = "active"
	CustomerInactive = "inactive"
)

// Customer is derived from orders at submission time and looked up by (name, phone)
type Customer struct {
	ID            string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name          string     `gorm:"not null;uniqueIndex:idx_customer_name_phone" json:"name"`
	Phone         string     `gorm:"not null;uniqueIndex:idx_customer_name_phone" json:"phone"`
	Email         string     `json:"email"`
	Status        string     `gorm:"not null;default:'active'" json:"status"`
	Joined        time.Time  `gorm:"not null" json:"joined"`
	LastOrderDate *time.Time `json:"last_order_date"`
	LatestOrderID *string    `gorm:"type:varchar(36)" json:"latest_order_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

// BeforeCreate assigns the identifier and join date
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Joined.IsZero() {
		c.Joined = time.Now().UTC()
	}
	if c.Status == "" {
		c.Status = CustomerActive
	}
	return nil
}
