package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Design is a saved jersey artwork
type Design struct {
	ID       string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name     string    `gorm:"not null" json:"name"`
	ImageKey string    `gorm:"not null" json:"image_key"`     // storage key for the PNG
	ImageURL *string   `gorm:"-" json:"image_url,omitempty"` // computed field, presigned URL for image
	Created  time.Time `gorm:"not null;index" json:"created"`
}

// TableName specifies the table name for the Design model
func (Design) TableName() string {
	return "designs"
}

// BeforeCreate assigns the identifier and creation time
func (d *Design) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Created.IsZero() {
		d.Created = time.Now().UTC()
	}
	return nil
}
