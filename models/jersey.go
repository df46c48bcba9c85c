package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Jersey is one garment's customization details, a line item under an Order
type Jersey struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderID      string    `gorm:"type:varchar(36);not null;index" json:"order_id"`
	Type         string    `gorm:"not null" json:"type"`
	Name         string    `gorm:"not null" json:"name"`
	Number       string    `gorm:"not null" json:"number"`
	SizeCategory string    `gorm:"not null" json:"size_category"`
	Size         string    `gorm:"not null" json:"size"`
	Sleeve       string    `gorm:"not null" json:"sleeve"`
	Shorts       string    `gorm:"not null" json:"shorts"`
	Created      time.Time `gorm:"not null;index" json:"created"` // set when persisted, not when the form was filled
}

// TableName specifies the table name for the Jersey model
func (Jersey) TableName() string {
	return "jerseys"
}

// BeforeCreate assigns the identifier and the persistence timestamp
func (j *Jersey) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	j.Created = time.Now().UTC()
	return nil
}

// AfterFind rejects jerseys missing any of the seven required fields
func (j *Jersey) AfterFind(tx *gorm.DB) error {
	return requireFields("jersey", j.ID, map[string]string{
		"type":          j.Type,
		"name":          j.Name,
		"number":        j.Number,
		"size_category": j.SizeCategory,
		"size":          j.Size,
		"sleeve":        j.Sleeve,
		"shorts":        j.Shorts,
	})
}

// JerseyFields holds the mutable fields of a jersey, as entered by the admin or the customer
type JerseyFields struct {
	Type         string `json:"type"`
	Name         string `json:"name"`
	Number       string `json:"number"`
	SizeCategory string `json:"size_category"`
	Size         string `json:"size"`
	Sleeve       string `json:"sleeve"`
	Shorts       string `json:"shorts"`
}

// Fields returns the mutable fields of the jersey
func (j Jersey) Fields() JerseyFields {
	return JerseyFields{
		Type:         j.Type,
		Name:         j.Name,
		Number:       j.Number,
		SizeCategory: j.SizeCategory,
		Size:         j.Size,
		Sleeve:       j.Sleeve,
		Shorts:       j.Shorts,
	}
}

// Apply copies the fields onto the jersey
func (f JerseyFields) Apply(j *Jersey) {
	j.Type = f.Type
	j.Name = f.Name
	j.Number = f.Number
	j.SizeCategory = f.SizeCategory
	j.Size = f.Size
	j.Sleeve = f.Sleeve
	j.Shorts = f.Shorts
}

// UpdateMap returns the column updates for replacing every mutable field
func (f JerseyFields) UpdateMap() map[string]interface{} {
	return map[string]interface{}{
		"type":          f.Type,
		"name":          f.Name,
		"number":        f.Number,
		"size_category": f.SizeCategory,
		"size":          f.Size,
		"sleeve":        f.Sleeve,
		"shorts":        f.Shorts,
	}
}
