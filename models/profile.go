package models

import "time"

// ProfileID is the key of the singleton settings profile row
const ProfileID = "profile"

// Profile is the admin's settings profile
type Profile struct {
	ID       string    `gorm:"primaryKey;type:varchar(36)" json:"-"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	Updated  time.Time `json:"updated"`
}

// TableName specifies the table name for the Profile model
func (Profile) TableName() string {
	return "settings_profile"
}
