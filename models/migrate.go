package models

import "gorm.io/gorm"

// All returns every persisted model, in migration order
func All() []interface{} {
	return []interface{}{
		&Order{},
		&Jersey{},
		&JerseyDraft{},
		&Customer{},
		&Material{},
		&Supplier{},
		&Notification{},
		&Design{},
		&Report{},
		&Profile{},
	}
}

// Migrate creates or updates the schema for every model
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
