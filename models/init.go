package models

import (
	"gorm.io/gorm"
)

// Migrate creates or updates the users, assets and labels tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Asset{}, &Label{})
}
