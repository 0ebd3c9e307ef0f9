package database

import (
	"gorm.io/gorm"

	"github.com/everafterhq/everafter/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Wedding{},
		&models.Guest{},
		&models.Event{},
		&models.EventGuest{},
		&models.SeatingTable{},
		&models.GiftItem{},
		&models.Photo{},
		&models.BroadcastMessage{},
		&models.CacheEntry{},
	)
}

// Themes available to new weddings. The catalog is intentionally small; theme
// rendering lives entirely in the frontend.
var themeCatalog = []string{"classic", "botanical", "modern", "rustic", "noir"}

// Themes returns the seeded theme catalog in display order.
func Themes() []string {
	out := make([]string, len(themeCatalog))
	copy(out, themeCatalog)
	return out
}

// KnownTheme reports whether the theme id is part of the seeded catalog.
func KnownTheme(id string) bool {
	for _, theme := range themeCatalog {
		if theme == id {
			return true
		}
	}
	return false
}

// SeedData inserts default data required by a fresh installation.
func SeedData(db *gorm.DB) error {
	// Nothing to seed beyond the schema today: the theme catalog is static and
	// admin accounts are provisioned through configuration.
	return nil
}
