package services

import (
	"strings"

	"gorm.io/gorm"
)

// byDisplayName orders guest rows case-insensitively, which is what the
// dashboard and aggregation views expect.
const byDisplayName = "LOWER(display_name) ASC"

// weddingScope restricts a query to a single tenant. Every service query on
// tenant-owned rows goes through this scope.
func weddingScope(weddingID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("wedding_id = ?", weddingID)
	}
}

// normalizeOptional trims whitespace and collapses blank strings to empty,
// so optional text fields store NULL-ish zero values instead of "  ".
func normalizeOptional(value string) string {
	return strings.TrimSpace(value)
}
