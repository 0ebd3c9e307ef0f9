package models

import (
	"time"

	"gorm.io/datatypes"
)

// Wedding is the unit of multi-tenant isolation: one couple's site and data.
// Every tenant-scoped row carries the wedding ID and every query filters on it.
type Wedding struct {
	BaseModel

	OwnerID     string    `gorm:"type:uuid;not null;index" json:"owner_id"`
	CoupleNames string    `gorm:"type:varchar(255);not null" json:"couple_names"`
	WeddingDate time.Time `json:"wedding_date"`

	// Subdomain hosts the couple's site; RSVPCode is the shared secret guests
	// use to find their invitation. Both are unique across the platform.
	Subdomain string `gorm:"not null;uniqueIndex" json:"subdomain"`
	RSVPCode  string `gorm:"not null;uniqueIndex" json:"rsvp_code"`

	ThemeID       string         `gorm:"type:varchar(64);default:'classic'" json:"theme_id"`
	ThemeSettings datatypes.JSON `json:"theme_settings"`

	Suspended bool `gorm:"default:false;index" json:"suspended"`

	Guests     []Guest            `gorm:"foreignKey:WeddingID;constraint:OnDelete:CASCADE" json:"guests,omitempty"`
	Events     []Event            `gorm:"foreignKey:WeddingID;constraint:OnDelete:CASCADE" json:"events,omitempty"`
	Tables     []SeatingTable     `gorm:"foreignKey:WeddingID;constraint:OnDelete:CASCADE" json:"tables,omitempty"`
	Gifts      []GiftItem         `gorm:"foreignKey:WeddingID;constraint:OnDelete:CASCADE" json:"gifts,omitempty"`
	Photos     []Photo            `gorm:"foreignKey:WeddingID;constraint:OnDelete:CASCADE" json:"photos,omitempty"`
	Broadcasts []BroadcastMessage `gorm:"foreignKey:WeddingID;constraint:OnDelete:CASCADE" json:"broadcasts,omitempty"`
}
