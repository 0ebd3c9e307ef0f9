package models

// Guest is one invited person (or household contact) belonging to a wedding.
// TableID is the seating assignment; nil means unassigned.
type Guest struct {
	BaseModel

	WeddingID string `gorm:"type:uuid;not null;index" json:"wedding_id"`

	DisplayName  string `gorm:"type:varchar(255);not null" json:"display_name"`
	PartyName    string `gorm:"type:varchar(255)" json:"party_name,omitempty"`
	Email        string `gorm:"type:varchar(255)" json:"email,omitempty"`
	Phone        string `gorm:"type:varchar(64)" json:"phone,omitempty"`
	AllowPlusOne bool   `gorm:"default:false" json:"allow_plus_one"`

	TableID *string       `gorm:"type:uuid;index" json:"table_id,omitempty"`
	Table   *SeatingTable `gorm:"constraint:OnDelete:SET NULL" json:"table,omitempty"`

	Invitations []EventGuest `gorm:"foreignKey:GuestID;constraint:OnDelete:CASCADE" json:"invitations,omitempty"`
}
