package models

// SeatingTable is a reception table with a fixed number of seats. The
// occupancy invariant (sum of 1+plusOneCount per assigned guest must not
// exceed Capacity) is enforced inside the assignment transaction, not by a
// database constraint.
type SeatingTable struct {
	BaseModel

	WeddingID string `gorm:"type:uuid;not null;index" json:"wedding_id"`

	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	Capacity int    `gorm:"not null" json:"capacity"`

	Guests []Guest `gorm:"foreignKey:TableID" json:"guests,omitempty"`
}
