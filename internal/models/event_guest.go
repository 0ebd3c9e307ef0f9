package models

import "time"

// RSVPStatus enumerates guest responses. A nil status on an EventGuest row
// means the guest has not answered yet.
type RSVPStatus string

const (
	RSVPAttending RSVPStatus = "ATTENDING"
	RSVPDeclined  RSVPStatus = "DECLINED"
	RSVPMaybe     RSVPStatus = "MAYBE"
)

// MaxPlusOneCount bounds how many plus-ones a single guest may bring.
const MaxPlusOneCount = 10

// MaxDietaryNotesLen bounds the free-text dietary notes field.
const MaxDietaryNotesLen = 500

// EventGuest joins a guest to an event and holds the RSVP state. A row exists
// only if the guest is invited to that event; absence means "not invited".
type EventGuest struct {
	BaseModel

	WeddingID string `gorm:"type:uuid;not null;index" json:"wedding_id"`
	EventID   string `gorm:"type:uuid;not null;uniqueIndex:idx_event_guest" json:"event_id"`
	GuestID   string `gorm:"type:uuid;not null;uniqueIndex:idx_event_guest" json:"guest_id"`

	RSVPStatus *RSVPStatus `gorm:"type:varchar(16)" json:"rsvp_status"`
	RSVPAt     *time.Time  `json:"rsvp_at"`

	PlusOneCount int    `gorm:"default:0" json:"plus_one_count"`
	PlusOneName  string `gorm:"type:varchar(255)" json:"plus_one_name,omitempty"`
	MealChoice   string `gorm:"type:varchar(64)" json:"meal_choice,omitempty"`
	DietaryNotes string `gorm:"type:varchar(500)" json:"dietary_notes,omitempty"`

	Event *Event `json:"event,omitempty"`
	Guest *Guest `json:"guest,omitempty"`
}

// IsAttending reports whether the guest confirmed attendance.
func (eg *EventGuest) IsAttending() bool {
	return eg.RSVPStatus != nil && *eg.RSVPStatus == RSVPAttending
}

// Headcount returns the seats this invitation consumes when attending: the
// guest plus their plus-ones. Non-attending rows contribute zero.
func (eg *EventGuest) Headcount() int {
	if !eg.IsAttending() {
		return 0
	}
	return 1 + eg.PlusOneCount
}
