package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// MealOption is one configurable menu entry for an event. IDs are unique within
// the event and referenced by EventGuest.MealChoice.
type MealOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Event is a scheduled part of a wedding (ceremony, reception, brunch).
type Event struct {
	BaseModel

	WeddingID string `gorm:"type:uuid;not null;index" json:"wedding_id"`

	Name     string    `gorm:"type:varchar(255);not null" json:"name"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Venue    string    `gorm:"type:varchar(255)" json:"venue,omitempty"`
	Address  string    `gorm:"type:text" json:"address,omitempty"`

	MealOptions  datatypes.JSON `json:"meal_options"`
	DisplayOrder int            `gorm:"default:0;index" json:"display_order"`

	Invitations []EventGuest `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"invitations,omitempty"`
}

// MealOptionList decodes the stored meal options, preserving order.
func (e *Event) MealOptionList() ([]MealOption, error) {
	if len(e.MealOptions) == 0 {
		return nil, nil
	}

	var options []MealOption
	if err := json.Unmarshal(e.MealOptions, &options); err != nil {
		return nil, err
	}
	return options, nil
}

// HasMealOption reports whether the given id is a configured meal option.
func (e *Event) HasMealOption(id string) bool {
	options, err := e.MealOptionList()
	if err != nil {
		return false
	}
	for _, option := range options {
		if option.ID == id {
			return true
		}
	}
	return false
}
