package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/everafterhq/everafter/internal/models"
)

func seedOwner(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	owner := &models.User{Email: email, Role: models.RoleCouple, IsActive: true}
	require.NoError(t, db.Create(owner).Error)
	return owner
}

func seedWedding(t *testing.T, db *gorm.DB, subdomain string) *models.Wedding {
	t.Helper()

	owner := seedOwner(t, db, subdomain+"@example.com")

	wedding := &models.Wedding{
		OwnerID:     owner.ID,
		CoupleNames: "Amy & Sam",
		WeddingDate: time.Date(2027, 6, 12, 14, 0, 0, 0, time.UTC),
		Subdomain:   subdomain,
		RSVPCode:    strings.ToUpper("RC" + subdomain),
	}
	require.NoError(t, db.Create(wedding).Error)
	return wedding
}

func seedGuest(t *testing.T, db *gorm.DB, weddingID, name string, allowPlusOne bool) *models.Guest {
	t.Helper()

	guest := &models.Guest{
		WeddingID:    weddingID,
		DisplayName:  name,
		Email:        "",
		AllowPlusOne: allowPlusOne,
	}
	require.NoError(t, db.Create(guest).Error)
	return guest
}

func seedEvent(t *testing.T, db *gorm.DB, weddingID, name string, mealOptions string) *models.Event {
	t.Helper()

	event := &models.Event{
		WeddingID: weddingID,
		Name:      name,
		StartsAt:  time.Date(2027, 6, 12, 14, 0, 0, 0, time.UTC),
		EndsAt:    time.Date(2027, 6, 12, 22, 0, 0, 0, time.UTC),
	}
	if mealOptions != "" {
		event.MealOptions = datatypes.JSON(mealOptions)
	}
	require.NoError(t, db.Create(event).Error)
	return event
}

func seedInvitation(t *testing.T, db *gorm.DB, weddingID, eventID, guestID string) *models.EventGuest {
	t.Helper()

	invitation := &models.EventGuest{WeddingID: weddingID, EventID: eventID, GuestID: guestID}
	require.NoError(t, db.Create(invitation).Error)
	return invitation
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
