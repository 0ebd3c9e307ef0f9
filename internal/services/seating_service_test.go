package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/everafterhq/everafter/internal/database/testutil"
	"github.com/everafterhq/everafter/internal/models"
	appErrors "github.com/everafterhq/everafter/pkg/errors"
)

func seedTable(t *testing.T, db *gorm.DB, weddingID, name string, capacity int) *models.SeatingTable {
	t.Helper()

	table := &models.SeatingTable{WeddingID: weddingID, Name: name, Capacity: capacity}
	require.NoError(t, db.Create(table).Error)
	return table
}

func attend(t *testing.T, db *gorm.DB, weddingID, eventID, guestID string, plusOnes int) {
	t.Helper()

	status := models.RSVPAttending
	invitation := &models.EventGuest{
		WeddingID:    weddingID,
		EventID:      eventID,
		GuestID:      guestID,
		RSVPStatus:   &status,
		PlusOneCount: plusOnes,
	}
	require.NoError(t, db.Create(invitation).Error)
}

func TestCanAssign(t *testing.T) {
	// Capacity 10, occupancy 2 (one occupant with one plus-one), incoming
	// weight 10 (guest plus nine plus-ones): 2+10 > 10 must be rejected.
	require.False(t, CanAssign(10, 2, 10))
	require.True(t, CanAssign(10, 2, 8))
	require.True(t, CanAssign(1, 0, 1))
	require.False(t, CanAssign(0, 0, 1))
}

func TestGuestWeightUsesHighestAttendingPlusOnes(t *testing.T) {
	guest := &models.Guest{}
	guest.ID = "g1"

	attending := models.RSVPAttending
	declined := models.RSVPDeclined

	invitations := []models.EventGuest{
		{GuestID: "g1", RSVPStatus: &attending, PlusOneCount: 2},
		{GuestID: "g1", RSVPStatus: &attending, PlusOneCount: 1},
		{GuestID: "g1", RSVPStatus: &declined, PlusOneCount: 9},
		{GuestID: "other", RSVPStatus: &attending, PlusOneCount: 5},
	}

	require.Equal(t, 3, GuestWeight(guest, invitations))
	require.Equal(t, 1, GuestWeight(guest, nil))
}

func TestAssignRejectsOverCapacity(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := NewSeatingService(db)

	wedding := seedWedding(t, db, "seating-cap")
	event := seedEvent(t, db, wedding.ID, "Reception", "")
	table := seedTable(t, db, wedding.ID, "Table 1", 10)

	occupant := seedGuest(t, db, wedding.ID, "Occupant", true)
	attend(t, db, wedding.ID, event.ID, occupant.ID, 1)
	_, err := svc.Assign(context.Background(), wedding.ID, occupant.ID, table.ID)
	require.NoError(t, err)

	incoming := seedGuest(t, db, wedding.ID, "Big Party", true)
	attend(t, db, wedding.ID, event.ID, incoming.ID, 9)
	_, err = svc.Assign(context.Background(), wedding.ID, incoming.ID, table.ID)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	// The loser stays unassigned.
	var reloaded models.Guest
	require.NoError(t, db.First(&reloaded, "id = ?", incoming.ID).Error)
	require.Nil(t, reloaded.TableID)
}

func TestAssignConcurrentDoesNotOverbook(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := NewSeatingService(db)

	wedding := seedWedding(t, db, "seating-race")
	event := seedEvent(t, db, wedding.ID, "Reception", "")
	table := seedTable(t, db, wedding.ID, "Tight Table", 6)

	first := seedGuest(t, db, wedding.ID, "First", true)
	second := seedGuest(t, db, wedding.ID, "Second", true)
	attend(t, db, wedding.ID, event.ID, first.ID, 3)  // weight 4
	attend(t, db, wedding.ID, event.ID, second.ID, 3) // weight 4

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, guestID := range []string{first.ID, second.ID} {
		wg.Add(1)
		go func(slot int, id string) {
			defer wg.Done()
			_, errs[slot] = svc.Assign(context.Background(), wedding.ID, id, table.ID)
		}(i, guestID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
		}
	}
	require.Equal(t, 1, succeeded)

	var seated int64
	require.NoError(t, db.Model(&models.Guest{}).
		Where("table_id = ?", table.ID).
		Count(&seated).Error)
	require.EqualValues(t, 1, seated)
}

func TestAssignMovesBetweenTables(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := NewSeatingService(db)

	wedding := seedWedding(t, db, "seating-move")
	tableA := seedTable(t, db, wedding.ID, "A", 4)
	tableB := seedTable(t, db, wedding.ID, "B", 4)
	guest := seedGuest(t, db, wedding.ID, "Mover", false)

	assigned, err := svc.Assign(context.Background(), wedding.ID, guest.ID, tableA.ID)
	require.NoError(t, err)
	require.Equal(t, tableA.ID, *assigned.TableID)

	moved, err := svc.Assign(context.Background(), wedding.ID, guest.ID, tableB.ID)
	require.NoError(t, err)
	require.Equal(t, tableB.ID, *moved.TableID)

	// Unassigning is always legal, and idempotent.
	unassigned, err := svc.Unassign(context.Background(), wedding.ID, guest.ID)
	require.NoError(t, err)
	require.Nil(t, unassigned.TableID)

	again, err := svc.Unassign(context.Background(), wedding.ID, guest.ID)
	require.NoError(t, err)
	require.Nil(t, again.TableID)
}

func TestUpdateTableRejectsShrinkBelowOccupancy(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := NewSeatingService(db)

	wedding := seedWedding(t, db, "seating-shrink")
	event := seedEvent(t, db, wedding.ID, "Reception", "")
	table := seedTable(t, db, wedding.ID, "Family", 6)

	guest := seedGuest(t, db, wedding.ID, "Grandma", true)
	attend(t, db, wedding.ID, event.ID, guest.ID, 2) // weight 3
	_, err := svc.Assign(context.Background(), wedding.ID, guest.ID, table.ID)
	require.NoError(t, err)

	_, err = svc.UpdateTable(context.Background(), wedding.ID, table.ID, TableInput{Name: "Family", Capacity: 2})
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	updated, err := svc.UpdateTable(context.Background(), wedding.ID, table.ID, TableInput{Name: "Family", Capacity: 3})
	require.NoError(t, err)
	require.Equal(t, 3, updated.Capacity)
}

func TestChartGroupsGuestsAndOccupancy(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := NewSeatingService(db)

	wedding := seedWedding(t, db, "seating-chart")
	event := seedEvent(t, db, wedding.ID, "Reception", "")
	table := seedTable(t, db, wedding.ID, "Head Table", 8)

	seated := seedGuest(t, db, wedding.ID, "Seated", true)
	attend(t, db, wedding.ID, event.ID, seated.ID, 1)
	_, err := svc.Assign(context.Background(), wedding.ID, seated.ID, table.ID)
	require.NoError(t, err)

	seedGuest(t, db, wedding.ID, "Floating", false)

	chart, err := svc.Chart(context.Background(), wedding.ID)
	require.NoError(t, err)
	require.Len(t, chart.Tables, 1)
	require.Len(t, chart.Tables[0].Guests, 1)
	require.Equal(t, 2, chart.Tables[0].Occupancy)
	require.Equal(t, 6, chart.Tables[0].FreeSeats)
	require.Len(t, chart.Unassigned, 1)
	require.Equal(t, "Floating", chart.Unassigned[0].DisplayName)
}

func TestDeleteTableUnassignsGuests(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := NewSeatingService(db)

	wedding := seedWedding(t, db, "seating-del")
	table := seedTable(t, db, wedding.ID, "Gone", 4)
	guest := seedGuest(t, db, wedding.ID, "Orphan", false)

	_, err := svc.Assign(context.Background(), wedding.ID, guest.ID, table.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTable(context.Background(), wedding.ID, table.ID))

	var reloaded models.Guest
	require.NoError(t, db.First(&reloaded, "id = ?", guest.ID).Error)
	require.Nil(t, reloaded.TableID)
}
