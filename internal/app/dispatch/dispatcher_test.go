package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/everafterhq/everafter/internal/cache"
	"github.com/everafterhq/everafter/internal/database/testutil"
	"github.com/everafterhq/everafter/internal/models"
	"github.com/everafterhq/everafter/internal/services"
	"github.com/everafterhq/everafter/pkg/mail"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent int
}

func (m *recordingMailer) Send(context.Context, mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent++
	return nil
}

func TestSweepDeliversDueBroadcasts(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	mailer := &recordingMailer{}
	now := time.Date(2027, 4, 1, 9, 0, 0, 0, time.UTC)
	broadcasts := services.NewBroadcastService(db, mailer,
		services.WithBroadcastClock(func() time.Time { return now }))

	owner := &models.User{Email: "owner@example.com", Role: models.RoleCouple}
	require.NoError(t, db.Create(owner).Error)
	wedding := &models.Wedding{
		OwnerID: owner.ID, CoupleNames: "Amy & Sam",
		Subdomain: "dispatch-test", RSVPCode: "DISPATCH1",
	}
	require.NoError(t, db.Create(wedding).Error)
	guest := &models.Guest{WeddingID: wedding.ID, DisplayName: "Alice", Email: "alice@example.com"}
	require.NoError(t, db.Create(guest).Error)

	due := now.Add(-time.Minute)
	message := &models.BroadcastMessage{
		WeddingID: wedding.ID, Subject: "Due", Body: "x",
		Status: models.BroadcastPending, ScheduledFor: &due,
	}
	require.NoError(t, db.Create(message).Error)

	store := cache.NewDatabaseStore(db)
	require.NoError(t, store.Set(context.Background(), "stale", []byte("v"), time.Nanosecond))

	d := New(broadcasts, store)
	require.NoError(t, d.Sweep(context.Background()))

	var reloaded models.BroadcastMessage
	require.NoError(t, db.First(&reloaded, "id = ?", message.ID).Error)
	require.Equal(t, models.BroadcastSent, reloaded.Status)
	require.Equal(t, 1, mailer.sent)

	_, found, err := store.Get(context.Background(), "stale")
	require.NoError(t, err)
	require.False(t, found)
}

func TestSweepWithoutStore(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	broadcasts := services.NewBroadcastService(db, &recordingMailer{})

	d := New(broadcasts, nil, WithSchedule("@every 5m"))
	require.Equal(t, "@every 5m", d.schedule)
	require.NoError(t, d.Sweep(context.Background()))
}

func TestStartAndStop(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	broadcasts := services.NewBroadcastService(db, &recordingMailer{})

	d := New(broadcasts, nil, WithSchedule("@every 1h"))
	require.NoError(t, d.Start())
	d.Stop()
}
