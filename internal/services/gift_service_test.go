package services

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/everafterhq/everafter/internal/database/testutil"
	"github.com/everafterhq/everafter/internal/models"
	appErrors "github.com/everafterhq/everafter/pkg/errors"
)

func seedGift(t *testing.T, db *gorm.DB, weddingID, name string) *models.GiftItem {
	t.Helper()

	gift := &models.GiftItem{
		WeddingID:         weddingID,
		Name:              name,
		TargetAmountCents: 15000,
		PaymentIBAN:       "DE89370400440532013000",
		PaymentBIC:        "COBADEFFXXX",
	}
	require.NoError(t, db.Create(gift).Error)
	return gift
}

func TestClaimIsMonotonic(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	claimedAt := time.Date(2027, 2, 14, 12, 0, 0, 0, time.UTC)
	svc := NewGiftService(db, WithGiftClock(fixedClock(claimedAt)))

	wedding := seedWedding(t, db, "gifts")
	gift := seedGift(t, db, wedding.ID, "Stand mixer")

	claimed, err := svc.Claim(context.Background(), wedding.ID, gift.ID, "Aunt Carol")
	require.NoError(t, err)
	require.True(t, claimed.IsClaimed)
	require.Equal(t, "Aunt Carol", claimed.ClaimedBy)
	require.Equal(t, claimedAt, claimed.ClaimedAt.UTC())

	_, err = svc.Claim(context.Background(), wedding.ID, gift.ID, "Uncle Ray")
	require.ErrorIs(t, err, ErrGiftAlreadyClaimed)

	// The original claimant survives the losing attempt.
	reloaded, err := svc.Get(context.Background(), wedding.ID, gift.ID)
	require.NoError(t, err)
	require.Equal(t, "Aunt Carol", reloaded.ClaimedBy)
}

func TestClaimExactlyOnceUnderConcurrency(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := NewGiftService(db)

	wedding := seedWedding(t, db, "gifts-race")
	gift := seedGift(t, db, wedding.ID, "Espresso machine")

	const claimants = 8
	var wg sync.WaitGroup
	errs := make([]error, claimants)
	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, errs[slot] = svc.Claim(context.Background(), wedding.ID, gift.ID, "Guest")
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			require.ErrorIs(t, err, ErrGiftAlreadyClaimed)
		}
	}
	require.Equal(t, 1, winners)

	reloaded, err := svc.Get(context.Background(), wedding.ID, gift.ID)
	require.NoError(t, err)
	require.True(t, reloaded.IsClaimed)
}

func TestClaimMissingGiftIsNotFound(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := NewGiftService(db)
	wedding := seedWedding(t, db, "gifts-missing")

	_, err := svc.Claim(context.Background(), wedding.ID, "no-such-gift", "Guest")
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReleaseReopensClaim(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := NewGiftService(db)

	wedding := seedWedding(t, db, "gifts-release")
	gift := seedGift(t, db, wedding.ID, "Picnic set")

	_, err := svc.Claim(context.Background(), wedding.ID, gift.ID, "Cousin Ed")
	require.NoError(t, err)

	released, err := svc.Release(context.Background(), wedding.ID, gift.ID)
	require.NoError(t, err)
	require.False(t, released.IsClaimed)
	require.Empty(t, released.ClaimedBy)
	require.Nil(t, released.ClaimedAt)

	_, err = svc.Claim(context.Background(), wedding.ID, gift.ID, "Cousin Ann")
	require.NoError(t, err)
}

func TestPaymentQR(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := NewGiftService(db)

	wedding := seedWedding(t, db, "gifts-qr")
	gift := seedGift(t, db, wedding.ID, "Honeymoon fund")

	png, err := svc.PaymentQR(context.Background(), wedding.ID, gift.ID, 0)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	// No payment details configured -> validation error.
	bare := &models.GiftItem{WeddingID: wedding.ID, Name: "Card only"}
	require.NoError(t, db.Create(bare).Error)

	_, err = svc.PaymentQR(context.Background(), wedding.ID, bare.ID, 0)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGiftCRUD(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := NewGiftService(db)
	wedding := seedWedding(t, db, "gifts-crud")

	created, err := svc.Create(context.Background(), wedding.ID, GiftInput{
		Name:              "  Dutch oven  ",
		TargetAmountCents: 9900,
	})
	require.NoError(t, err)
	require.Equal(t, "Dutch oven", created.Name)

	_, err = svc.Create(context.Background(), wedding.ID, GiftInput{Name: "", TargetAmountCents: -1})
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	updated, err := svc.Update(context.Background(), wedding.ID, created.ID, GiftInput{
		Name:              "Dutch oven",
		Description:       "The blue one",
		TargetAmountCents: 12900,
	})
	require.NoError(t, err)
	require.Equal(t, "The blue one", updated.Description)

	gifts, err := svc.List(context.Background(), wedding.ID)
	require.NoError(t, err)
	require.Len(t, gifts, 1)

	require.NoError(t, svc.Delete(context.Background(), wedding.ID, created.ID))
	err = svc.Delete(context.Background(), wedding.ID, created.ID)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
