package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/everafterhq/everafter/internal/database/testutil"
	"github.com/everafterhq/everafter/internal/models"
	appErrors "github.com/everafterhq/everafter/pkg/errors"
)

func TestUploadStartsPending(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := NewPhotoService(db)
	wedding := seedWedding(t, db, "photos")

	photo, err := svc.Upload(context.Background(), wedding.ID, UploadInput{
		UploaderName: "Alice",
		StorageKey:   "photos/abc123.jpg",
		Caption:      "First dance",
	})
	require.NoError(t, err)
	require.Equal(t, models.PhotoPending, photo.Status)

	_, err = svc.Upload(context.Background(), wedding.ID, UploadInput{StorageKey: " "})
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestModerationIsPendingOnly(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	reviewedAt := time.Date(2027, 6, 13, 8, 0, 0, 0, time.UTC)
	svc := NewPhotoService(db, WithPhotoClock(fixedClock(reviewedAt)))

	wedding := seedWedding(t, db, "photos-mod")
	photo, err := svc.Upload(context.Background(), wedding.ID, UploadInput{StorageKey: "photos/a.jpg"})
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), wedding.ID, photo.ID)
	require.NoError(t, err)
	require.Equal(t, models.PhotoApproved, approved.Status)
	require.Equal(t, reviewedAt, approved.ReviewedAt.UTC())

	// Approved photos cannot be re-moderated.
	_, err = svc.Reject(context.Background(), wedding.ID, photo.ID)
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	_, err = svc.Approve(context.Background(), wedding.ID, "missing")
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestListFiltersByStatus(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := NewPhotoService(db)
	wedding := seedWedding(t, db, "photos-list")

	first, err := svc.Upload(context.Background(), wedding.ID, UploadInput{StorageKey: "photos/1.jpg"})
	require.NoError(t, err)
	_, err = svc.Upload(context.Background(), wedding.ID, UploadInput{StorageKey: "photos/2.jpg"})
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), wedding.ID, first.ID)
	require.NoError(t, err)

	approved, err := svc.List(context.Background(), wedding.ID, models.PhotoApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)

	all, err := svc.List(context.Background(), wedding.ID, "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, err = svc.List(context.Background(), wedding.ID, "SHINY")
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
