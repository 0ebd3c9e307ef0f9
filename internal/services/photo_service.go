package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/everafterhq/everafter/internal/models"
	appErrors "github.com/everafterhq/everafter/pkg/errors"
)

// PhotoService manages guest photo metadata and the couple's moderation
// queue. Blobs live in external object storage; only the key is persisted.
type PhotoService struct {
	db  *gorm.DB
	now func() time.Time
}

// PhotoOption customises a PhotoService.
type PhotoOption func(*PhotoService)

// WithPhotoClock injects a deterministic clock for tests.
func WithPhotoClock(now func() time.Time) PhotoOption {
	return func(s *PhotoService) {
		s.now = now
	}
}

// NewPhotoService constructs a PhotoService.
func NewPhotoService(db *gorm.DB, opts ...PhotoOption) *PhotoService {
	s := &PhotoService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UploadInput records one guest-uploaded photo.
type UploadInput struct {
	UploaderName string
	StorageKey   string
	Caption      string
}

// Upload stores photo metadata in the PENDING moderation state.
func (s *PhotoService) Upload(ctx context.Context, weddingID string, input UploadInput) (*models.Photo, error) {
	if strings.TrimSpace(input.StorageKey) == "" {
		return nil, appErrors.NewFieldValidation(map[string]string{"storage_key": "storage key is required"})
	}
	if len(input.Caption) > 500 {
		return nil, appErrors.NewFieldValidation(map[string]string{"caption": "caption must be 500 characters or fewer"})
	}

	photo := &models.Photo{
		WeddingID:    weddingID,
		UploaderName: normalizeOptional(input.UploaderName),
		StorageKey:   strings.TrimSpace(input.StorageKey),
		Caption:      normalizeOptional(input.Caption),
		Status:       models.PhotoPending,
	}
	if err := s.db.WithContext(ctx).Create(photo).Error; err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}
	return photo, nil
}

// List returns photos for the wedding, optionally filtered by status. Guests
// see approved photos only; the couple passes an empty filter for everything.
func (s *PhotoService) List(ctx context.Context, weddingID, status string) ([]models.Photo, error) {
	query := s.db.WithContext(ctx).
		Scopes(weddingScope(weddingID)).
		Order("created_at DESC")

	if status != "" {
		switch status {
		case models.PhotoPending, models.PhotoApproved, models.PhotoRejected:
			query = query.Where("status = ?", status)
		default:
			return nil, appErrors.NewFieldValidation(map[string]string{"status": "unknown photo status"})
		}
	}

	var photos []models.Photo
	if err := query.Find(&photos).Error; err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}
	return photos, nil
}

// Approve moves a PENDING photo to APPROVED.
func (s *PhotoService) Approve(ctx context.Context, weddingID, photoID string) (*models.Photo, error) {
	return s.moderate(ctx, weddingID, photoID, models.PhotoApproved)
}

// Reject moves a PENDING photo to REJECTED.
func (s *PhotoService) Reject(ctx context.Context, weddingID, photoID string) (*models.Photo, error) {
	return s.moderate(ctx, weddingID, photoID, models.PhotoRejected)
}

// moderate performs the PENDING-only transition via a conditional update so
// two moderators cannot race each other into conflicting states.
func (s *PhotoService) moderate(ctx context.Context, weddingID, photoID, target string) (*models.Photo, error) {
	now := s.now()

	result := s.db.WithContext(ctx).Model(&models.Photo{}).
		Where("id = ? AND wedding_id = ? AND status = ?", photoID, weddingID, models.PhotoPending).
		Updates(map[string]interface{}{
			"status":      target,
			"reviewed_at": now,
		})
	if result.Error != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(result.Error)
	}

	var photo models.Photo
	err := s.db.WithContext(ctx).
		Scopes(weddingScope(weddingID)).
		First(&photo, "id = ?", photoID).Error
	if err != nil {
		return nil, translateDBError(err, "photo not found")
	}

	if result.RowsAffected == 0 {
		return nil, appErrors.NewConflict("photo has already been moderated")
	}
	return &photo, nil
}

// Delete removes a photo's metadata row.
func (s *PhotoService) Delete(ctx context.Context, weddingID, photoID string) error {
	result := s.db.WithContext(ctx).
		Scopes(weddingScope(weddingID)).
		Delete(&models.Photo{}, "id = ?", photoID)
	if result.Error != nil {
		return appErrors.ErrInternalServer.WithInternal(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrNotFound.WithMessage("photo not found")
	}
	return nil
}
