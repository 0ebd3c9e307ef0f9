package services

import (
	"context"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/everafterhq/everafter/internal/models"
	appErrors "github.com/everafterhq/everafter/pkg/errors"
)

// GuestService manages the guest list of a wedding.
type GuestService struct {
	db *gorm.DB
}

// NewGuestService constructs a GuestService.
func NewGuestService(db *gorm.DB) *GuestService {
	return &GuestService{db: db}
}

// GuestInput captures the editable fields of a guest.
type GuestInput struct {
	DisplayName  string
	PartyName    string
	Email        string
	Phone        string
	AllowPlusOne bool
}

func (in GuestInput) validate() error {
	if strings.TrimSpace(in.DisplayName) == "" {
		return appErrors.NewFieldValidation(map[string]string{"display_name": "display name is required"})
	}
	return nil
}

// Create adds a guest to the wedding.
func (s *GuestService) Create(ctx context.Context, weddingID string, input GuestInput) (*models.Guest, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	guest := &models.Guest{
		WeddingID:    weddingID,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		PartyName:    normalizeOptional(input.PartyName),
		Email:        normalizeOptional(input.Email),
		Phone:        normalizeOptional(input.Phone),
		AllowPlusOne: input.AllowPlusOne,
	}

	if err := s.db.WithContext(ctx).Create(guest).Error; err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}
	return guest, nil
}

// Import creates a batch of guests in one transaction. The batch is rejected
// as a whole if any row is invalid.
func (s *GuestService) Import(ctx context.Context, weddingID string, inputs []GuestInput) ([]models.Guest, error) {
	if len(inputs) == 0 {
		return nil, appErrors.NewValidation("at least one guest is required")
	}

	guests := make([]models.Guest, 0, len(inputs))
	for i, input := range inputs {
		if err := input.validate(); err != nil {
			return nil, appErrors.NewFieldValidation(map[string]string{
				"guests": "row " + strconv.Itoa(i+1) + ": display name is required",
			})
		}
		guests = append(guests, models.Guest{
			WeddingID:    weddingID,
			DisplayName:  strings.TrimSpace(input.DisplayName),
			PartyName:    normalizeOptional(input.PartyName),
			Email:        normalizeOptional(input.Email),
			Phone:        normalizeOptional(input.Phone),
			AllowPlusOne: input.AllowPlusOne,
		})
	}

	if err := s.db.WithContext(ctx).Create(&guests).Error; err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}
	return guests, nil
}

// Update edits an existing guest.
func (s *GuestService) Update(ctx context.Context, weddingID, guestID string, input GuestInput) (*models.Guest, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	guest, err := s.Get(ctx, weddingID, guestID)
	if err != nil {
		return nil, err
	}

	guest.DisplayName = strings.TrimSpace(input.DisplayName)
	guest.PartyName = normalizeOptional(input.PartyName)
	guest.Email = normalizeOptional(input.Email)
	guest.Phone = normalizeOptional(input.Phone)
	guest.AllowPlusOne = input.AllowPlusOne

	if err := s.db.WithContext(ctx).Save(guest).Error; err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}
	return guest, nil
}

// Get fetches one guest, scoped to the wedding.
func (s *GuestService) Get(ctx context.Context, weddingID, guestID string) (*models.Guest, error) {
	var guest models.Guest
	err := s.db.WithContext(ctx).
		Scopes(weddingScope(weddingID)).
		First(&guest, "id = ?", guestID).Error
	if err != nil {
		return nil, translateDBError(err, "guest not found")
	}
	return &guest, nil
}

// List returns all guests of a wedding with their invitations, sorted
// case-insensitively by display name.
func (s *GuestService) List(ctx context.Context, weddingID string) ([]models.Guest, error) {
	var guests []models.Guest
	err := s.db.WithContext(ctx).
		Scopes(weddingScope(weddingID)).
		Preload("Invitations").
		Order(byDisplayName).
		Find(&guests).Error
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}
	return guests, nil
}

// Delete removes a guest; invitation rows go with it.
func (s *GuestService) Delete(ctx context.Context, weddingID, guestID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Scopes(weddingScope(weddingID)).Delete(&models.Guest{}, "id = ?", guestID)
		if result.Error != nil {
			return appErrors.ErrInternalServer.WithInternal(result.Error)
		}
		if result.RowsAffected == 0 {
			return appErrors.ErrNotFound.WithMessage("guest not found")
		}

		// Belt and braces for databases migrated without FK enforcement.
		if err := tx.Where("guest_id = ?", guestID).Delete(&models.EventGuest{}).Error; err != nil {
			return appErrors.ErrInternalServer.WithInternal(err)
		}
		return nil
	})
}
