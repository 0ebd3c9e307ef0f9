package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/everafterhq/everafter/internal/database"
	"github.com/everafterhq/everafter/internal/models"
	"github.com/everafterhq/everafter/pkg/crypto"
	appErrors "github.com/everafterhq/everafter/pkg/errors"
)

const rsvpCodeLength = 8

var subdomainPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?$`)

// Subdomains that would shadow platform surfaces.
var reservedSubdomains = map[string]struct{}{
	"www": {}, "app": {}, "api": {}, "admin": {}, "mail": {}, "status": {},
}

// WeddingService owns the tenant lifecycle: creation, settings, lookups.
type WeddingService struct {
	db *gorm.DB
}

// NewWeddingService constructs a WeddingService.
func NewWeddingService(db *gorm.DB) *WeddingService {
	return &WeddingService{db: db}
}

// CreateWeddingInput captures the fields required to provision a tenant.
type CreateWeddingInput struct {
	OwnerID     string
	CoupleNames string
	WeddingDate time.Time
	Subdomain   string
	RSVPCode    string
	ThemeID     string
}

// Create provisions a wedding. The subdomain and RSVP code are unique across
// the platform; collisions surface as Conflict without partial writes. An
// empty RSVP code is generated server-side.
func (s *WeddingService) Create(ctx context.Context, input CreateWeddingInput) (*models.Wedding, error) {
	subdomain := strings.ToLower(strings.TrimSpace(input.Subdomain))
	if err := validateSubdomain(subdomain); err != nil {
		return nil, err
	}

	coupleNames := strings.TrimSpace(input.CoupleNames)
	if coupleNames == "" {
		return nil, appErrors.NewFieldValidation(map[string]string{"couple_names": "couple names are required"})
	}

	code := strings.ToUpper(strings.TrimSpace(input.RSVPCode))
	if code == "" {
		generated, err := crypto.GenerateCode(rsvpCodeLength)
		if err != nil {
			return nil, appErrors.ErrInternalServer.WithInternal(err)
		}
		code = generated
	}

	themeID := input.ThemeID
	if themeID == "" {
		themeID = "classic"
	}
	if !database.KnownTheme(themeID) {
		return nil, appErrors.NewFieldValidation(map[string]string{"theme_id": "unknown theme"})
	}

	wedding := &models.Wedding{
		OwnerID:     input.OwnerID,
		CoupleNames: coupleNames,
		WeddingDate: input.WeddingDate,
		Subdomain:   subdomain,
		RSVPCode:    code,
		ThemeID:     themeID,
	}

	if err := s.db.WithContext(ctx).Create(wedding).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, appErrors.NewConflict("subdomain or RSVP code is already taken")
		}
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}

	return wedding, nil
}

// UpdateSettingsInput carries optional settings changes; nil fields are untouched.
type UpdateSettingsInput struct {
	CoupleNames   *string
	WeddingDate   *time.Time
	Subdomain     *string
	RSVPCode      *string
	ThemeID       *string
	ThemeSettings datatypes.JSON
}

// UpdateSettings applies settings changes to a wedding. Subdomain and RSVP
// code collisions return Conflict and leave the row unmodified.
func (s *WeddingService) UpdateSettings(ctx context.Context, weddingID string, input UpdateSettingsInput) (*models.Wedding, error) {
	var updated *models.Wedding

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var wedding models.Wedding
		if err := tx.First(&wedding, "id = ?", weddingID).Error; err != nil {
			return translateDBError(err, "wedding not found")
		}

		if input.CoupleNames != nil {
			names := strings.TrimSpace(*input.CoupleNames)
			if names == "" {
				return appErrors.NewFieldValidation(map[string]string{"couple_names": "couple names are required"})
			}
			wedding.CoupleNames = names
		}
		if input.WeddingDate != nil {
			wedding.WeddingDate = *input.WeddingDate
		}
		if input.Subdomain != nil {
			subdomain := strings.ToLower(strings.TrimSpace(*input.Subdomain))
			if err := validateSubdomain(subdomain); err != nil {
				return err
			}
			if subdomain != wedding.Subdomain {
				taken, err := s.subdomainTaken(tx, subdomain, wedding.ID)
				if err != nil {
					return err
				}
				if taken {
					return appErrors.NewConflict("subdomain is already taken")
				}
				wedding.Subdomain = subdomain
			}
		}
		if input.RSVPCode != nil {
			code := strings.ToUpper(strings.TrimSpace(*input.RSVPCode))
			if code == "" {
				return appErrors.NewFieldValidation(map[string]string{"rsvp_code": "RSVP code must not be empty"})
			}
			if code != wedding.RSVPCode {
				taken, err := s.rsvpCodeTaken(tx, code, wedding.ID)
				if err != nil {
					return err
				}
				if taken {
					return appErrors.NewConflict("RSVP code is already in use by another wedding")
				}
				wedding.RSVPCode = code
			}
		}
		if input.ThemeID != nil {
			if !database.KnownTheme(*input.ThemeID) {
				return appErrors.NewFieldValidation(map[string]string{"theme_id": "unknown theme"})
			}
			wedding.ThemeID = *input.ThemeID
		}
		if input.ThemeSettings != nil {
			wedding.ThemeSettings = input.ThemeSettings
		}

		if err := tx.Save(&wedding).Error; err != nil {
			// The pre-checks can still race a concurrent write; the unique
			// index is the final arbiter and the transaction rolls back.
			if isUniqueConstraintError(err) {
				return appErrors.NewConflict("subdomain or RSVP code is already taken")
			}
			return appErrors.ErrInternalServer.WithInternal(err)
		}

		updated = &wedding
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// GetByID fetches a wedding by primary key.
func (s *WeddingService) GetByID(ctx context.Context, id string) (*models.Wedding, error) {
	var wedding models.Wedding
	if err := s.db.WithContext(ctx).First(&wedding, "id = ?", id).Error; err != nil {
		return nil, translateDBError(err, "wedding not found")
	}
	return &wedding, nil
}

// GetBySubdomain fetches a wedding by its public subdomain.
func (s *WeddingService) GetBySubdomain(ctx context.Context, subdomain string) (*models.Wedding, error) {
	var wedding models.Wedding
	err := s.db.WithContext(ctx).
		First(&wedding, "subdomain = ?", strings.ToLower(strings.TrimSpace(subdomain))).Error
	if err != nil {
		return nil, translateDBError(err, "wedding not found")
	}
	return &wedding, nil
}

// GetByRSVPCode fetches a wedding by the shared guest RSVP code.
func (s *WeddingService) GetByRSVPCode(ctx context.Context, code string) (*models.Wedding, error) {
	var wedding models.Wedding
	err := s.db.WithContext(ctx).
		First(&wedding, "rsvp_code = ?", strings.ToUpper(strings.TrimSpace(code))).Error
	if err != nil {
		return nil, translateDBError(err, "no wedding matches this RSVP code")
	}
	return &wedding, nil
}

// ListForOwner returns all weddings owned by a user, newest first.
func (s *WeddingService) ListForOwner(ctx context.Context, ownerID string) ([]models.Wedding, error) {
	var weddings []models.Wedding
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&weddings).Error
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}
	return weddings, nil
}

// Delete removes a wedding and everything under it via cascade constraints.
func (s *WeddingService) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.Wedding{}, "id = ?", id)
	if result.Error != nil {
		return appErrors.ErrInternalServer.WithInternal(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrNotFound.WithMessage("wedding not found")
	}
	return nil
}

func (s *WeddingService) subdomainTaken(tx *gorm.DB, subdomain, excludeID string) (bool, error) {
	var count int64
	err := tx.Model(&models.Wedding{}).
		Where("subdomain = ? AND id <> ?", subdomain, excludeID).
		Count(&count).Error
	if err != nil {
		return false, appErrors.ErrInternalServer.WithInternal(err)
	}
	return count > 0, nil
}

func (s *WeddingService) rsvpCodeTaken(tx *gorm.DB, code, excludeID string) (bool, error) {
	var count int64
	err := tx.Model(&models.Wedding{}).
		Where("rsvp_code = ? AND id <> ?", code, excludeID).
		Count(&count).Error
	if err != nil {
		return false, appErrors.ErrInternalServer.WithInternal(err)
	}
	return count > 0, nil
}

func validateSubdomain(subdomain string) error {
	if subdomain == "" {
		return appErrors.NewFieldValidation(map[string]string{"subdomain": "subdomain is required"})
	}
	if !subdomainPattern.MatchString(subdomain) {
		return appErrors.NewFieldValidation(map[string]string{"subdomain": "subdomain may contain lowercase letters, digits and hyphens"})
	}
	if _, reserved := reservedSubdomains[subdomain]; reserved {
		return appErrors.NewFieldValidation(map[string]string{"subdomain": "subdomain is reserved"})
	}
	return nil
}
