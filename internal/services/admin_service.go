package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/everafterhq/everafter/internal/models"
	appErrors "github.com/everafterhq/everafter/pkg/errors"
	"github.com/everafterhq/everafter/pkg/logger"

	"go.uber.org/zap"
)

// AdminService is the platform back-office: tenant listing, suspension and
// platform-wide stats. Everything here requires the admin role, enforced at
// the router.
type AdminService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewAdminService constructs an AdminService.
func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db, log: logger.WithModule("admin")}
}

// TenantFilter narrows the tenant listing.
type TenantFilter struct {
	Search    string
	Suspended *bool
	Page      int
	PerPage   int
}

// TenantPage is one page of the tenant listing.
type TenantPage struct {
	Weddings []models.Wedding `json:"weddings"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PerPage  int              `json:"per_page"`
}

// ListTenants returns weddings across all owners, newest first.
func (s *AdminService) ListTenants(ctx context.Context, filter TenantFilter) (*TenantPage, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 || perPage > 100 {
		perPage = 25
	}

	query := s.db.WithContext(ctx).Model(&models.Wedding{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(couple_names) LIKE ? OR LOWER(subdomain) LIKE ?", like, like)
	}
	if filter.Suspended != nil {
		query = query.Where("suspended = ?", *filter.Suspended)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}

	var weddings []models.Wedding
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&weddings).Error
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}

	return &TenantPage{Weddings: weddings, Total: total, Page: page, PerPage: perPage}, nil
}

// SetSuspended suspends or reinstates a tenant. Suspended sites reject both
// public guest traffic and couple dashboard access.
func (s *AdminService) SetSuspended(ctx context.Context, weddingID string, suspended bool) (*models.Wedding, error) {
	var wedding models.Wedding
	if err := s.db.WithContext(ctx).First(&wedding, "id = ?", weddingID).Error; err != nil {
		return nil, translateDBError(err, "wedding not found")
	}

	if wedding.Suspended == suspended {
		return &wedding, nil
	}

	if err := s.db.WithContext(ctx).Model(&wedding).Update("suspended", suspended).Error; err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}
	wedding.Suspended = suspended

	s.log.Info("tenant suspension changed",
		zap.String("wedding_id", wedding.ID),
		zap.Bool("suspended", suspended))
	return &wedding, nil
}

// PlatformStats is the admin dashboard headline view.
type PlatformStats struct {
	Weddings       int64 `json:"weddings"`
	SuspendedCount int64 `json:"suspended"`
	Guests         int64 `json:"guests"`
	RSVPsAnswered  int64 `json:"rsvps_answered"`
	GiftsClaimed   int64 `json:"gifts_claimed"`
	PhotosPending  int64 `json:"photos_pending"`
}

// Stats aggregates platform-wide counts.
func (s *AdminService) Stats(ctx context.Context) (*PlatformStats, error) {
	stats := &PlatformStats{}
	db := s.db.WithContext(ctx)

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.Weddings, db.Model(&models.Wedding{})},
		{&stats.SuspendedCount, db.Model(&models.Wedding{}).Where("suspended = ?", true)},
		{&stats.Guests, db.Model(&models.Guest{})},
		{&stats.RSVPsAnswered, db.Model(&models.EventGuest{}).Where("rsvp_status IS NOT NULL")},
		{&stats.GiftsClaimed, db.Model(&models.GiftItem{}).Where("is_claimed = ?", true)},
		{&stats.PhotosPending, db.Model(&models.Photo{}).Where("status = ?", models.PhotoPending)},
	}

	for _, count := range counts {
		if err := count.query.Count(count.dest).Error; err != nil {
			return nil, appErrors.ErrInternalServer.WithInternal(err)
		}
	}

	return stats, nil
}
