package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/everafterhq/everafter/internal/models"
	appErrors "github.com/everafterhq/everafter/pkg/errors"
	"github.com/everafterhq/everafter/pkg/metrics"
	"github.com/everafterhq/everafter/pkg/qr"
)

// ErrGiftAlreadyClaimed is returned when the compare-and-set claim loses.
var ErrGiftAlreadyClaimed = appErrors.NewConflict("gift has already been claimed")

// GiftService manages the registry and the guest-facing claim flow. Claiming
// is a single conditional update; the zero-rows-affected result is the entire
// concurrency mechanism.
type GiftService struct {
	db  *gorm.DB
	now func() time.Time
}

// GiftOption customises a GiftService.
type GiftOption func(*GiftService)

// WithGiftClock injects a deterministic clock for tests.
func WithGiftClock(now func() time.Time) GiftOption {
	return func(s *GiftService) {
		s.now = now
	}
}

// NewGiftService constructs a GiftService.
func NewGiftService(db *gorm.DB, opts ...GiftOption) *GiftService {
	s := &GiftService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GiftInput captures the editable fields of a registry item.
type GiftInput struct {
	Name              string
	Description       string
	TargetAmountCents int64
	PaymentIBAN       string
	PaymentBIC        string
}

func (in GiftInput) validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "gift name is required"
	}
	if in.TargetAmountCents < 0 {
		fields["target_amount_cents"] = "target amount must not be negative"
	}
	if len(fields) > 0 {
		return appErrors.NewFieldValidation(fields)
	}
	return nil
}

// Create adds a registry item.
func (s *GiftService) Create(ctx context.Context, weddingID string, input GiftInput) (*models.GiftItem, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	gift := &models.GiftItem{
		WeddingID:         weddingID,
		Name:              strings.TrimSpace(input.Name),
		Description:       normalizeOptional(input.Description),
		TargetAmountCents: input.TargetAmountCents,
		PaymentIBAN:       normalizeOptional(input.PaymentIBAN),
		PaymentBIC:        normalizeOptional(input.PaymentBIC),
	}
	if err := s.db.WithContext(ctx).Create(gift).Error; err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}
	return gift, nil
}

// Update edits a registry item's descriptive fields; claim state is untouched.
func (s *GiftService) Update(ctx context.Context, weddingID, giftID string, input GiftInput) (*models.GiftItem, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	gift, err := s.Get(ctx, weddingID, giftID)
	if err != nil {
		return nil, err
	}

	gift.Name = strings.TrimSpace(input.Name)
	gift.Description = normalizeOptional(input.Description)
	gift.TargetAmountCents = input.TargetAmountCents
	gift.PaymentIBAN = normalizeOptional(input.PaymentIBAN)
	gift.PaymentBIC = normalizeOptional(input.PaymentBIC)

	if err := s.db.WithContext(ctx).Save(gift).Error; err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}
	return gift, nil
}

// Get fetches one registry item, scoped to the wedding.
func (s *GiftService) Get(ctx context.Context, weddingID, giftID string) (*models.GiftItem, error) {
	var gift models.GiftItem
	err := s.db.WithContext(ctx).
		Scopes(weddingScope(weddingID)).
		First(&gift, "id = ?", giftID).Error
	if err != nil {
		return nil, translateDBError(err, "gift not found")
	}
	return &gift, nil
}

// List returns the registry, unclaimed items first.
func (s *GiftService) List(ctx context.Context, weddingID string) ([]models.GiftItem, error) {
	var gifts []models.GiftItem
	err := s.db.WithContext(ctx).
		Scopes(weddingScope(weddingID)).
		Order("is_claimed ASC, name ASC").
		Find(&gifts).Error
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}
	return gifts, nil
}

// Delete removes a registry item.
func (s *GiftService) Delete(ctx context.Context, weddingID, giftID string) error {
	result := s.db.WithContext(ctx).
		Scopes(weddingScope(weddingID)).
		Delete(&models.GiftItem{}, "id = ?", giftID)
	if result.Error != nil {
		return appErrors.ErrInternalServer.WithInternal(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrNotFound.WithMessage("gift not found")
	}
	return nil
}

// Claim marks a gift as taken. A single conditional update guards against
// concurrent claimants: exactly one caller flips the row, everyone else gets
// ErrGiftAlreadyClaimed. The guest-facing flow has no unclaim.
func (s *GiftService) Claim(ctx context.Context, weddingID, giftID, claimantName string) (*models.GiftItem, error) {
	claimant := normalizeOptional(claimantName)
	now := s.now()

	result := s.db.WithContext(ctx).Model(&models.GiftItem{}).
		Where("id = ? AND wedding_id = ? AND is_claimed = ?", giftID, weddingID, false).
		Updates(map[string]interface{}{
			"is_claimed": true,
			"claimed_by": claimant,
			"claimed_at": now,
		})
	if result.Error != nil {
		metrics.GiftClaims.WithLabelValues("error").Inc()
		return nil, appErrors.ErrInternalServer.WithInternal(result.Error)
	}

	if result.RowsAffected == 0 {
		// Either the gift does not exist or someone beat us to it.
		if _, err := s.Get(ctx, weddingID, giftID); err != nil {
			metrics.GiftClaims.WithLabelValues("not_found").Inc()
			return nil, err
		}
		metrics.GiftClaims.WithLabelValues("already_claimed").Inc()
		return nil, ErrGiftAlreadyClaimed
	}

	metrics.GiftClaims.WithLabelValues("claimed").Inc()
	return s.Get(ctx, weddingID, giftID)
}

// Release resets a claim from the couple's dashboard so the item can be
// claimed again. Releasing an unclaimed gift is a no-op.
func (s *GiftService) Release(ctx context.Context, weddingID, giftID string) (*models.GiftItem, error) {
	if _, err := s.Get(ctx, weddingID, giftID); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Model(&models.GiftItem{}).
		Where("id = ? AND wedding_id = ?", giftID, weddingID).
		Updates(map[string]interface{}{
			"is_claimed": false,
			"claimed_by": "",
			"claimed_at": nil,
		}).Error
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}

	return s.Get(ctx, weddingID, giftID)
}

// PaymentQR renders the gift's payment instructions as a PNG QR code using
// the EPC credit-transfer payload banking apps understand.
func (s *GiftService) PaymentQR(ctx context.Context, weddingID, giftID string, size int) ([]byte, error) {
	gift, err := s.Get(ctx, weddingID, giftID)
	if err != nil {
		return nil, err
	}
	if gift.PaymentIBAN == "" {
		return nil, appErrors.NewValidation("this gift has no payment details configured")
	}

	var wedding models.Wedding
	if err := s.db.WithContext(ctx).First(&wedding, "id = ?", weddingID).Error; err != nil {
		return nil, translateDBError(err, "wedding not found")
	}

	png, err := qr.EncodePayment(qr.PaymentRequest{
		BeneficiaryName: wedding.CoupleNames,
		IBAN:            gift.PaymentIBAN,
		BIC:             gift.PaymentBIC,
		AmountCents:     gift.TargetAmountCents,
		Remittance:      "Wedding gift: " + gift.Name,
	}, size)
	if err != nil {
		return nil, appErrors.NewValidation("payment details cannot be encoded").WithInternal(err)
	}
	return png, nil
}
