package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pquerna/otp/totp"
	"gorm.io/gorm"

	"github.com/everafterhq/everafter/internal/models"
	"github.com/everafterhq/everafter/pkg/qr"
)

const (
	defaultMFAIssuer     = "EverAfter"
	defaultMFAQRCodeSize = 256
)

// ErrMFANotEnrolled signals that the account has no TOTP secret yet.
var ErrMFANotEnrolled = errors.New("mfa: not enrolled")

// MFAOption customises the MFA service.
type MFAOption func(*MFAService)

// WithMFAIssuer overrides the issuer encoded in provisioning URIs.
func WithMFAIssuer(issuer string) MFAOption {
	return func(s *MFAService) {
		if strings.TrimSpace(issuer) != "" {
			s.issuer = issuer
		}
	}
}

// WithMFAQRCodeSize controls the pixel size of provisioning QR codes.
func WithMFAQRCodeSize(size int) MFAOption {
	return func(s *MFAService) {
		if size > 0 {
			s.qrCodeSize = size
		}
	}
}

// MFAService manages optional TOTP second factors on couple and admin accounts.
type MFAService struct {
	db         *gorm.DB
	issuer     string
	qrCodeSize int
}

// NewMFAService constructs an MFA service backed by the provided database.
func NewMFAService(db *gorm.DB, opts ...MFAOption) (*MFAService, error) {
	if db == nil {
		return nil, errors.New("mfa: db is required")
	}

	service := &MFAService{
		db:         db,
		issuer:     defaultMFAIssuer,
		qrCodeSize: defaultMFAQRCodeSize,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Enrollment is handed to the client once during enrolment.
type Enrollment struct {
	Secret          string
	ProvisioningURI string
	QRCode          []byte
}

// Enroll generates a TOTP secret for the user. The factor stays inactive until
// Activate succeeds with a matching code.
func (s *MFAService) Enroll(ctx context.Context, userID string) (*Enrollment, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("mfa: load user: %w", err)
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: user.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("mfa: generate secret: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&user).
		Updates(map[string]any{"mfa_secret": key.Secret(), "mfa_enabled": false}).Error; err != nil {
		return nil, fmt.Errorf("mfa: store secret: %w", err)
	}

	png, err := qr.EncodeText(key.String(), s.qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("mfa: render qr: %w", err)
	}

	return &Enrollment{
		Secret:          key.Secret(),
		ProvisioningURI: key.String(),
		QRCode:          png,
	}, nil
}

// Activate turns the factor on once the user proves possession of the secret.
func (s *MFAService) Activate(ctx context.Context, userID, code string) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return fmt.Errorf("mfa: load user: %w", err)
	}
	if user.MFASecret == "" {
		return ErrMFANotEnrolled
	}

	if !totp.Validate(strings.TrimSpace(code), user.MFASecret) {
		return errors.New("mfa: invalid code")
	}

	return s.db.WithContext(ctx).Model(&user).Update("mfa_enabled", true).Error
}

// Validate checks a login code against the stored secret.
func (s *MFAService) Validate(user *models.User, code string) bool {
	if user == nil || user.MFASecret == "" {
		return false
	}
	return totp.Validate(strings.TrimSpace(code), user.MFASecret)
}

// Disable removes the factor from the account.
func (s *MFAService) Disable(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{"mfa_secret": "", "mfa_enabled": false}).Error
}
