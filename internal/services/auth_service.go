package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/everafterhq/everafter/internal/auth"
	"github.com/everafterhq/everafter/internal/models"
	"github.com/everafterhq/everafter/pkg/crypto"
	appErrors "github.com/everafterhq/everafter/pkg/errors"
)

// AuthService covers account registration, credential and OIDC sign-in, and
// access token issuance for couples and admins.
type AuthService struct {
	db  *gorm.DB
	jwt *auth.JWTService
	mfa *auth.MFAService
}

// NewAuthService constructs an AuthService. The MFA service may be nil when
// TOTP is disabled by configuration.
func NewAuthService(db *gorm.DB, jwtService *auth.JWTService, mfaService *auth.MFAService) *AuthService {
	return &AuthService{db: db, jwt: jwtService, mfa: mfaService}
}

// RegisterInput captures a new couple account.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

// Register creates a couple account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	fields := map[string]string{}
	if email == "" {
		fields["email"] = "email is required"
	}
	if len(input.Password) < 8 {
		fields["password"] = "password must be at least 8 characters"
	}
	if len(fields) > 0 {
		return nil, appErrors.NewFieldValidation(fields)
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}

	user := &models.User{
		Email:       email,
		Password:    hash,
		DisplayName: normalizeOptional(input.DisplayName),
		Role:        models.RoleCouple,
		IsActive:    true,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, appErrors.NewConflict("an account with this email already exists")
		}
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}
	return user, nil
}

// LoginResult carries the issued token and the authenticated account.
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login verifies credentials (and the TOTP code when MFA is enabled) and
// issues an access token bound to the user's primary wedding.
func (s *AuthService) Login(ctx context.Context, email, password, mfaCode string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		// Indistinguishable from a wrong password on purpose.
		return nil, appErrors.ErrInvalidCredentials
	}

	if !user.IsActive || user.Password == "" || !crypto.VerifyPassword(user.Password, password) {
		return nil, appErrors.ErrInvalidCredentials
	}

	if user.MFAEnabled {
		if s.mfa == nil || mfaCode == "" {
			return nil, appErrors.ErrMFARequired
		}
		if !s.mfa.Validate(&user, mfaCode) {
			return nil, appErrors.ErrInvalidCredentials.WithMessage("Invalid verification code")
		}
	}

	return s.issueToken(ctx, &user)
}

// LoginWithOIDC signs a user in from a verified OIDC identity, provisioning
// the account on first sight. OIDC accounts have no local password.
func (s *AuthService) LoginWithOIDC(ctx context.Context, identity *auth.OIDCIdentity) (*LoginResult, error) {
	if identity == nil || identity.Subject == "" {
		return nil, appErrors.ErrUnauthorized
	}

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "oidc_subject = ?", identity.Subject).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrInternalServer.WithInternal(err)
		}

		email := strings.ToLower(strings.TrimSpace(identity.Email))
		if email == "" {
			return nil, appErrors.ErrUnauthorized.WithMessage("identity provider did not supply an email")
		}

		// Link by email when an account already exists, otherwise provision.
		err = s.db.WithContext(ctx).First(&user, "email = ?", email).Error
		switch {
		case err == nil:
			user.OIDCSubject = identity.Subject
			if updateErr := s.db.WithContext(ctx).Model(&user).Update("oidc_subject", identity.Subject).Error; updateErr != nil {
				return nil, appErrors.ErrInternalServer.WithInternal(updateErr)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = models.User{
				Email:       email,
				DisplayName: normalizeOptional(identity.Name),
				Role:        models.RoleCouple,
				OIDCSubject: identity.Subject,
				IsActive:    true,
			}
			if createErr := s.db.WithContext(ctx).Create(&user).Error; createErr != nil {
				return nil, appErrors.ErrInternalServer.WithInternal(createErr)
			}
		default:
			return nil, appErrors.ErrInternalServer.WithInternal(err)
		}
	}

	if !user.IsActive {
		return nil, appErrors.ErrForbidden.WithMessage("this account is deactivated")
	}

	return s.issueToken(ctx, &user)
}

// GetUser fetches an account by id.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, translateDBError(err, "account not found")
	}
	return &user, nil
}

func (s *AuthService) issueToken(ctx context.Context, user *models.User) (*LoginResult, error) {
	input := auth.AccessTokenInput{
		UserID: user.ID,
		Role:   user.Role,
	}

	// Couples get their newest wedding bound into the token; admins roam.
	if user.Role == models.RoleCouple {
		var wedding models.Wedding
		err := s.db.WithContext(ctx).
			Where("owner_id = ?", user.ID).
			Order("created_at DESC").
			First(&wedding).Error
		if err == nil {
			input.WeddingID = wedding.ID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrInternalServer.WithInternal(err)
		}
	}

	token, err := s.jwt.GenerateAccessToken(input)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}

	return &LoginResult{Token: token, User: user}, nil
}
