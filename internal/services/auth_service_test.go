package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/everafterhq/everafter/internal/auth"
	"github.com/everafterhq/everafter/internal/database/testutil"
	"github.com/everafterhq/everafter/internal/models"
	appErrors "github.com/everafterhq/everafter/pkg/errors"
)

func newAuthService(t *testing.T, db *gorm.DB) *AuthService {
	t.Helper()

	jwtService, err := auth.NewJWTService(auth.JWTConfig{
		Secret: "test-secret-test-secret-test-secret",
		Issuer: "everafter-test",
	})
	require.NoError(t, err)

	mfaService, err := auth.NewMFAService(db)
	require.NoError(t, err)

	return NewAuthService(db, jwtService, mfaService)
}

func TestRegisterAndLogin(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAuthService(t, db)

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:       "Couple@Example.com",
		Password:    "hunter2hunter2",
		DisplayName: "Amy",
	})
	require.NoError(t, err)
	require.Equal(t, "couple@example.com", user.Email)
	require.Equal(t, models.RoleCouple, user.Role)
	require.NotEqual(t, "hunter2hunter2", user.Password)

	result, err := svc.Login(context.Background(), "couple@example.com", "hunter2hunter2", "")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Equal(t, user.ID, result.User.ID)

	_, err = svc.Login(context.Background(), "couple@example.com", "wrong-password", "")
	require.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(context.Background(), "nobody@example.com", "whatever123", "")
	require.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAuthService(t, db)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@example.com", Password: "longenough"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{Email: "a@example.com", Password: "longenough"})
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestRegisterValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAuthService(t, db)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "", Password: "short"})
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	require.Contains(t, appErr.Fields, "email")
	require.Contains(t, appErr.Fields, "password")
}

func TestLoginRequiresMFAWhenEnabled(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAuthService(t, db)

	user, err := svc.Register(context.Background(), RegisterInput{Email: "mfa@example.com", Password: "longenough"})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{"mfa_enabled": true, "mfa_secret": "JBSWY3DPEHPK3PXP"}).Error)

	_, err = svc.Login(context.Background(), "mfa@example.com", "longenough", "")
	require.Equal(t, appErrors.ErrMFARequired.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(context.Background(), "mfa@example.com", "longenough", "000000")
	require.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginBindsNewestWedding(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAuthService(t, db)

	user, err := svc.Register(context.Background(), RegisterInput{Email: "owner@example.com", Password: "longenough"})
	require.NoError(t, err)

	weddings := NewWeddingService(db)
	wedding, err := weddings.Create(context.Background(), CreateWeddingInput{
		OwnerID:     user.ID,
		CoupleNames: "Amy & Sam",
		Subdomain:   "bound-wedding",
	})
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), "owner@example.com", "longenough", "")
	require.NoError(t, err)

	jwtService, err := auth.NewJWTService(auth.JWTConfig{
		Secret: "test-secret-test-secret-test-secret",
		Issuer: "everafter-test",
	})
	require.NoError(t, err)

	claims, err := jwtService.ValidateAccessToken(result.Token)
	require.NoError(t, err)
	require.Equal(t, wedding.ID, claims.WeddingID)
	require.Equal(t, models.RoleCouple, claims.Role)
}

func TestLoginWithOIDCProvisionsAndLinks(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAuthService(t, db)

	// First sight provisions an account.
	result, err := svc.LoginWithOIDC(context.Background(), &auth.OIDCIdentity{
		Subject: "oidc-sub-1",
		Email:   "Fresh@Example.com",
		Name:    "Fresh Couple",
	})
	require.NoError(t, err)
	require.Equal(t, "fresh@example.com", result.User.Email)
	require.Empty(t, result.User.Password)

	// Second sign-in reuses the same account.
	again, err := svc.LoginWithOIDC(context.Background(), &auth.OIDCIdentity{Subject: "oidc-sub-1"})
	require.NoError(t, err)
	require.Equal(t, result.User.ID, again.User.ID)

	// A matching local account gets linked by email.
	local, err := svc.Register(context.Background(), RegisterInput{Email: "linked@example.com", Password: "longenough"})
	require.NoError(t, err)

	linked, err := svc.LoginWithOIDC(context.Background(), &auth.OIDCIdentity{
		Subject: "oidc-sub-2",
		Email:   "linked@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, local.ID, linked.User.ID)

	_, err = svc.LoginWithOIDC(context.Background(), nil)
	require.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
