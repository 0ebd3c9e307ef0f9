package auth

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"github.com/everafterhq/everafter/internal/database/testutil"
	"github.com/everafterhq/everafter/internal/models"
)

func TestMFAEnrollActivateValidate(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	ctx := context.Background()

	user := &models.User{Email: "couple@example.com", Role: models.RoleCouple}
	require.NoError(t, db.Create(user).Error)

	svc, err := NewMFAService(db, WithMFAIssuer("EverAfter Test"))
	require.NoError(t, err)

	enrollment, err := svc.Enroll(ctx, user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, enrollment.Secret)
	require.Contains(t, enrollment.ProvisioningURI, "otpauth://totp/")
	require.NotEmpty(t, enrollment.QRCode)

	// The factor must stay off until activation.
	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	require.False(t, reloaded.MFAEnabled)

	require.Error(t, svc.Activate(ctx, user.ID, "000000"))

	code, err := totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, svc.Activate(ctx, user.ID, code))

	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	require.True(t, reloaded.MFAEnabled)
	require.True(t, svc.Validate(&reloaded, code))
	require.False(t, svc.Validate(&reloaded, "123456"))
}

func TestMFAActivateRequiresEnrollment(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	user := &models.User{Email: "bare@example.com"}
	require.NoError(t, db.Create(user).Error)

	svc, err := NewMFAService(db)
	require.NoError(t, err)

	require.ErrorIs(t, svc.Activate(context.Background(), user.ID, "123456"), ErrMFANotEnrolled)
}

func TestMFADisable(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	ctx := context.Background()

	user := &models.User{Email: "off@example.com", MFASecret: "SECRET", MFAEnabled: true}
	require.NoError(t, db.Create(user).Error)

	svc, err := NewMFAService(db)
	require.NoError(t, err)
	require.NoError(t, svc.Disable(ctx, user.ID))

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	require.False(t, reloaded.MFAEnabled)
	require.Empty(t, reloaded.MFASecret)
}
