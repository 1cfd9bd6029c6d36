package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/itemdesk-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-for-token-tests-0123456789"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	m := NewTokenManager(testSecret)

	token, err := m.Issue("user-1", models.RoleAdmin)
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestTokenManager_Expiry(t *testing.T) {
	issuedAt := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	m := NewTokenManager(testSecret).WithClock(fixedClock(issuedAt))

	token, err := m.Issue("user-1", models.RoleUser)
	require.NoError(t, err)

	_, err = m.WithClock(fixedClock(issuedAt.Add(time.Hour))).Verify(token)
	assert.NoError(t, err, "token must still be valid one hour after issue")

	_, err = m.WithClock(fixedClock(issuedAt.Add(3 * time.Hour))).Verify(token)
	assert.ErrorIs(t, err, models.ErrInvalidCredential, "token must be rejected past its two hour lifetime")
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	token, err := NewTokenManager("another-secret-another-secret-0000").Issue("user-1", models.RoleUser)
	require.NoError(t, err)

	_, err = NewTokenManager(testSecret).Verify(token)
	assert.ErrorIs(t, err, models.ErrInvalidCredential)
}

func TestTokenManager_RejectsUnsignedToken(t *testing.T) {
	claims := &Claims{
		UserID: "user-1",
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager(testSecret).Verify(token)
	assert.ErrorIs(t, err, models.ErrInvalidCredential)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	_, err := NewTokenManager(testSecret).Verify("not.a.token")
	assert.ErrorIs(t, err, models.ErrInvalidCredential)
}
