package auth

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	svc := New("test-secret", time.Hour, nil)

	hash, err := svc.HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, svc.CheckPassword(hash, "s3cret-pass"))
	assert.False(t, svc.CheckPassword(hash, "wrong-pass"))
}

func TestGenerateAndValidateToken(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 25, 6, 0, 0, 0, time.UTC))
	svc := New("test-secret", time.Hour, clock)

	token, err := svc.GenerateToken(42, "analyst@city.gov.vn", "analyst")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "analyst@city.gov.vn", claims.Email)
	assert.Equal(t, "analyst", claims.Role)
	assert.Equal(t, clock.Now().Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestValidateExpiredToken(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 25, 6, 0, 0, 0, time.UTC))
	svc := New("test-secret", time.Hour, clock)

	token, err := svc.GenerateToken(1, "viewer@city.gov.vn", "viewer")
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTamperedToken(t *testing.T) {
	svc := New("test-secret", time.Hour, nil)
	other := New("other-secret", time.Hour, nil)

	token, err := other.GenerateToken(1, "viewer@city.gov.vn", "viewer")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateMalformedToken(t *testing.T) {
	svc := New("test-secret", time.Hour, nil)

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
