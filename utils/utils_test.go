package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funnelscope/api/models"
)

func TestIsValidInterval(t *testing.T) {
	for _, in := range []string{"Minute", "Hour", "Day", "Week", "Month", "Quarter", "Year"} {
		assert.True(t, IsValidInterval(in), in)
	}
	for _, in := range []string{"", "day", "Fortnight", "Day) FROM x; --"} {
		assert.False(t, IsValidInterval(in), in)
	}
}

func TestNormalizeInterval(t *testing.T) {
	assert.Equal(t, "Day", NormalizeInterval("day"))
	assert.Equal(t, "Hour", NormalizeInterval(" HOUR "))
	assert.Equal(t, "", NormalizeInterval(""))
}

func TestParseWindow(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	start, end, err := ParseWindow("", "", 24*time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, now, end)
	assert.Equal(t, now.Add(-24*time.Hour), start)

	start, end, err = ParseWindow("2024-03-01T00:00:00+02:00", "2024-03-05T00:00:00Z", time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 22, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), end)

	_, _, err = ParseWindow("yesterday", "", time.Hour, now)
	assert.ErrorContains(t, err, "'start'")
	_, _, err = ParseWindow("", "2024-03-05", time.Hour, now)
	assert.ErrorContains(t, err, "'end'")
	_, _, err = ParseWindow("2024-03-06T00:00:00Z", "2024-03-05T00:00:00Z", time.Hour, now)
	assert.ErrorContains(t, err, "after")
}

func TestJWTRoundTrip(t *testing.T) {
	m, err := NewJWTManager("s3cret", time.Hour)
	require.NoError(t, err)

	token, err := m.Generate(&models.Analyst{ID: 42, Email: "ana@example.com"})
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "42", claims.Subject)
}

func TestJWTRejectsForeignAndExpiredTokens(t *testing.T) {
	m, err := NewJWTManager("s3cret", time.Minute)
	require.NoError(t, err)
	other, err := NewJWTManager("different", time.Minute)
	require.NoError(t, err)

	token, err := other.Generate(&models.Analyst{ID: 1, Email: "x@example.com"})
	require.NoError(t, err)
	_, err = m.Validate(token)
	assert.Error(t, err)

	issued := time.Now().Add(-2 * time.Hour)
	m.now = func() time.Time { return issued }
	token, err = m.Generate(&models.Analyst{ID: 1, Email: "x@example.com"})
	require.NoError(t, err)
	m.now = time.Now
	_, err = m.Validate(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": 1, "iss": tokenIssuer})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Validate(unsigned)
	assert.Error(t, err)
}

func TestNewJWTManagerRequiresSecret(t *testing.T) {
	_, err := NewJWTManager("", time.Hour)
	assert.Error(t, err)

	m, err := NewJWTManager("k", 0)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, m.TTL())
}
