package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	cases := map[string]time.Time{
		"2024-12-15T14:00":          time.Date(2024, 12, 15, 14, 0, 0, 0, time.UTC),
		"2024-12-15T14:00:30":       time.Date(2024, 12, 15, 14, 0, 30, 0, time.UTC),
		"2024-12-15T14:00:00Z":      time.Date(2024, 12, 15, 14, 0, 0, 0, time.UTC),
		"2024-12-15":                time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC),
		" 2024-12-15 14:00 ":        time.Date(2024, 12, 15, 14, 0, 0, 0, time.UTC),
		"2024-12-15T14:00:00+02:00": time.Date(2024, 12, 15, 12, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, err := ParseTime(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s: got %s", in, got)
	}

	_, err := ParseTime("tomorrow")
	assert.Error(t, err)
}

func TestHaversineDistance(t *testing.T) {
	// Lisbon to Porto is roughly 274 km as the crow flies.
	d := HaversineDistance(38.7223, -9.1393, 41.1579, -8.6291)
	assert.InDelta(t, 274, d, 5)
	assert.Zero(t, HaversineDistance(1, 1, 1, 1))
}

func TestValidCoordinates(t *testing.T) {
	assert.True(t, ValidCoordinates(0, 0))
	assert.True(t, ValidCoordinates(-90, 180))
	assert.False(t, ValidCoordinates(91, 0))
	assert.False(t, ValidCoordinates(0, -181))
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", "user-1", "traveler", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "traveler", claims.UserType)

	_, err = ValidateToken("other", token)
	assert.Error(t, err)

	expired, err := GenerateToken("secret", "user-1", "traveler", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken("secret", expired)
	assert.Error(t, err)
}
