package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
)

// Coverage rectangle around Israel, the primary extract used in tests.
func testCoverage(t *testing.T) *Coverage {
	t.Helper()
	c, err := NewCoverage(29.0, 34.0, 34.0, 36.0)
	require.NoError(t, err)
	return c
}

func TestNormalizeRejectsOutOfRangeCoordinates(t *testing.T) {
	n := NewNormalizer(testCoverage(t))

	cases := []struct {
		name  string
		point domain.Point
		field string
	}{
		{"latitude too high", domain.Point{Latitude: 90.5, Longitude: 34.78}, "latitude"},
		{"latitude too low", domain.Point{Latitude: -91, Longitude: 34.78}, "latitude"},
		{"longitude too high", domain.Point{Latitude: 32.08, Longitude: 180.2}, "longitude"},
		{"longitude too low", domain.Point{Latitude: 32.08, Longitude: -200}, "longitude"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := n.Normalize(tc.point)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestNormalizeCanonicalizesLabel(t *testing.T) {
	n := NewNormalizer(testCoverage(t))

	p, err := n.Normalize(domain.Point{Latitude: 32.0853, Longitude: 34.7818, Label: "  Rothschild   Blvd "})
	require.NoError(t, err)
	assert.Equal(t, "Rothschild Blvd", p.Label)
}

func TestPrimaryCoverageMembership(t *testing.T) {
	n := NewNormalizer(testCoverage(t))

	assert.True(t, n.InPrimaryCoverage(domain.Point{Latitude: 32.0853, Longitude: 34.7818}))  // Tel Aviv
	assert.False(t, n.InPrimaryCoverage(domain.Point{Latitude: 48.8566, Longitude: 2.3522})) // Paris
}

func TestCoverageRejectsInvertedBounds(t *testing.T) {
	_, err := NewCoverage(34.0, 36.0, 29.0, 34.0)
	require.Error(t, err)
}
