package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
)

func TestVersionRoundTripKeepsExactValues(t *testing.T) {
	v := &domain.RouteVersion{
		ID:        "v-1",
		DayID:     "day-1",
		BaseToken: "tok-1",
		Segments: []domain.Segment{
			{
				From:            domain.Point{Latitude: 32.0853, Longitude: 34.7818, Label: "hotel"},
				To:              domain.Point{Latitude: 32.0944, Longitude: 34.7806},
				DistanceMeters:  1017,
				DurationSeconds: 133,
				Type:            domain.SegmentStartToStop,
				Index:           0,
			},
			{
				From:        domain.Point{Latitude: 32.0944, Longitude: 34.7806},
				To:          domain.Point{Latitude: 32.0823, Longitude: 34.7789},
				Type:        domain.SegmentStopToEnd,
				Index:       1,
				Unavailable: true,
			},
		},
		TotalDistanceMeters:  1017,
		TotalDurationSeconds: 133,
		Summary: domain.RouteSummary{
			TotalSegments: 2,
			ByType: map[domain.SegmentType]domain.TypeBreakdown{
				domain.SegmentStartToStop: {Count: 1, DistanceMeters: 1017, DurationSeconds: 133},
				domain.SegmentStopToEnd:   {Count: 1},
			},
			LongestSegment:  0,
			ShortestSegment: 0,
			Warnings:        []string{"segment 1 unavailable after retries"},
		},
		ComputedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		Status:     domain.StatusDraft,
	}

	wire := FromDomainVersion(v)
	back := wire.ToDomain()
	assert.Equal(t, v, back)
}

// The response field names are a published contract; renaming them breaks
// every consumer.
func TestVersionWireFieldNames(t *testing.T) {
	v := &domain.RouteVersion{
		ID:    "v-1",
		DayID: "day-1",
		Segments: []domain.Segment{
			{
				DistanceMeters:  1500,
				DurationSeconds: 180,
				Type:            domain.SegmentStartToEnd,
			},
		},
		TotalDistanceMeters:  1500,
		TotalDurationSeconds: 180,
		Summary: domain.RouteSummary{
			TotalSegments: 1,
			ByType: map[domain.SegmentType]domain.TypeBreakdown{
				domain.SegmentStartToEnd: {Count: 1, DistanceMeters: 1500, DurationSeconds: 180},
			},
		},
		Status: domain.StatusDraft,
	}

	raw, err := json.Marshal(FromDomainVersion(v))
	require.NoError(t, err)

	for _, field := range []string{
		`"total_distance_km":1.5`,
		`"total_duration_min":3`,
		`"segment_type":"start_to_end"`,
		`"segment_index":0`,
		`"breakdown_by_type":`,
		`"distance_km":1.5`,
		`"duration_min":3`,
		`"total_segments":1`,
		`"longest_segment":`,
		`"shortest_segment":`,
	} {
		assert.Contains(t, string(raw), field)
	}
}

func TestUnavailableSegmentRendersNull(t *testing.T) {
	v := &domain.RouteVersion{
		Segments: []domain.Segment{
			{Type: domain.SegmentStartToEnd, Unavailable: true},
		},
		Summary: domain.RouteSummary{TotalSegments: 1, ByType: map[domain.SegmentType]domain.TypeBreakdown{}},
	}

	raw, err := json.Marshal(FromDomainVersion(v))
	require.NoError(t, err)

	assert.Contains(t, string(raw), `"distance_km":null`)
	assert.Contains(t, string(raw), `"duration_min":null`)
}
