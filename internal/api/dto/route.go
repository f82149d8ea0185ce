package dto

import (
	"math"
	"time"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
)

// Wire representations for the route endpoints. Distances travel as
// kilometers and durations as minutes; the engine works in meters and
// seconds internally, so conversion happens only at this boundary.

type Point struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Label string  `json:"label,omitempty"`
}

type Stop struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Label string  `json:"label,omitempty"`
	Fixed bool    `json:"fixed,omitempty"`
}

type RouteOptions struct {
	AvoidHighways bool `json:"avoid_highways,omitempty"`
	AvoidTolls    bool `json:"avoid_tolls,omitempty"`
}

type ComputeRequest struct {
	DayID     string       `json:"day_id"`
	Start     Point        `json:"start"`
	Stops     []Stop       `json:"stops"`
	End       Point        `json:"end"`
	BaseToken string       `json:"base_token,omitempty"`
	Profile   string       `json:"profile"`
	Options   RouteOptions `json:"options"`
	Optimize  bool         `json:"optimize"`
}

func (r ComputeRequest) ToDomain() domain.RouteRequest {
	stops := make([]domain.Stop, 0, len(r.Stops))
	for _, s := range r.Stops {
		stops = append(stops, domain.Stop{
			Point: domain.Point{Latitude: s.Lat, Longitude: s.Lng, Label: s.Label},
			Fixed: s.Fixed,
		})
	}
	return domain.RouteRequest{
		DayID:     r.DayID,
		Start:     domain.Point{Latitude: r.Start.Lat, Longitude: r.Start.Lng, Label: r.Start.Label},
		Stops:     stops,
		End:       domain.Point{Latitude: r.End.Lat, Longitude: r.End.Lng, Label: r.End.Label},
		BaseToken: r.BaseToken,
		Profile:   domain.Profile(r.Profile),
		Options: domain.RouteOptions{
			AvoidHighways: r.Options.AvoidHighways,
			AvoidTolls:    r.Options.AvoidTolls,
		},
		Optimize: r.Optimize,
	}
}

type Segment struct {
	From         Point    `json:"from"`
	To           Point    `json:"to"`
	DistanceKM   *float64 `json:"distance_km"` // null when the leg is unavailable
	DurationMin  *float64 `json:"duration_min"`
	Geometry     string   `json:"geometry,omitempty"`
	Instructions []string `json:"instructions,omitempty"`
	Type         string   `json:"segment_type"`
	Index        int      `json:"segment_index"`
	Unavailable  bool     `json:"unavailable,omitempty"`
}

type TypeBreakdown struct {
	Count       int     `json:"count"`
	DistanceKM  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min"`
}

type RouteSummary struct {
	TotalSegments   int                      `json:"total_segments"`
	ByType          map[string]TypeBreakdown `json:"breakdown_by_type"`
	LongestSegment  int                      `json:"longest_segment"`
	ShortestSegment int                      `json:"shortest_segment"`
	Warnings        []string                 `json:"warnings,omitempty"`
}

type RouteVersion struct {
	ID         string       `json:"id"`
	DayID      string       `json:"day_id"`
	BaseToken  string       `json:"base_token,omitempty"`
	Segments   []Segment    `json:"segments"`
	TotalKM    float64      `json:"total_distance_km"`
	TotalMin   float64      `json:"total_duration_min"`
	Summary    RouteSummary `json:"summary"`
	ComputedAt time.Time    `json:"computed_at"`
	Status     string       `json:"status"`
}

type CommitRequest struct {
	Version RouteVersion `json:"version"`
}

type HistoryResponse struct {
	Versions []RouteVersion `json:"versions"`
}

func kmFromMeters(m int) float64     { return float64(m) / 1000 }
func minFromSeconds(s int) float64   { return float64(s) / 60 }
func metersFromKM(km float64) int    { return int(math.Round(km * 1000)) }
func secondsFromMin(min float64) int { return int(math.Round(min * 60)) }

func FromDomainVersion(v *domain.RouteVersion) RouteVersion {
	segments := make([]Segment, 0, len(v.Segments))
	for _, s := range v.Segments {
		seg := Segment{
			From:         Point{Lat: s.From.Latitude, Lng: s.From.Longitude, Label: s.From.Label},
			To:           Point{Lat: s.To.Latitude, Lng: s.To.Longitude, Label: s.To.Label},
			Geometry:     s.Geometry,
			Instructions: s.Instructions,
			Type:         string(s.Type),
			Index:        s.Index,
			Unavailable:  s.Unavailable,
		}
		if !s.Unavailable {
			km := kmFromMeters(s.DistanceMeters)
			min := minFromSeconds(s.DurationSeconds)
			seg.DistanceKM = &km
			seg.DurationMin = &min
		}
		segments = append(segments, seg)
	}

	byType := make(map[string]TypeBreakdown, len(v.Summary.ByType))
	for typ, b := range v.Summary.ByType {
		byType[string(typ)] = TypeBreakdown{
			Count:       b.Count,
			DistanceKM:  kmFromMeters(b.DistanceMeters),
			DurationMin: minFromSeconds(b.DurationSeconds),
		}
	}

	return RouteVersion{
		ID:        v.ID,
		DayID:     v.DayID,
		BaseToken: v.BaseToken,
		Segments:  segments,
		TotalKM:   kmFromMeters(v.TotalDistanceMeters),
		TotalMin:  minFromSeconds(v.TotalDurationSeconds),
		Summary: RouteSummary{
			TotalSegments:   v.Summary.TotalSegments,
			ByType:          byType,
			LongestSegment:  v.Summary.LongestSegment,
			ShortestSegment: v.Summary.ShortestSegment,
			Warnings:        v.Summary.Warnings,
		},
		ComputedAt: v.ComputedAt,
		Status:     string(v.Status),
	}
}

// ToDomain reconstructs the engine-internal version from its wire form.
// Meter and second values round-trip exactly at itinerary magnitudes.
func (v RouteVersion) ToDomain() *domain.RouteVersion {
	segments := make([]domain.Segment, 0, len(v.Segments))
	for _, s := range v.Segments {
		seg := domain.Segment{
			From:         domain.Point{Latitude: s.From.Lat, Longitude: s.From.Lng, Label: s.From.Label},
			To:           domain.Point{Latitude: s.To.Lat, Longitude: s.To.Lng, Label: s.To.Label},
			Geometry:     s.Geometry,
			Instructions: s.Instructions,
			Type:         domain.SegmentType(s.Type),
			Index:        s.Index,
			Unavailable:  s.Unavailable,
		}
		if s.DistanceKM != nil {
			seg.DistanceMeters = metersFromKM(*s.DistanceKM)
		}
		if s.DurationMin != nil {
			seg.DurationSeconds = secondsFromMin(*s.DurationMin)
		}
		segments = append(segments, seg)
	}

	byType := make(map[domain.SegmentType]domain.TypeBreakdown, len(v.Summary.ByType))
	for typ, b := range v.Summary.ByType {
		byType[domain.SegmentType(typ)] = domain.TypeBreakdown{
			Count:           b.Count,
			DistanceMeters:  metersFromKM(b.DistanceKM),
			DurationSeconds: secondsFromMin(b.DurationMin),
		}
	}

	return &domain.RouteVersion{
		ID:                   v.ID,
		DayID:                v.DayID,
		BaseToken:            v.BaseToken,
		Segments:             segments,
		TotalDistanceMeters:  metersFromKM(v.TotalKM),
		TotalDurationSeconds: secondsFromMin(v.TotalMin),
		Summary: domain.RouteSummary{
			TotalSegments:   v.Summary.TotalSegments,
			ByType:          byType,
			LongestSegment:  v.Summary.LongestSegment,
			ShortestSegment: v.Summary.ShortestSegment,
			Warnings:        v.Summary.Warnings,
		},
		ComputedAt: v.ComputedAt,
		Status:     domain.VersionStatus(v.Status),
	}
}
