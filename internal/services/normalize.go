package services

import (
	"fmt"
	"strings"

	"github.com/golang/geo/s2"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
)

// Coverage is the geographic region the primary backend can answer queries
// for, expressed as a lat/lng rectangle.
type Coverage struct {
	rect s2.Rect
}

func NewCoverage(minLat, minLng, maxLat, maxLng float64) (*Coverage, error) {
	if minLat > maxLat || minLng > maxLng {
		return nil, fmt.Errorf("coverage bounds inverted: (%f,%f)-(%f,%f)", minLat, minLng, maxLat, maxLng)
	}

	rect := s2.RectFromLatLng(s2.LatLngFromDegrees(minLat, minLng))
	rect = rect.AddPoint(s2.LatLngFromDegrees(maxLat, maxLng))
	return &Coverage{rect: rect}, nil
}

func (c *Coverage) Contains(p domain.Point) bool {
	return c.rect.ContainsLatLng(s2.LatLngFromDegrees(p.Latitude, p.Longitude))
}

func (c *Coverage) ContainsAll(points []domain.Point) bool {
	for _, p := range points {
		if !c.Contains(p) {
			return false
		}
	}
	return true
}

// FirstOutside returns the first point outside the region, if any.
func (c *Coverage) FirstOutside(points []domain.Point) (domain.Point, bool) {
	for _, p := range points {
		if !c.Contains(p) {
			return p, true
		}
	}
	return domain.Point{}, false
}

// Normalizer validates and canonicalizes points before they cross any
// provider boundary. Every component calls it ahead of provider work; no raw
// point reaches a backend unnormalized.
type Normalizer struct {
	primary *Coverage
}

func NewNormalizer(primary *Coverage) *Normalizer {
	return &Normalizer{primary: primary}
}

// Normalize checks numeric ranges and canonicalizes the label. Range
// violations are ValidationErrors; coverage membership does not fail here,
// it only steers backend selection.
func (n *Normalizer) Normalize(p domain.Point) (domain.Point, error) {
	if err := p.Validate(); err != nil {
		return domain.Point{}, err
	}

	p.Label = strings.Join(strings.Fields(p.Label), " ")
	return p, nil
}

// NormalizeAll normalizes a full sequence, failing on the first bad point.
func (n *Normalizer) NormalizeAll(points []domain.Point) ([]domain.Point, error) {
	out := make([]domain.Point, len(points))
	for i, p := range points {
		np, err := n.Normalize(p)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		out[i] = np
	}
	return out, nil
}

// InPrimaryCoverage reports whether the primary backend can serve the point.
func (n *Normalizer) InPrimaryCoverage(p domain.Point) bool {
	if n.primary == nil {
		return false
	}
	return n.primary.Contains(p)
}

func (n *Normalizer) PrimaryCoverage() *Coverage { return n.primary }
