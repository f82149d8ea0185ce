package domain

// Immutable geographic point carried as an explicit named latitude/longitude
// pair. Axis order conversion for a specific backend wire format happens only
// inside that backend's adapter, never here.
type Point struct {
	Latitude  float64
	Longitude float64
	Label     string
}

// Validate checks numeric coordinate ranges.
func (p Point) Validate() error {
	if p.Latitude < -90 || p.Latitude > 90 {
		return &ValidationError{Field: "latitude", Reason: "must be within [-90, 90]"}
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return &ValidationError{Field: "longitude", Reason: "must be within [-180, 180]"}
	}
	return nil
}

// Equal reports coordinate equality; labels are display-only.
func (p Point) Equal(other Point) bool {
	return p.Latitude == other.Latitude && p.Longitude == other.Longitude
}
