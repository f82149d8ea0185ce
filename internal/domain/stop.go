package domain

import "fmt"

// Transportation profile affecting routing cost.
type Profile string

const (
	ProfileCar        Profile = "car"
	ProfileBike       Profile = "bike"
	ProfileMotorcycle Profile = "motorcycle"
)

func (p Profile) Validate() error {
	switch p {
	case ProfileCar, ProfileBike, ProfileMotorcycle:
		return nil
	}
	return &ValidationError{Field: "profile", Reason: fmt.Sprintf("unknown profile %q", string(p))}
}

// Routing preferences forwarded to the backends.
type RouteOptions struct {
	AvoidHighways bool
	AvoidTolls    bool
}

// A single itinerary stop. Fixed stops keep their position index during
// optimization; start and end are always implicitly fixed regardless of flag.
type Stop struct {
	Point Point
	Fixed bool
}

// Input to a single-day route computation.
type RouteRequest struct {
	DayID string
	Start Point
	Stops []Stop
	End   Point
	// Opaque token describing the day's stop state at request time, supplied
	// by the collaborator that owns stop data. Carried into the draft and
	// re-checked on commit.
	BaseToken string
	Profile   Profile
	Options   RouteOptions
	Optimize  bool
}

// Validate checks request shape and every coordinate's numeric ranges.
func (r RouteRequest) Validate() error {
	if r.DayID == "" {
		return &ValidationError{Field: "day_id", Reason: "must be non-empty"}
	}
	if err := r.Profile.Validate(); err != nil {
		return err
	}
	if err := r.Start.Validate(); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if err := r.End.Validate(); err != nil {
		return fmt.Errorf("end: %w", err)
	}
	for i, s := range r.Stops {
		if err := s.Point.Validate(); err != nil {
			return fmt.Errorf("stops[%d]: %w", i, err)
		}
	}
	return nil
}

// Sequence returns the full ordered point list: start, stops, end.
// Invariant: length = 2 + len(Stops); start and end occupy index 0 and last.
func (r RouteRequest) Sequence() []Point {
	seq := make([]Point, 0, 2+len(r.Stops))
	seq = append(seq, r.Start)
	for _, s := range r.Stops {
		seq = append(seq, s.Point)
	}
	seq = append(seq, r.End)
	return seq
}

// FixedMask returns, for each sequence index, whether the position is pinned.
// Index 0 and the last index are always true.
func (r RouteRequest) FixedMask() []bool {
	mask := make([]bool, 2+len(r.Stops))
	mask[0] = true
	mask[len(mask)-1] = true
	for i, s := range r.Stops {
		if s.Fixed {
			mask[i+1] = true
		}
	}
	return mask
}
