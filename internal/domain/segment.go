package domain

// Position-derived classification of a travel leg.
type SegmentType string

const (
	SegmentStartToStop SegmentType = "start_to_stop"
	SegmentStopToStop  SegmentType = "stop_to_stop"
	SegmentStopToEnd   SegmentType = "stop_to_end"
	SegmentStartToEnd  SegmentType = "start_to_end"
)

// ClassifySegment derives the segment type from its leg index and the total
// leg count of the route.
func ClassifySegment(index, totalLegs int) SegmentType {
	switch {
	case totalLegs == 1:
		return SegmentStartToEnd
	case index == 0:
		return SegmentStartToStop
	case index == totalLegs-1:
		return SegmentStopToEnd
	default:
		return SegmentStopToStop
	}
}

// One travel leg between two consecutive points. Segments are created by the
// segment computer, never mutated afterwards, and discarded if the owning
// draft is not committed.
type Segment struct {
	From            Point
	To              Point
	DistanceMeters  int
	DurationSeconds int
	Geometry        string // encoded polyline
	Instructions    []string
	Type            SegmentType
	Index           int
	// Unavailable marks a leg whose provider call failed after retries; its
	// distance and duration carry no meaning and must render as null.
	Unavailable bool
}

// Per-type aggregate used in route summaries.
type TypeBreakdown struct {
	Count           int
	DistanceMeters  int
	DurationSeconds int
}

// Aggregated description of a computed route.
type RouteSummary struct {
	TotalSegments   int
	ByType          map[SegmentType]TypeBreakdown
	LongestSegment  int // index of the longest available segment, -1 if none
	ShortestSegment int // index of the shortest available segment, -1 if none
	Warnings        []string
}
