package domain

import "time"

// Lifecycle state of a RouteVersion.
type VersionStatus string

const (
	StatusDraft      VersionStatus = "draft"
	StatusCommitted  VersionStatus = "committed"
	StatusSuperseded VersionStatus = "superseded"
)

// One complete computed route result for a day.
//
// Versions are append-only: commit flips the previous committed version to
// superseded and never deletes it. Exactly one committed version may exist
// per day at any instant.
type RouteVersion struct {
	ID                   string
	DayID                string
	BaseToken            string
	Segments             []Segment
	TotalDistanceMeters  int
	TotalDurationSeconds int
	Summary              RouteSummary
	ComputedAt           time.Time
	Status               VersionStatus
}
