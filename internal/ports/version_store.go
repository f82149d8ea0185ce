package ports

import (
	"context"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
)

// Port: append-only persistence of RouteVersions with a single committed
// pointer per day.
type VersionStore interface {
	// Commit persists the draft as the day's committed version and atomically
	// flips the previously committed version, if any, to superseded.
	// expectedActiveID is the ID of the committed version the caller observed
	// ("" when none); a mismatch at write time means a concurrent commit won
	// the race and yields domain.VersionConflictError without side effects.
	Commit(ctx context.Context, draft *domain.RouteVersion, expectedActiveID string) (*domain.RouteVersion, error)

	// GetCommitted returns the day's committed version, or nil when the day
	// has never been committed.
	GetCommitted(ctx context.Context, dayID string) (*domain.RouteVersion, error)

	// ListVersions returns the day's full version history, newest first.
	ListVersions(ctx context.Context, dayID string) ([]*domain.RouteVersion, error)
}
