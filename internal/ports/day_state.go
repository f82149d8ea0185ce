package ports

import "context"

// Port: the external collaborator that owns day/stop data exposes an opaque
// token describing the day's current stop set and order. The engine only
// compares tokens for equality; it never interprets them.
type DayStateProvider interface {
	CurrentToken(ctx context.Context, dayID string) (string, error)
}
