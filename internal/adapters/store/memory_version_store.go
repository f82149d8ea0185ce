package store

import (
	"context"
	"sync"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
)

// MemoryVersionStore keeps the append-only version log per day in memory
// with a single committed pointer. Commit serialization is a plain mutex;
// losers of a commit race get VersionConflictError exactly like the SQL
// store. Used in tests and storage-less deployments.
type MemoryVersionStore struct {
	mu     sync.Mutex
	log    map[string][]*domain.RouteVersion
	active map[string]string // day id -> committed version id
}

func NewMemoryVersionStore() *MemoryVersionStore {
	return &MemoryVersionStore{
		log:    make(map[string][]*domain.RouteVersion),
		active: make(map[string]string),
	}
}

func (s *MemoryVersionStore) Commit(
	ctx context.Context,
	draft *domain.RouteVersion,
	expectedActiveID string,
) (*domain.RouteVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.active[draft.DayID]
	if current != expectedActiveID {
		return nil, &domain.VersionConflictError{
			DayID:    draft.DayID,
			Expected: expectedActiveID,
			Actual:   current,
		}
	}

	// Supersede, never delete: prior versions stay in the log.
	if current != "" {
		for _, v := range s.log[draft.DayID] {
			if v.ID == current {
				v.Status = domain.StatusSuperseded
				break
			}
		}
	}

	committed := *draft
	committed.Status = domain.StatusCommitted

	s.log[draft.DayID] = append(s.log[draft.DayID], &committed)
	s.active[draft.DayID] = committed.ID

	result := committed
	return &result, nil
}

func (s *MemoryVersionStore) GetCommitted(ctx context.Context, dayID string) (*domain.RouteVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.active[dayID]
	if id == "" {
		return nil, nil
	}

	for _, v := range s.log[dayID] {
		if v.ID == id {
			result := *v
			return &result, nil
		}
	}
	return nil, nil
}

func (s *MemoryVersionStore) ListVersions(ctx context.Context, dayID string) ([]*domain.RouteVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.log[dayID]
	out := make([]*domain.RouteVersion, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		v := *entries[i]
		out = append(out, &v)
	}
	return out, nil
}
