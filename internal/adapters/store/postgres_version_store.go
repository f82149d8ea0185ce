package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
	"github.com/AdarBahar/MyTrip-sub001/internal/platform/obs"
)

// PostgresVersionStore persists RouteVersions as an append-only log per day.
// Commit is the only state transition: inside one transaction it locks the
// day's committed row, verifies the caller's expectation, flips the old row
// to superseded and inserts the new committed one. A partial unique index on
// (day_id) WHERE status='committed' backs the single-committed invariant.
type PostgresVersionStore struct {
	DB *sql.DB
}

func NewPostgresVersionStore(db *sql.DB) *PostgresVersionStore {
	return &PostgresVersionStore{DB: db}
}

// Segment list and summary travel as one JSON document; they are immutable
// value data, never queried column-wise.
type versionPayload struct {
	Segments []domain.Segment    `json:"segments"`
	Summary  domain.RouteSummary `json:"summary"`
}

func (s *PostgresVersionStore) Commit(
	ctx context.Context,
	draft *domain.RouteVersion,
	expectedActiveID string,
) (_ *domain.RouteVersion, err error) {
	defer obs.Time(ctx, "store.Commit")(&err)

	if s.DB == nil {
		return nil, errors.New("version store: db is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("commit version: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var currentID string
	err = tx.QueryRowContext(ctx, `
	SELECT id FROM route_versions
	WHERE day_id = $1 AND status = 'committed'
	FOR UPDATE;
	`, draft.DayID).Scan(&currentID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("commit version: lock committed row: %w", err)
	}

	if currentID != expectedActiveID {
		return nil, &domain.VersionConflictError{
			DayID:    draft.DayID,
			Expected: expectedActiveID,
			Actual:   currentID,
		}
	}

	if currentID != "" {
		if _, err := tx.ExecContext(ctx, `
		UPDATE route_versions SET status = 'superseded' WHERE id = $1;
		`, currentID); err != nil {
			return nil, fmt.Errorf("commit version: supersede %q: %w", currentID, err)
		}
	}

	payload, err := json.Marshal(versionPayload{Segments: draft.Segments, Summary: draft.Summary})
	if err != nil {
		return nil, fmt.Errorf("commit version: marshal payload: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
	INSERT INTO route_versions
		(id, day_id, base_token, status, total_distance_meters, total_duration_seconds, computed_at, payload)
	VALUES ($1, $2, $3, 'committed', $4, $5, $6, $7);
	`, draft.ID, draft.DayID, draft.BaseToken, draft.TotalDistanceMeters, draft.TotalDurationSeconds, draft.ComputedAt, payload); err != nil {
		// On a day with no committed row yet, FOR UPDATE locks nothing, so
		// two first commits can both pass the expectation check. The loser
		// hits the one-committed-per-day index here.
		if isUniqueViolation(err) {
			return nil, &domain.VersionConflictError{
				DayID:    draft.DayID,
				Expected: expectedActiveID,
			}
		}
		return nil, fmt.Errorf("commit version: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit version: db commit: %w", err)
	}

	committed := *draft
	committed.Status = domain.StatusCommitted
	return &committed, nil
}

func (s *PostgresVersionStore) GetCommitted(ctx context.Context, dayID string) (_ *domain.RouteVersion, err error) {
	defer obs.Time(ctx, "store.GetCommitted")(&err)

	if s.DB == nil {
		return nil, errors.New("version store: db is nil")
	}

	row := s.DB.QueryRowContext(ctx, `
	SELECT id, day_id, base_token, status, total_distance_meters, total_duration_seconds, computed_at, payload
	FROM route_versions
	WHERE day_id = $1 AND status = 'committed';
	`, dayID)

	v, err := scanVersion(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get committed version: %w", err)
	}
	return v, nil
}

func (s *PostgresVersionStore) ListVersions(ctx context.Context, dayID string) (_ []*domain.RouteVersion, err error) {
	defer obs.Time(ctx, "store.ListVersions")(&err)

	if s.DB == nil {
		return nil, errors.New("version store: db is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT id, day_id, base_token, status, total_distance_meters, total_duration_seconds, computed_at, payload
	FROM route_versions
	WHERE day_id = $1
	ORDER BY computed_at DESC, id;
	`, dayID)
	if err != nil {
		return nil, fmt.Errorf("list versions: query: %w", err)
	}
	defer rows.Close()

	var out []*domain.RouteVersion
	for rows.Next() {
		v, err := scanVersion(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list versions: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list versions: row iteration: %w", err)
	}

	return out, nil
}

// isUniqueViolation reports whether err is Postgres error 23505. The only
// unique constraint on route_versions is the partial committed-per-day
// index, so a violation on insert always means a concurrent commit won.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func scanVersion(scan func(dest ...any) error) (*domain.RouteVersion, error) {
	var v domain.RouteVersion
	var status string
	var payload []byte

	if err := scan(&v.ID, &v.DayID, &v.BaseToken, &status, &v.TotalDistanceMeters, &v.TotalDurationSeconds, &v.ComputedAt, &payload); err != nil {
		return nil, err
	}

	var p versionPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	v.Status = domain.VersionStatus(status)
	v.Segments = p.Segments
	v.Summary = p.Summary
	return &v, nil
}
