package services

import (
	"context"
	"fmt"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
	"github.com/AdarBahar/MyTrip-sub001/internal/ports"
)

// MatrixBuilder produces the pairwise cost matrix the optimizer consumes.
// The whole point set goes out in a single bulk provider call; both backends
// support full NxN tables.
type MatrixBuilder struct {
	normalizer *Normalizer
	// Fraction of off-diagonal pairs allowed to be unreachable before the
	// matrix is considered degenerate.
	maxUnreachableFraction float64
}

func NewMatrixBuilder(normalizer *Normalizer, maxUnreachableFraction float64) *MatrixBuilder {
	if maxUnreachableFraction <= 0 {
		maxUnreachableFraction = 0.25
	}
	return &MatrixBuilder{
		normalizer:             normalizer,
		maxUnreachableFraction: maxUnreachableFraction,
	}
}

// Build re-validates every point, fetches the matrix in one call, and gates
// on the unreachable-pair fraction.
func (b *MatrixBuilder) Build(
	ctx context.Context,
	provider ports.RouteProvider,
	points []domain.Point,
	profile domain.Profile,
) ([][]ports.MatrixEntry, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("build matrix: need at least two points, got %d", len(points))
	}

	normalized, err := b.normalizer.NormalizeAll(points)
	if err != nil {
		return nil, fmt.Errorf("build matrix: %w", err)
	}

	matrix, err := provider.ComputeMatrix(ctx, normalized, profile)
	if err != nil {
		return nil, fmt.Errorf("build matrix: %w", err)
	}

	n := len(normalized)
	if len(matrix) != n {
		return nil, fmt.Errorf("build matrix: provider returned %d rows for %d points", len(matrix), n)
	}

	unreachable := 0
	for i := range matrix {
		if len(matrix[i]) != n {
			return nil, fmt.Errorf("build matrix: row %d has %d entries for %d points", i, len(matrix[i]), n)
		}
		for j := range matrix[i] {
			if i != j && !matrix[i][j].Reachable {
				unreachable++
			}
		}
	}

	pairs := n * (n - 1)
	if pairs > 0 && float64(unreachable)/float64(pairs) > b.maxUnreachableFraction {
		return nil, &domain.OptimizationInfeasibleError{
			Reason: fmt.Sprintf("%d of %d point pairs are unreachable", unreachable, pairs),
			Hint:   "check stop coordinates or remove unreachable stops",
		}
	}

	return matrix, nil
}
