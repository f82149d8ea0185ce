package services

import (
	"fmt"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
	"github.com/AdarBahar/MyTrip-sub001/internal/ports"
)

// Maximum stop count the optimizer accepts. Past this bound the pairwise
// swap search gets expensive and the result quality is unverified, so the
// request is rejected instead.
const MaxOptimizableStops = 25

// Cost stand-in for unreachable legs: high enough to dominate any real
// route, low enough to never overflow when summed.
const unreachableCost = int64(1) << 40

const maxSwapIterations = 500

// Optimize reorders free sequence positions to minimize total travel
// duration.
//
// Position 0 and the last position are always fixed; any position flagged in
// fixed keeps its slot; only the remaining free slots are permuted among
// themselves. The result is a permutation: order[pos] is the original
// sequence index travelling at pos.
//
// The algorithm seeds free slots by nearest-neighbor insertion, then runs a
// local search swapping pairs of free slots, accepting only strictly
// improving swaps. Equal-cost swaps are rejected and candidate scans run
// lowest-index-first, so identical inputs always produce identical output.
// The final cost never exceeds the nearest-neighbor seed cost.
func Optimize(fixed []bool, matrix [][]ports.MatrixEntry) ([]int, int, error) {
	n := len(fixed)
	if n < 2 {
		return nil, 0, fmt.Errorf("optimize: sequence must have at least 2 positions, got %d", n)
	}
	if len(matrix) != n {
		return nil, 0, fmt.Errorf("optimize: matrix has %d rows for %d positions", len(matrix), n)
	}
	if n-2 > MaxOptimizableStops {
		return nil, 0, &domain.OptimizationInfeasibleError{
			Reason: fmt.Sprintf("%d stops exceed the supported maximum of %d", n-2, MaxOptimizableStops),
			Hint:   "reduce the number of stops",
		}
	}

	order := make([]int, n)
	var freeSlots []int
	for i := 0; i < n; i++ {
		if i == 0 || i == n-1 || fixed[i] {
			order[i] = i
			continue
		}
		order[i] = -1
		freeSlots = append(freeSlots, i)
	}

	seedFreeSlots(order, freeSlots, matrix)
	improveBySwaps(order, freeSlots, matrix)

	total := totalCost(order, matrix)
	if total >= unreachableCost {
		return nil, 0, &domain.OptimizationInfeasibleError{
			Reason: "no ordering of the free stops connects all legs",
			Hint:   "remove unreachable stops",
		}
	}

	// Post-condition: anchors and fixed stops must be exactly where they
	// started.
	for i := 0; i < n; i++ {
		if (i == 0 || i == n-1 || fixed[i]) && order[i] != i {
			return nil, 0, fmt.Errorf("optimize: fixed position %d moved to hold %d", i, order[i])
		}
	}

	return order, int(total), nil
}

// seedFreeSlots fills free slots in position order, greedily picking the
// cheapest remaining stop from the previous position's occupant. Ties go to
// the lowest original index, preserving input order.
func seedFreeSlots(order []int, freeSlots []int, matrix [][]ports.MatrixEntry) {
	remaining := append([]int(nil), freeSlots...)

	for _, slot := range freeSlots {
		prev := order[slot-1]

		best := -1
		bestCost := int64(-1)
		for _, item := range remaining {
			if item < 0 {
				continue
			}
			c := legCost(matrix, prev, item)
			if best == -1 || c < bestCost {
				best = item
				bestCost = c
			}
		}

		order[slot] = best
		for i, item := range remaining {
			if item == best {
				remaining[i] = -1
				break
			}
		}
	}
}

// improveBySwaps runs the local search: each round applies the single most
// improving swap of two free slots, stopping when no swap strictly reduces
// total cost or the iteration cap is hit.
func improveBySwaps(order []int, freeSlots []int, matrix [][]ports.MatrixEntry) {
	for iter := 0; iter < maxSwapIterations; iter++ {
		base := totalCost(order, matrix)

		bestDelta := int64(0)
		bestA, bestB := -1, -1
		for ai := 0; ai < len(freeSlots); ai++ {
			for bi := ai + 1; bi < len(freeSlots); bi++ {
				a, b := freeSlots[ai], freeSlots[bi]

				order[a], order[b] = order[b], order[a]
				delta := totalCost(order, matrix) - base
				order[a], order[b] = order[b], order[a]

				// Strict improvement only; the first-found best wins, which
				// is the lowest-index pair among equals.
				if delta < bestDelta {
					bestDelta = delta
					bestA, bestB = a, b
				}
			}
		}

		if bestA < 0 {
			return
		}
		order[bestA], order[bestB] = order[bestB], order[bestA]
	}
}

func totalCost(order []int, matrix [][]ports.MatrixEntry) int64 {
	var total int64
	for i := 0; i+1 < len(order); i++ {
		total += legCost(matrix, order[i], order[i+1])
	}
	return total
}

func legCost(matrix [][]ports.MatrixEntry, from, to int) int64 {
	entry := matrix[from][to]
	if !entry.Reachable {
		return unreachableCost
	}
	return int64(entry.DurationSeconds)
}
