package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
	"github.com/AdarBahar/MyTrip-sub001/internal/ports"
)

// SegmentComputer turns a final ordered sequence into concrete travel
// segments with geometry and instructions, and aggregates totals.
type SegmentComputer struct {
	// Legs allowed to fail (after retries and failover) before the whole
	// computation is rejected as materially incomplete.
	maxUnavailableLegs int
	// Concurrent in-flight leg calls. Leg I/O dominates request latency.
	concurrency int
}

func NewSegmentComputer() *SegmentComputer {
	return &SegmentComputer{maxUnavailableLegs: 1, concurrency: 4}
}

// Compute fetches one single-leg route per consecutive pair and assembles
// segments with monotonically increasing indices. Totals are exact sums over
// available segments.
//
// Degraded mode: a leg whose call fails transiently is marked unavailable
// and noted in the summary warnings; more than maxUnavailableLegs such legs
// fail the operation instead. Rate limiting and validation failures always
// propagate.
func (c *SegmentComputer) Compute(
	ctx context.Context,
	provider ports.RouteProvider,
	sequence []domain.Point,
	profile domain.Profile,
	opts domain.RouteOptions,
) ([]domain.Segment, domain.RouteSummary, int, int, error) {
	if len(sequence) < 2 {
		return nil, domain.RouteSummary{}, 0, 0, fmt.Errorf("compute segments: sequence must have at least 2 points, got %d", len(sequence))
	}

	legs := len(sequence) - 1
	segments := make([]domain.Segment, legs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i := 0; i < legs; i++ {
		g.Go(func() error {
			from, to := sequence[i], sequence[i+1]

			seg := domain.Segment{
				From:  from,
				To:    to,
				Type:  domain.ClassifySegment(i, legs),
				Index: i,
			}

			result, err := provider.ComputeRoute(gctx, []domain.Point{from, to}, profile, opts)
			if err != nil {
				var unavailable *domain.ProviderUnavailableError
				if errors.As(err, &unavailable) {
					seg.Unavailable = true
					segments[i] = seg
					return nil
				}
				return fmt.Errorf("leg %d: %w", i, err)
			}

			seg.DistanceMeters = result.DistanceMeters
			seg.DurationSeconds = result.DurationSeconds
			seg.Geometry = result.Geometry
			seg.Instructions = result.Instructions
			segments[i] = seg
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, domain.RouteSummary{}, 0, 0, err
	}

	summary, totalDistance, totalDuration, err := c.summarize(provider, segments)
	if err != nil {
		return nil, domain.RouteSummary{}, 0, 0, err
	}

	return segments, summary, totalDistance, totalDuration, nil
}

func (c *SegmentComputer) summarize(
	provider ports.RouteProvider,
	segments []domain.Segment,
) (domain.RouteSummary, int, int, error) {
	summary := domain.RouteSummary{
		TotalSegments:   len(segments),
		ByType:          make(map[domain.SegmentType]domain.TypeBreakdown),
		LongestSegment:  -1,
		ShortestSegment: -1,
	}

	var totalDistance, totalDuration, unavailable int
	for _, seg := range segments {
		breakdown := summary.ByType[seg.Type]
		breakdown.Count++

		if seg.Unavailable {
			unavailable++
			summary.Warnings = append(summary.Warnings,
				fmt.Sprintf("segment %d (%s) unavailable: routing failed after retries", seg.Index, seg.Type))
			summary.ByType[seg.Type] = breakdown
			continue
		}

		breakdown.DistanceMeters += seg.DistanceMeters
		breakdown.DurationSeconds += seg.DurationSeconds
		summary.ByType[seg.Type] = breakdown

		totalDistance += seg.DistanceMeters
		totalDuration += seg.DurationSeconds

		if summary.LongestSegment < 0 || seg.DistanceMeters > segments[summary.LongestSegment].DistanceMeters {
			summary.LongestSegment = seg.Index
		}
		if summary.ShortestSegment < 0 || seg.DistanceMeters < segments[summary.ShortestSegment].DistanceMeters {
			summary.ShortestSegment = seg.Index
		}
	}

	if unavailable > c.maxUnavailableLegs {
		return domain.RouteSummary{}, 0, 0, &domain.ProviderUnavailableError{
			Provider: provider.Name(),
			Err:      fmt.Errorf("%d of %d legs unavailable", unavailable, len(segments)),
		}
	}

	return summary, totalDistance, totalDuration, nil
}
