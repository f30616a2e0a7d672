package geometry

import (
	"math"
	"sort"

	"github.com/lectern-app/lectern/models"
)

// MergeOptions controls how aggressively same-line rectangles are merged.
// The tolerances are tunable heuristics, not derived values: merging trades
// precision for fewer rendered elements and may bridge small true gaps.
type MergeOptions struct {
	// YTolerance is the maximum difference between two rects' top edges for
	// them to count as the same visual line.
	YTolerance float64
	// XGapTolerance is the maximum horizontal gap between a rect and the end
	// of the current accumulator that still merges.
	XGapTolerance float64
}

// DefaultMergeOptions returns the tolerances used for highlight rendering.
func DefaultMergeOptions() MergeOptions {
	return MergeOptions{YTolerance: 0.01, XGapTolerance: 0.015}
}

// MergeRects consolidates adjacent or overlapping rectangles on the same
// visual line into fewer, larger rectangles. Input order does not matter;
// output is in line order (sorted by y, then x). The result never has more
// rects than the input and never covers less area, and merging an already
// merged set is a no-op. Empty input yields an empty slice.
func MergeRects(rects []models.NormalizedRect, opts MergeOptions) []models.NormalizedRect {
	if len(rects) == 0 {
		return []models.NormalizedRect{}
	}

	sorted := make([]models.NormalizedRect, len(rects))
	copy(sorted, rects)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	merged := make([]models.NormalizedRect, 0, len(sorted))
	current := sorted[0]

	for _, r := range sorted[1:] {
		sameLine := math.Abs(r.Y-current.Y) < opts.YTolerance
		adjacent := r.X <= current.X+current.Width+opts.XGapTolerance

		if sameLine && adjacent {
			// Extend the accumulator to cover both rects. The left edge can
			// move when two rects share a line but differ slightly in y,
			// and the bottom edge tracks the lower of the two rects.
			left := math.Min(current.X, r.X)
			right := math.Max(current.X+current.Width, r.X+r.Width)
			bottom := math.Max(current.Y+current.Height, r.Y+r.Height)
			current.X = left
			current.Width = right - left
			current.Height = bottom - current.Y
			continue
		}

		merged = append(merged, current)
		current = r
	}

	return append(merged, current)
}
