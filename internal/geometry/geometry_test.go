package geometry

import (
	"math"
	"testing"

	"github.com/lectern-app/lectern/models"
)

const floatTol = 1e-9

func rectsEqual(a, b []models.NormalizedRect) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i].X-b[i].X) > floatTol ||
			math.Abs(a[i].Y-b[i].Y) > floatTol ||
			math.Abs(a[i].Width-b[i].Width) > floatTol ||
			math.Abs(a[i].Height-b[i].Height) > floatTol {
			return false
		}
	}
	return true
}

func TestMergeRects(t *testing.T) {
	tests := []struct {
		name  string
		rects []models.NormalizedRect
		want  []models.NormalizedRect
	}{
		{
			name:  "empty input",
			rects: []models.NormalizedRect{},
			want:  []models.NormalizedRect{},
		},
		{
			name: "single rect unchanged",
			rects: []models.NormalizedRect{
				{X: 0.1, Y: 0.2, Width: 0.3, Height: 0.02},
			},
			want: []models.NormalizedRect{
				{X: 0.1, Y: 0.2, Width: 0.3, Height: 0.02},
			},
		},
		{
			name: "adjacent rects on same line merge",
			rects: []models.NormalizedRect{
				{X: 0.1, Y: 0.2, Width: 0.2, Height: 0.02},
				{X: 0.305, Y: 0.2, Width: 0.2, Height: 0.02},
			},
			want: []models.NormalizedRect{
				{X: 0.1, Y: 0.2, Width: 0.405, Height: 0.02},
			},
		},
		{
			name: "overlapping rects merge",
			rects: []models.NormalizedRect{
				{X: 0.1, Y: 0.2, Width: 0.2, Height: 0.02},
				{X: 0.25, Y: 0.2, Width: 0.2, Height: 0.03},
			},
			want: []models.NormalizedRect{
				{X: 0.1, Y: 0.2, Width: 0.35, Height: 0.03},
			},
		},
		{
			name: "different lines stay separate",
			rects: []models.NormalizedRect{
				{X: 0.1, Y: 0.2, Width: 0.2, Height: 0.02},
				{X: 0.1, Y: 0.25, Width: 0.2, Height: 0.02},
			},
			want: []models.NormalizedRect{
				{X: 0.1, Y: 0.2, Width: 0.2, Height: 0.02},
				{X: 0.1, Y: 0.25, Width: 0.2, Height: 0.02},
			},
		},
		{
			name: "wide gap on same line stays separate",
			rects: []models.NormalizedRect{
				{X: 0.1, Y: 0.2, Width: 0.1, Height: 0.02},
				{X: 0.5, Y: 0.2, Width: 0.1, Height: 0.02},
			},
			want: []models.NormalizedRect{
				{X: 0.1, Y: 0.2, Width: 0.1, Height: 0.02},
				{X: 0.5, Y: 0.2, Width: 0.1, Height: 0.02},
			},
		},
		{
			name: "unsorted input is sorted before merging",
			rects: []models.NormalizedRect{
				{X: 0.4, Y: 0.5, Width: 0.1, Height: 0.02},
				{X: 0.1, Y: 0.2, Width: 0.2, Height: 0.02},
				{X: 0.3, Y: 0.2, Width: 0.1, Height: 0.02},
			},
			want: []models.NormalizedRect{
				{X: 0.1, Y: 0.2, Width: 0.3, Height: 0.02},
				{X: 0.4, Y: 0.5, Width: 0.1, Height: 0.02},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeRects(tt.rects, DefaultMergeOptions())
			if !rectsEqual(got, tt.want) {
				t.Errorf("MergeRects() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeRects_Idempotent(t *testing.T) {
	inputs := [][]models.NormalizedRect{
		{},
		{{X: 0.1, Y: 0.2, Width: 0.2, Height: 0.02}},
		{
			{X: 0.1, Y: 0.2, Width: 0.2, Height: 0.02},
			{X: 0.31, Y: 0.2, Width: 0.2, Height: 0.02},
			{X: 0.1, Y: 0.25, Width: 0.5, Height: 0.02},
			{X: 0.62, Y: 0.251, Width: 0.1, Height: 0.025},
			{X: 0.9, Y: 0.9, Width: 0.05, Height: 0.02},
		},
	}

	for _, rects := range inputs {
		once := MergeRects(rects, DefaultMergeOptions())
		twice := MergeRects(once, DefaultMergeOptions())
		if !rectsEqual(once, twice) {
			t.Errorf("MergeRects not idempotent: first %v, second %v", once, twice)
		}
	}
}

func TestMergeRects_NeverIncreasesCount(t *testing.T) {
	rects := []models.NormalizedRect{
		{X: 0.1, Y: 0.2, Width: 0.1, Height: 0.02},
		{X: 0.21, Y: 0.2, Width: 0.1, Height: 0.02},
		{X: 0.5, Y: 0.2, Width: 0.1, Height: 0.02},
		{X: 0.1, Y: 0.4, Width: 0.1, Height: 0.02},
	}
	got := MergeRects(rects, DefaultMergeOptions())
	if len(got) > len(rects) {
		t.Errorf("merge increased count: %d > %d", len(got), len(rects))
	}
	// Every input rect must be covered by some output rect.
	for _, in := range rects {
		covered := false
		for _, out := range got {
			if in.X >= out.X-floatTol && in.X+in.Width <= out.X+out.Width+floatTol &&
				math.Abs(in.Y-out.Y) < 0.01+floatTol {
				covered = true
				break
			}
		}
		if !covered {
			t.Errorf("input rect %v not covered by merged output %v", in, got)
		}
	}
}

// unionArea estimates the area covered by a rect set by sampling a fixed
// grid. The same grid is used for input and output, so coverage comparisons
// are exact with respect to the sample points.
func unionArea(rects []models.NormalizedRect) float64 {
	const n = 400
	covered := 0
	for i := 0; i < n; i++ {
		x := (float64(i) + 0.5) / n
		for j := 0; j < n; j++ {
			y := (float64(j) + 0.5) / n
			for _, r := range rects {
				if x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height {
					covered++
					break
				}
			}
		}
	}
	return float64(covered) / (n * n)
}

func TestMergeRects_NeverShrinksCoverage(t *testing.T) {
	inputs := [][]models.NormalizedRect{
		{
			// Adjacent runs on one line plus a separate line.
			{X: 0.1, Y: 0.2, Width: 0.1, Height: 0.02},
			{X: 0.21, Y: 0.2, Width: 0.1, Height: 0.02},
			{X: 0.1, Y: 0.4, Width: 0.3, Height: 0.02},
		},
		{
			// Overlapping runs with differing heights.
			{X: 0.1, Y: 0.2, Width: 0.2, Height: 0.02},
			{X: 0.25, Y: 0.2, Width: 0.2, Height: 0.03},
			{X: 0.44, Y: 0.205, Width: 0.1, Height: 0.02},
		},
		{
			// A gap too wide to merge: both sides must stay covered.
			{X: 0.1, Y: 0.2, Width: 0.1, Height: 0.02},
			{X: 0.6, Y: 0.2, Width: 0.1, Height: 0.02},
		},
	}

	for _, rects := range inputs {
		merged := MergeRects(rects, DefaultMergeOptions())
		before := unionArea(rects)
		after := unionArea(merged)
		if after < before {
			t.Errorf("merge shrank coverage: union area %v -> %v for input %v", before, after, rects)
		}
	}
}

func TestPixelToNormalized(t *testing.T) {
	tests := []struct {
		name       string
		rects      []models.PixelRect
		pageW      float64
		pageH      float64
		want       []models.NormalizedRect
	}{
		{
			name: "basic conversion",
			rects: []models.PixelRect{
				{X1: 100, Y1: 200, X2: 300, Y2: 220, Width: 200, Height: 20},
			},
			pageW: 1000,
			pageH: 2000,
			want: []models.NormalizedRect{
				{X: 0.1, Y: 0.1, Width: 0.2, Height: 0.01},
			},
		},
		{
			name: "rect outside page is dropped",
			rects: []models.PixelRect{
				{X1: 1200, Y1: 200, X2: 1300, Y2: 220},
			},
			pageW: 1000,
			pageH: 2000,
			want:  []models.NormalizedRect{},
		},
		{
			name: "rect straddling the edge is clipped",
			rects: []models.PixelRect{
				{X1: 900, Y1: 0, X2: 1100, Y2: 200},
			},
			pageW: 1000,
			pageH: 2000,
			want: []models.NormalizedRect{
				{X: 0.9, Y: 0, Width: 0.1, Height: 0.1},
			},
		},
		{
			name: "unknown page dimensions yield empty",
			rects: []models.PixelRect{
				{X1: 100, Y1: 200, X2: 300, Y2: 220},
			},
			pageW: 0,
			pageH: 0,
			want:  []models.NormalizedRect{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PixelToNormalized(tt.rects, tt.pageW, tt.pageH)
			if !rectsEqual(got, tt.want) {
				t.Errorf("PixelToNormalized() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPixelNormalizedRoundTrip(t *testing.T) {
	pageW, pageH := 850.0, 1100.0
	in := []models.PixelRect{
		{X1: 72, Y1: 90, X2: 512.5, Y2: 104, Width: 440.5, Height: 14},
		{X1: 72, Y1: 110, X2: 300, Y2: 124, Width: 228, Height: 14},
	}

	normalized := PixelToNormalized(in, pageW, pageH)
	back, _ := NormalizedToPixel(normalized, pageW, pageH)

	if len(back) != len(in) {
		t.Fatalf("round trip changed rect count: got %d, want %d", len(back), len(in))
	}
	for i := range in {
		if math.Abs(back[i].X1-in[i].X1) > 1e-6 ||
			math.Abs(back[i].Y1-in[i].Y1) > 1e-6 ||
			math.Abs(back[i].X2-in[i].X2) > 1e-6 ||
			math.Abs(back[i].Y2-in[i].Y2) > 1e-6 {
			t.Errorf("round trip rect %d: got %+v, want %+v", i, back[i], in[i])
		}
	}
}

func TestNormalizedToPixel_Bounds(t *testing.T) {
	rects := []models.NormalizedRect{
		{X: 0.1, Y: 0.1, Width: 0.2, Height: 0.02},
		{X: 0.5, Y: 0.3, Width: 0.3, Height: 0.02},
	}
	_, bound := NormalizedToPixel(rects, 1000, 1000)

	if bound.X1 != 100 || bound.Y1 != 100 || bound.X2 != 800 || bound.Y2 != 320 {
		t.Errorf("bounding envelope = %+v, want X1=100 Y1=100 X2=800 Y2=320", bound)
	}
}

func TestOffsetsToRects(t *testing.T) {
	// Two lines of text: "Hello world" on line one, "again" on line two.
	items := []models.TextItem{
		{Str: "Hello ", X: 0.1, Y: 0.2, Width: 0.12, Height: 0.02, StartOffset: 0, EndOffset: 6},
		{Str: "world", X: 0.22, Y: 0.2, Width: 0.1, Height: 0.02, StartOffset: 6, EndOffset: 11},
		{Str: "again", X: 0.1, Y: 0.23, Width: 0.1, Height: 0.02, StartOffset: 12, EndOffset: 17},
	}

	tests := []struct {
		name      string
		start     int
		end       int
		wantCount int
	}{
		{name: "full first line merges to one rect", start: 0, end: 11, wantCount: 1},
		{name: "span across lines yields one rect per line", start: 6, end: 17, wantCount: 2},
		{name: "no intersection yields empty", start: 30, end: 40, wantCount: 0},
		{name: "inverted span yields empty", start: 5, end: 2, wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OffsetsToRects(tt.start, tt.end, items)
			if len(got) != tt.wantCount {
				t.Errorf("OffsetsToRects(%d, %d) returned %d rects, want %d: %v",
					tt.start, tt.end, len(got), tt.wantCount, got)
			}
		})
	}
}

func TestOffsetsToRects_PartialItemClip(t *testing.T) {
	items := []models.TextItem{
		{Str: "0123456789", X: 0.1, Y: 0.2, Width: 0.2, Height: 0.02, StartOffset: 0, EndOffset: 10},
	}

	// Select the second half of the run: x should start halfway through.
	got := OffsetsToRects(5, 10, items)
	if len(got) != 1 {
		t.Fatalf("expected 1 rect, got %d", len(got))
	}
	if math.Abs(got[0].X-0.2) > floatTol || math.Abs(got[0].Width-0.1) > floatTol {
		t.Errorf("partial clip: got X=%v Width=%v, want X=0.2 Width=0.1", got[0].X, got[0].Width)
	}
}

func TestOffsetsToRects_NoItems(t *testing.T) {
	if got := OffsetsToRects(0, 10, nil); len(got) != 0 {
		t.Errorf("expected empty result for nil items, got %v", got)
	}
}
