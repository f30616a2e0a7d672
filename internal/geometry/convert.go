// Package geometry implements the coordinate conversions between browser
// pixel space, character offsets in extracted text, and the normalized 0..1
// rectangles persisted for highlights and translations. All functions are
// pure and safe for concurrent use.
package geometry

import (
	"github.com/golang/geo/r2"

	"github.com/lectern-app/lectern/models"
)

// PixelToNormalized converts absolute pixel rects from a rendered page into
// normalized rects. Each rect is clipped to the page box first; rects with
// zero or negative area after clipping are dropped. Unknown or non-positive
// page dimensions yield an empty slice, which callers must treat as "rects
// unavailable" rather than an error.
func PixelToNormalized(rects []models.PixelRect, pageWidth, pageHeight float64) []models.NormalizedRect {
	if pageWidth <= 0 || pageHeight <= 0 {
		return []models.NormalizedRect{}
	}

	page := r2.RectFromPoints(r2.Point{X: 0, Y: 0}, r2.Point{X: pageWidth, Y: pageHeight})
	out := make([]models.NormalizedRect, 0, len(rects))

	for _, pr := range rects {
		clip := page.Intersection(r2.RectFromPoints(
			r2.Point{X: pr.X1, Y: pr.Y1},
			r2.Point{X: pr.X2, Y: pr.Y2},
		))
		if clip.X.Length() <= 0 || clip.Y.Length() <= 0 {
			continue
		}
		out = append(out, models.NormalizedRect{
			X:      clip.X.Lo / pageWidth,
			Y:      clip.Y.Lo / pageHeight,
			Width:  clip.X.Length() / pageWidth,
			Height: clip.Y.Length() / pageHeight,
		})
	}

	return out
}

// NormalizedToPixel converts normalized rects back to pixel space for a page
// rendered at the given size. It also returns the min/max bounding envelope
// over all converted rects, used for positioning popovers and toggle badges.
// The envelope is the zero value when rects is empty.
func NormalizedToPixel(rects []models.NormalizedRect, pageWidth, pageHeight float64) ([]models.PixelRect, models.PixelRect) {
	out := make([]models.PixelRect, 0, len(rects))
	var bound models.PixelRect

	for i, nr := range rects {
		pr := models.PixelRect{
			X1:     nr.X * pageWidth,
			Y1:     nr.Y * pageHeight,
			X2:     (nr.X + nr.Width) * pageWidth,
			Y2:     (nr.Y + nr.Height) * pageHeight,
			Width:  nr.Width * pageWidth,
			Height: nr.Height * pageHeight,
		}
		if i == 0 {
			bound = pr
		} else {
			if pr.X1 < bound.X1 {
				bound.X1 = pr.X1
			}
			if pr.Y1 < bound.Y1 {
				bound.Y1 = pr.Y1
			}
			if pr.X2 > bound.X2 {
				bound.X2 = pr.X2
			}
			if pr.Y2 > bound.Y2 {
				bound.Y2 = pr.Y2
			}
		}
		out = append(out, pr)
	}

	bound.Width = bound.X2 - bound.X1
	bound.Height = bound.Y2 - bound.Y1
	return out, bound
}

// OffsetsToRects maps a character-offset span [start, end) onto the page's
// positioned text items and returns one normalized rect per intersecting
// item, clipped proportionally when the span covers only a prefix or suffix
// of an item's text run. Text items are the finest addressable unit; there is
// no sub-character clipping beyond the proportional estimate. The result is
// passed through MergeRects. An empty slice means the span cannot be
// rendered on this page.
func OffsetsToRects(start, end int, items []models.TextItem) []models.NormalizedRect {
	if start >= end || len(items) == 0 {
		return []models.NormalizedRect{}
	}

	rects := make([]models.NormalizedRect, 0, len(items))
	for _, item := range items {
		runLen := item.EndOffset - item.StartOffset
		if runLen <= 0 {
			continue
		}
		s := max(start, item.StartOffset)
		e := min(end, item.EndOffset)
		if s >= e {
			continue
		}
		fracStart := float64(s-item.StartOffset) / float64(runLen)
		fracEnd := float64(e-item.StartOffset) / float64(runLen)
		rects = append(rects, models.NormalizedRect{
			X:      item.X + item.Width*fracStart,
			Y:      item.Y,
			Width:  item.Width * (fracEnd - fracStart),
			Height: item.Height,
		})
	}

	return MergeRects(rects, DefaultMergeOptions())
}
