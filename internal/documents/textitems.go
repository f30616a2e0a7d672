package documents

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/lectern-app/lectern/models"
)

// Letter-size fallback when a page carries no resolvable MediaBox.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// runGapFactor of the font size is the horizontal gap that ends a text run;
// smaller gaps within a run become a single space when the PDF encodes none.
const (
	runGapFactor   = 1.0
	spaceGapFactor = 0.25
)

// ExtractedText is the position-aware text of one ingested PDF: per-page
// text, the TextItems that map character offsets to normalized positions,
// and the page dimensions needed for pixel conversions.
type ExtractedText struct {
	Pages      []models.PageText
	TextItems  map[int][]models.TextItem
	Dimensions map[int]models.PageDimensions
}

// ExtractText walks every page of a PDF and builds the offset-to-position
// mapping the geometry layer resolves citations against. Page text and item
// offsets are consistent by construction: each item's [StartOffset,
// EndOffset) slice of the page text equals its Str. Pages whose content
// cannot be decoded yield empty text rather than failing the whole paper.
func ExtractText(data []byte) (*ExtractedText, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF for text extraction: %w", err)
	}

	out := &ExtractedText{
		TextItems:  make(map[int][]models.TextItem),
		Dimensions: make(map[int]models.PageDimensions),
	}

	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			out.Pages = append(out.Pages, models.PageText{PageNumber: pageNum})
			continue
		}

		width, height := pageSize(page)
		out.Dimensions[pageNum] = models.PageDimensions{Width: width, Height: height}

		rows, err := page.GetTextByRow()
		if err != nil {
			out.Pages = append(out.Pages, models.PageText{PageNumber: pageNum})
			continue
		}

		text, items := buildItems(rows, width, height)
		out.Pages = append(out.Pages, models.PageText{PageNumber: pageNum, TextContent: text})
		out.TextItems[pageNum] = items
	}

	return out, nil
}

// pageSize reads the page MediaBox, falling back to US Letter when the box
// is inherited or malformed.
func pageSize(page pdf.Page) (float64, float64) {
	box := page.V.Key("MediaBox")
	if box.Kind() != pdf.Array || box.Len() != 4 {
		return defaultPageWidth, defaultPageHeight
	}
	w := box.Index(2).Float64() - box.Index(0).Float64()
	h := box.Index(3).Float64() - box.Index(1).Float64()
	if w <= 0 || h <= 0 {
		return defaultPageWidth, defaultPageHeight
	}
	return w, h
}

// buildItems concatenates row text into the page text while recording one
// TextItem per run. Runs within a row are separated by a single space in the
// page text, rows by a newline, so item offsets index directly into the
// returned string.
func buildItems(rows pdf.Rows, pageWidth, pageHeight float64) (string, []models.TextItem) {
	var sb strings.Builder
	var items []models.TextItem

	for rowIdx, row := range rows {
		if rowIdx > 0 {
			sb.WriteString("\n")
		}

		texts := make([]pdf.Text, len(row.Content))
		copy(texts, row.Content)
		sort.SliceStable(texts, func(i, j int) bool { return texts[i].X < texts[j].X })

		var run strings.Builder
		var runY, runFontSize, runMinX, runEndX float64
		active := false

		flush := func() {
			if !active || run.Len() == 0 {
				run.Reset()
				active = false
				return
			}
			str := run.String()
			start := sb.Len()
			sb.WriteString(str)
			items = append(items, models.TextItem{
				Str:         str,
				X:           clamp01(runMinX / pageWidth),
				Y:           clamp01(1 - (runY+runFontSize)/pageHeight),
				Width:       clamp01((runEndX - runMinX) / pageWidth),
				Height:      clamp01(runFontSize * 1.2 / pageHeight),
				StartOffset: start,
				EndOffset:   start + len(str),
			})
			run.Reset()
			active = false
		}

		for _, t := range texts {
			if t.S == "" {
				continue
			}
			if active {
				gap := t.X - runEndX
				if gap > t.FontSize*runGapFactor {
					flush()
					sb.WriteString(" ")
				} else if gap > t.FontSize*spaceGapFactor && !strings.HasSuffix(run.String(), " ") {
					run.WriteString(" ")
				}
			}
			if !active {
				active = true
				runMinX = t.X
				runY = t.Y
				runFontSize = t.FontSize
				runEndX = t.X
			}
			if t.FontSize > runFontSize {
				runFontSize = t.FontSize
			}
			run.WriteString(t.S)
			if t.X+t.W > runEndX {
				runEndX = t.X + t.W
			}
		}
		flush()
	}

	return sb.String(), items
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
