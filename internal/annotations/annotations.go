// Package annotations is the glue between selections/citations and persisted
// highlight or translation records. It only maps fields and delegates all
// geometry to the geometry package; no rectangle math lives here.
package annotations

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lectern-app/lectern/internal/geometry"
	"github.com/lectern-app/lectern/models"
)

// DefaultColor is used when a highlight is created without an explicit color.
const DefaultColor = "#ffeb3b"

var (
	ErrNoPaper   = errors.New("selection has no paper id")
	ErrEmptySpan = errors.New("selection span is empty")
	ErrBadFormat = errors.New("selection format must be pdf or html")
)

// HighlightFromSelection builds a draft highlight record from a browser
// selection. Rects are computed from the selection's pixel rects; an empty
// rects slice is legal (the record exists but does not render until rects
// are recomputed).
func HighlightFromSelection(sel models.Selection, color, note string) (models.Highlight, error) {
	if err := checkSelection(sel); err != nil {
		return models.Highlight{}, err
	}
	if color == "" {
		color = DefaultColor
	}

	now := time.Now().UTC()
	return models.Highlight{
		ID:           uuid.NewString(),
		PaperID:      sel.PaperID,
		Format:       sel.Format,
		PageNumber:   sel.PageNumber,
		SectionID:    sel.SectionID,
		StartOffset:  sel.StartOffset,
		EndOffset:    sel.EndOffset,
		SelectedText: sel.SelectedText,
		Rects:        selectionRects(sel),
		Color:        color,
		Note:         note,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// TranslationFromSelection builds a draft inline-translation record covering
// the selected region. New translations start active (showing the translated
// text in place).
func TranslationFromSelection(sel models.Selection, translatedText, targetLang, sourceLang string) (models.InlineTranslation, error) {
	if err := checkSelection(sel); err != nil {
		return models.InlineTranslation{}, err
	}

	now := time.Now().UTC()
	return models.InlineTranslation{
		ID:             uuid.NewString(),
		PaperID:        sel.PaperID,
		Format:         sel.Format,
		PageNumber:     sel.PageNumber,
		SectionID:      sel.SectionID,
		StartOffset:    sel.StartOffset,
		EndOffset:      sel.EndOffset,
		SelectedText:   sel.SelectedText,
		TranslatedText: translatedText,
		TargetLanguage: targetLang,
		SourceLanguage: sourceLang,
		IsActive:       true,
		Rects:          selectionRects(sel),
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// HighlightFromCitation saves a verified citation as a highlight, computing
// rects from the paper's positioned text items. Only PDF citations have text
// items to resolve against; HTML citations are saved with empty rects and
// re-rendered from section offsets client-side.
func HighlightFromCitation(paperID string, c models.Citation, paper *models.Paper, color string) (models.Highlight, error) {
	if color == "" {
		color = DefaultColor
	}
	now := time.Now().UTC()

	switch cit := c.(type) {
	case models.PdfCitation:
		return models.Highlight{
			ID:           uuid.NewString(),
			PaperID:      paperID,
			Format:       models.FormatPDF,
			PageNumber:   cit.Page,
			StartOffset:  cit.Start,
			EndOffset:    cit.End,
			SelectedText: cit.Quote,
			Rects:        RectsForCitation(c, paper.TextItems),
			Color:        color,
			CreatedAt:    now,
			UpdatedAt:    now,
		}, nil
	case models.HtmlCitation:
		return models.Highlight{
			ID:           uuid.NewString(),
			PaperID:      paperID,
			Format:       models.FormatHTML,
			SectionID:    cit.SectionID,
			StartOffset:  cit.Start,
			EndOffset:    cit.End,
			SelectedText: cit.Quote,
			Rects:        []models.NormalizedRect{},
			Color:        color,
			CreatedAt:    now,
			UpdatedAt:    now,
		}, nil
	default:
		return models.Highlight{}, errors.New("unknown citation type")
	}
}

// RectsForCitation maps a PDF citation onto the paper's text items. A page
// missing from the map yields an empty slice, the normal "cannot render"
// signal. HTML citations resolve to an empty slice here: their geometry
// comes from the section DOM at render time.
func RectsForCitation(c models.Citation, textItems map[int][]models.TextItem) []models.NormalizedRect {
	switch cit := c.(type) {
	case models.PdfCitation:
		items, ok := textItems[cit.Page]
		if !ok {
			return []models.NormalizedRect{}
		}
		return geometry.OffsetsToRects(cit.Start, cit.End, items)
	default:
		return []models.NormalizedRect{}
	}
}

func checkSelection(sel models.Selection) error {
	if sel.PaperID == "" {
		return ErrNoPaper
	}
	if sel.StartOffset >= sel.EndOffset {
		return ErrEmptySpan
	}
	if sel.Format != models.FormatPDF && sel.Format != models.FormatHTML {
		return ErrBadFormat
	}
	return nil
}

func selectionRects(sel models.Selection) []models.NormalizedRect {
	return geometry.PixelToNormalized(sel.PixelRects, sel.PageWidth, sel.PageHeight)
}
