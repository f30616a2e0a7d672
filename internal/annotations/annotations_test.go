package annotations

import (
	"errors"
	"testing"

	"github.com/lectern-app/lectern/models"
)

func validSelection() models.Selection {
	return models.Selection{
		PaperID:      "paper-1",
		Format:       models.FormatPDF,
		PageNumber:   2,
		StartOffset:  10,
		EndOffset:    25,
		SelectedText: "selected words",
		PixelRects: []models.PixelRect{
			{X1: 100, Y1: 200, X2: 400, Y2: 216, Width: 300, Height: 16},
		},
		PageWidth:  800,
		PageHeight: 1000,
	}
}

func TestHighlightFromSelection(t *testing.T) {
	h, err := HighlightFromSelection(validSelection(), "", "a note")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h.ID == "" {
		t.Error("highlight must get an id")
	}
	if h.Color != DefaultColor {
		t.Errorf("empty color should default, got %q", h.Color)
	}
	if h.Note != "a note" {
		t.Errorf("note = %q", h.Note)
	}
	if len(h.Rects) != 1 {
		t.Fatalf("expected 1 normalized rect, got %d", len(h.Rects))
	}
	r := h.Rects[0]
	if r.X != 0.125 || r.Y != 0.2 || r.Width != 0.375 || r.Height != 0.016 {
		t.Errorf("unexpected rect %+v", r)
	}
	if h.CreatedAt.IsZero() || !h.CreatedAt.Equal(h.UpdatedAt) {
		t.Error("timestamps must be set and equal on creation")
	}
}

func TestHighlightFromSelection_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Selection)
		wantErr error
	}{
		{name: "missing paper", mutate: func(s *models.Selection) { s.PaperID = "" }, wantErr: ErrNoPaper},
		{name: "empty span", mutate: func(s *models.Selection) { s.EndOffset = s.StartOffset }, wantErr: ErrEmptySpan},
		{name: "bad format", mutate: func(s *models.Selection) { s.Format = "epub" }, wantErr: ErrBadFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := validSelection()
			tt.mutate(&sel)
			if _, err := HighlightFromSelection(sel, "", ""); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTranslationFromSelection(t *testing.T) {
	tr, err := TranslationFromSelection(validSelection(), "los resultados", "es", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tr.IsActive {
		t.Error("new translations start active")
	}
	if tr.TranslatedText != "los resultados" || tr.TargetLanguage != "es" || tr.SourceLanguage != "en" {
		t.Errorf("translation fields not mapped: %+v", tr)
	}
	if len(tr.Rects) != 1 {
		t.Errorf("expected coverage rects, got %d", len(tr.Rects))
	}
}

func TestRectsForCitation(t *testing.T) {
	items := map[int][]models.TextItem{
		3: {
			{Str: "evidence here", X: 0.1, Y: 0.4, Width: 0.2, Height: 0.02, StartOffset: 0, EndOffset: 13},
		},
	}

	tests := []struct {
		name      string
		citation  models.Citation
		wantEmpty bool
	}{
		{
			name:     "pdf citation on a known page",
			citation: models.PdfCitation{Page: 3, Start: 0, End: 8},
		},
		{
			name:      "pdf citation on a missing page",
			citation:  models.PdfCitation{Page: 7, Start: 0, End: 8},
			wantEmpty: true,
		},
		{
			name:      "html citation has no text items",
			citation:  models.HtmlCitation{SectionID: "s1", Start: 0, End: 8},
			wantEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RectsForCitation(tt.citation, items)
			if tt.wantEmpty && len(got) != 0 {
				t.Errorf("expected empty rects, got %v", got)
			}
			if !tt.wantEmpty && len(got) == 0 {
				t.Error("expected rects, got none")
			}
		})
	}
}

func TestHighlightFromCitation(t *testing.T) {
	paper := &models.Paper{
		Format: models.FormatPDF,
		TextItems: map[int][]models.TextItem{
			1: {{Str: "quoted span", X: 0.1, Y: 0.1, Width: 0.2, Height: 0.02, StartOffset: 0, EndOffset: 11}},
		},
	}

	h, err := HighlightFromCitation("paper-9", models.PdfCitation{Page: 1, Start: 0, End: 11, Quote: "quoted span"}, paper, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.PaperID != "paper-9" || h.Format != models.FormatPDF || h.PageNumber != 1 {
		t.Errorf("citation fields not mapped: %+v", h)
	}
	if h.SelectedText != "quoted span" {
		t.Errorf("selected text = %q", h.SelectedText)
	}
	if len(h.Rects) == 0 {
		t.Error("expected rects from text items")
	}
}
