package tools

import (
	"context"
	"testing"

	"github.com/lectern-app/lectern/internal/logger"
	"github.com/lectern-app/lectern/models"
)

func highlightTestSelection(paperID string) models.Selection {
	return models.Selection{
		PaperID:      paperID,
		Format:       models.FormatPDF,
		PageNumber:   1,
		StartOffset:  4,
		EndOffset:    19,
		SelectedText: "quick brown fox",
		PixelRects: []models.PixelRect{
			{X1: 61.2, Y1: 79.2, X2: 183.6, Y2: 95.0, PageNumber: 1},
		},
		PageWidth:  612,
		PageHeight: 792,
	}
}

func TestHighlightToolHandlers(t *testing.T) {
	log := logger.NewNoOpLogger()
	store := newToolTestStore(t)
	ctx := context.Background()

	paper := &models.Paper{
		Format:   models.FormatPDF,
		Metadata: models.PaperMetadata{Title: "Fox Movements"},
		Pages:    []models.PageText{{PageNumber: 1, TextContent: "The quick brown fox jumps over the lazy dog"}},
	}
	paperID, err := store.StorePaper(ctx, paper, &models.SourceInfo{})
	if err != nil {
		t.Fatalf("Failed to store paper: %v", err)
	}

	// Create
	createQuery := HighlightCreateQuery{Selection: highlightTestSelection(paperID), Note: "interesting"}
	_, created, err := HighlightCreateToolHandler(ctx, nil, createQuery, store, log)
	if err != nil {
		t.Fatalf("HighlightCreateToolHandler failed: %v", err)
	}
	if created.Highlight.ID == "" {
		t.Error("Created highlight has no ID")
	}
	if created.Highlight.SelectedText != "quick brown fox" {
		t.Errorf("SelectedText = %q", created.Highlight.SelectedText)
	}
	if len(created.Highlight.Rects) != 1 {
		t.Fatalf("Expected 1 normalized rect, got %d", len(created.Highlight.Rects))
	}
	rect := created.Highlight.Rects[0]
	if rect.X < 0 || rect.X > 1 || rect.Y < 0 || rect.Y > 1 {
		t.Errorf("Rect not normalized: %+v", rect)
	}

	// List
	_, listed, err := HighlightListToolHandler(ctx, nil, HighlightListQuery{PaperID: paperID}, store, log)
	if err != nil {
		t.Fatalf("HighlightListToolHandler failed: %v", err)
	}
	if len(listed.Highlights) != 1 {
		t.Fatalf("Expected 1 highlight, got %d", len(listed.Highlights))
	}

	// Delete
	_, deleted, err := HighlightDeleteToolHandler(ctx, nil, HighlightDeleteQuery{HighlightID: created.Highlight.ID}, store, log)
	if err != nil {
		t.Fatalf("HighlightDeleteToolHandler failed: %v", err)
	}
	if !deleted.Deleted {
		t.Error("Deleted = false")
	}

	_, listed, err = HighlightListToolHandler(ctx, nil, HighlightListQuery{PaperID: paperID}, store, log)
	if err != nil {
		t.Fatalf("HighlightListToolHandler failed: %v", err)
	}
	if len(listed.Highlights) != 0 {
		t.Errorf("Expected 0 highlights after delete, got %d", len(listed.Highlights))
	}
}

func TestHighlightCreateToolHandler_InvalidSelection(t *testing.T) {
	log := logger.NewNoOpLogger()
	store := newToolTestStore(t)

	sel := highlightTestSelection("some-paper")
	sel.EndOffset = sel.StartOffset // empty span

	_, _, err := HighlightCreateToolHandler(context.Background(), nil, HighlightCreateQuery{Selection: sel}, store, log)
	if err == nil {
		t.Error("Expected error for empty selection span, got nil")
	}
}

func TestCitationSaveToolHandler(t *testing.T) {
	log := logger.NewNoOpLogger()
	store := newToolTestStore(t)
	ctx := context.Background()

	pageText := "The quick brown fox jumps over the lazy dog"
	paper := &models.Paper{
		Format:   models.FormatPDF,
		Metadata: models.PaperMetadata{Title: "Fox Movements"},
		Pages:    []models.PageText{{PageNumber: 1, TextContent: pageText}},
		TextItems: map[int][]models.TextItem{
			1: {{Str: pageText, X: 0.1, Y: 0.1, Width: 0.8, Height: 0.02, StartOffset: 0, EndOffset: len(pageText)}},
		},
	}
	paperID, err := store.StorePaper(ctx, paper, &models.SourceInfo{})
	if err != nil {
		t.Fatalf("Failed to store paper: %v", err)
	}

	// Drifted offsets: the quote is real but the span is wrong, so the
	// validator has to relocate it.
	query := CitationSaveQuery{
		PaperID: paperID,
		Page:    1,
		Start:   0,
		End:     15,
		Quote:   "quick brown fox",
	}
	_, resp, err := CitationSaveToolHandler(ctx, nil, query, store, log)
	if err != nil {
		t.Fatalf("CitationSaveToolHandler failed: %v", err)
	}
	if !resp.Verified {
		t.Error("Verified = false")
	}
	if resp.Highlight.StartOffset != 4 || resp.Highlight.EndOffset != 19 {
		t.Errorf("Repaired offsets = [%d, %d), want [4, 19)", resp.Highlight.StartOffset, resp.Highlight.EndOffset)
	}
	if len(resp.Highlight.Rects) == 0 {
		t.Error("Expected rects for a PDF citation highlight")
	}

	_, listed, err := HighlightListToolHandler(ctx, nil, HighlightListQuery{PaperID: paperID}, store, log)
	if err != nil {
		t.Fatalf("HighlightListToolHandler failed: %v", err)
	}
	if len(listed.Highlights) != 1 {
		t.Errorf("Expected 1 saved highlight, got %d", len(listed.Highlights))
	}
}

func TestCitationSaveToolHandler_QuoteNotFound(t *testing.T) {
	log := logger.NewNoOpLogger()
	store := newToolTestStore(t)
	ctx := context.Background()

	paper := &models.Paper{
		Format:   models.FormatPDF,
		Metadata: models.PaperMetadata{Title: "Fox Movements"},
		Pages:    []models.PageText{{PageNumber: 1, TextContent: "The quick brown fox"}},
	}
	paperID, err := store.StorePaper(ctx, paper, &models.SourceInfo{})
	if err != nil {
		t.Fatalf("Failed to store paper: %v", err)
	}

	query := CitationSaveQuery{
		PaperID: paperID,
		Page:    1,
		Start:   0,
		End:     10,
		Quote:   "entirely fabricated text",
	}
	_, _, err = CitationSaveToolHandler(ctx, nil, query, store, log)
	if err == nil {
		t.Error("Expected error for unfindable quote, got nil")
	}
}
