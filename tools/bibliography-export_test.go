package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/lectern-app/lectern/internal/logger"
	"github.com/lectern-app/lectern/internal/storage"
	"github.com/lectern-app/lectern/models"
)

func newToolTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := storage.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBibliographyExportToolHandler(t *testing.T) {
	log := logger.NewNoOpLogger()
	store := newToolTestStore(t)
	ctx := context.Background()

	papers := []*models.Paper{
		{
			Format: models.FormatPDF,
			Metadata: models.PaperMetadata{
				Title:           "Machine Learning in Climate Science",
				Authors:         []string{"Smith, John", "Doe, Jane"},
				PublicationDate: "2020-05-15",
				Publication:     "Nature Climate Change",
				DOI:             "10.1038/s41558-020-0000-0",
			},
			Pages: []models.PageText{{PageNumber: 1, TextContent: "Page 1 content"}},
		},
		{
			Format: models.FormatHTML,
			Metadata: models.PaperMetadata{
				Title:           "Introduction to Algorithms",
				Authors:         []string{"Cormen, Thomas", "Leiserson, Charles", "Rivest, Ronald"},
				PublicationDate: "2009",
			},
			Sections: []models.SectionText{{SectionID: "section-0", TextContent: "Intro"}},
		},
	}

	var paperIDs []string
	for _, paper := range papers {
		id, err := store.StorePaper(ctx, paper, &models.SourceInfo{})
		if err != nil {
			t.Fatalf("Failed to store paper: %v", err)
		}
		paperIDs = append(paperIDs, id)
	}

	_, resp, err := BibliographyExportToolHandler(ctx, nil, BibliographyExportQuery{}, store, log)
	if err != nil {
		t.Fatalf("BibliographyExportToolHandler failed: %v", err)
	}

	if resp.Format != "bibtex" {
		t.Errorf("Format = %q, want bibtex", resp.Format)
	}
	if resp.PaperCount != len(papers) {
		t.Errorf("PaperCount = %d, want %d", resp.PaperCount, len(papers))
	}
	for _, want := range []string{"smithDoe2020", "cormenEtAl2009", "Machine Learning in Climate Science"} {
		if !strings.Contains(resp.Content, want) {
			t.Errorf("Content missing %q:\n%s", want, resp.Content)
		}
	}
	for _, id := range paperIDs {
		if resp.Citekeys[id] == "" {
			t.Errorf("No citekey generated for paper %s", id)
		}
	}
}

func TestBibliographyExportToolHandler_UnsupportedFormat(t *testing.T) {
	log := logger.NewNoOpLogger()
	store := newToolTestStore(t)

	_, _, err := BibliographyExportToolHandler(context.Background(), nil, BibliographyExportQuery{Format: "ris"}, store, log)
	if err == nil {
		t.Error("Expected error for unsupported format, got nil")
	}
}

func TestBibliographyExportToolHandler_SpecificPapers(t *testing.T) {
	log := logger.NewNoOpLogger()
	store := newToolTestStore(t)
	ctx := context.Background()

	paper := &models.Paper{
		Format: models.FormatPDF,
		Metadata: models.PaperMetadata{
			Title:   "A Single Paper",
			Authors: []string{"Solo, Han"},
		},
		Pages: []models.PageText{{PageNumber: 1, TextContent: "content"}},
	}
	id, err := store.StorePaper(ctx, paper, &models.SourceInfo{})
	if err != nil {
		t.Fatalf("Failed to store paper: %v", err)
	}

	_, resp, err := BibliographyExportToolHandler(ctx, nil, BibliographyExportQuery{PaperIDs: []string{id}}, store, log)
	if err != nil {
		t.Fatalf("BibliographyExportToolHandler failed: %v", err)
	}
	if resp.PaperCount != 1 {
		t.Errorf("PaperCount = %d, want 1", resp.PaperCount)
	}
	if !strings.Contains(resp.Content, "A Single Paper") {
		t.Errorf("Content missing entry for stored paper:\n%s", resp.Content)
	}
}
