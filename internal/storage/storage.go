package storage

import (
	"context"

	"github.com/lectern-app/lectern/models"
)

// Store defines the interface for persisting ingested papers and the
// annotations made against them
type Store interface {
	// StorePaper stores an ingested paper and returns a unique paper ID
	StorePaper(ctx context.Context, paper *models.Paper, sourceInfo *models.SourceInfo) (string, error)

	// GetPaper retrieves a complete paper by ID, including text items and
	// page dimensions
	GetPaper(ctx context.Context, paperID string) (*models.Paper, error)

	// GetMetadata retrieves bibliographic metadata for a paper by ID
	GetMetadata(ctx context.Context, paperID string) (*models.PaperMetadata, error)

	// GetPage retrieves the extracted text of one page (1-indexed)
	GetPage(ctx context.Context, paperID string, pageNum int) (string, error)

	// GetSection retrieves the text of one HTML section by section ID
	GetSection(ctx context.Context, paperID string, sectionID string) (string, error)

	// GetTextItems retrieves the positioned text items of one page
	GetTextItems(ctx context.Context, paperID string, pageNum int) ([]models.TextItem, error)

	// GetPageDimensions retrieves the unscaled pixel size of one page
	GetPageDimensions(ctx context.Context, paperID string, pageNum int) (models.PageDimensions, error)

	// StoreLayout stores the reconstructed layout of one OCR'd page,
	// replacing any previous layout for that page
	StoreLayout(ctx context.Context, paperID string, layout *models.PageLayout) error

	// GetLayout retrieves the stored layout of one page
	GetLayout(ctx context.Context, paperID string, pageNum int) (*models.PageLayout, error)

	// SaveHighlight inserts or updates a highlight
	SaveHighlight(ctx context.Context, highlight *models.Highlight) error

	// ListHighlights retrieves all highlights for a paper
	ListHighlights(ctx context.Context, paperID string) ([]models.Highlight, error)

	// DeleteHighlight removes a highlight by ID
	DeleteHighlight(ctx context.Context, highlightID string) error

	// SaveTranslation inserts or updates an inline translation
	SaveTranslation(ctx context.Context, translation *models.InlineTranslation) error

	// ListTranslations retrieves all inline translations for a paper
	ListTranslations(ctx context.Context, paperID string) ([]models.InlineTranslation, error)

	// SetTranslationActive toggles a translation overlay on or off
	SetTranslationActive(ctx context.Context, translationID string, active bool) error

	// DeleteTranslation removes an inline translation by ID
	DeleteTranslation(ctx context.Context, translationID string) error

	// ListPapers returns all stored papers with their metadata
	ListPapers(ctx context.Context) ([]models.PaperInfo, error)

	// DeletePaper removes a paper and all associated data
	DeletePaper(ctx context.Context, paperID string) error

	// Close closes the database connection
	Close() error
}
