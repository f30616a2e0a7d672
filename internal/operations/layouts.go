package operations

import (
	"context"
	"fmt"

	"github.com/lectern-app/lectern/internal/documents"
	"github.com/lectern-app/lectern/internal/layout"
	"github.com/lectern-app/lectern/internal/llm"
	"github.com/lectern-app/lectern/internal/logger"
	"github.com/lectern-app/lectern/internal/ocr"
	"github.com/lectern-app/lectern/internal/storage"
	"github.com/lectern-app/lectern/models"
)

// BuildPageLayouts OCRs every page of a PDF paper and stores the
// reconstructed layout for each. Pages are OCR'd in parallel; layouts are
// parsed sequentially so block IDs stay deterministic across runs.
func BuildPageLayouts(ctx context.Context, provider ocr.Provider, pdfData []byte, paperID string, store storage.Store, cfg layout.Config, log logger.Logger) ([]models.PageLayout, error) {
	pages, err := documents.SplitPdf(models.DocumentData{Data: pdfData, Type: "pdf"})
	if err != nil {
		return nil, fmt.Errorf("failed to split PDF into pages: %w", err)
	}

	log.Info("OCR of %d pages for paper %s", len(pages), paperID)

	markdowns, err := llm.ParallelProcess(ctx, pages, log, func(ctx context.Context, idx int, page models.DocumentPageData) (string, error) {
		markdown, err := provider.RecognizePage(ctx, page)
		if err != nil {
			return "", fmt.Errorf("failed to OCR page %d: %w", idx+1, err)
		}
		return markdown, nil
	})
	if err != nil {
		return nil, err
	}

	parser := layout.NewParser(cfg)
	layouts := make([]models.PageLayout, 0, len(markdowns))
	for i, markdown := range markdowns {
		pageNum := i + 1
		width, height := layoutPageSize(ctx, store, paperID, pageNum)
		pageLayout := parser.Parse(markdown, pageNum, width, height)
		if err := store.StoreLayout(ctx, paperID, &pageLayout); err != nil {
			return nil, fmt.Errorf("failed to store layout for page %d: %w", pageNum, err)
		}
		layouts = append(layouts, pageLayout)
	}

	log.Info("Stored %d page layouts for paper %s", len(layouts), paperID)
	return layouts, nil
}

// layoutPageSize looks up the stored page dimensions, falling back to US
// Letter when extraction didn't record them.
func layoutPageSize(ctx context.Context, store storage.Store, paperID string, pageNum int) (float64, float64) {
	dims, err := store.GetPageDimensions(ctx, paperID, pageNum)
	if err != nil || dims.Width <= 0 || dims.Height <= 0 {
		return 612, 792
	}
	return dims.Width, dims.Height
}
