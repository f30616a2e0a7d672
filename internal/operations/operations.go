// Package operations holds the multi-step workflows shared by the MCP
// tools: paper ingestion, layout reconstruction, and Zotero library access.
package operations

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/lectern-app/lectern/internal/documents"
	"github.com/lectern-app/lectern/internal/llm"
	"github.com/lectern-app/lectern/internal/logger"
	"github.com/lectern-app/lectern/internal/storage"
	"github.com/lectern-app/lectern/models"
)

// GetOrIngestPaper retrieves an ingested paper from storage if it exists, or
// fetches, extracts, and stores it if it doesn't. Exactly one of zoteroID,
// url, or rawData selects the source.
func GetOrIngestPaper(ctx context.Context, zoteroID, url string, rawData []byte, store storage.Store, log logger.Logger) (string, *models.Paper, error) {
	sourceInfo := &models.SourceInfo{
		ZoteroID: zoteroID,
		URL:      url,
	}

	// Zotero and URL sources have stable IDs, so the download can be
	// skipped entirely when the paper is already stored.
	if zoteroID != "" || url != "" {
		paperID := storage.GeneratePaperID(&models.Paper{}, sourceInfo)
		if paper, err := store.GetPaper(ctx, paperID); err == nil {
			log.Info("Paper %s already ingested", paperID)
			return paperID, paper, nil
		}
	}

	var data models.DocumentData
	var err error
	if rawData != nil {
		data = models.DocumentData{
			Data: rawData,
			Type: documents.DetectDocumentType(rawData),
		}
	} else {
		data, err = documents.GetData(ctx, *sourceInfo)
		if err != nil {
			return "", nil, fmt.Errorf("failed to fetch paper data: %w", err)
		}
	}

	paper, err := extractPaper(data)
	if err != nil {
		return "", nil, err
	}

	paper.Metadata = resolveMetadata(ctx, zoteroID, paper, log)

	paperID, err := store.StorePaper(ctx, paper, sourceInfo)
	if err != nil {
		return "", nil, fmt.Errorf("failed to store paper: %w", err)
	}

	log.Info("Ingested paper %s (%s, %d pages, %d sections)",
		paperID, paper.Format, len(paper.Pages), len(paper.Sections))
	return paperID, paper, nil
}

// extractPaper builds a Paper from raw document bytes according to the
// detected type.
func extractPaper(data models.DocumentData) (*models.Paper, error) {
	switch data.Type {
	case "pdf":
		extracted, err := documents.ExtractText(data.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to extract PDF text: %w", err)
		}
		return &models.Paper{
			Format:         models.FormatPDF,
			Pages:          extracted.Pages,
			TextItems:      extracted.TextItems,
			PageDimensions: extracted.Dimensions,
		}, nil
	case "html":
		sections, err := documents.ExtractSections(data.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to extract HTML sections: %w", err)
		}
		return &models.Paper{
			Format:   models.FormatHTML,
			Sections: sections,
		}, nil
	case "txt":
		// Plain text papers are a single unpaginated section.
		return &models.Paper{
			Format: models.FormatHTML,
			Sections: []models.SectionText{
				{SectionID: "section-0", TextContent: string(data.Data)},
			},
		}, nil
	default:
		return nil, errors.New("unsupported document type: " + data.Type)
	}
}

// resolveMetadata combines Zotero metadata (when the paper came from Zotero)
// with LLM-extracted metadata from the paper's front matter. Either source
// can be unavailable; missing metadata is not an ingestion failure.
func resolveMetadata(ctx context.Context, zoteroID string, paper *models.Paper, log logger.Logger) models.PaperMetadata {
	var external, extracted *models.PaperMetadata

	if zoteroID != "" {
		apiKey := os.Getenv("ZOTERO_API_KEY")
		libraryID := os.Getenv("ZOTERO_LIBRARY_ID")
		meta, err := documents.FetchZoteroMetadata(ctx, zoteroID, apiKey, libraryID)
		if err != nil {
			log.Warn("Failed to fetch Zotero metadata for %s: %v", zoteroID, err)
		} else {
			external = meta
		}
	}

	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		frontMatter := paperFrontMatter(paper)
		if frontMatter != "" {
			meta, err := llm.ExtractMetadata(ctx, apiKey, frontMatter, log)
			if err != nil {
				log.Warn("Failed to extract metadata: %v", err)
			} else {
				extracted = meta
			}
		}
	}

	return documents.MergeMetadata(external, extracted)
}

// paperFrontMatter returns the opening text of a paper, where bibliographic
// metadata lives.
func paperFrontMatter(paper *models.Paper) string {
	if len(paper.Pages) > 0 {
		return paper.Pages[0].TextContent
	}
	if len(paper.Sections) > 0 {
		text := paper.Sections[0].TextContent
		if len(paper.Sections) > 1 {
			text += "\n" + paper.Sections[1].TextContent
		}
		return text
	}
	return ""
}
