package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lectern-app/lectern/internal/bibliography"
	"github.com/lectern-app/lectern/internal/logger"
	"github.com/lectern-app/lectern/internal/storage"
)

type BibliographyExportQuery struct {
	PaperIDs []string `json:"paper_ids,omitempty"`
	Format   string   `json:"format,omitempty"` // Currently only "bibtex" is supported
}

type BibliographyExportResponse struct {
	Format     string            `json:"format"`
	Content    string            `json:"content"`
	PaperCount int               `json:"paper_count"`
	Citekeys   map[string]string `json:"citekeys"`
}

func BibliographyExportTool() *mcp.Tool {
	inputschema, err := jsonschema.For[BibliographyExportQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "bibliography-export",
		Description: "Export bibliography in BibTeX format. If paper_ids are specified, exports only those papers; otherwise exports the entire library. Citekeys are generated from each paper's metadata, with letter suffixes on collisions.",
		InputSchema: inputschema,
	}
}

func BibliographyExportToolHandler(ctx context.Context, req *mcp.CallToolRequest, query BibliographyExportQuery, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *BibliographyExportResponse, error) {
	log.Info("bibliography-export tool called")

	format := query.Format
	if format == "" {
		format = "bibtex"
	}
	if strings.ToLower(format) != "bibtex" {
		log.Error("Unsupported format: %s", format)
		return nil, nil, fmt.Errorf("unsupported format: %s (only 'bibtex' is supported)", format)
	}

	paperIDs := query.PaperIDs
	if len(paperIDs) == 0 {
		log.Info("Exporting entire library")
		infos, err := store.ListPapers(ctx)
		if err != nil {
			log.Error("Failed to list papers: %v", err)
			return nil, nil, fmt.Errorf("failed to list papers: %w", err)
		}
		for _, info := range infos {
			paperIDs = append(paperIDs, info.PaperID)
		}
		log.Info("Found %d papers in library", len(paperIDs))
	}

	var entries []string
	citekeys := make(map[string]string, len(paperIDs))
	existing := make(map[string]bool, len(paperIDs))

	for _, paperID := range paperIDs {
		metadata, err := store.GetMetadata(ctx, paperID)
		if err != nil {
			log.Error("Failed to get metadata for paper %s: %v", paperID, err)
			return nil, nil, fmt.Errorf("failed to get metadata for paper %s: %w", paperID, err)
		}

		citekey := bibliography.GenerateCitekey(*metadata, existing)
		existing[citekey] = true
		citekeys[paperID] = citekey

		entries = append(entries, bibliography.GenerateBibTeXEntry(*metadata, citekey))
		log.Info("Generated BibTeX entry for %s (citekey: %s)", paperID, citekey)
	}

	content := bibliography.GenerateBibTeXFile(entries)
	log.Info("Successfully generated BibTeX file with %d entries", len(entries))

	return nil, &BibliographyExportResponse{
		Format:     format,
		Content:    content,
		PaperCount: len(entries),
		Citekeys:   citekeys,
	}, nil
}
