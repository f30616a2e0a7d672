package tools

import (
	"context"
	"fmt"
	"os"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lectern-app/lectern/internal/documents"
	"github.com/lectern-app/lectern/internal/layout"
	"github.com/lectern-app/lectern/internal/logger"
	"github.com/lectern-app/lectern/internal/ocr"
	"github.com/lectern-app/lectern/internal/operations"
	"github.com/lectern-app/lectern/internal/storage"
	"github.com/lectern-app/lectern/models"
)

type PaperOcrQuery struct {
	PaperID  string `json:"paper_id"`
	ZoteroID string `json:"zotero_id,omitempty"`
	URL      string `json:"url,omitempty"`
	RawData  []byte `json:"raw_data,omitempty"`
}

type PaperOcrResponse struct {
	PaperID    string `json:"paper_id"`
	PageCount  int    `json:"page_count"`
	BlockCount int    `json:"block_count"`
}

func PaperOcrTool() *mcp.Tool {
	inputschema, err := jsonschema.For[PaperOcrQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "paper-ocr",
		Description: "Run OCR over a PDF paper's pages and store reconstructed page layouts. The PDF bytes come from the same Zotero id, URL, or raw data used at ingestion; layouts position each recognized Markdown block on its page in normalized coordinates.",
		InputSchema: inputschema,
	}
}

func PaperOcrToolHandler(ctx context.Context, req *mcp.CallToolRequest, query PaperOcrQuery, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *PaperOcrResponse, error) {
	log.Info("paper-ocr tool called for paper %s", query.PaperID)

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	paper, err := store.GetPaper(ctx, query.PaperID)
	if err != nil {
		return nil, nil, err
	}
	if paper.Format != models.FormatPDF {
		return nil, nil, fmt.Errorf("paper %s is not a PDF; layouts only apply to paginated papers", query.PaperID)
	}

	pdfData, err := ocrSourceData(ctx, query)
	if err != nil {
		return nil, nil, err
	}

	cfg := layoutConfig(log)
	provider := ocr.NewOpenAIProvider(apiKey, log)
	layouts, err := operations.BuildPageLayouts(ctx, provider, pdfData, query.PaperID, store, cfg, log)
	if err != nil {
		log.Error("paper-ocr failed: %v", err)
		return nil, nil, err
	}

	blocks := 0
	for _, l := range layouts {
		blocks += len(l.Blocks)
	}
	return nil, &PaperOcrResponse{
		PaperID:    query.PaperID,
		PageCount:  len(layouts),
		BlockCount: blocks,
	}, nil
}

func ocrSourceData(ctx context.Context, query PaperOcrQuery) ([]byte, error) {
	if query.RawData != nil {
		return query.RawData, nil
	}
	if query.ZoteroID == "" && query.URL == "" {
		return nil, fmt.Errorf("one of zotero_id, url, or raw_data is required to locate the PDF bytes")
	}
	data, err := documents.GetData(ctx, models.SourceInfo{ZoteroID: query.ZoteroID, URL: query.URL})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch PDF data: %w", err)
	}
	if data.Type != "pdf" {
		return nil, fmt.Errorf("fetched document is %s, not pdf", data.Type)
	}
	return data.Data, nil
}

// layoutConfig loads calibration overrides from LECTERN_LAYOUT_CONFIG when
// set, falling back to defaults on any error.
func layoutConfig(log logger.Logger) layout.Config {
	path := os.Getenv("LECTERN_LAYOUT_CONFIG")
	if path == "" {
		return layout.DefaultConfig()
	}
	cfg, err := layout.LoadConfig(path)
	if err != nil {
		log.Warn("Failed to load layout config from %s: %v", path, err)
	}
	return cfg
}
