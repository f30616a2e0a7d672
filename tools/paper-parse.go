package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lectern-app/lectern/internal/bibliography"
	"github.com/lectern-app/lectern/internal/logger"
	"github.com/lectern-app/lectern/internal/operations"
	"github.com/lectern-app/lectern/internal/storage"
)

type PaperParseQuery struct {
	ZoteroID string `json:"zotero_id,omitempty"`
	URL      string `json:"url,omitempty"`
	RawData  []byte `json:"raw_data,omitempty"`
}

type PaperParseResponse struct {
	PaperID       string   `json:"paper_id"`
	ResourcePaths []string `json:"resource_paths"`
	Title         string   `json:"title,omitempty"`
	Citekey       string   `json:"citekey,omitempty"`
	Format        string   `json:"format"`
	PageCount     int      `json:"page_count"`
	SectionCount  int      `json:"section_count"`
}

func PaperParseTool() *mcp.Tool {
	inputschema, err := jsonschema.For[PaperParseQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "paper-parse",
		Description: "Ingest an academic paper (PDF or HTML) from a Zotero attachment, a URL, or raw bytes. Extracts per-page text with character positions (PDF) or per-section text (HTML), resolves bibliographic metadata, and stores everything for later chat, highlighting, and translation.",
		InputSchema: inputschema,
	}
}

func PaperParseToolHandler(ctx context.Context, req *mcp.CallToolRequest, query PaperParseQuery, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *PaperParseResponse, error) {
	log.Info("paper-parse tool called")

	paperID, paper, err := operations.GetOrIngestPaper(ctx, query.ZoteroID, query.URL, query.RawData, store, log)
	if err != nil {
		log.Error("paper-parse tool failed: %v", err)
		return nil, nil, err
	}

	responseData := &PaperParseResponse{
		PaperID:       paperID,
		ResourcePaths: storage.CalculateResourcePaths(paperID, paper),
		Title:         paper.Metadata.Title,
		Citekey:       bibliography.GenerateCitekey(paper.Metadata, nil),
		Format:        string(paper.Format),
		PageCount:     len(paper.Pages),
		SectionCount:  len(paper.Sections),
	}

	return nil, responseData, nil
}
