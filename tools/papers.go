package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lectern-app/lectern/internal/logger"
	"github.com/lectern-app/lectern/internal/storage"
	"github.com/lectern-app/lectern/models"
)

type PaperListQuery struct{}

type PaperListResponse struct {
	Papers []models.PaperInfo `json:"papers"`
	Count  int                `json:"count"`
}

func PaperListTool() *mcp.Tool {
	inputschema, err := jsonschema.For[PaperListQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "paper-list",
		Description: "List all papers in the library with their bibliographic summary (title, authors, DOI, format, source).",
		InputSchema: inputschema,
	}
}

func PaperListToolHandler(ctx context.Context, req *mcp.CallToolRequest, query PaperListQuery, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *PaperListResponse, error) {
	papers, err := store.ListPapers(ctx)
	if err != nil {
		log.Error("Failed to list papers: %v", err)
		return nil, nil, err
	}
	return nil, &PaperListResponse{Papers: papers, Count: len(papers)}, nil
}

type PaperDeleteQuery struct {
	PaperID string `json:"paper_id"`
}

type PaperDeleteResponse struct {
	Deleted bool `json:"deleted"`
}

func PaperDeleteTool() *mcp.Tool {
	inputschema, err := jsonschema.For[PaperDeleteQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "paper-delete",
		Description: "Delete a paper and everything attached to it: pages, sections, layouts, highlights, and translations.",
		InputSchema: inputschema,
	}
}

func PaperDeleteToolHandler(ctx context.Context, req *mcp.CallToolRequest, query PaperDeleteQuery, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *PaperDeleteResponse, error) {
	log.Info("paper-delete tool called for paper %s", query.PaperID)
	if err := store.DeletePaper(ctx, query.PaperID); err != nil {
		log.Error("Failed to delete paper %s: %v", query.PaperID, err)
		return nil, nil, err
	}
	return nil, &PaperDeleteResponse{Deleted: true}, nil
}
