package tools

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lectern-app/lectern/internal/annotations"
	"github.com/lectern-app/lectern/internal/citations"
	"github.com/lectern-app/lectern/internal/logger"
	"github.com/lectern-app/lectern/internal/storage"
	"github.com/lectern-app/lectern/models"
)

type HighlightCreateQuery struct {
	Selection models.Selection `json:"selection"`
	Color     string           `json:"color,omitempty"`
	Note      string           `json:"note,omitempty"`
}

type HighlightCreateResponse struct {
	Highlight models.Highlight `json:"highlight"`
}

func HighlightCreateTool() *mcp.Tool {
	inputschema, err := jsonschema.For[HighlightCreateQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "highlight-create",
		Description: "Create a persistent highlight from a reader selection. The selection carries pixel rects and the rendered page size; the stored highlight holds zoom-independent normalized rects plus the character offsets needed to survive re-renders.",
		InputSchema: inputschema,
	}
}

func HighlightCreateToolHandler(ctx context.Context, req *mcp.CallToolRequest, query HighlightCreateQuery, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *HighlightCreateResponse, error) {
	log.Info("highlight-create tool called for paper %s", query.Selection.PaperID)

	highlight, err := annotations.HighlightFromSelection(query.Selection, query.Color, query.Note)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid selection: %w", err)
	}
	if err := store.SaveHighlight(ctx, &highlight); err != nil {
		log.Error("Failed to save highlight: %v", err)
		return nil, nil, err
	}
	return nil, &HighlightCreateResponse{Highlight: highlight}, nil
}

type HighlightListQuery struct {
	PaperID string `json:"paper_id"`
}

type HighlightListResponse struct {
	Highlights []models.Highlight `json:"highlights"`
}

func HighlightListTool() *mcp.Tool {
	inputschema, err := jsonschema.For[HighlightListQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "highlight-list",
		Description: "List all highlights saved for a paper, ordered by creation time.",
		InputSchema: inputschema,
	}
}

func HighlightListToolHandler(ctx context.Context, req *mcp.CallToolRequest, query HighlightListQuery, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *HighlightListResponse, error) {
	highlights, err := store.ListHighlights(ctx, query.PaperID)
	if err != nil {
		log.Error("Failed to list highlights: %v", err)
		return nil, nil, err
	}
	return nil, &HighlightListResponse{Highlights: highlights}, nil
}

type HighlightDeleteQuery struct {
	HighlightID string `json:"highlight_id"`
}

type HighlightDeleteResponse struct {
	Deleted bool `json:"deleted"`
}

func HighlightDeleteTool() *mcp.Tool {
	inputschema, err := jsonschema.For[HighlightDeleteQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "highlight-delete",
		Description: "Delete a highlight by its id.",
		InputSchema: inputschema,
	}
}

func HighlightDeleteToolHandler(ctx context.Context, req *mcp.CallToolRequest, query HighlightDeleteQuery, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *HighlightDeleteResponse, error) {
	if err := store.DeleteHighlight(ctx, query.HighlightID); err != nil {
		log.Error("Failed to delete highlight %s: %v", query.HighlightID, err)
		return nil, nil, err
	}
	return nil, &HighlightDeleteResponse{Deleted: true}, nil
}

type CitationSaveQuery struct {
	PaperID   string `json:"paper_id"`
	Page      int    `json:"page,omitempty"`
	SectionID string `json:"section_id,omitempty"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
	Quote     string `json:"quote"`
	Color     string `json:"color,omitempty"`
}

type CitationSaveResponse struct {
	Highlight models.Highlight `json:"highlight"`
	Verified  bool             `json:"verified"`
}

func CitationSaveTool() *mcp.Tool {
	inputschema, err := jsonschema.For[CitationSaveQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "citation-save",
		Description: "Save a citation from a previous paper-chat answer as a persistent highlight. The citation is re-validated against the stored paper text before saving; offsets that drifted are repaired by locating the quote.",
		InputSchema: inputschema,
	}
}

func CitationSaveToolHandler(ctx context.Context, req *mcp.CallToolRequest, query CitationSaveQuery, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *CitationSaveResponse, error) {
	log.Info("citation-save tool called for paper %s", query.PaperID)

	paper, err := store.GetPaper(ctx, query.PaperID)
	if err != nil {
		return nil, nil, err
	}

	citation, err := citationFromQuery(query, paper.Format)
	if err != nil {
		return nil, nil, err
	}

	validated := citations.ValidateAll([]models.Citation{citation}, paper.Pages, paper.Sections)
	if len(validated) == 0 {
		return nil, nil, fmt.Errorf("citation quote not found in paper %s", query.PaperID)
	}

	highlight, err := annotations.HighlightFromCitation(query.PaperID, validated[0], paper, query.Color)
	if err != nil {
		return nil, nil, err
	}
	if err := store.SaveHighlight(ctx, &highlight); err != nil {
		log.Error("Failed to save citation highlight: %v", err)
		return nil, nil, err
	}
	return nil, &CitationSaveResponse{Highlight: highlight, Verified: true}, nil
}

func citationFromQuery(query CitationSaveQuery, format models.PaperFormat) (models.Citation, error) {
	switch format {
	case models.FormatPDF:
		return models.PdfCitation{
			Page:  query.Page,
			Start: query.Start,
			End:   query.End,
			Quote: query.Quote,
		}, nil
	case models.FormatHTML:
		return models.HtmlCitation{
			SectionID: query.SectionID,
			Start:     query.Start,
			End:       query.End,
			Quote:     query.Quote,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported paper format: %s", format)
	}
}
