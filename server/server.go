package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lectern-app/lectern/internal/logger"
	"github.com/lectern-app/lectern/internal/storage"
	"github.com/lectern-app/lectern/resources"
	"github.com/lectern-app/lectern/tools"
)

func CreateServer(log logger.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "lectern", Version: "v0.0.1"}, nil)

	store, err := initializeStorage(log)
	if err != nil {
		log.Fatal("Failed to initialize storage: %v", err)
	}

	paperResourceHandler := resources.NewPaperResourceHandler(store)

	// Register tools with storage and logger dependencies
	mcp.AddTool(server, tools.PaperParseTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.PaperParseQuery) (*mcp.CallToolResult, *tools.PaperParseResponse, error) {
		return tools.PaperParseToolHandler(ctx, req, query, store, log)
	})

	mcp.AddTool(server, tools.PaperChatTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.PaperChatQuery) (*mcp.CallToolResult, *tools.PaperChatResponse, error) {
		return tools.PaperChatToolHandler(ctx, req, query, store, log)
	})

	mcp.AddTool(server, tools.PaperOcrTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.PaperOcrQuery) (*mcp.CallToolResult, *tools.PaperOcrResponse, error) {
		return tools.PaperOcrToolHandler(ctx, req, query, store, log)
	})

	mcp.AddTool(server, tools.PaperListTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.PaperListQuery) (*mcp.CallToolResult, *tools.PaperListResponse, error) {
		return tools.PaperListToolHandler(ctx, req, query, store, log)
	})

	mcp.AddTool(server, tools.PaperDeleteTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.PaperDeleteQuery) (*mcp.CallToolResult, *tools.PaperDeleteResponse, error) {
		return tools.PaperDeleteToolHandler(ctx, req, query, store, log)
	})

	mcp.AddTool(server, tools.HighlightCreateTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.HighlightCreateQuery) (*mcp.CallToolResult, *tools.HighlightCreateResponse, error) {
		return tools.HighlightCreateToolHandler(ctx, req, query, store, log)
	})

	mcp.AddTool(server, tools.HighlightListTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.HighlightListQuery) (*mcp.CallToolResult, *tools.HighlightListResponse, error) {
		return tools.HighlightListToolHandler(ctx, req, query, store, log)
	})

	mcp.AddTool(server, tools.HighlightDeleteTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.HighlightDeleteQuery) (*mcp.CallToolResult, *tools.HighlightDeleteResponse, error) {
		return tools.HighlightDeleteToolHandler(ctx, req, query, store, log)
	})

	mcp.AddTool(server, tools.CitationSaveTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.CitationSaveQuery) (*mcp.CallToolResult, *tools.CitationSaveResponse, error) {
		return tools.CitationSaveToolHandler(ctx, req, query, store, log)
	})

	mcp.AddTool(server, tools.TranslateSelectionTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.TranslateSelectionQuery) (*mcp.CallToolResult, *tools.TranslateSelectionResponse, error) {
		return tools.TranslateSelectionToolHandler(ctx, req, query, store, log)
	})

	mcp.AddTool(server, tools.TranslationToggleTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.TranslationToggleQuery) (*mcp.CallToolResult, *tools.TranslationToggleResponse, error) {
		return tools.TranslationToggleToolHandler(ctx, req, query, store, log)
	})

	mcp.AddTool(server, tools.TranslationListTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.TranslationListQuery) (*mcp.CallToolResult, *tools.TranslationListResponse, error) {
		return tools.TranslationListToolHandler(ctx, req, query, store, log)
	})

	mcp.AddTool(server, tools.TranslationDeleteTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.TranslationDeleteQuery) (*mcp.CallToolResult, *tools.TranslationDeleteResponse, error) {
		return tools.TranslationDeleteToolHandler(ctx, req, query, store, log)
	})

	mcp.AddTool(server, tools.BibliographyExportTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.BibliographyExportQuery) (*mcp.CallToolResult, *tools.BibliographyExportResponse, error) {
		return tools.BibliographyExportToolHandler(ctx, req, query, store, log)
	})

	mcp.AddTool(server, tools.ZoteroSearchTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.ZoteroSearchQuery) (*mcp.CallToolResult, *tools.ZoteroSearchResponse, error) {
		return tools.ZoteroSearchToolHandler(ctx, req, query, store, log)
	})

	mcp.AddTool(server, tools.ZoteroCollectionsTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.ZoteroCollectionsQuery) (*mcp.CallToolResult, *tools.ZoteroCollectionsResponse, error) {
		return tools.ZoteroCollectionsToolHandler(ctx, req, query, store, log)
	})

	// Template for paper summary
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "paper://{paperId}",
		Name:        "paper",
		Description: "Ingested paper with metadata and content summary",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return paperResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	// Template for metadata
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "paper://{paperId}/metadata",
		Name:        "paper-metadata",
		Description: "Paper metadata including title, authors, DOI, and abstract",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return paperResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	// Template for pages
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "paper://{paperId}/pages",
		Name:        "paper-pages",
		Description: "All extracted page text of a PDF paper",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return paperResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	// Template for individual page
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "paper://{paperId}/pages/{pageNumber}",
		Name:        "paper-page",
		Description: "A specific page's extracted text (1-indexed)",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return paperResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	// Template for a page's positioned text items
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "paper://{paperId}/pages/{pageNumber}/text-items",
		Name:        "paper-text-items",
		Description: "Positioned text runs mapping character offsets to normalized page coordinates",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return paperResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	// Template for a page's OCR layout
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "paper://{paperId}/pages/{pageNumber}/layout",
		Name:        "paper-layout",
		Description: "Reconstructed page layout with positioned text blocks (requires paper-ocr)",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return paperResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	// Template for sections
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "paper://{paperId}/sections",
		Name:        "paper-sections",
		Description: "All extracted section text of an HTML paper",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return paperResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	// Template for individual section
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "paper://{paperId}/sections/{sectionId}",
		Name:        "paper-section",
		Description: "A specific section's extracted text",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return paperResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	// Template for highlights
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "paper://{paperId}/highlights",
		Name:        "paper-highlights",
		Description: "All highlights saved on the paper",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return paperResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	// Template for translations
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "paper://{paperId}/translations",
		Name:        "paper-translations",
		Description: "All inline translations saved on the paper",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return paperResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	return server
}

// initializeStorage creates and initializes the storage backend
func initializeStorage(log logger.Logger) (storage.Store, error) {
	// Determine database path
	dbPath := os.Getenv("LECTERN_DB_PATH")
	if dbPath == "" {
		// Default to ~/.lectern/lectern.db
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		dbDir := filepath.Join(homeDir, ".lectern")
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dbPath = filepath.Join(dbDir, "lectern.db")
	}

	log.Info("Initializing SQLite database at: %s", dbPath)

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite store: %w", err)
	}

	return store, nil
}
