package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lectern-app/lectern/internal/logger"
	"github.com/lectern-app/lectern/internal/operations"
	"github.com/lectern-app/lectern/internal/storage"
)

type ZoteroSearchQuery struct {
	Query      string   `json:"query,omitempty"`      // Quick search text (searches title, creator, year)
	Tags       []string `json:"tags,omitempty"`       // Filter by tags
	ItemTypes  []string `json:"item_types,omitempty"` // Filter by type (e.g., "book", "article", "-attachment")
	Collection string   `json:"collection,omitempty"` // Filter by collection key (optional)
	Limit      int      `json:"limit,omitempty"`      // Max results (default 25)
	Sort       string   `json:"sort,omitempty"`       // Sort field (default "dateModified")
}

type ZoteroSearchResponse struct {
	Items []ZoteroItemResult `json:"items"`
	Count int                `json:"count"`
}

type ZoteroItemResult struct {
	Key         string           `json:"key"`
	Title       string           `json:"title"`
	Creators    []string         `json:"creators,omitempty"`
	ItemType    string           `json:"item_type"`
	Date        string           `json:"date,omitempty"`
	Attachments []AttachmentInfo `json:"attachments,omitempty"`
}

type AttachmentInfo struct {
	Key         string `json:"key"` // Use this as zotero_id in paper-parse
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"` // MIME type (e.g., "application/pdf")
	LinkMode    string `json:"link_mode"`    // imported_file, imported_url, linked_file, linked_url
	Ingested    bool   `json:"ingested"`     // Whether this attachment is already in the library
}

func ZoteroSearchTool() *mcp.Tool {
	inputschema, err := jsonschema.For[ZoteroSearchQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "zotero-search",
		Description: "Search for items in a Zotero library and retrieve their metadata and attachment information. Returns bibliographic items with their associated file attachments (PDFs, etc.). Use the attachment keys with paper-parse to ingest specific files.",
		InputSchema: inputschema,
	}
}

func ZoteroSearchToolHandler(ctx context.Context, req *mcp.CallToolRequest, query ZoteroSearchQuery, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *ZoteroSearchResponse, error) {
	log.Info("zotero-search tool called")

	apiKey, libraryID, err := zoteroCredentials()
	if err != nil {
		return nil, nil, err
	}

	searchParams := operations.ZoteroSearchParams{
		Query:      query.Query,
		Tags:       query.Tags,
		ItemTypes:  query.ItemTypes,
		Collection: query.Collection,
		Limit:      query.Limit,
		Sort:       query.Sort,
	}

	items, err := operations.SearchZotero(ctx, apiKey, libraryID, searchParams, log)
	if err != nil {
		return nil, nil, err
	}

	// Mark attachments that are already ingested so clients can skip
	// re-parsing them.
	ingested := make(map[string]bool)
	if infos, err := store.ListPapers(ctx); err != nil {
		log.Error("Failed to list stored papers: %v", err)
	} else {
		for _, info := range infos {
			if info.SourceInfo.ZoteroID != "" {
				ingested[info.SourceInfo.ZoteroID] = true
			}
		}
	}

	results := make([]ZoteroItemResult, len(items))
	for i, item := range items {
		results[i] = ZoteroItemResult{
			Key:      item.Key,
			Title:    item.Title,
			Creators: item.Creators,
			ItemType: item.ItemType,
			Date:     item.Date,
		}
		for _, att := range item.Attachments {
			results[i].Attachments = append(results[i].Attachments, AttachmentInfo{
				Key:         att.Key,
				Filename:    att.Filename,
				ContentType: att.ContentType,
				LinkMode:    att.LinkMode,
				Ingested:    ingested[att.Key],
			})
		}
	}

	response := &ZoteroSearchResponse{
		Items: results,
		Count: len(results),
	}

	return nil, response, nil
}
