package tools

import (
	"context"
	"fmt"
	"os"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lectern-app/lectern/internal/logger"
	"github.com/lectern-app/lectern/internal/operations"
	"github.com/lectern-app/lectern/internal/storage"
)

// zoteroCredentials reads the API key and library ID from the environment.
// Both Zotero tools require them, so the lookup lives in one place.
func zoteroCredentials() (apiKey, libraryID string, err error) {
	apiKey = os.Getenv("ZOTERO_API_KEY")
	if apiKey == "" {
		return "", "", fmt.Errorf("ZOTERO_API_KEY environment variable not set")
	}
	libraryID = os.Getenv("ZOTERO_LIBRARY_ID")
	if libraryID == "" {
		return "", "", fmt.Errorf("ZOTERO_LIBRARY_ID environment variable not set")
	}
	return apiKey, libraryID, nil
}

type ZoteroCollectionsQuery struct {
	TopLevelOnly     bool   `json:"top_level_only,omitempty"`    // Only collections without a parent
	ParentCollection string `json:"parent_collection,omitempty"` // Restrict to children of this collection key
	Limit            int    `json:"limit,omitempty"`             // Max results (default 100)
	Sort             string `json:"sort,omitempty"`              // Sort field (default "title")
}

type ZoteroCollectionsResponse struct {
	Collections []CollectionResult `json:"collections"`
	Count       int                `json:"count"`
}

type CollectionResult struct {
	Key              string `json:"key"`                         // Pass as the collection filter to zotero-search
	Name             string `json:"name"`                        // Display name
	ParentCollection string `json:"parent_collection,omitempty"` // Empty for top-level collections
}

func ZoteroCollectionsTool() *mcp.Tool {
	inputschema, err := jsonschema.For[ZoteroCollectionsQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "zotero-collections",
		Description: "Browse the collection hierarchy of a Zotero library. Returns collection names, keys, and parent relationships. Use a collection key as the collection filter in zotero-search to narrow down which papers to ingest with paper-parse.",
		InputSchema: inputschema,
	}
}

func ZoteroCollectionsToolHandler(ctx context.Context, req *mcp.CallToolRequest, query ZoteroCollectionsQuery, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *ZoteroCollectionsResponse, error) {
	log.Info("zotero-collections tool called")

	apiKey, libraryID, err := zoteroCredentials()
	if err != nil {
		return nil, nil, err
	}

	collections, err := operations.ListZoteroCollections(ctx, apiKey, libraryID, operations.ListCollectionsParams{
		TopLevelOnly:     query.TopLevelOnly,
		ParentCollection: query.ParentCollection,
		Limit:            query.Limit,
		Sort:             query.Sort,
	}, log)
	if err != nil {
		return nil, nil, err
	}

	results := make([]CollectionResult, len(collections))
	for i, c := range collections {
		results[i] = CollectionResult{
			Key:              c.Key,
			Name:             c.Name,
			ParentCollection: c.ParentCollection,
		}
	}

	return nil, &ZoteroCollectionsResponse{
		Collections: results,
		Count:       len(results),
	}, nil
}
