package documents

import (
	"context"
	"fmt"
	"strings"

	"github.com/Epistemic-Technology/zotero/zotero"

	"github.com/lectern-app/lectern/models"
)

// FetchZoteroMetadata retrieves bibliographic metadata for a Zotero item.
// If the zoteroID is an attachment, it fetches the parent item's metadata.
// Returns nil if the item is not found or has no useful metadata.
func FetchZoteroMetadata(ctx context.Context, zoteroID string, apiKey string, libraryID string) (*models.PaperMetadata, error) {
	if zoteroID == "" || apiKey == "" || libraryID == "" {
		return nil, fmt.Errorf("zoteroID, apiKey, and libraryID are required")
	}

	client := zotero.NewClient(libraryID, zotero.LibraryTypeUser, zotero.WithAPIKey(apiKey))

	item, err := client.Item(ctx, zoteroID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Zotero item %s: %w", zoteroID, err)
	}

	// If this is an attachment, fetch the parent item instead
	if item.Data.ItemType == "attachment" && item.Data.ParentItem != "" {
		parentItem, err := client.Item(ctx, item.Data.ParentItem, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch parent item %s: %w", item.Data.ParentItem, err)
		}
		item = parentItem
	}

	// Skip if still an attachment (orphaned attachment with no parent)
	if item.Data.ItemType == "attachment" {
		return nil, nil
	}

	return zoteroItemToMetadata(item), nil
}

// zoteroItemToMetadata converts a Zotero Item to our metadata structure
func zoteroItemToMetadata(item *zotero.Item) *models.PaperMetadata {
	metadata := &models.PaperMetadata{
		Title:    item.Data.Title,
		Abstract: item.Data.AbstractNote,
	}

	for _, creator := range item.Data.Creators {
		var name string
		if creator.Name != "" {
			name = creator.Name
		} else if creator.FirstName != "" || creator.LastName != "" {
			name = strings.TrimSpace(creator.FirstName + " " + creator.LastName)
		}
		if name != "" {
			metadata.Authors = append(metadata.Authors, name)
		}
	}

	// The zotero library uses reflection to populate Extra with all
	// type-specific fields.
	if item.Data.Extra != nil {
		if val, ok := item.Data.Extra["date"].(string); ok {
			metadata.PublicationDate = val
		}
		if val, ok := item.Data.Extra["publicationTitle"].(string); ok {
			metadata.Publication = val
		}
		if val, ok := item.Data.Extra["DOI"].(string); ok {
			metadata.DOI = val
		}
	}

	return metadata
}

// MergeMetadata merges external metadata with LLM-extracted metadata.
// External metadata takes priority for all fields, falling back to the
// extracted value when the external field is empty.
func MergeMetadata(external *models.PaperMetadata, extracted *models.PaperMetadata) models.PaperMetadata {
	if external == nil && extracted == nil {
		return models.PaperMetadata{}
	}
	if external == nil {
		return *extracted
	}
	if extracted == nil {
		return *external
	}

	merged := *external
	if merged.Title == "" {
		merged.Title = extracted.Title
	}
	if len(merged.Authors) == 0 {
		merged.Authors = extracted.Authors
	}
	if merged.PublicationDate == "" {
		merged.PublicationDate = extracted.PublicationDate
	}
	if merged.Publication == "" {
		merged.Publication = extracted.Publication
	}
	if merged.DOI == "" {
		merged.DOI = extracted.DOI
	}
	if merged.Abstract == "" {
		merged.Abstract = extracted.Abstract
	}
	return merged
}
