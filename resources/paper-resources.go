package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lectern-app/lectern/internal/storage"
)

// PaperResourceHandler serves paper:// resources backed by the paper store.
type PaperResourceHandler struct {
	store storage.Store
}

func NewPaperResourceHandler(store storage.Store) *PaperResourceHandler {
	return &PaperResourceHandler{store: store}
}

// ListResources returns the resources available for every stored paper.
func (h *PaperResourceHandler) ListResources(ctx context.Context) ([]mcp.Resource, error) {
	papers, err := h.store.ListPapers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list papers: %w", err)
	}

	var resources []mcp.Resource
	for _, paper := range papers {
		resources = append(resources, mcp.Resource{
			URI:         fmt.Sprintf("paper://%s", paper.PaperID),
			Name:        fmt.Sprintf("%s (Paper)", paper.Title),
			Description: fmt.Sprintf("Ingested paper: %s", paper.Title),
			MIMEType:    "application/json",
		})

		resources = append(resources, mcp.Resource{
			URI:         fmt.Sprintf("paper://%s/metadata", paper.PaperID),
			Name:        fmt.Sprintf("%s (Metadata)", paper.Title),
			Description: "Paper metadata including title, authors, DOI, and abstract",
			MIMEType:    "application/json",
		})

		resources = append(resources, mcp.Resource{
			URI:         fmt.Sprintf("paper://%s/highlights", paper.PaperID),
			Name:        fmt.Sprintf("%s (Highlights)", paper.Title),
			Description: "All highlights saved on the paper",
			MIMEType:    "application/json",
		})

		resources = append(resources, mcp.Resource{
			URI:         fmt.Sprintf("paper://%s/translations", paper.PaperID),
			Name:        fmt.Sprintf("%s (Translations)", paper.Title),
			Description: "All inline translations saved on the paper",
			MIMEType:    "application/json",
		})
	}

	return resources, nil
}

// ReadResource reads a specific resource by URI.
//
// URI forms:
//
//	paper://{id}                              paper summary
//	paper://{id}/metadata                     bibliographic metadata
//	paper://{id}/pages                        all page text (PDF papers)
//	paper://{id}/pages/{n}                    one page's text
//	paper://{id}/pages/{n}/text-items         positioned text runs for a page
//	paper://{id}/pages/{n}/layout             reconstructed OCR layout for a page
//	paper://{id}/sections                     all section text (HTML papers)
//	paper://{id}/sections/{sectionID}         one section's text
//	paper://{id}/highlights                   saved highlights
//	paper://{id}/translations                 saved inline translations
func (h *PaperResourceHandler) ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	if !strings.HasPrefix(uri, "paper://") {
		return nil, fmt.Errorf("invalid URI scheme, expected paper://")
	}

	path := strings.TrimPrefix(uri, "paper://")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		return nil, fmt.Errorf("invalid URI, missing paper ID")
	}

	paperID := parts[0]
	resourceType := ""
	if len(parts) > 1 {
		resourceType = parts[1]
	}

	var content string
	var err error

	switch resourceType {
	case "":
		content, err = h.getPaperSummary(ctx, paperID)
	case "metadata":
		content, err = h.getMetadata(ctx, paperID)
	case "pages":
		switch {
		case len(parts) == 2:
			content, err = h.getAllPages(ctx, paperID)
		case len(parts) >= 3:
			var pageNum int
			pageNum, err = strconv.Atoi(parts[2])
			if err != nil {
				return nil, fmt.Errorf("invalid page number: %s", parts[2])
			}
			sub := ""
			if len(parts) > 3 {
				sub = parts[3]
			}
			switch sub {
			case "":
				content, err = h.getPage(ctx, paperID, pageNum)
			case "text-items":
				content, err = h.getTextItems(ctx, paperID, pageNum)
			case "layout":
				content, err = h.getLayout(ctx, paperID, pageNum)
			default:
				return nil, fmt.Errorf("unknown page resource: %s", sub)
			}
		}
	case "sections":
		if len(parts) > 2 {
			content, err = h.getSection(ctx, paperID, parts[2])
		} else {
			content, err = h.getAllSections(ctx, paperID)
		}
	case "highlights":
		content, err = h.getHighlights(ctx, paperID)
	case "translations":
		content, err = h.getTranslations(ctx, paperID)
	default:
		return nil, fmt.Errorf("unknown resource type: %s", resourceType)
	}

	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     content,
			},
		},
	}, nil
}

func (h *PaperResourceHandler) getPaperSummary(ctx context.Context, paperID string) (string, error) {
	paper, err := h.store.GetPaper(ctx, paperID)
	if err != nil {
		return "", err
	}

	highlights, err := h.store.ListHighlights(ctx, paperID)
	if err != nil {
		return "", err
	}
	translations, err := h.store.ListTranslations(ctx, paperID)
	if err != nil {
		return "", err
	}

	summary := map[string]interface{}{
		"paper_id":            paperID,
		"format":              paper.Format,
		"metadata":            paper.Metadata,
		"page_count":          len(paper.Pages),
		"section_count":       len(paper.Sections),
		"highlight_count":     len(highlights),
		"translation_count":   len(translations),
		"available_resources": storage.CalculateResourcePaths(paperID, paper),
	}

	return marshalResource(summary, "summary")
}

func (h *PaperResourceHandler) getMetadata(ctx context.Context, paperID string) (string, error) {
	metadata, err := h.store.GetMetadata(ctx, paperID)
	if err != nil {
		return "", err
	}
	return marshalResource(metadata, "metadata")
}

func (h *PaperResourceHandler) getPage(ctx context.Context, paperID string, pageNum int) (string, error) {
	page, err := h.store.GetPage(ctx, paperID, pageNum)
	if err != nil {
		return "", err
	}

	result := map[string]interface{}{
		"page_number": pageNum,
		"content":     page,
	}
	return marshalResource(result, "page")
}

func (h *PaperResourceHandler) getAllPages(ctx context.Context, paperID string) (string, error) {
	paper, err := h.store.GetPaper(ctx, paperID)
	if err != nil {
		return "", err
	}

	result := map[string]interface{}{
		"page_count": len(paper.Pages),
		"pages":      paper.Pages,
	}
	return marshalResource(result, "pages")
}

func (h *PaperResourceHandler) getTextItems(ctx context.Context, paperID string, pageNum int) (string, error) {
	items, err := h.store.GetTextItems(ctx, paperID, pageNum)
	if err != nil {
		return "", err
	}

	result := map[string]interface{}{
		"page_number": pageNum,
		"item_count":  len(items),
		"text_items":  items,
	}
	return marshalResource(result, "text items")
}

func (h *PaperResourceHandler) getLayout(ctx context.Context, paperID string, pageNum int) (string, error) {
	layout, err := h.store.GetLayout(ctx, paperID, pageNum)
	if err != nil {
		return "", err
	}
	return marshalResource(layout, "layout")
}

func (h *PaperResourceHandler) getSection(ctx context.Context, paperID string, sectionID string) (string, error) {
	section, err := h.store.GetSection(ctx, paperID, sectionID)
	if err != nil {
		return "", err
	}

	result := map[string]interface{}{
		"section_id": sectionID,
		"content":    section,
	}
	return marshalResource(result, "section")
}

func (h *PaperResourceHandler) getAllSections(ctx context.Context, paperID string) (string, error) {
	paper, err := h.store.GetPaper(ctx, paperID)
	if err != nil {
		return "", err
	}

	result := map[string]interface{}{
		"section_count": len(paper.Sections),
		"sections":      paper.Sections,
	}
	return marshalResource(result, "sections")
}

func (h *PaperResourceHandler) getHighlights(ctx context.Context, paperID string) (string, error) {
	highlights, err := h.store.ListHighlights(ctx, paperID)
	if err != nil {
		return "", err
	}

	result := map[string]interface{}{
		"highlight_count": len(highlights),
		"highlights":      highlights,
	}
	return marshalResource(result, "highlights")
}

func (h *PaperResourceHandler) getTranslations(ctx context.Context, paperID string) (string, error) {
	translations, err := h.store.ListTranslations(ctx, paperID)
	if err != nil {
		return "", err
	}

	result := map[string]interface{}{
		"translation_count": len(translations),
		"translations":      translations,
	}
	return marshalResource(result, "translations")
}

func marshalResource(v interface{}, what string) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s: %w", what, err)
	}
	return string(data), nil
}
