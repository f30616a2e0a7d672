package tools

import (
	"context"
	"fmt"
	"os"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lectern-app/lectern/internal/annotations"
	"github.com/lectern-app/lectern/internal/llm"
	"github.com/lectern-app/lectern/internal/logger"
	"github.com/lectern-app/lectern/internal/storage"
	"github.com/lectern-app/lectern/models"
)

type TranslateSelectionQuery struct {
	Selection      models.Selection `json:"selection"`
	TargetLanguage string           `json:"target_language"`
}

type TranslateSelectionResponse struct {
	Translation models.InlineTranslation `json:"translation"`
}

func TranslateSelectionTool() *mcp.Tool {
	inputschema, err := jsonschema.For[TranslateSelectionQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "translate-selection",
		Description: "Translate the selected span of a paper into the target language and persist it as an inline translation overlay. The overlay covers the selection's normalized rects and starts active (translated text shown in place of the original).",
		InputSchema: inputschema,
	}
}

func TranslateSelectionToolHandler(ctx context.Context, req *mcp.CallToolRequest, query TranslateSelectionQuery, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *TranslateSelectionResponse, error) {
	log.Info("translate-selection tool called for paper %s", query.Selection.PaperID)

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	if query.TargetLanguage == "" {
		return nil, nil, fmt.Errorf("target_language is required")
	}

	translated, sourceLang, err := llm.Translate(ctx, apiKey, query.Selection.SelectedText, query.TargetLanguage, log)
	if err != nil {
		log.Error("Translation failed: %v", err)
		return nil, nil, err
	}

	translation, err := annotations.TranslationFromSelection(query.Selection, translated, query.TargetLanguage, sourceLang)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid selection: %w", err)
	}
	if err := store.SaveTranslation(ctx, &translation); err != nil {
		log.Error("Failed to save translation: %v", err)
		return nil, nil, err
	}
	return nil, &TranslateSelectionResponse{Translation: translation}, nil
}

type TranslationToggleQuery struct {
	TranslationID string `json:"translation_id"`
	Active        bool   `json:"active"`
}

type TranslationToggleResponse struct {
	TranslationID string `json:"translation_id"`
	Active        bool   `json:"active"`
}

func TranslationToggleTool() *mcp.Tool {
	inputschema, err := jsonschema.For[TranslationToggleQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "translation-toggle",
		Description: "Toggle an inline translation between showing the translated text and the original.",
		InputSchema: inputschema,
	}
}

func TranslationToggleToolHandler(ctx context.Context, req *mcp.CallToolRequest, query TranslationToggleQuery, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *TranslationToggleResponse, error) {
	if err := store.SetTranslationActive(ctx, query.TranslationID, query.Active); err != nil {
		log.Error("Failed to toggle translation %s: %v", query.TranslationID, err)
		return nil, nil, err
	}
	return nil, &TranslationToggleResponse{TranslationID: query.TranslationID, Active: query.Active}, nil
}

type TranslationListQuery struct {
	PaperID string `json:"paper_id"`
}

type TranslationListResponse struct {
	Translations []models.InlineTranslation `json:"translations"`
}

func TranslationListTool() *mcp.Tool {
	inputschema, err := jsonschema.For[TranslationListQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "translation-list",
		Description: "List all inline translations saved for a paper.",
		InputSchema: inputschema,
	}
}

func TranslationListToolHandler(ctx context.Context, req *mcp.CallToolRequest, query TranslationListQuery, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *TranslationListResponse, error) {
	translations, err := store.ListTranslations(ctx, query.PaperID)
	if err != nil {
		log.Error("Failed to list translations: %v", err)
		return nil, nil, err
	}
	return nil, &TranslationListResponse{Translations: translations}, nil
}

type TranslationDeleteQuery struct {
	TranslationID string `json:"translation_id"`
}

type TranslationDeleteResponse struct {
	Deleted bool `json:"deleted"`
}

func TranslationDeleteTool() *mcp.Tool {
	inputschema, err := jsonschema.For[TranslationDeleteQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "translation-delete",
		Description: "Delete an inline translation by its id.",
		InputSchema: inputschema,
	}
}

func TranslationDeleteToolHandler(ctx context.Context, req *mcp.CallToolRequest, query TranslationDeleteQuery, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *TranslationDeleteResponse, error) {
	if err := store.DeleteTranslation(ctx, query.TranslationID); err != nil {
		log.Error("Failed to delete translation %s: %v", query.TranslationID, err)
		return nil, nil, err
	}
	return nil, &TranslationDeleteResponse{Deleted: true}, nil
}
