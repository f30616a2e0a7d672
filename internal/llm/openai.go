package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"

	"github.com/lectern-app/lectern/internal/logger"
	"github.com/lectern-app/lectern/models"
)

var (
	// chatAnswerSchema is the JSON schema for chat answers with citations.
	// Every citation carries both page and section_id; the irrelevant one is
	// zero/empty depending on the paper format.
	chatAnswerSchema = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answer": map[string]any{
				"type": "string",
			},
			"citations": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"page": map[string]any{
							"type": "integer",
						},
						"section_id": map[string]any{
							"type": "string",
						},
						"start": map[string]any{
							"type": "integer",
						},
						"end": map[string]any{
							"type": "integer",
						},
						"quote": map[string]any{
							"type": "string",
						},
					},
					"required":             []string{"page", "section_id", "start", "end", "quote"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"answer", "citations"},
		"additionalProperties": false,
	}

	// translationSchema is the JSON schema for span translations.
	translationSchema = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"translated_text": map[string]any{
				"type": "string",
			},
			"source_language": map[string]any{
				"type": "string",
			},
		},
		"required":             []string{"translated_text", "source_language"},
		"additionalProperties": false,
	}

	// metadataSchema is the JSON schema for extracted bibliographic metadata.
	metadataSchema = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type": "string",
			},
			"authors": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"publication_date": map[string]any{
				"type": "string",
			},
			"publication": map[string]any{
				"type": "string",
			},
			"doi": map[string]any{
				"type": "string",
			},
			"abstract": map[string]any{
				"type": "string",
			},
		},
		"required":             []string{"title", "authors", "publication_date", "publication", "doi", "abstract"},
		"additionalProperties": false,
	}
)

// rawCitation is the wire form of a citation before it is narrowed to the
// paper's format.
type rawCitation struct {
	Page      int    `json:"page"`
	SectionID string `json:"section_id"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
	Quote     string `json:"quote"`
}

// ChatWithPaper answers a question about a paper, returning the answer text
// and the citations the model asserted. Citations come back unverified; the
// caller is expected to validate them against the stored paper text.
func ChatWithPaper(ctx context.Context, apiKey string, paper *models.Paper, question string, log logger.Logger) (string, []models.Citation, error) {
	sources := buildSourceText(paper)
	log.Info("Answering question against paper %q (%d source chars)", paper.Metadata.Title, len(sources))

	prompt := `You are answering a question about an academic paper. The paper's text is given below, divided into numbered sources. Answer the question using only the paper's content.

For every claim in your answer, include a citation pointing at the exact span of source text that supports it:
- "page": the page number for PDF sources (the number after "Page" in the source header), or 0 for section sources.
- "section_id": the section ID for HTML sources (the ID after "Section" in the source header), or "" for page sources.
- "start" and "end": the character offsets of the supporting span within that source's text, counted from 0 at the first character after the source header line. "end" is exclusive.
- "quote": the exact text of the span, copied verbatim from the source.

Be precise with offsets: the quote must be the text found between start and end in the source.

` + sources + `

Question: ` + question

	client := openai.NewClient(option.WithAPIKey(apiKey))
	response, err := RateLimitedCall(ctx, estimatedChatTokens(sources), log, func(ctx context.Context) (*responses.Response, error) {
		return client.Responses.New(ctx, responses.ResponseNewParams{
			Model: shared.ChatModelGPT5Mini,
			Input: responses.ResponseNewParamsInputUnion{
				OfInputItemList: responses.ResponseInputParam{
					responses.ResponseInputItemParamOfMessage(
						responses.ResponseInputMessageContentListParam{
							responses.ResponseInputContentParamOfInputText(prompt),
						},
						"user",
					),
				},
			},
			Text: responses.ResponseTextConfigParam{
				Format: responses.ResponseFormatTextConfigParamOfJSONSchema("chat_answer", chatAnswerSchema),
			},
		})
	})
	if err != nil {
		log.Error("Chat request failed: %v", err)
		return "", nil, err
	}

	var result struct {
		Answer    string        `json:"answer"`
		Citations []rawCitation `json:"citations"`
	}
	if err := json.Unmarshal([]byte(response.OutputText()), &result); err != nil {
		return "", nil, fmt.Errorf("failed to decode chat answer: %w", err)
	}

	citations := make([]models.Citation, 0, len(result.Citations))
	for _, raw := range result.Citations {
		citations = append(citations, narrowCitation(raw, paper.Format))
	}

	log.Info("Chat answer produced with %d citations", len(citations))
	return result.Answer, citations, nil
}

// narrowCitation converts a wire citation into the union member matching the
// paper format.
func narrowCitation(raw rawCitation, format models.PaperFormat) models.Citation {
	if format == models.FormatHTML {
		return models.HtmlCitation{
			SectionID: raw.SectionID,
			Start:     raw.Start,
			End:       raw.End,
			Quote:     raw.Quote,
		}
	}
	return models.PdfCitation{
		Page:  raw.Page,
		Start: raw.Start,
		End:   raw.End,
		Quote: raw.Quote,
	}
}

// buildSourceText renders a paper's pages or sections with headers the model
// can cite against.
func buildSourceText(paper *models.Paper) string {
	var sb strings.Builder
	if paper.Format == models.FormatHTML {
		for _, section := range paper.Sections {
			sb.WriteString(fmt.Sprintf("=== Section %s ===\n", section.SectionID))
			sb.WriteString(section.TextContent)
			sb.WriteString("\n\n")
		}
		return sb.String()
	}
	for _, page := range paper.Pages {
		sb.WriteString(fmt.Sprintf("=== Page %d ===\n", page.PageNumber))
		sb.WriteString(page.TextContent)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func estimatedChatTokens(sources string) int {
	// Rough 4 chars/token plus output allowance.
	return len(sources)/4 + 1000
}

// Translate translates a span of paper text into the target language,
// returning the translation and the detected source language.
func Translate(ctx context.Context, apiKey string, text string, targetLanguage string, log logger.Logger) (string, string, error) {
	log.Info("Translating %d chars to %s", len(text), targetLanguage)

	client := openai.NewClient(option.WithAPIKey(apiKey))
	response, err := RateLimitedCall(ctx, len(text)/2+500, log, func(ctx context.Context) (*responses.Response, error) {
		return client.Responses.New(ctx, responses.ResponseNewParams{
			Model: shared.ChatModelGPT5Mini,
			Input: responses.ResponseNewParamsInputUnion{
				OfInputItemList: responses.ResponseInputParam{
					responses.ResponseInputItemParamOfMessage(
						responses.ResponseInputMessageContentListParam{
							responses.ResponseInputContentParamOfInputText(`Translate the following academic text into ` + targetLanguage + `. Preserve technical terms, citations markers, and mathematical notation as-is. Report the source language as an ISO 639-1 code.

Text:
` + text),
						},
						"user",
					),
				},
			},
			Text: responses.ResponseTextConfigParam{
				Format: responses.ResponseFormatTextConfigParamOfJSONSchema("translation", translationSchema),
			},
		})
	})
	if err != nil {
		log.Error("Translation request failed: %v", err)
		return "", "", err
	}

	var result struct {
		TranslatedText string `json:"translated_text"`
		SourceLanguage string `json:"source_language"`
	}
	if err := json.Unmarshal([]byte(response.OutputText()), &result); err != nil {
		return "", "", fmt.Errorf("failed to decode translation: %w", err)
	}

	return result.TranslatedText, result.SourceLanguage, nil
}

// ExtractMetadata pulls bibliographic metadata out of the opening text of a
// paper. Fields the model cannot find come back empty.
func ExtractMetadata(ctx context.Context, apiKey string, text string, log logger.Logger) (*models.PaperMetadata, error) {
	// The front matter is enough; sending the whole paper wastes tokens.
	if len(text) > 8000 {
		text = text[:8000]
	}
	log.Info("Extracting metadata from %d chars of front matter", len(text))

	client := openai.NewClient(option.WithAPIKey(apiKey))
	response, err := RateLimitedCall(ctx, len(text)/4+500, log, func(ctx context.Context) (*responses.Response, error) {
		return client.Responses.New(ctx, responses.ResponseNewParams{
			Model: shared.ChatModelGPT5Mini,
			Input: responses.ResponseNewParamsInputUnion{
				OfInputItemList: responses.ResponseInputParam{
					responses.ResponseInputItemParamOfMessage(
						responses.ResponseInputMessageContentListParam{
							responses.ResponseInputContentParamOfInputText(`Extract bibliographic metadata (title, authors, publication date, publication venue, DOI, abstract) from the beginning of this academic paper. Use empty strings or empty arrays for anything not present.

` + text),
						},
						"user",
					),
				},
			},
			Text: responses.ResponseTextConfigParam{
				Format: responses.ResponseFormatTextConfigParamOfJSONSchema("paper_metadata", metadataSchema),
			},
		})
	})
	if err != nil {
		log.Error("Metadata extraction failed: %v", err)
		return nil, err
	}

	var metadata models.PaperMetadata
	if err := json.Unmarshal([]byte(response.OutputText()), &metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}

	return &metadata, nil
}
