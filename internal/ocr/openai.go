package ocr

import (
	"context"
	"encoding/base64"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"

	"github.com/lectern-app/lectern/internal/logger"
	"github.com/lectern-app/lectern/models"
)

const ocrPrompt = `Transcribe this page from an academic paper into Markdown.

- Use # through ###### for section headings, matching their visual hierarchy.
- Concatenate columns in normal reading order.
- Render bulleted and numbered lists with Markdown list syntax.
- Render tables as Markdown tables (| cell | cell |).
- Render display equations on their own line, wrapped in $$...$$ or \[...\].
- Prefix figure and table captions with their label (e.g. "Figure 1: ...").
- Exclude running headers, footers, and page numbers.
- Separate paragraphs with a blank line.

Output only the Markdown, no commentary.`

// OpenAIProvider implements Provider using the OpenAI Responses API.
type OpenAIProvider struct {
	apiKey string
	log    logger.Logger
}

// NewOpenAIProvider creates a provider using the given API key.
func NewOpenAIProvider(apiKey string, log logger.Logger) *OpenAIProvider {
	return &OpenAIProvider{apiKey: apiKey, log: log}
}

// RecognizePage sends one extracted PDF page to the model and returns its
// Markdown transcription.
func (p *OpenAIProvider) RecognizePage(ctx context.Context, page models.DocumentPageData) (string, error) {
	p.log.Debug("OCR request for page of %d bytes", len(page))

	client := openai.NewClient(option.WithAPIKey(p.apiKey))
	encodedPageData := base64.StdEncoding.EncodeToString(page)

	response, err := client.Responses.New(ctx, responses.ResponseNewParams{
		Model: shared.ChatModelGPT5Mini,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(
					responses.ResponseInputMessageContentListParam{
						responses.ResponseInputContentUnionParam{
							OfInputFile: &responses.ResponseInputFileParam{
								FileData: openai.String("data:application/pdf;base64," + encodedPageData),
								Filename: openai.String("page.pdf"),
							},
						},
						responses.ResponseInputContentParamOfInputText(ocrPrompt),
					},
					"user",
				),
			},
		},
	})
	if err != nil {
		p.log.Error("OCR request failed: %v", err)
		return "", err
	}

	return response.OutputText(), nil
}

var _ Provider = (*OpenAIProvider)(nil)
