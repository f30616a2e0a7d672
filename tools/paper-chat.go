package tools

import (
	"context"
	"fmt"
	"os"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lectern-app/lectern/internal/annotations"
	"github.com/lectern-app/lectern/internal/citations"
	"github.com/lectern-app/lectern/internal/llm"
	"github.com/lectern-app/lectern/internal/logger"
	"github.com/lectern-app/lectern/internal/storage"
	"github.com/lectern-app/lectern/models"
)

type PaperChatQuery struct {
	PaperID  string `json:"paper_id"`
	Question string `json:"question"`
}

// ChatCitation is a validated citation flattened for the wire, with the
// normalized rects a client needs to render it as an overlay.
type ChatCitation struct {
	Format    string                  `json:"format"`
	Page      int                     `json:"page,omitempty"`
	SectionID string                  `json:"section_id,omitempty"`
	Start     int                     `json:"start"`
	End       int                     `json:"end"`
	Quote     string                  `json:"quote"`
	Rects     []models.NormalizedRect `json:"rects,omitempty"`
}

type PaperChatResponse struct {
	Answer    string         `json:"answer"`
	Citations []ChatCitation `json:"citations"`
	Dropped   int            `json:"dropped_citations,omitempty"`
}

func PaperChatTool() *mcp.Tool {
	inputschema, err := jsonschema.For[PaperChatQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "paper-chat",
		Description: "Ask a question about an ingested paper. The answer comes with citations pointing at exact spans of the paper's text; each citation is validated against the stored text (repairing drifted offsets where possible) and returned with the normalized rectangles needed to render it.",
		InputSchema: inputschema,
	}
}

func PaperChatToolHandler(ctx context.Context, req *mcp.CallToolRequest, query PaperChatQuery, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *PaperChatResponse, error) {
	log.Info("paper-chat tool called for paper %s", query.PaperID)

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	paper, err := store.GetPaper(ctx, query.PaperID)
	if err != nil {
		log.Error("paper-chat failed to load paper: %v", err)
		return nil, nil, err
	}

	answer, rawCitations, err := llm.ChatWithPaper(ctx, apiKey, paper, query.Question, log)
	if err != nil {
		log.Error("paper-chat failed: %v", err)
		return nil, nil, err
	}

	validated := citations.ValidateAll(rawCitations, paper.Pages, paper.Sections)
	dropped := len(rawCitations) - len(validated)
	if dropped > 0 {
		log.Warn("Dropped %d citations that could not be validated", dropped)
	}

	results := make([]ChatCitation, 0, len(validated))
	for _, c := range validated {
		results = append(results, flattenCitation(c, paper))
	}

	return nil, &PaperChatResponse{
		Answer:    answer,
		Citations: results,
		Dropped:   dropped,
	}, nil
}

func flattenCitation(c models.Citation, paper *models.Paper) ChatCitation {
	rects := annotations.RectsForCitation(c, paper.TextItems)
	switch cit := c.(type) {
	case models.PdfCitation:
		return ChatCitation{
			Format: string(models.FormatPDF),
			Page:   cit.Page,
			Start:  cit.Start,
			End:    cit.End,
			Quote:  cit.Quote,
			Rects:  rects,
		}
	case models.HtmlCitation:
		return ChatCitation{
			Format:    string(models.FormatHTML),
			SectionID: cit.SectionID,
			Start:     cit.Start,
			End:       cit.End,
			Quote:     cit.Quote,
			Rects:     rects,
		}
	}
	return ChatCitation{}
}
