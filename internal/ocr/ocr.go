// Package ocr converts rendered PDF pages to Markdown. The Markdown is the
// input to the layout parser, which reconstructs positioned text blocks from
// it, so providers should preserve reading order and heading structure.
package ocr

import (
	"context"

	"github.com/lectern-app/lectern/models"
)

// Provider turns the raw bytes of one PDF page into Markdown.
type Provider interface {
	// RecognizePage OCRs a single extracted PDF page and returns its
	// content as Markdown.
	RecognizePage(ctx context.Context, page models.DocumentPageData) (string, error)
}
