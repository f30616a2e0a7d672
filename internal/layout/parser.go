// Package layout reconstructs a page's visual structure from the Markdown an
// OCR service emits. Block positions are estimated from text heuristics (line
// counts, assumed characters per line), not measured: the output is an
// explicit approximation that renders plausibly at any zoom level, not ground
// truth geometry. The parser is total: any input string produces some
// PageLayout, worst case a single paragraph block.
package layout

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/lectern-app/lectern/models"
)

var (
	headingRe  = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	bulletRe   = regexp.MustCompile(`^[-*]\s+`)
	orderedRe  = regexp.MustCompile(`^\d+\.\s+`)
	tableSepRe = regexp.MustCompile(`^\|[\s\-|]+\|$`)
	captionRe  = regexp.MustCompile(`(?i)^(Figure|Table|Fig\.)\s*\d*[.:]`)
)

// Parser converts OCR Markdown into positioned text blocks. Block IDs are
// monotonically increasing and unique within one parser; they carry no
// meaning beyond uniqueness. A Parser is not safe for concurrent use; create
// one per goroutine (they are cheap).
type Parser struct {
	cfg    Config
	nextID int
}

// NewParser creates a parser with the given heuristic configuration.
func NewParser(cfg Config) *Parser {
	return &Parser{cfg: cfg}
}

// Reset restarts the block-ID counter, for deterministic output across test
// runs.
func (p *Parser) Reset() {
	p.nextID = 0
}

// parseState is the per-page accumulation state for one Parse call.
type parseState struct {
	blocks   []models.TextBlock
	currentY float64
	listBuf  []string
	tableBuf []string
}

// Parse runs a single forward pass over the Markdown lines and produces the
// reconstructed layout for one page. Block order equals line order; reading
// order is assumed to be top-to-bottom as emitted by the OCR service.
func (p *Parser) Parse(markdown string, pageNumber int, pageWidth, pageHeight float64) models.PageLayout {
	st := &parseState{currentY: p.cfg.TopMargin}

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			if len(st.listBuf) > 0 || len(st.tableBuf) > 0 {
				p.flushBuffers(st)
			} else {
				st.currentY += p.cfg.ParagraphGap / 2
			}

		case headingRe.MatchString(trimmed):
			p.flushBuffers(st)
			m := headingRe.FindStringSubmatch(trimmed)
			level := len(m[1])
			st.currentY += p.cfg.HeadingGap
			height := (1.8 - float64(level)*0.1) * p.cfg.LineHeight
			p.emit(st, models.BlockHeading, level, m[2], p.cfg.BodyX, p.cfg.BodyWidth, height)

		case bulletRe.MatchString(trimmed) || orderedRe.MatchString(trimmed):
			st.listBuf = append(st.listBuf, trimmed)

		case strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|"):
			if !tableSepRe.MatchString(trimmed) {
				st.tableBuf = append(st.tableBuf, trimmed)
			}

		case isEquation(trimmed):
			p.flushBuffers(st)
			p.emit(st, models.BlockEquation, 0, trimmed, p.cfg.DisplayX, p.cfg.DisplayWidth, 1.5*p.cfg.LineHeight)

		case captionRe.MatchString(trimmed):
			p.flushBuffers(st)
			p.emit(st, models.BlockCaption, 0, trimmed, p.cfg.DisplayX, p.cfg.DisplayWidth, p.cfg.LineHeight)

		default:
			// A bare line ends any pending list or table.
			p.flushBuffers(st)
			lines := math.Ceil(float64(len(trimmed)) / float64(p.cfg.CharsPerLine))
			if lines < 1 {
				lines = 1
			}
			p.emit(st, models.BlockParagraph, 0, trimmed, p.cfg.BodyX, p.cfg.BodyWidth, lines*p.cfg.LineHeight)
		}
	}

	p.flushBuffers(st)

	columns := p.DetectColumns(st.blocks)
	blocks := st.blocks
	if columns == 2 {
		blocks = p.ApplyColumnLayout(blocks)
	}

	return models.PageLayout{
		PageNumber:  pageNumber,
		Width:       pageWidth,
		Height:      pageHeight,
		Columns:     columns,
		Blocks:      blocks,
		RawMarkdown: markdown,
	}
}

// isEquation reports whether a line is a single-line display equation,
// either $$...$$ or \[...\].
func isEquation(line string) bool {
	if strings.HasPrefix(line, "$$") && strings.HasSuffix(line, "$$") && len(line) > 4 {
		return true
	}
	return strings.HasPrefix(line, `\[`) && strings.HasSuffix(line, `\]`) && len(line) > 4
}

// flushBuffers emits any accumulated list or table as a single block.
func (p *Parser) flushBuffers(st *parseState) {
	if len(st.listBuf) > 0 {
		content := strings.Join(st.listBuf, "\n")
		height := float64(len(st.listBuf)) * p.cfg.LineHeight
		p.emit(st, models.BlockList, 0, content, p.cfg.ListX, p.cfg.ListWidth, height)
		st.listBuf = nil
	}
	if len(st.tableBuf) > 0 {
		content := strings.Join(st.tableBuf, "\n")
		height := float64(len(st.tableBuf)) * p.cfg.LineHeight
		p.emit(st, models.BlockTable, 0, content, p.cfg.BodyX, p.cfg.BodyWidth, height)
		st.tableBuf = nil
	}
}

// emit appends a block at the current y cursor and advances the cursor by
// the block height plus the paragraph gap.
func (p *Parser) emit(st *parseState, t models.BlockType, level int, content string, x, width, height float64) {
	st.blocks = append(st.blocks, models.TextBlock{
		ID:      fmt.Sprintf("block-%d", p.nextID),
		Type:    t,
		Level:   level,
		Content: content,
		Position: models.NormalizedRect{
			X:      x,
			Y:      st.currentY,
			Width:  width,
			Height: height,
		},
	})
	p.nextID++
	st.currentY += height + p.cfg.ParagraphGap
}
