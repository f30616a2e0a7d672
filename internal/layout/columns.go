package layout

import "github.com/lectern-app/lectern/models"

// DetectColumns guesses whether a block set came from a one- or two-column
// page by bucketing blocks on their x position. Both sides need more than
// MinColumnBlocks blocks before the page counts as two-column; sparse pages
// stay single-column.
func (p *Parser) DetectColumns(blocks []models.TextBlock) int {
	left, right := 0, 0
	for _, b := range blocks {
		if b.Position.X < p.cfg.ColumnLeftMax {
			left++
		} else if b.Position.X > p.cfg.ColumnLeftMax {
			right++
		}
	}
	if left > p.cfg.MinColumnBlocks && right > p.cfg.MinColumnBlocks {
		return 2
	}
	return 1
}

// ApplyColumnLayout re-buckets blocks into two evenly split columns with a
// fixed gap, assigning each block by its current x position. This is a
// coarse one-shot re-bucketing, not a multi-pass layout solver: block order
// is preserved and no true multi-column reading order is reconstructed.
// The input slice is not modified.
func (p *Parser) ApplyColumnLayout(blocks []models.TextBlock) []models.TextBlock {
	colWidth := (p.cfg.BodyWidth - p.cfg.ColumnGap) / 2

	out := make([]models.TextBlock, len(blocks))
	for i, b := range blocks {
		col := 0
		if b.Position.X > p.cfg.ColumnSplit {
			col = 1
		}
		b.Column = col
		b.Position.X = p.cfg.BodyX + float64(col)*(colWidth+p.cfg.ColumnGap)
		b.Position.Width = colWidth
		out[i] = b
	}
	return out
}
