package layout

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the heuristic constants the parser estimates geometry with.
// They are calibration values, not derived: different OCR engines and
// languages may need different line heights or column thresholds, so they
// are tunable without touching control flow.
type Config struct {
	// LineHeight is the estimated height of one line of body text as a
	// fraction of page height.
	LineHeight float64 `yaml:"line_height"`
	// CharsPerLine is the assumed number of characters per rendered line,
	// used to estimate paragraph heights.
	CharsPerLine int `yaml:"chars_per_line"`
	// TopMargin is where the y cursor starts on each page.
	TopMargin float64 `yaml:"top_margin"`
	// ParagraphGap is the vertical gap added after each emitted block.
	ParagraphGap float64 `yaml:"paragraph_gap"`
	// HeadingGap is the extra vertical gap added before a heading.
	HeadingGap float64 `yaml:"heading_gap"`

	// Default block placement, single-column.
	BodyX        float64 `yaml:"body_x"`
	BodyWidth    float64 `yaml:"body_width"`
	ListX        float64 `yaml:"list_x"`
	ListWidth    float64 `yaml:"list_width"`
	DisplayX     float64 `yaml:"display_x"`
	DisplayWidth float64 `yaml:"display_width"`

	// Column detection and re-flow.
	ColumnLeftMax   float64 `yaml:"column_left_max"`
	ColumnSplit     float64 `yaml:"column_split"`
	ColumnGap       float64 `yaml:"column_gap"`
	MinColumnBlocks int     `yaml:"min_column_blocks"`
}

// DefaultConfig returns the constants calibrated for typical academic-paper
// OCR output.
func DefaultConfig() Config {
	return Config{
		LineHeight:      0.025,
		CharsPerLine:    80,
		TopMargin:       0.02,
		ParagraphGap:    0.015,
		HeadingGap:      0.02,
		BodyX:           0.05,
		BodyWidth:       0.9,
		ListX:           0.08,
		ListWidth:       0.84,
		DisplayX:        0.1,
		DisplayWidth:    0.8,
		ColumnLeftMax:   0.45,
		ColumnSplit:     0.5,
		ColumnGap:       0.02,
		MinColumnBlocks: 2,
	}
}

// LoadConfig reads a YAML config file, filling unset fields from defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read layout config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse layout config: %w", err)
	}
	return cfg, nil
}
