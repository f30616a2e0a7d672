package models

import "time"

// NormalizedRect is a rectangle expressed as fractions of a page's width and
// height, all components in [0,1]. It is independent of zoom level and is the
// unit used for persisted highlight/translation geometry. Values are never
// mutated after creation.
type NormalizedRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PixelRect is an absolute pixel-space rectangle within one rendered page at
// a specific zoom scale. Ephemeral: produced by browser selections and render
// passes, never persisted.
type PixelRect struct {
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	PageNumber int     `json:"page_number"`
}

// TextItem is one positioned run of extracted PDF text, normalized 0..1 per
// page. It is the authoritative mapping from character offsets to on-page
// positions for PDF-format papers. Built once at ingestion, immutable after.
type TextItem struct {
	Str         string  `json:"str"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	StartOffset int     `json:"start_offset"`
	EndOffset   int     `json:"end_offset"`
}

// PageText is the authoritative extracted text of one PDF page.
type PageText struct {
	PageNumber  int    `json:"page_number"`
	TextContent string `json:"text_content"`
}

// SectionText is the authoritative text of one HTML section.
type SectionText struct {
	SectionID   string `json:"section_id"`
	TextContent string `json:"text_content"`
}

// Citation is an LLM-asserted span of source text backing a claim in a chat
// answer. It is a closed union: PdfCitation addresses a page of extracted PDF
// text, HtmlCitation addresses an HTML section. Citations are transient and
// are only persisted if the user saves one as a Highlight.
type Citation interface {
	isCitation()
}

// PdfCitation is a character-offset span into one PDF page's extracted text.
type PdfCitation struct {
	Page     int    `json:"page"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Quote    string `json:"quote"`
	Verified bool   `json:"verified,omitempty"`
}

func (PdfCitation) isCitation() {}

// HtmlCitation is a character-offset span into one HTML section's text.
type HtmlCitation struct {
	SectionID string `json:"section_id"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
	Quote     string `json:"quote"`
	Verified  bool   `json:"verified,omitempty"`
}

func (HtmlCitation) isCitation() {}

// PaperFormat distinguishes paginated PDF papers from sectioned HTML papers.
type PaperFormat string

const (
	FormatPDF  PaperFormat = "pdf"
	FormatHTML PaperFormat = "html"
)

// Highlight is a persisted user annotation over a span of paper text. Rects
// must be non-empty for the highlight to render, though a record may exist
// transiently with empty rects before geometry is computed.
type Highlight struct {
	ID           string           `json:"id"`
	PaperID      string           `json:"paper_id"`
	Format       PaperFormat      `json:"format"`
	PageNumber   int              `json:"page_number,omitempty"`
	SectionID    string           `json:"section_id,omitempty"`
	StartOffset  int              `json:"start_offset"`
	EndOffset    int              `json:"end_offset"`
	SelectedText string           `json:"selected_text"`
	Rects        []NormalizedRect `json:"rects"`
	Color        string           `json:"color"`
	Note         string           `json:"note,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// InlineTranslation is a persisted translation of a span of paper text,
// rendered as an opaque overlay covering Rects. IsActive toggles between
// showing the original and the translated text in place.
type InlineTranslation struct {
	ID             string           `json:"id"`
	PaperID        string           `json:"paper_id"`
	Format         PaperFormat      `json:"format"`
	PageNumber     int              `json:"page_number,omitempty"`
	SectionID      string           `json:"section_id,omitempty"`
	StartOffset    int              `json:"start_offset"`
	EndOffset      int              `json:"end_offset"`
	SelectedText   string           `json:"selected_text"`
	TranslatedText string           `json:"translated_text"`
	TargetLanguage string           `json:"target_language"`
	SourceLanguage string           `json:"source_language,omitempty"`
	IsActive       bool             `json:"is_active"`
	Rects          []NormalizedRect `json:"rects"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// BlockType classifies a TextBlock inferred from OCR Markdown.
type BlockType string

const (
	BlockHeading   BlockType = "heading"
	BlockParagraph BlockType = "paragraph"
	BlockList      BlockType = "list"
	BlockListItem  BlockType = "list-item"
	BlockTable     BlockType = "table"
	BlockCaption   BlockType = "caption"
	BlockEquation  BlockType = "equation"
	BlockFootnote  BlockType = "footnote"
)

// TextBlock is one semantic unit inferred by the layout parser from OCR
// Markdown. Positions are estimated from text heuristics, not measured.
type TextBlock struct {
	ID           string         `json:"id"`
	Type         BlockType      `json:"type"`
	Level        int            `json:"level,omitempty"`
	Content      string         `json:"content"`
	Position     NormalizedRect `json:"position"`
	Column       int            `json:"column,omitempty"`
	Translation  string         `json:"translation,omitempty"`
	IsTranslated bool           `json:"is_translated"`
}

// PageLayout is the reconstructed layout of one OCR'd page. Rebuilt wholesale
// whenever the source Markdown changes.
type PageLayout struct {
	PageNumber  int         `json:"page_number"`
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	Columns     int         `json:"columns"`
	Blocks      []TextBlock `json:"blocks"`
	RawMarkdown string      `json:"raw_markdown"`
}

// PaperMetadata holds bibliographic metadata for a paper.
type PaperMetadata struct {
	Title           string   `json:"title,omitempty"`
	Authors         []string `json:"authors,omitempty"`
	PublicationDate string   `json:"publication_date,omitempty"`
	Publication     string   `json:"publication,omitempty"`
	DOI             string   `json:"doi,omitempty"`
	Abstract        string   `json:"abstract,omitempty"`
}

// SourceInfo records where a paper came from.
type SourceInfo struct {
	ZoteroID string `json:"zotero_id,omitempty"`
	URL      string `json:"url,omitempty"`
}

// PaperInfo is the summary row returned when listing stored papers.
type PaperInfo struct {
	PaperID    string      `json:"paper_id"`
	Title      string      `json:"title,omitempty"`
	Authors    []string    `json:"authors,omitempty"`
	DOI        string      `json:"doi,omitempty"`
	Format     PaperFormat `json:"format"`
	SourceInfo SourceInfo  `json:"source_info,omitempty"`
}

// PageDimensions is the unscaled pixel size of one rendered page.
type PageDimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Paper is a fully ingested paper: metadata plus the per-page (or
// per-section) text and the positioned text items the core algorithms work
// over. PageDimensions entries may be missing for pages that failed
// extraction; geometry treats those pages as "rects unavailable".
type Paper struct {
	Metadata       PaperMetadata          `json:"metadata,omitempty"`
	Format         PaperFormat            `json:"format"`
	Pages          []PageText             `json:"pages,omitempty"`
	Sections       []SectionText          `json:"sections,omitempty"`
	TextItems      map[int][]TextItem     `json:"text_items,omitempty"`
	PageDimensions map[int]PageDimensions `json:"page_dimensions,omitempty"`
}

// DocumentData is raw fetched document bytes plus the detected type.
type DocumentData struct {
	Data []byte
	Type string
}

// DocumentPageData is the raw bytes of one extracted PDF page.
type DocumentPageData []byte

// DocumentPages is an ordered slice of extracted PDF pages.
type DocumentPages []DocumentPageData

// Selection is a browser text selection handed to the annotation adapters:
// character offsets within a page or section plus the client pixel rects of
// the selected ranges and the rendered page size they are relative to.
type Selection struct {
	PaperID      string      `json:"paper_id"`
	Format       PaperFormat `json:"format"`
	PageNumber   int         `json:"page_number,omitempty"`
	SectionID    string      `json:"section_id,omitempty"`
	StartOffset  int         `json:"start_offset"`
	EndOffset    int         `json:"end_offset"`
	SelectedText string      `json:"selected_text"`
	PixelRects   []PixelRect `json:"pixel_rects,omitempty"`
	PageWidth    float64     `json:"page_width"`
	PageHeight   float64     `json:"page_height"`
}
