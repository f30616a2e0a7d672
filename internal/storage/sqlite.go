package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lectern-app/lectern/models"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// ON DELETE CASCADE only fires with foreign keys enabled.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the database tables if they don't exist
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS papers (
		id TEXT PRIMARY KEY,
		title TEXT,
		authors TEXT,
		publication_date TEXT,
		publication TEXT,
		doi TEXT,
		abstract TEXT,
		format TEXT NOT NULL,
		zotero_id TEXT,
		url TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS pages (
		paper_id TEXT NOT NULL,
		page_number INTEGER NOT NULL,
		content TEXT,
		width REAL,
		height REAL,
		text_items TEXT,
		PRIMARY KEY (paper_id, page_number),
		FOREIGN KEY (paper_id) REFERENCES papers(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS sections (
		paper_id TEXT NOT NULL,
		section_index INTEGER NOT NULL,
		section_id TEXT NOT NULL,
		content TEXT,
		PRIMARY KEY (paper_id, section_id),
		FOREIGN KEY (paper_id) REFERENCES papers(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS layouts (
		paper_id TEXT NOT NULL,
		page_number INTEGER NOT NULL,
		layout TEXT NOT NULL,
		PRIMARY KEY (paper_id, page_number),
		FOREIGN KEY (paper_id) REFERENCES papers(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS highlights (
		id TEXT PRIMARY KEY,
		paper_id TEXT NOT NULL,
		format TEXT NOT NULL,
		page_number INTEGER,
		section_id TEXT,
		start_offset INTEGER NOT NULL,
		end_offset INTEGER NOT NULL,
		selected_text TEXT,
		rects TEXT,
		color TEXT,
		note TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (paper_id) REFERENCES papers(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS translations (
		id TEXT PRIMARY KEY,
		paper_id TEXT NOT NULL,
		format TEXT NOT NULL,
		page_number INTEGER,
		section_id TEXT,
		start_offset INTEGER NOT NULL,
		end_offset INTEGER NOT NULL,
		selected_text TEXT,
		translated_text TEXT,
		target_language TEXT,
		source_language TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		rects TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (paper_id) REFERENCES papers(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_papers_doi ON papers(doi);
	CREATE INDEX IF NOT EXISTS idx_papers_zotero_id ON papers(zotero_id);
	CREATE INDEX IF NOT EXISTS idx_highlights_paper ON highlights(paper_id);
	CREATE INDEX IF NOT EXISTS idx_translations_paper ON translations(paper_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// StorePaper stores an ingested paper and returns a unique paper ID
func (s *SQLiteStore) StorePaper(ctx context.Context, paper *models.Paper, sourceInfo *models.SourceInfo) (string, error) {
	paperID := GeneratePaperID(paper, sourceInfo)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	authorsJSON, err := json.Marshal(paper.Metadata.Authors)
	if err != nil {
		return "", fmt.Errorf("failed to marshal authors: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO papers (id, title, authors, publication_date, publication, doi, abstract, format, zotero_id, url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, paperID, paper.Metadata.Title, string(authorsJSON), paper.Metadata.PublicationDate,
		paper.Metadata.Publication, paper.Metadata.DOI, paper.Metadata.Abstract,
		string(paper.Format), sourceInfo.ZoteroID, sourceInfo.URL)
	if err != nil {
		return "", fmt.Errorf("failed to insert paper: %w", err)
	}

	for _, page := range paper.Pages {
		var width, height float64
		if dims, ok := paper.PageDimensions[page.PageNumber]; ok {
			width, height = dims.Width, dims.Height
		}
		itemsJSON, err := json.Marshal(paper.TextItems[page.PageNumber])
		if err != nil {
			return "", fmt.Errorf("failed to marshal text items for page %d: %w", page.PageNumber, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO pages (paper_id, page_number, content, width, height, text_items)
			VALUES (?, ?, ?, ?, ?, ?)
		`, paperID, page.PageNumber, page.TextContent, width, height, string(itemsJSON))
		if err != nil {
			return "", fmt.Errorf("failed to insert page %d: %w", page.PageNumber, err)
		}
	}

	for i, section := range paper.Sections {
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO sections (paper_id, section_index, section_id, content)
			VALUES (?, ?, ?, ?)
		`, paperID, i, section.SectionID, section.TextContent)
		if err != nil {
			return "", fmt.Errorf("failed to insert section %s: %w", section.SectionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return paperID, nil
}

// GetPaper retrieves a complete paper by ID
func (s *SQLiteStore) GetPaper(ctx context.Context, paperID string) (*models.Paper, error) {
	metadata, format, err := s.paperHeader(ctx, paperID)
	if err != nil {
		return nil, err
	}

	paper := &models.Paper{
		Metadata:       *metadata,
		Format:         format,
		TextItems:      make(map[int][]models.TextItem),
		PageDimensions: make(map[int]models.PageDimensions),
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT page_number, content, width, height, text_items FROM pages
		WHERE paper_id = ?
		ORDER BY page_number
	`, paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var page models.PageText
		var width, height float64
		var itemsJSON string
		if err := rows.Scan(&page.PageNumber, &page.TextContent, &width, &height, &itemsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		paper.Pages = append(paper.Pages, page)
		if width > 0 && height > 0 {
			paper.PageDimensions[page.PageNumber] = models.PageDimensions{Width: width, Height: height}
		}
		var items []models.TextItem
		if itemsJSON != "" {
			if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
				return nil, fmt.Errorf("failed to unmarshal text items for page %d: %w", page.PageNumber, err)
			}
		}
		if items != nil {
			paper.TextItems[page.PageNumber] = items
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pages: %w", err)
	}

	sections, err := s.getSections(ctx, paperID)
	if err != nil {
		return nil, err
	}
	paper.Sections = sections

	return paper, nil
}

// paperHeader reads the papers row for an ID.
func (s *SQLiteStore) paperHeader(ctx context.Context, paperID string) (*models.PaperMetadata, models.PaperFormat, error) {
	var metadata models.PaperMetadata
	var authorsJSON, format string

	err := s.db.QueryRowContext(ctx, `
		SELECT title, authors, publication_date, publication, doi, abstract, format
		FROM papers
		WHERE id = ?
	`, paperID).Scan(&metadata.Title, &authorsJSON, &metadata.PublicationDate,
		&metadata.Publication, &metadata.DOI, &metadata.Abstract, &format)

	if err == sql.ErrNoRows {
		return nil, "", fmt.Errorf("paper not found: %s", paperID)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to query paper: %w", err)
	}

	if err := json.Unmarshal([]byte(authorsJSON), &metadata.Authors); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal authors: %w", err)
	}

	return &metadata, models.PaperFormat(format), nil
}

// GetMetadata retrieves bibliographic metadata for a paper by ID
func (s *SQLiteStore) GetMetadata(ctx context.Context, paperID string) (*models.PaperMetadata, error) {
	metadata, _, err := s.paperHeader(ctx, paperID)
	return metadata, err
}

// GetPage retrieves the extracted text of one page (1-indexed)
func (s *SQLiteStore) GetPage(ctx context.Context, paperID string, pageNum int) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx, `
		SELECT content FROM pages
		WHERE paper_id = ? AND page_number = ?
	`, paperID, pageNum).Scan(&content)

	if err == sql.ErrNoRows {
		return "", fmt.Errorf("page not found: %s page %d", paperID, pageNum)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query page: %w", err)
	}

	return content, nil
}

// GetSection retrieves the text of one HTML section by section ID
func (s *SQLiteStore) GetSection(ctx context.Context, paperID string, sectionID string) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx, `
		SELECT content FROM sections
		WHERE paper_id = ? AND section_id = ?
	`, paperID, sectionID).Scan(&content)

	if err == sql.ErrNoRows {
		return "", fmt.Errorf("section not found: %s %s", paperID, sectionID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query section: %w", err)
	}

	return content, nil
}

func (s *SQLiteStore) getSections(ctx context.Context, paperID string) ([]models.SectionText, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT section_id, content FROM sections
		WHERE paper_id = ?
		ORDER BY section_index
	`, paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sections: %w", err)
	}
	defer rows.Close()

	var sections []models.SectionText
	for rows.Next() {
		var section models.SectionText
		if err := rows.Scan(&section.SectionID, &section.TextContent); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		sections = append(sections, section)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sections: %w", err)
	}

	return sections, nil
}

// GetTextItems retrieves the positioned text items of one page
func (s *SQLiteStore) GetTextItems(ctx context.Context, paperID string, pageNum int) ([]models.TextItem, error) {
	var itemsJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT text_items FROM pages
		WHERE paper_id = ? AND page_number = ?
	`, paperID, pageNum).Scan(&itemsJSON)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("page not found: %s page %d", paperID, pageNum)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query text items: %w", err)
	}

	var items []models.TextItem
	if itemsJSON != "" {
		if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal text items: %w", err)
		}
	}
	return items, nil
}

// GetPageDimensions retrieves the unscaled pixel size of one page
func (s *SQLiteStore) GetPageDimensions(ctx context.Context, paperID string, pageNum int) (models.PageDimensions, error) {
	var dims models.PageDimensions
	err := s.db.QueryRowContext(ctx, `
		SELECT width, height FROM pages
		WHERE paper_id = ? AND page_number = ?
	`, paperID, pageNum).Scan(&dims.Width, &dims.Height)

	if err == sql.ErrNoRows {
		return dims, fmt.Errorf("page not found: %s page %d", paperID, pageNum)
	}
	if err != nil {
		return dims, fmt.Errorf("failed to query page dimensions: %w", err)
	}

	return dims, nil
}

// StoreLayout stores the reconstructed layout of one OCR'd page
func (s *SQLiteStore) StoreLayout(ctx context.Context, paperID string, layout *models.PageLayout) error {
	layoutJSON, err := json.Marshal(layout)
	if err != nil {
		return fmt.Errorf("failed to marshal layout: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO layouts (paper_id, page_number, layout)
		VALUES (?, ?, ?)
	`, paperID, layout.PageNumber, string(layoutJSON))
	if err != nil {
		return fmt.Errorf("failed to insert layout: %w", err)
	}
	return nil
}

// GetLayout retrieves the stored layout of one page
func (s *SQLiteStore) GetLayout(ctx context.Context, paperID string, pageNum int) (*models.PageLayout, error) {
	var layoutJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT layout FROM layouts
		WHERE paper_id = ? AND page_number = ?
	`, paperID, pageNum).Scan(&layoutJSON)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("layout not found: %s page %d", paperID, pageNum)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query layout: %w", err)
	}

	var layout models.PageLayout
	if err := json.Unmarshal([]byte(layoutJSON), &layout); err != nil {
		return nil, fmt.Errorf("failed to unmarshal layout: %w", err)
	}
	return &layout, nil
}

// SaveHighlight inserts or updates a highlight
func (s *SQLiteStore) SaveHighlight(ctx context.Context, highlight *models.Highlight) error {
	rectsJSON, err := json.Marshal(highlight.Rects)
	if err != nil {
		return fmt.Errorf("failed to marshal rects: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO highlights (id, paper_id, format, page_number, section_id, start_offset, end_offset, selected_text, rects, color, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, highlight.ID, highlight.PaperID, string(highlight.Format), highlight.PageNumber,
		highlight.SectionID, highlight.StartOffset, highlight.EndOffset,
		highlight.SelectedText, string(rectsJSON), highlight.Color, highlight.Note,
		highlight.CreatedAt, highlight.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save highlight: %w", err)
	}
	return nil
}

// ListHighlights retrieves all highlights for a paper, oldest first
func (s *SQLiteStore) ListHighlights(ctx context.Context, paperID string) ([]models.Highlight, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, paper_id, format, page_number, section_id, start_offset, end_offset, selected_text, rects, color, note, created_at, updated_at
		FROM highlights
		WHERE paper_id = ?
		ORDER BY created_at
	`, paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to query highlights: %w", err)
	}
	defer rows.Close()

	var highlights []models.Highlight
	for rows.Next() {
		var h models.Highlight
		var format, rectsJSON string
		if err := rows.Scan(&h.ID, &h.PaperID, &format, &h.PageNumber, &h.SectionID,
			&h.StartOffset, &h.EndOffset, &h.SelectedText, &rectsJSON, &h.Color,
			&h.Note, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan highlight: %w", err)
		}
		h.Format = models.PaperFormat(format)
		if err := json.Unmarshal([]byte(rectsJSON), &h.Rects); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rects: %w", err)
		}
		highlights = append(highlights, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating highlights: %w", err)
	}

	return highlights, nil
}

// DeleteHighlight removes a highlight by ID
func (s *SQLiteStore) DeleteHighlight(ctx context.Context, highlightID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM highlights WHERE id = ?`, highlightID)
	if err != nil {
		return fmt.Errorf("failed to delete highlight: %w", err)
	}
	return requireAffected(result, "highlight not found: "+highlightID)
}

// SaveTranslation inserts or updates an inline translation
func (s *SQLiteStore) SaveTranslation(ctx context.Context, translation *models.InlineTranslation) error {
	rectsJSON, err := json.Marshal(translation.Rects)
	if err != nil {
		return fmt.Errorf("failed to marshal rects: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO translations (id, paper_id, format, page_number, section_id, start_offset, end_offset, selected_text, translated_text, target_language, source_language, is_active, rects, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, translation.ID, translation.PaperID, string(translation.Format),
		translation.PageNumber, translation.SectionID, translation.StartOffset,
		translation.EndOffset, translation.SelectedText, translation.TranslatedText,
		translation.TargetLanguage, translation.SourceLanguage, translation.IsActive,
		string(rectsJSON), translation.CreatedAt, translation.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save translation: %w", err)
	}
	return nil
}

// ListTranslations retrieves all inline translations for a paper, oldest first
func (s *SQLiteStore) ListTranslations(ctx context.Context, paperID string) ([]models.InlineTranslation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, paper_id, format, page_number, section_id, start_offset, end_offset, selected_text, translated_text, target_language, source_language, is_active, rects, created_at, updated_at
		FROM translations
		WHERE paper_id = ?
		ORDER BY created_at
	`, paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to query translations: %w", err)
	}
	defer rows.Close()

	var translations []models.InlineTranslation
	for rows.Next() {
		var tr models.InlineTranslation
		var format, rectsJSON string
		if err := rows.Scan(&tr.ID, &tr.PaperID, &format, &tr.PageNumber, &tr.SectionID,
			&tr.StartOffset, &tr.EndOffset, &tr.SelectedText, &tr.TranslatedText,
			&tr.TargetLanguage, &tr.SourceLanguage, &tr.IsActive, &rectsJSON,
			&tr.CreatedAt, &tr.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan translation: %w", err)
		}
		tr.Format = models.PaperFormat(format)
		if err := json.Unmarshal([]byte(rectsJSON), &tr.Rects); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rects: %w", err)
		}
		translations = append(translations, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating translations: %w", err)
	}

	return translations, nil
}

// SetTranslationActive toggles a translation overlay on or off
func (s *SQLiteStore) SetTranslationActive(ctx context.Context, translationID string, active bool) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE translations SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, active, translationID)
	if err != nil {
		return fmt.Errorf("failed to update translation: %w", err)
	}
	return requireAffected(result, "translation not found: "+translationID)
}

// DeleteTranslation removes an inline translation by ID
func (s *SQLiteStore) DeleteTranslation(ctx context.Context, translationID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM translations WHERE id = ?`, translationID)
	if err != nil {
		return fmt.Errorf("failed to delete translation: %w", err)
	}
	return requireAffected(result, "translation not found: "+translationID)
}

// ListPapers returns all stored papers with their metadata
func (s *SQLiteStore) ListPapers(ctx context.Context) ([]models.PaperInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, authors, doi, format, zotero_id, url
		FROM papers
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query papers: %w", err)
	}
	defer rows.Close()

	var papers []models.PaperInfo
	for rows.Next() {
		var info models.PaperInfo
		var authorsJSON, format string
		if err := rows.Scan(&info.PaperID, &info.Title, &authorsJSON, &info.DOI,
			&format, &info.SourceInfo.ZoteroID, &info.SourceInfo.URL); err != nil {
			return nil, fmt.Errorf("failed to scan paper: %w", err)
		}
		info.Format = models.PaperFormat(format)
		if err := json.Unmarshal([]byte(authorsJSON), &info.Authors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal authors: %w", err)
		}
		papers = append(papers, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating papers: %w", err)
	}

	return papers, nil
}

// DeletePaper removes a paper and all associated data
func (s *SQLiteStore) DeletePaper(ctx context.Context, paperID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM papers WHERE id = ?`, paperID)
	if err != nil {
		return fmt.Errorf("failed to delete paper: %w", err)
	}
	return requireAffected(result, "paper not found: "+paperID)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func requireAffected(result sql.Result, notFoundMsg string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s", notFoundMsg)
	}
	return nil
}

// GeneratePaperID creates a stable paper ID from the strongest available
// identifier, so re-ingesting the same source updates in place
func GeneratePaperID(paper *models.Paper, sourceInfo *models.SourceInfo) string {
	if sourceInfo.ZoteroID != "" {
		return "zotero_" + sourceInfo.ZoteroID
	}
	if paper.Metadata.DOI != "" {
		return "doi_" + paper.Metadata.DOI
	}
	if sourceInfo.URL != "" {
		return fmt.Sprintf("url_%x", hashString(sourceInfo.URL))
	}
	return fmt.Sprintf("title_%x", hashString(paper.Metadata.Title))
}

// hashString creates a simple hash of a string
func hashString(s string) uint32 {
	var hash uint32
	for i := 0; i < len(s); i++ {
		hash = hash*31 + uint32(s[i])
	}
	return hash
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
