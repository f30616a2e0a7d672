package bibliography

import (
	"fmt"
	"strings"

	"github.com/lectern-app/lectern/models"
)

// GenerateBibTeXEntry creates a BibTeX entry for one paper. Papers with a
// journal become @article entries; everything else is @misc.
func GenerateBibTeXEntry(metadata models.PaperMetadata, citekey string) string {
	if citekey == "" {
		citekey = "unknown"
	}

	entryType := "misc"
	if metadata.Publication != "" {
		entryType = "article"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("@%s{%s,\n", entryType, citekey))

	if metadata.Title != "" {
		sb.WriteString(fmt.Sprintf("  title = {%s},\n", escapeBibTeX(metadata.Title)))
	}
	if len(metadata.Authors) > 0 {
		sb.WriteString(fmt.Sprintf("  author = {%s},\n", formatAuthors(metadata.Authors)))
	}
	if metadata.Publication != "" {
		sb.WriteString(fmt.Sprintf("  journal = {%s},\n", escapeBibTeX(metadata.Publication)))
	}
	if year := extractYear(metadata.PublicationDate); year != "" {
		sb.WriteString(fmt.Sprintf("  year = {%s},\n", year))
	}
	if metadata.DOI != "" {
		sb.WriteString(fmt.Sprintf("  doi = {%s},\n", metadata.DOI))
	}
	if metadata.Abstract != "" {
		sb.WriteString(fmt.Sprintf("  abstract = {%s},\n", escapeBibTeX(metadata.Abstract)))
	}

	entry := strings.TrimSuffix(sb.String(), ",\n")
	return entry + "\n}\n"
}

// GenerateBibTeXFile assembles entries into a complete .bib file.
func GenerateBibTeXFile(entries []string) string {
	var sb strings.Builder
	sb.WriteString("% BibTeX bibliography file\n")
	sb.WriteString("% Generated by lectern\n\n")
	for i, entry := range entries {
		sb.WriteString(entry)
		if i < len(entries)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// formatAuthors normalizes an author list to BibTeX form:
// "Last1, First1 and Last2, First2".
func formatAuthors(authors []string) string {
	formatted := make([]string, 0, len(authors))
	for _, author := range authors {
		if strings.Contains(author, ",") {
			formatted = append(formatted, strings.TrimSpace(author))
			continue
		}
		parts := strings.Fields(author)
		switch {
		case len(parts) >= 2:
			last := parts[len(parts)-1]
			first := strings.Join(parts[:len(parts)-1], " ")
			formatted = append(formatted, fmt.Sprintf("%s, %s", last, first))
		case len(parts) == 1:
			formatted = append(formatted, parts[0])
		}
	}
	return strings.Join(formatted, " and ")
}

// escapeBibTeX escapes the LaTeX special characters that commonly appear in
// titles and abstracts.
func escapeBibTeX(text string) string {
	text = strings.ReplaceAll(text, "\\", "\\textbackslash{}")
	text = strings.ReplaceAll(text, "%", "\\%")
	text = strings.ReplaceAll(text, "&", "\\&")
	text = strings.ReplaceAll(text, "_", "\\_")
	text = strings.ReplaceAll(text, "$", "\\$")
	text = strings.ReplaceAll(text, "#", "\\#")
	return text
}
