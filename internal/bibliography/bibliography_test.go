package bibliography

import (
	"strings"
	"testing"

	"github.com/lectern-app/lectern/models"
)

func TestGenerateCitekey(t *testing.T) {
	tests := []struct {
		name     string
		metadata models.PaperMetadata
		existing map[string]bool
		expected string
	}{
		{
			name: "single author",
			metadata: models.PaperMetadata{
				Authors:         []string{"John Smith"},
				PublicationDate: "2020-01-15",
			},
			expected: "smith2020",
		},
		{
			name: "comma-separated author",
			metadata: models.PaperMetadata{
				Authors:         []string{"Smith, John"},
				PublicationDate: "2020",
			},
			expected: "smith2020",
		},
		{
			name: "two authors",
			metadata: models.PaperMetadata{
				Authors:         []string{"John Smith", "Jane Jones"},
				PublicationDate: "2021",
			},
			expected: "smithJones2021",
		},
		{
			name: "three authors",
			metadata: models.PaperMetadata{
				Authors:         []string{"John Smith", "Jane Jones", "Bob Brown"},
				PublicationDate: "2020",
			},
			expected: "smithEtAl2020",
		},
		{
			name: "multi-part last name",
			metadata: models.PaperMetadata{
				Authors:         []string{"von Neumann, John"},
				PublicationDate: "1945",
			},
			expected: "vonNeumann1945",
		},
		{
			name: "year embedded in date text",
			metadata: models.PaperMetadata{
				Authors:         []string{"John Smith"},
				PublicationDate: "January 2020",
			},
			expected: "smith2020",
		},
		{
			name:     "no metadata",
			metadata: models.PaperMetadata{},
			expected: "unknown",
		},
		{
			name: "no authors",
			metadata: models.PaperMetadata{
				PublicationDate: "2020",
			},
			expected: "ref2020",
		},
		{
			name: "collision appends letter",
			metadata: models.PaperMetadata{
				Authors:         []string{"John Smith"},
				PublicationDate: "2020",
			},
			existing: map[string]bool{"smith2020": true},
			expected: "smith2020a",
		},
		{
			name: "double collision",
			metadata: models.PaperMetadata{
				Authors:         []string{"John Smith"},
				PublicationDate: "2020",
			},
			existing: map[string]bool{"smith2020": true, "smith2020a": true},
			expected: "smith2020b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GenerateCitekey(tt.metadata, tt.existing)
			if result != tt.expected {
				t.Errorf("GenerateCitekey() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestGenerateBibTeXEntry(t *testing.T) {
	metadata := models.PaperMetadata{
		Title:           "Attention & Memory in Language Models",
		Authors:         []string{"John Smith", "Jones, Jane"},
		PublicationDate: "2021-06-01",
		Publication:     "Journal of Important Results",
		DOI:             "10.1234/example",
	}

	entry := GenerateBibTeXEntry(metadata, "smith2021")

	wantContain := []string{
		"@article{smith2021,",
		"title = {Attention \\& Memory in Language Models}",
		"author = {Smith, John and Jones, Jane}",
		"journal = {Journal of Important Results}",
		"year = {2021}",
		"doi = {10.1234/example}",
	}
	for _, want := range wantContain {
		if !strings.Contains(entry, want) {
			t.Errorf("entry should contain %q.\nEntry:\n%s", want, entry)
		}
	}
	if !strings.HasSuffix(entry, "\n}\n") {
		t.Errorf("entry should end with closing brace, got:\n%s", entry)
	}
	if strings.Contains(entry, ",\n}") {
		t.Errorf("last field should not carry a trailing comma:\n%s", entry)
	}
}

func TestGenerateBibTeXEntryMisc(t *testing.T) {
	entry := GenerateBibTeXEntry(models.PaperMetadata{Title: "A Preprint"}, "anon")
	if !strings.HasPrefix(entry, "@misc{anon,") {
		t.Errorf("paper without a journal should be @misc, got:\n%s", entry)
	}
}

func TestGenerateBibTeXFile(t *testing.T) {
	entries := []string{
		GenerateBibTeXEntry(models.PaperMetadata{Title: "First"}, "a2020"),
		GenerateBibTeXEntry(models.PaperMetadata{Title: "Second"}, "b2021"),
	}
	file := GenerateBibTeXFile(entries)

	if !strings.HasPrefix(file, "% BibTeX bibliography file") {
		t.Errorf("file should start with a comment header:\n%s", file)
	}
	if !strings.Contains(file, "@misc{a2020,") || !strings.Contains(file, "@misc{b2021,") {
		t.Errorf("file should contain both entries:\n%s", file)
	}
}
