package documents

import (
	"strings"
	"testing"
)

func TestPreprocessHTML(t *testing.T) {
	tests := []struct {
		name           string
		html           string
		wantContain    []string
		wantNotContain []string
	}{
		{
			name: "basic academic article",
			html: `<!DOCTYPE html>
<html>
<head>
	<title>Test Article</title>
	<style>body { color: red; }</style>
	<script>console.log("test");</script>
</head>
<body>
	<nav>Navigation Menu</nav>
	<h1>Test Article Title</h1>
	<p>This is the abstract of the paper.</p>
	<h2>Introduction</h2>
	<p>This is the introduction with a <a href="ref1">reference [1]</a>.</p>
	<h2>Methods</h2>
	<p>This describes the methods.</p>
</body>
</html>`,
			wantContain: []string{
				"# Test Article Title",
				"## Introduction",
				"## Methods",
				"abstract",
				"introduction",
			},
			wantNotContain: []string{
				"<html>",
				"<body>",
				"<style>",
				"<script>",
				"console.log",
				"color: red",
				"Navigation Menu",
			},
		},
		{
			name: "article with table",
			html: `<html>
<body>
	<h1>Data Analysis</h1>
	<table>
		<tr><th>Metric</th><th>Value</th></tr>
		<tr><td>Accuracy</td><td>95%</td></tr>
		<tr><td>Precision</td><td>92%</td></tr>
	</table>
</body>
</html>`,
			wantContain: []string{
				"# Data Analysis",
				"Metric",
				"Value",
				"Accuracy",
				"95%",
			},
			wantNotContain: []string{
				"<table>",
				"<tr>",
				"<td>",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			markdown, err := PreprocessHTML([]byte(tt.html))
			if err != nil {
				t.Fatalf("PreprocessHTML() error = %v", err)
			}

			for _, want := range tt.wantContain {
				if !strings.Contains(markdown, want) {
					t.Errorf("PreprocessHTML() markdown should contain %q, but doesn't.\nMarkdown:\n%s", want, markdown)
				}
			}

			for _, notWant := range tt.wantNotContain {
				if strings.Contains(markdown, notWant) {
					t.Errorf("PreprocessHTML() markdown should NOT contain %q, but does.\nMarkdown:\n%s", notWant, markdown)
				}
			}
		})
	}
}

func TestExtractSections(t *testing.T) {
	htmlDoc := `<html>
<body>
	<script>trackPageView();</script>
	<p>Preamble before any heading.</p>
	<h1>A Study of Things</h1>
	<p>Abstract paragraph.</p>
	<h2>Introduction</h2>
	<p>First paragraph of the introduction.</p>
	<p>Second paragraph.</p>
	<h2>Results</h2>
	<p>We observed an effect.</p>
</body>
</html>`

	sections, err := ExtractSections([]byte(htmlDoc))
	if err != nil {
		t.Fatalf("ExtractSections() error = %v", err)
	}

	if len(sections) != 4 {
		t.Fatalf("ExtractSections() returned %d sections, want 4", len(sections))
	}

	for i, section := range sections {
		wantID := "section-" + string(rune('0'+i))
		if section.SectionID != wantID {
			t.Errorf("sections[%d].SectionID = %q, want %q", i, section.SectionID, wantID)
		}
	}

	if !strings.Contains(sections[0].TextContent, "Preamble") {
		t.Errorf("section-0 should hold pre-heading content, got %q", sections[0].TextContent)
	}
	if !strings.HasPrefix(sections[1].TextContent, "A Study of Things") {
		t.Errorf("section-1 should start with its heading, got %q", sections[1].TextContent)
	}
	if !strings.Contains(sections[2].TextContent, "Second paragraph") {
		t.Errorf("section-2 should contain all paragraphs up to the next heading, got %q", sections[2].TextContent)
	}
	for _, section := range sections {
		if strings.Contains(section.TextContent, "trackPageView") {
			t.Errorf("script content leaked into section %s", section.SectionID)
		}
	}
}

func TestExtractSectionsNoHeadings(t *testing.T) {
	sections, err := ExtractSections([]byte(`<html><body><p>Just one body of text.</p></body></html>`))
	if err != nil {
		t.Fatalf("ExtractSections() error = %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("ExtractSections() returned %d sections, want 1", len(sections))
	}
	if sections[0].SectionID != "section-0" {
		t.Errorf("SectionID = %q, want section-0", sections[0].SectionID)
	}
}
