package documents

import (
	"bytes"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"

	"github.com/lectern-app/lectern/models"
)

// Elements that carry chrome rather than article content.
var strippedElements = map[string]bool{
	"script": true,
	"style":  true,
	"nav":    true,
	"header": true,
	"footer": true,
	"aside":  true,
	"iframe": true,
	"form":   true,
	"button": true,
}

// PreprocessHTML strips page chrome from an HTML paper and converts the
// remaining article content to Markdown.
func PreprocessHTML(data []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	stripChrome(doc)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", fmt.Errorf("failed to render cleaned HTML: %w", err)
	}

	markdown, err := htmltomarkdown.ConvertString(buf.String())
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}

	return markdown, nil
}

// ExtractSections splits an HTML paper into sections at each h1/h2 heading.
// Content before the first heading becomes section-0; each heading starts a
// new section whose text begins with the heading itself. Section IDs are
// positional so that citations remain stable across re-ingestion of the same
// document.
func ExtractSections(data []byte) ([]models.SectionText, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	stripChrome(doc)

	body := findElement(doc, "body")
	if body == nil {
		body = doc
	}

	var sections []models.SectionText
	var current strings.Builder

	flush := func() {
		text := collapseSpace(current.String())
		current.Reset()
		if text == "" {
			return
		}
		sections = append(sections, models.SectionText{
			SectionID:   fmt.Sprintf("section-%d", len(sections)),
			TextContent: text,
		})
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "h1" || n.Data == "h2") {
			flush()
			current.WriteString(nodeText(n))
			current.WriteString("\n")
			return
		}
		if n.Type == html.TextNode {
			current.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && isBlockElement(n.Data) {
			current.WriteString("\n")
		}
	}
	walk(body)
	flush()

	return sections, nil
}

// stripChrome removes non-content subtrees in place.
func stripChrome(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.ElementNode && strippedElements[c.Data] {
			n.RemoveChild(c)
			continue
		}
		stripChrome(c)
	}
}

func findElement(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, name); found != nil {
			return found
		}
	}
	return nil
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

func isBlockElement(name string) bool {
	switch name {
	case "p", "div", "li", "tr", "table", "ul", "ol", "blockquote", "pre", "h3", "h4", "h5", "h6", "figcaption", "section", "article":
		return true
	}
	return false
}

// collapseSpace trims each line and drops runs of blank lines so section
// text is stable regardless of source indentation.
func collapseSpace(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
