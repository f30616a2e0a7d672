// Package bibliography generates pandoc-style citekeys and BibTeX entries
// from paper metadata, for exporting a reading library to reference managers.
package bibliography

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/lectern-app/lectern/models"
)

var yearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// GenerateCitekey creates a pandoc-style citekey from metadata.
// Format: author(s)Year (e.g., "smith2020", "smithJones2021", "smithEtAl2020").
// If a collision is detected, appends a letter suffix (a, b, c, etc.)
func GenerateCitekey(metadata models.PaperMetadata, existing map[string]bool) string {
	base := authorPart(metadata.Authors) + extractYear(metadata.PublicationDate)
	if base == "" {
		base = "unknown"
	}
	base = sanitizeCitekey(base)

	citekey := base
	for suffix := 'a'; existing[citekey]; suffix++ {
		if suffix > 'z' {
			// Exhausted letters; fall back to numbered suffixes.
			for n := 1; ; n++ {
				citekey = fmt.Sprintf("%sz%d", base, n)
				if !existing[citekey] {
					return citekey
				}
			}
		}
		citekey = base + string(suffix)
	}
	return citekey
}

// extractYear pulls a 4-digit year out of a free-form date string
// ("2020", "2020-01-15", "January 2020").
func extractYear(pubDate string) string {
	return yearRe.FindString(pubDate)
}

// authorPart builds the author portion of a citekey:
// one author gives the last name, two concatenates both last names,
// three or more uses the first last name plus "EtAl".
func authorPart(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return lastName(authors[0])
	case 2:
		second := lastName(authors[1])
		if second != "" {
			second = strings.ToUpper(second[:1]) + second[1:]
		}
		return lastName(authors[0]) + second
	default:
		return lastName(authors[0]) + "EtAl"
	}
}

// lastName extracts and lowercases the last name from "Last, First",
// "First Last", or a bare name. Multi-part last names camel-case their
// trailing parts ("von Neumann" gives "vonNeumann").
func lastName(author string) string {
	var name string
	if i := strings.Index(author, ","); i >= 0 {
		name = strings.TrimSpace(author[:i])
	} else {
		parts := strings.Fields(author)
		if len(parts) > 0 {
			name = parts[len(parts)-1]
		}
	}

	parts := strings.Fields(name)
	if len(parts) <= 1 {
		return strings.ToLower(name)
	}
	result := strings.ToLower(parts[0])
	for _, p := range parts[1:] {
		result += strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
	}
	return result
}

// sanitizeCitekey keeps only letters, digits, and underscores, and makes
// sure the key does not start with a digit.
func sanitizeCitekey(citekey string) string {
	var sb strings.Builder
	for _, r := range citekey {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			sb.WriteRune(r)
		}
	}
	out := sb.String()
	if out == "" {
		return "unknown"
	}
	if unicode.IsDigit(rune(out[0])) {
		out = "ref" + out
	}
	return out
}
