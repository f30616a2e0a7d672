// Package citations validates and repairs LLM-emitted citations against the
// authoritative text they claim to quote. Offsets produced by a model are
// frequently stale or fabricated; when the quote itself can be located in the
// text, the citation is repaired rather than discarded.
package citations

import (
	"strings"
	"unicode/utf8"

	"github.com/lectern-app/lectern/models"
)

const (
	// similarityThreshold is the minimum normalized similarity between the
	// quote and the text at the claimed offsets for the offsets to be
	// accepted as-is.
	similarityThreshold = 0.7

	// repairQuoteWords is how many leading words of the quote are retried
	// when the full quote cannot be found (handles truncation drift).
	repairQuoteWords = 5

	// maxRebuiltQuoteLen bounds the length of a quote rebuilt from the text
	// after a successful repair.
	maxRebuiltQuoteLen = 100
)

// Validation error reasons, surfaced to callers that want to log drops.
const (
	ErrInvalidOffsets  = "Invalid offsets"
	ErrQuoteMismatch   = "Quote does not match text at offsets"
	ErrSourceNotFound  = "Page/Section not found"
	ErrUnknownCitation = "Unknown citation type"
)

// Result is the outcome of validating one citation. When the offsets were
// repaired, Corrected holds the corrected citation and IsValid is true; when
// the original offsets were already correct, Corrected is nil.
type Result struct {
	IsValid   bool
	Corrected models.Citation
	Err       string
}

// Validate checks a citation against the authoritative text of its page or
// section. Single pass: bounds check, then offset-match check, then at most
// one repair attempt by searching for the quote. Never returns an error for
// well-typed input; invalid citations come back as {IsValid: false, Err}.
func Validate(c models.Citation, text string) Result {
	switch cit := c.(type) {
	case models.PdfCitation:
		outcome := validateSpan(cit.Start, cit.End, cit.Quote, text)
		if outcome.repaired {
			cit.Start = outcome.start
			cit.End = outcome.end
			cit.Quote = outcome.quote
			cit.Verified = true
			return Result{IsValid: true, Corrected: cit}
		}
		return Result{IsValid: outcome.valid, Err: outcome.err}
	case models.HtmlCitation:
		outcome := validateSpan(cit.Start, cit.End, cit.Quote, text)
		if outcome.repaired {
			cit.Start = outcome.start
			cit.End = outcome.end
			cit.Quote = outcome.quote
			cit.Verified = true
			return Result{IsValid: true, Corrected: cit}
		}
		return Result{IsValid: outcome.valid, Err: outcome.err}
	default:
		return Result{Err: ErrUnknownCitation}
	}
}

type spanOutcome struct {
	valid    bool
	repaired bool
	start    int
	end      int
	quote    string
	err      string
}

func validateSpan(start, end int, quote, text string) spanOutcome {
	boundsOK := start >= 0 && end <= len(text) && start < end

	if boundsOK {
		actual := text[start:end]
		if quote != "" && Similarity(quote, actual) > similarityThreshold {
			return spanOutcome{valid: true}
		}
		if quote == "" {
			return spanOutcome{err: ErrQuoteMismatch}
		}
		if s, e, ok := relocateQuote(quote, text); ok {
			return rebuiltOutcome(s, e, text)
		}
		return spanOutcome{err: ErrQuoteMismatch}
	}

	if quote == "" {
		return spanOutcome{err: ErrInvalidOffsets}
	}
	if s, e, ok := relocateQuote(quote, text); ok {
		return rebuiltOutcome(s, e, text)
	}
	return spanOutcome{err: ErrInvalidOffsets}
}

func rebuiltOutcome(start, end int, text string) spanOutcome {
	quoteEnd := min(start+maxRebuiltQuoteLen, end)
	// Keep the rebuilt quote on a rune boundary.
	for quoteEnd > start && !utf8.RuneStart(text[quoteEnd-1]) {
		quoteEnd--
	}
	return spanOutcome{
		valid:    true,
		repaired: true,
		start:    start,
		end:      end,
		quote:    text[start:quoteEnd],
	}
}

// relocateQuote searches for the quote in the text using normalized forms and
// maps the match back to original byte offsets through the normalization
// index map. Falls back to the first few words of the quote when the full
// quote is not found.
func relocateQuote(quote, text string) (start, end int, ok bool) {
	nt := Normalize(text)
	nq := Normalize(quote)
	if nq.Text == "" || nt.Text == "" {
		return 0, 0, false
	}

	needle := nq.Text
	byteIdx := strings.Index(nt.Text, needle)
	if byteIdx < 0 {
		words := strings.Fields(nq.Text)
		if len(words) > repairQuoteWords {
			needle = strings.Join(words[:repairQuoteWords], " ")
			byteIdx = strings.Index(nt.Text, needle)
		}
	}
	if byteIdx < 0 {
		return 0, 0, false
	}

	runeIdx := utf8.RuneCountInString(nt.Text[:byteIdx])
	start = nt.OriginalOffset(runeIdx)
	end = min(start+len(quote), len(text))
	for end > start && !utf8.RuneStart(text[end-1]) {
		end--
	}
	if start >= end {
		return 0, 0, false
	}
	return start, end, true
}

// ValidateAll validates a batch of citations against the paper's pages and
// sections, silently dropping invalid ones. Valid citations are returned in
// their input order, with corrected citations substituted where repair
// succeeded and Verified set on every survivor. A missing page or section
// drops the citation.
func ValidateAll(cs []models.Citation, pages []models.PageText, sections []models.SectionText) []models.Citation {
	pageText := make(map[int]string, len(pages))
	for _, p := range pages {
		pageText[p.PageNumber] = p.TextContent
	}
	sectionText := make(map[string]string, len(sections))
	for _, s := range sections {
		sectionText[s.SectionID] = s.TextContent
	}

	out := make([]models.Citation, 0, len(cs))
	for _, c := range cs {
		var text string
		var found bool
		switch cit := c.(type) {
		case models.PdfCitation:
			text, found = pageText[cit.Page]
		case models.HtmlCitation:
			text, found = sectionText[cit.SectionID]
		default:
			continue
		}
		if !found {
			continue
		}

		res := Validate(c, text)
		if !res.IsValid {
			continue
		}
		if res.Corrected != nil {
			out = append(out, res.Corrected)
			continue
		}
		out = append(out, markVerified(c))
	}
	return out
}

func markVerified(c models.Citation) models.Citation {
	switch cit := c.(type) {
	case models.PdfCitation:
		cit.Verified = true
		return cit
	case models.HtmlCitation:
		cit.Verified = true
		return cit
	default:
		return c
	}
}
