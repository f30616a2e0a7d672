package citations

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalized is the result of normalizing a string for fuzzy comparison:
// lowercased, diacritics and punctuation stripped, whitespace collapsed to
// single spaces. Offsets maps each rune of Text back to the byte offset in
// the original string it came from, so a match position in normalized space
// can be translated to an exact original offset.
type Normalized struct {
	Text    string
	runes   []rune
	Offsets []int
}

// Normalize produces the comparison form of s along with the index map back
// to original byte offsets.
func Normalize(s string) Normalized {
	runes := make([]rune, 0, len(s))
	offsets := make([]int, 0, len(s))
	pendingSpace := false

	for i, r := range s {
		if unicode.IsSpace(r) {
			pendingSpace = len(runes) > 0
			continue
		}
		// Decompose so accented characters compare equal to their base form.
		// Every rune the decomposition yields maps back to the same original
		// offset; the map is exact for matching purposes.
		for _, d := range norm.NFKD.String(string(unicode.ToLower(r))) {
			if unicode.Is(unicode.Mn, d) || unicode.IsPunct(d) || unicode.IsSymbol(d) {
				continue
			}
			if pendingSpace {
				runes = append(runes, ' ')
				offsets = append(offsets, i)
				pendingSpace = false
			}
			runes = append(runes, d)
			offsets = append(offsets, i)
		}
	}

	return Normalized{Text: string(runes), runes: runes, Offsets: offsets}
}

// OriginalOffset translates a rune index in the normalized text back to a
// byte offset in the original string. Out-of-range indexes clamp to the ends.
func (n Normalized) OriginalOffset(runeIndex int) int {
	if len(n.Offsets) == 0 || runeIndex < 0 {
		return 0
	}
	if runeIndex >= len(n.Offsets) {
		return n.Offsets[len(n.Offsets)-1]
	}
	return n.Offsets[runeIndex]
}

// Similarity scores how alike two strings are after normalization, in [0,1].
// When one normalized string contains the other, the score is the containment
// ratio len(shorter)/len(longer); otherwise it is 1 - dist/len(longer) using
// Levenshtein distance. Empty normalized input scores 0.
func Similarity(a, b string) float64 {
	na := Normalize(a).Text
	nb := Normalize(b).Text
	if na == "" || nb == "" {
		return 0
	}

	shorter, longer := na, nb
	if len([]rune(shorter)) > len([]rune(longer)) {
		shorter, longer = longer, shorter
	}
	shortLen := len([]rune(shorter))
	longLen := len([]rune(longer))

	if strings.Contains(longer, shorter) {
		return float64(shortLen) / float64(longLen)
	}

	dist := levenshtein([]rune(shorter), []rune(longer))
	return 1 - float64(dist)/float64(longLen)
}

// levenshtein computes edit distance with a two-row dynamic program.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
