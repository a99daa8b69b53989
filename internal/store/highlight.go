package store

import (
	"regexp"
	"strings"

	"github.com/inkfold/inkfold/internal/searchapi"
)

const (
	summaryCropLength = 200
	contentCropLength = 240
)

// highlighter wraps matched terms in highlight markup and crops long fields
// around the first match, mirroring what the hosted search engine does with
// its formatted results.
type highlighter struct {
	re *regexp.Regexp
}

func newHighlighter(terms []string) *highlighter {
	if len(terms) == 0 {
		return &highlighter{}
	}
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		quoted = append(quoted, regexp.QuoteMeta(t))
	}
	return &highlighter{
		re: regexp.MustCompile(`(?i)(` + strings.Join(quoted, "|") + `)`),
	}
}

func (h *highlighter) mark(s string) string {
	if h.re == nil || s == "" {
		return s
	}
	return h.re.ReplaceAllString(s, searchapi.HighlightOpen+"$1"+searchapi.HighlightClose)
}

// crop trims s to roughly maxRunes runes centered on the first matched term,
// adding ellipses for removed text. Fields without a match are cropped from
// the start.
func (h *highlighter) crop(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}

	start := 0
	if h.re != nil {
		if loc := h.re.FindStringIndex(s); loc != nil {
			matchStart := len([]rune(s[:loc[0]]))
			start = matchStart - maxRunes/2
			if start < 0 {
				start = 0
			}
		}
	}

	end := start + maxRunes
	if end > len(runes) {
		end = len(runes)
		start = end - maxRunes
	}

	cropped := string(runes[start:end])
	if start > 0 {
		cropped = "…" + cropped
	}
	if end < len(runes) {
		cropped = cropped + "…"
	}
	return cropped
}
