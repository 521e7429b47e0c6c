package textseg

import "strings"

// discourseMarkers are the lexical cues that signal a rhetorical relation
// between adjacent sentences.
var discourseMarkers = map[string]struct{}{
	"however":         {},
	"therefore":       {},
	"thus":            {},
	"hence":           {},
	"meanwhile":       {},
	"although":        {},
	"though":          {},
	"consequently":    {},
	"furthermore":     {},
	"moreover":        {},
	"additionally":    {},
	"nevertheless":    {},
	"nonetheless":     {},
	"accordingly":     {},
	"besides":         {},
	"indeed":          {},
	"instead":         {},
	"likewise":        {},
	"otherwise":       {},
	"similarly":       {},
	"specifically":    {},
	"ultimately":      {},
	"afterward":       {},
	"afterwards":      {},
	"conversely":      {},
	"elsewhere":       {},
	"hereafter":       {},
	"hitherto":        {},
	"notwithstanding": {},
	"previously":      {},
	"subsequently":    {},
}

// DetectMarker returns the first discourse marker found in the sentence,
// or "" when there is none. Matching is case-insensitive on whole words.
func DetectMarker(sentence string) string {
	lower := strings.ToLower(sentence)
	for _, word := range strings.FieldsFunc(lower, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '\'')
	}) {
		if _, ok := discourseMarkers[word]; ok {
			return word
		}
	}
	return ""
}
