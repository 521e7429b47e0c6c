// Package textseg splits raw paragraph text into ordered sentences and tags
// each sentence with the discourse marker that opens it, if any. It is the
// segmentation collaborator consumed by the coherence pipeline.
package textseg

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

// ErrEmptyInput is returned when the input text is blank after trimming.
var ErrEmptyInput = errors.New("input text is empty")

// Sentence is one segmented sentence with its detected discourse marker.
// DiscourseMarker is empty when the sentence carries none.
type Sentence struct {
	Text            string `json:"text"`
	DiscourseMarker string `json:"discourse_marker,omitempty"`
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Normalize collapses runs of whitespace and trims the ends.
func Normalize(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// Segment splits text into sentences and tags discourse markers.
// It fails with ErrEmptyInput when the text is blank after trimming.
func Segment(text string) ([]Sentence, error) {
	text = Normalize(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	parts := splitSentences(text)
	sentences := make([]Sentence, 0, len(parts))
	for _, p := range parts {
		sentences = append(sentences, Sentence{
			Text:            p,
			DiscourseMarker: DetectMarker(p),
		})
	}
	return sentences, nil
}

// splitSentences breaks text on terminal punctuation followed by the start
// of a new sentence. Abbreviation handling is deliberately minimal: a
// terminator only ends a sentence when the next non-space rune is an
// uppercase letter, an opening quote, or a digit.
func splitSentences(text string) []string {
	var out []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)

		if r != '.' && r != '!' && r != '?' {
			continue
		}

		// Consume trailing closers so `He said "stop!".` stays whole.
		j := i + 1
		for j < len(runes) && (runes[j] == '"' || runes[j] == '\'' || runes[j] == ')') {
			current.WriteRune(runes[j])
			j++
		}
		i = j - 1

		// Peek past whitespace at what follows. Without a whitespace gap
		// the terminator is internal (decimals, abbreviations, URLs).
		k := j
		for k < len(runes) && unicode.IsSpace(runes[k]) {
			k++
		}
		if k >= len(runes) {
			break
		}
		if k == j {
			continue
		}
		next := runes[k]
		if unicode.IsUpper(next) || unicode.IsDigit(next) || next == '"' || next == '\'' {
			sentence := strings.TrimSpace(current.String())
			if sentence != "" {
				out = append(out, sentence)
			}
			current.Reset()
			i = k - 1
		}
	}

	if tail := strings.TrimSpace(current.String()); tail != "" {
		out = append(out, tail)
	}
	return out
}
