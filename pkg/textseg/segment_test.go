package textseg

import (
	"errors"
	"reflect"
	"testing"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Sentence
	}{
		{
			name: "single sentence",
			text: "A cat sat.",
			want: []Sentence{{Text: "A cat sat."}},
		},
		{
			name: "two sentences",
			text: "A cat sat. The cat slept.",
			want: []Sentence{
				{Text: "A cat sat."},
				{Text: "The cat slept."},
			},
		},
		{
			name: "mixed terminators",
			text: "Hello world. This is a test! How are you?",
			want: []Sentence{
				{Text: "Hello world."},
				{Text: "This is a test!"},
				{Text: "How are you?"},
			},
		},
		{
			name: "discourse marker tagged",
			text: "The plan failed. However, the team recovered.",
			want: []Sentence{
				{Text: "The plan failed."},
				{Text: "However, the team recovered.", DiscourseMarker: "however"},
			},
		},
		{
			name: "whitespace collapsed",
			text: "First   sentence.\n\nSecond\nsentence.",
			want: []Sentence{
				{Text: "First sentence."},
				{Text: "Second sentence."},
			},
		},
		{
			name: "no terminator at end",
			text: "Trailing fragment without a period",
			want: []Sentence{{Text: "Trailing fragment without a period"}},
		},
		{
			name: "decimal point is not a boundary",
			text: "It cost 3.5 dollars. Cheap.",
			want: []Sentence{
				{Text: "It cost 3.5 dollars."},
				{Text: "Cheap."},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Segment(tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("unexpected sentences:\n got %#v\nwant %#v", got, tt.want)
			}
		})
	}
}

func TestSegment_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		if _, err := Segment(text); !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("expected ErrEmptyInput for %q, got %v", text, err)
		}
	}
}

func TestDetectMarker(t *testing.T) {
	tests := []struct {
		sentence string
		want     string
	}{
		{"However, it failed.", "however"},
		{"The result was therefore clear.", "therefore"},
		{"Nothing to see here.", ""},
		{"The howeverish word does not count.", ""},
	}

	for _, tt := range tests {
		t.Run(tt.sentence, func(t *testing.T) {
			if got := DetectMarker(tt.sentence); got != tt.want {
				t.Fatalf("unexpected marker: got %q, want %q", got, tt.want)
			}
		})
	}
}
