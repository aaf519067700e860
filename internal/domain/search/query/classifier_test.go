package query

import (
	"testing"

	"github.com/mnesler/vector-mtg-sub000/internal/domain/search/method"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		query string
		want  method.Method
	}{
		// Capitalized short queries are treated as card names.
		{"Lightning Bolt", method.Literal},
		{"Sol Ring", method.Literal},
		{"Counterspell", method.Literal},
		// A name containing a digit must stay literal despite the digit.
		{"Borg 7", method.Literal},

		// Structured phrasings route to filtered retrieval.
		{"zombies but not black", method.Filtered},
		{"power >= 5", method.Filtered},
		{"creatures 2/2 or bigger", method.Filtered},
		{"more than 3 mana", method.Filtered},
		{"mythic dragons", method.Filtered},
		{"red cards without flying", method.Filtered},

		// Everything else is semantic.
		{"deals damage when a creature dies", method.Similarity},
		{"sacrifice outlet for token decks", method.Similarity},
		{"counters target spell unless they pay", method.Similarity},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := Classify(tt.query); got != tt.want {
				t.Fatalf("Classify(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestLooksLikeName(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"Lightning Bolt", true},
		{"Jace, the Mind Sculptor", true},
		{"", false},
		{"one two three four five six", false},
		// Stop words disqualify the heuristic even when capitalized.
		{"Creatures That Fly", false},
		// Mostly lowercase is not a name.
		{"big red dragon", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := looksLikeName(tt.query); got != tt.want {
				t.Fatalf("looksLikeName(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}
