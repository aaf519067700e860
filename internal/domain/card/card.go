// Package card holds the card entity and the fixed Magic vocabulary
// (colors, card types, rarities, keyword abilities) shared by the query
// parser and the retrieval layer.
package card

import (
	"strings"
	"time"
)

// Card is a single printing of a card. Display names are not unique: every
// reprint is its own Card with its own ID.
type Card struct {
	ID        string
	Name      string
	ManaCost  string
	CMC       float64
	TypeLine  string
	Types     []string
	RulesText string
	Colors    []string
	Keywords  []string
	Rarity    string
	Power     *float64
	Toughness *float64

	// ReleasedAt is the printing's release date. Zero means unknown and
	// sorts after any known date when picking the canonical printing.
	ReleasedAt time.Time

	// FullVector embeds name, type line and rules text together.
	FullVector []float32
	// TextVector embeds the rules text only.
	TextVector []float32
}

// EmbeddingText is the text the full-card vector is computed over.
func (c *Card) EmbeddingText() string {
	parts := make([]string, 0, 3)
	if c.Name != "" {
		parts = append(parts, c.Name)
	}
	if c.TypeLine != "" {
		parts = append(parts, c.TypeLine)
	}
	if c.RulesText != "" {
		parts = append(parts, c.RulesText)
	}
	return strings.Join(parts, "\n")
}

// NewerThan reports whether c is a more recent printing than other.
// A known release date always beats an unknown one.
func (c *Card) NewerThan(other *Card) bool {
	if other.ReleasedAt.IsZero() {
		return !c.ReleasedAt.IsZero()
	}
	if c.ReleasedAt.IsZero() {
		return false
	}
	return c.ReleasedAt.After(other.ReleasedAt)
}

// HasKeyword reports whether the card has the given keyword ability,
// case-insensitively.
func (c *Card) HasKeyword(kw string) bool {
	for _, k := range c.Keywords {
		if strings.EqualFold(k, kw) {
			return true
		}
	}
	return false
}
