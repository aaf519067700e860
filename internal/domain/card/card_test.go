package card

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestNewerThan(t *testing.T) {
	older := &Card{ID: "a", ReleasedAt: date("2010-07-16")}
	newer := &Card{ID: "b", ReleasedAt: date("2021-04-23")}
	unknown := &Card{ID: "c"}

	if !newer.NewerThan(older) {
		t.Fatal("later date must be newer")
	}
	if older.NewerThan(newer) {
		t.Fatal("earlier date must not be newer")
	}
	// Known release date beats unknown.
	if !older.NewerThan(unknown) {
		t.Fatal("known date must beat unknown")
	}
	if unknown.NewerThan(older) {
		t.Fatal("unknown date must not beat known")
	}
	if unknown.NewerThan(&Card{ID: "d"}) {
		t.Fatal("two unknown dates: neither is newer")
	}
}

func TestEmbeddingText(t *testing.T) {
	c := &Card{
		Name:      "Lightning Bolt",
		TypeLine:  "Instant",
		RulesText: "Lightning Bolt deals 3 damage to any target.",
	}
	want := "Lightning Bolt\nInstant\nLightning Bolt deals 3 damage to any target."
	if got := c.EmbeddingText(); got != want {
		t.Fatalf("EmbeddingText = %q, want %q", got, want)
	}

	// Empty parts are skipped, not joined as blank lines.
	vanilla := &Card{Name: "Grizzly Bears", TypeLine: "Creature - Bear"}
	if got := vanilla.EmbeddingText(); got != "Grizzly Bears\nCreature - Bear" {
		t.Fatalf("unexpected text for card without rules: %q", got)
	}
}

func TestHasKeyword(t *testing.T) {
	c := &Card{Keywords: []string{"Flying", "first strike"}}
	if !c.HasKeyword("flying") || !c.HasKeyword("First Strike") {
		t.Fatal("keyword check must be case-insensitive")
	}
	if c.HasKeyword("trample") {
		t.Fatal("absent keyword must not match")
	}
}

func TestColorCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		ok   bool
	}{
		{"black", "B", true},
		{"Blue", "U", true},
		{"colorless", "", false},
	}
	for _, tt := range tests {
		code, ok := ColorCode(tt.name)
		if code != tt.code || ok != tt.ok {
			t.Errorf("ColorCode(%q) = %q,%v want %q,%v", tt.name, code, ok, tt.code, tt.ok)
		}
	}
}

func TestIsKeyword(t *testing.T) {
	if !IsKeyword("First Strike") {
		t.Fatal("multi-word keyword must be recognized case-insensitively")
	}
	if IsKeyword("banding") {
		t.Fatal("unknown keyword must not be recognized")
	}
}
