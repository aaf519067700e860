package redis

import (
	"testing"

	"github.com/mnesler/vector-mtg-sub000/internal/domain/search/filter"
)

func TestBuildFilter_Empty(t *testing.T) {
	if got := buildFilter(filter.Expression{}); got != "" {
		t.Fatalf("expected empty string for empty expression, got %q", got)
	}
}

func TestBuildFilter_MustAndMustNot(t *testing.T) {
	expr := filter.New(
		[]filter.Condition{
			filter.NumRange("cmc", filter.GreaterThan(3)),
			filter.Match("types", "creature"),
		},
		nil,
		[]filter.Condition{
			filter.Match("colors", "B"),
		},
	)

	want := "@cmc:[(3 +inf] @types:{creature} -@colors:{B}"
	if got := buildFilter(expr); got != want {
		t.Fatalf("buildFilter = %q, want %q", got, want)
	}
}

func TestBuildFilter_ShouldGroup(t *testing.T) {
	expr := filter.New(
		nil,
		[]filter.Condition{
			filter.Match("rarity", "rare"),
			filter.Match("rarity", "mythic"),
		},
		nil,
	)

	want := "(@rarity:{rare} | @rarity:{mythic})"
	if got := buildFilter(expr); got != want {
		t.Fatalf("buildFilter = %q, want %q", got, want)
	}
}

func TestBuildTagFilter_AlternationPassesThrough(t *testing.T) {
	// "|" inside a tag clause is OR within the dimension and must survive
	// escaping.
	if got := buildTagFilter("colors", "R|G"); got != "@colors:{R|G}" {
		t.Fatalf("buildTagFilter = %q", got)
	}
}

func TestBuildTagFilter_EscapesSpecials(t *testing.T) {
	if got := buildTagFilter("keywords", "first strike"); got != `@keywords:{first\ strike}` {
		t.Fatalf("buildTagFilter = %q", got)
	}
}

func TestBuildNumericFilter(t *testing.T) {
	tests := []struct {
		name string
		r    filter.Range
		want string
	}{
		{"gt", filter.GreaterThan(3), "@cmc:[(3 +inf]"},
		{"gte", filter.AtLeast(5), "@cmc:[5 +inf]"},
		{"lt", filter.LessThan(2), "@cmc:[-inf (2]"},
		{"lte", filter.AtMost(4), "@cmc:[-inf 4]"},
		{"exact", filter.Exactly(3), "@cmc:[3 3]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildNumericFilter("cmc", tt.r); got != tt.want {
				t.Fatalf("buildNumericFilter = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEscapeQuery(t *testing.T) {
	if got := escapeQuery("bolt|shock"); got != `bolt\|shock` {
		t.Fatalf("escapeQuery = %q", got)
	}
	if got := escapeQuery("3-cost"); got != `3\-cost` {
		t.Fatalf("escapeQuery = %q", got)
	}
}

func TestVectorToBytes(t *testing.T) {
	b := vectorToBytes([]float32{1.0})
	if len(b) != 4 {
		t.Fatalf("expected 4 bytes per float32, got %d", len(b))
	}
	// 1.0 in IEEE-754 little-endian is 00 00 80 3F.
	if b[0] != 0x00 || b[1] != 0x00 || b[2] != 0x80 || b[3] != 0x3f {
		t.Fatalf("unexpected encoding: % x", []byte(b))
	}
}
