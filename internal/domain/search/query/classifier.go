package query

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mnesler/vector-mtg-sub000/internal/domain/search/method"
)

// maxNameTokens is the longest whitespace-split query still considered a
// possible card name.
const maxNameTokens = 5

// nameStopWords are descriptive connectors that card names essentially never
// contain; their presence disqualifies the name heuristic.
var nameStopWords = map[string]bool{
	"with": true, "has": true, "having": true,
	"that": true, "which": true, "deals": true, "destroys": true,
}

// filterIndicatorRes detect structured-constraint phrasings. Any hit routes
// the query to filtered retrieval.
var filterIndicatorRes = []*regexp.Regexp{
	regexp.MustCompile(`[<>=]`),
	regexp.MustCompile(`\d+\s*/\s*\d+`),
	regexp.MustCompile(`(?i)\b(?:cmc|mana|only|not|without|rare|mythic|uncommon|common|power|toughness)\b`),
	regexp.MustCompile(`(?i)\b(?:more|less|fewer|greater)\s+than\b`),
}

// Classify routes a free-text query to a retrieval strategy. The name check
// runs first on purpose: a capitalized multi-word name containing a digit
// must not be misrouted to filtered retrieval.
func Classify(q string) method.Method {
	if looksLikeName(q) {
		return method.Literal
	}
	for _, re := range filterIndicatorRes {
		if re.MatchString(q) {
			return method.Filtered
		}
	}
	return method.Similarity
}

// looksLikeName reports whether the query is plausibly a card name: at most
// maxNameTokens tokens, at least half of them capitalized, and none of the
// descriptive stop words.
func looksLikeName(q string) bool {
	tokens := strings.Fields(q)
	if len(tokens) == 0 || len(tokens) > maxNameTokens {
		return false
	}

	capitalized := 0
	for _, tok := range tokens {
		if nameStopWords[strings.ToLower(tok)] {
			return false
		}
		r := []rune(tok)[0]
		if unicode.IsUpper(r) {
			capitalized++
		}
	}

	return capitalized*2 >= len(tokens)
}
