package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mnesler/vector-mtg-sub000/internal/domain/card"
)

// Parse extracts structured constraints from a free-text query. It never
// fails: unrecognized text simply stays in the positive search terms.
//
// Passes run in a fixed order, and every recognized span is stripped from the
// working text so later passes only see residual text. The order matters:
// "not black" must be consumed by the exclusion pass before the bare-mention
// pass would read "black" as an inclusion.
func Parse(raw string) ParsedQuery {
	work := strings.ToLower(strings.TrimSpace(raw))

	var f Filters
	exclusions := NewOrderedSet()

	work = parseCost(work, &f)
	work = parsePowerToughness(work, &f)
	work = parseColors(work, &f, exclusions)
	work = parseTypes(work, &f)
	work = parseRarity(work, &f)
	work = parseKeywords(work, &f, exclusions)

	return ParsedQuery{
		Raw:        raw,
		Terms:      cleanResidual(work),
		Exclusions: exclusions,
		Filters:    f,
	}
}

// group returns the i-th submatch of a FindStringSubmatchIndex result.
func group(s string, loc []int, i int) string {
	if loc[2*i] < 0 {
		return ""
	}
	return s[loc[2*i]:loc[2*i+1]]
}

// strip removes the span [start, end) from s, leaving a single space so
// word boundaries around the removed span survive.
func strip(s string, start, end int) string {
	return s[:start] + " " + s[end:]
}

func mustFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// --- Pass 1: converted mana cost ---

type costRule struct {
	re    *regexp.Regexp
	apply func(s string, loc []int) Comparison
}

func numCmp(op CompareOp, grp int) func(string, []int) Comparison {
	return func(s string, loc []int) Comparison {
		return Comparison{Op: op, Value: mustFloat(group(s, loc, grp))}
	}
}

// costRules are tried in order; the first hit wins and only one cost
// constraint is ever set per query. More specific phrasings come first so
// "3 or more mana" is not read as the bare "3 mana" form.
var costRules = []costRule{
	{regexp.MustCompile(`\b(?:more|greater)\s+than\s+(\d+)(?:\s+(?:mana|cost))?\b`), numCmp(OpGT, 1)},
	{regexp.MustCompile(`\b(?:less|fewer)\s+than\s+(\d+)(?:\s+(?:mana|cost))?\b`), numCmp(OpLT, 1)},
	{regexp.MustCompile(`\b(\d+)\s+or\s+more(?:\s+(?:mana|cost))?\b`), numCmp(OpGTE, 1)},
	{regexp.MustCompile(`\b(\d+)\s+or\s+(?:less|fewer)(?:\s+(?:mana|cost))?\b`), numCmp(OpLTE, 1)},
	{regexp.MustCompile(`\bexactly\s+(\d+)(?:\s+(?:mana|cost))?\b`), numCmp(OpEQ, 1)},
	{regexp.MustCompile(`\b(?:cmc|cost|mana)\s*(>=|<=|=|>|<)\s*(\d+)\b`), func(s string, loc []int) Comparison {
		return Comparison{Op: CompareOp(group(s, loc, 1)), Value: mustFloat(group(s, loc, 2))}
	}},
	{regexp.MustCompile(`\b(\d+)\s+(?:mana|cost)\b`), numCmp(OpEQ, 1)},
}

func parseCost(s string, f *Filters) string {
	for _, r := range costRules {
		loc := r.re.FindStringSubmatchIndex(s)
		if loc == nil {
			continue
		}
		cmp := r.apply(s, loc)
		f.CMC = &cmp
		return strip(s, loc[0], loc[1])
	}
	return s
}

// --- Pass 2: power / toughness ---

var (
	ptBiggerRe  = regexp.MustCompile(`\b(\d+)\s*/\s*(\d+)\s+or\s+(?:bigger|greater|larger)\b`)
	ptSmallerRe = regexp.MustCompile(`\b(\d+)\s*/\s*(\d+)\s+or\s+(?:smaller|less)\b`)
	ptExactRe   = regexp.MustCompile(`\b(\d+)\s*/\s*(\d+)\b`)
	powerCmpRe  = regexp.MustCompile(`\bpower\s*(>=|<=|=|>|<)\s*(\d+)\b`)
	toughCmpRe  = regexp.MustCompile(`\btoughness\s*(>=|<=|=|>|<)\s*(\d+)\b`)
)

func parsePowerToughness(s string, f *Filters) string {
	// Combined X/Y forms bound power and toughness at once.
	if loc := ptBiggerRe.FindStringSubmatchIndex(s); loc != nil {
		f.Power = &Comparison{Op: OpGTE, Value: mustFloat(group(s, loc, 1))}
		f.Toughness = &Comparison{Op: OpGTE, Value: mustFloat(group(s, loc, 2))}
		s = strip(s, loc[0], loc[1])
	} else if loc := ptSmallerRe.FindStringSubmatchIndex(s); loc != nil {
		f.Power = &Comparison{Op: OpLTE, Value: mustFloat(group(s, loc, 1))}
		f.Toughness = &Comparison{Op: OpLTE, Value: mustFloat(group(s, loc, 2))}
		s = strip(s, loc[0], loc[1])
	} else if loc := ptExactRe.FindStringSubmatchIndex(s); loc != nil {
		f.Power = &Comparison{Op: OpEQ, Value: mustFloat(group(s, loc, 1))}
		f.Toughness = &Comparison{Op: OpEQ, Value: mustFloat(group(s, loc, 2))}
		s = strip(s, loc[0], loc[1])
	}

	if f.Power == nil {
		if loc := powerCmpRe.FindStringSubmatchIndex(s); loc != nil {
			f.Power = &Comparison{Op: CompareOp(group(s, loc, 1)), Value: mustFloat(group(s, loc, 2))}
			s = strip(s, loc[0], loc[1])
		}
	}
	if f.Toughness == nil {
		if loc := toughCmpRe.FindStringSubmatchIndex(s); loc != nil {
			f.Toughness = &Comparison{Op: CompareOp(group(s, loc, 1)), Value: mustFloat(group(s, loc, 2))}
			s = strip(s, loc[0], loc[1])
		}
	}

	return s
}

// --- Pass 3: colors ---

const colorAlt = `white|blue|black|red|green`

var (
	onlyColorRe = regexp.MustCompile(`\bonly\s+(` + colorAlt + `)\b`)
	notColorRe  = regexp.MustCompile(`\b(?:not|no|without)\s+(` + colorAlt + `)\b`)
	bareColorRe = regexp.MustCompile(`\b(` + colorAlt + `)\b`)
)

func parseColors(s string, f *Filters, exclusions *OrderedSet) string {
	// (a) "only COLOR" pins the sole allowed color and rules every other
	// color out.
	if loc := onlyColorRe.FindStringSubmatchIndex(s); loc != nil {
		code, _ := card.ColorCode(group(s, loc, 1))
		f.OnlyColors = []string{code}
		for _, other := range card.ColorCodes {
			if other != code {
				f.ExcludeColors = append(f.ExcludeColors, other)
			}
		}
		s = strip(s, loc[0], loc[1])
	}

	// (b) explicit exclusions, consumed before the bare-mention pass so
	// "not black" never reads as an inclusion of black.
	for {
		loc := notColorRe.FindStringSubmatchIndex(s)
		if loc == nil {
			break
		}
		name := group(s, loc, 1)
		code, _ := card.ColorCode(name)
		if !containsStr(f.ExcludeColors, code) {
			f.ExcludeColors = append(f.ExcludeColors, code)
		}
		exclusions.Add(name)
		s = strip(s, loc[0], loc[1])
	}

	// (c) remaining bare color mentions become inclusions, unless already
	// excluded or an "only" clause fired.
	for {
		loc := bareColorRe.FindStringSubmatchIndex(s)
		if loc == nil {
			break
		}
		code, _ := card.ColorCode(group(s, loc, 1))
		if len(f.OnlyColors) == 0 &&
			!containsStr(f.ExcludeColors, code) && !containsStr(f.IncludeColors, code) {
			f.IncludeColors = append(f.IncludeColors, code)
		}
		s = strip(s, loc[0], loc[1])
	}

	return s
}

func containsStr(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// --- Pass 4: card types ---

var typeRes = buildTypeRes()

func buildTypeRes() map[string]*regexp.Regexp {
	res := make(map[string]*regexp.Regexp, len(card.Types))
	for _, t := range card.Types {
		res[t] = regexp.MustCompile(`\b` + t + `s?\b`)
	}
	return res
}

func parseTypes(s string, f *Filters) string {
	// Vocabulary order keeps TypeContains deterministic.
	for _, t := range card.Types {
		re := typeRes[t]
		if !re.MatchString(s) {
			continue
		}
		if !containsStr(f.TypeContains, t) {
			f.TypeContains = append(f.TypeContains, t)
		}
		s = re.ReplaceAllString(s, " ")
	}
	return s
}

// --- Pass 5: rarity ---

// rarityPrecedence orders the vocabulary so multi-word phrases win over
// their single-word suffixes ("mythic rare" before "rare").
var rarityPrecedence = []string{"mythic rare", "mythic", "uncommon", "rare", "common"}

var rarityRes = buildRarityRes()

func buildRarityRes() map[string]*regexp.Regexp {
	res := make(map[string]*regexp.Regexp, len(rarityPrecedence))
	for _, phrase := range rarityPrecedence {
		res[phrase] = regexp.MustCompile(`\b` + strings.ReplaceAll(phrase, " ", `\s+`) + `\b`)
	}
	return res
}

func parseRarity(s string, f *Filters) string {
	for _, phrase := range rarityPrecedence {
		loc := rarityRes[phrase].FindStringIndex(s)
		if loc == nil {
			continue
		}
		f.Rarity = card.Rarities[phrase]
		return strip(s, loc[0], loc[1])
	}
	return s
}

// --- Pass 6: keyword abilities ---

var (
	keywordAlt    = buildKeywordAlt()
	withKeywordRe = regexp.MustCompile(`\b(?:with|has|having)\s+(` + keywordAlt + `)\b`)
	noKeywordRe   = regexp.MustCompile(`\b(?:without|no)\s+(` + keywordAlt + `)\b`)
	spacesRe      = regexp.MustCompile(`\s+`)
)

func buildKeywordAlt() string {
	alts := make([]string, len(card.Keywords))
	for i, kw := range card.Keywords {
		alts[i] = strings.ReplaceAll(kw, " ", `\s+`)
	}
	return strings.Join(alts, "|")
}

func parseKeywords(s string, f *Filters, exclusions *OrderedSet) string {
	for {
		loc := noKeywordRe.FindStringSubmatchIndex(s)
		if loc == nil {
			break
		}
		kw := spacesRe.ReplaceAllString(group(s, loc, 1), " ")
		if !containsStr(f.KeywordsExclude, kw) {
			f.KeywordsExclude = append(f.KeywordsExclude, kw)
		}
		exclusions.Add(kw)
		s = strip(s, loc[0], loc[1])
	}

	for {
		loc := withKeywordRe.FindStringSubmatchIndex(s)
		if loc == nil {
			break
		}
		kw := spacesRe.ReplaceAllString(group(s, loc, 1), " ")
		if !containsStr(f.KeywordsInclude, kw) {
			f.KeywordsInclude = append(f.KeywordsInclude, kw)
		}
		s = strip(s, loc[0], loc[1])
	}

	return s
}

// --- Pass 7: residual cleanup ---

// connectors are glue words dropped from the residual search text.
var connectors = map[string]bool{
	"but": true, "and": true, "or": true,
	"the": true, "a": true, "an": true,
}

func cleanResidual(s string) string {
	fields := strings.Fields(s)
	out := make([]string, 0, len(fields))
	for _, w := range fields {
		w = strings.Trim(w, ",.;:!?")
		if w == "" || connectors[w] {
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}
