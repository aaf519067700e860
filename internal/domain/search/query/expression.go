package query

import (
	"strings"

	"github.com/mnesler/vector-mtg-sub000/internal/domain/card"
	"github.com/mnesler/vector-mtg-sub000/internal/domain/search/filter"
)

// Expression renders the extracted filters as a store predicate. Values
// within one dimension combine with OR (a single tag clause with
// alternation), dimensions combine with AND, exclusions negate.
//
// Color exclusions hold vacuously for colorless cards: a row without a
// colors field can never match the negated tag clause, so "not black"
// keeps zero-cost artifacts in the result set.
func (f *Filters) Expression() filter.Expression {
	var must, mustNot []filter.Condition

	if f.CMC != nil {
		must = append(must, filter.NumRange(card.FieldCMC, rangeFor(*f.CMC)))
	}
	if f.Power != nil {
		must = append(must, filter.NumRange(card.FieldPower, rangeFor(*f.Power)))
	}
	if f.Toughness != nil {
		must = append(must, filter.NumRange(card.FieldToughness, rangeFor(*f.Toughness)))
	}

	switch {
	case len(f.OnlyColors) > 0:
		must = append(must, filter.Match(card.FieldColors, strings.Join(f.OnlyColors, "|")))
	case len(f.IncludeColors) > 0:
		must = append(must, filter.Match(card.FieldColors, strings.Join(f.IncludeColors, "|")))
	}
	for _, code := range f.ExcludeColors {
		mustNot = append(mustNot, filter.Match(card.FieldColors, code))
	}

	if len(f.TypeContains) > 0 {
		must = append(must, filter.Match(card.FieldTypes, strings.Join(f.TypeContains, "|")))
	}
	if f.Rarity != "" {
		must = append(must, filter.Match(card.FieldRarity, f.Rarity))
	}

	for _, kw := range f.KeywordsInclude {
		must = append(must, filter.Match(card.FieldKeywords, kw))
	}
	for _, kw := range f.KeywordsExclude {
		mustNot = append(mustNot, filter.Match(card.FieldKeywords, kw))
	}

	return filter.New(must, nil, mustNot)
}

func rangeFor(c Comparison) filter.Range {
	switch c.Op {
	case OpGT:
		return filter.GreaterThan(c.Value)
	case OpGTE:
		return filter.AtLeast(c.Value)
	case OpLT:
		return filter.LessThan(c.Value)
	case OpLTE:
		return filter.AtMost(c.Value)
	default:
		return filter.Exactly(c.Value)
	}
}
