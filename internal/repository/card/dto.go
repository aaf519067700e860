package card

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"
	"time"

	domcard "github.com/mnesler/vector-mtg-sub000/internal/domain/card"
)

// releaseDateLayout is the wire format for the released_at hash field.
const releaseDateLayout = "2006-01-02"

// tagSeparator joins multi-valued TAG fields in card hashes.
const tagSeparator = ","

// returnFields are the hash fields fetched back from FT.SEARCH for card
// rows. Vector fields are excluded: they are write-only from the search
// path's point of view.
var returnFields = []string{
	domcard.FieldName,
	domcard.FieldManaCost,
	domcard.FieldCMC,
	domcard.FieldTypeLine,
	domcard.FieldTypes,
	domcard.FieldRulesText,
	domcard.FieldColors,
	domcard.FieldKeywords,
	domcard.FieldRarity,
	domcard.FieldPower,
	domcard.FieldToughness,
	domcard.FieldReleasedAt,
}

// buildFields maps a card onto its stored hash representation. Optional
// fields (power, toughness, release date, vectors) are omitted when absent
// so a missing hash field means a missing value, never a zero.
func buildFields(c *domcard.Card) map[string]string {
	fields := map[string]string{
		domcard.FieldName:      c.Name,
		domcard.FieldManaCost:  c.ManaCost,
		domcard.FieldCMC:       strconv.FormatFloat(c.CMC, 'f', -1, 64),
		domcard.FieldTypeLine:  c.TypeLine,
		domcard.FieldTypes:     strings.Join(c.Types, tagSeparator),
		domcard.FieldRulesText: c.RulesText,
		domcard.FieldColors:    strings.Join(c.Colors, tagSeparator),
		domcard.FieldKeywords:  strings.Join(c.Keywords, tagSeparator),
		domcard.FieldRarity:    c.Rarity,
	}

	if c.Power != nil {
		fields[domcard.FieldPower] = strconv.FormatFloat(*c.Power, 'f', -1, 64)
	}
	if c.Toughness != nil {
		fields[domcard.FieldToughness] = strconv.FormatFloat(*c.Toughness, 'f', -1, 64)
	}
	if !c.ReleasedAt.IsZero() {
		fields[domcard.FieldReleasedAt] = c.ReleasedAt.Format(releaseDateLayout)
	}
	if len(c.FullVector) > 0 {
		fields[domcard.FieldFullVector] = encodeVector(c.FullVector)
	}
	if len(c.TextVector) > 0 {
		fields[domcard.FieldTextVector] = encodeVector(c.TextVector)
	}

	return fields
}

// parseFields reconstructs a card from its stored hash fields. Unparsable
// numeric or date values degrade to absent rather than failing the row.
func parseFields(id string, fields map[string]string) domcard.Card {
	c := domcard.Card{
		ID:        id,
		Name:      fields[domcard.FieldName],
		ManaCost:  fields[domcard.FieldManaCost],
		TypeLine:  fields[domcard.FieldTypeLine],
		RulesText: fields[domcard.FieldRulesText],
		Rarity:    fields[domcard.FieldRarity],
		Types:     splitTags(fields[domcard.FieldTypes]),
		Colors:    splitTags(fields[domcard.FieldColors]),
		Keywords:  splitTags(fields[domcard.FieldKeywords]),
	}

	if v, err := strconv.ParseFloat(fields[domcard.FieldCMC], 64); err == nil {
		c.CMC = v
	}
	if s, ok := fields[domcard.FieldPower]; ok {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			c.Power = &v
		}
	}
	if s, ok := fields[domcard.FieldToughness]; ok {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			c.Toughness = &v
		}
	}
	if s, ok := fields[domcard.FieldReleasedAt]; ok {
		if t, err := time.Parse(releaseDateLayout, s); err == nil {
			c.ReleasedAt = t
		}
	}
	if s, ok := fields[domcard.FieldFullVector]; ok {
		c.FullVector = decodeVector(s)
	}
	if s, ok := fields[domcard.FieldTextVector]; ok {
		c.TextVector = decodeVector(s)
	}

	return c
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, tagSeparator)
}

// encodeVector packs float32s into little-endian bytes, the layout
// FT.SEARCH expects for FLOAT32 vector fields.
func encodeVector(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

func decodeVector(s string) []float32 {
	if len(s) < 4 {
		return nil
	}
	v := make([]float32, len(s)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32([]byte(s[i*4 : i*4+4])))
	}
	return v
}
