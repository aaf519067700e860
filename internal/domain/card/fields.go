package card

// Store field names for card hashes. Shared by the filter translation and
// the repository layer so predicates and stored rows never drift apart.
const (
	FieldName       = "name"
	FieldManaCost   = "mana_cost"
	FieldCMC        = "cmc"
	FieldTypeLine   = "type_line"
	FieldTypes      = "types"
	FieldRulesText  = "rules_text"
	FieldColors     = "colors"
	FieldKeywords   = "keywords"
	FieldRarity     = "rarity"
	FieldPower      = "power"
	FieldToughness  = "toughness"
	FieldReleasedAt = "released_at"
	FieldFullVector = "full_vector"
	FieldTextVector = "text_vector"
)
