package domain

// KeyPrefix namespaces every Redis key written by this service.
// Overridden from config at startup, before any store access.
var KeyPrefix = "mtg:"

// CardKey returns the hash key for a card.
func CardKey(id string) string { return KeyPrefix + "card:" + id }

// RuleKey returns the hash key for a rule.
func RuleKey(id string) string { return KeyPrefix + "rule:" + id }

// CardRuleKey returns the hash key for a (card, rule) match row.
// Keying by the pair makes re-extraction an overwrite, never a duplicate.
func CardRuleKey(cardID, ruleID string) string {
	return KeyPrefix + "cardrule:" + cardID + ":" + ruleID
}

// CardIndex is the FT index name for cards.
func CardIndex() string { return KeyPrefix + "card:idx" }

// RuleIndex is the FT index name for rules.
func RuleIndex() string { return KeyPrefix + "rule:idx" }
