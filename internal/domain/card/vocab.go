package card

import "strings"

// ColorCodes lists the five color letters in canonical WUBRG order.
var ColorCodes = []string{"W", "U", "B", "R", "G"}

// colorNames maps spoken color names to their single-letter codes.
var colorNames = map[string]string{
	"white": "W",
	"blue":  "U",
	"black": "B",
	"red":   "R",
	"green": "G",
}

// ColorCode resolves a color name ("black") to its letter code ("B").
func ColorCode(name string) (string, bool) {
	code, ok := colorNames[strings.ToLower(name)]
	return code, ok
}

// ColorName resolves a letter code back to its spoken name.
func ColorName(code string) (string, bool) {
	for name, c := range colorNames {
		if c == strings.ToUpper(code) {
			return name, true
		}
	}
	return "", false
}

// Types is the fixed vocabulary of card types the query parser recognizes.
var Types = []string{
	"creature",
	"instant",
	"sorcery",
	"enchantment",
	"artifact",
	"planeswalker",
	"land",
	"battle",
}

// Rarities maps recognized rarity phrases to their stored value. Multi-word
// phrases are matched whole; the stored value carries no whitespace.
var Rarities = map[string]string{
	"mythic rare": "mythic",
	"mythic":      "mythic",
	"rare":        "rare",
	"uncommon":    "uncommon",
	"common":      "common",
}

// Keywords is the fixed vocabulary of keyword abilities the query parser
// recognizes. Multi-word keywords are listed before their prefixes so phrase
// matching prefers the longer form.
var Keywords = []string{
	"first strike",
	"double strike",
	"flying",
	"trample",
	"haste",
	"vigilance",
	"deathtouch",
	"lifelink",
	"reach",
	"flash",
	"hexproof",
	"menace",
	"defender",
	"indestructible",
	"ward",
	"prowess",
}

// IsKeyword reports whether s is a recognized keyword ability.
func IsKeyword(s string) bool {
	s = strings.ToLower(s)
	for _, kw := range Keywords {
		if s == kw {
			return true
		}
	}
	return false
}
