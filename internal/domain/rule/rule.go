// Package rule holds the rule taxonomy entities: rules describing card
// mechanics and the (card, rule) matches the extraction engine produces.
package rule

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ParamType is the declared type of a rule parameter.
type ParamType string

// Supported parameter types.
const (
	ParamInt    ParamType = "int"
	ParamFloat  ParamType = "float"
	ParamString ParamType = "string"
)

// Rule describes one card mechanic. Pattern may be absent or invalid; such
// rules still participate in similarity matching.
type Rule struct {
	ID       string
	Name     string
	Template string
	Pattern  string
	Category string
	Params   map[string]ParamType

	// Vector embeds name, template and category. Absent when the rule was
	// never embedded; such rules are skipped by similarity matching.
	Vector []float32

	compiled *regexp.Regexp
}

// New builds a rule and compiles its pattern once, case-insensitively.
// An invalid pattern leaves the rule without a compiled matcher instead of
// failing; the second return value reports whether compilation succeeded for
// a non-empty pattern.
func New(id, name, template, pattern, category string, params map[string]ParamType, vector []float32) (Rule, bool) {
	r := Rule{
		ID:       id,
		Name:     name,
		Template: template,
		Pattern:  pattern,
		Category: category,
		Params:   params,
		Vector:   vector,
	}
	if pattern == "" {
		return r, true
	}
	compiled, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return r, false
	}
	r.compiled = compiled
	return r, true
}

// HasPattern reports whether the rule carries a usable compiled pattern.
func (r *Rule) HasPattern() bool { return r.compiled != nil }

// MatchText tests the rule's pattern against the given rules text. Rules
// without a usable pattern never match.
func (r *Rule) MatchText(text string) bool {
	if r.compiled == nil {
		return false
	}
	return r.compiled.MatchString(text)
}

// EmbeddingText is the text the rule vector is computed over.
func (r *Rule) EmbeddingText() string {
	parts := make([]string, 0, 3)
	if r.Name != "" {
		parts = append(parts, r.Name)
	}
	if r.Template != "" {
		parts = append(parts, r.Template)
	}
	if r.Category != "" {
		parts = append(parts, r.Category)
	}
	return strings.Join(parts, "\n")
}

var (
	numberRe     = regexp.MustCompile(`\d+`)
	targetTypeRe = regexp.MustCompile(`(?i)target\s+([a-z]+)`)
)

// ExtractParams binds parameter values from the card's rules text against the
// rule's parameter schema. Numeric tokens are assigned to numeric parameters
// in schema-name order; a "target <word>" phrase binds a target_type
// parameter. Unbound parameters are simply absent from the result.
func (r *Rule) ExtractParams(text string) map[string]any {
	if len(r.Params) == 0 {
		return nil
	}

	bound := make(map[string]any)

	numeric := make([]string, 0, len(r.Params))
	for name, typ := range r.Params {
		if typ == ParamInt || typ == ParamFloat {
			numeric = append(numeric, name)
		}
	}
	sort.Strings(numeric)

	numbers := numberRe.FindAllString(text, len(numeric))
	for i, name := range numeric {
		if i >= len(numbers) {
			break
		}
		switch r.Params[name] {
		case ParamInt:
			if v, err := strconv.Atoi(numbers[i]); err == nil {
				bound[name] = v
			}
		case ParamFloat:
			if v, err := strconv.ParseFloat(numbers[i], 64); err == nil {
				bound[name] = v
			}
		}
	}

	if typ, ok := r.Params["target_type"]; ok && typ == ParamString {
		if m := targetTypeRe.FindStringSubmatch(text); m != nil {
			bound["target_type"] = strings.ToLower(m[1])
		}
	}

	if len(bound) == 0 {
		return nil
	}
	return bound
}
