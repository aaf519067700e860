package rule

import (
	"encoding/binary"
	"encoding/json"
	"math"

	domrule "github.com/mnesler/vector-mtg-sub000/internal/domain/rule"
)

// Store field names for rule hashes.
const (
	fieldName     = "name"
	fieldTemplate = "template"
	fieldPattern  = "pattern"
	fieldCategory = "category"
	fieldParams   = "params"
	fieldVector   = "vector"
)

func buildFields(r *domrule.Rule) map[string]string {
	fields := map[string]string{
		fieldName:     r.Name,
		fieldTemplate: r.Template,
		fieldPattern:  r.Pattern,
		fieldCategory: r.Category,
	}
	if len(r.Params) > 0 {
		if data, err := json.Marshal(r.Params); err == nil {
			fields[fieldParams] = string(data)
		}
	}
	if len(r.Vector) > 0 {
		fields[fieldVector] = encodeVector(r.Vector)
	}
	return fields
}

// parseFields reconstructs a rule and compiles its pattern. The second
// return value is false when a non-empty pattern failed to compile.
func parseFields(id string, fields map[string]string) (domrule.Rule, bool) {
	var params map[string]domrule.ParamType
	if raw := fields[fieldParams]; raw != "" {
		// a malformed schema degrades to a parameterless rule
		_ = json.Unmarshal([]byte(raw), &params)
	}

	var vector []float32
	if raw, ok := fields[fieldVector]; ok {
		vector = decodeVector(raw)
	}

	return domrule.New(
		id,
		fields[fieldName],
		fields[fieldTemplate],
		fields[fieldPattern],
		fields[fieldCategory],
		params,
		vector,
	)
}

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
