package db

import "github.com/mnesler/vector-mtg-sub000/internal/domain/search/filter"

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName string
	// VectorField is the schema name of the vector field to search.
	VectorField  string
	Filters      filter.Expression
	Vector       []float32
	K            int
	ReturnFields []string
}

// TextQuery is the input for full-text search across one or more TEXT fields.
// Multiple fields combine with OR: a hit in any field qualifies the row.
type TextQuery struct {
	IndexName    string
	Query        string
	TextFields   []string
	Filters      filter.Expression
	TopK         int
	ReturnFields []string
}

// FilterQuery is the input for predicate-only search: structured filters
// with offset pagination and no ranking signal.
type FilterQuery struct {
	IndexName    string
	Filters      filter.Expression
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
