// Package method enumerates the retrieval strategies a query can route to.
package method

// Method is the retrieval strategy.
type Method string

// Retrieval strategy constants.
const (
	// Literal retrieves by exact and substring text matching.
	Literal Method = "literal"
	// Filtered retrieves by structured predicates extracted from the query,
	// optionally combined with vector similarity.
	Filtered Method = "filtered"
	// Similarity retrieves by nearest-neighbor embedding distance.
	Similarity Method = "similarity"
)

// IsValid checks if the method is one of the supported values.
func (m Method) IsValid() bool {
	return m == Literal || m == Filtered || m == Similarity
}
