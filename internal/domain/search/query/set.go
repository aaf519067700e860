package query

// OrderedSet is a string set that remembers insertion order. Duplicate adds
// are ignored, so output order is deterministic for a given input sequence.
type OrderedSet struct {
	values []string
	index  map[string]struct{}
}

// NewOrderedSet creates an empty ordered set.
func NewOrderedSet(values ...string) *OrderedSet {
	s := &OrderedSet{index: make(map[string]struct{})}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserts v unless already present. Reports whether v was inserted.
func (s *OrderedSet) Add(v string) bool {
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.values = append(s.values, v)
	return true
}

// Has reports whether v is in the set.
func (s *OrderedSet) Has(v string) bool {
	_, ok := s.index[v]
	return ok
}

// Values returns the members in insertion order. The caller must not mutate
// the returned slice.
func (s *OrderedSet) Values() []string { return s.values }

// Len returns the number of members.
func (s *OrderedSet) Len() int { return len(s.values) }
