package bcfg

// BBSet is a set of basic block ids, grounded on pkg/regalloc's RegSet
// usage pattern (a map-backed set with Add/Contains/Copy, consulted from
// dataflow algorithms that need membership tests far more often than
// iteration order).
type BBSet map[BBID]struct{}

// NewBBSet returns an empty set.
func NewBBSet() BBSet {
	return make(BBSet)
}

// Add inserts id into the set.
func (s BBSet) Add(id BBID) {
	s[id] = struct{}{}
}

// Remove deletes id from the set.
func (s BBSet) Remove(id BBID) {
	delete(s, id)
}

// Contains reports whether id is a member.
func (s BBSet) Contains(id BBID) bool {
	_, ok := s[id]
	return ok
}

// Copy returns a shallow copy of the set.
func (s BBSet) Copy() BBSet {
	c := make(BBSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Equal reports whether s and other contain exactly the same ids.
func (s BBSet) Equal(other BBSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}

// Slice returns the set's members in no particular order.
func (s BBSet) Slice() []BBID {
	out := make([]BBID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}
