package pipeline

// dedupeSet tracks canonical hashes seen during a single run. It is owned by
// one run's thread of control and never persisted, so peak memory grows with
// the number of unique records only (one 64-byte hex digest each), never with
// record bodies.
type dedupeSet map[string]struct{}

func newDedupeSet() dedupeSet {
	return make(dedupeSet)
}

// seen records h and reports whether it was already present.
func (s dedupeSet) seen(h string) bool {
	if _, ok := s[h]; ok {
		return true
	}
	s[h] = struct{}{}
	return false
}
