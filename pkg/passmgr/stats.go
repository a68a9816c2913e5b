package passmgr

// Stats records run/change counts per pass id, the Go-idiomatic
// replacement for the original decompiler's per-procedure DFA counters
// used by its -Td trace-dataflow debug switch (SPEC_FULL.md §3 EXPANSION).
// Exposed to the CLI's --debug-gen flag.
type Stats struct {
	runs    map[ID]int
	changes map[ID]int
}

// NewStats returns an empty Stats.
func NewStats() *Stats {
	return &Stats{runs: make(map[ID]int), changes: make(map[ID]int)}
}

func (s *Stats) record(id ID, changed bool) {
	s.runs[id]++
	if changed {
		s.changes[id]++
	}
}

// Runs returns how many times id has been run.
func (s *Stats) Runs(id ID) int { return s.runs[id] }

// Changes returns how many of those runs reported a change.
func (s *Stats) Changes(id ID) int { return s.changes[id] }

// Reset clears all counters, used between independent procedures in
// batch/test runs so counts don't accumulate across unrelated decompiles.
func (s *Stats) Reset() {
	s.runs = make(map[ID]int)
	s.changes = make(map[ID]int)
}
