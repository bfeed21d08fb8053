package pipeline

// Stats summarizes one pipeline run. It is created at run start, threaded
// through the run, and returned to the caller; there is no ambient global
// counter state, so repeated runs in one process cannot interfere.
type Stats struct {
	// LinesSeen counts raw input lines, including blank ones.
	LinesSeen int
	// RecordsSeen counts accepted records before deduplication.
	RecordsSeen int
	// Written counts records actually written to the accepted output.
	Written int
	// DuplicatesSkipped counts records dropped by deduplication.
	DuplicatesSkipped int
	// Discarded counts discard records produced.
	Discarded int
}
