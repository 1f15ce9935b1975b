package models

import "time"

// Report summarises a single enrichment run.
type Report struct {
	Docks      int            // Docks is the number of rows written.
	Matched    map[string]int // Matched counts assigned docks per layer name.
	Unassigned map[string]int // Unassigned counts docks with no boundary per layer name.
	Persisted  int            // Persisted counts docks updated in the database.
	Skipped    int            // Skipped counts docks not found in the database.
	Duration   time.Duration  // Duration is the wall time of the run.
}

// NewReport returns an empty report with initialised counters.
func NewReport() *Report {
	return &Report{
		Matched:    make(map[string]int),
		Unassigned: make(map[string]int),
	}
}
