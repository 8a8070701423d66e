package store

import "time"

// Run records one pipeline execution
type Run struct {
	ID             int64
	Operation      string // "compress", "archive", "delete"
	DryRun         bool
	StartTime      time.Time
	EndTime        time.Time
	Discovered     int
	Matched        int
	Acted          int
	Failed         int
	SkippedServers int
	Status         string // "running", "completed", "partial"
}

// RunError records one per-unit failure within a run
type RunError struct {
	ID        int64
	RunID     int64
	Server    string
	Unit      string
	Reason    string
	CreatedAt time.Time
}
