package pipeline

// RunStats tracks aggregate counters and byte totals across a batch run.
type RunStats struct {
	Total            int
	Current          int
	Pixelated        int
	Skipped          int
	Failed           int
	Interrupted      bool
	TotalInputBytes  int64
	TotalOutputBytes int64
}

// Growth returns the aggregate byte difference between outputs and inputs.
// Pixelated JPEGs are usually smaller, so this is typically negative.
func (s *RunStats) Growth() int64 {
	return s.TotalOutputBytes - s.TotalInputBytes
}
