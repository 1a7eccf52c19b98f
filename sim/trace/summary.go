package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDecisions int
	Dispatched     int
	Buffered       int
	Lost           int
	LossRatio      float64
	PeakBufferLen  int
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{}
	if st == nil {
		return summary
	}

	summary.TotalDecisions = len(st.Admissions)
	for _, a := range st.Admissions {
		switch a.Outcome {
		case OutcomeDispatched:
			summary.Dispatched++
		case OutcomeBuffered:
			summary.Buffered++
		case OutcomeLost:
			summary.Lost++
		}
		if a.BufferLen > summary.PeakBufferLen {
			summary.PeakBufferLen = a.BufferLen
		}
	}
	if summary.TotalDecisions > 0 {
		summary.LossRatio = float64(summary.Lost) / float64(summary.TotalDecisions)
	}
	return summary
}
