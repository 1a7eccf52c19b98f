// Package trace provides admission-decision recording for queueing simulation runs.
// It has no dependencies on sim/ and stores pure data types.
package trace

// AdmissionOutcome is what happened to a job at arrival.
type AdmissionOutcome string

const (
	// OutcomeDispatched means a free server took the job immediately.
	OutcomeDispatched AdmissionOutcome = "dispatched"
	// OutcomeBuffered means the job waits in the buffer.
	OutcomeBuffered AdmissionOutcome = "buffered"
	// OutcomeLost means every server was busy and the buffer was full.
	OutcomeLost AdmissionOutcome = "lost"
)

// AdmissionRecord captures a single arrival's admission decision.
type AdmissionRecord struct {
	JobID       int
	Clock       float64
	Outcome     AdmissionOutcome
	BufferLen   int // buffer occupancy after the decision
	BusyServers int // busy server slots after the decision
}
