package trace

// TraceLevel selects what a SimulationTrace records.
type TraceLevel string

const (
	// TraceLevelNone records nothing.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions records one AdmissionRecord per arrival.
	TraceLevelDecisions TraceLevel = "decisions"
)

var validTraceLevels = map[TraceLevel]bool{
	"":                  true, // same as none
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
}

// IsValidTraceLevel reports whether level names a TraceLevel. Matching is
// case-sensitive.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig holds the recording options of a SimulationTrace.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace is the in-memory admission log of one engine. The engine
// resets it at the start of every run, so it always describes the latest run.
type SimulationTrace struct {
	Config     TraceConfig
	Admissions []AdmissionRecord // in arrival order
}

// NewSimulationTrace returns an empty trace with the given options.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{Config: config, Admissions: []AdmissionRecord{}}
}

// Enabled is false for a nil trace and for any level other than decisions.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Config.Level == TraceLevelDecisions
}

// RecordAdmission appends record. Callers check Enabled first.
func (st *SimulationTrace) RecordAdmission(record AdmissionRecord) {
	st.Admissions = append(st.Admissions, record)
}

// Reset empties the log and keeps Config.
func (st *SimulationTrace) Reset() {
	st.Admissions = st.Admissions[:0]
}
