// sim/simulator.go
package sim

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/queue-sim/sim/trace"
)

// Unbounded is the buffer capacity sentinel for a buffer with no size limit.
const Unbounded = -1

// DefaultMaxIterations bounds the number of events a single run may process.
const DefaultMaxIterations = 100_000_000

// StopReason reports which condition ended a run.
type StopReason string

const (
	// StopHorizon: the next event lies at or beyond the requested duration.
	StopHorizon StopReason = "horizon"
	// StopJobCount: the requested number of jobs has completed.
	StopJobCount StopReason = "job_count"
	// StopDrained: the event timeline is empty.
	StopDrained StopReason = "drained"
	// StopIterationCap: the iteration ceiling forced an early stop.
	StopIterationCap StopReason = "iteration_cap"
)

// ServerSlot is one of the engine's identical service channels.
// ProjectedFinish is meaningful only while Busy.
type ServerSlot struct {
	Busy            bool
	JobID           int
	ProjectedFinish float64
}

// Option configures optional Simulator behavior.
type Option func(*Simulator)

// WithMaxIterations overrides DefaultMaxIterations. Values <= 0 are ignored.
func WithMaxIterations(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.maxIterations = n
		}
	}
}

// WithTrace records every admission decision into st.
func WithTrace(st *trace.SimulationTrace) Option {
	return func(s *Simulator) {
		s.trace = st
	}
}

// Simulator is the core object that holds simulation time, server and buffer
// state, and the event loop.
//
// A Simulator is single-threaded. Independent instances share no mutable state
// and may run concurrently.
type Simulator struct {
	arrivalGen     Generator
	serviceGen     Generator
	numCores       int
	bufferCapacity int
	discipline     Discipline[*Job]
	maxIterations  int
	trace          *trace.SimulationTrace

	clock      float64
	events     *EventHeap
	servers    []ServerSlot
	busyCount  int
	activeJobs map[int]*Job
	nextJobID  int
	iterations int
	runID      string
	lastStop   StopReason

	inconsistencies int

	Metrics *Metrics
}

// NewSimulator builds an engine with numCores identical servers and a buffer of
// bufferCapacity slots (Unbounded for no limit). A nil discipline means FIFO.
func NewSimulator(arrival, service Generator, numCores, bufferCapacity int, discipline Discipline[*Job], opts ...Option) (*Simulator, error) {
	if arrival == nil || service == nil {
		return nil, fmt.Errorf("arrival and service generators are required: %w", ErrInvalidConfiguration)
	}
	if numCores <= 0 {
		return nil, fmt.Errorf("num_cores must be >= 1, got %d: %w", numCores, ErrInvalidConfiguration)
	}
	if bufferCapacity < Unbounded {
		return nil, fmt.Errorf("buffer capacity must be >= 0 or Unbounded, got %d: %w", bufferCapacity, ErrInvalidConfiguration)
	}
	if discipline == nil {
		discipline = NewFIFO[*Job]()
	}
	s := &Simulator{
		arrivalGen:     arrival,
		serviceGen:     service,
		numCores:       numCores,
		bufferCapacity: bufferCapacity,
		discipline:     discipline,
		maxIterations:  DefaultMaxIterations,
		events:         NewEventHeap(),
		servers:        make([]ServerSlot, numCores),
		activeJobs:     make(map[int]*Job),
		Metrics:        NewMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// reset restores the engine to time zero with an empty buffer, idle servers
// and fresh statistics.
func (sim *Simulator) reset() {
	sim.clock = 0
	sim.events.Reset()
	for i := range sim.servers {
		sim.servers[i] = ServerSlot{}
	}
	sim.busyCount = 0
	sim.activeJobs = make(map[int]*Job)
	sim.nextJobID = 0
	sim.iterations = 0
	sim.inconsistencies = 0
	sim.discipline = sim.discipline.Fresh()
	sim.Metrics = NewMetrics()
	sim.runID = uuid.NewString()
	sim.lastStop = ""
	if sim.trace != nil {
		sim.trace.Reset()
	}
}

// Run simulates from time zero until the next event would occur at or after
// duration. Every call resets all state first.
func (sim *Simulator) Run(duration float64) (StopReason, error) {
	if duration < 0 || math.IsNaN(duration) {
		return "", fmt.Errorf("duration must be >= 0, got %v: %w", duration, ErrInvalidConfiguration)
	}
	return sim.loop(duration, -1)
}

// RunUntil simulates from time zero until jobCount jobs have completed.
// Every call resets all state first.
func (sim *Simulator) RunUntil(jobCount int) (StopReason, error) {
	if jobCount < 0 {
		return "", fmt.Errorf("job count must be >= 0, got %d: %w", jobCount, ErrInvalidConfiguration)
	}
	return sim.loop(math.Inf(1), jobCount)
}

// loop drives the event timeline. A negative jobTarget disables the job-count
// stop condition.
func (sim *Simulator) loop(horizon float64, jobTarget int) (StopReason, error) {
	sim.reset()
	logrus.Infof("[run %s] starting: %s", sim.runID, sim.Configuration())

	sim.Schedule(&ArrivalEvent{time: sim.arrivalGen.Generate()})

	var reason StopReason
	for {
		if jobTarget >= 0 && sim.Metrics.Completed >= jobTarget {
			reason = StopJobCount
			break
		}
		next := sim.events.Peek()
		if next == nil {
			reason = StopDrained
			break
		}
		if next.Timestamp() >= horizon {
			reason = StopHorizon
			break
		}
		sim.iterations++
		if sim.iterations > sim.maxIterations {
			logrus.Warnf("[t=%.4f] iteration ceiling %d reached, stopping early", sim.clock, sim.maxIterations)
			reason = StopIterationCap
			break
		}

		ev := sim.events.PopNext()
		elapsed := ev.Timestamp() - sim.clock
		sim.Metrics.BusyTime += float64(sim.busyCount) * elapsed
		sim.clock = ev.Timestamp()
		logrus.Debugf("[t=%.4f] executing %s", sim.clock, ev.Kind())
		if err := ev.Execute(sim); err != nil {
			sim.lastStop = ""
			return "", fmt.Errorf("run aborted at t=%.6f: %w", sim.clock, err)
		}
	}

	sim.lastStop = reason
	logrus.Infof("[run %s] stopped (%s) at t=%.4f: arrivals=%d completed=%d lost=%d",
		sim.runID, reason, sim.clock, sim.Metrics.TotalArrivals, sim.Metrics.Completed, sim.Metrics.Lost)
	return reason, nil
}

// Schedule pushes an event onto the timeline.
func (sim *Simulator) Schedule(ev Event) {
	sim.events.Schedule(ev)
}

// freeServer returns the lowest-index idle slot, or -1 when all are busy.
func (sim *Simulator) freeServer() int {
	for i := range sim.servers {
		if !sim.servers[i].Busy {
			return i
		}
	}
	return -1
}

// bufferFull reports whether a new job would overflow the buffer.
func (sim *Simulator) bufferFull() bool {
	return sim.bufferCapacity != Unbounded && sim.discipline.Len() >= sim.bufferCapacity
}

// processArrival admits one job and schedules the next arrival.
func (sim *Simulator) processArrival() {
	sim.Metrics.TotalArrivals++
	job := NewJob(sim.nextJobID, sim.clock, sim.serviceGen.Generate())
	sim.nextJobID++

	var outcome trace.AdmissionOutcome
	if slot := sim.freeServer(); slot >= 0 {
		sim.activeJobs[job.ID] = job
		sim.startService(job, slot)
		outcome = trace.OutcomeDispatched
	} else if sim.bufferFull() {
		job.State = JobLost
		sim.Metrics.Lost++
		outcome = trace.OutcomeLost
		if logrus.IsLevelEnabled(logrus.TraceLevel) {
			logrus.Tracef("[t=%.4f] job %d lost, buffer full: %s", sim.clock, job.ID, sim.bufferString())
		}
	} else {
		sim.activeJobs[job.ID] = job
		job.State = JobQueued
		sim.discipline.Push(job)
		outcome = trace.OutcomeBuffered
		if logrus.IsLevelEnabled(logrus.TraceLevel) {
			logrus.Tracef("[t=%.4f] job %d buffered: %s", sim.clock, job.ID, sim.bufferString())
		}
	}

	if sim.trace.Enabled() {
		sim.trace.RecordAdmission(trace.AdmissionRecord{
			JobID:       job.ID,
			Clock:       sim.clock,
			Outcome:     outcome,
			BufferLen:   sim.discipline.Len(),
			BusyServers: sim.busyCount,
		})
	}

	sim.Schedule(&ArrivalEvent{time: sim.clock + sim.arrivalGen.Generate()})
}

// bufferString renders the buffer contents when the discipline can print
// itself, otherwise its name and length.
func (sim *Simulator) bufferString() string {
	if s, ok := sim.discipline.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%s(%d)", sim.discipline.Name(), sim.discipline.Len())
}

// startService places job on the given idle slot and schedules its departure.
func (sim *Simulator) startService(job *Job, slot int) {
	if slot < 0 || slot >= len(sim.servers) || sim.servers[slot].Busy {
		panic(fmt.Sprintf("startService: slot %d is not an idle server", slot))
	}
	job.StartTime = sim.clock
	job.State = JobInService
	finish := sim.clock + job.ServiceTime
	sim.servers[slot] = ServerSlot{Busy: true, JobID: job.ID, ProjectedFinish: finish}
	sim.busyCount++
	sim.Schedule(&DepartureEvent{time: finish, JobID: job.ID, ServerID: slot})
}

// processDeparture records the departing job and refills the freed slot from
// the buffer. Untracked jobs are reported and skipped.
func (sim *Simulator) processDeparture(jobID, serverID int) error {
	job, ok := sim.activeJobs[jobID]
	if !ok {
		sim.inconsistencies++
		logrus.Warnf("[t=%.4f] departure for untracked job %d on server %d, ignoring", sim.clock, jobID, serverID)
		return nil
	}
	if serverID < 0 || serverID >= len(sim.servers) || !sim.servers[serverID].Busy || sim.servers[serverID].JobID != jobID {
		sim.inconsistencies++
		logrus.Warnf("[t=%.4f] departure for job %d does not match server %d, ignoring", sim.clock, jobID, serverID)
		return nil
	}

	job.FinishTime = sim.clock
	job.State = JobDeparted
	sim.Metrics.record(job)
	sim.servers[serverID] = ServerSlot{}
	sim.busyCount--
	delete(sim.activeJobs, jobID)

	if sim.discipline.IsEmpty() {
		return nil
	}
	next, err := sim.discipline.Pop()
	if err != nil {
		return fmt.Errorf("dispatch from buffer: %w", err)
	}
	if _, tracked := sim.activeJobs[next.ID]; !tracked {
		sim.inconsistencies++
		logrus.Warnf("[t=%.4f] buffered job %d missing from active table, tracking it", sim.clock, next.ID)
		sim.activeJobs[next.ID] = next
	}
	sim.startService(next, serverID)
	return nil
}

// CurrentTime returns the timestamp of the last processed event.
func (sim *Simulator) CurrentTime() float64 { return sim.clock }

// JobsCompleted returns the number of departed jobs.
func (sim *Simulator) JobsCompleted() int { return sim.Metrics.Completed }

// JobsLost returns the number of jobs rejected by a full buffer.
func (sim *Simulator) JobsLost() int { return sim.Metrics.Lost }

// TotalArrivals returns the number of arrivals processed.
func (sim *Simulator) TotalArrivals() int { return sim.Metrics.TotalArrivals }

// JobsInSystem returns the number of jobs in service or buffered.
func (sim *Simulator) JobsInSystem() int { return len(sim.activeJobs) }

// QueueLength returns the number of buffered jobs.
func (sim *Simulator) QueueLength() int { return sim.discipline.Len() }

// IsServerBusy reports whether at least one server holds a job.
func (sim *Simulator) IsServerBusy() bool { return sim.busyCount > 0 }

// IsSlotBusy reports whether slot id holds a job. Out-of-range ids are idle.
func (sim *Simulator) IsSlotBusy(id int) bool {
	if id < 0 || id >= len(sim.servers) {
		return false
	}
	return sim.servers[id].Busy
}

// BusyServers returns the number of occupied slots.
func (sim *Simulator) BusyServers() int { return sim.busyCount }

// Servers returns a copy of the server table.
func (sim *Simulator) Servers() []ServerSlot {
	out := make([]ServerSlot, len(sim.servers))
	copy(out, sim.servers)
	return out
}

// NumCores returns the number of server slots.
func (sim *Simulator) NumCores() int { return sim.numCores }

// BufferCapacity returns the configured capacity or Unbounded.
func (sim *Simulator) BufferCapacity() int { return sim.bufferCapacity }

// Discipline returns the active buffer discipline.
func (sim *Simulator) Discipline() Discipline[*Job] { return sim.discipline }

// Inconsistencies counts consistency warnings raised during the last run.
func (sim *Simulator) Inconsistencies() int { return sim.inconsistencies }

// Iterations returns the number of events processed during the last run.
func (sim *Simulator) Iterations() int { return min(sim.iterations, sim.maxIterations) }

// RunID identifies the most recent run.
func (sim *Simulator) RunID() string { return sim.runID }

// LastStop returns why the most recent run ended, or "" if it never finished.
func (sim *Simulator) LastStop() StopReason { return sim.lastStop }

// CheckInvariants returns an error describing the first violated engine
// invariant, or nil.
func (sim *Simulator) CheckInvariants() error {
	m := sim.Metrics
	if m.Completed+m.Lost+len(sim.activeJobs) != m.TotalArrivals {
		return fmt.Errorf("conservation: completed(%d)+lost(%d)+in_system(%d) != arrivals(%d)",
			m.Completed, m.Lost, len(sim.activeJobs), m.TotalArrivals)
	}
	if sim.bufferCapacity != Unbounded && sim.discipline.Len() > sim.bufferCapacity {
		return fmt.Errorf("buffer holds %d jobs, capacity %d", sim.discipline.Len(), sim.bufferCapacity)
	}
	seen := make(map[int]int, len(sim.servers))
	busy := 0
	for i, slot := range sim.servers {
		if !slot.Busy {
			continue
		}
		busy++
		if prev, dup := seen[slot.JobID]; dup {
			return fmt.Errorf("job %d occupies servers %d and %d", slot.JobID, prev, i)
		}
		seen[slot.JobID] = i
		if _, ok := sim.activeJobs[slot.JobID]; !ok {
			return fmt.Errorf("server %d holds untracked job %d", i, slot.JobID)
		}
	}
	if busy != sim.busyCount {
		return fmt.Errorf("busy count %d disagrees with server table (%d)", sim.busyCount, busy)
	}
	if busy+sim.discipline.Len() != len(sim.activeJobs) {
		return fmt.Errorf("in service(%d)+buffered(%d) != active jobs(%d)", busy, sim.discipline.Len(), len(sim.activeJobs))
	}

	departures := make(map[int]int)
	arrivals := 0
	for _, ev := range sim.events.Events() {
		if ev.Timestamp() < sim.clock {
			return fmt.Errorf("pending %s event at %.6f precedes clock %.6f", ev.Kind(), ev.Timestamp(), sim.clock)
		}
		switch e := ev.(type) {
		case *ArrivalEvent:
			arrivals++
		case *DepartureEvent:
			departures[e.JobID]++
			if departures[e.JobID] > 1 {
				return fmt.Errorf("job %d has more than one pending departure", e.JobID)
			}
			if _, ok := seen[e.JobID]; !ok {
				return fmt.Errorf("pending departure for job %d not in service", e.JobID)
			}
		}
	}
	if arrivals > 1 {
		return fmt.Errorf("%d pending arrivals, want at most 1", arrivals)
	}
	if len(departures) != busy {
		return fmt.Errorf("%d pending departures for %d busy servers", len(departures), busy)
	}
	return nil
}

// Configuration describes the engine setup on one line.
func (sim *Simulator) Configuration() string {
	buffer := "unbounded"
	if sim.bufferCapacity != Unbounded {
		buffer = fmt.Sprintf("%d", sim.bufferCapacity)
	}
	return fmt.Sprintf("arrival=%s service=%s cores=%d buffer=%s discipline=%s rho=%.4f",
		sim.arrivalGen.Name(), sim.serviceGen.Name(), sim.numCores, buffer, sim.discipline.Name(), sim.Rho())
}
