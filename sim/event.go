package sim

import "github.com/sirupsen/logrus"

// EventKind identifies the type of a simulation event.
type EventKind string

const (
	EventArrival   EventKind = "arrival"
	EventDeparture EventKind = "departure"
)

// EventKindPriority breaks ties between events scheduled at the same timestamp.
// Lower values are processed first: a server freed at time t is visible to an
// arrival at time t.
var EventKindPriority = map[EventKind]int{
	EventDeparture: 0,
	EventArrival:   1,
}

// Event defines the interface for all simulation events.
// Each event has a Timestamp (simulation time units) and an Execute method
// that advances simulation state when invoked.
type Event interface {
	Timestamp() float64
	Kind() EventKind
	Execute(*Simulator) error
}

// ArrivalEvent represents the arrival of the next job into the system.
type ArrivalEvent struct {
	time float64 // Simulation time of arrival
}

// Timestamp returns the scheduled time of the ArrivalEvent.
func (e *ArrivalEvent) Timestamp() float64 {
	return e.time
}

// Kind returns EventArrival.
func (e *ArrivalEvent) Kind() EventKind {
	return EventArrival
}

// Execute admits the arriving job and schedules the next arrival.
func (e *ArrivalEvent) Execute(sim *Simulator) error {
	logrus.Tracef("<< Arrival at %.6f", e.time)
	sim.processArrival()
	return nil
}

// DepartureEvent represents a job finishing service on a server slot.
type DepartureEvent struct {
	time     float64
	JobID    int // Job leaving the system
	ServerID int // Slot the job occupied
}

// Timestamp returns the scheduled time of the DepartureEvent.
func (e *DepartureEvent) Timestamp() float64 {
	return e.time
}

// Kind returns EventDeparture.
func (e *DepartureEvent) Kind() EventKind {
	return EventDeparture
}

// Execute records the departing job's statistics and refills the freed slot.
func (e *DepartureEvent) Execute(sim *Simulator) error {
	logrus.Tracef("<< Departure: job %d from server %d at %.6f", e.JobID, e.ServerID, e.time)
	return sim.processDeparture(e.JobID, e.ServerID)
}
