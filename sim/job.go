// Defines the Job struct that models a single customer in the queueing system.
// Tracks arrival, service, start and finish timestamps for wait/system time statistics.

package sim

import (
	"fmt"
)

// NotStarted and NotFinished are the timestamp sentinels of a job that has not
// yet entered service or departed.
const (
	NotStarted  = -1.0
	NotFinished = -1.0
)

// JobState represents the lifecycle state of a job.
type JobState string

const (
	JobArrived   JobState = "arrived"
	JobQueued    JobState = "queued"
	JobInService JobState = "in_service"
	JobDeparted  JobState = "departed"
	JobLost      JobState = "lost"
)

// Job models a single job's lifecycle in the simulation.
type Job struct {
	ID int // Unique, monotonically increasing within a run

	ArrivalTime float64 // Simulation time the job entered the system
	ServiceTime float64 // Required service, sampled at arrival
	StartTime   float64 // Simulation time service began, NotStarted until dispatched
	FinishTime  float64 // Simulation time service completed, NotFinished until departure

	State JobState
}

// NewJob creates a job that arrived at arrival and needs service time units of work.
func NewJob(id int, arrival, service float64) *Job {
	return &Job{
		ID:          id,
		ArrivalTime: arrival,
		ServiceTime: service,
		StartTime:   NotStarted,
		FinishTime:  NotFinished,
		State:       JobArrived,
	}
}

// WaitTime returns the time spent buffered before service, or 0 if not started.
func (j *Job) WaitTime() float64 {
	if j.StartTime < 0 {
		return 0
	}
	return j.StartTime - j.ArrivalTime
}

// SystemTime returns the total time from arrival to departure, or 0 if not finished.
func (j *Job) SystemTime() float64 {
	if j.FinishTime < 0 {
		return 0
	}
	return j.FinishTime - j.ArrivalTime
}

// String returns the job ID, state and timing for log lines.
func (j Job) String() string {
	return fmt.Sprintf("Job: (ID: %d, State: %s, ArrivalTime: %.4f, ServiceTime: %.4f)", j.ID, j.State, j.ArrivalTime, j.ServiceTime)
}
