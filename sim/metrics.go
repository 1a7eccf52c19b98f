// Tracks simulation-wide counters, per-job wait/system time samples and the
// busy-server time integral, and derives the published statistics from them.

package sim

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/inference-sim/queue-sim/sim/analytic"
)

// Metrics aggregates statistics about one simulation run.
type Metrics struct {
	TotalArrivals int // Arrivals processed, including lost jobs
	Completed     int // Jobs that departed
	Lost          int // Jobs rejected by a full buffer

	BusyTime float64 // Integral of busy servers over simulated time

	WaitTimes   []float64 // Per-departure wait time, in departure order
	SystemTimes []float64 // Per-departure system time, in departure order
}

// NewMetrics returns an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		WaitTimes:   make([]float64, 0),
		SystemTimes: make([]float64, 0),
	}
}

func (m *Metrics) record(job *Job) {
	m.Completed++
	m.WaitTimes = append(m.WaitTimes, job.WaitTime())
	m.SystemTimes = append(m.SystemTimes, job.SystemTime())
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// sampleVariance is Bessel-corrected; fewer than two samples yield 0.
func sampleVariance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.Variance(xs, nil)
}

// AvgWaitTime returns the mean buffered time of departed jobs.
func (sim *Simulator) AvgWaitTime() float64 { return mean(sim.Metrics.WaitTimes) }

// AvgSystemTime returns the mean arrival-to-departure time of departed jobs.
func (sim *Simulator) AvgSystemTime() float64 { return mean(sim.Metrics.SystemTimes) }

// MinWaitTime returns the smallest recorded wait time, or 0 when none.
func (sim *Simulator) MinWaitTime() float64 {
	if len(sim.Metrics.WaitTimes) == 0 {
		return 0
	}
	return floats.Min(sim.Metrics.WaitTimes)
}

// MaxWaitTime returns the largest recorded wait time, or 0 when none.
func (sim *Simulator) MaxWaitTime() float64 {
	if len(sim.Metrics.WaitTimes) == 0 {
		return 0
	}
	return floats.Max(sim.Metrics.WaitTimes)
}

// WaitTimeVariance returns the sample variance of wait times.
func (sim *Simulator) WaitTimeVariance() float64 { return sampleVariance(sim.Metrics.WaitTimes) }

// SystemTimeVariance returns the sample variance of system times.
func (sim *Simulator) SystemTimeVariance() float64 { return sampleVariance(sim.Metrics.SystemTimes) }

// ServerUtilization returns busy time over the capacity offered so far.
func (sim *Simulator) ServerUtilization() float64 {
	if sim.clock <= 0 {
		return 0
	}
	return sim.Metrics.BusyTime / (sim.clock * float64(sim.numCores))
}

// AvgBusyCores returns the time-averaged number of busy servers.
func (sim *Simulator) AvgBusyCores() float64 {
	if sim.clock <= 0 {
		return 0
	}
	return sim.Metrics.BusyTime / sim.clock
}

// LossProbability returns lost / total arrivals.
func (sim *Simulator) LossProbability() float64 {
	if sim.Metrics.TotalArrivals == 0 {
		return 0
	}
	return float64(sim.Metrics.Lost) / float64(sim.Metrics.TotalArrivals)
}

// AvgQueueLength is the Little's-law estimate arrival rate x mean wait.
func (sim *Simulator) AvgQueueLength() float64 {
	return sim.ArrivalIntensity() * sim.AvgWaitTime()
}

// ArrivalIntensity returns 1 / mean inter-arrival time.
func (sim *Simulator) ArrivalIntensity() float64 {
	return intensity(sim.arrivalGen)
}

// ServiceIntensity returns 1 / mean service time of a single server.
func (sim *Simulator) ServiceIntensity() float64 {
	return intensity(sim.serviceGen)
}

func intensity(g Generator) float64 {
	m := g.Mean()
	if m <= 0 {
		return 0
	}
	return 1 / m
}

// Rho returns the offered load lambda / (c * mu). A zero service mean gives 0.
func (sim *Simulator) Rho() float64 {
	mu := sim.ServiceIntensity()
	if mu == 0 {
		return 0
	}
	return sim.ArrivalIntensity() / (float64(sim.numCores) * mu)
}

// IsStationary reports rho < 1.
func (sim *Simulator) IsStationary() bool { return sim.Rho() < 1.0 }

// TheoreticalMM1 returns the M/M/1 reference values for the configured
// intensities. ok is false unless the engine has a single server and rho < 1.
func (sim *Simulator) TheoreticalMM1() (analytic.Result, bool) {
	if sim.numCores != 1 {
		return analytic.Result{}, false
	}
	return analytic.MM1(sim.ArrivalIntensity(), sim.ServiceIntensity())
}
