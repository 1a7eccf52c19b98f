// sim/metrics_utils.go
package sim

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Summary is a snapshot of a run's published statistics.
type Summary struct {
	RunID             string     `yaml:"run_id" json:"run_id"`
	Stop              StopReason `yaml:"stop" json:"stop"`
	SimulationTime    float64    `yaml:"simulation_time" json:"simulation_time"`
	TotalArrivals     int        `yaml:"total_arrivals" json:"total_arrivals"`
	JobsCompleted     int        `yaml:"jobs_completed" json:"jobs_completed"`
	JobsLost          int        `yaml:"jobs_lost" json:"jobs_lost"`
	JobsInSystem      int        `yaml:"jobs_in_system" json:"jobs_in_system"`
	AvgWaitTime       float64    `yaml:"avg_wait_time" json:"avg_wait_time"`
	MinWaitTime       float64    `yaml:"min_wait_time" json:"min_wait_time"`
	MaxWaitTime       float64    `yaml:"max_wait_time" json:"max_wait_time"`
	WaitTimeVariance  float64    `yaml:"wait_time_variance" json:"wait_time_variance"`
	AvgSystemTime     float64    `yaml:"avg_system_time" json:"avg_system_time"`
	SystemTimeVar     float64    `yaml:"system_time_variance" json:"system_time_variance"`
	ServerUtilization float64    `yaml:"server_utilization" json:"server_utilization"`
	AvgBusyCores      float64    `yaml:"avg_busy_cores" json:"avg_busy_cores"`
	LossProbability   float64    `yaml:"loss_probability" json:"loss_probability"`
	AvgQueueLength    float64    `yaml:"avg_queue_length" json:"avg_queue_length"`
	ArrivalIntensity  float64    `yaml:"arrival_intensity" json:"arrival_intensity"`
	ServiceIntensity  float64    `yaml:"service_intensity" json:"service_intensity"`
	Rho               float64    `yaml:"rho" json:"rho"`
	Inconsistencies   int        `yaml:"inconsistencies" json:"inconsistencies"`
}

// Summary captures the statistics of the most recent run.
func (sim *Simulator) Summary() Summary {
	return Summary{
		RunID:             sim.runID,
		Stop:              sim.lastStop,
		SimulationTime:    sim.clock,
		TotalArrivals:     sim.Metrics.TotalArrivals,
		JobsCompleted:     sim.Metrics.Completed,
		JobsLost:          sim.Metrics.Lost,
		JobsInSystem:      sim.JobsInSystem(),
		AvgWaitTime:       sim.AvgWaitTime(),
		MinWaitTime:       sim.MinWaitTime(),
		MaxWaitTime:       sim.MaxWaitTime(),
		WaitTimeVariance:  sim.WaitTimeVariance(),
		AvgSystemTime:     sim.AvgSystemTime(),
		SystemTimeVar:     sim.SystemTimeVariance(),
		ServerUtilization: sim.ServerUtilization(),
		AvgBusyCores:      sim.AvgBusyCores(),
		LossProbability:   sim.LossProbability(),
		AvgQueueLength:    sim.AvgQueueLength(),
		ArrivalIntensity:  sim.ArrivalIntensity(),
		ServiceIntensity:  sim.ServiceIntensity(),
		Rho:               sim.Rho(),
		Inconsistencies:   sim.inconsistencies,
	}
}

// statisticsRows returns the persisted parameter,value rows in file order.
func (sim *Simulator) statisticsRows() [][]string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	i := strconv.Itoa
	return [][]string{
		{"simulation_time", f(sim.clock)},
		{"total_arrivals", i(sim.Metrics.TotalArrivals)},
		{"jobs_completed", i(sim.Metrics.Completed)},
		{"jobs_lost", i(sim.Metrics.Lost)},
		{"avg_wait_time", f(sim.AvgWaitTime())},
		{"avg_system_time", f(sim.AvgSystemTime())},
		{"server_utilization", f(sim.ServerUtilization())},
		{"loss_probability", f(sim.LossProbability())},
		{"arrival_intensity", f(sim.ArrivalIntensity())},
		{"service_intensity", f(sim.ServiceIntensity())},
		{"rho", f(sim.Rho())},
	}
}

// SaveStatistics writes the run statistics to path as a two-column
// parameter,value CSV file, truncating any existing file.
func (sim *Simulator) SaveStatistics(path string) (err error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create statistics file %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close statistics file %s: %w", path, closeErr)
		}
	}()

	buf := bufio.NewWriter(file)
	w := csv.NewWriter(buf)
	if err := w.Write([]string{"parameter", "value"}); err != nil {
		return fmt.Errorf("write statistics header: %w", err)
	}
	if err := w.WriteAll(sim.statisticsRows()); err != nil {
		return fmt.Errorf("write statistics rows: %w", err)
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("flush statistics file %s: %w", path, err)
	}

	logrus.Debugf("Successfully wrote statistics to '%s'", path)
	return nil
}
