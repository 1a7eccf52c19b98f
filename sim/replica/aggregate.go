package replica

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/inference-sim/queue-sim/sim"
)

// Confidence is the two-sided confidence level of Estimate.HalfWidth.
const Confidence = 0.95

// Estimate summarizes one statistic across replicas.
type Estimate struct {
	N         int     `yaml:"n" json:"n"`
	Mean      float64 `yaml:"mean" json:"mean"`
	StdDev    float64 `yaml:"std_dev" json:"std_dev"`
	HalfWidth float64 `yaml:"half_width" json:"half_width"` // Student-t half-width at Confidence; 0 when N < 2
}

func (e Estimate) String() string {
	return fmt.Sprintf("%.4f ± %.4f", e.Mean, e.HalfWidth)
}

// Contains reports whether v lies inside the confidence interval.
func (e Estimate) Contains(v float64) bool {
	return math.Abs(v-e.Mean) <= e.HalfWidth
}

// NewEstimate computes mean, sample standard deviation and the Student-t
// confidence half-width of xs.
func NewEstimate(xs []float64) Estimate {
	e := Estimate{N: len(xs)}
	if e.N == 0 {
		return e
	}
	e.Mean = stat.Mean(xs, nil)
	if e.N < 2 {
		return e
	}
	e.StdDev = stat.StdDev(xs, nil)
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(e.N - 1)}
	e.HalfWidth = t.Quantile(1-(1-Confidence)/2) * e.StdDev / math.Sqrt(float64(e.N))
	return e
}

// Aggregated holds cross-replica estimates of the published statistics.
type Aggregated struct {
	Replicas        int      `yaml:"replicas" json:"replicas"`
	WaitTime        Estimate `yaml:"wait_time" json:"wait_time"`
	SystemTime      Estimate `yaml:"system_time" json:"system_time"`
	Utilization     Estimate `yaml:"utilization" json:"utilization"`
	LossProbability Estimate `yaml:"loss_probability" json:"loss_probability"`
	QueueLength     Estimate `yaml:"queue_length" json:"queue_length"`
	Rho             float64  `yaml:"rho" json:"rho"`
}

// Aggregate reduces per-replica summaries into cross-replica estimates.
func Aggregate(summaries []sim.Summary) Aggregated {
	n := len(summaries)
	wait := make([]float64, n)
	system := make([]float64, n)
	util := make([]float64, n)
	loss := make([]float64, n)
	queue := make([]float64, n)
	for i, s := range summaries {
		wait[i] = s.AvgWaitTime
		system[i] = s.AvgSystemTime
		util[i] = s.ServerUtilization
		loss[i] = s.LossProbability
		queue[i] = s.AvgQueueLength
	}
	agg := Aggregated{
		Replicas:        n,
		WaitTime:        NewEstimate(wait),
		SystemTime:      NewEstimate(system),
		Utilization:     NewEstimate(util),
		LossProbability: NewEstimate(loss),
		QueueLength:     NewEstimate(queue),
	}
	if n > 0 {
		agg.Rho = summaries[0].Rho
	}
	return agg
}
