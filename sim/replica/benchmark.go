package replica

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// BenchmarkResult compares sequential and parallel wall-clock time of the same
// replica set.
type BenchmarkResult struct {
	Replicas   int           `yaml:"replicas" json:"replicas"`
	Workers    int           `yaml:"workers" json:"workers"`
	Sequential time.Duration `yaml:"sequential" json:"sequential"`
	Parallel   time.Duration `yaml:"parallel" json:"parallel"`
	Speedup    float64       `yaml:"speedup" json:"speedup"`
	Efficiency float64       `yaml:"efficiency" json:"efficiency"` // Speedup / Workers
	Aggregated Aggregated    `yaml:"aggregated" json:"aggregated"`
}

func (b BenchmarkResult) String() string {
	return fmt.Sprintf("replicas=%d workers=%d sequential=%v parallel=%v speedup=%.2fx efficiency=%.1f%%",
		b.Replicas, b.Workers, b.Sequential, b.Parallel, b.Speedup, b.Efficiency*100)
}

// Benchmark runs cfg once on a single worker and once on the configured pool,
// reporting wall-clock speedup. Both passes use the same replica seeds, so
// Aggregated is identical for either pass.
func Benchmark(ctx context.Context, cfg Config) (BenchmarkResult, error) {
	if err := cfg.validate(); err != nil {
		return BenchmarkResult{}, err
	}

	seqCfg := cfg
	seqCfg.Workers = 1
	start := time.Now()
	if _, err := Run(ctx, seqCfg); err != nil {
		return BenchmarkResult{}, fmt.Errorf("sequential pass: %w", err)
	}
	sequential := time.Since(start)

	start = time.Now()
	results, err := Run(ctx, cfg)
	if err != nil {
		return BenchmarkResult{}, fmt.Errorf("parallel pass: %w", err)
	}
	parallel := time.Since(start)

	res := BenchmarkResult{
		Replicas:   cfg.Replicas,
		Workers:    cfg.workers(),
		Sequential: sequential,
		Parallel:   parallel,
		Aggregated: Aggregate(Summaries(results)),
	}
	if parallel > 0 {
		res.Speedup = sequential.Seconds() / parallel.Seconds()
		res.Efficiency = res.Speedup / float64(res.Workers)
	}
	logrus.Infof("benchmark: %s", res)
	return res, nil
}
