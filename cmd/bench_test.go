package cmd

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/queue-sim/sim"
)

func TestBenchScenarios_ReportsBothPasses(t *testing.T) {
	// GIVEN two small scenarios with 4 replicas on 2 workers
	f := &ScenarioFile{
		Seed:     5,
		Replicas: 4,
		Workers:  2,
		Scenarios: []Scenario{
			{Name: "a", Config: sim.Config{Arrival: dist(sim.DistExponential, 0.5), Service: dist(sim.DistExponential, 1), Cores: 1, Buffer: sim.Unbounded}, Horizon: 2000},
			{Name: "b", Config: sim.Config{Arrival: dist(sim.DistExponential, 1.5), Service: dist(sim.DistExponential, 1), Cores: 2, Buffer: 3}, Jobs: 500},
		},
	}
	require.NoError(t, f.Validate())

	// WHEN benchmarked
	rows, err := benchScenarios(context.Background(), f)
	require.NoError(t, err)

	// THEN each row reports both passes on the effective worker count
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, 4, r.Result.Replicas, r.Name)
		assert.Equal(t, 2, r.Result.Workers, r.Name)
		assert.Positive(t, r.Result.Sequential.Nanoseconds(), r.Name)
		assert.Positive(t, r.Result.Parallel.Nanoseconds(), r.Name)
	}

	var buf bytes.Buffer
	printBench(&buf, rows)
	assert.Contains(t, buf.String(), "Speedup")
	assert.Contains(t, buf.String(), "a ")
}

func TestMilliseconds(t *testing.T) {
	assert.InDelta(t, 1.5, milliseconds(1500*time.Microsecond), 1e-12)
}
