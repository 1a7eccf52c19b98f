package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/queue-sim/sim"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

const validScenarioYAML = `
version: "1"
seed: 7
replicas: 3
workers: 2
scenarios:
  - name: mm1
    arrival: {type: exponential, params: {rate: 0.5}}
    service: {type: exponential, params: {rate: 1.0}}
    cores: 1
    buffer: -1
    horizon: 500
  - name: rr
    arrival: {type: exponential, params: {rate: 1.5}}
    service: {type: erlang, params: {k: 2, rate: 2.0}}
    cores: 2
    buffer: 5
    discipline: round-robin
    rr_queues: 2
    jobs: 100
    replicas: 5
`

func TestParseScenarios_ValidFile(t *testing.T) {
	// GIVEN a well-formed scenario file
	// WHEN it is parsed
	f, err := parseScenarios([]byte(validScenarioYAML))

	// THEN every field lands in its struct slot
	require.NoError(t, err)
	assert.Equal(t, int64(7), f.Seed)
	require.Len(t, f.Scenarios, 2)
	mm1 := f.Scenarios[0]
	assert.Equal(t, "mm1", mm1.Name)
	assert.Equal(t, sim.DistExponential, mm1.Arrival.Type)
	assert.Equal(t, 0.5, mm1.Arrival.Params["rate"])
	assert.Equal(t, sim.Unbounded, mm1.Buffer)
	assert.Equal(t, 500.0, mm1.Horizon)

	rr := f.Scenarios[1]
	assert.Equal(t, sim.DisciplineRoundRobin, rr.Discipline)
	assert.Equal(t, 2, rr.RRQueues)
	assert.Equal(t, 100, rr.Jobs)
	assert.Equal(t, 2.0, rr.Service.Params["k"])
}

func TestParseScenarios_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown top-level field", "version: \"1\"\nseeed: 1\nscenarios: []\n"},
		{"unknown scenario field", `
scenarios:
  - name: a
    arrival: {type: exponential, params: {rate: 1}}
    service: {type: exponential, params: {rate: 2}}
    cores: 1
    horizon: 10
    core: 2
`},
		{"no scenarios", "version: \"1\"\n"},
		{"missing name", `
scenarios:
  - arrival: {type: exponential, params: {rate: 1}}
    service: {type: exponential, params: {rate: 2}}
    cores: 1
    horizon: 10
`},
		{"duplicate name", `
scenarios:
  - name: a
    arrival: {type: exponential, params: {rate: 1}}
    service: {type: exponential, params: {rate: 2}}
    cores: 1
    horizon: 10
  - name: a
    arrival: {type: exponential, params: {rate: 1}}
    service: {type: exponential, params: {rate: 2}}
    cores: 1
    horizon: 10
`},
		{"zero cores", `
scenarios:
  - name: a
    arrival: {type: exponential, params: {rate: 1}}
    service: {type: exponential, params: {rate: 2}}
    cores: 0
    horizon: 10
`},
		{"unknown discipline", `
scenarios:
  - name: a
    arrival: {type: exponential, params: {rate: 1}}
    service: {type: exponential, params: {rate: 2}}
    cores: 1
    discipline: edf
    horizon: 10
`},
		{"unknown distribution", `
scenarios:
  - name: a
    arrival: {type: pareto, params: {alpha: 1}}
    service: {type: exponential, params: {rate: 2}}
    cores: 1
    horizon: 10
`},
		{"no stop condition", `
scenarios:
  - name: a
    arrival: {type: exponential, params: {rate: 1}}
    service: {type: exponential, params: {rate: 2}}
    cores: 1
`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseScenarios([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParseScenarios_ValidationErrorsWrapSentinel(t *testing.T) {
	_, err := parseScenarios([]byte("version: \"1\"\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, sim.ErrInvalidConfiguration))
}

func TestLoadScenarios_MissingFile(t *testing.T) {
	_, err := LoadScenarios(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadScenarios_RepositoryExample(t *testing.T) {
	path := "../scenarios.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("scenarios.yaml not found, skipping")
	}
	f, err := LoadScenarios(path)
	require.NoError(t, err)
	assert.NotEmpty(t, f.Scenarios)
}

func TestDefaultScenarios_AreValidLoadSweep(t *testing.T) {
	// GIVEN the built-in sweep
	f := DefaultScenarios()

	// THEN it validates and every scenario targets lambda = rho * cores with mu = 1
	require.NoError(t, f.Validate())
	for _, sc := range f.Scenarios {
		assert.Equal(t, sim.DistExponential, sc.Arrival.Type, sc.Name)
		assert.Equal(t, 1.0, sc.Service.Params["rate"], sc.Name)
		rho := sc.Arrival.Params["rate"] / float64(sc.Cores)
		assert.Less(t, rho, 1.0, "%s must be stationary", sc.Name)
	}
}

func TestScenarioFile_ReplicaConfig(t *testing.T) {
	f, err := parseScenarios([]byte(validScenarioYAML))
	require.NoError(t, err)

	// GIVEN a scenario without its own replica count and one with
	a := f.ReplicaConfig(f.Scenarios[0])
	b := f.ReplicaConfig(f.Scenarios[1])

	// THEN the file default and the override apply respectively
	assert.Equal(t, 3, a.Replicas)
	assert.Equal(t, 5, b.Replicas)
	assert.Equal(t, 2, a.Workers)
	assert.Equal(t, 500.0, a.Stop.Horizon)
	assert.Equal(t, 100, b.Stop.Jobs)

	// AND base keys depend on the scenario name, not its position
	assert.NotEqual(t, a.BaseKey, b.BaseKey)
	assert.Equal(t, sim.NewSimulationKey(7).Derive("mm1"), a.BaseKey)

	// AND the build function produces the configured engine
	s, err := a.Build(0, a.BaseKey)
	require.NoError(t, err)
	assert.Equal(t, 1, s.NumCores())
	assert.Equal(t, sim.Unbounded, s.BufferCapacity())
}

func TestScenarioFile_ReplicasFallback(t *testing.T) {
	f := &ScenarioFile{}
	assert.Equal(t, 4, f.replicas(Scenario{}))
}

func TestApplyReplicaOverrides(t *testing.T) {
	f, err := parseScenarios([]byte(validScenarioYAML))
	require.NoError(t, err)
	oldReplicas, oldWorkers := replicaCount, workerCount
	t.Cleanup(func() { replicaCount, workerCount = oldReplicas, oldWorkers })

	// GIVEN --replicas 9 --workers 1
	replicaCount, workerCount = 9, 1
	applyReplicaOverrides(f)

	// THEN every scenario uses the flag values
	for _, sc := range f.Scenarios {
		assert.Equal(t, 9, f.ReplicaConfig(sc).Replicas, sc.Name)
	}
	assert.Equal(t, 1, f.Workers)
}
