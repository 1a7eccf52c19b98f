package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/queue-sim/sim"
	"github.com/inference-sim/queue-sim/sim/replica"
)

// Scenario is one named queue configuration in a scenario file.
type Scenario struct {
	sim.Config `yaml:",inline"`

	Name     string  `yaml:"name"`
	Horizon  float64 `yaml:"horizon,omitempty"`  // simulated time per replica
	Jobs     int     `yaml:"jobs,omitempty"`     // departures per replica; overrides horizon
	Replicas int     `yaml:"replicas,omitempty"` // 0 = file default
}

// ScenarioFile represents the full scenario YAML structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type ScenarioFile struct {
	Version   string     `yaml:"version"`
	Seed      int64      `yaml:"seed"`
	Replicas  int        `yaml:"replicas"`
	Workers   int        `yaml:"workers"`
	Scenarios []Scenario `yaml:"scenarios"`
}

// LoadScenarios parses path with strict field checking: typos are errors.
func LoadScenarios(path string) (*ScenarioFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return parseScenarios(data)
}

func parseScenarios(data []byte) (*ScenarioFile, error) {
	var f ScenarioFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks every scenario without running anything.
func (f *ScenarioFile) Validate() error {
	if len(f.Scenarios) == 0 {
		return fmt.Errorf("scenario file has no scenarios: %w", sim.ErrInvalidConfiguration)
	}
	if f.Replicas < 0 || f.Workers < 0 {
		return fmt.Errorf("replicas and workers must be >= 0: %w", sim.ErrInvalidConfiguration)
	}
	seen := make(map[string]bool, len(f.Scenarios))
	for i, sc := range f.Scenarios {
		if sc.Name == "" {
			return fmt.Errorf("scenario %d: name is required: %w", i, sim.ErrInvalidConfiguration)
		}
		if seen[sc.Name] {
			return fmt.Errorf("scenario %q: duplicate name: %w", sc.Name, sim.ErrInvalidConfiguration)
		}
		seen[sc.Name] = true
		if err := sc.Config.Validate(); err != nil {
			return fmt.Errorf("scenario %q: %w", sc.Name, err)
		}
		for _, d := range []sim.DistSpec{sc.Arrival, sc.Service} {
			if !sim.IsValidDistribution(d.Type) {
				return fmt.Errorf("scenario %q: unknown distribution %q: %w", sc.Name, d.Type, sim.ErrInvalidConfiguration)
			}
		}
		if sc.Jobs <= 0 && !(sc.Horizon > 0) {
			return fmt.Errorf("scenario %q: horizon or jobs must be positive: %w", sc.Name, sim.ErrInvalidConfiguration)
		}
		if sc.Replicas < 0 {
			return fmt.Errorf("scenario %q: replicas must be >= 0: %w", sc.Name, sim.ErrInvalidConfiguration)
		}
	}
	return nil
}

// replicas resolves the replica count of sc against the file default.
func (f *ScenarioFile) replicas(sc Scenario) int {
	switch {
	case sc.Replicas > 0:
		return sc.Replicas
	case f.Replicas > 0:
		return f.Replicas
	default:
		return 4
	}
}

// ReplicaConfig builds the replica set of sc. Every scenario derives its base
// key from the file seed and its own name, so reordering scenarios does not
// change their results.
func (f *ScenarioFile) ReplicaConfig(sc Scenario) replica.Config {
	cfg := sc.Config
	return replica.Config{
		Replicas: f.replicas(sc),
		Workers:  f.Workers,
		BaseKey:  sim.NewSimulationKey(f.Seed).Derive(sc.Name),
		Build: func(_ int, key sim.SimulationKey) (*sim.Simulator, error) {
			return cfg.Build(key)
		},
		Stop: replica.Stop{Horizon: sc.Horizon, Jobs: sc.Jobs},
	}
}

func exponential(rate float64) sim.DistSpec {
	return sim.DistSpec{Type: sim.DistExponential, Params: map[string]float64{"rate": rate}}
}

// DefaultScenarios is the built-in M/M/c load sweep used when no scenario
// file is given: mu = 1, lambda = rho * mu * cores.
func DefaultScenarios() *ScenarioFile {
	cases := []struct {
		name   string
		rho    float64
		cores  int
		buffer int
	}{
		{"very-light", 0.1, 1, sim.Unbounded},
		{"light", 0.3, 1, sim.Unbounded},
		{"medium", 0.6, 1, sim.Unbounded},
		{"high", 0.85, 1, sim.Unbounded},
		{"multi-core", 0.8, 4, sim.Unbounded},
		{"finite-buffer", 0.7, 1, 10},
	}
	f := &ScenarioFile{Version: "1", Seed: 42, Replicas: 4}
	for _, c := range cases {
		f.Scenarios = append(f.Scenarios, Scenario{
			Name: c.name,
			Config: sim.Config{
				Arrival:    exponential(c.rho * float64(c.cores)),
				Service:    exponential(1.0),
				Cores:      c.cores,
				Buffer:     c.buffer,
				Discipline: sim.DisciplineFIFO,
			},
			Horizon: 10000,
		})
	}
	return f
}

// loadScenarioFlag returns the file named by path, or the defaults when empty.
func loadScenarioFlag(path string) (*ScenarioFile, error) {
	if path == "" {
		return DefaultScenarios(), nil
	}
	return LoadScenarios(path)
}
