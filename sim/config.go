package sim

import "fmt"

// Config groups everything needed to build a Simulator from declarative
// input (CLI flags or a scenario file).
type Config struct {
	Arrival       DistSpec `yaml:"arrival" json:"arrival"`                                   // inter-arrival time distribution
	Service       DistSpec `yaml:"service" json:"service"`                                   // service time distribution
	Cores         int      `yaml:"cores" json:"cores"`                                       // identical servers (must be >= 1)
	Buffer        int      `yaml:"buffer" json:"buffer"`                                     // buffer capacity, Unbounded (-1) for no limit
	Discipline    string   `yaml:"discipline,omitempty" json:"discipline,omitempty"`         // see ValidDisciplines; empty = fifo
	RRQueues      int      `yaml:"rr_queues,omitempty" json:"rr_queues,omitempty"`           // sub-queues for round-robin
	MaxIterations int      `yaml:"max_iterations,omitempty" json:"max_iterations,omitempty"` // 0 = DefaultMaxIterations
}

// Validate checks the fields that do not require building generators.
func (c Config) Validate() error {
	if c.Cores <= 0 {
		return fmt.Errorf("cores must be >= 1, got %d: %w", c.Cores, ErrInvalidConfiguration)
	}
	if c.Buffer < Unbounded {
		return fmt.Errorf("buffer must be >= 0 or %d (unbounded), got %d: %w", Unbounded, c.Buffer, ErrInvalidConfiguration)
	}
	if !IsValidDiscipline(c.Discipline) {
		return fmt.Errorf("unknown discipline %q (valid: %v): %w", c.Discipline, DisciplineNames(), ErrInvalidConfiguration)
	}
	if c.Discipline == DisciplineRoundRobin && c.RRQueues < 1 {
		return fmt.Errorf("round-robin needs rr_queues >= 1, got %d: %w", c.RRQueues, ErrInvalidConfiguration)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must be >= 0, got %d: %w", c.MaxIterations, ErrInvalidConfiguration)
	}
	return nil
}

// Build constructs a Simulator whose random streams all derive from key.
func (c Config) Build(key SimulationKey, opts ...Option) (*Simulator, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	rng := NewPartitionedRNG(key)
	arrival, err := NewGenerator(c.Arrival, rng.ForSubsystem(SubsystemArrival))
	if err != nil {
		return nil, fmt.Errorf("arrival: %w", err)
	}
	service, err := NewGenerator(c.Service, rng.ForSubsystem(SubsystemService))
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	discipline, err := NewJobDiscipline(c.Discipline, c.RRQueues, rng.ForSubsystem(SubsystemDiscipline))
	if err != nil {
		return nil, err
	}
	if c.MaxIterations > 0 {
		opts = append([]Option{WithMaxIterations(c.MaxIterations)}, opts...)
	}
	return NewSimulator(arrival, service, c.Cores, c.Buffer, discipline, opts...)
}
