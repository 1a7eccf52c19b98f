package sim

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// Generator produces independent non-negative samples from a named distribution.
// Mean and Variance are the analytic moments, used for load calculations.
// Each stateful Generator owns its random source; instances share no mutable state.
type Generator interface {
	Generate() float64
	Mean() float64
	Variance() float64
	Name() string
}

// ExponentialGenerator samples Exponential(λ) values (Poisson process intervals).
type ExponentialGenerator struct {
	rate float64
	dist distuv.Exponential
}

// NewExponentialGenerator creates an Exponential(rate) generator drawing from src.
// A nil src gets an entropy-seeded source.
func NewExponentialGenerator(rate float64, src rand.Source) (*ExponentialGenerator, error) {
	if !(rate > 0) {
		return nil, fmt.Errorf("exponential rate must be positive, got %v: %w", rate, ErrInvalidParameter)
	}
	if src == nil {
		src = newEntropySource()
	}
	return &ExponentialGenerator{
		rate: rate,
		dist: distuv.Exponential{Rate: rate, Src: src},
	}, nil
}

func (g *ExponentialGenerator) Generate() float64 { return g.dist.Rand() }
func (g *ExponentialGenerator) Mean() float64     { return 1.0 / g.rate }
func (g *ExponentialGenerator) Variance() float64 { return 1.0 / (g.rate * g.rate) }
func (g *ExponentialGenerator) Name() string {
	return fmt.Sprintf("Exponential(λ=%g)", g.rate)
}

// UniformGenerator samples values uniformly from [a, b).
type UniformGenerator struct {
	a, b float64
	dist distuv.Uniform
}

// NewUniformGenerator creates a Uniform[a, b) generator. Requires 0 <= a < b.
func NewUniformGenerator(a, b float64, src rand.Source) (*UniformGenerator, error) {
	if !(a < b) {
		return nil, fmt.Errorf("uniform bounds require a < b, got [%v, %v]: %w", a, b, ErrInvalidParameter)
	}
	if a < 0 {
		return nil, fmt.Errorf("uniform lower bound must be non-negative, got %v: %w", a, ErrInvalidParameter)
	}
	if src == nil {
		src = newEntropySource()
	}
	return &UniformGenerator{
		a:    a,
		b:    b,
		dist: distuv.Uniform{Min: a, Max: b, Src: src},
	}, nil
}

func (g *UniformGenerator) Generate() float64 { return g.dist.Rand() }
func (g *UniformGenerator) Mean() float64     { return (g.a + g.b) / 2.0 }
func (g *UniformGenerator) Variance() float64 { return (g.b - g.a) * (g.b - g.a) / 12.0 }
func (g *UniformGenerator) Name() string {
	return fmt.Sprintf("Uniform[%g,%g]", g.a, g.b)
}

// DeterministicGenerator always returns the same value.
type DeterministicGenerator struct {
	value float64
}

// NewDeterministicGenerator creates a constant generator. Requires value >= 0.
func NewDeterministicGenerator(value float64) (*DeterministicGenerator, error) {
	if !(value >= 0) {
		return nil, fmt.Errorf("deterministic value must be non-negative, got %v: %w", value, ErrInvalidParameter)
	}
	return &DeterministicGenerator{value: value}, nil
}

func (g *DeterministicGenerator) Generate() float64 { return g.value }
func (g *DeterministicGenerator) Mean() float64     { return g.value }
func (g *DeterministicGenerator) Variance() float64 { return 0 }
func (g *DeterministicGenerator) Name() string {
	return fmt.Sprintf("Deterministic(%g)", g.value)
}

// ErlangGenerator samples Erlang(k, λ): the sum of k independent Exponential(λ) draws.
type ErlangGenerator struct {
	k    int
	rate float64
	exp  distuv.Exponential
}

// NewErlangGenerator creates an Erlang(k, rate) generator. Requires k >= 1 and rate > 0.
func NewErlangGenerator(k int, rate float64, src rand.Source) (*ErlangGenerator, error) {
	if k < 1 {
		return nil, fmt.Errorf("erlang shape k must be >= 1, got %d: %w", k, ErrInvalidParameter)
	}
	if !(rate > 0) {
		return nil, fmt.Errorf("erlang rate must be positive, got %v: %w", rate, ErrInvalidParameter)
	}
	if src == nil {
		src = newEntropySource()
	}
	return &ErlangGenerator{
		k:    k,
		rate: rate,
		exp:  distuv.Exponential{Rate: rate, Src: src},
	}, nil
}

func (g *ErlangGenerator) Generate() float64 {
	sum := 0.0
	for i := 0; i < g.k; i++ {
		sum += g.exp.Rand()
	}
	return sum
}

func (g *ErlangGenerator) Mean() float64     { return float64(g.k) / g.rate }
func (g *ErlangGenerator) Variance() float64 { return float64(g.k) / (g.rate * g.rate) }
func (g *ErlangGenerator) Name() string {
	return fmt.Sprintf("Erlang(k=%d, λ=%g)", g.k, g.rate)
}

// Distribution type names accepted by NewGenerator.
const (
	DistExponential   = "exponential"
	DistUniform       = "uniform"
	DistDeterministic = "deterministic"
	DistErlang        = "erlang"
)

// DistSpec names a distribution and its parameters.
//
//	exponential:   rate
//	uniform:       min, max
//	deterministic: value
//	erlang:        k, rate
type DistSpec struct {
	Type   string             `yaml:"type" json:"type"`
	Params map[string]float64 `yaml:"params" json:"params"`
}

// String renders the distribution in the compact form accepted by ParseDistSpec.
func (s DistSpec) String() string {
	switch s.Type {
	case DistExponential:
		return fmt.Sprintf("exp:%g", s.Params["rate"])
	case DistUniform:
		return fmt.Sprintf("uniform:%g,%g", s.Params["min"], s.Params["max"])
	case DistDeterministic:
		return fmt.Sprintf("det:%g", s.Params["value"])
	case DistErlang:
		return fmt.Sprintf("erlang:%g,%g", s.Params["k"], s.Params["rate"])
	default:
		return s.Type
	}
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q: %w", k, ErrInvalidParameter)
		}
	}
	return nil
}

// NewGenerator creates a Generator from a DistSpec, drawing from src.
func NewGenerator(spec DistSpec, src rand.Source) (Generator, error) {
	switch spec.Type {
	case DistExponential:
		if err := requireParam(spec.Params, "rate"); err != nil {
			return nil, err
		}
		return NewExponentialGenerator(spec.Params["rate"], src)

	case DistUniform:
		if err := requireParam(spec.Params, "min", "max"); err != nil {
			return nil, err
		}
		return NewUniformGenerator(spec.Params["min"], spec.Params["max"], src)

	case DistDeterministic:
		if err := requireParam(spec.Params, "value"); err != nil {
			return nil, err
		}
		return NewDeterministicGenerator(spec.Params["value"])

	case DistErlang:
		if err := requireParam(spec.Params, "k", "rate"); err != nil {
			return nil, err
		}
		k := spec.Params["k"]
		if k != float64(int(k)) {
			return nil, fmt.Errorf("erlang shape k must be an integer, got %v: %w", k, ErrInvalidParameter)
		}
		return NewErlangGenerator(int(k), spec.Params["rate"], src)

	default:
		return nil, fmt.Errorf("unknown distribution type %q: %w", spec.Type, ErrInvalidParameter)
	}
}

// distAliases maps compact-form prefixes to distribution types and parameter names.
var distAliases = map[string]struct {
	typ    string
	params []string
}{
	"exp":           {DistExponential, []string{"rate"}},
	"exponential":   {DistExponential, []string{"rate"}},
	"uniform":       {DistUniform, []string{"min", "max"}},
	"det":           {DistDeterministic, []string{"value"}},
	"deterministic": {DistDeterministic, []string{"value"}},
	"erlang":        {DistErlang, []string{"k", "rate"}},
}

// ParseDistSpec parses the compact CLI form, e.g. "exp:0.8", "uniform:0.5,1.5",
// "det:1" or "erlang:2,2".
func ParseDistSpec(s string) (DistSpec, error) {
	name, args, found := strings.Cut(strings.TrimSpace(s), ":")
	alias, ok := distAliases[strings.ToLower(name)]
	if !ok {
		return DistSpec{}, fmt.Errorf("unknown distribution %q: %w", name, ErrInvalidParameter)
	}
	if !found || args == "" {
		return DistSpec{}, fmt.Errorf("distribution %q needs %d parameter(s): %w", name, len(alias.params), ErrInvalidParameter)
	}
	fields := strings.Split(args, ",")
	if len(fields) != len(alias.params) {
		return DistSpec{}, fmt.Errorf("distribution %q needs %d parameter(s), got %d: %w",
			name, len(alias.params), len(fields), ErrInvalidParameter)
	}
	spec := DistSpec{Type: alias.typ, Params: make(map[string]float64, len(fields))}
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return DistSpec{}, fmt.Errorf("distribution %q parameter %q: %w", name, alias.params[i], ErrInvalidParameter)
		}
		spec.Params[alias.params[i]] = v
	}
	return spec, nil
}
