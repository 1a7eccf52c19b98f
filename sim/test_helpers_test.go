package sim

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedGenerator replays values in order, repeating the last one.
type scriptedGenerator struct {
	values []float64
	next   int
}

func newScripted(values ...float64) *scriptedGenerator {
	return &scriptedGenerator{values: values}
}

func (g *scriptedGenerator) Generate() float64 {
	v := g.values[min(g.next, len(g.values)-1)]
	g.next++
	return v
}

func (g *scriptedGenerator) Mean() float64 {
	sum := 0.0
	for _, v := range g.values {
		sum += v
	}
	return sum / float64(len(g.values))
}

func (g *scriptedGenerator) Variance() float64 { return 0 }
func (g *scriptedGenerator) Name() string      { return fmt.Sprintf("Scripted(%v)", g.values) }

// newSeededSim builds an engine from compact distribution specs with every
// random stream derived from seed.
func newSeededSim(t *testing.T, seed int64, arrival, service string, cores, buffer int, discipline string, opts ...Option) *Simulator {
	t.Helper()
	a, err := ParseDistSpec(arrival)
	require.NoError(t, err)
	s, err := ParseDistSpec(service)
	require.NoError(t, err)
	cfg := Config{
		Arrival:    a,
		Service:    s,
		Cores:      cores,
		Buffer:     buffer,
		Discipline: discipline,
		RRQueues:   3,
	}
	engine, err := cfg.Build(NewSimulationKey(seed), opts...)
	require.NoError(t, err)
	return engine
}

// brokenDiscipline claims to hold items but fails every Pop.
type brokenDiscipline struct {
	pushed int
}

func (d *brokenDiscipline) Push(*Job)               { d.pushed++ }
func (d *brokenDiscipline) Pop() (*Job, error)      { return nil, ErrEmptyQueue }
func (d *brokenDiscipline) IsEmpty() bool           { return d.pushed == 0 }
func (d *brokenDiscipline) Len() int                { return d.pushed }
func (d *brokenDiscipline) Name() string            { return "BROKEN" }
func (d *brokenDiscipline) Fresh() Discipline[*Job] { return &brokenDiscipline{} }
