package sim

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func pcg(seed uint64) rand.Source { return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15) }

func sample(g Generator, n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = g.Generate()
	}
	return xs
}

func TestGenerators_InvalidParameters(t *testing.T) {
	tests := []struct {
		name  string
		build func() error
	}{
		{"exponential zero rate", func() error { _, err := NewExponentialGenerator(0, nil); return err }},
		{"exponential negative rate", func() error { _, err := NewExponentialGenerator(-1, nil); return err }},
		{"exponential NaN rate", func() error { _, err := NewExponentialGenerator(math.NaN(), nil); return err }},
		{"uniform a == b", func() error { _, err := NewUniformGenerator(1, 1, nil); return err }},
		{"uniform a > b", func() error { _, err := NewUniformGenerator(2, 1, nil); return err }},
		{"uniform negative a", func() error { _, err := NewUniformGenerator(-1, 1, nil); return err }},
		{"deterministic negative", func() error { _, err := NewDeterministicGenerator(-0.5); return err }},
		{"erlang zero k", func() error { _, err := NewErlangGenerator(0, 1, nil); return err }},
		{"erlang zero rate", func() error { _, err := NewErlangGenerator(2, 0, nil); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParameter))
		})
	}
}

func TestGenerators_AnalyticMoments(t *testing.T) {
	exp, _ := NewExponentialGenerator(2, nil)
	uni, _ := NewUniformGenerator(1, 3, nil)
	det, _ := NewDeterministicGenerator(1.5)
	erl, _ := NewErlangGenerator(3, 2, nil)

	tests := []struct {
		g              Generator
		mean, variance float64
	}{
		{exp, 0.5, 0.25},
		{uni, 2, 4.0 / 12.0},
		{det, 1.5, 0},
		{erl, 1.5, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.g.Name(), func(t *testing.T) {
			assert.InDelta(t, tt.mean, tt.g.Mean(), 1e-12)
			assert.InDelta(t, tt.variance, tt.g.Variance(), 1e-12)
		})
	}
}

func TestGenerators_SampleMomentsConverge(t *testing.T) {
	exp, _ := NewExponentialGenerator(2, pcg(1))
	uni, _ := NewUniformGenerator(1, 3, pcg(2))
	erl, _ := NewErlangGenerator(3, 2, pcg(3))

	for _, g := range []Generator{exp, uni, erl} {
		t.Run(g.Name(), func(t *testing.T) {
			// GIVEN many samples
			xs := sample(g, 200_000)

			// THEN sample mean and variance approach the analytic values
			assert.InEpsilon(t, g.Mean(), stat.Mean(xs, nil), 0.02)
			assert.InEpsilon(t, g.Variance(), stat.Variance(xs, nil), 0.05)
			for _, x := range xs {
				if x < 0 {
					t.Fatalf("negative sample %v", x)
				}
			}
		})
	}
}

func TestUniformGenerator_SamplesWithinBounds(t *testing.T) {
	g, err := NewUniformGenerator(0.5, 1.5, pcg(4))
	require.NoError(t, err)
	for _, x := range sample(g, 10_000) {
		assert.GreaterOrEqual(t, x, 0.5)
		assert.Less(t, x, 1.5)
	}
}

func TestDeterministicGenerator_AlwaysSameValue(t *testing.T) {
	g, err := NewDeterministicGenerator(0.25)
	require.NoError(t, err)
	for _, x := range sample(g, 100) {
		assert.Equal(t, 0.25, x)
	}
	assert.Equal(t, "Deterministic(0.25)", g.Name())
}

func TestGenerators_SameSourceSeedSameSequence(t *testing.T) {
	a, _ := NewErlangGenerator(2, 1, pcg(9))
	b, _ := NewErlangGenerator(2, 1, pcg(9))
	assert.Equal(t, sample(a, 50), sample(b, 50))
}

func TestGenerators_IndependentSources(t *testing.T) {
	// GIVEN two generators with their own entropy-seeded sources
	a, _ := NewExponentialGenerator(1, nil)
	b, _ := NewExponentialGenerator(1, nil)

	// THEN their streams differ
	assert.NotEqual(t, sample(a, 5), sample(b, 5))
}

func TestGenerator_Names(t *testing.T) {
	exp, _ := NewExponentialGenerator(0.8, nil)
	uni, _ := NewUniformGenerator(0.5, 1.5, nil)
	erl, _ := NewErlangGenerator(2, 3, nil)
	assert.Equal(t, "Exponential(λ=0.8)", exp.Name())
	assert.Equal(t, "Uniform[0.5,1.5]", uni.Name())
	assert.Equal(t, "Erlang(k=2, λ=3)", erl.Name())
}

func TestNewGenerator_FromDistSpec(t *testing.T) {
	tests := []struct {
		spec     DistSpec
		wantMean float64
	}{
		{DistSpec{Type: DistExponential, Params: map[string]float64{"rate": 4}}, 0.25},
		{DistSpec{Type: DistUniform, Params: map[string]float64{"min": 0, "max": 2}}, 1},
		{DistSpec{Type: DistDeterministic, Params: map[string]float64{"value": 3}}, 3},
		{DistSpec{Type: DistErlang, Params: map[string]float64{"k": 4, "rate": 2}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.spec.Type, func(t *testing.T) {
			g, err := NewGenerator(tt.spec, pcg(1))
			require.NoError(t, err)
			assert.InDelta(t, tt.wantMean, g.Mean(), 1e-12)
		})
	}
}

func TestNewGenerator_InvalidSpecs(t *testing.T) {
	tests := []struct {
		name string
		spec DistSpec
	}{
		{"unknown type", DistSpec{Type: "gamma", Params: map[string]float64{"rate": 1}}},
		{"missing rate", DistSpec{Type: DistExponential}},
		{"missing max", DistSpec{Type: DistUniform, Params: map[string]float64{"min": 0}}},
		{"fractional erlang k", DistSpec{Type: DistErlang, Params: map[string]float64{"k": 2.5, "rate": 1}}},
		{"bad value", DistSpec{Type: DistDeterministic, Params: map[string]float64{"value": -1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGenerator(tt.spec, nil)
			assert.True(t, errors.Is(err, ErrInvalidParameter), "got %v", err)
		})
	}
}

func TestParseDistSpec_CompactForms(t *testing.T) {
	tests := []struct {
		in   string
		want DistSpec
	}{
		{"exp:0.8", DistSpec{Type: DistExponential, Params: map[string]float64{"rate": 0.8}}},
		{"exponential:2", DistSpec{Type: DistExponential, Params: map[string]float64{"rate": 2}}},
		{"uniform:0.5,1.5", DistSpec{Type: DistUniform, Params: map[string]float64{"min": 0.5, "max": 1.5}}},
		{"det:1", DistSpec{Type: DistDeterministic, Params: map[string]float64{"value": 1}}},
		{" Erlang:2, 3 ", DistSpec{Type: DistErlang, Params: map[string]float64{"k": 2, "rate": 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDistSpec(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDistSpec_RoundTripsThroughString(t *testing.T) {
	for _, in := range []string{"exp:0.8", "uniform:0.5,1.5", "det:1", "erlang:2,2"} {
		spec, err := ParseDistSpec(in)
		require.NoError(t, err)
		assert.Equal(t, in, spec.String())
	}
}

func TestParseDistSpec_Invalid(t *testing.T) {
	for _, in := range []string{"", "exp", "exp:", "exp:a", "uniform:1", "weibull:1,2", "det:1,2"} {
		_, err := ParseDistSpec(in)
		assert.True(t, errors.Is(err, ErrInvalidParameter), "input %q", in)
	}
}
