package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidDiscipline(t *testing.T) {
	for _, name := range []string{"", "fifo", "lifo", "random", "priority", "round-robin", "sjf"} {
		assert.True(t, IsValidDiscipline(name), name)
	}
	for _, name := range []string{"FIFO", "fcfs", "round_robin"} {
		assert.False(t, IsValidDiscipline(name), name)
	}
}

func TestIsValidDistribution(t *testing.T) {
	for _, name := range []string{DistExponential, DistUniform, DistDeterministic, DistErlang} {
		assert.True(t, IsValidDistribution(name), name)
	}
	assert.False(t, IsValidDistribution("gamma"))
	assert.False(t, IsValidDistribution(""))
}

func TestDisciplineNames_SortedWithoutEmpty(t *testing.T) {
	names := DisciplineNames()
	assert.Equal(t, []string{"fifo", "lifo", "priority", "random", "round-robin", "sjf"}, names)
}
