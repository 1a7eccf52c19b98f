package sim

import (
	"fmt"
	"math/rand/v2"
)

// Discipline names accepted by NewJobDiscipline.
const (
	DisciplineFIFO       = "fifo"
	DisciplineLIFO       = "lifo"
	DisciplineRandom     = "random"
	DisciplinePriority   = "priority"
	DisciplineRoundRobin = "round-robin"
	DisciplineSJF        = "sjf"
)

// NewJobDiscipline creates a job buffer discipline by name.
// Valid names are defined in ValidDisciplines (bundle.go).
// Empty string defaults to FIFO (for CLI flag default compatibility).
// rrQueues configures round-robin; rng feeds random (nil = entropy-seeded).
//
// "priority" keys jobs by push sequence, which orders them exactly like FIFO;
// "sjf" keys them by service time.
func NewJobDiscipline(name string, rrQueues int, rng *rand.Rand) (Discipline[*Job], error) {
	if !IsValidDiscipline(name) {
		return nil, fmt.Errorf("unknown queue discipline %q: %w", name, ErrInvalidParameter)
	}
	switch name {
	case "", DisciplineFIFO:
		return NewFIFO[*Job](), nil
	case DisciplineLIFO:
		return NewLIFO[*Job](), nil
	case DisciplineRandom:
		return NewRandom[*Job](rng), nil
	case DisciplinePriority:
		return NewPriority[*Job]("PRIORITY", SequenceKey[*Job]), nil
	case DisciplineSJF:
		return NewPriority[*Job]("SJF", ShortestServiceKey), nil
	case DisciplineRoundRobin:
		rr, err := NewRoundRobin[*Job](rrQueues)
		if err != nil {
			return nil, err
		}
		return rr, nil
	default:
		return nil, fmt.Errorf("unhandled queue discipline %q: %w", name, ErrInvalidParameter)
	}
}
