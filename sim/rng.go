package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// NewEntropyKey returns a non-deterministic SimulationKey drawn from the
// runtime's randomly seeded global source.
func NewEntropyKey() SimulationKey {
	return SimulationKey(rand.Int64())
}

// Derive returns a child key for the named partition, e.g. one replica of a
// replicated experiment.
func (k SimulationKey) Derive(name string) SimulationKey {
	return SimulationKey(int64(k) ^ fnv1a64(name))
}

// === Subsystem Constants ===

const (
	// SubsystemArrival is the RNG subsystem for inter-arrival intervals.
	SubsystemArrival = "arrival"

	// SubsystemService is the RNG subsystem for service times.
	SubsystemService = "service"

	// SubsystemDiscipline is the RNG subsystem for randomized buffer selection.
	SubsystemDiscipline = "discipline"
)

// SubsystemReplica returns the partition name for replica N.
func SubsystemReplica(id int) string {
	return fmt.Sprintf("replica_%d", id)
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation: each subsystem gets a PCG stream seeded with
// (masterSeed, masterSeed XOR fnv1a64(subsystemName)).
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	derivedSeed := uint64(int64(p.key) ^ fnv1a64(name))
	rng := rand.New(rand.NewPCG(uint64(p.key), derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// newEntropySource returns an independent source seeded from the global
// generator. Used when a constructor is handed a nil source.
func newEntropySource() rand.Source {
	return rand.NewPCG(rand.Uint64(), rand.Uint64())
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
