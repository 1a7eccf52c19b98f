// Package replica runs independent simulation replicas in parallel and
// aggregates their published statistics.
//
// Replicas share no mutable state: each receives its own engine built from a
// seed key derived from the base key and the replica index.
package replica

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/inference-sim/queue-sim/sim"
)

// BuildFunc constructs the engine for one replica. key seeds every random
// stream that replica uses.
type BuildFunc func(replica int, key sim.SimulationKey) (*sim.Simulator, error)

// Stop selects the run condition of every replica. Jobs > 0 selects RunUntil,
// otherwise Run(Horizon).
type Stop struct {
	Horizon float64
	Jobs    int
}

// Config describes a replica set.
type Config struct {
	Replicas int
	Workers  int // <= 0 means GOMAXPROCS
	BaseKey  sim.SimulationKey
	Build    BuildFunc
	Stop     Stop
}

// Result is the outcome of one replica.
type Result struct {
	Replica int
	Key     sim.SimulationKey
	Summary sim.Summary
	Elapsed time.Duration
}

// workers returns the effective pool size.
func (c Config) workers() int {
	w := c.Workers
	if w <= 0 {
		w = runtime.GOMAXPROCS(0)
	}
	return max(1, min(w, c.Replicas))
}

func (c Config) validate() error {
	if c.Replicas <= 0 {
		return fmt.Errorf("replicas must be >= 1, got %d: %w", c.Replicas, sim.ErrInvalidConfiguration)
	}
	if c.Build == nil {
		return fmt.Errorf("build function is required: %w", sim.ErrInvalidConfiguration)
	}
	if c.Stop.Jobs <= 0 && !(c.Stop.Horizon > 0) {
		return fmt.Errorf("either a positive horizon or job count is required: %w", sim.ErrInvalidConfiguration)
	}
	return nil
}

// ReplicaKey derives the seed key of replica i from base.
func ReplicaKey(base sim.SimulationKey, i int) sim.SimulationKey {
	return base.Derive(sim.SubsystemReplica(i))
}

// Run executes cfg.Replicas independent engines on a bounded worker pool and
// returns their results in replica order. Cancellation is checked before each
// replica starts; a running replica always completes.
func Run(ctx context.Context, cfg Config) ([]Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	results := make([]Result, cfg.Replicas)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers())
	for i := 0; i < cfg.Replicas; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := runOne(cfg, i)
			if err != nil {
				return fmt.Errorf("replica %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func runOne(cfg Config, i int) (Result, error) {
	key := ReplicaKey(cfg.BaseKey, i)
	engine, err := cfg.Build(i, key)
	if err != nil {
		return Result{}, err
	}
	if engine == nil {
		return Result{}, errors.New("build returned a nil engine")
	}

	start := time.Now()
	var reason sim.StopReason
	if cfg.Stop.Jobs > 0 {
		reason, err = engine.RunUntil(cfg.Stop.Jobs)
	} else {
		reason, err = engine.Run(cfg.Stop.Horizon)
	}
	if err != nil {
		return Result{}, err
	}
	elapsed := time.Since(start)
	logrus.Debugf("replica %d finished (%s) in %v", i, reason, elapsed)

	return Result{
		Replica: i,
		Key:     key,
		Summary: engine.Summary(),
		Elapsed: elapsed,
	}, nil
}

// Summaries extracts the engine summaries from results.
func Summaries(results []Result) []sim.Summary {
	out := make([]sim.Summary, len(results))
	for i, r := range results {
		out[i] = r.Summary
	}
	return out
}
