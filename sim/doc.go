// Package sim provides the core discrete-event simulation engine for multi-server
// queueing systems.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - job.go: Job lifecycle (arrived → queued/in service → departed, or lost)
//   - event.go: Event types that drive the simulation (Arrival, Departure)
//   - simulator.go: The event loop, admission control and server dispatch
//
// # Architecture
//
// The sim package owns the kernel; helpers live in sub-packages:
//   - sim/analytic/: closed-form queueing results (M/M/1, M/G/1, M/M/c, M/M/c/K)
//   - sim/replica/: independent replica fan-out, aggregation and speedup benchmarks
//   - sim/trace/: optional in-memory admission decision trace
//
// # Key Interfaces
//
// The extension points are small interfaces built by name-keyed factories:
//   - Generator: samples from a distribution, exposes analytic mean/variance (NewGenerator)
//   - Discipline: orders buffered jobs for dispatch to a freed server (NewJobDiscipline)
//
// A Simulator is single-threaded. Independent Simulators share no mutable state,
// so distinct instances may be constructed and run concurrently.
package sim
