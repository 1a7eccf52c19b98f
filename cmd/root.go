// cmd/root.go
package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/queue-sim/sim"
	"github.com/inference-sim/queue-sim/sim/trace"
)

var (
	// Queue configuration
	arrivalSpec   string // Compact inter-arrival distribution, e.g. "exp:0.8"
	serviceSpec   string // Compact service distribution, e.g. "exp:1"
	numCores      int    // Identical servers
	bufferSize    int    // Buffer capacity, -1 for unbounded
	discipline    string // Buffer ordering policy
	rrQueues      int    // Sub-queues for round-robin
	maxIterations int    // Event loop safety cap, 0 for the default

	// Run control
	seed        int64   // Seed for every random stream
	horizon     float64 // Simulated time to advance
	jobTarget   int     // Stop after this many departures instead of at the horizon
	logLevel    string  // Log verbosity level
	resultsPath string  // CSV file for the persisted statistics
	jsonOutput  bool    // Print the run summary as JSON
	traceLevel  string  // Admission trace verbosity
)

var rootCmd = &cobra.Command{
	Use:   "queue-sim",
	Short: "Discrete-event simulator for multi-server queueing systems",
}

// runCmd executes a single simulation run
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		cfg, err := buildRunConfig()
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Unknown trace level %q; valid: none, decisions", traceLevel)
		}

		key := sim.NewEntropyKey()
		if cmd.Flags().Changed("seed") {
			key = sim.NewSimulationKey(seed)
		}

		var st *trace.SimulationTrace
		var opts []sim.Option
		if trace.TraceLevel(traceLevel) == trace.TraceLevelDecisions {
			st = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
			opts = append(opts, sim.WithTrace(st))
		}

		s, err := cfg.Build(key, opts...)
		if err != nil {
			logrus.Fatalf("Failed to build simulator: %v", err)
		}
		if !s.IsStationary() {
			logrus.Warnf("Offered load rho=%.4f >= 1: the system is not stationary", s.Rho())
		}

		startTime := time.Now()
		reason, err := runSimulation(s, horizon, jobTarget)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		logrus.Infof("Run stopped: %s", reason)
		elapsed := time.Since(startTime)

		if jsonOutput {
			if err := writeSummaryJSON(os.Stdout, s.Summary()); err != nil {
				logrus.Fatalf("Failed to encode summary: %v", err)
			}
		} else {
			printStatistics(os.Stdout, s, elapsed)
		}
		if st != nil {
			printTraceSummary(os.Stdout, trace.Summarize(st))
		}
		if resultsPath != "" {
			if err := s.SaveStatistics(resultsPath); err != nil {
				logrus.Fatalf("Failed to save statistics: %v", err)
			}
		}

		logrus.Info("Simulation complete.")
	},
}

func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// buildRunConfig assembles a sim.Config from the run flags.
func buildRunConfig() (sim.Config, error) {
	arrival, err := sim.ParseDistSpec(arrivalSpec)
	if err != nil {
		return sim.Config{}, fmt.Errorf("--arrival: %w", err)
	}
	service, err := sim.ParseDistSpec(serviceSpec)
	if err != nil {
		return sim.Config{}, fmt.Errorf("--service: %w", err)
	}
	cfg := sim.Config{
		Arrival:       arrival,
		Service:       service,
		Cores:         numCores,
		Buffer:        bufferSize,
		Discipline:    discipline,
		RRQueues:      rrQueues,
		MaxIterations: maxIterations,
	}
	return cfg, cfg.Validate()
}

// runSimulation stops on the job count when jobs > 0, otherwise at the horizon.
func runSimulation(s *sim.Simulator, horizon float64, jobs int) (sim.StopReason, error) {
	if jobs > 0 {
		return s.RunUntil(jobs)
	}
	return s.Run(horizon)
}

func printStatistics(w io.Writer, s *sim.Simulator, elapsed time.Duration) {
	fmt.Fprintln(w, "=== Configuration ===")
	fmt.Fprintln(w, s.Configuration())
	fmt.Fprintln(w, "=== Simulation Statistics ===")
	fmt.Fprintf(w, "Stop Reason          : %s\n", s.LastStop())
	fmt.Fprintf(w, "Simulation Time      : %.4f\n", s.CurrentTime())
	fmt.Fprintf(w, "Total Arrivals       : %d\n", s.TotalArrivals())
	fmt.Fprintf(w, "Jobs Completed       : %d\n", s.JobsCompleted())
	fmt.Fprintf(w, "Jobs Lost            : %d\n", s.JobsLost())
	fmt.Fprintf(w, "Jobs In System       : %d\n", s.JobsInSystem())
	fmt.Fprintf(w, "Average Wait Time    : %.4f\n", s.AvgWaitTime())
	fmt.Fprintf(w, "Wait Time Variance   : %.4f\n", s.WaitTimeVariance())
	fmt.Fprintf(w, "Average System Time  : %.4f\n", s.AvgSystemTime())
	fmt.Fprintf(w, "Server Utilization   : %.4f\n", s.ServerUtilization())
	fmt.Fprintf(w, "Average Busy Cores   : %.4f\n", s.AvgBusyCores())
	fmt.Fprintf(w, "Loss Probability     : %.4f\n", s.LossProbability())
	fmt.Fprintf(w, "Average Queue Length : %.4f\n", s.AvgQueueLength())
	if ref, ok := s.TheoreticalMM1(); ok {
		fmt.Fprintf(w, "M/M/1 Reference      : %s\n", ref)
	}
	if n := s.Inconsistencies(); n > 0 {
		fmt.Fprintf(w, "Inconsistencies      : %d\n", n)
	}
	fmt.Fprintf(w, "Wall Clock           : %v\n", elapsed.Round(time.Microsecond))
}

func printTraceSummary(w io.Writer, ts *trace.TraceSummary) {
	fmt.Fprintln(w, "=== Admission Trace ===")
	fmt.Fprintf(w, "Decisions            : %d\n", ts.TotalDecisions)
	fmt.Fprintf(w, "Dispatched           : %d\n", ts.Dispatched)
	fmt.Fprintf(w, "Buffered             : %d\n", ts.Buffered)
	fmt.Fprintf(w, "Lost                 : %d\n", ts.Lost)
	fmt.Fprintf(w, "Peak Buffer Length   : %d\n", ts.PeakBufferLen)
	fmt.Fprintf(w, "Observed Loss Ratio  : %.4f\n", ts.LossRatio)
}

func writeSummaryJSON(w io.Writer, summary sim.Summary) error {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&arrivalSpec, "arrival", "exp:0.8", "Inter-arrival distribution (exp:RATE, uniform:MIN,MAX, det:VALUE, erlang:K,RATE)")
	runCmd.Flags().StringVar(&serviceSpec, "service", "exp:1", "Service time distribution, same forms as --arrival")
	runCmd.Flags().IntVar(&numCores, "cores", 1, "Number of identical servers")
	runCmd.Flags().IntVar(&bufferSize, "buffer", sim.Unbounded, "Buffer capacity (-1 = unbounded)")
	runCmd.Flags().StringVar(&discipline, "discipline", sim.DisciplineFIFO, fmt.Sprintf("Buffer discipline %v", sim.DisciplineNames()))
	runCmd.Flags().IntVar(&rrQueues, "rr-queues", 3, "Number of round-robin sub-queues")
	runCmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "Event loop iteration cap (0 = default)")

	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for the random streams (entropy when not set)")
	runCmd.Flags().Float64Var(&horizon, "horizon", 10000, "Simulated time to advance")
	runCmd.Flags().IntVar(&jobTarget, "jobs", 0, "Stop after this many departures (overrides --horizon)")
	runCmd.Flags().StringVar(&resultsPath, "results", "", "Write statistics to this CSV file")
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run summary as JSON")
	runCmd.Flags().StringVar(&traceLevel, "trace", string(trace.TraceLevelNone), "Admission trace level (none, decisions)")

	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	rootCmd.AddCommand(runCmd)
}
