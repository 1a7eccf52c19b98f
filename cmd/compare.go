package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/queue-sim/sim"
	"github.com/inference-sim/queue-sim/sim/analytic"
	"github.com/inference-sim/queue-sim/sim/replica"
)

var (
	scenarioPath string // Scenario YAML file; empty runs the built-in sweep
	replicaCount int    // Overrides the file's replica count when > 0
	workerCount  int    // Overrides the file's worker count when > 0
)

// analyticReference returns the closed-form model matching cfg, if any.
// Mean wait is insensitive to the order of service except under sjf.
func analyticReference(cfg sim.Config) (string, analytic.Result, bool) {
	if cfg.Arrival.Type != sim.DistExponential || cfg.Discipline == sim.DisciplineSJF {
		return "", analytic.Result{}, false
	}
	lambda := cfg.Arrival.Params["rate"]
	if cfg.Service.Type == sim.DistExponential {
		mu := cfg.Service.Params["rate"]
		if cfg.Buffer == sim.Unbounded {
			res, ok := analytic.MMc(lambda, mu, cfg.Cores)
			return "M/M/c", res, ok
		}
		res, ok := analytic.MMcK(lambda, mu, cfg.Cores, cfg.Cores+cfg.Buffer)
		return "M/M/c/K", res, ok
	}
	if cfg.Cores != 1 || cfg.Buffer != sim.Unbounded {
		return "", analytic.Result{}, false
	}
	g, err := sim.NewGenerator(cfg.Service, sim.NewPartitionedRNG(0).ForSubsystem(sim.SubsystemService))
	if err != nil {
		return "", analytic.Result{}, false
	}
	res, ok := analytic.MG1(lambda, g.Mean(), g.Variance())
	return "M/G/1", res, ok
}

// compareRow is one line of the comparison table.
type compareRow struct {
	Name       string
	Model      string
	Aggregated replica.Aggregated
	Reference  analytic.Result
	HasRef     bool
}

func compareScenarios(ctx context.Context, f *ScenarioFile) ([]compareRow, error) {
	rows := make([]compareRow, 0, len(f.Scenarios))
	for _, sc := range f.Scenarios {
		results, err := replica.Run(ctx, f.ReplicaConfig(sc))
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
		}
		row := compareRow{Name: sc.Name, Aggregated: replica.Aggregate(replica.Summaries(results))}
		row.Model, row.Reference, row.HasRef = analyticReference(sc.Config)
		logrus.Infof("scenario %s: W=%s", sc.Name, row.Aggregated.WaitTime)
		rows = append(rows, row)
	}
	return rows, nil
}

func printCompare(w io.Writer, rows []compareRow) {
	fmt.Fprintf(w, "%-16s %-8s %7s %20s %10s %8s %8s\n", "Scenario", "Model", "rho", "W (sim)", "W (ref)", "Util", "Loss")
	for _, r := range rows {
		ref := "-"
		if r.HasRef {
			ref = fmt.Sprintf("%.4f", r.Reference.Wq)
		}
		model := r.Model
		if model == "" {
			model = "-"
		}
		fmt.Fprintf(w, "%-16s %-8s %7.3f %20s %10s %8.4f %8.4f\n",
			r.Name, model, r.Aggregated.Rho, r.Aggregated.WaitTime, ref,
			r.Aggregated.Utilization.Mean, r.Aggregated.LossProbability.Mean)
	}
}

// applyReplicaOverrides lets flags override the file-level replica settings.
func applyReplicaOverrides(f *ScenarioFile) {
	if replicaCount > 0 {
		f.Replicas = replicaCount
		for i := range f.Scenarios {
			f.Scenarios[i].Replicas = 0
		}
	}
	if workerCount > 0 {
		f.Workers = workerCount
	}
}

// compareCmd runs every scenario as a replica set and compares it against theory
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run scenario replicas and compare against analytic results",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		f, err := loadScenarioFlag(scenarioPath)
		if err != nil {
			logrus.Fatalf("Failed to load scenarios: %v", err)
		}
		applyReplicaOverrides(f)
		rows, err := compareScenarios(cmd.Context(), f)
		if err != nil {
			logrus.Fatalf("Comparison failed: %v", err)
		}
		printCompare(os.Stdout, rows)
	},
}

func init() {
	for _, c := range []*cobra.Command{compareCmd, benchCmd} {
		c.Flags().StringVar(&scenarioPath, "scenarios", "", "Scenario YAML file (built-in load sweep when empty)")
		c.Flags().IntVar(&replicaCount, "replicas", 0, "Replicas per scenario (0 = from file)")
		c.Flags().IntVar(&workerCount, "workers", 0, "Parallel workers (0 = from file, then GOMAXPROCS)")
	}
	rootCmd.AddCommand(compareCmd)
}
