package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/queue-sim/sim/replica"
)

type benchRow struct {
	Name   string
	Result replica.BenchmarkResult
}

func benchScenarios(ctx context.Context, f *ScenarioFile) ([]benchRow, error) {
	rows := make([]benchRow, 0, len(f.Scenarios))
	for _, sc := range f.Scenarios {
		res, err := replica.Benchmark(ctx, f.ReplicaConfig(sc))
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
		}
		rows = append(rows, benchRow{Name: sc.Name, Result: res})
	}
	return rows, nil
}

func printBench(w io.Writer, rows []benchRow) {
	fmt.Fprintf(w, "%-16s %7s %10s %10s %12s %12s %8s %7s\n",
		"Scenario", "rho", "W (seq)", "Workers", "T_seq(ms)", "T_par(ms)", "Speedup", "Eff.%")
	for _, r := range rows {
		res := r.Result
		fmt.Fprintf(w, "%-16s %7.3f %10.4f %10d %12.2f %12.2f %8.2f %7.1f\n",
			r.Name, res.Aggregated.Rho, res.Aggregated.WaitTime.Mean, res.Workers,
			milliseconds(res.Sequential), milliseconds(res.Parallel), res.Speedup, res.Efficiency*100)
	}
}

func milliseconds(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// benchCmd measures sequential vs parallel replica wall-clock time
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark sequential vs parallel replica execution",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		f, err := loadScenarioFlag(scenarioPath)
		if err != nil {
			logrus.Fatalf("Failed to load scenarios: %v", err)
		}
		applyReplicaOverrides(f)
		rows, err := benchScenarios(cmd.Context(), f)
		if err != nil {
			logrus.Fatalf("Benchmark failed: %v", err)
		}
		printBench(os.Stdout, rows)
	},
}

func init() {
	rootCmd.AddCommand(benchCmd)
}
