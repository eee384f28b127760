package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/explore-sim/explore-sim/explore"
	"github.com/explore-sim/explore-sim/explore/history"
)

var (
	runConfigPath string // Path to the YAML run configuration
	runDir        string // Exploration directory override
	runMaxEvals   int    // Evaluation budget override
	runSimWorkers int    // Worker pool size override
	runAsync      bool   // Rolling dispatch override
	runResume     bool   // Resume a prior history
)

// runCmd executes an exploration described by a YAML run configuration
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an exploration from a YAML configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := LoadRunConfig(runConfigPath)
		if err != nil {
			logrus.Fatalf("Could not load run config: %v", err)
		}

		// CLI flags override the file where explicitly set.
		if cmd.Flags().Changed("dir") {
			cfg.Dir = runDir
		}
		if cmd.Flags().Changed("max-evals") {
			cfg.Exploration.MaxEvals = runMaxEvals
		}
		if cmd.Flags().Changed("sim-workers") {
			cfg.Exploration.SimWorkers = runSimWorkers
		}
		if cmd.Flags().Changed("run-async") {
			cfg.Exploration.RunAsync = runAsync
		}
		if cmd.Flags().Changed("resume") {
			cfg.Exploration.Resume = runResume
		}

		gen, err := cfg.BuildGenerator()
		if err != nil {
			logrus.Fatalf("Could not build generator: %v", err)
		}
		ev, err := cfg.BuildEvaluator()
		if err != nil {
			logrus.Fatalf("Could not build evaluator: %v", err)
		}

		store, err := history.Open(cfg.Dir, history.DescriptorFor(gen), cfg.Exploration.Resume)
		if err != nil {
			logrus.Fatalf("Could not open history store: %v", err)
		}

		exp, err := explore.NewExploration(cfg.Exploration, gen, ev, store)
		if err != nil {
			store.Close()
			logrus.Fatalf("Could not set up exploration: %v", err)
		}

		// SIGINT starts a graceful drain; in-flight trials get the grace period.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := exp.Run(ctx); err != nil {
			logrus.Fatalf("Exploration aborted: %v", err)
		}

		printSummary(cfg.Dir)
	},
}

// printSummary reopens the finished store read-only and reports the best trial.
func printSummary(dir string) {
	view, err := history.Inspect(dir)
	if err != nil {
		logrus.Warnf("Could not read back history for summary: %v", err)
		return
	}
	best, err := view.BestTrial("")
	if err != nil {
		logrus.Warnf("No best trial to report: %v", err)
		return
	}
	logrus.Infof("Best trial: index=%d values=%v objectives=%v", best.Index, best.Values, best.Objectives)
}

// init sets up CLI flags and attaches `run` to `root`
func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "exploration.yaml", "Path to the YAML run configuration")
	runCmd.Flags().StringVar(&runDir, "dir", "./exploration", "Exploration directory (history store location)")
	runCmd.Flags().IntVar(&runMaxEvals, "max-evals", 0, "Evaluation budget (overrides config file)")
	runCmd.Flags().IntVar(&runSimWorkers, "sim-workers", 0, "Concurrent evaluation workers (overrides config file)")
	runCmd.Flags().BoolVar(&runAsync, "run-async", false, "Rolling dispatch instead of batch generations (overrides config file)")
	runCmd.Flags().BoolVar(&runResume, "resume", false, "Resume the exploration found in --dir (overrides config file)")

	rootCmd.AddCommand(runCmd)
}
