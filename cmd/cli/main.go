package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"marketshare/internal/config"
	"marketshare/internal/diag"
	"marketshare/internal/share"
	"marketshare/internal/simulation"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose bool
	logger  *zap.Logger

	scenarioPath  string
	outPath       string
	jsonOut       bool
	maxIterations int
	tolerance     float64

	rawShare float64
	capLimit float64
)

var rootCmd = &cobra.Command{
	Use:   "marketshare",
	Short: "Nested logit market share simulation",
	Long: `marketshare splits a sector's demand among competing technology groups
and their options over a multi-period horizon, honoring fixed output,
capacity limits and calibration to observed output.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario and write its ledger",
	Long: `Runs every period of a scenario and writes one ledger row per group and
option per period.

Example:
  marketshare run --scenario examples/scenarios/electricity.yaml --out results/ledger.csv`,
	RunE: runScenario,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a scenario file without running it",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.Load(scenarioPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d groups, %d periods from %d\n",
			scenarioPath, len(s.Groups), s.Modeltime.Periods, s.Modeltime.StartYear)
		return nil
	},
}

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Evaluate the capacity-limit transform for one share",
	RunE: func(cmd *cobra.Command, args []string) error {
		if capLimit <= 0 || capLimit > 1 {
			return fmt.Errorf("--cap-limit must be in (0, 1], got %g", capLimit)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "share=%.6f cap_limit=%.6f limited=%.6f\n",
			rawShare, capLimit, share.CapLimitTransform(rawShare, capLimit))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug diagnostics")

	runCmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "Path to scenario YAML")
	runCmd.Flags().StringVarP(&outPath, "out", "o", "results/ledger.csv", "Output CSV path")
	runCmd.Flags().BoolVar(&jsonOut, "json", false, "Print the run result as JSON instead of writing CSV")
	runCmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "Calibration passes per period (0 = scenario/default)")
	runCmd.Flags().Float64Var(&tolerance, "tolerance", 0, "Relative calibration miss to accept (0 = scenario/default)")
	_ = runCmd.MarkFlagRequired("scenario")

	validateCmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "Path to scenario YAML")
	_ = validateCmd.MarkFlagRequired("scenario")

	transformCmd.Flags().Float64Var(&rawShare, "share", 0, "Unconstrained share")
	transformCmd.Flags().Float64Var(&capLimit, "cap-limit", 1, "Share ceiling in (0, 1]")

	rootCmd.AddCommand(runCmd, validateCmd, transformCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runScenario(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := config.Load(scenarioPath)
	if err != nil {
		return err
	}
	a, err := s.Build()
	if err != nil {
		return err
	}

	mem := &diag.Memory{}
	rec := diag.Multi{mem, diag.NewZap(logger.With(zap.String("scenario", s.Name)))}

	if maxIterations <= 0 {
		maxIterations = s.Calibration.MaxIterations
	}
	if tolerance <= 0 {
		tolerance = s.Calibration.Tolerance
	}
	res, err := simulation.New(maxIterations, tolerance).Run(ctx, s.Driver(a, rec))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	// ensure output dir exists
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	if err := simulation.WriteLedgerCSV(outPath, res.Ledger); err != nil {
		return err
	}

	fmt.Fprintf(out, "Wrote %d rows to %s\n", len(res.Ledger), outPath)
	for _, p := range res.Periods {
		fmt.Fprintf(out, "%d demand=%.3f output=%.3f price=%.4f iterations=%d miss=%.2e\n",
			p.Year, p.Demand, p.Output, p.Price, p.Iterations, p.CalibrationMiss)
	}
	if n := mem.Count(diag.Warning); n > 0 {
		fmt.Fprintf(out, "%d warnings or errors recorded\n", n)
	}
	return nil
}
