// Package main is the rzqr command line: one-shot pipeline runs and
// inspection of the intermediate stages.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okushigue/rzqr/internal/config"
	"github.com/okushigue/rzqr/internal/di"
	"github.com/okushigue/rzqr/internal/modules/pipeline"
	"github.com/okushigue/rzqr/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	digits     int
	radius     float64
	zeroCount  int
	shots      int
	sampling   string
	seed       uint64
	backendURL string
	logLevel   string
	asJSON     bool

	cfg *config.Config
	log zerolog.Logger

	rootCmd = &cobra.Command{
		Use:   "rzqr",
		Short: "Turn Riemann zeta zeros into a Grover search circuit and run it",
		Long: `rzqr computes the first zeta zeros on the critical line, spreads them
over a fractal field, maps the field to rotation angles and runs the
resulting Grover circuit on the local simulator or a remote backend.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline and print the ranked states",
		RunE:  runPipeline, // Defined in cmd_run.go
	}

	zerosCmd = &cobra.Command{
		Use:   "zeros",
		Short: "Print the zeta zero ordinates at the configured precision",
		RunE:  runZeros, // Defined in cmd_inspect.go
	}

	circuitCmd = &cobra.Command{
		Use:   "circuit",
		Short: "Assemble the circuit without executing it and print its statistics",
		RunE:  runCircuit, // Defined in cmd_inspect.go
	}

	qasmCmd = &cobra.Command{
		Use:   "qasm",
		Short: "Assemble the circuit and print it as OpenQASM 2.0",
		RunE:  runQASM, // Defined in cmd_inspect.go
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.IntVar(&digits, "digits", 0, "decimal digits for zero computation (default from config)")
	pf.Float64Var(&radius, "radius", 0, "influence radius in grid cells (default from config)")
	pf.IntVar(&zeroCount, "zeros", 0, "number of zeros to compute (default from config)")
	pf.StringVar(&logLevel, "log-level", "warn", "log level: trace, debug, info, warn, error")
	pf.BoolVar(&asJSON, "json", false, "print JSON instead of a text report")

	runCmd.Flags().IntVar(&shots, "shots", 0, "measurement shots (default from config)")
	runCmd.Flags().StringVar(&sampling, "sampling", "", "local simulator mode: exact or sampled")
	runCmd.Flags().Uint64Var(&seed, "seed", 0, "sampler seed, 0 seeds from the clock")
	runCmd.Flags().StringVar(&backendURL, "backend-url", "", "remote backend base URL, empty runs locally")
	runCmd.Flags().Bool("record", false, "store the run in the ledger under the data directory")

	rootCmd.AddCommand(runCmd, zerosCmd, circuitCmd, qasmCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig reads configuration from the environment and applies flag overrides
func loadConfig(cmd *cobra.Command, args []string) error {
	log = logger.New(logger.Config{
		Level:  logLevel,
		Pretty: true,
		Output: os.Stderr,
	})

	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("digits") {
		loaded.Pipeline.DecimalDigits = digits
	}
	if flags.Changed("radius") {
		loaded.Pipeline.InfluenceRadius = radius
	}
	if flags.Changed("zeros") {
		loaded.Pipeline.ZeroCount = zeroCount
	}
	if flags.Changed("shots") {
		loaded.Pipeline.Shots = shots
	}
	if flags.Changed("sampling") {
		loaded.Simulator.Mode = sampling
	}
	if flags.Changed("seed") {
		loaded.Simulator.Seed = seed
	}
	if flags.Changed("backend-url") {
		loaded.Backend.URL = backendURL
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = loaded
	return nil
}

// newService builds a pipeline service for one command invocation
func newService(opts ...pipeline.Option) *pipeline.Service {
	opts = append(opts, pipeline.WithExecutionTimeout(cfg.ExecutionTimeout()))
	return pipeline.NewService(di.NewAdapter(cfg, log), log, opts...)
}
