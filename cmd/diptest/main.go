// Command diptest runs Hartigan's dip test of unimodality on a sample read
// from a file or stdin.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/TrevorS/diptest"
)

// options holds the flags shared by every subcommand.
type options struct {
	configPath string
	strategy   string
	backend    string
	trials     int
	seed       uint64
	workers    int
	sorted     bool
	debug      bool
	jsonOut    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "diptest",
		Short:        "Hartigan's dip test of unimodality",
		SilenceUsage: true,
	}

	defaults := diptest.DefaultConfig()
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML file with default flag values")
	flags.StringVar(&opts.strategy, "strategy", string(defaults.Strategy), "p-value strategy (table, bootstrap, function)")
	flags.StringVar(&opts.backend, "backend", string(defaults.Backend), "dip implementation (auto, pure, fast)")
	flags.IntVar(&opts.trials, "trials", defaults.BootstrapTrials, "bootstrap trials")
	flags.Uint64Var(&opts.seed, "seed", 0, "bootstrap seed (0 picks a random seed)")
	flags.IntVar(&opts.workers, "workers", 0, "bootstrap goroutines (0 uses all CPUs)")
	flags.BoolVar(&opts.sorted, "sorted", false, "input is already in ascending order")
	flags.BoolVar(&opts.debug, "debug", false, "log every iteration of the dip loop")
	flags.BoolVar(&opts.jsonOut, "json", false, "write results as JSON")

	rootCmd.AddCommand(testCmd(opts))
	rootCmd.AddCommand(pvalueCmd(opts))
	rootCmd.AddCommand(criticalCmd(opts))

	return rootCmd
}

// resolve builds the library config from defaults, the config file and the
// flags, in increasing order of precedence.
func (o *options) resolve(cmd *cobra.Command, fc *fileConfig) diptest.Config {
	cfg := diptest.DefaultConfig()
	fc.apply(&cfg)

	changed := cmd.Flags().Changed
	if changed("strategy") {
		cfg.Strategy = diptest.PValueStrategy(o.strategy)
	}
	if changed("backend") {
		cfg.Backend = diptest.Backend(o.backend)
	}
	if changed("trials") {
		cfg.BootstrapTrials = o.trials
	}
	if changed("seed") {
		cfg.Seed = o.seed
	}
	if changed("workers") {
		cfg.Workers = o.workers
	}
	if changed("sorted") {
		cfg.Sorted = o.sorted
	}
	if changed("debug") {
		cfg.Debug = o.debug
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	cfg.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return cfg
}
