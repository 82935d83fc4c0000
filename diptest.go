package diptest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"slices"
)

// PValueStrategy selects how a dip statistic is mapped to a p-value.
type PValueStrategy string

const (
	StrategyTable     PValueStrategy = "table"
	StrategyBootstrap PValueStrategy = "bootstrap"
	StrategyFunction  PValueStrategy = "function"
)

// DefaultBootstrapTrials is the number of simulated samples drawn by the
// bootstrap strategy when Config.BootstrapTrials is zero.
const DefaultBootstrapTrials = 2000

var (
	// ErrInvalidInput reports a sample that is not one-dimensional, contains
	// NaN, or was declared sorted while it is not.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidStrategy reports an unknown PValueStrategy.
	ErrInvalidStrategy = errors.New("invalid p-value strategy")

	// ErrInvalidConfig reports a Config field outside its valid range.
	ErrInvalidConfig = errors.New("invalid config")
)

// Config controls dip computation and p-value estimation.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Sorted declares the sample to be in ascending order already, which
	// skips the sorted copy. A sample declared sorted that is not is
	// rejected with ErrInvalidInput. Default: false.
	Sorted bool

	// Strategy chooses the p-value computation. "table" interpolates
	// tabulated critical values, "bootstrap" simulates uniform samples and
	// "function" evaluates a fitted curve. Default: "table".
	Strategy PValueStrategy

	// BootstrapTrials is the number of uniform samples simulated by the
	// bootstrap strategy. Must be >= 1. Default: 2000.
	BootstrapTrials int

	// Backend selects the dip implementation. "auto" uses the native
	// library when it can be loaded and pure Go otherwise, "pure" never
	// touches the native library and "fast" uses the histogram-compressed
	// variant. Default: "auto".
	Backend Backend

	// Workers is the number of goroutines running bootstrap trials.
	// 0 means use runtime.NumCPU(). Default: 0 (auto).
	Workers int

	// Seed seeds the bootstrap random streams. Runs with the same seed,
	// sample size and trial count produce the same p-value regardless of
	// Workers. 0 picks a random seed. Default: 0.
	Seed uint64

	// Logger receives the native loader notice and, with Debug set, one
	// record per iteration of the dip loop. Default: slog.Default().
	Logger *slog.Logger

	// Debug logs the state of every outer iteration of the pure dip loop
	// at debug level. Default: false.
	Debug bool
}

// Interval holds sample indices bounding the region that drives the
// statistic. Low and High are the hull bounds of the last iteration;
// BestLow and BestHigh are the bounds of the iteration that produced the
// final statistic. Absent indices are -1.
type Interval struct {
	Low      int
	High     int
	BestLow  int
	BestHigh int
}

// Result contains the output of a dip computation. All indices refer to
// the sample in ascending order.
type Result struct {
	// Statistic is the dip, in [0, 0.5].
	Statistic float64

	// Interval bounds the region driving the statistic.
	Interval Interval

	// ModalTriangle marks the estimated mode: the two outer indices are the
	// ends of the hull segment with the largest deviation and the middle
	// index is the point of that deviation. Entries are -1 when absent.
	ModalTriangle [3]int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Strategy:        StrategyTable,
		BootstrapTrials: DefaultBootstrapTrials,
		Backend:         BackendAuto,
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	switch cfg.Strategy {
	case StrategyTable, StrategyBootstrap, StrategyFunction:
	default:
		return fmt.Errorf("diptest: %w %q, want \"table\", \"bootstrap\" or \"function\"", ErrInvalidStrategy, cfg.Strategy)
	}
	switch cfg.Backend {
	case BackendAuto, BackendNative, BackendPure, BackendFast:
	default:
		return fmt.Errorf("diptest: %w: unknown Backend %q", ErrInvalidConfig, cfg.Backend)
	}
	if cfg.BootstrapTrials < 1 {
		return fmt.Errorf("diptest: %w: BootstrapTrials must be >= 1, got %d", ErrInvalidConfig, cfg.BootstrapTrials)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("diptest: %w: Workers must be >= 0 (0 means runtime.NumCPU()), got %d", ErrInvalidConfig, cfg.Workers)
	}
	return nil
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyTable
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendAuto
	}
	if cfg.BootstrapTrials == 0 {
		cfg.BootstrapTrials = DefaultBootstrapTrials
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
}

// emptyResult is the statistic-zero result of a degenerate sample.
func emptyResult() *Result {
	return &Result{
		Interval:      Interval{Low: -1, High: -1, BestLow: -1, BestHigh: -1},
		ModalTriangle: [3]int{-1, -1, -1},
	}
}

// Dip computes the dip statistic of sample together with its interval and
// modal triangle. The sample is not modified. Samples with fewer than 4
// points or a single distinct value have statistic 0.
func Dip(sample []float64, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	x, err := prepareSample(sample, cfg.Sorted)
	if err != nil {
		return nil, err
	}
	return computeDip(x, cfg), nil
}

// Test runs the dip test on sample and returns the dip statistic and its
// p-value under the null hypothesis of unimodality. An invalid strategy is
// reported before any computation takes place.
func Test(ctx context.Context, sample []float64, cfg Config) (statistic, pValue float64, err error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return 0, 0, err
	}
	x, err := prepareSample(sample, cfg.Sorted)
	if err != nil {
		return 0, 0, err
	}
	statistic = computeDip(x, cfg).Statistic
	pValue, err = pValueFor(ctx, statistic, len(x), cfg)
	if err != nil {
		return 0, 0, err
	}
	return statistic, pValue, nil
}

// DipPoints is Dip for data in row-of-points layout. Every row must hold
// exactly one coordinate.
func DipPoints(data [][]float64, cfg Config) (*Result, error) {
	sample, err := flattenPoints(data)
	if err != nil {
		return nil, err
	}
	return Dip(sample, cfg)
}

// TestPoints is Test for data in row-of-points layout.
func TestPoints(ctx context.Context, data [][]float64, cfg Config) (statistic, pValue float64, err error) {
	sample, err := flattenPoints(data)
	if err != nil {
		return 0, 0, err
	}
	return Test(ctx, sample, cfg)
}

// flattenPoints turns n points of dimension 1 into a sample of length n.
func flattenPoints(data [][]float64) ([]float64, error) {
	sample := make([]float64, len(data))
	for i, row := range data {
		if len(row) != 1 {
			return nil, fmt.Errorf("diptest: %w: data must be 1-dimensional, point %d has %d coordinates", ErrInvalidInput, i, len(row))
		}
		sample[i] = row[0]
	}
	return sample, nil
}

// prepareSample returns sample in ascending order. Unsorted input is copied
// before sorting; input declared sorted is checked and used as is.
func prepareSample(sample []float64, sorted bool) ([]float64, error) {
	for i, v := range sample {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("diptest: %w: NaN at index %d", ErrInvalidInput, i)
		}
	}
	if sorted {
		if !slices.IsSorted(sample) {
			return nil, fmt.Errorf("diptest: %w: sample declared sorted is not in ascending order", ErrInvalidInput)
		}
		return sample, nil
	}
	x := slices.Clone(sample)
	slices.Sort(x)
	return x, nil
}

// computeDip dispatches a sorted, validated sample to the configured backend.
func computeDip(x []float64, cfg Config) *Result {
	if cfg.Backend == BackendFast {
		return fastDip(x).Result
	}
	n := len(x)
	if n < 4 || x[0] == x[n-1] {
		return emptyResult()
	}
	if cfg.Backend == BackendAuto || cfg.Backend == BackendNative {
		if res, ok := nativeDip(x, cfg.Logger); ok {
			return res
		}
	}
	return pureDip(x, cfg)
}
