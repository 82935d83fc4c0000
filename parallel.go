package diptest

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// NullDistribution holds the dip statistics of uniform samples of one size,
// the least favourable unimodal distribution for the dip test.
type NullDistribution struct {
	// SampleSize is the size of every simulated sample.
	SampleSize int

	// Dips holds one statistic per trial, in ascending order.
	Dips []float64
}

// PValue returns the fraction of null statistics at least as large as
// statistic.
func (d *NullDistribution) PValue(statistic float64) float64 {
	if len(d.Dips) == 0 {
		return 1
	}
	i := sort.SearchFloat64s(d.Dips, statistic)
	return float64(len(d.Dips)-i) / float64(len(d.Dips))
}

// Quantile returns the empirical p-quantile of the null statistics.
func (d *NullDistribution) Quantile(p float64) float64 {
	return stat.Quantile(p, stat.Empirical, d.Dips, nil)
}

// Mean returns the mean null statistic.
func (d *NullDistribution) Mean() float64 {
	return stat.Mean(d.Dips, nil)
}

// StdDev returns the standard deviation of the null statistics.
func (d *NullDistribution) StdDev() float64 {
	return stat.StdDev(d.Dips, nil)
}

// BootstrapDistribution simulates cfg.BootstrapTrials uniform samples of
// size n and computes their dip statistics with cfg.Backend. Trials are split
// into contiguous ranges across cfg.Workers goroutines. Every trial draws
// from its own PCG stream seeded with (cfg.Seed, trial), so the result does
// not depend on the number of workers or their scheduling.
//
// Cancellation is checked between trials; a cancelled run returns ctx.Err().
func BootstrapDistribution(ctx context.Context, n int, cfg Config) (*NullDistribution, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("diptest: %w: sample size must be >= 1, got %d", ErrInvalidInput, n)
	}
	cfg.Debug = false

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	trials := cfg.BootstrapTrials
	dips := make([]float64, trials)
	numWorkers := min(cfg.Workers, trials)

	// Each worker handles a contiguous range of trials and writes only its
	// own slots of dips, so no synchronization is needed for the writes.
	g, gctx := errgroup.WithContext(ctx)
	perWorker := (trials + numWorkers - 1) / numWorkers

	for w := 0; w < numWorkers; w++ {
		start := w * perWorker
		end := min(start+perWorker, trials)
		if start >= trials {
			break
		}

		g.Go(func() error {
			sample := make([]float64, n)
			for t := start; t < end; t++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				dips[t] = bootstrapTrial(sample, seed, t, cfg)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	slices.Sort(dips)
	return &NullDistribution{SampleSize: n, Dips: dips}, nil
}

// bootstrapTrial fills sample with uniform variates from the stream of trial
// and returns its dip statistic.
func bootstrapTrial(sample []float64, seed uint64, trial int, cfg Config) float64 {
	u := distuv.Uniform{Min: 0, Max: 1, Src: rand.NewPCG(seed, uint64(trial))}
	for i := range sample {
		sample[i] = u.Rand()
	}
	slices.Sort(sample)
	return computeDip(sample, cfg).Statistic
}
