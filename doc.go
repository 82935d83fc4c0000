// Package diptest implements Hartigan's dip test of unimodality.
//
// The dip statistic measures the maximum distance between the empirical
// distribution function of a one-dimensional sample and the closest
// unimodal distribution function. It is 0 for degenerate samples, at
// least 1/(2n) otherwise, and at most 0.5. A p-value against the null
// hypothesis of unimodality is derived from the statistic and the sample
// size.
//
// Basic usage:
//
//	cfg := diptest.DefaultConfig()
//	dip, p, err := diptest.Test(ctx, sample, cfg)
//	// p < 0.05 rejects unimodality at the 5% level
//
// For the interval and modal triangle behind the statistic:
//
//	res, err := diptest.Dip(sample, cfg)
//	// res.Statistic, res.Interval, res.ModalTriangle
//
// # Backends
//
// By default (Backend: "auto"), Dip uses a compiled dip routine loaded from
// a shared library when one is available and falls back to the pure Go
// implementation otherwise. The library is looked up once per process; see
// the internal/native package for the search order. Set Config.Backend to
// force a specific implementation:
//
//	cfg.Backend = diptest.BackendPure // pure Go port of the hull fitting
//	cfg.Backend = diptest.BackendFast // histogram-compressed variant
//
// The fast variant works on distinct values and their multiplicities, which
// pays off for discretized data with many repeated values.
//
// # P-values
//
// Three strategies map a statistic to a p-value:
//
//	cfg.Strategy = diptest.StrategyTable     // interpolated critical values
//	cfg.Strategy = diptest.StrategyBootstrap // simulated uniform samples
//	cfg.Strategy = diptest.StrategyFunction  // fitted closed-form curve
//
// The bootstrap strategy runs Config.BootstrapTrials dip computations on
// Config.Workers goroutines and honours context cancellation between trials.
//
// Reference: Hartigan, J. A. and Hartigan, P. M. (1985). The Dip Test of
// Unimodality. The Annals of Statistics 13(1), 70-84.
package diptest
