package diptest

import (
	"context"
	"fmt"
	"math"
)

// Coefficients of the fitted p-value curve. Each parameter of the
// generalized logistic is a degree-4 polynomial in ln(n), lowest order first.
var (
	functionB = [5]float64{7.63466648e+00, 3.75363863e-01, -5.91013944e-02, 4.70521924e-03, -1.46365776e-04}
	functionC = [5]float64{2.44547986e-01, -8.91268608e-02, 1.30656578e-02, -8.94635688e-04, 2.37116900e-05}
	functionG = [5]float64{1.44028297e+00, -3.14378648e-01, 6.10595736e-02, -5.22384667e-03, 1.63970372e-04}
)

// PValue returns the p-value of a dip statistic observed on a sample of size
// n, using cfg.Strategy. Samples of size 4 or less always get 1. An unknown
// strategy fails with ErrInvalidStrategy before anything is computed.
func PValue(ctx context.Context, statistic float64, n int, cfg Config) (float64, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return 0, err
	}
	return pValueFor(ctx, statistic, n, cfg)
}

// pValueFor assumes cfg has been validated.
func pValueFor(ctx context.Context, statistic float64, n int, cfg Config) (float64, error) {
	if n <= 4 {
		return 1, nil
	}
	switch cfg.Strategy {
	case StrategyTable:
		return TablePValue(statistic, n), nil
	case StrategyFunction:
		return FunctionPValue(statistic, n), nil
	case StrategyBootstrap:
		null, err := BootstrapDistribution(ctx, n, cfg)
		if err != nil {
			return 0, err
		}
		return null.PValue(statistic), nil
	default:
		return 0, fmt.Errorf("diptest: %w %q", ErrInvalidStrategy, cfg.Strategy)
	}
}

// TablePValue interpolates the p-value of statistic from the critical value
// table. Both the table and the statistic are scaled by sqrt(n), under which
// the null quantiles are nearly independent of n.
func TablePValue(statistic float64, n int) float64 {
	if n <= 4 {
		return 1
	}
	row := criticalRow(n)
	return 1 - interpolate(math.Sqrt(float64(n))*statistic, row, criticalLevels)
}

// FunctionPValue evaluates a generalized logistic curve fitted to the
// bootstrap null distribution. It is O(1) and least accurate for very small
// and very large n.
func FunctionPValue(statistic float64, n int) float64 {
	if n <= 4 {
		return 1
	}
	const a, d = 1.0, 0.0
	ln := math.Log(float64(n))
	b := polynomial(functionB, ln)
	c := polynomial(functionC, ln)
	g := polynomial(functionG, ln)
	return d + (a-d)/math.Pow(1+math.Pow(statistic/c, b), g)
}

func polynomial(coef [5]float64, x float64) float64 {
	y := 0.0
	for i := len(coef) - 1; i >= 0; i-- {
		y = y*x + coef[i]
	}
	return y
}
