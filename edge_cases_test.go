package diptest

import (
	"context"
	"math"
	"testing"
)

func TestEdgeCase_SinglePoint(t *testing.T) {
	res, err := Dip([]float64{3.5}, pureConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Statistic != 0 {
		t.Errorf("statistic = %v, want 0", res.Statistic)
	}
	if res.Interval.Low != -1 || res.Interval.High != -1 {
		t.Errorf("interval = %+v, want -1 bounds", res.Interval)
	}
}

func TestEdgeCase_EmptySample(t *testing.T) {
	stat, p, err := Test(context.Background(), []float64{}, pureConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stat != 0 || p != 1 {
		t.Errorf("got (%v, %v), want (0, 1)", stat, p)
	}
}

func TestEdgeCase_AllIdenticalPoints(t *testing.T) {
	sample := make([]float64, 100)
	for i := range sample {
		sample[i] = -2.25
	}
	for _, backend := range []Backend{BackendPure, BackendFast} {
		cfg := DefaultConfig()
		cfg.Backend = backend
		res, err := Dip(sample, cfg)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", backend, err)
		}
		if res.Statistic != 0 {
			t.Errorf("%s: statistic = %v, want 0", backend, res.Statistic)
		}
		if res.ModalTriangle != [3]int{-1, -1, -1} {
			t.Errorf("%s: modal triangle = %v, want all -1", backend, res.ModalTriangle)
		}
	}
}

func TestEdgeCase_TwoDistinctValues(t *testing.T) {
	// One outlier against a point mass.
	sample := []float64{0, 0, 0, 0, 0, 0, 0, 1}
	res, err := Dip(sample, pureConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.IsNaN(res.Statistic) || res.Statistic <= 0 || res.Statistic > 0.5 {
		t.Errorf("statistic = %v, want in (0, 0.5]", res.Statistic)
	}
}

func TestEdgeCase_ExtremeMagnitudes(t *testing.T) {
	for _, scale := range []float64{math.Ldexp(1, -40), math.Ldexp(1, 40)} {
		sample := bimodalSample(200, 2, 121)
		scaled := make([]float64, len(sample))
		for i, v := range sample {
			scaled[i] = v * scale
		}
		want, err := Dip(sample, pureConfig())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, err := Dip(scaled, pureConfig())
		if err != nil {
			t.Fatalf("scale %g: unexpected error: %v", scale, err)
		}
		if !almostEqual(got.Statistic, want.Statistic, 1e-9) {
			t.Errorf("scale %g: statistic = %v, want %v", scale, got.Statistic, want.Statistic)
		}
	}
}

func TestEdgeCase_ShiftInvariance(t *testing.T) {
	sample := bimodalSample(200, 2, 122)
	shifted := make([]float64, len(sample))
	for i, v := range sample {
		shifted[i] = v + 1000
	}
	a, _ := Dip(sample, pureConfig())
	b, _ := Dip(shifted, pureConfig())
	if !almostEqual(a.Statistic, b.Statistic, 1e-9) {
		t.Errorf("shifted statistic %v, original %v", b.Statistic, a.Statistic)
	}
}

func TestEdgeCase_InfiniteValuesDoNotPanic(t *testing.T) {
	sample := []float64{math.Inf(-1), 0, 1, 2, 3, math.Inf(1)}
	if _, err := Dip(sample, pureConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEdgeCase_FourPointsMinimum(t *testing.T) {
	res, err := Dip([]float64{1, 2, 3, 4}, pureConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(res.Statistic, 0.125, floatTol) {
		t.Errorf("statistic = %v, want 0.125", res.Statistic)
	}
	_, p, err := Test(context.Background(), []float64{1, 2, 3, 4}, pureConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != 1 {
		t.Errorf("p = %v, want 1 for n=4", p)
	}
}
