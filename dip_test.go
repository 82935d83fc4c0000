package diptest

import (
	"bytes"
	"log/slog"
	"math"
	"slices"
	"strings"
	"testing"
)

func TestMinorantChase(t *testing.T) {
	x := []float64{0, 0, 1, 1}
	if got, want := minorantChase(x), []int{0, 0, 0, 2}; !slices.Equal(got, want) {
		t.Errorf("minorantChase = %v, want %v", got, want)
	}
	if got, want := majorantChase(x), []int{1, 3, 3, 3}; !slices.Equal(got, want) {
		t.Errorf("majorantChase = %v, want %v", got, want)
	}
}

func TestMinorantChase_Collinear(t *testing.T) {
	// Collinear points all chase back to the first point and forward to
	// the last one.
	x := evenlySpaced(6)
	mn := minorantChase(x)
	mj := majorantChase(x)
	for j := 1; j < len(x); j++ {
		if mn[j] != 0 {
			t.Errorf("mn[%d] = %d, want 0", j, mn[j])
		}
	}
	for k := 0; k < len(x)-1; k++ {
		if mj[k] != len(x)-1 {
			t.Errorf("mj[%d] = %d, want %d", k, mj[k], len(x)-1)
		}
	}
}

func TestPureDip_TwoPointMasses(t *testing.T) {
	res := pureDip([]float64{0, 0, 1, 1}, pureConfig())

	if !almostEqual(res.Statistic, 0.25, floatTol) {
		t.Errorf("statistic = %v, want 0.25", res.Statistic)
	}
	want := Interval{Low: 2, High: 3, BestLow: 2, BestHigh: 3}
	if res.Interval != want {
		t.Errorf("interval = %+v, want %+v", res.Interval, want)
	}
	if res.ModalTriangle != [3]int{0, 1, 2} {
		t.Errorf("modal triangle = %v, want [0 1 2]", res.ModalTriangle)
	}
}

func TestPureDip_EvenlySpaced(t *testing.T) {
	for _, n := range []int{4, 5, 10, 100, 1000} {
		res := pureDip(evenlySpaced(n), pureConfig())
		want := 1 / float64(2*n)
		if !almostEqual(res.Statistic, want, floatTol) {
			t.Errorf("n=%d: statistic = %v, want %v", n, res.Statistic, want)
		}
		// The hulls coincide on the first iteration, so nothing is recorded
		// beyond the full interval.
		if res.Interval.Low != 0 || res.Interval.High != n-1 {
			t.Errorf("n=%d: interval = [%d, %d], want [0, %d]", n, res.Interval.Low, res.Interval.High, n-1)
		}
		if res.Interval.BestLow != -1 || res.Interval.BestHigh != -1 {
			t.Errorf("n=%d: best interval = [%d, %d], want [-1, -1]", n, res.Interval.BestLow, res.Interval.BestHigh)
		}
		if res.ModalTriangle != [3]int{-1, -1, -1} {
			t.Errorf("n=%d: modal triangle = %v, want all -1", n, res.ModalTriangle)
		}
	}
}

func TestPureDip_LoopInvariant(t *testing.T) {
	samples := map[string][]float64{
		"normal":       normalSample(400, 0, 1, 41),
		"bimodal":      bimodalSample(400, 2, 42),
		"trimodal":     append(bimodalSample(300, 4, 43), normalSample(150, 0, 0.5, 44)...),
		"point masses": {0, 0, 0, 1, 1, 2, 2, 2, 2, 3, 5, 5, 5, 8},
		"heavy ties":   roundedSample(bimodalSample(500, 1.5, 45), 0.25),
	}

	for name, sample := range samples {
		t.Run(name, func(t *testing.T) {
			x := slices.Sorted(slices.Values(sample))
			s := newDipState(x)
			s.record = true
			s.run()

			if len(s.trace) == 0 {
				t.Fatal("no iterations recorded")
			}
			if len(s.trace) > len(x) {
				t.Errorf("%d iterations for %d points", len(s.trace), len(x))
			}
			prev := dipIteration{Low: 0, High: len(x) - 1, Dip: 1}
			for i, it := range s.trace {
				if it.Dip < prev.Dip {
					t.Errorf("iteration %d: dip decreased %v -> %v", i, prev.Dip, it.Dip)
				}
				if it.Low < prev.Low || it.High > prev.High {
					t.Errorf("iteration %d: interval expanded [%d, %d] -> [%d, %d]",
						i, prev.Low, prev.High, it.Low, it.High)
				}
				if it.Low > it.High {
					t.Errorf("iteration %d: low %d > high %d", i, it.Low, it.High)
				}
				prev = it
			}

			res := s.result()
			last := s.trace[len(s.trace)-1]
			if !almostEqual(res.Statistic, last.Dip/float64(2*len(x)), floatTol) {
				t.Errorf("statistic %v does not match last recorded dip %v", res.Statistic, last.Dip)
			}
		})
	}
}

func TestPureDip_LastAndBestInterval(t *testing.T) {
	// The last interval is nested in the one that produced the statistic:
	// once the best bounds are recorded the loop only shrinks from them.
	samples := [][]float64{
		bimodalSample(250, 2, 51),
		bimodalSample(250, 0.5, 52),
		roundedSample(normalSample(300, 0, 1, 53), 0.5),
		{0, 0, 1, 1, 1, 2, 3, 3, 3, 3, 4, 6, 6, 9, 9, 9},
	}
	for i, sample := range samples {
		x := slices.Sorted(slices.Values(sample))
		res := pureDip(x, pureConfig())
		iv := res.Interval
		if iv.BestLow < 0 {
			continue
		}
		if iv.BestLow > iv.BestHigh {
			t.Errorf("sample %d: best interval [%d, %d] is empty", i, iv.BestLow, iv.BestHigh)
		}
		if iv.Low < iv.BestLow || iv.High > iv.BestHigh {
			t.Errorf("sample %d: last interval [%d, %d] not inside best [%d, %d]",
				i, iv.Low, iv.High, iv.BestLow, iv.BestHigh)
		}
	}
}

func TestPureDip_LastIntervalDivergesFromBest(t *testing.T) {
	// The first iteration finds the dip on [0, 3]. The second one still has
	// a wide enough gap to shrink to [0, 2] but finds no larger deviation,
	// so the last interval ends up strictly inside the best one.
	res := pureDip([]float64{0, 0, 0, 1, 4, 5}, pureConfig())

	if !almostEqual(res.Statistic, 0.125, floatTol) {
		t.Errorf("statistic = %v, want 0.125", res.Statistic)
	}
	want := Interval{Low: 0, High: 2, BestLow: 0, BestHigh: 3}
	if res.Interval != want {
		t.Errorf("interval = %+v, want %+v", res.Interval, want)
	}
	if res.ModalTriangle != [3]int{3, 4, 5} {
		t.Errorf("modal triangle = %v, want [3 4 5]", res.ModalTriangle)
	}

	s := newDipState([]float64{0, 0, 0, 1, 4, 5})
	s.record = true
	s.run()
	if len(s.trace) != 3 {
		t.Fatalf("%d iterations, want 3", len(s.trace))
	}
	if s.trace[1].Dip != s.trace[0].Dip {
		t.Errorf("second iteration changed the dip: %v -> %v", s.trace[0].Dip, s.trace[1].Dip)
	}
}

func TestPureDip_ModalTriangleOrdered(t *testing.T) {
	for seed := uint64(60); seed < 70; seed++ {
		x := slices.Sorted(slices.Values(bimodalSample(200, 2.5, seed)))
		res := pureDip(x, pureConfig())
		tri := res.ModalTriangle
		if tri[1] < 0 {
			continue
		}
		if !(tri[0] <= tri[1] && tri[1] <= tri[2]) {
			t.Errorf("seed %d: modal triangle %v not ordered", seed, tri)
		}
		if tri[0] < 0 || tri[2] >= len(x) {
			t.Errorf("seed %d: modal triangle %v out of range", seed, tri)
		}
	}
}

func TestPureDip_DebugLogging(t *testing.T) {
	var buf bytes.Buffer
	cfg := pureConfig()
	cfg.Debug = true
	cfg.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if _, err := Dip(bimodalSample(100, 3, 71), cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "dip iteration") {
		t.Fatalf("expected iteration records, got %q", out)
	}
	for _, key := range []string{"low=", "high=", "d=", "dip="} {
		if !strings.Contains(out, key) {
			t.Errorf("iteration record missing %q: %q", key, out)
		}
	}

	buf.Reset()
	cfg.Debug = false
	if _, err := Dip(bimodalSample(100, 3, 71), cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(buf.String(), "dip iteration") {
		t.Error("iteration records logged with Debug off")
	}
}

// roundedSample rounds every value to a multiple of step.
func roundedSample(sample []float64, step float64) []float64 {
	out := make([]float64, len(sample))
	for i, v := range sample {
		out[i] = step * math.Round(v/step)
	}
	return out
}
