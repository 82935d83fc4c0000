package diptest

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func TestDistinctCounts(t *testing.T) {
	x := []float64{0.1 + 0.2, 0.3, 0.3, 0.5, 1, 1, 1}
	values, counts := distinctCounts(x)
	if want := []float64{0.3, 0.5, 1}; !slices.Equal(values, want) {
		t.Errorf("values = %v, want %v", values, want)
	}
	if want := []int{3, 1, 3}; !slices.Equal(counts, want) {
		t.Errorf("counts = %v, want %v", counts, want)
	}
}

func TestFastDip_AgreesWithPure(t *testing.T) {
	samples := map[string][]float64{
		"normal 50":       normalSample(50, 0, 1, 91),
		"normal 500":      normalSample(500, 3, 2, 92),
		"bimodal 300":     bimodalSample(300, 2, 93),
		"bimodal 1000":    bimodalSample(1000, 1, 94),
		"rounded 0.5":     roundedSample(normalSample(400, 0, 2, 95), 0.5),
		"rounded bimodal": roundedSample(bimodalSample(600, 3, 96), 0.25),
		"small":           {1, 2, 2, 3, 7, 8, 8, 9},
		"repeated mode":   {0, 1, 1, 2, 2, 3, 3, 3, 3, 4, 4, 4},
		"rounded 1":       roundedSample(normalSample(300, 0, 3, 98), 1),
	}
	for name, sample := range samples {
		t.Run(name, func(t *testing.T) {
			pure, err := Dip(sample, pureConfig())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			fast, err := FastDip(sample, false)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !almostEqual(fast.Statistic, pure.Statistic, 1e-9) {
				t.Errorf("fast %v, pure %v", fast.Statistic, pure.Statistic)
			}
		})
	}
}

// integerSample draws n integers below width, shifting about half of them
// by 2*width when bimodal is set.
func integerSample(r *rand.Rand, n, width int, bimodal bool) []float64 {
	out := make([]float64, n)
	for i := range out {
		v := r.IntN(width)
		if bimodal && r.IntN(2) == 0 {
			v += 2 * width
		}
		out[i] = float64(v)
	}
	return out
}

func TestFastDip_AgreesWithPureOnIntegerSamples(t *testing.T) {
	r := rand.New(rand.NewPCG(2024, 1))
	checked := 0
	for trial := range 500 {
		n := 5 + r.IntN(200)
		width := 5 + r.IntN(30)
		sample := integerSample(r, n, width, trial%2 == 1)
		if values, _ := distinctCounts(slices.Sorted(slices.Values(sample))); len(values) <= 4 {
			continue
		}
		checked++

		pure, err := Dip(sample, pureConfig())
		if err != nil {
			t.Fatalf("trial %d: unexpected error: %v", trial, err)
		}
		fast, err := FastDip(sample, false)
		if err != nil {
			t.Fatalf("trial %d: unexpected error: %v", trial, err)
		}
		if !almostEqual(fast.Statistic, pure.Statistic, 1e-9) {
			t.Errorf("trial %d (n=%d, width=%d): fast %v, pure %v", trial, n, width, fast.Statistic, pure.Statistic)
		}
	}
	if checked < 400 {
		t.Errorf("only %d of 500 samples had more than 4 distinct values", checked)
	}
}

func TestFastDip_RepeatedMode(t *testing.T) {
	// The jump at the mode (four 3s) belongs to the modal interval. The dip
	// comes from the three 4s above it: 3 counts out of 2n = 24.
	sample := []float64{0, 1, 1, 2, 2, 3, 3, 3, 3, 4, 4, 4}
	fast, err := FastDip(sample, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pure, err := Dip(sample, pureConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !almostEqual(fast.Statistic, 0.125, floatTol) {
		t.Errorf("fast statistic = %v, want 0.125", fast.Statistic)
	}
	if !almostEqual(pure.Statistic, 0.125, floatTol) {
		t.Errorf("pure statistic = %v, want 0.125", pure.Statistic)
	}
	if want := [3]int{8, 9, 11}; fast.ModalTriangle != want || pure.ModalTriangle != want {
		t.Errorf("modal triangle fast %v, pure %v, want %v", fast.ModalTriangle, pure.ModalTriangle, want)
	}

	wantLeft := []float64{0, 1.0 / 12, 3.0 / 12, 5.0 / 12}
	wantRight := []float64{9.0 / 12, 1}
	if !slices.EqualFunc(fast.Left, wantLeft, func(a, b float64) bool { return almostEqual(a, b, floatTol) }) {
		t.Errorf("left = %v, want %v", fast.Left, wantLeft)
	}
	if !slices.EqualFunc(fast.Right, wantRight, func(a, b float64) bool { return almostEqual(a, b, floatTol) }) {
		t.Errorf("right = %v, want %v", fast.Right, wantRight)
	}
}

func TestFastDip_EvenlySpaced(t *testing.T) {
	for _, n := range []int{5, 10, 200} {
		res, err := FastDip(evenlySpaced(n), true)
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}
		if want := 1 / float64(2*n); !almostEqual(res.Statistic, want, floatTol) {
			t.Errorf("n=%d: statistic = %v, want %v", n, res.Statistic, want)
		}
	}
}

func TestFastDip_FewDistinctValues(t *testing.T) {
	// Up to 4 distinct values count as trivially unimodal, whereas the pure
	// routine measures the dip of two point masses.
	sample := []float64{0, 0, 1, 1}
	fast, err := FastDip(sample, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fast.Statistic != 0 {
		t.Errorf("fast statistic = %v, want 0", fast.Statistic)
	}
	if fast.ModalTriangle != [3]int{-1, -1, -1} {
		t.Errorf("modal triangle = %v, want all -1", fast.ModalTriangle)
	}

	pure, err := Dip(sample, pureConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(pure.Statistic, 0.25, floatTol) {
		t.Errorf("pure statistic = %v, want 0.25", pure.Statistic)
	}

	many := []float64{1, 1, 1, 2, 2, 3, 3, 3, 3, 4, 4}
	res, err := FastDip(many, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Statistic != 0 {
		t.Errorf("4 distinct values: statistic = %v, want 0", res.Statistic)
	}
}

func TestFastDip_Detail(t *testing.T) {
	sample := roundedSample(bimodalSample(300, 2.5, 97), 0.1)
	res, err := FastDip(sample, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Values) != len(res.CDF) {
		t.Fatalf("%d values but %d CDF entries", len(res.Values), len(res.CDF))
	}
	for i := 1; i < len(res.Values); i++ {
		if res.Values[i] <= res.Values[i-1] {
			t.Fatalf("values not strictly increasing at %d", i)
		}
		if res.CDF[i] <= res.CDF[i-1] {
			t.Fatalf("CDF not strictly increasing at %d", i)
		}
	}
	if !almostEqual(res.CDF[len(res.CDF)-1], 1, floatTol) {
		t.Errorf("CDF ends at %v, want 1", res.CDF[len(res.CDF)-1])
	}
	if len(res.Left) == 0 || res.Left[0] != 0 {
		t.Errorf("left boundary %v must start at 0", res.Left)
	}
	if len(res.Right) == 0 || res.Right[len(res.Right)-1] != 1 {
		t.Errorf("right boundary %v must end at 1", res.Right)
	}
	if res.Interval != (Interval{Low: -1, High: -1, BestLow: -1, BestHigh: -1}) {
		t.Errorf("fast interval = %+v, want all -1", res.Interval)
	}
}

func TestFastDip_ModalTriangle(t *testing.T) {
	for seed := uint64(100); seed < 110; seed++ {
		sample := roundedSample(bimodalSample(400, 2, seed), 0.2)
		res, err := FastDip(sample, false)
		if err != nil {
			t.Fatalf("seed %d: unexpected error: %v", seed, err)
		}
		tri := res.ModalTriangle
		for _, i := range tri {
			if i < -1 || i >= len(sample) {
				t.Errorf("seed %d: modal triangle %v out of range", seed, tri)
			}
		}
		if tri[1] < 0 {
			continue
		}
		if tri[0] > tri[1] || tri[1] > tri[2] {
			t.Errorf("seed %d: modal triangle %v not ordered", seed, tri)
		}
	}
}

func TestDip_FastBackendMatchesFastDip(t *testing.T) {
	sample := bimodalSample(200, 2, 111)
	cfg := DefaultConfig()
	cfg.Backend = BackendFast
	res, err := Dip(sample, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fast, err := FastDip(sample, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *res != *fast.Result {
		t.Errorf("Dip with fast backend = %+v, FastDip = %+v", *res, *fast.Result)
	}
}
