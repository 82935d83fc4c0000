package diptest

import (
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

// fastDipPrecision is the number of decimals sample values are rounded to
// before distinct values are collected. Differences below it come from
// floating-point noise and would otherwise produce spurious distinct values.
const fastDipPrecision = 15

// FastResult is the output of FastDip. Interval is not computed by the fast
// variant and stays at -1.
type FastResult struct {
	*Result

	// Values holds the distinct (rounded) sample values in ascending order.
	Values []float64

	// CDF is the empirical distribution function at Values.
	CDF []float64

	// Left is the convex minorant of the left limits of CDF retained below
	// the modal interval, one value per entry of Values from the first up to
	// the interval's lower end. It starts at 0.
	Left []float64

	// Right is the concave majorant of CDF retained above the modal
	// interval, from the interval's upper end to the last entry of Values.
	// It ends at 1.
	Right []float64
}

// FastDip computes the dip statistic from the distinct values of sample and
// their multiplicities. Samples with at most 4 distinct values have
// statistic 0. On any other sample it agrees with Dip up to rounding, and it
// is faster when the sample has few distinct values.
func FastDip(sample []float64, sorted bool) (*FastResult, error) {
	x, err := prepareSample(sample, sorted)
	if err != nil {
		return nil, err
	}
	return fastDip(x), nil
}

// distinctCounts rounds a sorted sample and returns its distinct values with
// their counts. Rounding is monotone, so the output stays sorted.
func distinctCounts(x []float64) (values []float64, counts []int) {
	for _, v := range x {
		v = scalar.Round(v, fastDipPrecision)
		if k := len(values); k > 0 && values[k-1] == v {
			counts[k-1]++
			continue
		}
		values = append(values, v)
		counts = append(counts, 1)
	}
	return values, counts
}

// histogram is a sorted sample reduced to its distinct values. Heights are
// in sample counts: the empirical CDF jumps from below[g] to upto[g] at
// values[g], so below[g] is the sample index of the first point equal to
// values[g] and upto[g]-1 the index of the last one.
type histogram struct {
	values []float64
	counts []int
	below  []float64
	upto   []float64
}

func newHistogram(values []float64, counts []int) *histogram {
	k := len(values)
	h := &histogram{
		values: values,
		counts: counts,
		below:  make([]float64, k),
		upto:   make([]float64, k),
	}
	mass := make([]float64, k)
	total := 0
	for g, c := range counts {
		total += c
		h.upto[g] = float64(total)
		mass[g] = float64(c)
	}
	floats.SubTo(h.below, h.upto, mass)
	return h
}

// fastState holds the working range [lo, hi] of distinct-value indices and
// the best deviation found so far, in counts.
type fastState struct {
	h        *histogram
	lo, hi   int
	dip      float64
	triangle [3]int

	left  []float64
	right []float64
}

// fastDip computes the dip of a sorted sample on its compressed form. The
// loop follows the pure routine: fit the minorant of the left limits and
// the majorant of the CDF over the working range, shrink the range to the
// widest gap between them and keep the largest deviation of the hull
// pieces left behind.
func fastDip(x []float64) *FastResult {
	values, counts := distinctCounts(x)
	k := len(values)
	if k <= 4 {
		return &FastResult{
			Result: emptyResult(),
			Values: values,
			Left:   []float64{},
			Right:  []float64{1},
		}
	}

	h := newHistogram(values, counts)
	s := &fastState{
		h:        h,
		lo:       0,
		hi:       k - 1,
		dip:      1,
		triangle: [3]int{-1, -1, -1},
		left:     []float64{h.below[0]},
		right:    []float64{h.upto[k-1]},
	}
	for s.step() {
	}

	n := float64(len(x))
	return &FastResult{
		Result: &Result{
			Statistic:     s.dip / (2 * n),
			Interval:      Interval{Low: -1, High: -1, BestLow: -1, BestHigh: -1},
			ModalTriangle: s.triangle,
		},
		Values: values,
		CDF:    perSample(slices.Clone(h.upto), n),
		Left:   perSample(s.left, n),
		Right:  perSample(s.right, n),
	}
}

func perSample(v []float64, n float64) []float64 {
	for i := range v {
		v[i] /= n
	}
	return v
}

// step runs one outer iteration and reports whether the working range
// shrank, in which case another iteration is due.
func (s *fastState) step() bool {
	h := s.h
	m := s.hi - s.lo + 1
	xs := h.values[s.lo : s.hi+1]
	gcm, gTouch := GreatestConvexMinorant(xs, h.below[s.lo:s.hi+1])
	lcm, lTouch := LeastConcaveMajorant(xs, h.upto[s.lo:s.hi+1])

	d, xl, xr := s.widestGap(gTouch, lTouch)
	if d < s.dip {
		return false
	}

	dipL, triL := s.minorantDeviation(gTouch, xl)
	dipU, triU := s.majorantDeviation(lTouch, xr)
	dipNew, triangle := dipL, triL
	if dipU > dipL {
		dipNew, triangle = dipU, triU
	}
	if s.dip < dipNew {
		s.dip = dipNew
		s.triangle = triangle
	}

	if xl == 0 && xr == m-1 {
		return false
	}
	s.left = append(s.left, gcm[1:xl+1]...)
	s.right = append(slices.Clone(lcm[xr:m-1]), s.right...)
	s.hi = s.lo + xr
	s.lo += xl
	return true
}

// widestGap returns the largest vertical distance between the hulls over
// their touch points, visited in ascending order with a minorant touch
// before a majorant touch at the same value; later touches win ties. The
// lower end of the range sits on both hulls and only counts as a majorant
// touch when its value is repeated, and likewise for the upper end as a
// minorant touch. The gap also fixes the new range [xl, xr]: the touch
// itself and the nearest touch of the other hull towards the middle.
func (s *fastState) widestGap(gTouch, lTouch []int) (d float64, xl, xr int) {
	m := s.hi - s.lo + 1
	repeatedLo := s.h.counts[s.lo] > 1
	repeatedHi := s.h.counts[s.hi] > 1

	xl, xr = 0, m-1
	// i and j index the next touch of each hull not yet visited.
	i, j := 0, 0
	for g := range m {
		if i < len(gTouch) && gTouch[i] == g {
			i++
			if g > 0 && (g < m-1 || repeatedHi) {
				if gap := s.minorantGap(g, lTouch[j-1], lTouch[j]); gap >= d {
					d, xl, xr = gap, g, lTouch[j]
				}
			}
		}
		if j < len(lTouch) && lTouch[j] == g {
			j++
			if g < m-1 && (g > 0 || repeatedLo) {
				if gap := s.majorantGap(g, gTouch[i-1], gTouch[i]); gap >= d {
					d, xl, xr = gap, gTouch[i-1], g
				}
			}
		}
	}
	return d, xl, xr
}

// minorantGap is the height of the majorant segment [a, b] above the left
// limit of the CDF at minorant touch g. Indices are relative to lo.
func (s *fastState) minorantGap(g, a, b int) float64 {
	h, lo := s.h, s.lo
	ja, jb := h.upto[lo+a]-1, h.upto[lo+b]-1
	return (h.values[lo+g]-h.values[lo+a])*(jb-ja)/(h.values[lo+b]-h.values[lo+a]) - (h.below[lo+g] - ja - 1)
}

// majorantGap is the height of the CDF at majorant touch g above the
// minorant segment [a, b].
func (s *fastState) majorantGap(g, a, b int) float64 {
	h, lo := s.h, s.lo
	ja, jb := h.below[lo+a], h.below[lo+b]
	return h.upto[lo+g] - ja - (h.values[lo+g]-h.values[lo+a])*(jb-ja)/(h.values[lo+b]-h.values[lo+a])
}

// minorantDeviation scans the minorant segments between the lower end of
// the range and xl, nearest to xl first, for the point where the CDF rises
// furthest above its segment. A segment's right end only counts its first
// point; the rest of its value belongs to the next segment or the modal
// range.
func (s *fastState) minorantDeviation(gTouch []int, xl int) (float64, [3]int) {
	h := s.h
	dip, triangle := 0.0, [3]int{-1, -1, -1}
	for p := slices.Index(gTouch, xl); p > 0; p-- {
		a, b := s.lo+gTouch[p-1], s.lo+gTouch[p]
		jb, je := h.below[a], h.below[b]

		maxT, arg := 1.0, -1
		if je-jb > 1 {
			c := (je - jb) / (h.values[b] - h.values[a])
			for q := a; q < b; q++ {
				if t := h.upto[q] - jb - (h.values[q]-h.values[a])*c; maxT < t {
					maxT, arg = t, int(h.upto[q])-1
				}
			}
			if t := je - jb + 1 - (h.values[b]-h.values[a])*c; maxT < t {
				maxT, arg = t, int(je)
			}
		}
		if dip < maxT {
			dip = maxT
			triangle = [3]int{int(jb), arg, int(je)}
		}
	}
	return dip, triangle
}

// majorantDeviation scans the majorant segments between xr and the upper
// end of the range, nearest to xr first, for the point where the left
// limit of the CDF falls furthest below its segment. A segment's left end
// only counts its last point.
func (s *fastState) majorantDeviation(lTouch []int, xr int) (float64, [3]int) {
	h := s.h
	dip, triangle := 0.0, [3]int{-1, -1, -1}
	for p := slices.Index(lTouch, xr); p+1 < len(lTouch); p++ {
		a, b := s.lo+lTouch[p], s.lo+lTouch[p+1]
		jb, je := h.upto[a]-1, h.upto[b]-1

		maxT, arg := 1.0, -1
		if je-jb > 1 {
			c := (je - jb) / (h.values[b] - h.values[a])
			for q := a + 1; q <= b; q++ {
				if t := (h.values[q]-h.values[a])*c - (h.below[q] - jb - 1); maxT < t {
					maxT, arg = t, int(h.below[q])
				}
			}
		}
		if dip < maxT {
			dip = maxT
			triangle = [3]int{int(jb), arg, int(je)}
		}
	}
	return dip, triangle
}
