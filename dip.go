package diptest

import "log/slog"

// dipPhase is a state of the pure dip loop. One outer iteration runs
// BuildHulls, WalkHulls, SearchModalTriangle and CheckTermination in turn;
// the loop stops early after WalkHulls when the walk found no larger
// discrepancy than the best statistic so far.
type dipPhase int

const (
	phaseBuildHulls dipPhase = iota
	phaseWalkHulls
	phaseSearchModalTriangle
	phaseCheckTermination
	phaseDone
)

// dipIteration records the state at the end of one outer iteration.
type dipIteration struct {
	Low, High int     // interval the hulls were fitted on
	D         float64 // largest hull discrepancy found by the walk
	Dip       float64 // best statistic so far, in counts (not divided by 2n)
}

// dipState holds the cursors of the pure dip loop over a sorted sample.
//
// Loop invariant: across outer iterations dip never decreases and
// [low, high] never expands (low is non-decreasing, high non-increasing).
// The loop ends as soon as an iteration cannot improve dip or cannot
// shrink the interval, so it runs at most n iterations.
type dipState struct {
	x []float64

	// mn[j] and mj[k] are the left and right chase indices of the convex
	// minorant and concave majorant over the whole sample.
	mn []int
	mj []int

	// gcm runs from high down to low, lcm from low up to high.
	gcm  []int
	lcm  []int
	lGCM int
	lLCM int

	// ix and iv walk gcm and lcm towards each other; ig and ih mark the
	// hull positions of the largest discrepancy.
	ix, iv int
	ig, ih int

	low, high int
	d         float64

	dip      float64
	bestLow  int
	bestHigh int
	triangle [3]int

	record bool
	trace  []dipIteration
	logger *slog.Logger
	debug  bool
}

// pureDip computes the dip of a sorted sample with at least 4 points and
// 2 distinct values. The statistic starts at one count, so it is never
// below 1/(2n): a single point always deviates from its hull segment by
// that much.
func pureDip(x []float64, cfg Config) *Result {
	s := newDipState(x)
	s.logger, s.debug = cfg.Logger, cfg.Debug
	s.run()
	return s.result()
}

func newDipState(x []float64) *dipState {
	n := len(x)
	return &dipState{
		x:        x,
		mn:       minorantChase(x),
		mj:       majorantChase(x),
		gcm:      make([]int, n),
		lcm:      make([]int, n),
		low:      0,
		high:     n - 1,
		dip:      1,
		bestLow:  -1,
		bestHigh: -1,
		triangle: [3]int{-1, -1, -1},
	}
}

// minorantChase returns, for every j, the previous point of the greatest
// convex minorant of x[0..j]. Each index is visited an amortized constant
// number of times.
func minorantChase(x []float64) []int {
	n := len(x)
	mn := make([]int, n)
	for j := 1; j < n; j++ {
		mn[j] = j - 1
		for {
			mnj := mn[j]
			mnmnj := mn[mnj]
			if mnj == 0 || (x[j]-x[mnj])*float64(mnj-mnmnj) < (x[mnj]-x[mnmnj])*float64(j-mnj) {
				break
			}
			mn[j] = mnmnj
		}
	}
	return mn
}

// majorantChase returns, for every k, the next point of the least concave
// majorant of x[k..n-1].
func majorantChase(x []float64) []int {
	n := len(x)
	mj := make([]int, n)
	mj[n-1] = n - 1
	for k := n - 2; k >= 0; k-- {
		mj[k] = k + 1
		for {
			mjk := mj[k]
			mjmjk := mj[mjk]
			if mjk == n-1 || (x[k]-x[mjk])*float64(mjk-mjmjk) < (x[mjk]-x[mjmjk])*float64(k-mjk) {
				break
			}
			mj[k] = mjmjk
		}
	}
	return mj
}

func (s *dipState) run() {
	for phase := phaseBuildHulls; phase != phaseDone; {
		switch phase {
		case phaseBuildHulls:
			s.buildHulls()
			phase = phaseWalkHulls
		case phaseWalkHulls:
			s.walkHulls()
			if s.d < s.dip {
				s.observe()
				phase = phaseDone
			} else {
				phase = phaseSearchModalTriangle
			}
		case phaseSearchModalTriangle:
			s.searchModalTriangle()
			s.observe()
			phase = phaseCheckTermination
		case phaseCheckTermination:
			if s.shrink() {
				phase = phaseBuildHulls
			} else {
				phase = phaseDone
			}
		}
	}
}

// buildHulls follows the chase indices from high down to low for the GCM
// and from low up to high for the LCM.
func (s *dipState) buildHulls() {
	s.gcm[0] = s.high
	i := 0
	for s.gcm[i] > s.low {
		s.gcm[i+1] = s.mn[s.gcm[i]]
		i++
	}
	s.lGCM = i
	s.ig = i
	s.ix = i - 1

	s.lcm[0] = s.low
	i = 0
	for s.lcm[i] < s.high {
		s.lcm[i+1] = s.mj[s.lcm[i]]
		i++
	}
	s.lLCM = i
	s.ih = i
	s.iv = 1
}

// walkHulls moves ix and iv towards each other until both hulls meet,
// keeping the largest vertical discrepancy in d. Equal discrepancies move
// (ig, ih) to the later pair, which keeps the native routine's bookkeeping.
func (s *dipState) walkHulls() {
	s.d = 0
	if s.lGCM == 0 || s.lLCM == 0 || (s.lGCM == 1 && s.lLCM == 1) {
		return
	}
	x, gcm, lcm := s.x, s.gcm, s.lcm
	for {
		gcmix := gcm[s.ix]
		lcmiv := lcm[s.iv]
		if gcmix > lcmiv {
			// L-step: the next touching point comes from the LCM.
			gcmil := gcm[s.ix+1]
			dx := float64(lcmiv-gcmil+1) - (x[lcmiv]-x[gcmil])*float64(gcmix-gcmil)/(x[gcmix]-x[gcmil])
			s.iv++
			// Ties go to the later pair, as in the compiled routine (dx >= d).
			if dx >= s.d {
				s.d = dx
				s.ig = s.ix + 1
				s.ih = s.iv - 1
			}
		} else {
			// G-step: the next touching point comes from the GCM.
			lcmivl := lcm[s.iv-1]
			dx := (x[gcmix]-x[lcmivl])*float64(lcmiv-lcmivl)/(x[lcmiv]-x[lcmivl]) - float64(gcmix-lcmivl-1)
			s.ix--
			// Same tie rule as the L-step.
			if dx >= s.d {
				s.d = dx
				s.ig = s.ix + 1
				s.ih = s.iv
			}
		}
		s.ix = max(s.ix, 0)
		s.iv = min(s.iv, s.lLCM)
		if gcm[s.ix] == lcm[s.iv] {
			return
		}
	}
}

// searchModalTriangle scans the hull segments between the discrepancy
// bounds for the point deviating most from its segment, on the GCM side
// (dipL) and the LCM side (dipU), and keeps the larger one when it beats
// the best statistic.
func (s *dipState) searchModalTriangle() {
	x := s.x

	dipL, jL := 0.0, -1
	gcmI1, gcmI3 := -1, -1
	for j := s.ig; j < s.lGCM; j++ {
		jb, je := s.gcm[j+1], s.gcm[j]
		maxT, arg := 1.0, -1
		if je-jb > 1 && x[je] != x[jb] {
			c := float64(je-jb) / (x[je] - x[jb])
			for jj := jb; jj <= je; jj++ {
				t := float64(jj-jb+1) - (x[jj]-x[jb])*c
				if maxT < t {
					maxT, arg = t, jj
				}
			}
		}
		if dipL < maxT {
			dipL, jL = maxT, arg
			gcmI1, gcmI3 = jb, je
		}
	}

	dipU, jU := 0.0, -1
	lcmI1, lcmI3 := -1, -1
	for j := s.ih; j < s.lLCM; j++ {
		jb, je := s.lcm[j], s.lcm[j+1]
		maxT, arg := 1.0, -1
		if je-jb > 1 && x[je] != x[jb] {
			c := float64(je-jb) / (x[je] - x[jb])
			for jj := jb; jj <= je; jj++ {
				t := (x[jj]-x[jb])*c - float64(jj-jb-1)
				if maxT < t {
					maxT, arg = t, jj
				}
			}
		}
		if dipU < maxT {
			dipU, jU = maxT, arg
			lcmI1, lcmI3 = jb, je
		}
	}

	dipNew, triangle := dipL, [3]int{gcmI1, jL, gcmI3}
	if dipU > dipL {
		dipNew, triangle = dipU, [3]int{lcmI1, jU, lcmI3}
	}
	if s.dip < dipNew {
		s.dip = dipNew
		s.bestLow = s.gcm[s.ig]
		s.bestHigh = s.lcm[s.ih]
		s.triangle = triangle
	}
}

// shrink moves [low, high] to the bounds of the largest discrepancy. It
// reports false when the bounds did not move.
func (s *dipState) shrink() bool {
	low, high := s.gcm[s.ig], s.lcm[s.ih]
	if low == s.low && high == s.high {
		return false
	}
	s.low, s.high = low, high
	return true
}

func (s *dipState) observe() {
	it := dipIteration{Low: s.low, High: s.high, D: s.d, Dip: s.dip}
	if s.record {
		s.trace = append(s.trace, it)
	}
	if s.debug && s.logger != nil {
		s.logger.Debug("dip iteration",
			"low", it.Low, "high", it.High,
			"gcm_len", s.lGCM, "lcm_len", s.lLCM,
			"d", it.D, "dip", it.Dip)
	}
}

func (s *dipState) result() *Result {
	return &Result{
		Statistic: s.dip / float64(2*len(s.x)),
		Interval: Interval{
			Low:      s.low,
			High:     s.high,
			BestLow:  s.bestLow,
			BestHigh: s.bestHigh,
		},
		ModalTriangle: s.triangle,
	}
}
