package diptest

import "gonum.org/v1/gonum/floats"

// GreatestConvexMinorant returns the greatest convex minorant of the points
// (xs[i], ys[i]) evaluated at every xs[i], together with the ascending
// indices where the minorant touches ys at a change of slope. xs must be
// strictly increasing; the spacing is arbitrary. The first and last index
// are always touch points.
func GreatestConvexMinorant(xs, ys []float64) (hull []float64, touch []int) {
	n := len(ys)
	if n == 0 {
		return nil, nil
	}
	hull = make([]float64, 1, n)
	hull[0] = ys[0]
	touch = []int{0}
	for off := 0; off < n-1; {
		x0, y0 := xs[off], ys[off]

		// Smallest slope from the current touch point. Slopes are compared
		// cross-multiplied and ties move to the farthest point, so collinear
		// points are not touch points.
		next := off + 1
		for k := next + 1; k < n; k++ {
			if (ys[k]-y0)*(xs[next]-x0) <= (ys[next]-y0)*(xs[k]-x0) {
				next = k
			}
		}
		slope := (ys[next] - y0) / (xs[next] - x0)

		for k := off + 1; k <= next; k++ {
			hull = append(hull, y0+(xs[k]-x0)*slope)
		}
		touch = append(touch, next)
		off = next
	}
	return hull, touch
}

// LeastConcaveMajorant returns the least concave majorant of the points
// (xs[i], ys[i]) evaluated at every xs[i], together with its ascending touch
// indices. It reflects the problem in both axes and reuses
// GreatestConvexMinorant.
func LeastConcaveMajorant(xs, ys []float64) (hull []float64, touch []int) {
	n := len(ys)
	if n == 0 {
		return nil, nil
	}
	xMax := floats.Max(xs)
	rx := make([]float64, n)
	ry := make([]float64, n)
	for i := range n {
		rx[i] = xMax - xs[n-1-i]
		ry[i] = 1 - ys[n-1-i]
	}

	g, t := GreatestConvexMinorant(rx, ry)

	hull = make([]float64, n)
	for i := range n {
		hull[i] = 1 - g[n-1-i]
	}
	touch = make([]int, len(t))
	for i := range t {
		touch[i] = n - 1 - t[len(t)-1-i]
	}
	return hull, touch
}
