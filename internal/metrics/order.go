// Package metrics computes the standard order parameters used to classify
// swarmalator regimes: phase coherence, the spatial-phase correlations, and
// bulk geometry of the ensemble.
package metrics

import "math"

// Coherence returns the Kuramoto order parameter r = |<e^{i theta}>|.
// 1 means full synchrony, 0 a uniform phase spread.
func Coherence(phases []float64) float64 {
	if len(phases) == 0 {
		return 0
	}
	var re, im float64
	for _, th := range phases {
		re += math.Cos(th)
		im += math.Sin(th)
	}
	n := float64(len(phases))
	return math.Hypot(re/n, im/n)
}

// SpatialPhaseOrder returns the S+ and S- correlations between each agent's
// polar angle about the centroid and its phase. Large values flag the phase
// wave states, where phase winds around the ring with (or against) angle.
func SpatialPhaseOrder(positions, phases []float64) (sPlus, sMinus float64) {
	n := len(phases)
	if n == 0 || len(positions) != 2*n {
		return 0, 0
	}

	cx, cy := centroid(positions)

	var pRe, pIm, mRe, mIm float64
	for i := 0; i < n; i++ {
		angle := math.Atan2(positions[i*2+1]-cy, positions[i*2]-cx)
		pRe += math.Cos(angle + phases[i])
		pIm += math.Sin(angle + phases[i])
		mRe += math.Cos(angle - phases[i])
		mIm += math.Sin(angle - phases[i])
	}

	fn := float64(n)
	return math.Hypot(pRe/fn, pIm/fn), math.Hypot(mRe/fn, mIm/fn)
}

// MeanSpeed returns the average speed over interleaved velocities.
func MeanSpeed(velocities []float64) float64 {
	n := len(velocities) / 2
	if n == 0 {
		return 0
	}
	total := 0.0
	for i := 0; i < n; i++ {
		total += math.Hypot(velocities[i*2], velocities[i*2+1])
	}
	return total / float64(n)
}

// Radius returns the RMS distance of agents from their centroid.
func Radius(positions []float64) float64 {
	n := len(positions) / 2
	if n == 0 {
		return 0
	}

	cx, cy := centroid(positions)

	sum := 0.0
	for i := 0; i < n; i++ {
		dx := positions[i*2] - cx
		dy := positions[i*2+1] - cy
		sum += dx*dx + dy*dy
	}
	return math.Sqrt(sum / float64(n))
}

func centroid(positions []float64) (cx, cy float64) {
	n := len(positions) / 2
	for i := 0; i < n; i++ {
		cx += positions[i*2]
		cy += positions[i*2+1]
	}
	return cx / float64(n), cy / float64(n)
}
