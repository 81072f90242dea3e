// Package analysis reduces stored order-parameter series to summaries and a
// coarse regime classification.
package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary condenses one time series.
type Summary struct {
	Mean  float64
	Std   float64
	Min   float64
	Max   float64
	Final float64
}

// Summarize computes the summary of a series. The empty series is all zeros.
func Summarize(series []float64) Summary {
	if len(series) == 0 {
		return Summary{}
	}

	mean, std := stat.MeanStdDev(series, nil)
	if len(series) == 1 {
		std = 0
	}

	return Summary{
		Mean:  mean,
		Std:   std,
		Min:   floats.Min(series),
		Max:   floats.Max(series),
		Final: series[len(series)-1],
	}
}

// Tail summarizes only the last fraction of a series, skipping the
// transient. frac is clamped to (0, 1].
func Tail(series []float64, frac float64) Summary {
	if frac <= 0 || frac > 1 {
		frac = 0.5
	}
	start := len(series) - int(float64(len(series))*frac)
	if start < 0 || start >= len(series) {
		start = 0
	}
	return Summarize(series[start:])
}

// Classify names the regime the tail of a run settled into, using the
// conventional order-parameter signatures. It is a heuristic label, not a
// phase-diagram lookup.
func Classify(coherence, sPlus, sMinus Summary) string {
	wave := sMinus
	if sPlus.Mean > sMinus.Mean {
		wave = sPlus
	}

	switch {
	case coherence.Mean > 0.9:
		return "static sync"
	case wave.Mean > 0.9:
		return "static phase wave"
	case wave.Mean > 0.4 && wave.Std > 0.02:
		return "active phase wave"
	case wave.Mean > 0.4:
		return "splintered phase wave"
	case coherence.Mean < 0.2:
		return "static async"
	default:
		return "mixed"
	}
}
