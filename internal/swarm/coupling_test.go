package swarm

import (
	"math"
	"testing"
)

// White-box check of the target-based J rescale: nearest agent gets 0,
// farthest gets A, intermediate agents interpolate linearly by distance.
func TestCouplingTargetRescale(t *testing.T) {
	e, err := New(Params{
		Agents:             3,
		Positions:          []float64{1, 0, 2, 0, 5, 0},
		Phases:             []float64{0, 0, 0},
		NaturalFrequencies: []float64{0, 0, 0},
		K:                  1,
		J:                  0.3,
		Target:             []float64{0, 0},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	e.coupling()

	// distances 1, 2, 5: min=1, max=5
	want := []float64{0, baseAttraction * 1.0 / 4.0, baseAttraction}
	for i, w := range want {
		if math.Abs(e.js[i]-w) > 1e-12 {
			t.Errorf("js[%d] = %v, want %v", i, e.js[i], w)
		}
	}
}

func TestCouplingGlobalJ(t *testing.T) {
	e, err := New(Params{
		Agents:             2,
		Positions:          []float64{0, 0, 1, 0},
		Phases:             []float64{0, 0},
		NaturalFrequencies: []float64{0, 0},
		J:                  0.7,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	e.coupling()

	for i, v := range e.js {
		if v != 0.7 {
			t.Errorf("js[%d] = %v, want 0.7", i, v)
		}
	}
}

// All agents equidistant from the target divides by zero; the rescale is
// deliberately unguarded, so the gains come out NaN.
func TestCouplingDegenerateTarget(t *testing.T) {
	e, err := New(Params{
		Agents:             2,
		Positions:          []float64{-1, 0, 1, 0},
		Phases:             []float64{0, 0},
		NaturalFrequencies: []float64{0, 0},
		Target:             []float64{0, 0},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	e.coupling()

	for i, v := range e.js {
		if !math.IsNaN(v) {
			t.Errorf("js[%d] = %v, want NaN", i, v)
		}
	}
}
