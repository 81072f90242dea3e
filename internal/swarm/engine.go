// Package swarm implements a swarmalator ensemble: agents carrying a 2D
// position and a scalar phase, coupled so that spatial attraction depends on
// phase similarity and phase synchronization depends on spatial proximity.
//
// The engine owns all ensemble state and advances it one explicit-Euler step
// per Update call. It is not safe for concurrent use; the caller serializes
// Update, setter, and accessor calls on one instance.
package swarm

import "math"

// Base attraction and repulsion gains. Fixed for every ensemble.
const (
	baseAttraction = 1.0
	baseRepulsion  = 1.0
)

// Params holds the initial state for a new Engine. Positions is interleaved
// (x0,y0,x1,y1,...). Chirality and Target are optional; nil leaves the
// corresponding term disabled.
type Params struct {
	Agents             int
	Positions          []float64
	Phases             []float64
	NaturalFrequencies []float64
	K                  float64
	J                  float64
	Chirality          []float64
	Target             []float64
}

// Engine is a swarmalator ensemble. All slices are owned by the engine;
// accessors copy out.
type Engine struct {
	agents int

	a, b float64
	k, j float64

	positions    []float64 // 2*agents, interleaved
	phases       []float64 // agents, radians
	naturalFreqs []float64 // agents
	velocities   []float64 // 2*agents, recomputed every Update
	deltaPhases  []float64 // agents, recomputed every Update

	chirality []float64
	chiral    bool

	targetX, targetY float64
	hasTarget        bool

	// scratch buffers reused across Update calls
	js          []float64
	targetDists []float64
}

// New validates p, copies every slice, and returns an engine with agents at
// rest (zero velocities and phase deltas). It returns a *LengthMismatchError
// naming the offending field when a slice length violates its invariant; no
// engine is constructed in that case.
func New(p Params) (*Engine, error) {
	n := p.Agents
	if len(p.Positions) != 2*n {
		return nil, &LengthMismatchError{Field: "positions", Want: 2 * n, Got: len(p.Positions)}
	}
	if len(p.Phases) != n {
		return nil, &LengthMismatchError{Field: "phases", Want: n, Got: len(p.Phases)}
	}
	if len(p.NaturalFrequencies) != n {
		return nil, &LengthMismatchError{Field: "natural_frequencies", Want: n, Got: len(p.NaturalFrequencies)}
	}
	if p.Chirality != nil && len(p.Chirality) != n {
		return nil, &LengthMismatchError{Field: "chirality", Want: n, Got: len(p.Chirality)}
	}
	if p.Target != nil && len(p.Target) != 2 {
		return nil, &LengthMismatchError{Field: "target", Want: 2, Got: len(p.Target)}
	}

	e := &Engine{
		agents:       n,
		a:            baseAttraction,
		b:            baseRepulsion,
		k:            p.K,
		j:            p.J,
		positions:    append([]float64(nil), p.Positions...),
		phases:       append([]float64(nil), p.Phases...),
		naturalFreqs: append([]float64(nil), p.NaturalFrequencies...),
		velocities:   make([]float64, 2*n),
		deltaPhases:  make([]float64, n),
		js:           make([]float64, n),
		targetDists:  make([]float64, n),
	}
	if p.Chirality != nil {
		e.chirality = append([]float64(nil), p.Chirality...)
		e.chiral = true
	}
	if p.Target != nil {
		e.targetX, e.targetY = p.Target[0], p.Target[1]
		e.hasTarget = true
	}
	return e, nil
}

// Update advances the ensemble by dt. Velocities and phase deltas are
// recomputed from scratch against the pre-step state of every agent; the
// Euler integration runs as a separate pass afterwards, so pairwise terms
// never observe a half-updated neighbor.
//
// Degenerate geometry is not guarded: coincident agents, a target
// equidistant from every agent, or a zero natural frequency under chirality
// all divide by zero, and the resulting NaN/Inf values propagate into the
// state on integration.
func (e *Engine) Update(dt float64) {
	n := e.agents
	e.coupling()

	invN := 1.0 / float64(n)
	kOverN := e.k / float64(n)

	for i := 0; i < n; i++ {
		if e.chiral {
			e.velocities[i*2] = e.chirality[i] * math.Cos(e.phases[i]+math.Pi/2)
			e.velocities[i*2+1] = e.chirality[i] * math.Sin(e.phases[i]+math.Pi/2)
		} else {
			e.velocities[i*2] = 0
			e.velocities[i*2+1] = 0
		}

		// Natural frequency always contributes to the phase delta.
		e.deltaPhases[i] = e.naturalFreqs[i]

		for j := 0; j < n; j++ {
			if i == j {
				continue
			}

			dx := e.positions[j*2] - e.positions[i*2]
			dy := e.positions[j*2+1] - e.positions[i*2+1]
			dist := math.Sqrt(dx*dx + dy*dy)

			// Counter-rotating agents couple with a fixed angular offset.
			var freqOffXY, freqOffPhase float64
			if e.chiral {
				wi, wj := e.naturalFreqs[i], e.naturalFreqs[j]
				freqOffXY = (math.Pi / 2) * math.Abs(wj/math.Abs(wj)-wi/math.Abs(wi))
				freqOffPhase = freqOffXY / 2
			}

			gain := e.a + e.js[i]*math.Cos(e.phases[j]-e.phases[i]-freqOffXY)
			e.velocities[i*2] += invN * ((dx/dist)*gain - e.b*dx/(dist*dist))
			e.velocities[i*2+1] += invN * ((dy/dist)*gain - e.b*dy/(dist*dist))

			e.deltaPhases[i] += kOverN * math.Sin(e.phases[j]-e.phases[i]-freqOffPhase) / dist
		}
	}

	for i := 0; i < n; i++ {
		// math.Mod keeps the sign of the dividend, so phases live in
		// (-2π, 2π) rather than [0, 2π). Kept as-is for reproducibility.
		e.phases[i] = math.Mod(e.phases[i]+e.deltaPhases[i]*dt, 2*math.Pi)
		e.positions[i*2] += e.velocities[i*2] * dt
		e.positions[i*2+1] += e.velocities[i*2+1] * dt
	}
}

// coupling fills e.js with the per-agent spatial-phase gain. Without a
// target every agent uses the global J. With one, distance from the nearest
// agent rescales linearly into [0, A], so agents far from the target couple
// harder.
func (e *Engine) coupling() {
	if !e.hasTarget {
		for i := range e.js {
			e.js[i] = e.j
		}
		return
	}

	for i := 0; i < e.agents; i++ {
		dx := e.positions[i*2] - e.targetX
		dy := e.positions[i*2+1] - e.targetY
		e.targetDists[i] = math.Sqrt(dx*dx + dy*dy)
	}

	minD, maxD := math.Inf(1), math.Inf(-1)
	for _, d := range e.targetDists {
		minD = math.Min(minD, d)
		maxD = math.Max(maxD, d)
	}

	for i := range e.js {
		e.js[i] = e.a * math.Abs(e.targetDists[i]-minD) / (maxD - minD)
	}
}
