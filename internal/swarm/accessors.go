package swarm

import "math"

// Agents returns the fixed ensemble size.
func (e *Engine) Agents() int { return e.agents }

// K returns the phase-coupling gain.
func (e *Engine) K() float64 { return e.k }

// J returns the global spatial-phase gain. Ignored while a target is set.
func (e *Engine) J() float64 { return e.j }

// Chiral reports whether the chirality term is active.
func (e *Engine) Chiral() bool { return e.chiral }

// Target returns the attraction point, if any.
func (e *Engine) Target() (x, y float64, ok bool) {
	return e.targetX, e.targetY, e.hasTarget
}

// Positions returns a copy of the interleaved position array.
func (e *Engine) Positions() []float64 { return append([]float64(nil), e.positions...) }

// Phases returns a copy of the phase array.
func (e *Engine) Phases() []float64 { return append([]float64(nil), e.phases...) }

// Velocities returns a copy of the interleaved velocity array as derived by
// the last Update.
func (e *Engine) Velocities() []float64 { return append([]float64(nil), e.velocities...) }

// CopyPositions copies the interleaved positions into dst and reports how
// many values were written. Render loops use this to avoid per-frame
// allocation; internal arrays are never handed out directly.
func (e *Engine) CopyPositions(dst []float64) int { return copy(dst, e.positions) }

// CopyPhases copies the phases into dst.
func (e *Engine) CopyPhases(dst []float64) int { return copy(dst, e.phases) }

// CopyVelocities copies the interleaved velocities into dst.
func (e *Engine) CopyVelocities(dst []float64) int { return copy(dst, e.velocities) }

// Valid reports whether every mutable array is free of NaN and Inf. Update
// never fails synchronously, so hosts poll this to detect a degenerate
// geometry that has poisoned the state.
func (e *Engine) Valid() bool {
	for _, s := range [][]float64{e.positions, e.phases, e.velocities, e.deltaPhases} {
		for _, v := range s {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// SetK sets the phase-coupling gain.
func (e *Engine) SetK(k float64) { e.k = k }

// SetJ sets the global spatial-phase gain.
func (e *Engine) SetJ(j float64) { e.j = j }

// SetTarget sets the attraction point from a two-element (x, y) slice.
func (e *Engine) SetTarget(target []float64) error {
	if len(target) != 2 {
		return &LengthMismatchError{Field: "target", Want: 2, Got: len(target)}
	}
	e.targetX, e.targetY = target[0], target[1]
	e.hasTarget = true
	return nil
}

// ClearTarget removes the attraction point; agents fall back to the global J.
func (e *Engine) ClearTarget() { e.hasTarget = false }

// SetChirality replaces the per-agent chirality values. A nil slice disables
// the chirality term entirely.
func (e *Engine) SetChirality(chirality []float64) error {
	if chirality == nil {
		e.chiral = false
		e.chirality = nil
		return nil
	}
	if len(chirality) != e.agents {
		return &LengthMismatchError{Field: "chirality", Want: e.agents, Got: len(chirality)}
	}
	e.chirality = append(e.chirality[:0], chirality...)
	e.chiral = true
	return nil
}

// SetNaturalFrequencies replaces the intrinsic phase drift rates.
func (e *Engine) SetNaturalFrequencies(freqs []float64) error {
	if len(freqs) != e.agents {
		return &LengthMismatchError{Field: "natural_frequencies", Want: e.agents, Got: len(freqs)}
	}
	copy(e.naturalFreqs, freqs)
	return nil
}

// SetPhases replaces the phase array.
func (e *Engine) SetPhases(phases []float64) error {
	if len(phases) != e.agents {
		return &LengthMismatchError{Field: "phases", Want: e.agents, Got: len(phases)}
	}
	copy(e.phases, phases)
	return nil
}
