// Package seed builds deterministic initial conditions for an ensemble:
// position layouts, phase distributions, chirality splits, and natural
// frequency draws, all reproducible from a single seed.
package seed

import (
	"fmt"
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/san-kum/swarmlab/internal/swarm"
)

// Spec describes how to scatter an ensemble before the first step.
type Spec struct {
	Agents int
	Seed   int64

	Layout string  // ring, disk, uniform, clusters
	Extent float64 // layout radius / half-width; 0 means 1.0

	PhaseLayout string // random, gradient, banded

	ChiralityMode string  // none, uniform, split
	ChiralitySpin float64 // magnitude of the orbital term; 0 means 1.0

	OmegaMode   string  // constant, split, normal
	OmegaMean   float64 // base natural frequency
	OmegaSpread float64 // stddev for normal mode

	K, J   float64
	Target []float64
}

// Build scatters the ensemble and returns ready-to-use engine parameters.
// An unknown layout or mode name is a caller error.
func Build(s Spec) (swarm.Params, error) {
	if s.Agents <= 0 {
		return swarm.Params{}, fmt.Errorf("seed: agents must be positive, got %d", s.Agents)
	}

	extent := s.Extent
	if extent == 0 {
		extent = 1.0
	}

	rng := rand.New(rand.NewSource(s.Seed))

	positions, err := scatter(s.Layout, s.Agents, extent, s.Seed, rng)
	if err != nil {
		return swarm.Params{}, err
	}

	phases, err := spreadPhases(s.PhaseLayout, s.Agents, positions, rng)
	if err != nil {
		return swarm.Params{}, err
	}

	freqs, err := drawFrequencies(s.OmegaMode, s.Agents, s.OmegaMean, s.OmegaSpread, rng)
	if err != nil {
		return swarm.Params{}, err
	}

	chirality, err := drawChirality(s.ChiralityMode, s.Agents, s.ChiralitySpin)
	if err != nil {
		return swarm.Params{}, err
	}

	p := swarm.Params{
		Agents:             s.Agents,
		Positions:          positions,
		Phases:             phases,
		NaturalFrequencies: freqs,
		K:                  s.K,
		J:                  s.J,
		Chirality:          chirality,
	}
	if len(s.Target) == 2 {
		p.Target = []float64{s.Target[0], s.Target[1]}
	}
	return p, nil
}

func scatter(layout string, n int, extent float64, seed int64, rng *rand.Rand) ([]float64, error) {
	positions := make([]float64, 2*n)

	switch layout {
	case "", "disk":
		for i := 0; i < n; i++ {
			// sqrt keeps the density uniform over the disk
			r := extent * math.Sqrt(rng.Float64())
			a := rng.Float64() * 2 * math.Pi
			positions[i*2] = r * math.Cos(a)
			positions[i*2+1] = r * math.Sin(a)
		}
	case "ring":
		for i := 0; i < n; i++ {
			a := 2 * math.Pi * float64(i) / float64(n)
			positions[i*2] = extent * math.Cos(a)
			positions[i*2+1] = extent * math.Sin(a)
		}
	case "uniform":
		for i := 0; i < n; i++ {
			positions[i*2] = extent * (2*rng.Float64() - 1)
			positions[i*2+1] = extent * (2*rng.Float64() - 1)
		}
	case "clusters":
		// Rejection-sample against a noise field so agents pool in the
		// high-noise lobes instead of spreading evenly.
		noise := opensimplex.NewNormalized(seed)
		for i := 0; i < n; i++ {
			for {
				x := extent * (2*rng.Float64() - 1)
				y := extent * (2*rng.Float64() - 1)
				if rng.Float64() < noise.Eval2(x*1.5/extent, y*1.5/extent) {
					positions[i*2] = x
					positions[i*2+1] = y
					break
				}
			}
		}
	default:
		return nil, fmt.Errorf("seed: unknown layout %q", layout)
	}

	return positions, nil
}

func spreadPhases(layout string, n int, positions []float64, rng *rand.Rand) ([]float64, error) {
	phases := make([]float64, n)

	switch layout {
	case "", "random":
		for i := range phases {
			phases[i] = rng.Float64() * 2 * math.Pi
		}
	case "gradient":
		// Phase follows the polar angle of the starting position.
		for i := range phases {
			phases[i] = math.Atan2(positions[i*2+1], positions[i*2]) + math.Pi
		}
	case "banded":
		for i := range phases {
			phases[i] = 2 * math.Pi * float64(i%4) / 4
		}
	default:
		return nil, fmt.Errorf("seed: unknown phase layout %q", layout)
	}

	return phases, nil
}

func drawFrequencies(mode string, n int, mean, spread float64, rng *rand.Rand) ([]float64, error) {
	freqs := make([]float64, n)

	switch mode {
	case "", "constant":
		for i := range freqs {
			freqs[i] = mean
		}
	case "split":
		// First half spins one way, second half the other.
		for i := range freqs {
			if i < n/2 {
				freqs[i] = mean
			} else {
				freqs[i] = -mean
			}
		}
	case "normal":
		for i := range freqs {
			freqs[i] = mean + spread*rng.NormFloat64()
		}
	default:
		return nil, fmt.Errorf("seed: unknown omega mode %q", mode)
	}

	return freqs, nil
}

func drawChirality(mode string, n int, spin float64) ([]float64, error) {
	if spin == 0 {
		spin = 1.0
	}

	switch mode {
	case "", "none":
		return nil, nil
	case "uniform":
		c := make([]float64, n)
		for i := range c {
			c[i] = spin
		}
		return c, nil
	case "split":
		c := make([]float64, n)
		for i := range c {
			if i < n/2 {
				c[i] = spin
			} else {
				c[i] = -spin
			}
		}
		return c, nil
	default:
		return nil, fmt.Errorf("seed: unknown chirality mode %q", mode)
	}
}
