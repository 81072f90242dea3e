// Package sweep scans a grid of (J, K) couplings, running one independent
// ensemble per cell and classifying the regime each settles into. Cells run
// concurrently in a bounded worker group; every engine stays single-threaded
// inside its own run.
package sweep

import (
	"context"
	"sync"

	"github.com/san-kum/swarmlab/internal/analysis"
	"github.com/san-kum/swarmlab/internal/seed"
	"github.com/san-kum/swarmlab/internal/sim"
	"github.com/san-kum/swarmlab/internal/swarm"
)

// Cell is one grid point's outcome.
type Cell struct {
	K, J      float64
	Coherence float64
	Regime    string
	Err       error
}

// Grid is a completed scan: Cells[i][j] pairs Ks[i] with Js[j].
type Grid struct {
	Ks    []float64
	Js    []float64
	Cells [][]Cell
}

// Options configures a scan. Base supplies everything except K and J, which
// the grid overrides per cell.
type Options struct {
	Base    seed.Spec
	Run     sim.Config
	Ks      []float64
	Js      []float64
	Workers int
}

// Range returns n evenly spaced values from lo to hi inclusive.
func Range(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	vals := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range vals {
		vals[i] = lo + step*float64(i)
	}
	return vals
}

// Scan runs every (K, J) cell and collects the classified outcomes. A cell
// failure is recorded in its Cell rather than aborting the scan.
func Scan(ctx context.Context, opts Options) *Grid {
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}

	grid := &Grid{
		Ks:    opts.Ks,
		Js:    opts.Js,
		Cells: make([][]Cell, len(opts.Ks)),
	}
	for i := range grid.Cells {
		grid.Cells[i] = make([]Cell, len(opts.Js))
	}

	type job struct{ i, j int }
	jobs := make(chan job)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for jb := range jobs {
				grid.Cells[jb.i][jb.j] = runCell(ctx, opts, opts.Ks[jb.i], opts.Js[jb.j])
			}
		}()
	}

	for i := range opts.Ks {
		for j := range opts.Js {
			jobs <- job{i, j}
		}
	}
	close(jobs)
	wg.Wait()

	return grid
}

func runCell(ctx context.Context, opts Options, k, j float64) Cell {
	cell := Cell{K: k, J: j}

	spec := opts.Base
	spec.K = k
	spec.J = j

	params, err := seed.Build(spec)
	if err != nil {
		cell.Err = err
		return cell
	}
	engine, err := swarm.New(params)
	if err != nil {
		cell.Err = err
		return cell
	}

	result, err := sim.New(engine).Run(ctx, opts.Run)
	if err != nil {
		cell.Err = err
		return cell
	}

	coherence := make([]float64, len(result.Snapshots))
	sPlus := make([]float64, len(result.Snapshots))
	sMinus := make([]float64, len(result.Snapshots))
	for i, snap := range result.Snapshots {
		coherence[i] = snap.Coherence
		sPlus[i] = snap.SPlus
		sMinus[i] = snap.SMinus
	}

	cTail := analysis.Tail(coherence, 0.5)
	cell.Coherence = cTail.Mean
	cell.Regime = analysis.Classify(cTail, analysis.Tail(sPlus, 0.5), analysis.Tail(sMinus, 0.5))
	return cell
}
