package sweep

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/swarmlab/internal/seed"
	"github.com/san-kum/swarmlab/internal/sim"
)

func TestRange(t *testing.T) {
	vals := Range(-1, 1, 5)
	want := []float64{-1, -0.5, 0, 0.5, 1}
	if len(vals) != len(want) {
		t.Fatalf("len = %d, want %d", len(vals), len(want))
	}
	for i := range want {
		if math.Abs(vals[i]-want[i]) > 1e-12 {
			t.Errorf("vals[%d] = %v, want %v", i, vals[i], want[i])
		}
	}

	if got := Range(2, 5, 1); len(got) != 1 || got[0] != 2 {
		t.Errorf("single-point range = %v, want [2]", got)
	}
}

func TestScan(t *testing.T) {
	grid := Scan(context.Background(), Options{
		Base:    seed.Spec{Agents: 20, Seed: 42, Layout: "disk"},
		Run:     sim.Config{Dt: 0.1, Duration: 2.0, SampleEvery: 5},
		Ks:      []float64{-0.5, 1.0},
		Js:      []float64{0.1, 1.0},
		Workers: 2,
	})

	if len(grid.Cells) != 2 || len(grid.Cells[0]) != 2 {
		t.Fatalf("grid shape = %dx%d, want 2x2", len(grid.Cells), len(grid.Cells[0]))
	}

	for i, row := range grid.Cells {
		for j, cell := range row {
			if cell.Err != nil {
				t.Errorf("cell (%d,%d): %v", i, j, cell.Err)
			}
			if cell.K != grid.Ks[i] || cell.J != grid.Js[j] {
				t.Errorf("cell (%d,%d) couplings = (%v,%v)", i, j, cell.K, cell.J)
			}
			if cell.Regime == "" {
				t.Errorf("cell (%d,%d) has no regime label", i, j)
			}
		}
	}
}

func TestScanInvalidCell(t *testing.T) {
	grid := Scan(context.Background(), Options{
		Base: seed.Spec{Agents: 0}, // invalid for every cell
		Run:  sim.Config{Dt: 0.1, Duration: 1.0},
		Ks:   []float64{1},
		Js:   []float64{1},
	})

	if grid.Cells[0][0].Err == nil {
		t.Error("expected cell error for invalid spec")
	}
}
