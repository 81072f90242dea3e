package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/swarmlab/internal/metrics"
	"github.com/san-kum/swarmlab/internal/sim"
	"github.com/san-kum/swarmlab/internal/swarm"
)

func sampleResult(t *testing.T) *sim.Result {
	t.Helper()
	e, err := swarm.New(swarm.Params{
		Agents:             2,
		Positions:          []float64{0, 0, 1, 0},
		Phases:             []float64{0.1, 0.2},
		NaturalFrequencies: []float64{1, 1},
		K:                  1,
		J:                  0.5,
	})
	require.NoError(t, err)

	r := sim.New(e)
	for _, tr := range metrics.Defaults() {
		r.AddTracker(tr)
	}
	result, err := r.Run(context.Background(), sim.Config{Dt: 0.1, Duration: 1.0})
	require.NoError(t, err)
	return result
}

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openStore(t)
	result := sampleResult(t)

	id, err := s.Save(RunMeta{Label: "pair", Agents: 2, Dt: 0.1, Duration: 1.0, Seed: 7, K: 1, J: 0.5}, result)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	meta, err := s.Load(id)
	require.NoError(t, err)
	assert.Equal(t, "pair", meta.Label)
	assert.Equal(t, 2, meta.Agents)
	assert.Equal(t, 10, meta.Steps)
	assert.Contains(t, meta.Metrics, "coherence")
}

func TestList(t *testing.T) {
	s := openStore(t)
	result := sampleResult(t)

	_, err := s.Save(RunMeta{Label: "first"}, result)
	require.NoError(t, err)
	_, err = s.Save(RunMeta{Label: "second"}, result)
	require.NoError(t, err)

	runs, err := s.List()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestLoadSeries(t *testing.T) {
	s := openStore(t)
	result := sampleResult(t)

	id, err := s.Save(RunMeta{Label: "series"}, result)
	require.NoError(t, err)

	series, err := s.LoadSeries(id)
	require.NoError(t, err)

	require.Len(t, series.Times, len(result.Snapshots))
	assert.InDelta(t, result.Snapshots[0].Coherence, series.Coherence[0], 1e-6)

	// Each state row carries (x, y, theta) per agent.
	require.NotEmpty(t, series.States)
	assert.Len(t, series.States[0], 6)
	assert.InDelta(t, result.Snapshots[0].Positions[0], series.States[0][0], 1e-6)
	assert.InDelta(t, result.Snapshots[0].Phases[0], series.States[0][2], 1e-6)
}

func TestDelete(t *testing.T) {
	s := openStore(t)
	result := sampleResult(t)

	id, err := s.Save(RunMeta{Label: "doomed"}, result)
	require.NoError(t, err)

	require.NoError(t, s.Delete(id))

	_, err = s.Load(id)
	assert.Error(t, err)

	runs, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestLoadUnknown(t *testing.T) {
	s := openStore(t)
	_, err := s.Load("no-such-run")
	assert.Error(t, err)
}
