// Package sim drives a swarm engine through a timed run: fixed-dt stepping,
// per-step metric observation, sampled snapshots, and NaN detection. The
// engine itself stays single-threaded; the runner only adds the loop around
// it.
package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/swarmlab/internal/metrics"
	"github.com/san-kum/swarmlab/internal/swarm"
)

// Config controls a single run.
type Config struct {
	Dt            float64
	Duration      float64
	SampleEvery   int  // steps between stored snapshots; 0 samples every step
	ValidateState bool // stop when the ensemble turns NaN/Inf
}

// Snapshot captures the ensemble at one sampled instant, along with the
// instantaneous order parameters.
type Snapshot struct {
	T          float64
	Positions  []float64
	Phases     []float64
	Velocities []float64
	Coherence  float64
	SPlus      float64
	SMinus     float64
}

// Result is everything a finished run produced.
type Result struct {
	Snapshots  []Snapshot
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// StepError marks a step at which the run was cut short.
type StepError struct {
	Step    int
	Time    float64
	Message string
}

func (e StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

// Observer is notified after every step with the live engine. Observers must
// not retain the engine past the callback.
type Observer interface {
	OnStep(e *swarm.Engine, t float64)
}

// Runner owns the step loop for one engine.
type Runner struct {
	engine    *swarm.Engine
	trackers  []metrics.Tracker
	observers []Observer
}

func New(e *swarm.Engine) *Runner {
	return &Runner{engine: e}
}

func (r *Runner) AddTracker(t metrics.Tracker) { r.trackers = append(r.trackers, t) }
func (r *Runner) AddObserver(o Observer)       { r.observers = append(r.observers, o) }

// Run steps the engine from t=0 to cfg.Duration. The initial state is always
// recorded as the first snapshot. Cancellation via ctx returns the partial
// result along with the context error.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	sampleEvery := cfg.SampleEvery
	if sampleEvery <= 0 {
		sampleEvery = 1
	}

	steps := int(cfg.Duration / cfg.Dt)
	result := &Result{
		Snapshots: make([]Snapshot, 0, steps/sampleEvery+1),
		Metrics:   make(map[string]float64),
	}

	for _, tr := range r.trackers {
		tr.Reset()
	}

	t := 0.0
	result.Snapshots = append(result.Snapshots, r.snapshot(t))

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			r.finish(result)
			return result, ctx.Err()
		default:
		}

		r.engine.Update(cfg.Dt)
		t += cfg.Dt
		result.StepsTaken++

		for _, tr := range r.trackers {
			tr.Observe(r.engine, t)
		}
		for _, obs := range r.observers {
			obs.OnStep(r.engine, t)
		}

		if cfg.ValidateState && !r.engine.Valid() {
			result.Errors = append(result.Errors,
				StepError{Step: i, Time: t, Message: "ensemble contains NaN/Inf"})
			result.Snapshots = append(result.Snapshots, r.snapshot(t))
			break
		}

		if (i+1)%sampleEvery == 0 {
			result.Snapshots = append(result.Snapshots, r.snapshot(t))
		}
	}

	r.finish(result)
	return result, nil
}

func (r *Runner) snapshot(t float64) Snapshot {
	positions := r.engine.Positions()
	phases := r.engine.Phases()
	sPlus, sMinus := metrics.SpatialPhaseOrder(positions, phases)
	return Snapshot{
		T:          t,
		Positions:  positions,
		Phases:     phases,
		Velocities: r.engine.Velocities(),
		Coherence:  metrics.Coherence(phases),
		SPlus:      sPlus,
		SMinus:     sMinus,
	}
}

func (r *Runner) finish(result *Result) {
	for _, tr := range r.trackers {
		result.Metrics[tr.Name()] = tr.Value()
	}
}

func validate(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}
