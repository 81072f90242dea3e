package metrics

import "github.com/san-kum/swarmlab/internal/swarm"

// Tracker observes the ensemble once per step and reduces the observations
// to a single reported value.
type Tracker interface {
	Name() string
	Observe(e *swarm.Engine, t float64)
	Value() float64
	Reset()
}

type meanTracker struct {
	name    string
	sample  func(e *swarm.Engine) float64
	total   float64
	samples int
}

func (m *meanTracker) Name() string { return m.name }

func (m *meanTracker) Observe(e *swarm.Engine, t float64) {
	m.total += m.sample(e)
	m.samples++
}

func (m *meanTracker) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *meanTracker) Reset() {
	m.total = 0
	m.samples = 0
}

// NewCoherence tracks the run-averaged phase coherence.
func NewCoherence() Tracker {
	return &meanTracker{name: "coherence", sample: func(e *swarm.Engine) float64 {
		return Coherence(e.Phases())
	}}
}

// NewSpatialPhasePlus tracks the run-averaged S+ correlation.
func NewSpatialPhasePlus() Tracker {
	return &meanTracker{name: "s_plus", sample: func(e *swarm.Engine) float64 {
		p, _ := SpatialPhaseOrder(e.Positions(), e.Phases())
		return p
	}}
}

// NewSpatialPhaseMinus tracks the run-averaged S- correlation.
func NewSpatialPhaseMinus() Tracker {
	return &meanTracker{name: "s_minus", sample: func(e *swarm.Engine) float64 {
		_, m := SpatialPhaseOrder(e.Positions(), e.Phases())
		return m
	}}
}

// NewMeanSpeed tracks the run-averaged mean agent speed.
func NewMeanSpeed() Tracker {
	return &meanTracker{name: "mean_speed", sample: func(e *swarm.Engine) float64 {
		return MeanSpeed(e.Velocities())
	}}
}

// NewRadius tracks the run-averaged ensemble radius.
func NewRadius() Tracker {
	return &meanTracker{name: "radius", sample: func(e *swarm.Engine) float64 {
		return Radius(e.Positions())
	}}
}

// Defaults returns the trackers every stored run records.
func Defaults() []Tracker {
	return []Tracker{
		NewCoherence(),
		NewSpatialPhasePlus(),
		NewSpatialPhaseMinus(),
		NewMeanSpeed(),
		NewRadius(),
	}
}
