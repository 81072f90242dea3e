package swarm_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/swarmlab/internal/swarm"
)

func pairParams() swarm.Params {
	return swarm.Params{
		Agents:             2,
		Positions:          []float64{0, 0, 1, 0},
		Phases:             []float64{0, 0},
		NaturalFrequencies: []float64{0, 0},
		K:                  1,
		J:                  1,
	}
}

var _ = Describe("New", func() {
	It("builds an ensemble at rest", func() {
		e, err := swarm.New(pairParams())
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Agents()).To(Equal(2))
		Expect(e.Velocities()).To(Equal([]float64{0, 0, 0, 0}))
		Expect(e.K()).To(Equal(1.0))
		Expect(e.J()).To(Equal(1.0))
		Expect(e.Chiral()).To(BeFalse())
		_, _, ok := e.Target()
		Expect(ok).To(BeFalse())
	})

	It("copies caller slices", func() {
		p := pairParams()
		e, err := swarm.New(p)
		Expect(err).NotTo(HaveOccurred())

		p.Positions[0] = 99
		p.Phases[0] = 99
		Expect(e.Positions()[0]).To(Equal(0.0))
		Expect(e.Phases()[0]).To(Equal(0.0))
	})

	DescribeTable("rejects malformed lengths",
		func(mutate func(*swarm.Params), field string) {
			p := pairParams()
			mutate(&p)
			e, err := swarm.New(p)
			Expect(e).To(BeNil())

			var lm *swarm.LengthMismatchError
			Expect(errors.As(err, &lm)).To(BeTrue())
			Expect(lm.Field).To(Equal(field))
		},
		Entry("short positions", func(p *swarm.Params) { p.Positions = []float64{0, 0, 1} }, "positions"),
		Entry("long positions", func(p *swarm.Params) { p.Positions = make([]float64, 6) }, "positions"),
		Entry("short phases", func(p *swarm.Params) { p.Phases = []float64{0} }, "phases"),
		Entry("short frequencies", func(p *swarm.Params) { p.NaturalFrequencies = []float64{0} }, "natural_frequencies"),
		Entry("bad chirality", func(p *swarm.Params) { p.Chirality = []float64{1} }, "chirality"),
		Entry("bad target", func(p *swarm.Params) { p.Target = []float64{1, 2, 3} }, "target"),
	)
})

var _ = Describe("Update", func() {
	It("matches the analytic two-agent symmetric case", func() {
		e, err := swarm.New(pairParams())
		Expect(err).NotTo(HaveOccurred())

		e.Update(0.1)

		// dist=1, both phases equal: gain = A + J*cos(0) = 2, repulsion
		// B/dist^2 = 1, so each agent sees (2-1)/2 = 0.5 along x towards
		// the other, and sin(0) kills the phase coupling.
		v := e.Velocities()
		Expect(v[0]).To(BeNumerically("~", 0.5, 1e-9))
		Expect(v[1]).To(BeNumerically("~", 0.0, 1e-9))
		Expect(v[2]).To(BeNumerically("~", -0.5, 1e-9))
		Expect(v[3]).To(BeNumerically("~", 0.0, 1e-9))

		pos := e.Positions()
		Expect(pos[0]).To(BeNumerically("~", 0.05, 1e-9))
		Expect(pos[2]).To(BeNumerically("~", 0.95, 1e-9))

		ph := e.Phases()
		Expect(ph[0]).To(BeNumerically("~", 0.0, 1e-9))
		Expect(ph[1]).To(BeNumerically("~", 0.0, 1e-9))
	})

	It("leaves a single agent at rest without chirality", func() {
		e, err := swarm.New(swarm.Params{
			Agents:             1,
			Positions:          []float64{3, 4},
			Phases:             []float64{0.5},
			NaturalFrequencies: []float64{2.0},
			K:                  1,
			J:                  1,
		})
		Expect(err).NotTo(HaveOccurred())

		e.Update(0.25)

		Expect(e.Velocities()).To(Equal([]float64{0, 0}))
		Expect(e.Positions()).To(Equal([]float64{3, 4}))
		Expect(e.Phases()[0]).To(BeNumerically("~", 0.5+2.0*0.25, 1e-12))
	})

	It("rotates a lone chiral agent at fixed speed", func() {
		theta := 0.3
		c := 1.5
		e, err := swarm.New(swarm.Params{
			Agents:             1,
			Positions:          []float64{0, 0},
			Phases:             []float64{theta},
			NaturalFrequencies: []float64{1.0},
			Chirality:          []float64{c},
		})
		Expect(err).NotTo(HaveOccurred())

		e.Update(0.1)

		v := e.Velocities()
		Expect(v[0]).To(BeNumerically("~", c*math.Cos(theta+math.Pi/2), 1e-12))
		Expect(v[1]).To(BeNumerically("~", c*math.Sin(theta+math.Pi/2), 1e-12))
		Expect(math.Hypot(v[0], v[1])).To(BeNumerically("~", c, 1e-12))
	})

	It("does not move state when dt is zero", func() {
		e, err := swarm.New(pairParams())
		Expect(err).NotTo(HaveOccurred())

		e.Update(0)

		Expect(e.Positions()).To(Equal([]float64{0, 0, 1, 0}))
		Expect(e.Phases()).To(Equal([]float64{0, 0}))
		// Velocities are still derived from scratch.
		Expect(e.Velocities()[0]).To(BeNumerically("~", 0.5, 1e-9))
	})

	It("keeps phases inside the signed remainder range", func() {
		e, err := swarm.New(swarm.Params{
			Agents:             2,
			Positions:          []float64{0, 0, 2, 0},
			Phases:             []float64{0.1, -0.2},
			NaturalFrequencies: []float64{7.3, -11.9},
			K:                  0.5,
			J:                  0.5,
		})
		Expect(err).NotTo(HaveOccurred())

		for step := 0; step < 500; step++ {
			e.Update(0.05)
		}

		for _, ph := range e.Phases() {
			Expect(ph).To(BeNumerically("<", 2*math.Pi))
			Expect(ph).To(BeNumerically(">", -2*math.Pi))
		}
	})

	It("propagates NaN from coincident agents", func() {
		e, err := swarm.New(swarm.Params{
			Agents:             2,
			Positions:          []float64{1, 1, 1, 1},
			Phases:             []float64{0, 0},
			NaturalFrequencies: []float64{0, 0},
			K:                  1,
			J:                  1,
		})
		Expect(err).NotTo(HaveOccurred())

		e.Update(0.1)

		Expect(e.Valid()).To(BeFalse())
		Expect(math.IsNaN(e.Velocities()[0])).To(BeTrue())
		Expect(math.IsNaN(e.Positions()[0])).To(BeTrue())
		Expect(math.IsNaN(e.Phases()[0])).To(BeTrue())
	})
})

var _ = Describe("setters", func() {
	var e *swarm.Engine

	BeforeEach(func() {
		var err error
		e, err = swarm.New(pairParams())
		Expect(err).NotTo(HaveOccurred())
	})

	It("replaces gains and target", func() {
		e.SetK(-0.75)
		e.SetJ(0.2)
		Expect(e.K()).To(Equal(-0.75))
		Expect(e.J()).To(Equal(0.2))

		Expect(e.SetTarget([]float64{2, 3})).To(Succeed())
		x, y, ok := e.Target()
		Expect(ok).To(BeTrue())
		Expect(x).To(Equal(2.0))
		Expect(y).To(Equal(3.0))

		e.ClearTarget()
		_, _, ok = e.Target()
		Expect(ok).To(BeFalse())
	})

	It("rejects a malformed target without mutating", func() {
		Expect(e.SetTarget([]float64{2, 3})).To(Succeed())
		err := e.SetTarget([]float64{1})
		Expect(err).To(HaveOccurred())

		x, y, ok := e.Target()
		Expect(ok).To(BeTrue())
		Expect(x).To(Equal(2.0))
		Expect(y).To(Equal(3.0))
	})

	It("toggles chirality presence", func() {
		Expect(e.SetChirality([]float64{1, -1})).To(Succeed())
		Expect(e.Chiral()).To(BeTrue())

		Expect(e.SetChirality(nil)).To(Succeed())
		Expect(e.Chiral()).To(BeFalse())

		err := e.SetChirality([]float64{1})
		Expect(err).To(HaveOccurred())
		Expect(e.Chiral()).To(BeFalse())
	})

	It("length-checks phases and frequencies without mutating on failure", func() {
		Expect(e.SetPhases([]float64{0.1, 0.2})).To(Succeed())
		Expect(e.SetPhases([]float64{0.9})).NotTo(Succeed())
		Expect(e.Phases()).To(Equal([]float64{0.1, 0.2}))

		Expect(e.SetNaturalFrequencies([]float64{1, 2})).To(Succeed())
		Expect(e.SetNaturalFrequencies([]float64{9})).NotTo(Succeed())
	})
})
