package forcing

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Term", func() {
	It("converts frequency from Hz to rad/s", func() {
		term := NewTerm(1.0, 0.5, 0, 1)
		Expect(term.Omega).To(BeNumerically("~", math.Pi, 1e-15))
		Expect(term.FrequencyHz()).To(BeNumerically("~", 0.5, 1e-15))
	})

	It("decays towards zero for positive tau", func() {
		term := NewTerm(0.5, 3, 0.3, 2)
		Expect(math.Abs(term.Sample(200))).To(BeNumerically("<", 1e-100))
		Expect(math.Abs(term.Accel(200))).To(BeNumerically("<", 1e-100))
	})

	It("underflows to exactly zero for large t/tau", func() {
		term := NewTerm(1e-3, 1, 0.5, 1)
		Expect(term.Sample(10)).To(BeZero())
	})

	It("grows without bound for negative tau", func() {
		term := NewTerm(-1e-3, 1, 0.5, 1)
		Expect(math.IsInf(math.Exp(-10/term.Tau), 1)).To(BeTrue())
		v := term.Sample(10)
		Expect(math.IsInf(v, 0) || math.IsNaN(v)).To(BeTrue())
	})

	DescribeTable("Validate",
		func(term Term, ok bool) {
			err := term.Validate()
			if ok {
				Expect(err).NotTo(HaveOccurred())
			} else {
				Expect(err).To(HaveOccurred())
			}
		},
		Entry("regular", Term{Tau: 1, Omega: 2, Phi: 0.1, Amplitude: 3}, true),
		Entry("negative tau", Term{Tau: -1, Omega: 2}, true),
		Entry("zero tau", Term{Tau: 0, Omega: 2}, false),
		Entry("nan omega", Term{Tau: 1, Omega: math.NaN()}, false),
		Entry("inf amplitude", Term{Tau: 1, Amplitude: math.Inf(1)}, false),
		Entry("inf phi", Term{Tau: 1, Phi: math.Inf(-1)}, false),
	)
})

var _ = Describe("Evaluate", func() {
	const l = 5.0

	It("matches the closed-form expressions for a single term", func() {
		term := NewTerm(1.0, 0.5, 0, 1)
		ev := Evaluate(0, 0, 0, l, []Term{term})

		Expect(ev.Noise).To(Equal(0.0))
		Expect(ev.Signal).To(Equal(0.0))
		Expect(ev.Accel).To(BeNumerically("~", 2*math.Pi, 1e-12))

		t := 0.7
		w := math.Pi
		want := math.Exp(-t) * ((w*w-1)*math.Sin(w*t) + 2*w*math.Cos(w*t))
		ev = Evaluate(t, 0.1, -0.2, l, []Term{term})
		Expect(ev.Accel).To(BeNumerically("~", want, 1e-12))
		Expect(ev.Noise).To(BeNumerically("~", math.Exp(-t)*math.Sin(w*t), 1e-12))
		Expect(ev.Signal).To(BeNumerically("~", l*math.Sin(0.1)+l*math.Sin(-0.2)+ev.Noise, 1e-12))
	})

	It("sums contributions over all terms", func() {
		terms := []Term{
			NewTerm(2, 1, 0.3, 0.5),
			NewTerm(0.5, 4, 1.2, 2),
			NewTerm(10, 0.1, -0.4, 1),
		}
		t := 1.3
		var accel, noise float64
		for _, term := range terms {
			accel += term.Accel(t)
			noise += term.Sample(t)
		}

		ev := Evaluate(t, 0, 0, l, terms)
		Expect(ev.Accel).To(BeNumerically("~", accel, 1e-12))
		Expect(ev.Noise).To(BeNumerically("~", noise, 1e-12))
	})

	It("returns Σ A·sin(φ) for both outputs at t = 0", func() {
		terms := []Term{
			NewTerm(2, 1, 0.3, 0.5),
			NewTerm(0.5, 4, 1.2, 2),
		}
		ev := Evaluate(0, 0, 0, l, terms)
		Expect(ev.Signal).To(Equal(ev.Noise))
		Expect(ev.Noise).To(BeNumerically("~", 0.5*math.Sin(0.3)+2*math.Sin(1.2), 1e-12))
	})

	It("is zero everywhere for zero amplitude", func() {
		terms := []Term{NewTerm(1, 2, 0.4, 0)}
		for _, t := range []float64{0, 0.1, 3.3, 50} {
			ev := Evaluate(t, 0.2, 0.3, l, terms)
			Expect(ev.Noise).To(BeZero())
			Expect(ev.Accel).To(BeZero())
			Expect(ev.Signal).To(BeNumerically("~", l*math.Sin(0.2)+l*math.Sin(0.3), 1e-12))
		}
	})

	It("handles an empty term list", func() {
		ev := Evaluate(1, 0, 0, l, nil)
		Expect(ev).To(Equal(Evaluation{}))
	})
})

var _ = Describe("InitialOmega1", func() {
	It("is -π/5 for the reference term", func() {
		terms := []Term{NewTerm(1.0, 0.5, 0, 1)}
		Expect(InitialOmega1(terms, 5.0)).To(BeNumerically("~", -0.6283185307, 1e-10))
	})

	It("sums -ω·A·cos(φ)/l over terms", func() {
		terms := []Term{
			NewTerm(1, 1, 0.2, 0.5),
			NewTerm(3, 2, 1.0, -1.5),
		}
		l := 2.0
		want := -(terms[0].Omega*0.5*math.Cos(0.2) + terms[1].Omega*-1.5*math.Cos(1.0)) / l
		Expect(InitialOmega1(terms, l)).To(BeNumerically("~", want, 1e-12))
	})
})
