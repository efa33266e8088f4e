package forcing

import (
	"math"

	"github.com/san-kum/drivenpend/internal/dynamo"
)

// Term is one exponentially decaying sinusoidal component of the forcing.
// Omega is in rad/s; NewTerm converts from Hz.
type Term struct {
	Tau       float64 `yaml:"tau" json:"tau"`
	Omega     float64 `yaml:"omega" json:"omega"`
	Phi       float64 `yaml:"phi" json:"phi"`
	Amplitude float64 `yaml:"amplitude" json:"amplitude"`
}

func NewTerm(tau, freqHz, phi, amplitude float64) Term {
	return Term{
		Tau:       tau,
		Omega:     freqHz * 2 * math.Pi,
		Phi:       phi,
		Amplitude: amplitude,
	}
}

func (t Term) FrequencyHz() float64 {
	return t.Omega / (2 * math.Pi)
}

// Validate reports non-finite fields and a zero decay constant. A negative
// tau is accepted: it makes the term grow instead of decay.
func (t Term) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"tau", t.Tau},
		{"omega", t.Omega},
		{"phi", t.Phi},
		{"amplitude", t.Amplitude},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &dynamo.InvalidParameterError{Field: f.name, Value: f.v, Reason: "must be finite"}
		}
	}
	if t.Tau == 0 {
		return &dynamo.InvalidParameterError{Field: "tau", Value: t.Tau, Reason: "must be non-zero"}
	}
	return nil
}

// Accel is the term's contribution to the pivot acceleration at time t.
func (t Term) Accel(at float64) float64 {
	phase := t.Omega*at + t.Phi
	return t.Amplitude * math.Exp(-at/t.Tau) *
		((t.Omega*t.Omega-1.0/(t.Tau*t.Tau))*math.Sin(phase) + 2.0*(t.Omega/t.Tau)*math.Cos(phase))
}

// Sample is the term's displacement contribution at time t.
func (t Term) Sample(at float64) float64 {
	return math.Exp(-at/t.Tau) * t.Amplitude * math.Sin(t.Omega*at+t.Phi)
}

// ValidateTerms checks every term; the error names the 1-indexed term.
func ValidateTerms(terms []Term) error {
	for i, term := range terms {
		if err := term.Validate(); err != nil {
			if perr, ok := err.(*dynamo.InvalidParameterError); ok {
				perr.Term = i + 1
			}
			return err
		}
	}
	return nil
}
