// Package truth implements the evidence-weighted truth calculus: conversions
// between confidence and evidence weight, revision, temporal projection and
// the derivation functions used by inference.
package truth

import (
	"fmt"
	"math"
)

// Eternal is the occurrence time of statements that hold regardless of time.
const Eternal int64 = math.MinInt64

// Truth is a (frequency, confidence) pair. Confidence never reaches 1.
type Truth struct {
	Frequency  float64 `json:"frequency"`
	Confidence float64 `json:"confidence"`
}

// Expectation is the expected frequency of positive evidence.
func (t Truth) Expectation() float64 {
	return t.Confidence*(t.Frequency-0.5) + 0.5
}

// Equal compares both components exactly.
func (t Truth) Equal(o Truth) bool {
	return t.Frequency == o.Frequency && t.Confidence == o.Confidence
}

func (t Truth) String() string {
	return fmt.Sprintf("%%%.6f;%.6f%%", t.Frequency, t.Confidence)
}

// Calculus carries the constants of the calculus. The zero value is unusable;
// build one from configuration.
type Calculus struct {
	Horizon         float64 // evidential horizon k
	ProjectionDecay float64 // d in (0,1]
	MaxConfidence   float64
	Structural      Truth // stands in for the second premise of structural rules
}

// W2C maps an evidence weight to a confidence.
func (c Calculus) W2C(w float64) float64 {
	return w / (w + c.Horizon)
}

// C2W maps a confidence to an evidence weight.
func (c Calculus) C2W(conf float64) float64 {
	return c.Horizon * conf / (1 - conf)
}

func (c Calculus) make(f, conf float64) Truth {
	if conf < 0 {
		conf = 0
	}
	if conf > c.MaxConfidence {
		conf = c.MaxConfidence
	}
	return Truth{Frequency: f, Confidence: conf}
}

func or(a, b float64) float64 {
	return 1 - (1-a)*(1-b)
}

// Revision pools the evidence of two truths about the same statement.
func (c Calculus) Revision(v1, v2 Truth) Truth {
	w1 := c.C2W(v1.Confidence)
	w2 := c.C2W(v2.Confidence)
	w := w1 + w2
	f := math.Min(1, (w1*v1.Frequency+w2*v2.Frequency)/w)
	conf := math.Max(math.Max(c.W2C(w), v1.Confidence), v2.Confidence)
	return c.make(f, math.Min(c.MaxConfidence, conf))
}

func (c Calculus) Deduction(v1, v2 Truth) Truth {
	f := v1.Frequency * v2.Frequency
	return c.make(f, v1.Confidence*v2.Confidence*f)
}

func (c Calculus) Abduction(v1, v2 Truth) Truth {
	return c.make(v1.Frequency, c.W2C(v2.Frequency*v1.Confidence*v2.Confidence))
}

func (c Calculus) Induction(v1, v2 Truth) Truth {
	return c.Abduction(v2, v1)
}

func (c Calculus) Intersection(v1, v2 Truth) Truth {
	return c.make(v1.Frequency*v2.Frequency, v1.Confidence*v2.Confidence)
}

// Eternalize reads an event confidence as evidence weight for the
// time-independent version of the statement.
func (c Calculus) Eternalize(v Truth) Truth {
	return c.make(v.Frequency, c.W2C(v.Confidence))
}

// Projection decays confidence exponentially with the distance between the
// two times. Eternal truths are returned unchanged.
func (c Calculus) Projection(v Truth, originalTime, targetTime int64) Truth {
	if originalTime == Eternal {
		return v
	}
	diff := float64(targetTime - originalTime)
	return c.make(v.Frequency, v.Confidence*math.Pow(c.ProjectionDecay, math.Abs(diff)))
}

func (c Calculus) Exemplification(v1, v2 Truth) Truth {
	return c.make(1, c.W2C(v1.Frequency*v2.Frequency*v1.Confidence*v2.Confidence))
}

func (c Calculus) Comparison(v1, v2 Truth) Truth {
	f0 := or(v1.Frequency, v2.Frequency)
	f := 0.0
	if f0 != 0 {
		f = v1.Frequency * v2.Frequency / f0
	}
	return c.make(f, c.W2C(f0*v1.Confidence*v2.Confidence))
}

func (c Calculus) Analogy(v1, v2 Truth) Truth {
	return c.make(v1.Frequency*v2.Frequency, v1.Confidence*v2.Confidence*v2.Frequency)
}

func (c Calculus) Resemblance(v1, v2 Truth) Truth {
	return c.make(v1.Frequency*v2.Frequency, v1.Confidence*v2.Confidence*or(v1.Frequency, v2.Frequency))
}

func (c Calculus) Union(v1, v2 Truth) Truth {
	return c.make(or(v1.Frequency, v2.Frequency), v1.Confidence*v2.Confidence)
}

func (c Calculus) Difference(v1, v2 Truth) Truth {
	return c.make(v1.Frequency*(1-v2.Frequency), v1.Confidence*v2.Confidence)
}

// Negation ignores its second argument; it shares the two-premise signature so
// all functions fit one rule table.
func (c Calculus) Negation(v1, _ Truth) Truth {
	return c.make(1-v1.Frequency, v1.Confidence)
}

func (c Calculus) Conversion(v1, _ Truth) Truth {
	return c.make(1, c.W2C(v1.Frequency*v1.Confidence))
}

func (c Calculus) StructuralDeduction(v1, _ Truth) Truth {
	return c.Deduction(v1, c.Structural)
}

func (c Calculus) StructuralAbduction(v1, _ Truth) Truth {
	return c.Abduction(v1, c.Structural)
}
