// Package sonication models the length distribution of DNA fragments produced
// by shearing as a Beta distribution rescaled to [Min, Max].
package sonication

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/grailbio/base/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// MinCertainty and MaxCertainty bound the concentration parameter.
	MinCertainty = 5
	MaxCertainty = 50
)

// Model draws fragment lengths.  Certainty is alpha+beta of the fitted Beta
// distribution: larger values concentrate lengths around Mode.
type Model struct {
	Min, Mode, Max int
	Certainty      float64

	alpha, beta float64
}

// New fits Beta shape parameters so that the rescaled distribution peaks at
// mode.
func New(min, mode, max int, certainty float64) (*Model, error) {
	if min <= 0 || min > mode || mode > max {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("fragment lengths must satisfy 0 < min <= mode <= max, got %d, %d, %d", min, mode, max))
	}
	if math.IsNaN(certainty) || certainty < MinCertainty || certainty > MaxCertainty {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("certainty %v not in [%d,%d]", certainty, MinCertainty, MaxCertainty))
	}
	m := &Model{Min: min, Mode: mode, Max: max, Certainty: certainty}
	if max > min {
		m.alpha = float64(mode-min)/float64(max-min)*(certainty-2) + 1
		m.beta = certainty - m.alpha
	}
	return m, nil
}

// Alpha returns the first shape parameter.  It is 0 when Min == Max.
func (m *Model) Alpha() float64 { return m.alpha }

// Beta returns the second shape parameter.  It is 0 when Min == Max.
func (m *Model) Beta() float64 { return m.beta }

// Sample draws one fragment length in [Min, Max].
func (m *Model) Sample(r *rand.Rand) int {
	if m.Max == m.Min {
		return m.Min
	}
	x := distuv.Beta{Alpha: m.alpha, Beta: m.beta, Src: r}.Rand()
	return int(math.Round(float64(m.Min) + x*float64(m.Max-m.Min)))
}

// Prob returns the density of fragment lengths at length, per base.
func (m *Model) Prob(length float64) float64 {
	if m.Max == m.Min {
		if length == float64(m.Min) {
			return 1
		}
		return 0
	}
	if length < float64(m.Min) || length > float64(m.Max) {
		return 0
	}
	span := float64(m.Max - m.Min)
	return distuv.Beta{Alpha: m.alpha, Beta: m.beta}.Prob((length-float64(m.Min))/span) / span
}
