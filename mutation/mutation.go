// Package mutation injects random point substitutions into read sequences.
package mutation

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/readsim/dna"
)

// Mutation records one substitution.  Pos is 1-based.
type Mutation struct {
	Pos      int
	From, To byte
}

func (m Mutation) String() string {
	return fmt.Sprintf("Pos %d %c -> %c", m.Pos, m.From, m.To)
}

// Model substitutes each base independently with a fixed probability.
type Model struct {
	freq float64
}

// New returns a model mutating each base with probability freq.
func New(freq float64) (Model, error) {
	if math.IsNaN(freq) || freq < 0 || freq > 1 {
		return Model{}, errors.E(errors.Invalid, fmt.Sprintf("mutation frequency %v not in [0,1]", freq))
	}
	return Model{freq: freq}, nil
}

// Frequency returns the per-base mutation probability.
func (m Model) Frequency() float64 { return m.freq }

// replacements[b] lists the unambiguous bases a mutation of b may produce.
var replacements [256][]byte

func init() {
	for i := range replacements {
		up := byte(i)
		if 'a' <= up && up <= 'z' {
			up -= 'a' - 'A'
		}
		for _, c := range []byte(dna.Unambiguous) {
			if c != up {
				replacements[i] = append(replacements[i], c)
			}
		}
	}
}

// Apply returns seq with every position replaced, with probability
// Frequency, by a different unambiguous base chosen uniformly.  The
// comparison ignores case, so 'a' never becomes 'A'.  The log lists the
// substitutions in position order.
func (m Model) Apply(r *rand.Rand, seq string) (string, []Mutation) {
	if m.freq == 0 || len(seq) == 0 {
		return seq, nil
	}
	var (
		out  []byte
		muts []Mutation
	)
	for i := 0; i < len(seq); i++ {
		if r.Float64() >= m.freq {
			continue
		}
		if out == nil {
			out = []byte(seq)
		}
		cands := replacements[seq[i]]
		to := cands[r.IntN(len(cands))]
		out[i] = to
		muts = append(muts, Mutation{Pos: i + 1, From: seq[i], To: to})
	}
	if out == nil {
		return seq, nil
	}
	return string(out), muts
}
