// Package quality generates Phred quality tracks that imitate the positional
// quality profile of short-read sequencers: a short rise, a plateau and a
// decay towards the end of the read.
package quality

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/grailbio/base/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// Tier selects one of the predefined quality profiles.
type Tier uint8

const (
	VeryGood Tier = iota
	Good
	Medium
	Bad
	VeryBad
)

const (
	// MinScore and MaxScore bound every generated score.
	MinScore = 0
	MaxScore = 40
)

type anchors struct {
	name         string
	mean, stddev [5]int
}

// profiles holds the (mean, stddev) anchors at 0%, 10%, 30%, 60% and 100% of
// the read.
var profiles = [...]anchors{
	VeryGood: {"very-good", [5]int{33, 38, 39, 38, 36}, [5]int{2, 1, 1, 1, 5}},
	Good:     {"good", [5]int{32, 37, 38, 37, 32}, [5]int{2, 2, 1, 3, 8}},
	Medium:   {"medium", [5]int{30, 36, 37, 32, 25}, [5]int{4, 3, 2, 6, 8}},
	Bad:      {"bad", [5]int{20, 25, 27, 23, 15}, [5]int{4, 3, 2, 7, 8}},
	VeryBad:  {"very-bad", [5]int{10, 15, 15, 10, 5}, [5]int{4, 3, 2, 8, 8}},
}

// ParseTier accepts "very-good", "good", "medium", "bad" and "very-bad".
func ParseTier(name string) (Tier, error) {
	for i, p := range profiles {
		if p.name == name {
			return Tier(i), nil
		}
	}
	return 0, errors.E(errors.Invalid, fmt.Sprintf("unknown quality range %q", name))
}

func (t Tier) String() string {
	if int(t) < len(profiles) {
		return profiles[t].name
	}
	return fmt.Sprintf("Tier(%d)", t)
}

// Point is the template mean and standard deviation at one read position.
type Point struct {
	Mean, StdDev int
}

// Model produces quality tracks of a fixed length.
type Model struct {
	tier     Tier
	template []Point
}

// New builds the per-position template of a tier for reads of length bases.
func New(length int, tier Tier) (*Model, error) {
	if length < 0 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("read length %d is negative", length))
	}
	if int(tier) >= len(profiles) {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("unknown quality tier %d", tier))
	}
	p := profiles[tier]
	segs := [4]int{length / 10, length * 2 / 10, length * 3 / 10, length * 4 / 10}
	segs[3] += length - (segs[0] + segs[1] + segs[2] + segs[3])

	m := &Model{tier: tier, template: make([]Point, 0, length)}
	for i, n := range segs {
		for j := 0; j < n; j++ {
			m.template = append(m.template, Point{
				Mean:   interpolate(p.mean[i], p.mean[i+1], j, n),
				StdDev: interpolate(p.stddev[i], p.stddev[i+1], j, n),
			})
		}
	}
	return m, nil
}

// interpolate returns the value at step j of n between from and to, truncated
// towards zero.
func interpolate(from, to, j, n int) int {
	return int(float64(from) + float64(to-from)/float64(n)*float64(j))
}

// Tier returns the profile the model was built from.
func (m *Model) Tier() Tier { return m.tier }

// Len returns the track length.
func (m *Model) Len() int { return len(m.template) }


// Generate draws a quality track.  The first score is the template mean; each
// following score moves halfway from the previous score towards the template
// mean, plus gaussian noise, and is clamped to [MinScore, MaxScore].
func (m *Model) Generate(r *rand.Rand) []int {
	q := make([]int, len(m.template))
	noise := distuv.Normal{Mu: 0, Sigma: 1, Src: r}
	for i, p := range m.template {
		if i == 0 {
			q[i] = clamp(p.Mean)
			continue
		}
		q[i] = clamp(attract(q[i-1], p.Mean) + int(math.Round(noise.Rand()*float64(p.StdDev))))
	}
	return q
}

// attract moves prev halfway towards mean, rounding down.
func attract(prev, mean int) int {
	return prev + (mean-prev)>>1
}

func clamp(q int) int {
	return min(MaxScore, max(MinScore, q))
}
