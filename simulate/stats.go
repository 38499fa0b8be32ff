package simulate

import (
	"sort"

	"github.com/grailbio/readsim/junction"
	"github.com/grailbio/readsim/sampler"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes a run.
type Stats struct {
	// Fragments counts the reads (single-end) or pairs (paired-end) per source.
	Fragments map[string]int64
	// Reads counts every written read, mates included.
	Reads int64
	// Mutations counts the substitutions introduced in all reads.
	Mutations int64
	// FragmentLengths is a histogram of fragment lengths.
	FragmentLengths map[int]int64
	// JunctionCoverage counts, for every position of a junction, the reads
	// covering it.  The breakpoint sits in the middle.
	JunctionCoverage []int64
}

func newStats() Stats {
	return Stats{Fragments: map[string]int64{}, FragmentLengths: map[int]int64{}}
}

// add accounts for the reads of one fragment.
func (s *Stats) add(frag []*sampler.Read) {
	if len(frag) == 0 {
		return
	}
	src := frag[0].Source
	s.Fragments[src.Name()]++
	s.FragmentLengths[frag[0].FragmentLength]++
	pool, isJunction := src.(*junction.Pool)
	if isJunction && len(s.JunctionCoverage) < 2*pool.HalfLength() {
		s.JunctionCoverage = append(s.JunctionCoverage, make([]int64, 2*pool.HalfLength()-len(s.JunctionCoverage))...)
	}
	for _, rd := range frag {
		s.Reads++
		s.Mutations += int64(len(rd.Mutations))
		if isJunction {
			for i := rd.Start; i < rd.End; i++ {
				s.JunctionCoverage[i]++
			}
		}
	}
}

// Merge adds the counts of o to s.
func (s *Stats) Merge(o Stats) {
	if s.Fragments == nil {
		s.Fragments = map[string]int64{}
	}
	if s.FragmentLengths == nil {
		s.FragmentLengths = map[int]int64{}
	}
	for k, v := range o.Fragments {
		s.Fragments[k] += v
	}
	for k, v := range o.FragmentLengths {
		s.FragmentLengths[k] += v
	}
	s.Reads += o.Reads
	s.Mutations += o.Mutations
	if n := len(o.JunctionCoverage); n > len(s.JunctionCoverage) {
		s.JunctionCoverage = append(s.JunctionCoverage, make([]int64, n-len(s.JunctionCoverage))...)
	}
	for i, v := range o.JunctionCoverage {
		s.JunctionCoverage[i] += v
	}
}

// FragmentLengthHistogram returns the observed lengths in increasing order
// and how often each was drawn.
func (s *Stats) FragmentLengthHistogram() (lengths, counts []float64) {
	keys := make([]int, 0, len(s.FragmentLengths))
	for l := range s.FragmentLengths {
		keys = append(keys, l)
	}
	sort.Ints(keys)
	for _, l := range keys {
		lengths = append(lengths, float64(l))
		counts = append(counts, float64(s.FragmentLengths[l]))
	}
	return lengths, counts
}

// FragmentLengthMoments returns the mean and standard deviation of fragment
// lengths.
func (s *Stats) FragmentLengthMoments() (mean, stddev float64) {
	lengths, counts := s.FragmentLengthHistogram()
	if len(lengths) == 0 {
		return 0, 0
	}
	if len(lengths) == 1 {
		return lengths[0], 0
	}
	return stat.MeanStdDev(lengths, counts)
}
