package reference

import (
	"fmt"
	"math/rand/v2"
	"sync/atomic"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/readsim/dna"
	"github.com/grailbio/readsim/encoding/fasta"
)

// MaxAttempts bounds the number of draws SampleSlice makes before giving up.
const MaxAttempts = 100

// Sequence is one member of a Set.
type Sequence struct {
	Name   string
	Length int
	count  int64
}

// Count returns the number of slices drawn from the sequence since the last
// reset.
func (s *Sequence) Count() int64 { return atomic.LoadInt64(&s.count) }

// Weight is one entry of the cumulative sampling distribution of a Set.
type Weight struct {
	Name       string
	Cumulative float64
}

// Set is a named collection of sequences sampled in proportion to their
// lengths.
type Set struct {
	name       string
	store      fasta.Fasta
	seqs       []*Sequence
	byName     map[string]*Sequence
	cumulative []Weight
	maxLen     int
	total      int64
}

// New builds a Set over every sequence of store.
func New(name string, store fasta.Fasta) (*Set, error) {
	s := &Set{name: name, store: store, byName: make(map[string]*Sequence)}
	for _, n := range store.SeqNames() {
		l, err := store.Len(n)
		if err != nil {
			return nil, errors.E(err, name)
		}
		seq := &Sequence{Name: n, Length: l}
		s.seqs = append(s.seqs, seq)
		s.byName[n] = seq
		s.total += int64(l)
		s.maxLen = max(s.maxLen, l)
	}
	if len(s.seqs) == 0 || s.total == 0 {
		return nil, errors.E(errors.Invalid, name, "has no sequence data")
	}
	var cum int64
	s.cumulative = make([]Weight, len(s.seqs))
	for i, seq := range s.seqs {
		cum += int64(seq.Length)
		s.cumulative[i] = Weight{seq.Name, float64(cum) / float64(s.total)}
	}
	s.cumulative[len(s.cumulative)-1].Cumulative = 1
	return s, nil
}

// Name implements Source.
func (s *Set) Name() string { return s.name }

// Chimeric implements Source.
func (s *Set) Chimeric() bool { return false }

// Sequences lists the members in file order.
func (s *Set) Sequences() []*Sequence { return s.seqs }

// Cumulative returns the cumulative length fractions, in file order.  The
// last entry is 1.
func (s *Set) Cumulative() []Weight { return s.cumulative }

// TotalLength is the summed length of all sequences.
func (s *Set) TotalLength() int64 { return s.total }

// Get returns the stored bases of seqName in [start, end).
func (s *Set) Get(seqName string, start, end int) (string, error) {
	return s.store.Get(seqName, start, end)
}

// pick returns the sequence owning a uniform draw on the cumulative list.
func (s *Set) pick(r *rand.Rand) *Sequence {
	u := r.Float64()
	for i, w := range s.cumulative {
		if w.Cumulative > u {
			return s.seqs[i]
		}
	}
	return s.seqs[len(s.seqs)-1]
}

// SampleSlice implements Source.  A sequence is drawn with probability
// proportional to its length; draws of sequences shorter than size are
// retried up to MaxAttempts times.
func (s *Set) SampleSlice(r *rand.Rand, size int) (Slice, error) {
	if size <= 0 {
		return Slice{}, errors.E(errors.Invalid, fmt.Sprintf("%s: slice size %d must be positive", s.name, size))
	}
	if size > s.maxLen {
		return Slice{}, &NoValidSliceError{Source: s.name, Size: size,
			Reason: fmt.Sprintf("longest sequence has %d bases", s.maxLen)}
	}
	for i := 0; i < MaxAttempts; i++ {
		seq := s.pick(r)
		if seq.Length < size {
			continue
		}
		start := r.IntN(seq.Length - size + 1)
		bases, err := s.store.Get(seq.Name, start, start+size)
		if err != nil {
			return Slice{}, errors.E(err, s.name)
		}
		o := dna.RandomOrientation(r)
		atomic.AddInt64(&seq.count, 1)
		return Slice{
			Source:      s,
			SeqName:     seq.Name,
			Start:       start,
			End:         start + size,
			Orientation: o,
			Seq:         dna.Orient(bases, o),
		}, nil
	}
	return Slice{}, &NoValidSliceError{Source: s.name, Size: size, Attempts: MaxAttempts,
		Reason: "every drawn sequence was too short"}
}

// Origin implements Source.  A window of a genome sequence maps onto itself.
func (s *Set) Origin(seqName string, start, end int) ([]Segment, error) {
	seq, ok := s.byName[seqName]
	if !ok {
		return nil, errors.E(errors.NotExist, s.name, "has no sequence", seqName)
	}
	if start < 0 || end > seq.Length || start >= end {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("%s: window %d-%d outside %s (length %d)", s.name, start, end, seqName, seq.Length))
	}
	return []Segment{{ReadStart: 1, ReadEnd: end - start, SeqName: seqName, Start: start, End: end}}, nil
}

// ResetCounters implements Source.
func (s *Set) ResetCounters() {
	for _, seq := range s.seqs {
		atomic.StoreInt64(&seq.count, 0)
	}
}
