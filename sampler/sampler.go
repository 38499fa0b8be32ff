// Package sampler draws reads from a reference.Source: single reads of a fixed
// length, or read pairs from both ends of a fragment whose length follows a
// sonication model.
package sampler

import (
	"fmt"
	"math/rand/v2"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/readsim/dna"
	"github.com/grailbio/readsim/mutation"
	"github.com/grailbio/readsim/reference"
)

// Mate tags the reads of a pair.
type Mate uint8

const (
	// Unpaired marks reads of single-end runs.
	Unpaired Mate = iota
	R1
	R2
)

func (m Mate) String() string {
	switch m {
	case R1:
		return "R1"
	case R2:
		return "R2"
	}
	return ""
}

// Read is one simulated read and where it was drawn from.
type Read struct {
	Seq  string
	Mate Mate
	// Source, SeqName, Start, End and Orientation locate the read on the
	// sequence it was sliced from.  For junction reads SeqName names the
	// junction, not a chromosome.
	Source      reference.Source
	SeqName     string
	Start, End  int
	Orientation dna.Orientation
	// FragmentLength is the read length for unpaired reads.
	FragmentLength int
	PairOverlap    int
	Mutations      []mutation.Mutation

	// Qual and ID are filled in by the read assembler.
	Qual []int
	ID   string
}

// Opts configures both sampler variants.
type Opts struct {
	// ReadLength is the length of every read.
	ReadLength int
	// Alphabet lists the bases a read may contain.
	Alphabet dna.Alphabet
	// Mutation is applied to every read after it passes the alphabet check.
	Mutation mutation.Model
}

// Sampler draws the reads of one sequenced fragment.
type Sampler interface {
	// Sample returns one read (single-end) or two mates (paired-end).
	Sample(r *rand.Rand, src reference.Source) ([]*Read, error)
	// Paired reports whether Sample returns mate pairs.
	Paired() bool
	// ReadLength is the length of every returned read.
	ReadLength() int
}

// retry calls draw until it accepts a slice, it fails, or MaxAttempts draws
// have been rejected.  draw rejects a slice by returning a non-nil reason.
// A source that has no slice of the drawn size rejects the draw too, so that
// samplers drawing a new size on every attempt get another chance.
func retry(src reference.Source, size int, draw func() (reject, err error)) error {
	var last error
	for i := 0; i < reference.MaxAttempts; i++ {
		reject, err := draw()
		if nv, ok := err.(*reference.NoValidSliceError); ok {
			reject, err = nv, nil
		}
		if err != nil {
			return err
		}
		if reject == nil {
			return nil
		}
		last = reject
	}
	reason := last.Error()
	if nv, ok := last.(*reference.NoValidSliceError); ok {
		reason = nv.Reason
	}
	return &reference.NoValidSliceError{
		Source:   src.Name(),
		Size:     size,
		Attempts: reference.MaxAttempts,
		Reason:   "last draw: " + reason,
	}
}

func (o *Opts) validate() error {
	if o.ReadLength <= 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("read length %d must be positive", o.ReadLength))
	}
	return nil
}

// Single samples single-end reads.
type Single struct {
	opts Opts
}

// NewSingle returns a single-end sampler.
func NewSingle(opts Opts) (*Single, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Single{opts: opts}, nil
}

// Paired implements Sampler.
func (s *Single) Paired() bool { return false }

// ReadLength implements Sampler.
func (s *Single) ReadLength() int { return s.opts.ReadLength }

// PickSlice draws a ReadLength slice of src whose bases are all in the
// alphabet.  The slice is not mutated.
func (s *Single) PickSlice(r *rand.Rand, src reference.Source) (reference.Slice, error) {
	var sl reference.Slice
	err := retry(src, s.opts.ReadLength, func() (error, error) {
		var err error
		if sl, err = src.SampleSlice(r, s.opts.ReadLength); err != nil {
			return nil, err
		}
		return s.opts.Alphabet.Check(sl.Seq), nil
	})
	return sl, err
}

// Sample implements Sampler.
func (s *Single) Sample(r *rand.Rand, src reference.Source) ([]*Read, error) {
	sl, err := s.PickSlice(r, src)
	if err != nil {
		return nil, err
	}
	seq, muts := s.opts.Mutation.Apply(r, sl.Seq)
	return []*Read{{
		Seq:            seq,
		Mate:           Unpaired,
		Source:         src,
		SeqName:        sl.SeqName,
		Start:          sl.Start,
		End:            sl.End,
		Orientation:    sl.Orientation,
		FragmentLength: sl.Len(),
		Mutations:      muts,
	}}, nil
}
