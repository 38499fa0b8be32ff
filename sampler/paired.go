package sampler

import (
	"fmt"
	"math/rand/v2"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/readsim/dna"
	"github.com/grailbio/readsim/reference"
	"github.com/grailbio/readsim/sonication"
)

// Paired samples read pairs.  R1 is read from the start of the fragment and R2
// from the reverse strand of its end.
type Paired struct {
	opts  Opts
	sonic *sonication.Model
}

// NewPaired returns a paired-end sampler drawing fragment lengths from sonic.
// Every fragment must be able to hold one read.
func NewPaired(opts Opts, sonic *sonication.Model) (*Paired, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if sonic == nil {
		return nil, errors.E(errors.Invalid, "paired-end sampling needs a sonication model")
	}
	if opts.ReadLength > sonic.Min {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("read length %d exceeds the minimum fragment length %d", opts.ReadLength, sonic.Min))
	}
	return &Paired{opts: opts, sonic: sonic}, nil
}

// Paired implements Sampler.
func (p *Paired) Paired() bool { return true }

// ReadLength implements Sampler.
func (p *Paired) ReadLength() int { return p.opts.ReadLength }

// PairOverlap returns the number of bases covered by both mates of a fragment.
func PairOverlap(readLength, fragmentLength int) int {
	return max(0, 2*readLength-fragmentLength)
}

// Sample implements Sampler.  It returns R1 then R2.
func (p *Paired) Sample(r *rand.Rand, src reference.Source) ([]*Read, error) {
	n := p.opts.ReadLength
	var (
		frag     reference.Slice
		fwd, rev string
	)
	err := retry(src, p.sonic.Max, func() (error, error) {
		var err error
		if frag, err = src.SampleSlice(r, p.sonic.Sample(r)); err != nil {
			return nil, err
		}
		fwd = frag.Seq[:n]
		rev = dna.ReverseComp(frag.Seq[frag.Len()-n:])
		if err := p.opts.Alphabet.Check(fwd); err != nil {
			return err, nil
		}
		return p.opts.Alphabet.Check(rev), nil
	})
	if err != nil {
		return nil, err
	}

	r1 := p.mate(R1, frag, fwd)
	r2 := p.mate(R2, frag, rev)
	head, tail := [2]int{frag.Start, frag.Start + n}, [2]int{frag.End - n, frag.End}
	if frag.Orientation == dna.Reverse {
		head, tail = tail, head
	}
	r1.Start, r1.End, r1.Orientation = head[0], head[1], frag.Orientation
	r2.Start, r2.End, r2.Orientation = tail[0], tail[1], frag.Orientation.Flip()
	r1.Seq, r1.Mutations = p.opts.Mutation.Apply(r, r1.Seq)
	r2.Seq, r2.Mutations = p.opts.Mutation.Apply(r, r2.Seq)
	return []*Read{r1, r2}, nil
}

func (p *Paired) mate(m Mate, frag reference.Slice, seq string) *Read {
	return &Read{
		Seq:            seq,
		Mate:           m,
		Source:         frag.Source,
		SeqName:        frag.SeqName,
		FragmentLength: frag.Len(),
		PairOverlap:    PairOverlap(p.opts.ReadLength, frag.Len()),
	}
}
