// Package junction builds pools of synthetic chimeric sequences, each the
// concatenation of a slice of one reference with a slice of another, and
// samples windows that straddle the breakpoint.
package junction

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync/atomic"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/readsim/dna"
	"github.com/grailbio/readsim/reference"
	"github.com/grailbio/readsim/sampler"
)

// Side records where one half of a junction was taken from.
type Side struct {
	Source      string
	SeqName     string
	Start, End  int
	Orientation dna.Orientation
}

// Record is one chimeric sequence: Left.End-Left.Start bases of the left
// reference followed by as many bases of the right reference.
type Record struct {
	ID          string
	Seq         string
	Left, Right Side
	count       int64
}

// Count returns the number of slices drawn from the junction since the last
// reset.
func (r *Record) Count() int64 { return atomic.LoadInt64(&r.count) }

// Opts configures Build.
type Opts struct {
	// Name identifies the pool, e.g. "true_junction".
	Name string
	// Count is the number of junctions to build.
	Count int
	// HalfLength is the number of bases taken from each reference.
	HalfLength int
	// MinChimeric is the minimum number of bases a sampled window must cover
	// on each side of the breakpoint.
	MinChimeric int
	// Alphabet constrains the bases of both halves.
	Alphabet dna.Alphabet
}

// Pool is an immutable set of junctions.  It implements reference.Source.
type Pool struct {
	name        string
	halfLen     int
	minChimeric int
	records     []*Record
	byID        map[string]*Record
}

var _ reference.Source = (*Pool)(nil)

// Build draws opts.Count junctions, the left half from left and the right half
// from right.  Counters of left and right are reset afterwards so that
// building does not show up in their sampling reports.
func Build(r *rand.Rand, opts Opts, left, right reference.Source) (*Pool, error) {
	if opts.Count < 0 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("%s: negative junction count %d", opts.Name, opts.Count))
	}
	if opts.MinChimeric < 0 || opts.HalfLength < opts.MinChimeric {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("%s: half length %d must be at least min chimeric %d >= 0",
			opts.Name, opts.HalfLength, opts.MinChimeric))
	}
	picker, err := sampler.NewSingle(sampler.Opts{ReadLength: opts.HalfLength, Alphabet: opts.Alphabet})
	if err != nil {
		return nil, errors.E(err, opts.Name)
	}
	p := &Pool{
		name:        opts.Name,
		halfLen:     opts.HalfLength,
		minChimeric: opts.MinChimeric,
		records:     make([]*Record, 0, opts.Count),
		byID:        make(map[string]*Record, opts.Count),
	}
	width := len(strconv.Itoa(opts.Count))
	for i := 0; i < opts.Count; i++ {
		s1, err := picker.PickSlice(r, left)
		if err != nil {
			return nil, err
		}
		s2, err := picker.PickSlice(r, right)
		if err != nil {
			return nil, err
		}
		rec := &Record{
			ID:    fmt.Sprintf("Junction_%0*d", width, i),
			Seq:   s1.Seq + s2.Seq,
			Left:  side(left, s1),
			Right: side(right, s2),
		}
		p.records = append(p.records, rec)
		p.byID[rec.ID] = rec
	}
	left.ResetCounters()
	right.ResetCounters()
	return p, nil
}

func side(src reference.Source, s reference.Slice) Side {
	return Side{Source: src.Name(), SeqName: s.SeqName, Start: s.Start, End: s.End, Orientation: s.Orientation}
}

// Name implements reference.Source.
func (p *Pool) Name() string { return p.name }

// Chimeric implements reference.Source.
func (p *Pool) Chimeric() bool { return true }

// HalfLength is the position of the breakpoint in every junction.
func (p *Pool) HalfLength() int { return p.halfLen }

// MinChimeric is the minimum overlap of sampled windows on each side.
func (p *Pool) MinChimeric() int { return p.minChimeric }

// Records lists the junctions in identifier order.
func (p *Pool) Records() []*Record { return p.records }

// Record returns the junction with the given identifier.
func (p *Pool) Record(id string) (*Record, bool) {
	rec, ok := p.byID[id]
	return rec, ok
}

// SampleSlice implements reference.Source.  The junction is chosen uniformly
// and the window covers at least MinChimeric bases on each side of the
// breakpoint.
func (p *Pool) SampleSlice(r *rand.Rand, size int) (reference.Slice, error) {
	if size < 2*p.minChimeric {
		return reference.Slice{}, errors.E(errors.Invalid, fmt.Sprintf(
			"%s: slice of %d bases cannot cover %d chimeric bases on each side; review min chimeric or read length",
			p.name, size, p.minChimeric))
	}
	if size > p.halfLen {
		return reference.Slice{}, errors.E(errors.Invalid, fmt.Sprintf(
			"%s: slice of %d bases is longer than the junction halves (%d); review the maximal sonication size",
			p.name, size, p.halfLen))
	}
	if len(p.records) == 0 {
		return reference.Slice{}, errors.E(errors.Invalid, p.name, "has no junctions")
	}
	rec := p.records[r.IntN(len(p.records))]
	lo := p.halfLen + p.minChimeric - size
	hi := p.halfLen - p.minChimeric
	start := lo + r.IntN(hi-lo+1)
	end := start + size
	o := dna.RandomOrientation(r)
	atomic.AddInt64(&rec.count, 1)
	return reference.Slice{
		Source:      p,
		SeqName:     rec.ID,
		Start:       start,
		End:         end,
		Orientation: o,
		Seq:         dna.Orient(rec.Seq[start:end], o),
	}, nil
}

// Origin implements reference.Source.  The window [start, end) of junction id
// maps to one segment when it lies on one side of the breakpoint and to two
// segments, left then right, when it straddles it.
func (p *Pool) Origin(id string, start, end int) ([]reference.Segment, error) {
	rec, ok := p.byID[id]
	if !ok {
		return nil, errors.E(errors.NotExist, p.name, "has no junction", id)
	}
	if start < 0 || end > 2*p.halfLen || start >= end {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("%s: window %d-%d outside junction %s", p.name, start, end, id))
	}
	h := p.halfLen
	switch {
	case end <= h:
		return []reference.Segment{rec.Left.segment(1, start, end)}, nil
	case start >= h:
		return []reference.Segment{rec.Right.segment(1, start-h, end-h)}, nil
	}
	return []reference.Segment{
		rec.Left.segment(1, start, h),
		rec.Right.segment(h-start+1, 0, end-h),
	}, nil
}

// segment maps [s, e), relative to the start of the half as stored in the
// junction, onto the reference.  readStart is the 1-based read position of s.
func (sd Side) segment(readStart, s, e int) reference.Segment {
	seg := reference.Segment{ReadStart: readStart, ReadEnd: readStart + e - s - 1, SeqName: sd.SeqName}
	if sd.Orientation == dna.Forward {
		seg.Start, seg.End = sd.Start+s, sd.Start+e
	} else {
		seg.Start, seg.End = sd.End-e, sd.End-s
	}
	return seg
}

// ResetCounters implements reference.Source.
func (p *Pool) ResetCounters() {
	for _, rec := range p.records {
		atomic.StoreInt64(&rec.count, 0)
	}
}
