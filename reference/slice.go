// Package reference implements length-weighted sampling of slices from a set
// of named sequences, and the types shared by every sequence source the
// simulator draws reads from.
package reference

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/grailbio/readsim/dna"
)

// Source is a collection of sequences that slices can be drawn from.
// Implementations are safe for concurrent use as long as each goroutine
// passes its own *rand.Rand.
type Source interface {
	// Name identifies the source in read names and reports, e.g. "host".
	Name() string
	// SampleSlice draws one slice of exactly size bases.
	SampleSlice(r *rand.Rand, size int) (Slice, error)
	// Origin maps the window [start, end) of sequence seqName back to the
	// genomic coordinates it was built from.
	Origin(seqName string, start, end int) ([]Segment, error)
	// Chimeric is true for sources whose sequences join two references.
	Chimeric() bool
	// ResetCounters zeroes the per-sequence sample counters.
	ResetCounters()
}

// Slice is a window [Start, End) of one sequence of a Source.  Seq holds the
// bases as read on Orientation: the reverse complement of the stored bases
// when Orientation is dna.Reverse.
type Slice struct {
	Source      Source
	SeqName     string
	Start, End  int
	Orientation dna.Orientation
	Seq         string
}

// Len returns the number of bases in the slice.
func (s *Slice) Len() int { return s.End - s.Start }

// Segment places part of a read on a reference sequence.  ReadStart and
// ReadEnd are 1-based inclusive positions in the read; Start and End are a
// 0-based half-open range on SeqName.
type Segment struct {
	ReadStart, ReadEnd int
	SeqName            string
	Start, End         int
}

// String formats the segment as "1-75=chr3:1200-1275".
func (s Segment) String() string {
	return fmt.Sprintf("%d-%d=%s:%d-%d", s.ReadStart, s.ReadEnd, s.SeqName, s.Start, s.End)
}

// FormatSegments joins segments with '|'.
func FormatSegments(segs []Segment) string {
	var b strings.Builder
	for i, s := range segs {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// NoValidSliceError is returned when a source or a sampler finds no slice of
// the requested size.  Attempts is zero when no draw could succeed.
type NoValidSliceError struct {
	Source   string
	Size     int
	Attempts int
	Reason   string
}

func (e *NoValidSliceError) Error() string {
	if e.Attempts == 0 {
		return fmt.Sprintf("%s: no valid slice of %d bases: %s", e.Source, e.Size, e.Reason)
	}
	return fmt.Sprintf("%s: no valid slice of %d bases after %d attempts: %s",
		e.Source, e.Size, e.Attempts, e.Reason)
}
