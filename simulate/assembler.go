package simulate

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/readsim/quality"
	"github.com/grailbio/readsim/reference"
	"github.com/grailbio/readsim/sampler"
)

// Assembler turns sampled reads into FASTQ-ready reads: it draws a quality
// track for every read and names it after its origin.
type Assembler struct {
	quality *quality.Model
}

// NewAssembler returns an assembler drawing qualities from q.
func NewAssembler(q *quality.Model) *Assembler {
	return &Assembler{quality: q}
}

// IDWidth is the number of digits of read indexes for a source of n reads.
func IDWidth(n int) int { return len(strconv.Itoa(n)) }

// ReadID names read number index of its source:
//
//	host|0042|0|1-150=chr3:1200-1350
//	true_junction|0007|1|1-60=hbv:30-90|61-150=chr3:1200-1290
//
// The third field is 1 for reads drawn from chimeric sources.  The last
// field places the read bases on the original references.
func ReadID(rd *sampler.Read, index, width int) (string, error) {
	segs, err := rd.Source.Origin(rd.SeqName, rd.Start, rd.End)
	if err != nil {
		return "", err
	}
	chimeric := 0
	if rd.Source.Chimeric() {
		chimeric = 1
	}
	return fmt.Sprintf("%s|%0*d|%d|%s", rd.Source.Name(), width, index, chimeric, reference.FormatSegments(segs)), nil
}

// Assemble fills Qual and ID of the reads of one fragment.  Mates share the
// fragment index.
func (a *Assembler) Assemble(r *rand.Rand, frag []*sampler.Read, index, width int) error {
	for _, rd := range frag {
		if len(rd.Seq) != a.quality.Len() {
			return errors.E(errors.Invalid, fmt.Sprintf("read of %d bases does not match the quality model length %d", len(rd.Seq), a.quality.Len()))
		}
		id, err := ReadID(rd, index, width)
		if err != nil {
			return err
		}
		rd.ID = id
		rd.Qual = a.quality.Generate(r)
	}
	return nil
}
