// Package fasta loads reference sequences from FASTA files, either fully into
// memory or lazily through a samtools-style .fai index.  See
// http://www.htslib.org/doc/faidx.html.  A FASTA file is a series of named
// sequences, each possibly wrapped over several lines:
//
// >chr7
// ACGTAC
// GAGGAC
// GCG
// >hbv
// ACGT
//
// A sequence name is the text after '>' up to the first space, so
// '>hbv genotype D' is named 'hbv'.  Soft-masked (lowercase) bases are kept as
// is.
package fasta

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// maxLineLength bounds a single FASTA line.  Unwrapped chromosomes are long.
const maxLineLength = 1024 * 1024 * 300

// Fasta is a collection of named sequences.  Implementations are safe for
// concurrent use.
type Fasta interface {
	// Get returns the bases of seqName in the 0-based half-open range
	// [start, end).
	Get(seqName string, start, end int) (string, error)

	// Len returns the number of bases of seqName.
	Len(seqName string) (int, error)

	// SeqNames lists the sequence names in file order.
	SeqNames() []string
}

type memFasta struct {
	seqs  map[string]string
	names []string
}

// New reads every sequence of r into memory.
func New(r io.Reader) (Fasta, error) {
	f := &memFasta{seqs: make(map[string]string)}
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, maxLineLength)
	var (
		name   string
		inSeq  bool
		buf    strings.Builder
		lineNo int
	)
	add := func() error {
		if _, dup := f.seqs[name]; dup {
			return errors.Errorf("duplicate sequence name %q", name)
		}
		f.seqs[name] = buf.String()
		f.names = append(f.names, name)
		buf.Reset()
		return nil
	}
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if inSeq {
				if err := add(); err != nil {
					return nil, err
				}
			}
			name = strings.SplitN(line[1:], " ", 2)[0]
			if name == "" {
				return nil, errors.Errorf("line %d: empty sequence name", lineNo)
			}
			inSeq = true
			continue
		}
		if !inSeq {
			return nil, errors.Errorf("line %d: sequence data before the first header", lineNo)
		}
		buf.WriteString(line)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "couldn't read FASTA data")
	}
	if !inSeq {
		return nil, errors.Errorf("no sequences in FASTA data")
	}
	if err := add(); err != nil {
		return nil, err
	}
	return f, nil
}

// Get implements Fasta.Get().
func (f *memFasta) Get(seqName string, start, end int) (string, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return "", errors.Errorf("sequence not found: %s", seqName)
	}
	if err := checkRange(seqName, start, end, len(s)); err != nil {
		return "", err
	}
	return s[start:end], nil
}

// Len implements Fasta.Len().
func (f *memFasta) Len(seqName string) (int, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return 0, errors.Errorf("sequence not found: %s", seqName)
	}
	return len(s), nil
}

// SeqNames implements Fasta.SeqNames().
func (f *memFasta) SeqNames() []string {
	return f.names
}

func checkRange(seqName string, start, end, length int) error {
	if end <= start {
		return errors.Errorf("start must be less than end")
	}
	if start < 0 || end > length {
		return errors.Errorf("invalid query range %d - %d for sequence %s with length %d",
			start, end, seqName, length)
	}
	return nil
}
