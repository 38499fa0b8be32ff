// Package fastq writes simulated reads as FASTQ records.
package fastq

import (
	"io"

	"github.com/grailbio/base/errors"
)

// Record is one FASTQ entry.  Qual holds Phred scores, one per base of Seq.
type Record struct {
	ID   string
	Seq  string
	Qual []int
}

// Writer is a FASTQ file writer.  The first error sticks: later writes are
// no-ops that return it.
type Writer struct {
	w     io.Writer
	scale Scale
	buf   []byte
	err   error
}

// NewWriter constructs a new FASTQ writer that writes records to w with
// qualities encoded on the given scale.
func NewWriter(w io.Writer, scale Scale) *Writer {
	return &Writer{w: w, scale: scale}
}

// Write writes r as "@ID\nSeq\n+\nQual\n".
func (w *Writer) Write(r *Record) error {
	if w.err != nil {
		return w.err
	}
	if len(r.Seq) != len(r.Qual) {
		w.err = errors.E(errors.Invalid, "read", r.ID, "has mismatched sequence and quality lengths")
		return w.err
	}
	b := w.buf[:0]
	b = append(b, '@')
	b = append(b, r.ID...)
	b = append(b, '\n')
	b = append(b, r.Seq...)
	b = append(b, "\n+\n"...)
	b = w.scale.Encode(b, r.Qual)
	b = append(b, '\n')
	w.buf = b
	_, w.err = w.w.Write(b)
	return w.err
}

// Err returns the first error encountered by Write.
func (w *Writer) Err() error { return w.err }
