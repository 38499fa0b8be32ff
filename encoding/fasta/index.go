package fasta

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
)

// GenerateIndex writes the .fai index of the FASTA data read from in.  The
// output is the five column format of "samtools faidx" and can be passed to
// NewIndexed.  Every line of a sequence except the last must have the same
// length.
func GenerateIndex(out io.Writer, in io.Reader) error {
	var (
		w      = tsv.NewWriter(out)
		r      = bufio.NewReader(in)
		rec    faiRecord
		open   bool  // a header has been seen
		short  bool  // the previous line of the current sequence was short
		nread  int64 // bytes consumed so far
		lineNo int
	)
	emit := func() error {
		w.WriteString(rec.Name)
		w.WriteInt64(rec.Length)
		w.WriteInt64(rec.Offset)
		w.WriteInt64(rec.LineBases)
		w.WriteInt64(rec.LineWidth)
		return w.EndLine()
	}
	for {
		raw, err := r.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return errors.E(err, "read FASTA")
		}
		eof := err == io.EOF
		if len(raw) == 0 && eof {
			break
		}
		lineNo++
		nread += int64(len(raw))
		line := bytes.TrimRight(raw, "\r\n")
		switch {
		case len(line) == 0:
		case line[0] == '>':
			if open {
				if err := emit(); err != nil {
					return err
				}
			}
			open, short = true, false
			rec = faiRecord{Name: string(bytes.SplitN(line[1:], []byte(" "), 2)[0]), Offset: nread}
			if rec.Name == "" {
				return errors.E(errors.Invalid, fmt.Sprintf("line %d: empty sequence name", lineNo))
			}
		case !open:
			return errors.E(errors.Invalid, fmt.Sprintf("line %d: sequence data before the first header", lineNo))
		default:
			if rec.LineBases == 0 {
				rec.LineBases, rec.LineWidth = int64(len(line)), int64(len(raw))
			} else if short || int64(len(line)) > rec.LineBases {
				return errors.E(errors.Invalid, fmt.Sprintf("line %d: sequence %s has uneven line lengths", lineNo, rec.Name))
			}
			short = int64(len(line)) < rec.LineBases
			rec.Length += int64(len(line))
		}
		if eof {
			break
		}
	}
	if !open {
		return errors.E(errors.Invalid, "empty FASTA file")
	}
	if err := emit(); err != nil {
		return err
	}
	return w.Flush()
}
