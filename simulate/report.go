package simulate

import (
	"fmt"
	"io"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/readsim/junction"
	"github.com/grailbio/readsim/reference"
)

// ReportPath returns the path of the sampling report of a run.
func ReportPath(basename string) string { return basename + "_sampling_report.tsv" }

// WriteReport writes, for every task, a header block followed by a table of
// how often each sequence or junction was sampled, then a blank line.  Rows
// are sorted by sequence name.
func WriteReport(w io.Writer, tasks []Task) error {
	tw := tsv.NewWriter(w)
	for _, task := range tasks {
		src := task.Source
		switch s := src.(type) {
		case *reference.Set:
			writeHeader(tw, src.Name(), task.Count, len(s.Sequences()))
			writeSetRows(tw, s)
		case *junction.Pool:
			writeHeader(tw, src.Name(), task.Count, len(s.Records()))
			writePoolRows(tw, s)
		default:
			return errors.E(errors.NotSupported, fmt.Sprintf("no report for source %s (%T)", src.Name(), src))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(tw *tsv.Writer, name string, nread, nseq int) {
	tw.WriteString("Source = " + name)
	tw.EndLine() // nolint: errcheck
	tw.WriteString(fmt.Sprintf("Total number of read = %d", nread))
	tw.EndLine() // nolint: errcheck
	tw.WriteString(fmt.Sprintf("Number of sequences = %d", nseq))
	tw.EndLine() // nolint: errcheck
}

func writeSetRows(tw *tsv.Writer, s *reference.Set) {
	seqs := append([]*reference.Sequence(nil), s.Sequences()...)
	sort.Slice(seqs, func(i, j int) bool { return seqs[i].Name < seqs[j].Name })
	for _, col := range []string{"chr", "length", "nb_samp"} {
		tw.WriteString(col)
	}
	tw.EndLine() // nolint: errcheck
	for _, seq := range seqs {
		tw.WriteString(seq.Name)
		tw.WriteInt64(int64(seq.Length))
		tw.WriteInt64(seq.Count())
		tw.EndLine() // nolint: errcheck
	}
}

func writePoolRows(tw *tsv.Writer, p *junction.Pool) {
	recs := append([]*junction.Record(nil), p.Records()...)
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
	for _, col := range []string{
		"junction_id",
		"ref1_source", "ref1_chr", "ref1_loc", "ref1_orientation",
		"ref2_source", "ref2_chr", "ref2_loc", "ref2_orientation",
		"nb_samp"} {
		tw.WriteString(col)
	}
	tw.EndLine() // nolint: errcheck
	for _, rec := range recs {
		tw.WriteString(rec.ID)
		for _, sd := range []junction.Side{rec.Left, rec.Right} {
			tw.WriteString(sd.Source)
			tw.WriteString(sd.SeqName)
			tw.WriteString(fmt.Sprintf("%d-%d", sd.Start, sd.End))
			tw.WriteString(sd.Orientation.String())
		}
		tw.WriteInt64(rec.Count())
		tw.EndLine() // nolint: errcheck
	}
}
