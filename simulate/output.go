package simulate

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/readsim/encoding/fastq"
	"github.com/grailbio/readsim/sampler"
	"github.com/klauspost/compress/gzip"
)

// FASTQPaths returns the FASTQ files of a run: one for single-end runs, R1
// then R2 for paired-end runs.
func FASTQPaths(basename string, paired, compress bool) []string {
	ext := ".fastq"
	if compress {
		ext += ".gz"
	}
	if !paired {
		return []string{basename + ext}
	}
	return []string{basename + ".R1" + ext, basename + ".R2" + ext}
}

type output struct {
	path string
	f    file.File
	gz   *gzip.Writer
	buf  *bufio.Writer
	w    *fastq.Writer
}

// FASTQOutput is a Sink writing mate i of every fragment to file i.
type FASTQOutput struct {
	outs []*output
}

// CreateFASTQOutput creates the files named by FASTQPaths.
func CreateFASTQOutput(ctx context.Context, basename string, paired, compress bool, scale fastq.Scale) (*FASTQOutput, error) {
	o := &FASTQOutput{}
	for _, path := range FASTQPaths(basename, paired, compress) {
		f, err := file.Create(ctx, path)
		if err != nil {
			_ = o.Close(ctx)
			return nil, errors.E(err, "create", path)
		}
		out := &output{path: path, f: f}
		var w io.Writer = f.Writer(ctx)
		if compress {
			out.gz = gzip.NewWriter(w)
			w = out.gz
		}
		out.buf = bufio.NewWriterSize(w, 1<<20)
		out.w = fastq.NewWriter(out.buf, scale)
		o.outs = append(o.outs, out)
	}
	return o, nil
}

// Paths lists the files being written.
func (o *FASTQOutput) Paths() []string {
	paths := make([]string, len(o.outs))
	for i, out := range o.outs {
		paths[i] = out.path
	}
	return paths
}

// Write implements Sink.
func (o *FASTQOutput) Write(frag []*sampler.Read) error {
	if len(frag) != len(o.outs) {
		return errors.E(errors.Invalid, fmt.Sprintf("fragment has %d reads, expected %d", len(frag), len(o.outs)))
	}
	for i, rd := range frag {
		if err := o.outs[i].w.Write(&fastq.Record{ID: rd.ID, Seq: rd.Seq, Qual: rd.Qual}); err != nil {
			return errors.E(err, "write", o.outs[i].path)
		}
	}
	return nil
}

// Close flushes and closes every file.  It reports the first error.
func (o *FASTQOutput) Close(ctx context.Context) error {
	var err errors.Once
	for _, out := range o.outs {
		if out.buf != nil {
			err.Set(out.buf.Flush())
		}
		if out.gz != nil {
			err.Set(out.gz.Close())
		}
		err.Set(out.f.Close(ctx))
	}
	o.outs = nil
	return err.Err()
}
