package fasta

import (
	"io"
	"sort"
	"sync"

	"github.com/grailbio/base/tsv"
	"github.com/pkg/errors"
)

// faiRecord is one line of a .fai index.
type faiRecord struct {
	Name      string
	Length    int64
	Offset    int64 // byte offset of the first base
	LineBases int64
	LineWidth int64 // LineBases plus the line terminator
}

type indexedFasta struct {
	index map[string]faiRecord
	names []string
	in    io.ReadSeeker

	mu     sync.Mutex
	winOff int64  // file offset of win[0]
	win    []byte // most recently read window of the file
	out    []byte
}

// minWindow is the smallest chunk read from the underlying file.
const minWindow = 8192

// NewIndexed returns a Fasta that serves bases straight from in, using the
// .fai data in index to locate them.
func NewIndexed(in io.ReadSeeker, index io.Reader) (Fasta, error) {
	f := &indexedFasta{index: make(map[string]faiRecord), in: in}
	r := tsv.NewReader(index)
	for {
		var rec faiRecord
		if err := r.Read(&rec); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrap(err, "invalid index line")
		}
		if rec.Length > 0 && (rec.LineBases <= 0 || rec.LineWidth < rec.LineBases) {
			return nil, errors.Errorf("invalid line geometry for %s: %d bases, %d bytes",
				rec.Name, rec.LineBases, rec.LineWidth)
		}
		f.index[rec.Name] = rec
		f.names = append(f.names, rec.Name)
	}
	sort.SliceStable(f.names, func(i, j int) bool {
		return f.index[f.names[i]].Offset < f.index[f.names[j]].Offset
	})
	return f, nil
}

// Len implements Fasta.Len().
func (f *indexedFasta) Len(seqName string) (int, error) {
	rec, ok := f.index[seqName]
	if !ok {
		return 0, errors.Errorf("sequence not found: %s", seqName)
	}
	return int(rec.Length), nil
}

// SeqNames implements Fasta.SeqNames().
func (f *indexedFasta) SeqNames() []string {
	return f.names
}

// fileOffset is the byte position of base pos of rec.
func (rec faiRecord) fileOffset(pos int64) int64 {
	return rec.Offset + (pos/rec.LineBases)*rec.LineWidth + pos%rec.LineBases
}

// load makes sure [off, off+n) is inside the cached window and returns it.
// REQUIRES: f.mu is held.
func (f *indexedFasta) load(off int64, n int) ([]byte, error) {
	if off >= f.winOff && off+int64(n) <= f.winOff+int64(len(f.win)) {
		return f.win[off-f.winOff : off-f.winOff+int64(n)], nil
	}
	if _, err := f.in.Seek(off, io.SeekStart); err != nil {
		return nil, errors.Wrapf(err, "seek to %d", off)
	}
	size := n
	if size < minWindow {
		size = minWindow
	}
	if cap(f.win) < size {
		f.win = make([]byte, size)
	}
	f.win = f.win[:size]
	got, err := io.ReadFull(f.in, f.win)
	if got < n {
		f.win = f.win[:0]
		if err == nil || err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, errors.Errorf("unexpected end of file at offset %d (stale index?)", off+int64(got))
		}
		return nil, err
	}
	f.winOff = off
	f.win = f.win[:got]
	return f.win[:n], nil
}

// Get implements Fasta.Get().
func (f *indexedFasta) Get(seqName string, start, end int) (string, error) {
	rec, ok := f.index[seqName]
	if !ok {
		return "", errors.Errorf("sequence not found: %s", seqName)
	}
	if err := checkRange(seqName, start, end, int(rec.Length)); err != nil {
		return "", err
	}
	first := rec.fileOffset(int64(start))
	last := rec.fileOffset(int64(end - 1))

	f.mu.Lock()
	defer f.mu.Unlock()
	raw, err := f.load(first, int(last-first+1))
	if err != nil {
		return "", err
	}
	f.out = f.out[:0]
	col := (first - rec.Offset) % rec.LineWidth
	for _, b := range raw {
		if col < rec.LineBases {
			f.out = append(f.out, b)
		}
		if col++; col == rec.LineWidth {
			col = 0
		}
	}
	return string(f.out), nil
}
