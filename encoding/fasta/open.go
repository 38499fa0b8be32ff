package fasta

import (
	"bufio"
	"context"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/klauspost/compress/gzip"
)

// File is a Fasta opened from a path.
type File struct {
	Fasta
	// Path is the path the sequences were read from.
	Path string
	// Indexed is true when bases are served lazily through a .fai index.
	Indexed bool

	f file.File
}

// IndexPath returns the conventional .fai path for a FASTA path.
func IndexPath(path string) string { return path + ".fai" }

// IsGzip reports whether the stream starts with the gzip magic bytes.
func IsGzip(r *bufio.Reader) bool {
	magic, err := r.Peek(2)
	return err == nil && magic[0] == 0x1f && magic[1] == 0x8b
}

// Open loads the FASTA file at path.  Gzip-compressed files are detected by
// content and loaded into memory.  An uncompressed file with a sibling .fai
// index is opened lazily and must be closed with Close; every other file is
// read into memory.
func Open(ctx context.Context, path string) (*File, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "open FASTA", path)
	}
	rs := in.Reader(ctx)
	br := bufio.NewReader(rs)
	if !IsGzip(br) {
		if fa, err := openIndexed(ctx, path, rs); err != nil {
			_ = in.Close(ctx)
			return nil, err
		} else if fa != nil {
			return &File{Fasta: fa, Path: path, Indexed: true, f: in}, nil
		}
	}
	fa, err := readAll(br)
	if closeErr := in.Close(ctx); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, errors.E(err, "read FASTA", path)
	}
	return &File{Fasta: fa, Path: path}, nil
}

// openIndexed returns nil, nil when path has no index.
func openIndexed(ctx context.Context, path string, rs io.ReadSeeker) (Fasta, error) {
	idxPath := IndexPath(path)
	if _, err := file.Stat(ctx, idxPath); err != nil {
		log.Debug.Printf("%s: no index (%v), loading into memory", path, err)
		return nil, nil
	}
	idx, err := file.Open(ctx, idxPath)
	if err != nil {
		return nil, errors.E(err, "open index", idxPath)
	}
	defer idx.Close(ctx) // nolint: errcheck
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, errors.E(err, "rewind", path)
	}
	fa, err := NewIndexed(rs, idx.Reader(ctx))
	if err != nil {
		return nil, errors.E(err, "read index", idxPath)
	}
	log.Debug.Printf("%s: using index %s", path, idxPath)
	return fa, nil
}

func readAll(br *bufio.Reader) (Fasta, error) {
	if !IsGzip(br) {
		return New(br)
	}
	gz, err := gzip.NewReader(br)
	if err != nil {
		return nil, err
	}
	defer gz.Close() // nolint: errcheck
	return New(gz)
}

// Close releases the file behind an indexed Fasta.  It is a no-op for
// in-memory sequences.
func (f *File) Close(ctx context.Context) error {
	if f.f == nil {
		return nil
	}
	err := f.f.Close(ctx)
	f.f = nil
	return err
}
