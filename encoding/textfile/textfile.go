// Package textfile opens line-oriented inputs, transparently decompressing
// gzip files, and maps a missing file onto phas.InputNotFound.
package textfile

import (
	"context"
	"io"
	"os"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/phasmerge/phas"
	"github.com/klauspost/compress/gzip"
)

// Reader is an open input.  Read returns decompressed data.
type Reader struct {
	io.Reader
	ctx  context.Context
	path string
	in   file.File
	gz   *gzip.Reader
}

// Open opens path.  Files whose name marks them as gzip (".gz") are
// decompressed.
func Open(ctx context.Context, path string) (*Reader, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(errors.NotExist, err) {
			return nil, phas.E(phas.InputNotFound, path, err)
		}
		return nil, errors.E(err, "open "+path)
	}
	r := &Reader{ctx: ctx, path: path, in: in, Reader: in.Reader(ctx)}
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if r.gz, err = gzip.NewReader(r.Reader); err != nil {
			in.Close(ctx) // nolint: errcheck
			return nil, phas.E(phas.MalformedRecord, path+": bad gzip header", err)
		}
		r.Reader = r.gz
	}
	return r, nil
}

// Path returns the path r was opened with.
func (r *Reader) Path() string { return r.path }

// Close closes the underlying file.
func (r *Reader) Close() error {
	var err errors.Once
	if r.gz != nil {
		err.Set(r.gz.Close())
	}
	err.Set(r.in.Close(r.ctx))
	return err.Err()
}

// Exists reports whether path can be opened.
func Exists(ctx context.Context, path string) bool {
	_, err := file.Stat(ctx, path)
	return err == nil
}
