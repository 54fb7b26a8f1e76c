package fasta

import (
	"io"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// OpenPath opens a FASTA file for Generate, transparently decompressing it
// if fileio.DetermineType reports it as gzip.
//
// Grounded on process_fasta's GzDecoder probe (src/fasta.rs), simplified
// using fileio.DetermineType's extension sniff instead of eagerly
// attempting gzip decompression and falling back on failure, matching
// mappability.OpenPath's idiom.
func OpenPath(path string) (io.ReadCloser, error) {
	ctx := vcontext.Background()
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "fasta: opening %s", path)
	}
	var r io.Reader = f.Reader(ctx)
	if fileio.DetermineType(path) != fileio.Gzip {
		return readCloserFunc{r, func() error { return f.Close(ctx) }}, nil
	}
	gz, err := gzip.NewReader(r)
	if err != nil {
		f.Close(ctx)
		return nil, errors.Wrapf(err, "fasta: reading gzip header of %s", path)
	}
	return readCloserFunc{gz, func() error { gz.Close(); return f.Close(ctx) }}, nil
}

type readCloserFunc struct {
	io.Reader
	closeFn func() error
}

func (r readCloserFunc) Close() error { return r.closeFn() }
