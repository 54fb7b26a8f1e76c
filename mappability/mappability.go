// Package mappability reads per-position strand mappability calls produced
// by a tallymer run, and answers whether a given read-start position is
// unmappable on the plus and/or minus strand of the sequence currently being
// scanned.
package mappability

import (
	"bufio"
	"context"
	"io"
	"strconv"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Position records, for one coordinate, whether the plus and/or minus
// strand read starting there is unmappable.
type Position struct {
	Plus  bool
	Minus bool
}

func insert(m map[uint64]Position, pos uint64, isMinus bool) {
	p := m[pos]
	if isMinus {
		p.Minus = true
	} else {
		p.Plus = true
	}
	m[pos] = p
}

// parseLine parses a "seqIndex\t[+-]pos" line, matching the format emitted
// by the tallymer-to-unmappability conversion step.
func parseLine(line []byte) (seq uint64, pos uint64, isMinus bool, err error) {
	i := 0
	n := len(line)
	for i < n && line[i] >= '0' && line[i] <= '9' {
		seq = seq*10 + uint64(line[i]-'0')
		i++
	}
	if i == 0 || i == n || line[i] != '\t' {
		return 0, 0, false, errors.Errorf("mappability: malformed line %q: expected <seq>\\t[+-]<pos>", line)
	}
	i++
	if i == n {
		return 0, 0, false, errors.Errorf("mappability: malformed line %q: missing strand sign", line)
	}
	switch line[i] {
	case '-':
		isMinus = true
	case '+':
		isMinus = false
	default:
		return 0, 0, false, errors.Errorf("mappability: malformed line %q: expected '+' or '-'", line)
	}
	i++
	start := i
	for i < n && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == start {
		return 0, 0, false, errors.Errorf("mappability: malformed line %q: missing position", line)
	}
	v, err := strconv.ParseUint(string(line[start:i]), 10, 64)
	if err != nil {
		return 0, 0, false, errors.Wrapf(err, "mappability: parsing position in line %q", line)
	}
	pos = v
	return seq, pos, isMinus, nil
}

// Reader streams per-sequence mappability calls, one sequence at a time, in
// lockstep with a FASTA scan: ReadNextSequence must be called exactly once
// per chromosome boundary, including once before the first sequence (which
// Open already does).
//
// Grounded on UnMap (src/tallyread.rs): the two-buffer swap lets the reader
// look one sequence ahead without buffering the whole file, since the
// tallymer output for a sequence can be arbitrarily large.
type Reader struct {
	scanner *bufio.Scanner

	cur  map[uint64]Position
	next map[uint64]Position

	seqNumber     int64
	nextSeqNumber int64
}

// Open creates a Reader over r and preloads the first sequence's data.
func Open(r io.Reader) (*Reader, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	reader := &Reader{
		scanner:       scanner,
		cur:           map[uint64]Position{},
		next:          map[uint64]Position{},
		seqNumber:     -1,
		nextSeqNumber: 0,
	}
	if err := reader.ReadNextSequence(); err != nil {
		return nil, err
	}
	return reader, nil
}

// OpenPath opens the mappability file at path, transparently decompressing
// it if fileio.DetermineType reports it as gzip.
func OpenPath(ctx context.Context, path string) (*Reader, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "mappability: opening %s", path)
	}
	var r io.Reader = f.Reader(ctx)
	if fileio.DetermineType(path) == fileio.Gzip {
		gz, err := gzip.NewReader(r)
		if err != nil {
			f.Close(ctx)
			return nil, errors.Wrapf(err, "mappability: reading gzip header of %s", path)
		}
		r = gz
	}
	reader, err := Open(r)
	if err != nil {
		f.Close(ctx)
		return nil, err
	}
	return reader, nil
}

// ReadNextSequence advances to the next sequence's mappability data. Call it
// once per chromosome boundary in the FASTA scan, including once up front
// (already done by Open).
func (r *Reader) ReadNextSequence() error {
	if r.nextSeqNumber > r.seqNumber+1 {
		r.seqNumber++
		r.cur = map[uint64]Position{}
		return nil
	}
	if r.seqNumber == r.nextSeqNumber {
		// the data is exhausted: every later sequence is empty.
		r.seqNumber++
		r.nextSeqNumber = r.seqNumber
		r.cur = map[uint64]Position{}
		return nil
	}
	r.seqNumber = r.nextSeqNumber
	r.cur, r.next = r.next, map[uint64]Position{}

	for r.scanner.Scan() {
		seq, pos, isMinus, err := parseLine(r.scanner.Bytes())
		if err != nil {
			return err
		}
		if seq == uint64(r.seqNumber) {
			insert(r.cur, pos, isMinus)
		} else {
			insert(r.next, pos, isMinus)
			r.nextSeqNumber = int64(seq)
			return nil
		}
	}
	return errors.Wrap(r.scanner.Err(), "mappability: reading tallymer data")
}

// SequenceNumber returns the 0-based index of the sequence currently loaded.
func (r *Reader) SequenceNumber() int64 { return r.seqNumber }

// IsUnmappable reports whether the plus and/or minus strand read starting
// at pos, on the sequence currently loaded, is unmappable. Implements
// coordbuf.Mappability.
func (r *Reader) IsUnmappable(pos uint64) (plusUnmappable, minusUnmappable bool) {
	p, ok := r.cur[pos]
	if !ok {
		return false, false
	}
	return p.Plus, p.Minus
}
