package fasta

import (
	"io"
	"strings"
	"testing"

	"github.com/guertinlab/seqoutbias/seqtable"
)

// seekBuffer is a minimal in-memory io.WriteSeeker/io.ReadSeeker, standing
// in for a real *os.File since no actual file I/O can be exercised here.
type seekBuffer struct {
	buf []byte
	pos int64
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	end := s.pos + int64(len(p))
	if end > int64(len(s.buf)) {
		grown := make([]byte, end)
		copy(grown, s.buf)
		s.buf = grown
	}
	n := copy(s.buf[s.pos:end], p)
	s.pos = end
	return n, nil
}

func (s *seekBuffer) Read(p []byte) (int, error) {
	if s.pos >= int64(len(s.buf)) {
		return 0, io.EOF
	}
	n := copy(p, s.buf[s.pos:])
	s.pos += int64(n)
	return n, nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = s.pos
	case io.SeekEnd:
		base = int64(len(s.buf))
	}
	s.pos = base + offset
	return s.pos, nil
}

func TestGenerateUnmaskedSingleBaseKmer(t *testing.T) {
	params := seqtable.Params{KmerLength: 1, ReadLength: 1, UnmaskedCount: 1}
	sb := &seekBuffer{}
	w, err := seqtable.NewWriter(sb, params, 0)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	fastaInput := ">chr1 some description\nACGT\n>chr2\nAA\n"
	if err := Generate(strings.NewReader(fastaInput), nil, params, w); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Writer.Close: %v", err)
	}

	table, err := seqtable.Open(sb)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	names := table.SequenceNames()
	if len(names) != 2 || names[0] != "chr1" || names[1] != "chr2" {
		t.Fatalf("SequenceNames = %v, want [chr1 chr2]", names)
	}

	rdr1, err := table.GetSequence("chr1")
	if err != nil {
		t.Fatalf("GetSequence(chr1): %v", err)
	}
	if got, want := rdr1.Length(), uint64(4); got != want {
		t.Fatalf("chr1 length = %d, want %d", got, want)
	}
	wantPairs := [][2]uint32{{1, 1}, {2, 2}, {3, 3}, {4, 4}} // A=0,C=1,G=2,T=3 -> stored+1
	for i, want := range wantPairs {
		plus, minus, err := rdr1.Get(uint64(i))
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		if plus != want[0] || minus != want[1] {
			t.Errorf("chr1[%d] = (%d,%d), want (%d,%d)", i, plus, minus, want[0], want[1])
		}
	}

	rdr2, err := table.GetSequence("chr2")
	if err != nil {
		t.Fatalf("GetSequence(chr2): %v", err)
	}
	if got, want := rdr2.Length(), uint64(2); got != want {
		t.Fatalf("chr2 length = %d, want %d", got, want)
	}
	plus, minus, err := rdr2.Get(0)
	if err != nil {
		t.Fatalf("Get(0): %v", err)
	}
	if plus != 1 || minus != 1 {
		t.Errorf("chr2[0] = (%d,%d), want (1,1)", plus, minus)
	}
}

func TestGenerateRejectsMissingLeadingAngle(t *testing.T) {
	params := seqtable.Params{KmerLength: 1, ReadLength: 1, UnmaskedCount: 1}
	sb := &seekBuffer{}
	w, err := seqtable.NewWriter(sb, params, 0)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	err = Generate(strings.NewReader("ACGT\n"), nil, params, w)
	if err == nil {
		t.Fatalf("Generate: want error for input not starting with '>'")
	}
}

func TestGenerateSkipsWhitespaceInBody(t *testing.T) {
	params := seqtable.Params{KmerLength: 1, ReadLength: 1, UnmaskedCount: 1}
	sb := &seekBuffer{}
	w, err := seqtable.NewWriter(sb, params, 0)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := Generate(strings.NewReader(">chr1\nAC\nGT\n"), nil, params, w); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Writer.Close: %v", err)
	}
	table, err := seqtable.Open(sb)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	rdr, err := table.GetSequence("chr1")
	if err != nil {
		t.Fatalf("GetSequence: %v", err)
	}
	if got, want := rdr.Length(), uint64(4); got != want {
		t.Fatalf("length = %d, want %d", got, want)
	}
}
