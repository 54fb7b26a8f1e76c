package seqtable

import (
	"bytes"
	"io"
	"testing"
)

// seekBuffer adapts a bytes.Buffer into an io.WriteSeeker backed by an
// in-memory byte slice, the way a real *os.File would behave.
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

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		s.pos = offset
	case io.SeekCurrent:
		s.pos += offset
	case io.SeekEnd:
		s.pos = int64(len(s.buf)) + offset
	}
	return s.pos, nil
}

func (s *seekBuffer) Read(p []byte) (int, error) {
	if s.pos >= int64(len(s.buf)) {
		return 0, io.EOF
	}
	n := copy(p, s.buf[s.pos:])
	s.pos += int64(n)
	return n, nil
}

func TestWriteReadRoundTrip(t *testing.T) {
	params, err := NewParams(2, 0, 0, 1, "", false)
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}
	buf := &seekBuffer{}
	w, err := NewWriter(buf, params, 2) // tiny block length to exercise multi-block flushing
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	chr1 := w.CreateSequence("chr1")
	pairs := [][2]uint32{{1, 1}, {2, 3}, {0, 4}, {5, 0}, {7, 8}}
	for _, p := range pairs {
		if err := chr1.Write(p[0], p[1]); err != nil {
			t.Fatalf("Write: %v", err)
		}
		w.Counts().AddPlus(p[0])
	}
	if err := chr1.Close(); err != nil {
		t.Fatalf("chr1.Close: %v", err)
	}

	chr2 := w.CreateSequence("chr2")
	if err := chr2.Write(9, 9); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := chr2.Close(); err != nil {
		t.Fatalf("chr2.Close: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Writer.Close: %v", err)
	}

	tbl, err := Open(buf)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !tbl.Equivalent(params) {
		t.Fatalf("Equivalent: got false, want true (params=%+v, read=%+v)", params, tbl.Params())
	}
	if got := tbl.SequenceNames(); len(got) != 2 || got[0] != "chr1" || got[1] != "chr2" {
		t.Fatalf("SequenceNames = %v, want [chr1 chr2]", got)
	}

	rdr, err := tbl.GetSequence("chr1")
	if err != nil {
		t.Fatalf("GetSequence: %v", err)
	}
	if rdr.Length() != uint64(len(pairs)) {
		t.Fatalf("Length = %d, want %d", rdr.Length(), len(pairs))
	}
	for i, want := range pairs {
		plus, minus, err := rdr.Get(uint64(i))
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		if plus != want[0] || minus != want[1] {
			t.Errorf("Get(%d) = (%d,%d), want (%d,%d)", i, plus, minus, want[0], want[1])
		}
	}

	if _, _, err := rdr.Get(uint64(len(pairs))); err == nil {
		t.Errorf("Get(out of range): want error, got nil")
	}

	rdr2, err := tbl.GetSequenceByIdx(1)
	if err != nil {
		t.Fatalf("GetSequenceByIdx: %v", err)
	}
	plus, minus, err := rdr2.Get(0)
	if err != nil || plus != 9 || minus != 9 {
		t.Fatalf("chr2 Get(0) = (%d,%d,%v), want (9,9,nil)", plus, minus, err)
	}

	if tbl.Counts().SeqPlus[1] != 1 || tbl.Counts().SeqPlus[2] != 1 {
		t.Errorf("unexpected counts: %+v", tbl.Counts().SeqPlus)
	}
}

func TestEquivalentRejectsMismatch(t *testing.T) {
	a, _ := NewParams(2, 0, 0, 1, "", false)
	b, _ := NewParams(3, 0, 0, 1, "", false)
	if a.Equivalent(b) {
		t.Errorf("Equivalent: want false for different kmer lengths")
	}

	c, err := NewParams(0, 0, 0, 1, "NXN", false)
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}
	d, err := NewParams(0, 0, 0, 1, "NXN", true)
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}
	if c.Equivalent(d) {
		t.Errorf("Equivalent: want false when strand_specific differs")
	}
}

func TestParseMaskRejectsInvalid(t *testing.T) {
	cases := []string{"NNXXYY", "XXXX", "NCCXN"}
	for _, c := range cases {
		if _, _, err := ParseMask(c); err == nil {
			t.Errorf("ParseMask(%q): want error, got nil", c)
		}
	}
	mask, unmasked, err := ParseMask("NNXXNNCXXXXNNXXNN")
	if err != nil {
		t.Fatalf("ParseMask: %v", err)
	}
	if unmasked != 9 {
		t.Errorf("unmaskedCount = %d, want 9", unmasked)
	}
	if len(mask) != len("NNXXNNCXXXXNNXXNN") {
		t.Errorf("mask length = %d, want %d", len(mask), len("NNXXNNCXXXXNNXXNN"))
	}
}

func TestDumpAndDumpRange(t *testing.T) {
	params, _ := NewParams(1, 0, 0, 1, "", false)
	buf := &seekBuffer{}
	w, err := NewWriter(buf, params, 10)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	chr1 := w.CreateSequence("chr1")
	for i := uint32(0); i < 3; i++ {
		chr1.Write(i, i+1)
	}
	chr1.Close()
	w.Close()

	tbl, err := Open(buf)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	var out bytes.Buffer
	if err := Dump(&out, tbl); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte(">chr1 3\n")) {
		t.Errorf("Dump output missing header: %s", out.String())
	}
	if !bytes.Contains(out.Bytes(), []byte("1\t1\t2\n")) {
		t.Errorf("Dump output missing data row: %s", out.String())
	}

	out.Reset()
	r, err := ParseRange("chr1:1-2")
	if err != nil {
		t.Fatalf("ParseRange: %v", err)
	}
	if err := DumpRange(&out, tbl, r); err != nil {
		t.Fatalf("DumpRange: %v", err)
	}
	if bytes.Contains(out.Bytes(), []byte("0\t0\t1\n")) {
		t.Errorf("DumpRange should not include position 0: %s", out.String())
	}
	if !bytes.Contains(out.Bytes(), []byte("1\t1\t2\n")) {
		t.Errorf("DumpRange missing position 1: %s", out.String())
	}
}
