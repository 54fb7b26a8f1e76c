package pileup

import (
	"bytes"
	"strings"
	"testing"

	"github.com/guertinlab/seqoutbias/seqtable"
)

func TestComputeScaleFactorsExcludesSentinel(t *testing.T) {
	// table size 3: index 0 is the sentinel, 1 and 2 are real k-mers.
	genome := &seqtable.KmerCounts{
		SeqPlus:  []uint64{100, 10, 30}, // totals over 1,2: 40
		SeqMinus: []uint64{100, 20, 20}, // totals over 1,2: 40
	}
	observed := &seqtable.KmerCounts{
		SeqPlus:  []uint64{5, 2, 2}, // totals: 4
		SeqMinus: []uint64{5, 1, 3}, // totals: 4
	}
	factors := ComputeScaleFactors(genome, observed)
	if len(factors) != 3 {
		t.Fatalf("got %d factors, want 3", len(factors))
	}
	// index 1: expFreq = 10/40 = 0.25, obsFreq = 2/4 = 0.5 -> scale 0.5
	if got, want := factors[1].Plus, 0.5; got != want {
		t.Errorf("factors[1].Plus = %v, want %v", got, want)
	}
	// index 2: expFreq = 30/40 = 0.75, obsFreq = 2/4 = 0.5 -> scale 1.5
	if got, want := factors[2].Plus, 1.5; got != want {
		t.Errorf("factors[2].Plus = %v, want %v", got, want)
	}
	// index with zero observed frequency scales to 0, not a division by zero.
	zeroObs := &seqtable.KmerCounts{SeqPlus: []uint64{0, 10, 0}, SeqMinus: []uint64{0, 10, 0}}
	zeroGenome := &seqtable.KmerCounts{SeqPlus: []uint64{0, 5, 5}, SeqMinus: []uint64{0, 5, 5}}
	f2 := ComputeScaleFactors(zeroGenome, zeroObs)
	if f2[2].Plus != 0 {
		t.Errorf("expected 0 scale when observed frequency is 0, got %v", f2[2].Plus)
	}
}

func TestComputeShift(t *testing.T) {
	p := seqtable.Params{KmerLength: 10, PlusOffset: 4, MinusOffset: 5}
	// plus_offset - (kmer_length - minus_offset - 1) = 4 - (10-5-1) = 4-4 = 0
	if got, want := ComputeShift(p), 0; got != want {
		t.Errorf("ComputeShift = %d, want %d", got, want)
	}
	p2 := seqtable.Params{KmerLength: 6, PlusOffset: 2, MinusOffset: 1}
	// 2 - (6-1-1) = 2-4 = -2
	if got, want := ComputeShift(p2), -2; got != want {
		t.Errorf("ComputeShift = %d, want %d", got, want)
	}
}

func newTestAccumulator() *Accumulator {
	return &Accumulator{
		chroms: []string{"chr1"},
		sizes:  []uint64{100},
		counts: []map[uint32]*pair{{
			10: {Plus: 2.5, Minus: 0},
			20: {Plus: 0, Minus: 1.5},
			30: {Plus: 1, Minus: 1},
		}},
	}
}

func TestWriteBEDCombined(t *testing.T) {
	a := newTestAccumulator()
	var buf bytes.Buffer
	if err := a.WriteBED(&buf, false); err != nil {
		t.Fatalf("WriteBED: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if lines[0] != "chr1\t10\t11\t.\t2.5" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[2] != "chr1\t30\t31\t.\t2" {
		t.Errorf("line 2 = %q", lines[2])
	}
}

func TestWriteBEDStrandedSkipsZero(t *testing.T) {
	a := newTestAccumulator()
	var buf bytes.Buffer
	if err := a.WriteBED(&buf, true); err != nil {
		t.Fatalf("WriteBED: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "chr1\t10\t11\t.\t2.5\t+") {
		t.Errorf("missing plus line: %s", out)
	}
	if strings.Contains(out, "10\t11\t.\t0\t-") {
		t.Errorf("zero-valued minus strand should be omitted at position 10: %s", out)
	}
	if !strings.Contains(out, "chr1\t20\t21\t.\t-1.5\t-") {
		t.Errorf("missing negated minus line: %s", out)
	}
}

func TestWriteWiggleHeaderAndShift(t *testing.T) {
	a := newTestAccumulator()
	var buf bytes.Buffer
	if err := a.writeWiggle(&buf, 0); err != nil {
		t.Fatalf("writeWiggle: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "variableStep chrom=chr1\n") {
		t.Fatalf("missing variableStep header: %s", out)
	}
	// position 10 (0-based) must appear as 11 (1-based) in the wiggle track.
	if !strings.Contains(out, "11\t2.5\n") {
		t.Errorf("expected 1-based shifted position, got: %s", out)
	}
}

func TestWriteChromInfo(t *testing.T) {
	a := newTestAccumulator()
	var buf bytes.Buffer
	if err := a.writeChromInfo(&buf); err != nil {
		t.Fatalf("writeChromInfo: %v", err)
	}
	if got, want := buf.String(), "chr1\t100\n"; got != want {
		t.Errorf("writeChromInfo = %q, want %q", got, want)
	}
}
