package tabulate

import (
	"testing"

	"github.com/biogo/hts/sam"
)

func mkRecord(flags sam.Flags, pos, matePos, seqLen int, mapq byte) *sam.Record {
	return &sam.Record{
		Flags:   flags,
		Pos:     pos,
		MatePos: matePos,
		MapQ:    mapq,
		Seq:     sam.Seq{Length: seqLen},
	}
}

func TestValidRejectsUnmapped(t *testing.T) {
	p := Policy{MinQual: 0}
	rec := mkRecord(sam.Unmapped, 10, 0, 36, 30)
	if p.Valid(rec, 36) {
		t.Errorf("Valid: want false for unmapped record")
	}
}

func TestValidRejectsLowQuality(t *testing.T) {
	p := Policy{MinQual: 20}
	rec := mkRecord(0, 10, 0, 36, 10)
	if p.Valid(rec, 36) {
		t.Errorf("Valid: want false for mapq below threshold")
	}
}

func TestValidExactLength(t *testing.T) {
	p := Policy{ExactLength: true}
	short := mkRecord(0, 10, 0, 20, 30)
	if p.Valid(short, 36) {
		t.Errorf("Valid: want false when ExactLength and length mismatches")
	}
	exact := mkRecord(0, 10, 0, 36, 30)
	if !p.Valid(exact, 36) {
		t.Errorf("Valid: want true when length matches")
	}
}

func TestValidForcePairedRequiresMappedMateSameChrom(t *testing.T) {
	p := Policy{ForcePaired: true}
	unpaired := mkRecord(0, 10, 0, 36, 30)
	if p.Valid(unpaired, 36) {
		t.Errorf("Valid: want false for unpaired record under ForcePaired")
	}
	paired := mkRecord(sam.Paired|sam.MateUnmapped, 10, 0, 36, 30)
	if p.Valid(paired, 36) {
		t.Errorf("Valid: want false when mate unmapped under ForcePaired")
	}
}

func TestValidPairDistanceRange(t *testing.T) {
	p := Policy{HasPdist: true, MinDist: 50, MaxDist: 200}
	rec := mkRecord(sam.Paired, 100, 400, 36, 30) // dist = |100-400|+36 = 336
	if p.Valid(rec, 36) {
		t.Errorf("Valid: want false for out-of-range pair distance")
	}
	rec2 := mkRecord(sam.Paired, 100, 150, 36, 30) // dist = 50+36=86
	if !p.Valid(rec2, 36) {
		t.Errorf("Valid: want true for in-range pair distance")
	}
}

func TestValidSelectPair(t *testing.T) {
	p := Policy{SelectPair: SelectPairFirst}
	first := mkRecord(sam.Paired|sam.Read1, 10, 0, 36, 30)
	second := mkRecord(sam.Paired|sam.Read2, 10, 0, 36, 30)
	if !p.Valid(first, 36) {
		t.Errorf("Valid: want true for Read1 under SelectPairFirst")
	}
	if p.Valid(second, 36) {
		t.Errorf("Valid: want false for Read2 under SelectPairFirst")
	}
}

func TestVirtualPositionTailEdge(t *testing.T) {
	p := Policy{TailEdge: true}
	fwd := mkRecord(0, 100, 0, 36, 30)
	if got, want := p.VirtualPosition(fwd, 36), int64(135); got != want {
		t.Errorf("VirtualPosition(fwd) = %d, want %d", got, want)
	}
	rev := mkRecord(sam.Reverse, 100, 0, 36, 30)
	if got, want := p.VirtualPosition(rev, 36), int64(65); got != want {
		t.Errorf("VirtualPosition(rev) = %d, want %d", got, want)
	}
}

func TestVirtualPositionShortReverseRead(t *testing.T) {
	p := Policy{}
	rev := mkRecord(sam.Reverse, 100, 0, 20, 30) // seqLen 20, readLength 36
	if got, want := p.VirtualPosition(rev, 36), int64(84); got != want {
		t.Errorf("VirtualPosition = %d, want %d", got, want)
	}
	fwd := mkRecord(0, 100, 0, 20, 30)
	if got, want := p.VirtualPosition(fwd, 36), int64(100); got != want {
		t.Errorf("VirtualPosition(fwd) = %d, want %d", got, want)
	}
}

func TestVirtualPositionExactLengthIgnoresReverseShift(t *testing.T) {
	p := Policy{ExactLength: true}
	rev := mkRecord(sam.Reverse, 100, 0, 36, 30)
	if got, want := p.VirtualPosition(rev, 36), int64(100); got != want {
		t.Errorf("VirtualPosition = %d, want %d", got, want)
	}
}
