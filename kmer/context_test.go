package kmer

import "testing"

func u32(v uint32) *uint32 { return &v }

func checkIndex(t *testing.T, got Index, wantPlus, wantMinus *uint32) {
	t.Helper()
	want := Index{Plus: wantPlus, Minus: wantMinus}
	if !got.Equal(want) {
		t.Fatalf("got %+v (plus=%v minus=%v), want plus=%v minus=%v", got, derefOrNil(got.Plus), derefOrNil(got.Minus), derefOrNil(wantPlus), derefOrNil(wantMinus))
	}
}

func derefOrNil(p *uint32) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func TestSimpleValidFirstIndex(t *testing.T) {
	s := NewSimple(2, false)
	checkIndex(t, s.AddBase(BaseC), nil, nil)
	// "CT" = 1*4+3 = 7
	checkIndex(t, s.AddBase(BaseT), u32(7), u32(7))
}

func TestSimpleValidSecondIndex(t *testing.T) {
	s := NewSimple(2, false)
	s.AddBase(BaseC)
	s.AddBase(BaseG)
	// "GT" = 2*4+3 = 11
	checkIndex(t, s.AddBase(BaseT), u32(11), u32(11))
}

func TestSimpleReverseComplementFirstIndex(t *testing.T) {
	s := NewSimple(2, true)
	checkIndex(t, s.AddBase(BaseC), nil, nil)
	// plus = "CT" = 7, minus = "AG" = 0*4+2 = 2
	checkIndex(t, s.AddBase(BaseT), u32(7), u32(2))
}

func TestSimpleReverseComplementSecondIndex(t *testing.T) {
	s := NewSimple(2, true)
	s.AddBase(BaseC)
	s.AddBase(BaseG)
	// plus = "GT" = 11, minus = "AC" = 0*4+1 = 1
	checkIndex(t, s.AddBase(BaseT), u32(11), u32(1))
}

func TestSimpleNResetsWindow(t *testing.T) {
	s := NewSimple(2, false)
	s.AddBase(BaseC)
	checkIndex(t, s.AddBase(BaseN), nil, nil)
	checkIndex(t, s.AddBase(BaseC), nil, nil)
	checkIndex(t, s.AddBase(BaseT), u32(7), u32(7))
}

func TestSimpleSequenceChange(t *testing.T) {
	s := NewSimple(2, true)
	s.AddBase(BaseC)
	s.AddBase(BaseT)
	s.SequenceChange()
	checkIndex(t, s.AddBase(BaseC), nil, nil)
	checkIndex(t, s.AddBase(BaseT), u32(7), u32(2))
}

// mask "NXN": unmasked positions 0 and 2.
var nxnMask = []bool{true, false, true}

func TestMaskedTwoOfThree(t *testing.T) {
	m := NewMasked(3, nxnMask, 2)
	checkIndex(t, m.AddBase(BaseC), nil, nil)
	checkIndex(t, m.AddBase(BaseC), nil, nil) // masked position, ignored
	// window C,C,T -> unmasked C,T = "CT" = 7
	checkIndex(t, m.AddBase(BaseT), u32(7), u32(7))
}

func TestMaskedNInUnmaskedPositionIsAbsent(t *testing.T) {
	m := NewMasked(3, nxnMask, 2)
	m.AddBase(BaseN)
	m.AddBase(BaseC)
	checkIndex(t, m.AddBase(BaseT), nil, nil)
}

func TestMaskedNInMaskedPositionIgnored(t *testing.T) {
	m := NewMasked(3, nxnMask, 2)
	m.AddBase(BaseC)
	m.AddBase(BaseN) // masked position
	checkIndex(t, m.AddBase(BaseT), u32(7), u32(7))
}

func TestMaskedStrandSpecificFirstReverseComplement(t *testing.T) {
	m := NewMaskedStrandSpecific(3, nxnMask, 2)
	checkIndex(t, m.AddBase(BaseC), nil, nil)
	checkIndex(t, m.AddBase(BaseC), nil, nil) // masked position
	// window C,C,T: plus="CT"=7, minus="AG"=2
	checkIndex(t, m.AddBase(BaseT), u32(7), u32(2))
}

func TestMaskedStrandSpecificSecondReverseComplement(t *testing.T) {
	m := NewMaskedStrandSpecific(3, nxnMask, 2)
	m.AddBase(BaseC)
	m.AddBase(BaseG)
	m.AddBase(BaseC) // masked position in new window
	// window G,C,T: plus="GT"=11, minus="AC"=1
	checkIndex(t, m.AddBase(BaseT), u32(11), u32(1))
}

func TestMaskedStrandSpecificIndependentPresence(t *testing.T) {
	// "NXX" asymmetric mask: unmasked at position 0 only (plus), reversed
	// mask is unmasked at position 2 only (minus), so an N at position 2 only
	// blanks the minus index.
	mask := []bool{true, false, false}
	m := NewMaskedStrandSpecific(3, mask, 1)
	m.AddBase(BaseC)
	m.AddBase(BaseA)
	got := m.AddBase(BaseN)
	if got.Plus == nil {
		t.Fatalf("expected plus present (unmasked position holds C, not N), got nil")
	}
	if got.Minus != nil {
		t.Fatalf("expected minus absent (unmasked-for-minus position holds N), got %v", *got.Minus)
	}
}
