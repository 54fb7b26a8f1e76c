// Package seqtable implements the on-disk sequence-cut table: a
// zlib-compressed, block-structured store of per-position (plus, minus)
// k-mer table indices, keyed by chromosome, plus a genome-wide table of
// observed k-mer counts.
//
// Grounded on src/seqtable/{mod,read,write,dump}.rs, generalized from their
// single-offset u16 encoding to the two-offset, optionally masked,
// optionally strand-specific u32 encoding described by the cut-mask CLI
// surface in src/main.rs.
package seqtable

import (
	"strings"

	"github.com/pkg/errors"
)

// Params fully describes a seqtable's coordinate system and k-mer context.
// It is stored in the file header, and is what SeqTable.Equivalent compares
// against when deciding whether an existing table can be reused.
type Params struct {
	KmerLength     int
	PlusOffset     int
	MinusOffset    int
	ReadLength     int
	Mask           []bool // nil when unmasked; len(Mask) == KmerLength otherwise
	UnmaskedCount  int    // number of true entries in Mask; == KmerLength when Mask is nil
	StrandSpecific bool
}

// ParseMask validates and decodes a cut-mask string such as
// "NNXXNNCXXXXNNXXNN": 'N' and 'C' mark unmasked (context-contributing)
// positions, 'X' marks a masked (skipped) position, and at most one 'C' may
// appear, marking the enzyme cut position within the window.
func ParseMask(s string) (mask []bool, unmaskedCount int, err error) {
	mask = make([]bool, len(s))
	nCount, cCount := 0, 0
	for i, c := range strings.ToUpper(s) {
		switch c {
		case 'N':
			mask[i] = true
			nCount++
		case 'C':
			mask[i] = true
			cCount++
		case 'X':
			mask[i] = false
		default:
			return nil, 0, errors.Errorf("seqtable: invalid cut-mask character %q in %q", c, s)
		}
	}
	if nCount == 0 {
		return nil, 0, errors.Errorf("seqtable: cut-mask %q has no unmasked (N) position", s)
	}
	if cCount > 1 {
		return nil, 0, errors.Errorf("seqtable: cut-mask %q has more than one cut (C) position", s)
	}
	return mask, nCount + cCount, nil
}

// NewParams builds Params from a cut size or an explicit cut-mask string.
// When cutMask is empty, the k-mer context is unmasked and kmerLength comes
// from cutSize directly.
func NewParams(cutSize, plusOffset, minusOffset, readLength int, cutMask string, strandSpecific bool) (Params, error) {
	if cutMask == "" {
		return Params{
			KmerLength:     cutSize,
			PlusOffset:     plusOffset,
			MinusOffset:    minusOffset,
			ReadLength:     readLength,
			UnmaskedCount:  cutSize,
			StrandSpecific: strandSpecific,
		}, nil
	}
	mask, unmaskedCount, err := ParseMask(cutMask)
	if err != nil {
		return Params{}, err
	}
	return Params{
		KmerLength:     len(mask),
		PlusOffset:     plusOffset,
		MinusOffset:    minusOffset,
		ReadLength:     readLength,
		Mask:           mask,
		UnmaskedCount:  unmaskedCount,
		StrandSpecific: strandSpecific,
	}, nil
}

// Equivalent reports whether two Params describe the same coordinate system
// and k-mer context, i.e. whether a seqtable built with other can stand in
// for one that would have been built with p.
func (p Params) Equivalent(other Params) bool {
	if p.KmerLength != other.KmerLength ||
		p.PlusOffset != other.PlusOffset ||
		p.MinusOffset != other.MinusOffset ||
		p.ReadLength != other.ReadLength ||
		p.StrandSpecific != other.StrandSpecific ||
		p.UnmaskedCount != other.UnmaskedCount {
		return false
	}
	if (p.Mask == nil) != (other.Mask == nil) {
		return false
	}
	for i := range p.Mask {
		if p.Mask[i] != other.Mask[i] {
			return false
		}
	}
	return true
}

// NumKmers returns the number of distinct k-mers addressable by this
// Params' unmasked positions: 4^UnmaskedCount.
func (p Params) NumKmers() uint32 {
	n := uint32(1)
	for i := 0; i < p.UnmaskedCount; i++ {
		n *= 4
	}
	return n
}

// TableSize returns the size of the genome-wide k-mer counts table and of
// the plus/minus index space stored in sequence blocks: NumKmers()+1, since
// table index 0 is reserved as the "absent" sentinel (an N in an unmasked
// position, an unmappable position, or a cut site off a sequence edge).
func (p Params) TableSize() uint32 {
	return p.NumKmers() + 1
}
