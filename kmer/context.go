// Package kmer tracks the k-mer index observed around a sliding window of
// DNA bases, as they are streamed in one base at a time by a FASTA scan.
//
// Bases are encoded A=0, C=1, G=2, T=3, N=4, matching the encoding used
// throughout the seqoutbias pipeline (mappability, seqtable, coordbuf).
package kmer

// Base values recognized by Context.AddBase.
const (
	BaseA byte = 0
	BaseC byte = 1
	BaseG byte = 2
	BaseT byte = 3
	BaseN byte = 4
)

// Index holds the k-mer observed on the plus and minus strand at the current
// window position. Either field is nil ("not present") when there are not
// yet enough bases to fill the window, or an N fell in an unmasked position.
// Unless the context is strand-specific, Plus and Minus are always equal.
type Index struct {
	Plus  *uint32
	Minus *uint32
}

func ptr(v uint32) *uint32 { return &v }

// Equal reports whether two Index values carry the same plus/minus presence
// and value. Primarily useful in tests.
func (k Index) Equal(o Index) bool {
	return eqPtr(k.Plus, o.Plus) && eqPtr(k.Minus, o.Minus)
}

func eqPtr(a, b *uint32) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

// Context is a stateful transducer: each call to AddBase consumes one base
// and returns the Index implied by the window ending at that base.
// SequenceChange resets the window, as required at every chromosome
// boundary.
type Context interface {
	AddBase(base byte) Index
	SequenceChange()
}
