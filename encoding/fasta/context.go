package fasta

import (
	"github.com/guertinlab/seqoutbias/kmer"
	"github.com/guertinlab/seqoutbias/seqtable"
)

// newContext selects the k-mer context variant implied by a seqtbl's
// Params, mirroring generate_seqtable's dispatch over EnzContextSimple /
// EnzContextMasked / EnzContextMaskedStrandSpecific (src/fasta.rs).
func newContext(p seqtable.Params) kmer.Context {
	if p.Mask == nil {
		return kmer.NewSimple(p.KmerLength, p.StrandSpecific)
	}
	if p.StrandSpecific {
		return kmer.NewMaskedStrandSpecific(p.KmerLength, p.Mask, p.UnmaskedCount)
	}
	return kmer.NewMasked(p.KmerLength, p.Mask, p.UnmaskedCount)
}

// base decodes one FASTA sequence byte into the A/C/G/T/N encoding shared
// by kmer.Context, returning ok=false for bytes that carry no base (such as
// whitespace), which the scanner must simply skip.
func base(b byte) (v byte, ok bool) {
	switch b {
	case 'a', 'A':
		return kmer.BaseA, true
	case 'c', 'C':
		return kmer.BaseC, true
	case 'g', 'G':
		return kmer.BaseG, true
	case 't', 'T':
		return kmer.BaseT, true
	case 'n', 'N':
		return kmer.BaseN, true
	default:
		return 0, false
	}
}
