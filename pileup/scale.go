// Package pileup computes sequence-bias-corrected read pileups: for each
// aligned read whose cut site falls within a chromosome covered by a
// seqtbl, it looks up that site's plus/minus table index and adds a
// per-index scale factor (rather than a flat 1) to a sparse per-position
// accumulator, then emits the result as BED or BigWig.
//
// Grounded on scale.rs: PileUp::add_data drives the walk, compute_scale_factors
// derives the scale table from a genome/observed KmerCounts pair, and
// write_bed/write_bigwig (via bigwig.rs) produce the two output formats.
package pileup

import "github.com/guertinlab/seqoutbias/seqtable"

// ScaleFactor is the plus- and minus-strand correction factor for one table
// index, derived by comparing its genome-wide frequency against its
// observed (BAM) frequency.
type ScaleFactor struct {
	Plus  float64
	Minus float64
}

// scaleFactor implements scale_factor (src/scale.rs): the ratio of expected
// to observed frequency, or 0 when there is no observed support to scale.
func scaleFactor(exp, etotal, obs, ototal uint64) float64 {
	var fexp, fobs float64
	if etotal > 0 {
		fexp = float64(exp) / float64(etotal)
	}
	if ototal > 0 {
		fobs = float64(obs) / float64(ototal)
	}
	if fobs > 0 {
		return fexp / fobs
	}
	return 0
}

// ComputeScaleFactors derives one ScaleFactor per table index from the
// genome-wide counts table and the BAM-observed counts table. Both tables
// must be the same size (i.e. built from Equivalent Params). Index 0, the
// absent-k-mer sentinel, is excluded from the totals that normalize every
// other index, matching compute_scale_factors' "skip first row".
func ComputeScaleFactors(genome, observed *seqtable.KmerCounts) []ScaleFactor {
	n := len(genome.SeqPlus)
	var totalGenomePlus, totalGenomeMinus, totalObsPlus, totalObsMinus uint64
	for i := 1; i < n; i++ {
		totalGenomePlus += genome.SeqPlus[i]
		totalGenomeMinus += genome.SeqMinus[i]
		totalObsPlus += observed.SeqPlus[i]
		totalObsMinus += observed.SeqMinus[i]
	}

	factors := make([]ScaleFactor, n)
	for i := 0; i < n; i++ {
		factors[i] = ScaleFactor{
			Plus:  scaleFactor(genome.SeqPlus[i], totalGenomePlus, observed.SeqPlus[i], totalObsPlus),
			Minus: scaleFactor(genome.SeqMinus[i], totalGenomeMinus, observed.SeqMinus[i], totalObsMinus),
		}
	}
	return factors
}

// ComputeShift derives the minus-strand shift implied by a seqtbl's own
// plus/minus offsets, for the "--shift-counts" mode: the distance between
// where the plus and minus strand cut sites fall within the k-mer window.
//
// Grounded on scale.rs's inline computation:
// plus_offset - (kmer_length - minus_offset - 1).
func ComputeShift(p seqtable.Params) int {
	return p.PlusOffset - (p.KmerLength - p.MinusOffset - 1)
}
