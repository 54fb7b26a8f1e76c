// Package tabulate computes genome-wide and BAM-observed k-mer counts
// against a seqtbl, the input the pileup/scale-factor stage needs. It
// mirrors the two-phase structure of counts.rs: a genome-wide pass over the
// seqtbl itself (or, when a BED region filter is supplied, a restricted
// rescan), followed by one pass per BAM file that classifies, filters, and
// buckets aligned reads by the table index at their cut site.
package tabulate

import (
	"io"
	"os"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/pkg/errors"

	"github.com/guertinlab/seqoutbias/interval"
	"github.com/guertinlab/seqoutbias/seqtable"
)

// SelectPair names which half of a template a paired-end filter keeps.
type SelectPair int

const (
	// SelectPairNone applies no half-of-template restriction.
	SelectPairNone SelectPair = iota
	// SelectPairFirst keeps only first-in-pair reads.
	SelectPairFirst
	// SelectPairLast keeps only second-in-pair (last) reads.
	SelectPairLast
)

// Policy is the combination of record-filtering and cut-site-placement
// rules applied to every BAM record under consideration.
type Policy struct {
	MinQual     byte
	ExactLength bool // record must have length exactly ReadLength

	ForcePaired bool
	HasPdist    bool
	MinDist     int
	MaxDist     int
	SelectPair  SelectPair

	TailEdge bool
}

// Valid reports whether rec passes this Policy's single- or paired-end
// filter, given the seqtbl's configured read length.
//
// Grounded on SingleChecker/PairedChecker (src/filter.rs), generalized so
// one Policy expresses both: the paired-specific checks are no-ops unless
// ForcePaired, HasPdist, or SelectPair asks for them.
func (p Policy) Valid(rec *sam.Record, readLength int) bool {
	if rec.Flags&sam.Unmapped != 0 {
		return false
	}
	if rec.MapQ < p.MinQual {
		return false
	}
	if p.ExactLength && rec.Seq.Length != readLength {
		return false
	}
	if p.ForcePaired {
		if rec.Flags&sam.Paired == 0 || rec.Flags&sam.MateUnmapped != 0 {
			return false
		}
		if rec.Ref == nil || rec.MateRef == nil || rec.Ref.ID() != rec.MateRef.ID() {
			return false
		}
	}
	if p.HasPdist {
		if rec.Flags&sam.Paired == 0 {
			return false
		}
		// The pair distance is |pos - mate pos| + readLength; the record's
		// TLEN (insert size) field is not consulted.
		dist := rec.Pos - rec.MatePos
		if dist < 0 {
			dist = -dist
		}
		dist += readLength
		if dist < p.MinDist || dist > p.MaxDist {
			return false
		}
	}
	switch p.SelectPair {
	case SelectPairFirst:
		if rec.Flags&sam.Read1 == 0 {
			return false
		}
	case SelectPairLast:
		if rec.Flags&sam.Read2 == 0 {
			return false
		}
	}
	return true
}

// VirtualPosition computes the seqtbl coordinate a record's cut site maps
// to, given the record's own sequence length and the seqtbl's configured
// read length.
//
// Grounded on spec §4.6 "Virtual position": when TailEdge is set, the cut
// site is the read's trailing edge (3' end); otherwise, for a reverse-
// strand alignment of a record shorter than the configured read length,
// the position is shifted left to compensate; forward-strand and
// exact-length reads use the alignment position directly.
func (p Policy) VirtualPosition(rec *sam.Record, readLength int) int64 {
	pos := int64(rec.Pos)
	seqLen := int64(rec.Seq.Length)
	reverse := rec.Flags&sam.Reverse != 0

	if p.TailEdge {
		if reverse {
			return pos - seqLen + 1
		}
		return pos + seqLen - 1
	}
	if !p.ExactLength && reverse {
		return pos + seqLen - int64(readLength)
	}
	return pos
}

// BuildTidMap maps each BAM reference ID to its index among seqNames (the
// seqtbl's chromosome order), failing if the BAM names a chromosome the
// seqtbl does not have.
func BuildTidMap(header *sam.Header, seqNames []string) ([]int, error) {
	index := make(map[string]int, len(seqNames))
	for i, name := range seqNames {
		index[name] = i
	}
	refs := header.Refs()
	tidMap := make([]int, len(refs))
	for i, ref := range refs {
		idx, ok := index[ref.Name()]
		if !ok {
			return nil, errors.Errorf("tabulate: unknown sequence name in BAM: %s", ref.Name())
		}
		tidMap[i] = idx
	}
	return tidMap, nil
}

// GenomeCounts returns the genome-wide table-index frequency table to use
// as the "expected" side of a scale-factor computation. With no region
// filter it is simply the seqtbl's embedded counts table; with one, it is
// recomputed by rescanning every chromosome and keeping only positions
// inside some region.
func GenomeCounts(t *seqtable.SeqTable, regions *interval.Set) (*seqtable.KmerCounts, error) {
	if regions == nil {
		return t.Counts(), nil
	}
	counts := seqtable.NewKmerCounts(t.Params())
	for _, name := range t.SequenceNames() {
		rdr, err := t.GetSequence(name)
		if err != nil {
			return nil, err
		}
		length := rdr.Length()
		for pos := uint64(0); pos < length; pos++ {
			if !regions.Contains(name, pos) {
				continue
			}
			plus, minus, err := rdr.Get(pos)
			if err != nil {
				return nil, err
			}
			counts.AddPlus(plus)
			counts.AddMinus(minus)
		}
	}
	return counts, nil
}

// Accumulate walks one BAM file, recording a k-mer-table-index frequency
// for each valid, (optionally region-restricted) record.
//
// Grounded on process_bam_seq/tabulate (src/counts.rs), generalized from a
// single hardcoded filter to a Policy, and extended with the region
// restriction spec §4.6 ties to virtual position membership.
func Accumulate(t *seqtable.SeqTable, bamPath string, readLength int, policy Policy, regions *interval.Set) (*seqtable.KmerCounts, error) {
	r, closeFn, err := openBAM(bamPath)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	header := r.Header()
	tidMap, err := BuildTidMap(header, t.SequenceNames())
	if err != nil {
		return nil, err
	}

	counts := seqtable.NewKmerCounts(t.Params())

	var rdr *seqtable.SequenceReader
	curTid := -1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "tabulate: reading BAM record")
		}
		if !policy.Valid(rec, readLength) {
			continue
		}
		tid := rec.Ref.ID()
		if tid != curTid {
			idx := tidMap[tid]
			rdr, err = t.GetSequenceByIdx(idx)
			if err != nil {
				return nil, err
			}
			curTid = tid
		}

		vpos := policy.VirtualPosition(rec, readLength)
		if vpos < 0 || uint64(vpos) >= rdr.Length() {
			continue
		}
		chromName := header.Refs()[tid].Name()
		if regions != nil && !regions.Contains(chromName, uint64(vpos)) {
			continue
		}

		plusIdx, minusIdx, err := rdr.Get(uint64(vpos))
		if err != nil {
			return nil, err
		}
		if rec.Flags&sam.Reverse != 0 {
			counts.AddMinus(minusIdx)
		} else {
			counts.AddPlus(plusIdx)
		}
	}
	return counts, nil
}

func openBAM(path string) (*bam.Reader, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "tabulate: opening BAM %s", path)
	}
	r, err := bam.NewReader(f, 1)
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrapf(err, "tabulate: opening BAM %s", path)
	}
	return r, func() { r.Close(); f.Close() }, nil
}
