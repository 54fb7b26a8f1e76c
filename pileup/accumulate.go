package pileup

import (
	"io"
	"os"
	"sort"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/pkg/errors"

	"github.com/guertinlab/seqoutbias/seqtable"
	"github.com/guertinlab/seqoutbias/tabulate"
)

type pair struct {
	Plus, Minus float64
}

// Accumulator is the sparse, per-chromosome scaled-pileup table built while
// walking one or more BAM files against a seqtbl.
//
// Grounded on PileUp (src/scale.rs): a BTreeMap per chromosome, keyed by
// position, holding accumulated (plus, minus) float totals. Go's plain map
// stands in for the BTreeMap since positions are sorted at write time
// instead of kept sorted throughout.
type Accumulator struct {
	chroms []string
	sizes  []uint64
	counts []map[uint32]*pair

	plusShift, minusShift int
	noScale               bool
}

// NewAccumulator creates an empty Accumulator over a seqtbl's sequences.
func NewAccumulator(t *seqtable.SeqTable, plusShift, minusShift int, noScale bool) (*Accumulator, error) {
	names := t.SequenceNames()
	sizes := make([]uint64, len(names))
	for i := range names {
		rdr, err := t.GetSequenceByIdx(i)
		if err != nil {
			return nil, err
		}
		sizes[i] = rdr.Length()
	}
	counts := make([]map[uint32]*pair, len(names))
	for i := range counts {
		counts[i] = map[uint32]*pair{}
	}
	return &Accumulator{
		chroms:     names,
		sizes:      sizes,
		counts:     counts,
		plusShift:  plusShift,
		minusShift: minusShift,
		noScale:    noScale,
	}, nil
}

// AddBAM walks bamPath, adding one scale.Plus or scale.Minus increment (or
// a flat 1, when noScale) to the output position implied by each valid
// record's cut site.
//
// Grounded on PileUp::add_data (src/scale.rs), flattened from its
// tid-batched peekable-iterator walk into a single pass, since biogo/hts's
// Reader has no peek primitive.
func (a *Accumulator) AddBAM(t *seqtable.SeqTable, bamPath string, readLength int, policy tabulate.Policy, scale []ScaleFactor) error {
	r, closeFn, err := openBAM(bamPath)
	if err != nil {
		return err
	}
	defer closeFn()

	header := r.Header()
	tidMap, err := tabulate.BuildTidMap(header, a.chroms)
	if err != nil {
		return err
	}

	var rdr *seqtable.SequenceReader
	curTid := -1
	curIdx := -1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "pileup: reading BAM record")
		}
		if !policy.Valid(rec, readLength) {
			continue
		}
		tid := rec.Ref.ID()
		if tid != curTid {
			curIdx = tidMap[tid]
			rdr, err = t.GetSequenceByIdx(curIdx)
			if err != nil {
				return err
			}
			curTid = tid
		}

		vpos := policy.VirtualPosition(rec, readLength)
		if vpos < 0 || uint64(vpos) >= rdr.Length() {
			continue
		}
		plusIdx, minusIdx, err := rdr.Get(uint64(vpos))
		if err != nil {
			return err
		}

		bucket := a.counts[curIdx]
		if rec.Flags&sam.Reverse != 0 {
			if minusIdx == 0 {
				continue
			}
			inc := 1.0
			if !a.noScale {
				inc = scale[minusIdx].Minus
			}
			pos := uint32(vpos) + uint32(readLength) - 1 + uint32(int32(a.minusShift))
			entry(bucket, pos).Minus += inc
		} else {
			if plusIdx == 0 {
				continue
			}
			inc := 1.0
			if !a.noScale {
				inc = scale[plusIdx].Plus
			}
			pos := uint32(vpos) + uint32(int32(a.plusShift))
			entry(bucket, pos).Plus += inc
		}
	}
	return nil
}

func entry(m map[uint32]*pair, pos uint32) *pair {
	p, ok := m[pos]
	if !ok {
		p = &pair{}
		m[pos] = p
	}
	return p
}

func openBAM(path string) (*bam.Reader, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "pileup: opening BAM %s", path)
	}
	r, err := bam.NewReader(f, 1)
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrapf(err, "pileup: opening BAM %s", path)
	}
	return r, func() { r.Close(); f.Close() }, nil
}

// WriteBED writes one BED interval per recorded position, sorted by
// chromosome order then position. Stranded output emits separate +/- lines
// (minus values negated, matching a signal-track convention), omitting
// zero-valued strands; combined output emits one line per position with
// the summed value.
//
// Grounded on PileUp::write_bed (src/scale.rs).
func (a *Accumulator) WriteBED(w io.Writer, stranded bool) error {
	for i, chrom := range a.chroms {
		for _, pos := range sortedKeys(a.counts[i]) {
			v := a.counts[i][pos]
			if stranded {
				if v.Plus > 0 {
					if _, err := writeBedLine(w, chrom, pos, v.Plus, "+"); err != nil {
						return err
					}
				}
				if v.Minus > 0 {
					if _, err := writeBedLine(w, chrom, pos, -v.Minus, "-"); err != nil {
						return err
					}
				}
			} else {
				if _, err := writeBedLine(w, chrom, pos, v.Plus+v.Minus, ""); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func sortedKeys(m map[uint32]*pair) []uint32 {
	keys := make([]uint32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
