package seqtable

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Range identifies a chromosome, and optionally a [Start, End) sub-range
// within it, in a seqrange argument of the form "chrom" or
// "chrom:start-end".
type Range struct {
	Chrom      string
	Start, End uint64
	HasRange   bool
}

// ParseRange decodes a seqrange argument.
func ParseRange(s string) (Range, error) {
	chrom, rest, hasColon := strings.Cut(s, ":")
	if !hasColon {
		return Range{Chrom: chrom}, nil
	}
	startStr, endStr, hasDash := strings.Cut(rest, "-")
	if !hasDash {
		return Range{}, errors.Errorf("seqtable: malformed seqrange %q", s)
	}
	start, err := strconv.ParseUint(startStr, 10, 64)
	if err != nil {
		return Range{}, errors.Wrapf(err, "seqtable: parsing start coordinate in %q", s)
	}
	end, err := strconv.ParseUint(endStr, 10, 64)
	if err != nil {
		return Range{}, errors.Wrapf(err, "seqtable: parsing end coordinate in %q", s)
	}
	if end < start {
		return Range{}, errors.Errorf("seqtable: end before start in %q", s)
	}
	return Range{Chrom: chrom, Start: start, End: end, HasRange: true}, nil
}

func dumpHeader(w io.Writer, p Params) {
	fmt.Fprintf(w, "# cut-size:     %d\n", p.KmerLength)
	fmt.Fprintf(w, "# plus-offset:  %d\n", p.PlusOffset)
	fmt.Fprintf(w, "# minus-offset: %d\n", p.MinusOffset)
	fmt.Fprintf(w, "# read-size:    %d\n", p.ReadLength)
}

func dumpSequence(w io.Writer, rdr *SequenceReader, name string, length uint64, start, end uint64) error {
	fmt.Fprintf(w, ">%s %d\n", name, length)
	for i := start; i < end; i++ {
		plus, minus, err := rdr.Get(i)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%d\t%d\n", i, plus, minus)
	}
	return nil
}

// Dump writes every sequence's full (plus, minus) column to w, in the
// format read by external plotting/analysis tools: a ">name length"
// header line per chromosome followed by one "pos\tplus\tminus" line per
// position.
func Dump(w io.Writer, t *SeqTable) error {
	dumpHeader(w, t.Params())
	for _, name := range t.SequenceNames() {
		info, err := t.GetSequence(name)
		if err != nil {
			return err
		}
		if err := dumpSequence(w, info, name, info.Length(), 0, info.Length()); err != nil {
			return err
		}
	}
	return nil
}

// DumpRange writes a single chromosome, optionally restricted to
// [r.Start, r.End), in the same format as Dump.
func DumpRange(w io.Writer, t *SeqTable, r Range) error {
	dumpHeader(w, t.Params())
	for _, name := range t.SequenceNames() {
		if name != r.Chrom {
			continue
		}
		info, err := t.GetSequence(name)
		if err != nil {
			return err
		}
		start, end := uint64(0), info.Length()
		if r.HasRange {
			start, end = r.Start, r.End
		}
		return dumpSequence(w, info, name, info.Length(), start, end)
	}
	return errors.Errorf("seqtable: sequence %q not found", r.Chrom)
}
