package pileup

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/guertinlab/seqoutbias/external"
	"github.com/guertinlab/seqoutbias/outname"
)

func writeBedLine(w io.Writer, chrom string, pos uint32, value float64, strand string) (int, error) {
	if strand == "" {
		return fmt.Fprintf(w, "%s\t%d\t%d\t.\t%v\n", chrom, pos, pos+1, value)
	}
	return fmt.Fprintf(w, "%s\t%d\t%d\t.\t%v\t%s\n", chrom, pos, pos+1, value, strand)
}

// writeWiggle writes a variableStep wiggle track for one strand (or, for
// strand == 0, the combined plus+minus signal). Wiggle positions are
// 1-based, so every stored 0-based position is shifted by one.
//
// Grounded on write_wiggle (src/bigwig.rs).
func (a *Accumulator) writeWiggle(w io.Writer, strand byte) error {
	for i, chrom := range a.chroms {
		if _, err := fmt.Fprintf(w, "variableStep chrom=%s\n", chrom); err != nil {
			return err
		}
		for _, pos := range sortedKeys(a.counts[i]) {
			v := a.counts[i][pos]
			wigPos := pos + 1
			switch strand {
			case '+':
				if v.Plus > 0 {
					if _, err := fmt.Fprintf(w, "%d\t%v\n", wigPos, v.Plus); err != nil {
						return err
					}
				}
			case '-':
				if v.Minus > 0 {
					if _, err := fmt.Fprintf(w, "%d\t%v\n", wigPos, -v.Minus); err != nil {
						return err
					}
				}
			default:
				if _, err := fmt.Fprintf(w, "%d\t%v\n", wigPos, v.Plus+v.Minus); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// writeChromInfo writes the "name\tsize" table wigToBigWig needs to bound
// each chromosome's output.
func (a *Accumulator) writeChromInfo(w io.Writer) error {
	for i, chrom := range a.chroms {
		if _, err := fmt.Fprintf(w, "%s\t%d\n", chrom, a.sizes[i]); err != nil {
			return err
		}
	}
	return nil
}

// WriteBigWig produces one (combined) or two (stranded: "_plus"/"_minus"
// suffixed) BigWig files at outPath via wigToBigWig, generating and
// cleaning up a temporary wiggle file and chromInfo file for each.
//
// Grounded on PileUp::write_bw and write_bigwig (src/scale.rs,
// src/bigwig.rs), using external.RandomFilename for the temporaries instead
// of the fixed "wiggle.tmp"/"chromInfo.tmp" names, so concurrent runs in
// the same directory cannot collide.
func (a *Accumulator) WriteBigWig(toolPath, outPath string, stranded bool) (plusPath, minusPath string, err error) {
	if !stranded {
		if err := a.writeOneBigWig(toolPath, outPath, 0); err != nil {
			return "", "", err
		}
		return outPath, "", nil
	}

	name := outname.FromFilename(outPath, "bw")
	plusPath = name.AppendSuffix("_plus").Filename()
	minusPath = name.AppendSuffix("_minus").Filename()

	if err := a.writeOneBigWig(toolPath, plusPath, '+'); err != nil {
		return "", "", err
	}
	if err := a.writeOneBigWig(toolPath, minusPath, '-'); err != nil {
		return "", "", err
	}
	return plusPath, minusPath, nil
}

func (a *Accumulator) writeOneBigWig(toolPath, outPath string, strand byte) error {
	dir := "."
	wigPath, err := external.RandomFilename(dir, "seqoutbias_wig_", ".tmp")
	if err != nil {
		return err
	}
	chromPath, err := external.RandomFilename(dir, "seqoutbias_chrominfo_", ".tmp")
	if err != nil {
		return err
	}
	defer os.Remove(wigPath)
	defer os.Remove(chromPath)

	if err := writeFile(wigPath, func(w io.Writer) error { return a.writeWiggle(w, strand) }); err != nil {
		return err
	}
	if err := writeFile(chromPath, a.writeChromInfo); err != nil {
		return err
	}
	return external.RunWigToBigWig(toolPath, wigPath, chromPath, outPath)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "pileup: creating %s", path)
	}
	defer f.Close()
	if err := write(f); err != nil {
		return errors.Wrapf(err, "pileup: writing %s", path)
	}
	return f.Close()
}
