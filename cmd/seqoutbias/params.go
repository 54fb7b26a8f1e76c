package main

import (
	"flag"
	"fmt"

	"github.com/guertinlab/seqoutbias/cli"
	"github.com/guertinlab/seqoutbias/outname"
	"github.com/guertinlab/seqoutbias/seqtable"
)

// seqtableFlags are the flags shared by every command that builds or
// selects a seqtbl's coordinate system.
type seqtableFlags struct {
	cutSize        int
	cutMask        string
	plusOffset     int
	minusOffset    int
	readSize       int
	strandSpecific bool
}

func (f *seqtableFlags) register(fs *flag.FlagSet) {
	fs.IntVar(&f.cutSize, "kmer-size", 4, "cut-site k-mer size")
	fs.StringVar(&f.cutMask, "kmer-mask", "", "cut-mask string, e.g. NNXXNNCXXXXNNXXNN (overrides kmer-size)")
	fs.IntVar(&f.plusOffset, "plus-offset", 2, "cut-site offset on the plus strand")
	fs.IntVar(&f.minusOffset, "minus-offset", 2, "cut-site offset on the minus strand")
	fs.IntVar(&f.readSize, "read-size", 36, "aligned read length")
	fs.BoolVar(&f.strandSpecific, "strand-specific", false, "compute independent plus/minus k-mers under a masked cut-mask")
}

// params builds seqtable.Params from the parsed flags, validating the
// cut-mask if one was given.
func (f *seqtableFlags) params() (seqtable.Params, error) {
	if f.cutMask != "" {
		if _, _, err := seqtable.ParseMask(f.cutMask); err != nil {
			return seqtable.Params{}, cli.Errorf("%v", err)
		}
	}
	return seqtable.NewParams(f.cutSize, f.plusOffset, f.minusOffset, f.readSize, f.cutMask, f.strandSpecific)
}

// seqtableSuffix is the "_<read>.<cut>.<plus>.<minus>" suffix distinguishing
// seqtbl files built with different parameters, grounded in main.rs's
// stem_filename call for phase 2.
func seqtableSuffix(p seqtable.Params) string {
	return fmt.Sprintf("_%d.%d.%d.%d", p.ReadLength, p.KmerLength, p.PlusOffset, p.MinusOffset)
}

// seqtableOutputName computes the seqtbl output path for a FASTA input: the
// FASTA stem, or the --out name in its place when one is given, followed by
// seqtableSuffix and then the --out extension or "tbl".
func seqtableOutputName(fastaPath, outFlag string, p seqtable.Params) string {
	return outname.From(fastaPath, outFlag, "tbl").AppendSuffix(seqtableSuffix(p)).Filename()
}
