package main

import (
	"flag"
	"os"

	"github.com/grailbio/base/log"

	"github.com/guertinlab/seqoutbias/cli"
	"github.com/guertinlab/seqoutbias/seqtable"
)

// runDefault implements the three-phase form `seqoutbias [flags] <fasta>
// <bam...>`: build a mappability oracle with tallymer, build (or reuse) a
// seqtbl, then scale the given BAM files against it.
//
// Grounded on main()'s run_tallymer/run_seqtable/run_scale = true branch
// (src/main.rs).
func runDefault(args []string) error {
	fs := flag.NewFlagSet("seqoutbias", flag.ExitOnError)
	var st seqtableFlags
	var sf scaleFlags
	st.register(fs)
	sf.register(fs)
	gtPath := fs.String("gt", "gt", "path to the genometools binary")
	parts := fs.Int("parts", 4, "split suffix tree generation into this many parts")
	cutmaskOut := fs.String("out", "", "output seqtable filename, used in place of the FASTA stem (the parameter suffix is still added)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 2 {
		return cli.Errorf("seqoutbias: expected a FASTA file and at least one BAM file")
	}
	fastaPath := rest[0]
	bamPaths := rest[1:]

	switch fastaPath {
	case "dump", "table", "tallymer", "seqtable", "scale":
		return cli.Errorf("invalid arguments to %s command", fastaPath)
	}
	if !fileExists(fastaPath) {
		return cli.Errorf("FASTA file %s does not exist", fastaPath)
	}

	params, err := st.params()
	if err != nil {
		return err
	}

	tallyPath, err := tallymerPath(*gtPath, fastaPath, st.readSize, *parts)
	if err != nil {
		return err
	}
	log.Printf("# tallymer produced/found %s", tallyPath)

	outfile := seqtableOutputName(fastaPath, *cutmaskOut, params)
	seqtblPath, err := buildSeqtable(fastaPath, tallyPath, outfile, params)
	if err != nil {
		return err
	}

	f, err := os.Open(seqtblPath)
	if err != nil {
		return err
	}
	defer f.Close()
	table, err := seqtable.Open(f)
	if err != nil {
		return err
	}

	return runScalePhase(table, bamPaths, sf)
}
