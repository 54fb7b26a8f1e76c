package main

import (
	"context"
	"flag"
	"os"

	"github.com/grailbio/base/log"
	"github.com/pkg/errors"

	"github.com/guertinlab/seqoutbias/cli"
	"github.com/guertinlab/seqoutbias/encoding/fasta"
	"github.com/guertinlab/seqoutbias/mappability"
	"github.com/guertinlab/seqoutbias/seqtable"
)

// runSeqtableCmd implements `seqoutbias seqtable [options] <fasta-file>`:
// phases 1 and 2, building (or finding) a mappability oracle with tallymer
// and then building (or reusing) a seqtbl from it.
func runSeqtableCmd(args []string) error {
	fs := flag.NewFlagSet("seqtable", flag.ExitOnError)
	var st seqtableFlags
	st.register(fs)
	gtPath := fs.String("gt", "gt", "path to the genometools binary")
	parts := fs.Int("parts", 4, "split suffix tree generation into this many parts")
	out := fs.String("out", "", "output seqtable filename, used in place of the FASTA stem (the parameter suffix is still added)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 1 {
		return cli.Errorf("seqtable: missing FASTA file argument")
	}
	fastaPath := rest[0]
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

	outfile := seqtableOutputName(fastaPath, *out, params)
	_, err = buildSeqtable(fastaPath, tallyPath, outfile, params)
	return err
}

// buildSeqtable returns the seqtbl path to use for fastaPath: the existing
// file at outfile, if one is present and Equivalent to params, or else a
// freshly generated one.
//
// Grounded on main.rs's phase-2 block: the reuse check is `main`'s own
// logic there, not seqtable.rs's, since whether to reuse or rebuild is a
// driver-level policy decision.
func buildSeqtable(fastaPath, tallyPath, outfile string, params seqtable.Params) (string, error) {
	if fileExists(outfile) {
		f, err := os.Open(outfile)
		if err != nil {
			return "", errors.Wrapf(err, "seqtable: opening existing %s", outfile)
		}
		defer f.Close()
		existing, err := seqtable.Open(f)
		if err != nil {
			return "", err
		}
		if !existing.Equivalent(params) {
			return "", &seqtable.ParamsMismatchError{Path: outfile}
		}
		log.Printf("# seqtable reusing existing %s", outfile)
		return outfile, nil
	}

	if err := generateSeqtable(fastaPath, tallyPath, outfile, params); err != nil {
		return "", err
	}
	log.Printf("# seqtable produced %s", outfile)
	return outfile, nil
}

func generateSeqtable(fastaPath, tallyPath, outfile string, params seqtable.Params) error {
	fastaReader, err := fasta.OpenPath(fastaPath)
	if err != nil {
		return err
	}
	defer fastaReader.Close()

	mapp, err := mappability.OpenPath(context.Background(), tallyPath)
	if err != nil {
		return err
	}

	out, err := os.Create(outfile)
	if err != nil {
		return errors.Wrapf(err, "seqtable: creating %s", outfile)
	}
	defer out.Close()

	w, err := seqtable.NewWriter(out, params, 0)
	if err != nil {
		return err
	}
	if err := fasta.Generate(fastaReader, mapp, params, w); err != nil {
		return err
	}
	return w.Close()
}
