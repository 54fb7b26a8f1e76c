package main

import (
	"bufio"
	"os"

	"github.com/pkg/errors"

	"github.com/guertinlab/seqoutbias/cli"
	"github.com/guertinlab/seqoutbias/seqtable"
)

// runDump implements `seqoutbias dump <seqtbl> [chrom[:start-end]]`.
func runDump(args []string) error {
	if len(args) < 1 {
		return cli.Errorf("dump: missing seqtbl argument")
	}
	seqtblPath := args[0]

	f, err := os.Open(seqtblPath)
	if err != nil {
		return errors.Wrapf(err, "dump: opening %s", seqtblPath)
	}
	defer f.Close()
	table, err := seqtable.Open(f)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	if len(args) < 2 {
		return seqtable.Dump(w, table)
	}
	r, err := seqtable.ParseRange(args[1])
	if err != nil {
		return err
	}
	return seqtable.DumpRange(w, table, r)
}
