package main

import (
	"fmt"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
)

const usage = `Cut-site frequencies

Usage:
  seqoutbias tallymer [--parts=<n>] [--gt=<path>] <fasta-file> <read-size>
  seqoutbias seqtable [options] <fasta-file>
  seqoutbias dump <seqtbl-file> [<seqrange>]
  seqoutbias table [--qual=<q>] [--regions=<bedfile>] [--pdist=<min:max>] [--only-paired] [--exact-length] <seqtbl-file> [<bam-file>...]
  seqoutbias scale [options] <seqtbl-file> <bam-file>...
  seqoutbias [options] <fasta-file> <bam-file>...
  seqoutbias -h | --help
  seqoutbias --version

Flags go before the positional arguments: everything from the first
positional argument on is taken as a positional argument.
`

const version = "1.0.0"

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	shutdown := grail.Init()
	defer shutdown()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "-h", "--help":
		fmt.Fprint(os.Stdout, usage)
		return
	case "--version":
		fmt.Printf("seqoutbias, v%s\n", version)
		return
	case "tallymer":
		err = runTallymerCmd(os.Args[2:])
	case "seqtable":
		err = runSeqtableCmd(os.Args[2:])
	case "dump":
		err = runDump(os.Args[2:])
	case "table":
		err = runTable(os.Args[2:])
	case "scale":
		err = runScale(os.Args[2:])
	default:
		err = runDefault(os.Args[1:])
	}
	if err != nil {
		fatal(err)
	}
}
