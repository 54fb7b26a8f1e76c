// Command seqoutbias corrects aligned-read pileups for sequence bias around
// the cut site of an enzymatic or chemical assay, by comparing each k-mer's
// genome-wide frequency against its frequency among aligned reads and
// scaling accordingly.
//
// Usage mirrors the original five-verb CLI:
//
//	seqoutbias tallymer [flags] <fasta> <read-size>
//	seqoutbias seqtable [flags] <fasta>
//	seqoutbias dump <seqtbl> [chrom[:start-end]]
//	seqoutbias table [flags] <seqtbl> [bam...]
//	seqoutbias scale [flags] <seqtbl> <bam...>
//	seqoutbias [flags] <fasta> <bam...>   (all three phases)
//
// Flags are parsed with the standard flag package, which stops at the first
// positional argument, so flags must precede the positional arguments.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/guertinlab/seqoutbias/cli"
)

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// parseRange decodes a "min:max" pair distance flag value.
func parseRange(s string) (min, max int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, cli.Errorf("invalid distance range %q, expected min:max", s)
	}
	min, err1 := strconv.Atoi(parts[0])
	max, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, cli.Errorf("invalid distance range %q, expected min:max", s)
	}
	return min, max, nil
}

// parseShift decodes a "plus:minus" custom-shift flag value.
func parseShift(s string) (plus, minus int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, cli.Errorf("invalid custom-shift %q, expected plus:minus", s)
	}
	plus, err1 := strconv.Atoi(parts[0])
	minus, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, cli.Errorf("invalid custom-shift %q, expected plus:minus", s)
	}
	return plus, minus, nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
