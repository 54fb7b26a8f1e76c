package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/guertinlab/seqoutbias/cli"
	"github.com/guertinlab/seqoutbias/interval"
	"github.com/guertinlab/seqoutbias/seqtable"
	"github.com/guertinlab/seqoutbias/tabulate"
)

// runTable implements `seqoutbias table <seqtbl> [bam...]`: a TSV dump of
// every table index's decoded k-mer alongside its genome-wide count and,
// when one or more BAM files are given, its observed count across all of
// them combined.
//
// Grounded on print_counts/KeyIter (src/counts.rs), extended from a single
// optional BAM file to a list, summed together, to match the CLI surface's
// `[<bam-file>...]`.
func runTable(args []string) error {
	fs := flag.NewFlagSet("table", flag.ExitOnError)
	qual := fs.Uint("qual", 0, "minimum mapping quality")
	regionsPath := fs.String("regions", "", "restrict counting to a BED region file")
	pdist := fs.String("pdist", "", "paired-end distance range min:max")
	onlyPaired := fs.Bool("only-paired", false, "require properly paired alignments")
	exactLength := fs.Bool("exact-length", false, "require reads of exactly the seqtbl's configured length")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 1 {
		return cli.Errorf("table: missing seqtbl argument")
	}
	seqtblPath := rest[0]
	bamPaths := rest[1:]

	f, err := os.Open(seqtblPath)
	if err != nil {
		return err
	}
	defer f.Close()
	table, err := seqtable.Open(f)
	if err != nil {
		return err
	}

	var regions *interval.Set
	if *regionsPath != "" {
		regions, err = interval.OpenPath(*regionsPath)
		if err != nil {
			return err
		}
	}

	policy := tabulate.Policy{
		MinQual:     byte(*qual),
		ExactLength: *exactLength,
		ForcePaired: *onlyPaired,
	}
	if *pdist != "" {
		min, max, err := parseRange(*pdist)
		if err != nil {
			return err
		}
		policy.HasPdist = true
		policy.MinDist = min
		policy.MaxDist = max
	}

	genome, err := tabulate.GenomeCounts(table, regions)
	if err != nil {
		return err
	}

	var observed *seqtable.KmerCounts
	if len(bamPaths) > 0 {
		observed = seqtable.NewKmerCounts(table.Params())
		for _, bamPath := range bamPaths {
			c, err := tabulate.Accumulate(table, bamPath, table.Params().ReadLength, policy, regions)
			if err != nil {
				return err
			}
			for i := range c.SeqPlus {
				observed.SeqPlus[i] += c.SeqPlus[i]
				observed.SeqMinus[i] += c.SeqMinus[i]
			}
		}
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	return printCounts(w, table.Params(), genome, observed)
}

// printCounts writes one line per table index (skipping index 0, the
// absent sentinel), decoding each index's k-mer alongside its counts.
func printCounts(w *bufio.Writer, p seqtable.Params, genome, observed *seqtable.KmerCounts) error {
	for idx := 1; idx < len(genome.SeqPlus); idx++ {
		key := tabulate.DecodeKey(uint32(idx), p.UnmaskedCount)
		if observed != nil {
			_, err := fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\n",
				idx, key, genome.SeqPlus[idx], genome.SeqMinus[idx],
				observed.SeqPlus[idx], observed.SeqMinus[idx])
			if err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%d\t%d\n", idx, key, genome.SeqPlus[idx], genome.SeqMinus[idx]); err != nil {
			return err
		}
	}
	return nil
}
