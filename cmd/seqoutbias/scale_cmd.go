package main

import (
	"flag"
	"os"

	"github.com/grailbio/base/log"

	"github.com/guertinlab/seqoutbias/cli"
	"github.com/guertinlab/seqoutbias/interval"
	"github.com/guertinlab/seqoutbias/outname"
	"github.com/guertinlab/seqoutbias/pileup"
	"github.com/guertinlab/seqoutbias/seqtable"
	"github.com/guertinlab/seqoutbias/tabulate"
)

// scaleFlags are the flags shared by the scale verb and the default
// three-phase form's final phase.
type scaleFlags struct {
	qual        uint
	regionsPath string
	pdist       string
	onlyPaired  bool
	exactLength bool
	noScale     bool
	stranded    bool
	tailEdge    bool
	shiftCounts bool
	customShift string
	skipBed     bool
	bedOut      string
	skipBw      bool
	bwOut       string
	bwTool      string
}

func (f *scaleFlags) register(fs *flag.FlagSet) {
	fs.UintVar(&f.qual, "qual", 0, "minimum mapping quality")
	fs.StringVar(&f.regionsPath, "regions", "", "restrict scaling to a BED region file")
	fs.StringVar(&f.pdist, "pdist", "", "paired-end distance range min:max")
	fs.BoolVar(&f.onlyPaired, "only-paired", false, "require properly paired alignments")
	fs.BoolVar(&f.exactLength, "exact-length", false, "require reads of exactly the seqtbl's configured length")
	fs.BoolVar(&f.noScale, "no-scale", false, "tabulate raw read counts instead of sequence-bias-corrected ones")
	fs.BoolVar(&f.stranded, "stranded", false, "emit separate plus/minus strand output")
	fs.BoolVar(&f.tailEdge, "tail-edge", false, "place the cut site at the read's trailing edge")
	fs.BoolVar(&f.shiftCounts, "shift-counts", false, "shift minus-strand counts to align with the plus strand's cut-site offset")
	fs.StringVar(&f.customShift, "custom-shift", "", "explicit plus:minus shift (cannot be combined with --shift-counts)")
	fs.BoolVar(&f.skipBed, "skip-bed", false, "do not write a BED file")
	fs.StringVar(&f.bedOut, "bed", "", "output BED filename (defaults to the first BAM file's basename with a _scaled/_not_scaled.bed suffix)")
	fs.BoolVar(&f.skipBw, "skip-bw", false, "do not write a BigWig file")
	fs.StringVar(&f.bwOut, "bw", "", "output BigWig filename (defaults to the first BAM file's basename with a .bw extension)")
	fs.StringVar(&f.bwTool, "bw-tool", "wigToBigWig", "path to the wigToBigWig binary")
}

// runScale implements `seqoutbias scale [flags] <seqtbl> <bam>...`.
func runScale(args []string) error {
	fs := flag.NewFlagSet("scale", flag.ExitOnError)
	var sf scaleFlags
	sf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 2 {
		return cli.Errorf("scale: expected a seqtbl and at least one BAM file")
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

	return runScalePhase(table, bamPaths, sf)
}

// runScalePhase is the shared scale-and-write logic behind both the scale
// verb and the default three-phase form's final step.
//
// Grounded on scale() (src/scale.rs): compute genome and observed k-mer
// frequencies, derive per-k-mer scale factors and the plus/minus shift,
// walk every BAM file accumulating scaled pileup values, then write BED
// and/or BigWig output.
func runScalePhase(table *seqtable.SeqTable, bamPaths []string, sf scaleFlags) error {
	if sf.skipBed && sf.skipBw {
		return cli.Errorf("scale: --skip-bed and --skip-bw together produce no output")
	}
	if sf.customShift != "" && sf.shiftCounts {
		return cli.Errorf("scale: --custom-shift and --shift-counts are mutually exclusive")
	}
	for _, bamPath := range bamPaths {
		if !fileExists(bamPath) {
			return cli.Errorf("scale: BAM file %s does not exist", bamPath)
		}
	}
	bamStem := bamPaths[0]

	var regions *interval.Set
	if sf.regionsPath != "" {
		var err error
		regions, err = interval.OpenPath(sf.regionsPath)
		if err != nil {
			return err
		}
	}

	policy := tabulate.Policy{
		MinQual:     byte(sf.qual),
		ExactLength: sf.exactLength,
		ForcePaired: sf.onlyPaired,
		TailEdge:    sf.tailEdge,
	}
	if sf.pdist != "" {
		min, max, err := parseRange(sf.pdist)
		if err != nil {
			return err
		}
		policy.HasPdist = true
		policy.MinDist = min
		policy.MaxDist = max
	}

	params := table.Params()

	var scale []pileup.ScaleFactor
	if !sf.noScale {
		genome, err := tabulate.GenomeCounts(table, regions)
		if err != nil {
			return err
		}
		observed := seqtable.NewKmerCounts(params)
		for _, bamPath := range bamPaths {
			c, err := tabulate.Accumulate(table, bamPath, params.ReadLength, policy, regions)
			if err != nil {
				return err
			}
			for i := range c.SeqPlus {
				observed.SeqPlus[i] += c.SeqPlus[i]
				observed.SeqMinus[i] += c.SeqMinus[i]
			}
		}
		scale = pileup.ComputeScaleFactors(genome, observed)
	}

	plusShift, minusShift := 0, 0
	switch {
	case sf.customShift != "":
		p, m, err := parseShift(sf.customShift)
		if err != nil {
			return err
		}
		plusShift, minusShift = p, m
	case sf.shiftCounts:
		minusShift = pileup.ComputeShift(params)
	}

	acc, err := pileup.NewAccumulator(table, plusShift, minusShift, sf.noScale)
	if err != nil {
		return err
	}
	for _, bamPath := range bamPaths {
		if err := acc.AddBAM(table, bamPath, params.ReadLength, policy, scale); err != nil {
			return err
		}
	}

	stemSuffix := "_scaled"
	if sf.noScale {
		stemSuffix = "_not_scaled"
	}

	if !sf.skipBed {
		var bedPath string
		if sf.bedOut != "" {
			bedPath = outname.FromFilename(sf.bedOut, "bed").Filename()
		} else {
			bedPath = outname.FromParts(bamStem, "bed").AppendSuffix(stemSuffix).Filename()
		}
		if fileExists(bedPath) {
			return cli.Errorf("scale: output BED file %s already exists", bedPath)
		}
		bedFile, err := os.Create(bedPath)
		if err != nil {
			return err
		}
		if err := acc.WriteBED(bedFile, sf.stranded); err != nil {
			bedFile.Close()
			return err
		}
		if err := bedFile.Close(); err != nil {
			return err
		}
		log.Printf("# scale produced %s", bedPath)
	} else {
		log.Printf("# scale skipping BED output")
	}
	if !sf.skipBw {
		var bwPath string
		if sf.bwOut != "" {
			bwPath = outname.FromFilename(sf.bwOut, "bw").Filename()
		} else {
			bwPath = outname.FromParts(bamStem, "bw").Filename()
		}
		plusPath, minusPath, err := acc.WriteBigWig(sf.bwTool, bwPath, sf.stranded)
		if err != nil {
			return err
		}
		if sf.stranded {
			log.Printf("# scale produced %s", plusPath)
			log.Printf("# scale produced %s", minusPath)
		} else {
			log.Printf("# scale produced %s", plusPath)
		}
	} else {
		log.Printf("# scale skipping BigWig output")
	}
	return nil
}
