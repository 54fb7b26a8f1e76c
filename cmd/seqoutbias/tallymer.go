package main

import (
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/guertinlab/seqoutbias/cli"
	"github.com/guertinlab/seqoutbias/external"
)

// runTallymerCmd implements `seqoutbias tallymer [--parts=<n>] [--gt=<path>]
// <fasta-file> <read-size>`: phase 1 alone, building (or reusing) the
// mappability oracle without touching a seqtbl or any BAM file.
func runTallymerCmd(args []string) error {
	fs := flag.NewFlagSet("tallymer", flag.ExitOnError)
	parts := fs.Int("parts", 4, "split suffix tree generation into this many parts")
	gtPath := fs.String("gt", "gt", "path to the genometools binary")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 2 {
		return cli.Errorf("tallymer: expected a FASTA file and a read size")
	}
	fastaPath := rest[0]
	readSize, err := strconv.Atoi(rest[1])
	if err != nil {
		return cli.Errorf("tallymer: invalid read size %q", rest[1])
	}
	if !fileExists(fastaPath) {
		return cli.Errorf("FASTA file %s does not exist", fastaPath)
	}
	path, err := tallymerPath(*gtPath, fastaPath, readSize, *parts)
	if err != nil {
		return err
	}
	log.Printf("# tallymer produced/found %s", path)
	return nil
}

// basenameNoGz strips a trailing ".gz" and any remaining extension from a
// FASTA path, the stem every tallymer-phase filename is built from.
//
// Grounded on basename_nogz (src/tallyrun.rs).
func basenameNoGz(path string) string {
	if strings.HasSuffix(path, ".gz") {
		path = path[:len(path)-3]
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func suffixTreeFilename(fasta string) string {
	return basenameNoGz(fasta) + ".sft"
}

func tallymerIndexFilename(fasta string, readSize int) string {
	return basenameNoGz(fasta) + ".tal_" + strconv.Itoa(readSize)
}

func tallymerOutputFilename(fasta string, readSize int) string {
	return tallymerIndexFilename(fasta, readSize) + ".gtTxt"
}

// tallymerPath locates (building it if necessary) the mappability oracle
// for fasta: a gzip-compressed "seqIndex\t[+-]pos" stream produced by
// genometools' suffixerator + tallymer mkindex + tallymer search pipeline.
//
// Grounded on tallymer_createfile (src/tallyrun.rs): the output and its
// gzip-suffixed sibling are checked for reuse before any external tool
// runs.
func tallymerPath(gtPath, fasta string, readSize, parts int) (string, error) {
	out := tallymerOutputFilename(fasta, readSize)
	if fileExists(out) {
		return out, nil
	}
	gzOut := out + ".gz"
	if fileExists(gzOut) {
		return gzOut, nil
	}

	log.Printf("# creating mappability file using tallymer")

	sftName := suffixTreeFilename(fasta)
	if !external.SuffixTreeIndexExists(sftName) {
		if err := external.RunSuffixerator(gtPath, fasta, sftName, parts); err != nil {
			return "", err
		}
	}

	tidxName := tallymerIndexFilename(fasta, readSize)
	if err := external.RunTallymerMkindex(gtPath, sftName, tidxName, readSize); err != nil {
		return "", err
	}

	f, err := os.Create(gzOut)
	if err != nil {
		return "", errors.Wrapf(err, "tallymer: creating %s", gzOut)
	}
	defer f.Close()
	gz, err := gzip.NewWriterLevel(f, gzip.BestCompression)
	if err != nil {
		return "", errors.Wrap(err, "tallymer: creating gzip writer")
	}
	if err := external.RunTallymerSearch(gtPath, tidxName, fasta, gz); err != nil {
		gz.Close()
		return "", err
	}
	if err := gz.Close(); err != nil {
		return "", errors.Wrap(err, "tallymer: flushing gzip writer")
	}

	log.Printf("# tallymer produced %s", gzOut)
	return gzOut, nil
}
