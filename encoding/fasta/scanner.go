package fasta

import (
	"bufio"
	"io"

	"github.com/pkg/errors"

	"github.com/guertinlab/seqoutbias/coordbuf"
	"github.com/guertinlab/seqoutbias/mappability"
	"github.com/guertinlab/seqoutbias/seqtable"
)

type state int

const (
	stateHeaderStart state = iota
	stateHeaderChrom
	stateHeaderRest
	stateBody
)

// Generate reads a FASTA stream and writes a seqtbl via w, consuming mapp's
// per-sequence mappability data in lockstep at every chromosome boundary.
// mapp may be nil, in which case no position is ever masked unmappable.
//
// Grounded on generate_seqtable_ctxt (src/fasta.rs): a line-oriented state
// machine (header-start, header-chrom-name, rest-of-header-line, body)
// feeding each body base through a kmer.Context, a coordbuf.Buffer, and a
// seqtable.SequenceWriter, and advancing mapp to the next sequence whenever
// the body scan returns to a header.
func Generate(fasta io.Reader, mapp *mappability.Reader, params seqtable.Params, w *seqtable.Writer) error {
	ctxt := newContext(params)
	br := bufio.NewReaderSize(fasta, 1<<20)

	st := stateHeaderStart
	var chrom []byte
	var seqWriter *seqtable.SequenceWriter
	var buf *coordbuf.Buffer
	var seqPos uint64

	startSequence := func() error {
		seqWriter = w.CreateSequence(string(chrom))
		var mapSource coordbuf.Mappability
		if mapp != nil {
			mapSource = mapp
		}
		buf = coordbuf.New(params.KmerLength, params.PlusOffset, params.MinusOffset, params.ReadLength, mapSource, seqWriter, w.Counts())
		seqPos = 0
		return nil
	}

	finishSequence := func() error {
		if seqWriter == nil {
			return nil
		}
		if err := buf.Finish(seqPos); err != nil {
			return err
		}
		if err := seqWriter.Close(); err != nil {
			return err
		}
		seqWriter = nil
		if mapp != nil {
			if err := mapp.ReadNextSequence(); err != nil {
				return err
			}
		}
		return nil
	}

	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "fasta: reading input")
		}

		switch st {
		case stateHeaderStart:
			if b != '>' {
				return errors.Errorf("fasta: expected '>' to start a record, got %q", b)
			}
			chrom = chrom[:0]
			st = stateHeaderChrom
			ctxt.SequenceChange()

		case stateHeaderChrom:
			switch b {
			case ' ', '\t':
				st = stateHeaderRest
			case '\n':
				if err := startSequence(); err != nil {
					return err
				}
				st = stateBody
			default:
				chrom = append(chrom, b)
			}

		case stateHeaderRest:
			if b == '\n' {
				if err := startSequence(); err != nil {
					return err
				}
				st = stateBody
			}

		case stateBody:
			if b == '>' {
				if err := finishSequence(); err != nil {
					return err
				}
				chrom = chrom[:0]
				st = stateHeaderChrom
				ctxt.SequenceChange()
				continue
			}
			if v, ok := base(b); ok {
				idx := ctxt.AddBase(v)
				if err := buf.Push(idx); err != nil {
					return err
				}
				seqPos++
			}
		}
	}

	switch st {
	case stateBody:
		return finishSequence()
	case stateHeaderStart:
		return nil
	default:
		return errors.Errorf("fasta: truncated input, no sequence body for the last header")
	}
}
