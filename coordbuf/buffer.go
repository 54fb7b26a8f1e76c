// Package coordbuf re-indexes the k-mer stream produced while scanning a
// chromosome into read-start coordinates: the k-mer emitted at FASTA
// position i describes the sequence context around a cut site that a read
// starting some fixed distance away would see, and that distance differs
// between the plus and minus strand. Buffer absorbs the difference with a
// pair of fixed-depth delay lines.
package coordbuf

import "github.com/guertinlab/seqoutbias/kmer"

// Mappability reports, for a read-start position on the current sequence,
// whether the plus and/or minus strand alignment starting there is
// considered mappable. Implemented by the mappability package.
type Mappability interface {
	IsUnmappable(pos uint64) (plusUnmappable, minusUnmappable bool)
}

// Sink receives one (plus, minus) table-index pair per read-start position,
// in order. A value of 0 means "no k-mer recorded" (masked by mappability
// or never present). Implemented by seqtable.SequenceWriter.
type Sink interface {
	Write(plus, minus uint32) error
}

// Counts accumulates genome-wide observed-k-mer frequencies, keyed by the
// same stored table index written to the sink (0 is the absent sentinel).
// Implemented by seqtable's counts table.
type Counts interface {
	AddPlus(idx uint32)
	AddMinus(idx uint32)
}

type slot struct {
	present bool
	value   uint32
}

// delayQueue is a fixed-depth delay line: each Step call returns the value
// pushed `depth` calls ago (the zero slot, before the line has filled) and
// stores the new value in its place. A zero-depth queue passes values
// through unchanged, so the same type serves both strands regardless of
// which one needs buffering.
type delayQueue struct {
	buf  []slot
	head int
}

func newDelayQueue(depth int) *delayQueue {
	if depth <= 0 {
		return &delayQueue{}
	}
	return &delayQueue{buf: make([]slot, depth)}
}

func (q *delayQueue) step(in slot) slot {
	if len(q.buf) == 0 {
		return in
	}
	out := q.buf[q.head]
	q.buf[q.head] = in
	q.head = (q.head + 1) % len(q.buf)
	return out
}

// Buffer drives the coordinate re-indexing for one sequence. Create a fresh
// Buffer at every chromosome boundary.
type Buffer struct {
	sink   Sink
	counts Counts
	mapp   Mappability

	commonSkip int // ticks to discard before either strand is relevant
	extraSkip  int // ticks, after commonSkip, before both strands are live
	ticked     int // ticks consumed since commonSkip reached zero

	plusEarly bool // true when the plus strand reaches its start first
	plusQ     *delayQueue
	minusQ    *delayQueue

	pos uint64 // read-start positions emitted so far in this sequence
}

// New creates a Buffer for a sequence, given a seqtbl's k-mer length, cut-site
// offsets and read length (see seqtable.Params), from which it derives the
// plus/minus start offsets, and the objects it reports to.
func New(kmerLength, plusOffset, minusOffset int, readLength int, mapp Mappability, sink Sink, counts Counts) *Buffer {
	plusStart := kmerLength - 1 - plusOffset
	minusStart := readLength - 1 + minusOffset

	b := &Buffer{sink: sink, counts: counts, mapp: mapp}

	if plusStart < 0 {
		for i := 0; i < -plusStart; i++ {
			b.emit(slot{}, slot{})
		}
		plusStart = 0
	}

	b.commonSkip = plusStart
	if minusStart < plusStart {
		b.commonSkip = minusStart
	}
	if b.commonSkip < 0 {
		b.commonSkip = 0
	}

	diff := plusStart - minusStart
	b.plusEarly = diff < 0
	if diff < 0 {
		diff = -diff
	}
	b.extraSkip = diff

	if b.plusEarly {
		b.plusQ = newDelayQueue(diff)
		b.minusQ = newDelayQueue(0)
	} else {
		b.plusQ = newDelayQueue(0)
		b.minusQ = newDelayQueue(diff)
	}
	return b
}

// Push consumes the k-mer observed at the current FASTA position.
func (b *Buffer) Push(idx kmer.Index) error {
	plus := slot{present: idx.Plus != nil}
	if idx.Plus != nil {
		plus.value = *idx.Plus
	}
	minus := slot{present: idx.Minus != nil}
	if idx.Minus != nil {
		minus.value = *idx.Minus
	}

	if b.commonSkip > 0 {
		b.commonSkip--
		return nil
	}

	if b.ticked < b.extraSkip {
		b.ticked++
		if b.plusEarly {
			b.plusQ.step(plus)
		} else {
			b.minusQ.step(minus)
		}
		return nil
	}

	plusOut := b.plusQ.step(plus)
	minusOut := b.minusQ.step(minus)
	return b.emit(plusOut, minusOut)
}

// Finish pads the remaining positions up to sequenceLength, draining any
// values still held in the delay lines before falling back to (0,0), and
// must be called once per sequence after its last base has been pushed.
func (b *Buffer) Finish(sequenceLength uint64) error {
	for b.pos < sequenceLength {
		var plusOut, minusOut slot
		if b.commonSkip > 0 {
			b.commonSkip--
		} else if b.ticked < b.extraSkip {
			b.ticked++
			if b.plusEarly {
				b.plusQ.step(slot{})
			} else {
				b.minusQ.step(slot{})
			}
		} else {
			plusOut = b.plusQ.step(slot{})
			minusOut = b.minusQ.step(slot{})
		}
		if err := b.emit(plusOut, minusOut); err != nil {
			return err
		}
	}
	return nil
}

func (b *Buffer) emit(plus, minus slot) error {
	plusUnmappable, minusUnmappable := false, false
	if b.mapp != nil {
		plusUnmappable, minusUnmappable = b.mapp.IsUnmappable(b.pos)
	}

	var storedPlus, storedMinus uint32
	if plus.present && !plusUnmappable {
		storedPlus = plus.value + 1
	}
	if minus.present && !minusUnmappable {
		storedMinus = minus.value + 1
	}
	b.counts.AddPlus(storedPlus)
	b.counts.AddMinus(storedMinus)

	b.pos++
	if b.sink == nil {
		return nil
	}
	return b.sink.Write(storedPlus, storedMinus)
}
