package kmer

// Simple is the unmasked k-mer context: every position in the window
// contributes to the index, in order, as a base-4 integer with the leftmost
// base most significant. It is grounded on the original implementation's
// EnzContextSimple (src/fasta/context/simple.rs): a fixed-size ring buffer
// holds the window's bases so the outgoing base's contribution can be
// subtracted from a running integer, instead of recomputing the whole k-mer
// on every base.
type Simple struct {
	size           int
	strandSpecific bool

	ring   []byte
	head   int // index of the oldest base in ring
	filled int // number of bases currently held, capped at size

	value    uint64 // current plus-strand k-mer as an integer
	radix    uint64 // 4^(size-1), the place value of the oldest base
	revValue uint64 // current reverse-complement integer, if strandSpecific
	revMult  uint64 // place value for the next incoming base in revValue
}

// NewSimple creates a Simple context for k-mers of the given length.
// When strandSpecific is true, Minus reports the reverse complement of the
// window instead of mirroring Plus.
func NewSimple(size int, strandSpecific bool) *Simple {
	radix := uint64(1)
	for i := 1; i < size; i++ {
		radix *= 4
	}
	return &Simple{
		size:           size,
		strandSpecific: strandSpecific,
		ring:           make([]byte, size),
		radix:          radix,
		revMult:        1,
	}
}

func (s *Simple) reset() {
	s.head = 0
	s.filled = 0
	s.value = 0
	s.revValue = 0
	s.revMult = 1
}

// SequenceChange implements Context.
func (s *Simple) SequenceChange() { s.reset() }

// AddBase implements Context.
func (s *Simple) AddBase(base byte) Index {
	if base == BaseN {
		s.reset()
		return Index{}
	}

	tail := (s.head + s.filled) % s.size
	if s.filled == s.size {
		outgoing := s.ring[s.head]
		s.head = (s.head + 1) % s.size
		s.value -= s.radix * uint64(outgoing)
		if s.strandSpecific {
			s.revValue -= 3 - uint64(outgoing)
			s.revValue /= 4
			s.revMult /= 4
		}
	} else {
		s.filled++
	}
	s.ring[tail] = base
	s.value *= 4
	s.value += uint64(base)
	if s.strandSpecific {
		s.revValue += s.revMult * (3 - uint64(base))
		s.revMult *= 4
	}

	if s.filled < s.size {
		return Index{}
	}
	if s.strandSpecific {
		return Index{Plus: ptr(uint32(s.value)), Minus: ptr(uint32(s.revValue))}
	}
	return Index{Plus: ptr(uint32(s.value)), Minus: ptr(uint32(s.value))}
}
