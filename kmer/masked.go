package kmer

// Masked is the k-mer context for a mask with unmasked positions scattered
// through a wider window: only positions where mask[i] is true contribute to
// the index, in window order, as a radix-4 integer of length
// len(unmasked positions). Plus and Minus always agree.
//
// Grounded on EnzContextMasked (src/fasta/context/masked.rs). Unlike Simple,
// the whole window must be re-scanned on every base because an arbitrary
// subset of positions contributes, so there is no running-integer shortcut.
type Masked struct {
	length         int
	unmaskedCount  int
	mask           []bool
	window         []byte // ring buffer of the last `length` bases
	head           int
	filled         int
}

// NewMasked creates a Masked context. mask must have length `length`, with
// unmaskedCount entries set to true.
func NewMasked(length int, mask []bool, unmaskedCount int) *Masked {
	m := make([]bool, length)
	copy(m, mask)
	return &Masked{
		length:        length,
		unmaskedCount: unmaskedCount,
		mask:          m,
		window:        make([]byte, length),
	}
}

// SequenceChange implements Context.
func (m *Masked) SequenceChange() {
	m.head = 0
	m.filled = 0
}

// AddBase implements Context.
func (m *Masked) AddBase(base byte) Index {
	tail := (m.head + m.filled) % m.length
	if m.filled == m.length {
		m.head = (m.head + 1) % m.length
	} else {
		m.filled++
	}
	m.window[tail] = base

	if m.filled < m.length {
		return Index{}
	}
	return m.index(m.mask, false)
}

// index computes the radix-4 integer over positions where mask[i] is true,
// reading the window oldest-to-newest (position 0 is the oldest base still
// held). When complement is true, each unmasked base contributes its
// complement (3-base) instead of itself, for minus-strand computation.
func (m *Masked) index(mask []bool, complement bool) Index {
	var idx uint64
	// Walk window oldest-to-newest, accumulating in most-significant-first
	// order, matching the original's left-to-right radix-4 packing.
	mult := pow4(uint(m.unmaskedCount - 1))
	for i := 0; i < m.length; i++ {
		if !mask[i] {
			continue
		}
		b := m.window[(m.head+i)%m.length]
		if b == BaseN {
			return Index{}
		}
		v := uint64(b)
		if complement {
			v = 3 - v
		}
		idx += v * mult
		mult /= 4
	}
	return Index{Plus: ptr(uint32(idx)), Minus: ptr(uint32(idx))}
}

func pow4(n uint) uint64 {
	v := uint64(1)
	for i := uint(0); i < n; i++ {
		v *= 4
	}
	return v
}
