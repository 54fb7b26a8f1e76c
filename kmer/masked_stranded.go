package kmer

// MaskedStrandSpecific is the masked context used when strand_specific is
// set: the plus index is computed as in Masked, while the minus index uses
// the reversed mask and complemented bases, and may become present/absent
// independently of the plus index.
//
// Grounded on EnzContextMaskedStrandSpecific
// (src/fasta/context/masked_stranded.rs).
type MaskedStrandSpecific struct {
	length        int
	unmaskedCount int
	maskPlus      []bool
	maskMinus     []bool
	window        []byte
	head          int
	filled        int
}

// NewMaskedStrandSpecific creates a strand-specific masked context. mask is
// the plus-strand mask; the minus-strand mask is its reverse.
func NewMaskedStrandSpecific(length int, mask []bool, unmaskedCount int) *MaskedStrandSpecific {
	plus := make([]bool, length)
	copy(plus, mask)
	minus := make([]bool, length)
	for i, v := range plus {
		minus[length-1-i] = v
	}
	return &MaskedStrandSpecific{
		length:        length,
		unmaskedCount: unmaskedCount,
		maskPlus:      plus,
		maskMinus:     minus,
		window:        make([]byte, length),
	}
}

// SequenceChange implements Context.
func (m *MaskedStrandSpecific) SequenceChange() {
	m.head = 0
	m.filled = 0
}

// AddBase implements Context.
func (m *MaskedStrandSpecific) AddBase(base byte) Index {
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

	plus := m.maskedValue(m.maskPlus, false, true)
	// The minus strand walks the buffer in the same (oldest-to-newest) order
	// as the plus strand, but against the reversed mask and with place values
	// growing least-significant-first: the position first encountered by the
	// reversed mask is the complement-strand k-mer's rightmost digit. This
	// mirrors the original's separate mult-direction for mask_minus, and
	// together with the reversed mask it reconstructs the true reverse
	// complement.
	minus := m.maskedValue(m.maskMinus, true, false)
	return Index{Plus: plus, Minus: minus}
}

// maskedValue mirrors Masked.index but returns only one strand's value,
// since plus/minus presence is independent here. msbFirst selects whether
// place values decrease (plus strand) or increase (minus strand) as the
// window is walked oldest-to-newest.
func (m *MaskedStrandSpecific) maskedValue(mask []bool, complement, msbFirst bool) *uint32 {
	var idx uint64
	mult := uint64(1)
	if msbFirst {
		mult = pow4(uint(m.unmaskedCount - 1))
	}
	for i := 0; i < m.length; i++ {
		if !mask[i] {
			continue
		}
		b := m.window[(m.head+i)%m.length]
		if b == BaseN {
			return nil
		}
		v := uint64(b)
		if complement {
			v = 3 - v
		}
		idx += v * mult
		if msbFirst {
			mult /= 4
		} else {
			mult *= 4
		}
	}
	return ptr(uint32(idx))
}
