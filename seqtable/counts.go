package seqtable

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// KmerCounts is the genome-wide table of how often each stored table index
// was observed at a plus- or minus-strand read-start position. It is
// indexed in the same space as the (plus, minus) pairs written to sequence
// blocks: index 0 is the "absent" sentinel, and index i+1 is real k-mer i.
// It implements coordbuf.Counts.
type KmerCounts struct {
	SeqPlus  []uint64
	SeqMinus []uint64
}

// NewKmerCounts allocates a counts table sized for the given Params.
func NewKmerCounts(p Params) *KmerCounts {
	n := p.TableSize()
	return &KmerCounts{
		SeqPlus:  make([]uint64, n),
		SeqMinus: make([]uint64, n),
	}
}

// AddPlus implements coordbuf.Counts. idx is a stored table index, not a
// raw k-mer value.
func (c *KmerCounts) AddPlus(idx uint32) {
	if int(idx) < len(c.SeqPlus) {
		c.SeqPlus[idx]++
	}
}

// AddMinus implements coordbuf.Counts. idx is a stored table index, not a
// raw k-mer value.
func (c *KmerCounts) AddMinus(idx uint32) {
	if int(idx) < len(c.SeqMinus) {
		c.SeqMinus[idx]++
	}
}

func (c *KmerCounts) writeTo(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(c.SeqPlus))); err != nil {
		return errors.Wrap(err, "seqtable: writing counts table length")
	}
	if err := binary.Write(w, binary.LittleEndian, c.SeqPlus); err != nil {
		return errors.Wrap(err, "seqtable: writing plus counts")
	}
	if err := binary.Write(w, binary.LittleEndian, c.SeqMinus); err != nil {
		return errors.Wrap(err, "seqtable: writing minus counts")
	}
	return nil
}

func readKmerCounts(r io.Reader) (*KmerCounts, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, errors.Wrap(err, "seqtable: reading counts table length")
	}
	c := &KmerCounts{SeqPlus: make([]uint64, n), SeqMinus: make([]uint64, n)}
	if err := binary.Read(r, binary.LittleEndian, c.SeqPlus); err != nil {
		return nil, errors.Wrap(err, "seqtable: reading plus counts")
	}
	if err := binary.Read(r, binary.LittleEndian, c.SeqMinus); err != nil {
		return nil, errors.Wrap(err, "seqtable: reading minus counts")
	}
	return c, nil
}
