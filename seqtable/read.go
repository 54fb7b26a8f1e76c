package seqtable

import (
	"encoding/binary"
	"io"
	"io/ioutil"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
)

// SeqTable is an open seqtable file, ready for random-access reads.
//
// Grounded on SeqTable (src/seqtable/read.rs), extended with Equivalent and
// GetSequenceByIdx for reuse-checking and indexed chromosome lookup.
type SeqTable struct {
	r           io.ReadSeeker
	params      Params
	blockLength int
	info        []seqInfo
	counts      *KmerCounts
}

// Open reads the header, info table, and counts table of a seqtable file.
func Open(r io.ReadSeeker) (*SeqTable, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "seqtable: seeking to header")
	}
	var h fixedHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrap(err, "seqtable: reading header")
	}
	if h.Version != Version {
		return nil, &FormatError{Reason: "unsupported version byte"}
	}
	params := Params{
		KmerLength:     int(h.KmerLength),
		PlusOffset:     int(h.PlusOffset),
		MinusOffset:    int(h.MinusOffset),
		ReadLength:     int(h.ReadLength),
		StrandSpecific: h.StrandSpecific != 0,
	}
	if h.MaskLength > 0 {
		raw := make([]byte, h.MaskLength)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, errors.Wrap(err, "seqtable: reading cut mask")
		}
		mask := make([]bool, h.MaskLength)
		unmasked := 0
		for i, b := range raw {
			mask[i] = b != 0
			if mask[i] {
				unmasked++
			}
		}
		params.Mask = mask
		params.UnmaskedCount = unmasked
	} else {
		params.UnmaskedCount = params.KmerLength
	}

	if _, err := r.Seek(int64(h.InfoTableOffset), io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "seqtable: seeking to info table")
	}
	info, err := readInfoTable(r)
	if err != nil {
		return nil, err
	}

	if _, err := r.Seek(int64(h.CountsTableOffset), io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "seqtable: seeking to counts table")
	}
	counts, err := readKmerCounts(r)
	if err != nil {
		return nil, err
	}

	return &SeqTable{
		r:           r,
		params:      params,
		blockLength: int(h.BlockLength),
		info:        info,
		counts:      counts,
	}, nil
}

func readInfoTable(r io.Reader) ([]seqInfo, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, errors.Wrap(err, "seqtable: reading info table length")
	}
	info := make([]seqInfo, n)
	for i := range info {
		var nameLen uint16
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return nil, errors.Wrap(err, "seqtable: reading sequence name length")
		}
		nameBuf := make([]byte, nameLen)
		if _, err := io.ReadFull(r, nameBuf); err != nil {
			return nil, errors.Wrap(err, "seqtable: reading sequence name")
		}
		info[i].Name = string(nameBuf)
		if err := binary.Read(r, binary.LittleEndian, &info[i].Length); err != nil {
			return nil, errors.Wrap(err, "seqtable: reading sequence length")
		}
		var nBlocks uint32
		if err := binary.Read(r, binary.LittleEndian, &nBlocks); err != nil {
			return nil, errors.Wrap(err, "seqtable: reading block count")
		}
		info[i].Blocks = make([]blockInfo, nBlocks)
		for j := range info[i].Blocks {
			if err := binary.Read(r, binary.LittleEndian, &info[i].Blocks[j]); err != nil {
				return nil, errors.Wrap(err, "seqtable: reading block info")
			}
		}
	}
	return info, nil
}

// Params returns the coordinate system this table was built with.
func (t *SeqTable) Params() Params { return t.params }

// Counts returns the genome-wide k-mer counts table.
func (t *SeqTable) Counts() *KmerCounts { return t.counts }

// Equivalent reports whether this table was built with parameters
// equivalent to p, and so can be reused in place of rebuilding from FASTA.
func (t *SeqTable) Equivalent(p Params) bool { return t.params.Equivalent(p) }

// SequenceNames returns the chromosome names in on-disk order.
func (t *SeqTable) SequenceNames() []string {
	names := make([]string, len(t.info))
	for i, s := range t.info {
		names[i] = s.Name
	}
	return names
}

// GetSequence returns a reader for the named sequence.
func (t *SeqTable) GetSequence(name string) (*SequenceReader, error) {
	for i := range t.info {
		if t.info[i].Name == name {
			return t.GetSequenceByIdx(i)
		}
	}
	return nil, &FormatError{Reason: "sequence " + name + " not found"}
}

// GetSequenceByIdx returns a reader for the i'th sequence in on-disk order.
func (t *SeqTable) GetSequenceByIdx(i int) (*SequenceReader, error) {
	if i < 0 || i >= len(t.info) {
		return nil, &FormatError{Reason: "sequence index out of range"}
	}
	return &SequenceReader{
		r:           t.r,
		blockLength: t.blockLength,
		info:        &t.info[i],
		blockIdx:    -1,
	}, nil
}

// SequenceReader reads (plus, minus) pairs from one chromosome, caching the
// most recently decoded block.
type SequenceReader struct {
	r           io.ReadSeeker
	blockLength int
	info        *seqInfo

	blockIdx int
	block    []uint32
}

// Length returns the number of positions recorded for this sequence.
func (s *SequenceReader) Length() uint64 { return s.info.Length }

func (s *SequenceReader) loadBlock(idx int) error {
	if idx == s.blockIdx {
		return nil
	}
	if idx < 0 || idx >= len(s.info.Blocks) {
		return &FormatError{Reason: "block index out of range"}
	}
	b := s.info.Blocks[idx]
	if _, err := s.r.Seek(int64(b.Offset), io.SeekStart); err != nil {
		return errors.Wrap(err, "seqtable: seeking to block")
	}
	compressed := io.LimitReader(s.r, int64(b.CompSize))
	zr, err := zlib.NewReader(compressed)
	if err != nil {
		return errors.Wrap(err, "seqtable: opening compressed block")
	}
	raw, err := ioutil.ReadAll(zr)
	if err != nil {
		return errors.Wrap(err, "seqtable: decompressing block")
	}
	if uint64(len(raw)) != b.EncSize {
		return &FormatError{Reason: "truncated block"}
	}
	pairs := make([]uint32, len(raw)/4)
	for i := range pairs {
		pairs[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	s.block = pairs
	s.blockIdx = idx
	return nil
}

// Get returns the (plus, minus) pair recorded at the given 0-based position
// within the sequence.
func (s *SequenceReader) Get(pos uint64) (plus, minus uint32, err error) {
	if pos >= s.info.Length {
		return 0, 0, &FormatError{Reason: "position out of range"}
	}
	idx := int(pos / uint64(s.blockLength))
	j := pos % uint64(s.blockLength)
	if err := s.loadBlock(idx); err != nil {
		return 0, 0, err
	}
	if int(j*2+1) >= len(s.block) {
		return 0, 0, &FormatError{Reason: "truncated block"}
	}
	return s.block[j*2], s.block[j*2+1], nil
}
