package seqtable

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
)

// Writer creates a seqtable file, one sequence at a time.
type Writer struct {
	w           io.WriteSeeker
	params      Params
	blockLength int

	tailOffset          uint64
	maxEncodedBlockSize uint64
	info                []seqInfo
	counts              *KmerCounts

	headerSize   uint64
	offsetsField int64 // byte offset of fixedHeader's three trailing u64 fields
}

// NewWriter writes the file header and returns a Writer ready to accept
// sequences. blockLength overrides DefaultBlockLength when positive.
func NewWriter(w io.WriteSeeker, params Params, blockLength int) (*Writer, error) {
	if blockLength <= 0 {
		blockLength = DefaultBlockLength
	}
	h := fixedHeader{
		Version:        Version,
		KmerLength:     byte(params.KmerLength),
		PlusOffset:     byte(params.PlusOffset),
		MinusOffset:    byte(params.MinusOffset),
		ReadLength:     uint16(params.ReadLength),
		StrandSpecific: boolByte(params.StrandSpecific),
		MaskLength:     uint16(len(params.Mask)),
		BlockLength:    uint32(blockLength),
	}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return nil, errors.Wrap(err, "seqtable: writing header")
	}
	headerSize := uint64(binary.Size(h))
	offsetsField := int64(headerSize) - 3*8
	if len(params.Mask) > 0 {
		raw := make([]byte, len(params.Mask))
		for i, v := range params.Mask {
			raw[i] = boolByte(v)
		}
		if _, err := w.Write(raw); err != nil {
			return nil, errors.Wrap(err, "seqtable: writing cut mask")
		}
		headerSize += uint64(len(raw))
	}
	return &Writer{
		w:           w,
		params:      params,
		blockLength: blockLength,
		tailOffset:   headerSize,
		headerSize:   headerSize,
		offsetsField: offsetsField,
		counts:       NewKmerCounts(params),
	}, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// Counts returns the genome-wide k-mer counts table being accumulated;
// callers push into it indirectly via the sequences' coordbuf.Buffer.
func (w *Writer) Counts() *KmerCounts { return w.counts }

// CreateSequence begins a new chromosome. The returned SequenceWriter must
// be closed before the next call to CreateSequence or to Close.
func (w *Writer) CreateSequence(name string) *SequenceWriter {
	w.info = append(w.info, seqInfo{Name: name})
	return &SequenceWriter{
		parent: w,
		info:   &w.info[len(w.info)-1],
	}
}

// Close flushes the info table and counts table and patches the header's
// offsets. It must be called exactly once, after every SequenceWriter has
// been closed.
func (w *Writer) Close() error {
	infoOffset := w.tailOffset
	if err := writeInfoTable(w.w, w.info); err != nil {
		return err
	}
	countsOffset, err := seekTell(w.w)
	if err != nil {
		return err
	}
	if err := w.counts.writeTo(w.w); err != nil {
		return err
	}

	if _, err := w.w.Seek(w.offsetsField, io.SeekStart); err != nil {
		return errors.Wrap(err, "seqtable: seeking to patch header")
	}
	// the three trailing u64 fields of fixedHeader: InfoTableOffset,
	// MaxEncodedBlockSize, CountsTableOffset.
	if err := binary.Write(w.w, binary.LittleEndian, infoOffset); err != nil {
		return errors.Wrap(err, "seqtable: patching info table offset")
	}
	if err := binary.Write(w.w, binary.LittleEndian, w.maxEncodedBlockSize); err != nil {
		return errors.Wrap(err, "seqtable: patching max encoded block size")
	}
	if err := binary.Write(w.w, binary.LittleEndian, uint64(countsOffset)); err != nil {
		return errors.Wrap(err, "seqtable: patching counts table offset")
	}
	return nil
}

func seekTell(s io.Seeker) (int64, error) {
	return s.Seek(0, io.SeekCurrent)
}

func writeInfoTable(w io.Writer, info []seqInfo) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(info))); err != nil {
		return errors.Wrap(err, "seqtable: writing info table length")
	}
	for _, s := range info {
		if err := binary.Write(w, binary.LittleEndian, uint16(len(s.Name))); err != nil {
			return errors.Wrap(err, "seqtable: writing sequence name length")
		}
		if _, err := io.WriteString(w, s.Name); err != nil {
			return errors.Wrap(err, "seqtable: writing sequence name")
		}
		if err := binary.Write(w, binary.LittleEndian, s.Length); err != nil {
			return errors.Wrap(err, "seqtable: writing sequence length")
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(s.Blocks))); err != nil {
			return errors.Wrap(err, "seqtable: writing block count")
		}
		for _, b := range s.Blocks {
			if err := binary.Write(w, binary.LittleEndian, b); err != nil {
				return errors.Wrap(err, "seqtable: writing block info")
			}
		}
	}
	return nil
}

// SequenceWriter accepts (plus, minus) table-index pairs for one sequence,
// compressing and flushing them in fixed-size blocks.
//
// Grounded on SequenceWriter (src/seqtable/write.rs), generalized from its
// 1024-entry (u16,u16) blocks to configurable-length (u32,u32) blocks.
type SequenceWriter struct {
	parent *Writer
	info   *seqInfo
	block  []uint32 // plus0, minus0, plus1, minus1, ...
}

// Write implements coordbuf.Sink.
func (s *SequenceWriter) Write(plus, minus uint32) error {
	s.block = append(s.block, plus, minus)
	if len(s.block)/2 == s.parent.blockLength {
		return s.flush()
	}
	return nil
}

func (s *SequenceWriter) flush() error {
	if len(s.block) == 0 {
		return nil
	}
	raw := make([]byte, len(s.block)*4)
	for i, v := range s.block {
		binary.LittleEndian.PutUint32(raw[i*4:], v)
	}

	var compressed bytes.Buffer
	zw, err := zlib.NewWriterLevel(&compressed, zlib.BestCompression)
	if err != nil {
		return errors.Wrap(err, "seqtable: creating zlib writer")
	}
	if _, err := zw.Write(raw); err != nil {
		return errors.Wrap(err, "seqtable: compressing block")
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(err, "seqtable: flushing zlib writer")
	}

	if uint64(len(raw)) > s.parent.maxEncodedBlockSize {
		s.parent.maxEncodedBlockSize = uint64(len(raw))
	}
	if _, err := s.parent.w.Write(compressed.Bytes()); err != nil {
		return errors.Wrap(err, "seqtable: writing compressed block")
	}

	s.info.Blocks = append(s.info.Blocks, blockInfo{
		EncSize:  uint64(len(raw)),
		CompSize: uint64(compressed.Len()),
		Offset:   s.parent.tailOffset,
	})
	s.parent.tailOffset += uint64(compressed.Len())
	s.info.Length += uint64(len(s.block) / 2)
	s.block = s.block[:0]
	return nil
}

// Close flushes any residual buffered positions.
func (s *SequenceWriter) Close() error {
	return s.flush()
}
