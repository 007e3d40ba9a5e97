package docstore

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// WriterOptions define writer specific options.
type WriterOptions struct {
	// BlockSize is the minimum uncompressed size in bytes of each
	// document block.
	// Default: 16KiB.
	BlockSize int

	// BlockCodec compresses finished blocks.
	// Default: LZ4.
	BlockCodec BlockCodec

	// DocumentCodec serializes documents in Encode.
	// Default: JSONCodec.
	DocumentCodec DocumentCodec
}

func (o *WriterOptions) norm() *WriterOptions {
	var oo WriterOptions
	if o != nil {
		oo = *o
	}

	if oo.BlockSize < 1 {
		oo.BlockSize = 1 << 14
	}
	if oo.BlockCodec == nil {
		oo.BlockCodec = LZ4
	}
	if oo.DocumentCodec == nil {
		oo.DocumentCodec = JSONCodec{}
	}
	return &oo
}

// Writer serializes documents into a store. Documents are assigned
// consecutive ids starting at 0, in append order.
type Writer struct {
	w io.Writer
	o *WriterOptions

	buf []byte // uncompressed current block
	cmp []byte // compression scratch buffer
	tmp []byte // varint/footer scratch buffer

	numDocs    uint32 // documents appended so far, the next doc id
	written    uint64 // bytes written so far, the next block offset
	blockFirst uint32 // id of the first document in the current block
	blockStart uint64 // offset of the current block

	skip SkipIndexWriter
}

// NewWriter wraps w and returns a Writer.
func NewWriter(w io.Writer, o *WriterOptions) *Writer {
	return &Writer{
		w:   w,
		o:   o.norm(),
		tmp: make([]byte, binary.MaxVarintLen64),
	}
}

// Append appends a raw serialized document to the store and returns
// the assigned document id.
func (w *Writer) Append(doc []byte) (uint32, error) {
	if w.tmp == nil {
		return 0, errClosed
	}

	n := binary.PutUvarint(w.tmp, uint64(len(doc)))
	w.buf = append(w.buf, w.tmp[:n]...)
	w.buf = append(w.buf, doc...)

	docID := w.numDocs
	w.numDocs++

	if len(w.buf) >= w.o.BlockSize {
		if err := w.flush(); err != nil {
			return docID, err
		}
	}
	return docID, nil
}

// Encode serializes v with the configured DocumentCodec and appends
// it to the store.
func (w *Writer) Encode(v any) (uint32, error) {
	if w.tmp == nil {
		return 0, errClosed
	}
	doc, err := w.o.DocumentCodec.Marshal(v)
	if err != nil {
		return 0, errors.Wrap(err, "docstore: cannot encode document")
	}
	return w.Append(doc)
}

// NumDocs returns the number of documents appended so far.
func (w *Writer) NumDocs() uint32 { return w.numDocs }

// Close flushes the pending block and writes the skip index and the
// footer. The underlying writer is not closed.
func (w *Writer) Close() error {
	if w.tmp == nil {
		return errClosed
	}
	if err := w.flush(); err != nil {
		return err
	}

	indexOffset := w.written
	if _, err := w.skip.WriteTo(w.w); err != nil {
		return err
	}
	if err := w.writeFooter(indexOffset); err != nil {
		return err
	}
	w.tmp = nil
	return nil
}

func (w *Writer) flush() error {
	if len(w.buf) == 0 {
		return nil
	}

	w.cmp = w.o.BlockCodec.Compress(w.cmp, w.buf)

	binary.LittleEndian.PutUint32(w.tmp, uint32(len(w.cmp)))
	if err := w.writeRaw(w.tmp[:4]); err != nil {
		return err
	}
	if err := w.writeRaw(w.cmp); err != nil {
		return err
	}

	if err := w.skip.Append(uint64(w.blockFirst)+1, w.blockStart); err != nil {
		return err
	}
	w.blockFirst = w.numDocs
	w.blockStart = w.written
	w.buf = w.buf[:0]
	return nil
}

func (w *Writer) writeFooter(indexOffset uint64) error {
	binary.LittleEndian.PutUint64(w.tmp, indexOffset)
	if err := w.writeRaw(w.tmp[:8]); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(w.tmp, w.numDocs)
	return w.writeRaw(w.tmp[:4])
}

func (w *Writer) writeRaw(p []byte) error {
	n, err := w.w.Write(p)
	w.written += uint64(n)
	return err
}
