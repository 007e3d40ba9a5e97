package docstore

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// noBlock marks an empty block cache slot.
const noBlock = ^uint64(0)

// ReaderOptions define reader specific options.
type ReaderOptions struct {
	// BlockCodec decompresses document blocks. It must match the
	// codec the store was written with.
	// Default: LZ4.
	BlockCodec BlockCodec

	// DocumentCodec deserializes documents in Decode.
	// Default: JSONCodec.
	DocumentCodec DocumentCodec
}

func (o *ReaderOptions) norm() *ReaderOptions {
	var oo ReaderOptions
	if o != nil {
		oo = *o
	}

	if oo.BlockCodec == nil {
		oo.BlockCodec = LZ4
	}
	if oo.DocumentCodec == nil {
		oo.DocumentCodec = JSONCodec{}
	}
	return &oo
}

// Reader retrieves documents from a store by id.
//
// The immutable store bytes may be shared freely, but each Reader
// carries a single-slot block cache which is plain mutable state: a
// handle must not be used from multiple goroutines without external
// synchronization. Use Clone to fan out, clones share the store
// bytes and the parsed skip index but cache independently.
type Reader struct {
	data  *Source // data region: concatenated compressed blocks
	index *Source // serialized skip index region
	o     *ReaderOptions

	skip   *SkipIndex // parsed lazily from index
	maxDoc uint32

	curOffset uint64 // offset of the cached block, noBlock if empty
	curBlock  []byte // decompressed bytes of the cached block
}

// Open splits src into the data region, the skip index region and
// the footer, and returns a reader over them. The source bytes must
// not be mutated for the lifetime of the reader.
func Open(src *Source, o *ReaderOptions) (*Reader, error) {
	if src.Len() < footerLen {
		return nil, errors.Wrapf(ErrCorrupted, "store of %d bytes is shorter than the footer", src.Len())
	}

	body, footer := src.Split(src.Len() - footerLen)
	fb := footer.Bytes()
	indexOffset := binary.LittleEndian.Uint64(fb[0:8])
	maxDoc := binary.LittleEndian.Uint32(fb[8:12])

	if indexOffset > uint64(body.Len()) {
		return nil, errors.Wrapf(ErrCorrupted, "index offset %d beyond store body of %d bytes", indexOffset, body.Len())
	}
	data, index := body.Split(int(indexOffset))

	return &Reader{
		data:      data,
		index:     index,
		o:         o.norm(),
		maxDoc:    maxDoc,
		curOffset: noBlock,
	}, nil
}

// OpenFile memory-maps the store file at path and opens a reader
// over it. The mapping is released once the reader and all of its
// clones have been dropped.
func OpenFile(path string, o *ReaderOptions) (*Reader, error) {
	src, err := MapFile(path)
	if err != nil {
		return nil, err
	}
	return Open(src, o)
}

// NumDocs returns the number of documents in the store.
func (r *Reader) NumDocs() uint32 { return r.maxDoc }

// NumBlocks returns the number of stored blocks.
func (r *Reader) NumBlocks() (int, error) {
	skip, err := r.skipIndex()
	if err != nil {
		return 0, err
	}
	return skip.Len(), nil
}

// Clone returns an independent reader handle over the same store,
// with an empty block cache. Cloning is cheap and the intended way
// to read concurrently from multiple goroutines.
func (r *Reader) Clone() *Reader {
	return &Reader{
		data:      r.data.Clone(),
		index:     r.index.Clone(),
		o:         r.o,
		skip:      r.skip,
		maxDoc:    r.maxDoc,
		curOffset: noBlock,
	}
}

// SpaceUsage reports the byte sizes of the store regions.
func (r *Reader) SpaceUsage() SpaceUsage {
	return SpaceUsage{Data: r.data.Len(), Index: r.index.Len()}
}

// Append retrieves the raw serialized document docID and appends it
// to dst. Unlike Get it can reuse dst instead of allocating a new
// byte slice. It returns ErrNotFound if docID is not within
// [0, NumDocs()).
func (r *Reader) Append(dst []byte, docID uint32) ([]byte, error) {
	if docID >= r.maxDoc {
		return dst, ErrNotFound
	}

	first, offset, err := r.blockOffset(docID)
	if err != nil {
		return dst, err
	}
	if err := r.readBlock(offset); err != nil {
		return dst, err
	}

	// skip the documents preceding docID within the block
	cur := r.curBlock
	for doc := first; doc <= docID; doc++ {
		size, n := binary.Uvarint(cur)
		if n <= 0 || uint64(len(cur)-n) < size {
			return dst, errors.Wrapf(ErrCorrupted, "bad length prefix for doc %d in block at offset %d", doc, offset)
		}
		if doc == docID {
			return append(dst, cur[n:n+int(size)]...), nil
		}
		cur = cur[n+int(size):]
	}
	panic("unreachable")
}

// Get is a shortcut for Append(nil, docID).
// It may return an ErrNotFound error.
func (r *Reader) Get(docID uint32) ([]byte, error) {
	return r.Append(nil, docID)
}

// Decode retrieves document docID and unmarshals it into v using
// the configured DocumentCodec.
func (r *Reader) Decode(docID uint32, v any) error {
	raw, err := r.Get(docID)
	if err != nil {
		return err
	}
	if err := r.o.DocumentCodec.Unmarshal(raw, v); err != nil {
		return errors.Wrapf(err, "docstore: cannot decode doc %d", docID)
	}
	return nil
}

// skipIndex parses the skip index on first use. The parsed index is
// immutable and inherited by clones.
func (r *Reader) skipIndex() (*SkipIndex, error) {
	if r.skip == nil {
		skip, err := ReadSkipIndex(NewCursor(r.index.Clone()))
		if err != nil {
			return nil, err
		}
		r.skip = skip
	}
	return r.skip, nil
}

// blockOffset locates the block covering docID via a floor seek and
// returns the id of the block's first document and the block's byte
// offset. The floor-seek default (0, 0) covers the first block.
func (r *Reader) blockOffset(docID uint32) (uint32, uint64, error) {
	skip, err := r.skipIndex()
	if err != nil {
		return 0, 0, err
	}

	key, offset := skip.Seek(uint64(docID) + 1)
	if key == 0 {
		return 0, 0, nil
	}
	return uint32(key - 1), offset, nil
}

// readBlock makes the block at the given data region offset the
// cached block. The cache holds exactly one decompressed block: a
// repeated call for the cached offset is free, switching offsets
// decompresses anew.
func (r *Reader) readBlock(offset uint64) error {
	if offset == r.curOffset {
		return nil
	}
	r.curOffset = noBlock

	// wrap-safe checks, offsets come from untrusted skip index entries
	raw := r.data.Bytes()
	if offset >= uint64(len(raw)) || uint64(len(raw))-offset < 4 {
		return errors.Wrapf(ErrCorrupted, "block length prefix at offset %d beyond data region of %d bytes", offset, len(raw))
	}
	size := uint64(binary.LittleEndian.Uint32(raw[offset:]))
	if uint64(len(raw))-offset-4 < size {
		return errors.Wrapf(ErrCorrupted, "block of %d bytes at offset %d beyond data region of %d bytes", size, offset, len(raw))
	}

	block, err := r.o.BlockCodec.Decompress(r.curBlock, raw[offset+4:offset+4+size])
	if err != nil {
		return errors.Wrapf(err, "docstore: cannot decompress block at offset %d", offset)
	}
	r.curBlock = block
	r.curOffset = offset
	return nil
}
