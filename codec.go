package docstore

import (
	"encoding/binary"
	"encoding/json"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

// BlockCodec compresses and decompresses document blocks. The codec
// is a store-level contract: reader and writer must agree on it, the
// store records only the external compressed length of each block.
// Implementations must be safe for concurrent use.
type BlockCodec interface {
	// Name returns the stable codec name.
	Name() string

	// Compress appends the compressed form of src to dst[:0] and
	// returns the result.
	Compress(dst, src []byte) []byte

	// Decompress appends the decompressed form of src to dst[:0]
	// and returns the result.
	Decompress(dst, src []byte) ([]byte, error)
}

// Built-in block codecs.
var (
	LZ4    BlockCodec = lz4Codec{} // default
	Snappy BlockCodec = snappyCodec{}
	Zstd   BlockCodec = zstdCodec{}
	Raw    BlockCodec = rawCodec{}
)

// BlockCodecByName returns a built-in block codec by its stable name.
func BlockCodecByName(name string) (BlockCodec, bool) {
	switch name {
	case "lz4":
		return LZ4, true
	case "snappy":
		return Snappy, true
	case "zstd":
		return Zstd, true
	case "raw":
		return Raw, true
	}
	return nil, false
}

// --------------------------------------------------------------------

// lz4Codec uses the lz4 block format. Since lz4 blocks do not record
// the decompressed size, the payload carries a little-endian uint32
// raw-length prefix. Incompressible input is stored verbatim, which
// is detected on decompression by body length == raw length.
type lz4Codec struct{}

func (lz4Codec) Name() string { return "lz4" }

func (lz4Codec) Compress(dst, src []byte) []byte {
	bound := 4 + lz4.CompressBlockBound(len(src))
	if cap(dst) < bound {
		dst = make([]byte, bound)
	}
	dst = dst[:bound]
	binary.LittleEndian.PutUint32(dst, uint32(len(src)))

	n, err := lz4.CompressBlock(src, dst[4:], nil)
	if err != nil || n == 0 || n >= len(src) {
		return append(dst[:4], src...)
	}
	return dst[:4+n]
}

func (lz4Codec) Decompress(dst, src []byte) ([]byte, error) {
	if len(src) < 4 {
		return dst, errors.Errorf("docstore: lz4 block too short (%d bytes)", len(src))
	}
	size := int(binary.LittleEndian.Uint32(src))
	body := src[4:]
	if len(body) == size { // stored verbatim
		return append(dst[:0], body...), nil
	}

	if cap(dst) < size {
		dst = make([]byte, size)
	}
	n, err := lz4.UncompressBlock(body, dst[:size])
	if err != nil {
		return dst, err
	}
	return dst[:n], nil
}

// --------------------------------------------------------------------

type snappyCodec struct{}

func (snappyCodec) Name() string { return "snappy" }

func (snappyCodec) Compress(dst, src []byte) []byte {
	return snappy.Encode(dst[:cap(dst)], src)
}

func (snappyCodec) Decompress(dst, src []byte) ([]byte, error) {
	return snappy.Decode(dst[:cap(dst)], src)
}

// --------------------------------------------------------------------

// Shared zstd coders; EncodeAll/DecodeAll are safe for concurrent use.
var (
	zstdEnc, _ = zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1), zstd.WithZeroFrames(true))
	zstdDec, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
)

type zstdCodec struct{}

func (zstdCodec) Name() string { return "zstd" }

func (zstdCodec) Compress(dst, src []byte) []byte {
	return zstdEnc.EncodeAll(src, dst[:0])
}

func (zstdCodec) Decompress(dst, src []byte) ([]byte, error) {
	return zstdDec.DecodeAll(src, dst[:0])
}

// --------------------------------------------------------------------

type rawCodec struct{}

func (rawCodec) Name() string { return "raw" }

func (rawCodec) Compress(dst, src []byte) []byte {
	return append(dst[:0], src...)
}

func (rawCodec) Decompress(dst, src []byte) ([]byte, error) {
	return append(dst[:0], src...), nil
}

// --------------------------------------------------------------------

// DocumentCodec converts between caller documents and the opaque
// serialized form stored in blocks. Implementations must be safe for
// concurrent use.
type DocumentCodec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONCodec is the default DocumentCodec, using encoding/json.
type JSONCodec struct{}

// Marshal implements DocumentCodec.
func (JSONCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal implements DocumentCodec.
func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
