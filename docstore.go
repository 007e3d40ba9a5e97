package docstore

import "github.com/pkg/errors"

// footerLen is the fixed size of the store footer: a little-endian
// uint64 index region offset followed by a little-endian uint32
// document count.
const footerLen = 8 + 4

// ErrNotFound is returned by the reader when a document id cannot
// be found in the store.
var ErrNotFound = errors.New("docstore: not found")

// ErrCorrupted is returned (wrapped, with positional context) when
// the store bytes are inconsistent with the expected layout.
var ErrCorrupted = errors.New("docstore: corrupted store")

var (
	errClosed     = errors.New("docstore: is closed")
	errOutOfOrder = errors.New("docstore: out-of-order skip index append")
)

// SpaceUsage summarises the on-disk footprint of a store, split into
// the data region and the serialized skip index region.
type SpaceUsage struct {
	Data  int // bytes occupied by compressed document blocks
	Index int // bytes occupied by the serialized skip index
}

// Total returns the combined byte size of both regions, excluding
// the fixed-size footer.
func (u SpaceUsage) Total() int { return u.Data + u.Index }
