package docstore

import (
	"encoding/binary"
	"io"
	"sort"

	"github.com/pkg/errors"
)

type skipEntry struct {
	Key    uint64 // first doc id of the block, plus one
	Offset uint64 // absolute block offset within the data region
}

// SkipIndex is an ordered mapping from document id keys to block
// byte offsets. It is fully deserialized at build time and immutable
// afterwards, so a single instance may be shared across reader
// handles without locking.
type SkipIndex struct {
	entries []skipEntry
}

// ReadSkipIndex deserializes a skip index by consuming the cursor:
// a uvarint entry count followed by delta-encoded uvarint key/offset
// pairs.
func ReadSkipIndex(c *Cursor) (*SkipIndex, error) {
	count, err := binary.ReadUvarint(c)
	if err != nil {
		return nil, errors.Wrap(ErrCorrupted, "bad skip index count")
	}

	// each entry occupies at least 2 bytes, do not trust count beyond that
	var ent skipEntry
	entries := make([]skipEntry, 0, min(count, uint64(c.Len())/2))
	for i := uint64(0); i < count; i++ {
		u1, err := binary.ReadUvarint(c)
		if err != nil {
			return nil, errors.Wrapf(ErrCorrupted, "bad skip index key at entry %d", i)
		}
		u2, err := binary.ReadUvarint(c)
		if err != nil {
			return nil, errors.Wrapf(ErrCorrupted, "bad skip index offset at entry %d", i)
		}

		ent.Key += u1
		ent.Offset += u2
		entries = append(entries, ent)
	}
	return &SkipIndex{entries: entries}, nil
}

// Len returns the number of indexed blocks.
func (x *SkipIndex) Len() int { return len(x.entries) }

// Seek performs a floor lookup: it returns the entry with the
// greatest key <= key, or (0, 0) if the index is empty or key
// precedes the first entry. Callers must treat the default as
// covering the first block, not as an error.
func (x *SkipIndex) Seek(key uint64) (uint64, uint64) {
	i := sort.Search(len(x.entries), func(i int) bool {
		return x.entries[i].Key > key
	}) - 1
	if i < 0 {
		return 0, 0
	}
	return x.entries[i].Key, x.entries[i].Offset
}

// --------------------------------------------------------------------

// SkipIndexWriter accumulates block entries and serializes them in
// the skip index wire format.
type SkipIndexWriter struct {
	entries []skipEntry
}

// Append records an entry. Keys must be strictly increasing,
// offsets must not decrease.
func (w *SkipIndexWriter) Append(key, offset uint64) error {
	if n := len(w.entries); n != 0 {
		if last := w.entries[n-1]; key <= last.Key || offset < last.Offset {
			return errors.Wrapf(errOutOfOrder, "(%d, %d) after (%d, %d)", key, offset, last.Key, last.Offset)
		}
	}
	w.entries = append(w.entries, skipEntry{Key: key, Offset: offset})
	return nil
}

// Len returns the number of recorded entries.
func (w *SkipIndexWriter) Len() int { return len(w.entries) }

// WriteTo serializes the accumulated entries, delta-encoded.
func (w *SkipIndexWriter) WriteTo(dst io.Writer) (int64, error) {
	tmp := make([]byte, binary.MaxVarintLen64)
	written := int64(0)

	n := binary.PutUvarint(tmp, uint64(len(w.entries)))
	nn, err := dst.Write(tmp[:n])
	written += int64(nn)
	if err != nil {
		return written, err
	}

	var prev skipEntry
	for _, ent := range w.entries {
		n = binary.PutUvarint(tmp, ent.Key-prev.Key)
		nn, err = dst.Write(tmp[:n])
		written += int64(nn)
		if err != nil {
			return written, err
		}

		n = binary.PutUvarint(tmp, ent.Offset-prev.Offset)
		nn, err = dst.Write(tmp[:n])
		written += int64(nn)
		if err != nil {
			return written, err
		}
		prev = ent
	}
	return written, nil
}
