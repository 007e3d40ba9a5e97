package docstore

import (
	"fmt"
	"io"
	"weak"

	"github.com/pkg/errors"
)

// buffer is the shared backing store of one or more Source views.
// It is immutable after construction and reclaimed by the garbage
// collector once the last Source referencing it is dropped; for
// mmap-backed buffers a cleanup unmaps the region at that point.
type buffer struct {
	data []byte
}

// Source is an immutable, shareable, random-access view over a byte
// buffer. A Source never copies bytes: slicing produces a new view
// sharing the same backing buffer, with its own independent window
// and cursor. Any live slice keeps the whole backing buffer alive.
//
// Source implements io.Reader, io.ByteReader, io.Seeker and
// io.ReaderAt, all translated into the [start, stop) window.
//
// The window bounds are fixed; only the cursor position mutates. A
// single Source must not be read concurrently, use Clone to hand an
// independent cursor to another goroutine.
type Source struct {
	buf   *buffer
	start int // absolute window start within buf.data
	stop  int // absolute window end within buf.data
	pos   int // absolute cursor, start <= pos <= stop
}

// NewSource wraps data into a Source without copying. The caller
// must not mutate data afterwards.
func NewSource(data []byte) *Source {
	return &Source{buf: &buffer{data: data}, stop: len(data)}
}

// EmptySource returns a Source of length zero.
func EmptySource() *Source {
	return NewSource(nil)
}

// Len returns the logical length of the window.
func (s *Source) Len() int { return s.stop - s.start }

// Bytes returns the window contents without copying. The returned
// slice must not be mutated and is only valid while the Source (or
// any slice of it) is alive.
func (s *Source) Bytes() []byte { return s.buf.data[s.start:s.stop] }

// Slice returns a new O(1) view over s[start:stop], sharing the
// backing buffer. It panics if the range is invalid, like a Go slice
// expression would.
func (s *Source) Slice(start, stop int) *Source {
	if start < 0 || start > stop || stop > s.Len() {
		panic(fmt.Sprintf("docstore: slice bounds [%d:%d] out of range for source of length %d", start, stop, s.Len()))
	}
	return &Source{
		buf:   s.buf,
		start: s.start + start,
		stop:  s.start + stop,
		pos:   s.start + start,
	}
}

// SliceFrom is a shorthand for Slice(offset, s.Len()).
func (s *Source) SliceFrom(offset int) *Source { return s.Slice(offset, s.Len()) }

// SliceTo is a shorthand for Slice(0, offset).
func (s *Source) SliceTo(offset int) *Source { return s.Slice(0, offset) }

// Split carves the source into two adjacent views at offset.
func (s *Source) Split(at int) (*Source, *Source) {
	return s.SliceTo(at), s.SliceFrom(at)
}

// Clone returns an independent view over the same window, with its
// cursor rewound to the window start. Equivalent to SliceFrom(0).
func (s *Source) Clone() *Source { return s.SliceFrom(0) }

// Read reads up to len(p) bytes from the cursor position, never past
// the window end. It returns io.EOF once the window is exhausted.
// Reads are repeatable via Seek.
func (s *Source) Read(p []byte) (int, error) {
	if s.pos >= s.stop {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, s.buf.data[s.pos:s.stop])
	s.pos += n
	return n, nil
}

// ReadByte reads a single byte from the cursor position.
func (s *Source) ReadByte() (byte, error) {
	if s.pos >= s.stop {
		return 0, io.EOF
	}
	b := s.buf.data[s.pos]
	s.pos++
	return b, nil
}

// ReadAt implements io.ReaderAt within the window, without touching
// the cursor.
func (s *Source) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(s.Len()) {
		return 0, errors.Errorf("docstore: read at offset %d out of range for source of length %d", off, s.Len())
	}
	n := copy(p, s.buf.data[s.start+int(off):s.stop])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Seek repositions the cursor. All three whence origins are
// supported and translated into the window; positions outside
// [0, Len()] are rejected.
func (s *Source) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = int64(s.start) + offset
	case io.SeekCurrent:
		abs = int64(s.pos) + offset
	case io.SeekEnd:
		abs = int64(s.stop) + offset
	default:
		return 0, errors.Errorf("docstore: invalid seek whence %d", whence)
	}
	if abs < int64(s.start) || abs > int64(s.stop) {
		return 0, errors.Errorf("docstore: seek position %d out of range for source of length %d", abs-int64(s.start), s.Len())
	}
	s.pos = int(abs)
	return abs - int64(s.start), nil
}

// ReadAll copies the bytes between the cursor position and the
// window end, then rewinds the cursor to the window start. It is a
// non-destructive snapshot read and the only Source operation that
// materializes bytes.
func (s *Source) ReadAll() []byte {
	p := make([]byte, s.stop-s.pos)
	copy(p, s.buf.data[s.pos:s.stop])
	s.pos = s.start
	return p
}

// At returns the byte at index i within the window without
// disturbing the cursor. It panics if i is out of range.
func (s *Source) At(i int) byte {
	if i < 0 || i >= s.Len() {
		panic(fmt.Sprintf("docstore: index %d out of range for source of length %d", i, s.Len()))
	}
	return s.buf.data[s.start+i]
}

// Weak derives a non-owning handle to the same window. It never
// extends the lifetime of the backing buffer.
func (s *Source) Weak() WeakSource {
	return WeakSource{ref: weak.Make(s.buf), start: s.start, stop: s.stop}
}

// --------------------------------------------------------------------

// WeakSource is a non-owning handle to a Source window, intended for
// instrumentation and cache-invalidation checks. It must be upgraded
// via Resolve before use and fails gracefully once the backing
// buffer has been reclaimed.
type WeakSource struct {
	ref   weak.Pointer[buffer]
	start int
	stop  int
}

// Resolve upgrades the handle to a regular Source. It returns false
// if the backing buffer has already been reclaimed.
func (w WeakSource) Resolve() (*Source, bool) {
	buf := w.ref.Value()
	if buf == nil {
		return nil, false
	}
	return &Source{buf: buf, start: w.start, stop: w.stop, pos: w.start}, true
}
