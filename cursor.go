package docstore

import "fmt"

// Cursor is a self-consuming wrapper around a Source, used for
// sequential one-pass decoding. Unlike Source, whose reads are
// repeatable via Seek, every read through a Cursor permanently
// consumes the bytes by advancing the window start: once read, the
// bytes are not retrievable again through this handle.
type Cursor struct {
	src *Source
}

// NewCursor wraps src. The cursor takes ownership of the given view;
// pass src.Clone() to keep an unconsumed copy.
func NewCursor(src *Source) *Cursor {
	src.pos = src.start
	return &Cursor{src: src}
}

// Len returns the number of unconsumed bytes.
func (c *Cursor) Len() int { return c.src.Len() }

// Read reads up to len(p) bytes and consumes them.
func (c *Cursor) Read(p []byte) (int, error) {
	n, err := c.src.Read(p)
	c.src.start += n
	c.src.pos = c.src.start
	return n, err
}

// ReadByte reads and consumes a single byte. Together with Read this
// lets binary.ReadUvarint decode straight off the cursor.
func (c *Cursor) ReadByte() (byte, error) {
	b, err := c.src.ReadByte()
	if err != nil {
		return 0, err
	}
	c.src.start++
	c.src.pos = c.src.start
	return b, nil
}

// Advance consumes n bytes without reading them. It panics if fewer
// than n bytes remain.
func (c *Cursor) Advance(n int) {
	if n < 0 || n > c.src.Len() {
		panic(fmt.Sprintf("docstore: cannot advance %d bytes, %d remaining", n, c.src.Len()))
	}
	c.src.start += n
	c.src.pos = c.src.start
}

// Split carves the remaining bytes into two independent cursors at
// offset at.
func (c *Cursor) Split(at int) (*Cursor, *Cursor) {
	left, right := c.src.Split(at)
	return NewCursor(left), NewCursor(right)
}
