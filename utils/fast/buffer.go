// Package fast wraps a byte slice with an append-only Writer and a cursor-based
// Reader. Neither type checks bounds: reading past the end panics, and callers
// (the cser codec) recover that panic into a decode error.
package fast

// Writer appends to a growing byte slice.
type Writer struct {
	buf []byte
}

// Reader consumes a byte slice from the front.
type Reader struct {
	buf    []byte
	offset int
}

// NewWriter returns a Writer appending to bb, usually make([]byte, 0, n).
func NewWriter(bb []byte) *Writer {
	return &Writer{buf: bb}
}

// NewReader returns a Reader positioned at the start of bb.
func NewReader(bb []byte) *Reader {
	return &Reader{buf: bb}
}

func (b *Writer) WriteByte(v byte) {
	b.buf = append(b.buf, v)
}

func (b *Writer) Write(v []byte) {
	b.buf = append(b.buf, v...)
}

// Bytes returns everything written so far.
func (b *Writer) Bytes() []byte {
	return b.buf
}

// Read returns the next n bytes. The result aliases the underlying buffer.
func (b *Reader) Read(n int) []byte {
	res := b.buf[b.offset : b.offset+n]
	b.offset += n
	return res
}

func (b *Reader) ReadByte() byte {
	res := b.buf[b.offset]
	b.offset++
	return res
}

// Position is the number of bytes consumed.
func (b *Reader) Position() int {
	return b.offset
}

// Bytes returns the whole underlying buffer, consumed or not.
func (b *Reader) Bytes() []byte {
	return b.buf
}

// Empty reports whether every byte has been consumed.
func (b *Reader) Empty() bool {
	return b.offset == len(b.buf)
}
