package cser

import (
	"errors"

	"github.com/rony4d/go-essex/utils/bits"
	"github.com/rony4d/go-essex/utils/fast"
)

var (
	ErrNonCanonicalEncoding = errors.New("non canonical encoding")
	ErrMalformedEncoding    = errors.New("malformed encoding")
	ErrTooLargeAlloc        = errors.New("too large allocation")
)

// MaxAlloc bounds any single length-prefixed field a Reader will allocate.
const MaxAlloc = 100 * 1024

// Writer splits a value into a bit stream (flags, length prefixes) and a byte
// stream (payload bytes).
type Writer struct {
	BitsW  *bits.Writer
	BytesW *fast.Writer
}

// Reader is the decoding counterpart of Writer. Its methods panic on bad
// input; UnmarshalBinaryAdapter turns those panics into errors.
type Reader struct {
	BitsR  *bits.Reader
	BytesR *fast.Reader
}

func NewWriter() *Writer {
	return &Writer{
		BitsW:  bits.NewWriter(&bits.Array{Bytes: make([]byte, 0, 32)}),
		BytesW: fast.NewWriter(make([]byte, 0, 256)),
	}
}

// writeUint64Compact is a base-128 varint whose final byte carries the 0x80 flag.
func writeUint64Compact(w *fast.Writer, v uint64) {
	for {
		chunk := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			w.WriteByte(chunk | 0x80)
			return
		}
		w.WriteByte(chunk)
	}
}

func readUint64Compact(r *fast.Reader) uint64 {
	var v uint64
	for i := 0; ; i++ {
		chunk := r.ReadByte()
		word := uint64(chunk & 0x7f)
		v |= word << uint(7*i)
		if chunk&0x80 != 0 {
			if i > 0 && word == 0 {
				panic(ErrNonCanonicalEncoding)
			}
			return v
		}
	}
}

// writeUint64BitCompact writes v little-endian in as few bytes as possible, but
// no fewer than minSize. It returns the number of bytes written.
func writeUint64BitCompact(w *fast.Writer, v uint64, minSize int) (size int) {
	for ; size < minSize || v != 0; size++ {
		w.WriteByte(byte(v))
		v >>= 8
	}
	return size
}

func readUint64BitCompact(r *fast.Reader, size int) uint64 {
	buf := r.Read(size)
	var v uint64
	for i, b := range buf {
		v |= uint64(b) << uint(8*i)
	}
	if size > 1 && buf[size-1] == 0 {
		panic(ErrNonCanonicalEncoding)
	}
	return v
}

// writeSized stores the value bytes in the byte stream and their count, less
// minSize, in sizeBits bits of the bit stream.
func (w *Writer) writeSized(minSize, sizeBits int, v uint64) {
	size := writeUint64BitCompact(w.BytesW, v, minSize)
	w.BitsW.Write(sizeBits, uint(size-minSize))
}

func (r *Reader) readSized(minSize, sizeBits int) uint64 {
	size := int(r.BitsR.Read(sizeBits)) + minSize
	return readUint64BitCompact(r.BytesR, size)
}

func (w *Writer) U8(v uint8) {
	w.BytesW.WriteByte(v)
}

func (r *Reader) U8() uint8 {
	return r.BytesR.ReadByte()
}

func (w *Writer) U32(v uint32) {
	w.writeSized(1, 2, uint64(v))
}

func (r *Reader) U32() uint32 {
	return uint32(r.readSized(1, 2))
}

func (w *Writer) U64(v uint64) {
	w.writeSized(1, 3, v)
}

func (r *Reader) U64() uint64 {
	return r.readSized(1, 3)
}

// U56 encodes lengths. Zero costs no payload bytes.
func (w *Writer) U56(v uint64) {
	if v >= 1<<56 {
		panic("cser: U56 overflow")
	}
	w.writeSized(0, 3, v)
}

func (r *Reader) U56() uint64 {
	return r.readSized(0, 3)
}

func (w *Writer) Bool(v bool) {
	var b uint
	if v {
		b = 1
	}
	w.BitsW.Write(1, b)
}

func (r *Reader) Bool() bool {
	return r.BitsR.Read(1) != 0
}

// FixedBytes writes v without a length prefix; the reader must know len(v).
func (w *Writer) FixedBytes(v []byte) {
	w.BytesW.Write(v)
}

func (r *Reader) FixedBytes(v []byte) {
	copy(v, r.BytesR.Read(len(v)))
}

func (w *Writer) SliceBytes(v []byte) {
	w.U56(uint64(len(v)))
	w.FixedBytes(v)
}

// SliceBytes reads a length-prefixed slice of at most maxLen bytes.
func (r *Reader) SliceBytes(maxLen int) []byte {
	size := r.U56()
	if size > uint64(maxLen) {
		panic(ErrTooLargeAlloc)
	}
	buf := make([]byte, size)
	r.FixedBytes(buf)
	return buf
}
