// Package bits packs values of arbitrary bit width into a byte slice, least
// significant bit first. It backs the flag and length side channel of cser.
package bits

type (
	// Array holds the packed stream. Writer and Reader may share one.
	Array struct {
		Bytes []byte
	}

	// Writer appends bit fields to an Array.
	Writer struct {
		*Array
		bitOffset int // next free bit in the last byte, 0 means a new byte is needed
	}

	// Reader consumes bit fields from an Array.
	Reader struct {
		*Array
		byteOffset int
		bitOffset  int
	}
)

func NewWriter(arr *Array) *Writer {
	return &Writer{Array: arr}
}

func NewReader(arr *Array) *Reader {
	return &Reader{Array: arr}
}

func lowBits(v uint, n int) uint {
	return v & (1<<uint(n) - 1)
}

// Write appends the lowest n bits of v.
func (a *Writer) Write(n int, v uint) {
	for n > 0 {
		if a.bitOffset == 0 {
			a.Bytes = append(a.Bytes, 0)
		}
		chunk := min(n, 8-a.bitOffset)
		a.Bytes[len(a.Bytes)-1] |= byte(lowBits(v, chunk) << uint(a.bitOffset))
		a.bitOffset = (a.bitOffset + chunk) % 8
		v >>= uint(chunk)
		n -= chunk
	}
}

// Read consumes n bits. It panics when the stream is shorter than n.
func (a *Reader) Read(n int) (v uint) {
	shift := 0
	for n > 0 {
		chunk := min(n, 8-a.bitOffset)
		v |= lowBits(uint(a.Bytes[a.byteOffset])>>uint(a.bitOffset), chunk) << uint(shift)
		shift += chunk
		n -= chunk
		a.bitOffset += chunk
		if a.bitOffset == 8 {
			a.bitOffset = 0
			a.byteOffset++
		}
	}
	return v
}

// View reads n bits without moving the cursor.
func (a *Reader) View(n int) uint {
	cp := *a
	return cp.Read(n)
}

// NonReadBytes counts bytes not yet fully consumed, including a partly read one.
func (a *Reader) NonReadBytes() int {
	return len(a.Bytes) - a.byteOffset
}

// NonReadBits counts the bits left, padding of the last byte included.
func (a *Reader) NonReadBits() int {
	return a.NonReadBytes()*8 - a.bitOffset
}
