// Package cser is a compact canonical binary codec. Every value has exactly one
// valid encoding; decoders reject padded integers and trailing data.
//
// Layout: body bytes | bit stream bytes | reversed varint(len(bit stream)).
package cser

import (
	"github.com/rony4d/go-essex/utils/bits"
	"github.com/rony4d/go-essex/utils/fast"
)

// MarshalBinaryAdapter runs marshalCser against a fresh Writer and joins the
// two streams into one slice.
func MarshalBinaryAdapter(marshalCser func(*Writer) error) ([]byte, error) {
	w := NewWriter()
	if err := marshalCser(w); err != nil {
		return nil, err
	}
	return join(w.BitsW.Array, w.BytesW.Bytes()), nil
}

func join(bb *bits.Array, body []byte) []byte {
	out := fast.NewWriter(body)
	out.Write(bb.Bytes)

	size := fast.NewWriter(make([]byte, 0, 4))
	writeUint64Compact(size, uint64(len(bb.Bytes)))
	out.Write(reversed(size.Bytes()))
	return out.Bytes()
}

func split(raw []byte) (*bits.Array, []byte, error) {
	sizeR := fast.NewReader(reversed(tail(raw, 9)))
	bitsSize := readUint64Compact(sizeR)
	raw = raw[:len(raw)-sizeR.Position()]
	if uint64(len(raw)) < bitsSize {
		return nil, nil, ErrMalformedEncoding
	}
	cut := uint64(len(raw)) - bitsSize
	// the body is capped so reads past it panic instead of running into the bit stream
	return &bits.Array{Bytes: raw[cut:]}, raw[:cut:cut], nil
}

// UnmarshalBinaryAdapter splits raw and runs unmarshalCser over it. Input that
// is truncated, padded, or not fully consumed is rejected.
func UnmarshalBinaryAdapter(raw []byte, unmarshalCser func(*Reader) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && (e == ErrNonCanonicalEncoding || e == ErrTooLargeAlloc) {
				err = e
				return
			}
			err = ErrMalformedEncoding
		}
	}()

	bb, body, err := split(raw)
	if err != nil {
		return err
	}
	r := &Reader{
		BitsR:  bits.NewReader(bb),
		BytesR: fast.NewReader(body),
	}
	if err = unmarshalCser(r); err != nil {
		return err
	}

	if r.BitsR.NonReadBytes() > 1 {
		return ErrNonCanonicalEncoding
	}
	if r.BitsR.Read(r.BitsR.NonReadBits()) != 0 {
		return ErrNonCanonicalEncoding
	}
	if !r.BytesR.Empty() {
		return ErrNonCanonicalEncoding
	}
	return nil
}

func tail(b []byte, n int) []byte {
	if len(b) > n {
		return b[len(b)-n:]
	}
	return b
}

func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
