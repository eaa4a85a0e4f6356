package cser

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVals(t *testing.T) {
	require := require.New(t)

	var (
		u8s   = []uint8{0, 1, 0x7f, math.MaxUint8}
		u32s  = []uint32{0, 1, 0x100, 0x10000, math.MaxUint32}
		u64s  = []uint64{0, 1, 0xffff, 1 << 40, math.MaxUint64}
		u56s  = []uint64{0, 1, 0x123456, 1<<56 - 1}
		bools = []bool{true, false, false, true}
		fixed = []byte{1, 2, 3, 4}
		slice = [][]byte{nil, {0}, []byte("payload")}
	)

	buf, err := MarshalBinaryAdapter(func(w *Writer) error {
		for _, v := range u8s {
			w.U8(v)
		}
		for _, v := range u32s {
			w.U32(v)
		}
		for _, v := range u64s {
			w.U64(v)
		}
		for _, v := range u56s {
			w.U56(v)
		}
		for _, v := range bools {
			w.Bool(v)
		}
		w.FixedBytes(fixed)
		for _, v := range slice {
			w.SliceBytes(v)
		}
		return nil
	})
	require.NoError(err)

	err = UnmarshalBinaryAdapter(buf, func(r *Reader) error {
		for _, exp := range u8s {
			require.Equal(exp, r.U8())
		}
		for _, exp := range u32s {
			require.Equal(exp, r.U32())
		}
		for _, exp := range u64s {
			require.Equal(exp, r.U64())
		}
		for _, exp := range u56s {
			require.Equal(exp, r.U56())
		}
		for _, exp := range bools {
			require.Equal(exp, r.Bool())
		}
		got := make([]byte, len(fixed))
		r.FixedBytes(got)
		require.Equal(fixed, got)
		for _, exp := range slice {
			require.Equal(len(exp), len(r.SliceBytes(MaxAlloc)))
		}
		return nil
	})
	require.NoError(err)
}

func TestU56_Overflow(t *testing.T) {
	require.Panics(t, func() {
		NewWriter().U56(1 << 56)
	})
}

func TestNonCanonicalInteger(t *testing.T) {
	// 1 padded to two bytes: bit stream says size 1+1, body says {1, 0}
	buf, err := MarshalBinaryAdapter(func(w *Writer) error {
		w.BytesW.Write([]byte{1, 0})
		w.BitsW.Write(3, 1)
		return nil
	})
	require.NoError(t, err)

	err = UnmarshalBinaryAdapter(buf, func(r *Reader) error {
		r.U64()
		return nil
	})
	require.Equal(t, ErrNonCanonicalEncoding, err)
}
