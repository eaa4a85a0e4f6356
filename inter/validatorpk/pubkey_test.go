package validatorpk

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

const rawHex = "04a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f90"

func TestFromString(t *testing.T) {
	exp := PubKey{
		Type: Types.Secp256k1,
		Raw:  common.FromHex(rawHex),
	}

	for _, tc := range []struct {
		in string
		ok bool
	}{
		{"c0" + rawHex, true},
		{"0xc0" + rawHex, true},
		{"", false},
		{"0x", false},
		{"-", false},
	} {
		t.Run(tc.in, func(t *testing.T) {
			got, err := FromString(tc.in)
			if !tc.ok {
				require.ErrorIs(t, err, ErrEmptyPubKey)
				return
			}
			require.NoError(t, err)
			require.Equal(t, exp, got)
		})
	}
}

func TestFromBytes_typeOnly(t *testing.T) {
	pk, err := FromBytes([]byte{Types.Secp256k1})
	require.NoError(t, err)
	require.Equal(t, PubKey{Type: Types.Secp256k1}, pk)
	require.Nil(t, pk.Raw)
	require.Equal(t, []byte{Types.Secp256k1}, pk.Bytes())
}

func TestPubKey(t *testing.T) {
	require := require.New(t)

	pk := PubKey{Type: Types.Secp256k1, Raw: common.FromHex(rawHex)}
	require.Equal("0xc0"+rawHex, pk.String())
	require.Equal(append([]byte{0xc0}, pk.Raw...), pk.Bytes())
	require.False(pk.Empty())
	require.True(PubKey{}.Empty())

	cp := pk.Copy()
	require.Equal(pk, cp)
	cp.Raw[0] = 0xff
	require.NotEqual(pk, cp)
}

func TestPubKey_JSON(t *testing.T) {
	require := require.New(t)

	pk := PubKey{Type: Types.Secp256k1, Raw: []byte{0xaa, 0xbb, 0xcc}}
	data, err := json.Marshal(&pk)
	require.NoError(err)
	require.Equal(`"0xc0aabbcc"`, string(data))

	var got PubKey
	require.NoError(json.Unmarshal(data, &got))
	require.Equal(pk, got)
}
