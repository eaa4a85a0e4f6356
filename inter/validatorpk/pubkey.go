// Package validatorpk is the typed public key a validator signs blocks with.
package validatorpk

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// PubKey is a public key tagged with its scheme.
type PubKey struct {
	Type uint8
	Raw  []byte
}

// Types enumerates the known schemes.
var Types = struct {
	Secp256k1 uint8
}{
	Secp256k1: 0xc0,
}

var ErrEmptyPubKey = errors.New("empty pubkey")

// Empty reports whether pk is the zero value.
func (pk PubKey) Empty() bool {
	return len(pk.Raw) == 0 && pk.Type == 0
}

// Bytes is the flat form: type byte followed by the raw key.
func (pk PubKey) Bytes() []byte {
	return append([]byte{pk.Type}, pk.Raw...)
}

func (pk PubKey) String() string {
	return "0x" + common.Bytes2Hex(pk.Bytes())
}

// Copy returns a PubKey that shares no memory with pk.
func (pk PubKey) Copy() PubKey {
	return PubKey{
		Type: pk.Type,
		Raw:  common.CopyBytes(pk.Raw),
	}
}

// FromBytes parses the flat form produced by Bytes. A lone type byte yields
// a nil Raw.
func FromBytes(b []byte) (PubKey, error) {
	if len(b) == 0 {
		return PubKey{}, ErrEmptyPubKey
	}
	pk := PubKey{Type: b[0]}
	if len(b) > 1 {
		pk.Raw = b[1:]
	}
	return pk, nil
}

// FromString parses a hex string, 0x prefix optional.
func FromString(str string) (PubKey, error) {
	return FromBytes(common.FromHex(str))
}

func (pk *PubKey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

func (pk *PubKey) UnmarshalText(input []byte) error {
	res, err := FromString(string(input))
	if err != nil {
		return err
	}
	*pk = res
	return nil
}
