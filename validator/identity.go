// Package validator is the signing identity a node mints blocks with: a
// secp256k1 key pair, a signature over an agreed message, and a stake.
package validator

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/rand"

	"github.com/Fantom-foundation/lachesis-base/inter/pos"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/rony4d/go-essex/inter/validatorpk"
)

var ErrNoKey = errors.New("identity has no private key")

// Identity is created once per session. Only Stake may change afterwards,
// and nothing in this module changes it.
type Identity struct {
	// PubKey is the uncompressed secp256k1 public key.
	PubKey validatorpk.PubKey
	// Signature is the 65 byte [R || S || V] signature over Digest(message)
	// for the message the identity was created with.
	Signature []byte
	// Stake is the validator's balance. Minting requires more than the
	// network's minimum.
	Stake pos.Weight

	key *ecdsa.PrivateKey
}

// Create makes a fresh identity holding stake and signs message with it.
func Create(message []byte, stake pos.Weight) (*Identity, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return FromKey(key, message, stake)
}

// FromKey builds an identity around an existing key.
func FromKey(key *ecdsa.PrivateKey, message []byte, stake pos.Weight) (*Identity, error) {
	id := &Identity{
		PubKey: PubKeyOf(&key.PublicKey),
		Stake:  stake,
		key:    key,
	}
	sig, err := id.Sign(message)
	if err != nil {
		return nil, err
	}
	id.Signature = sig
	return id, nil
}

// PubKeyOf wraps an ecdsa public key.
func PubKeyOf(pub *ecdsa.PublicKey) validatorpk.PubKey {
	return validatorpk.PubKey{
		Type: validatorpk.Types.Secp256k1,
		Raw:  crypto.FromECDSAPub(pub),
	}
}

// Digest is the canonical hash a message is signed over.
func Digest(message []byte) []byte {
	return crypto.Keccak256(message)
}

// Sign signs Digest(message).
func (id *Identity) Sign(message []byte) ([]byte, error) {
	if id.key == nil {
		return nil, ErrNoKey
	}
	return crypto.Sign(Digest(message), id.key)
}

// Address is the account derived from the identity's key.
func (id *Identity) Address() common.Address {
	if id.key == nil {
		return common.Address{}
	}
	return crypto.PubkeyToAddress(id.key.PublicKey)
}

// VerifyMessage reports whether sig is a signature by pk over Digest(message).
// Both 64 byte [R || S] and 65 byte recoverable signatures are accepted.
func VerifyMessage(pk validatorpk.PubKey, message, sig []byte) bool {
	if pk.Type != validatorpk.Types.Secp256k1 || len(pk.Raw) == 0 {
		return false
	}
	switch len(sig) {
	case crypto.SignatureLength:
		sig = sig[:crypto.SignatureLength-1]
	case crypto.SignatureLength - 1:
	default:
		return false
	}
	return crypto.VerifySignature(pk.Raw, Digest(message), sig)
}

// FakeKey returns the n-th deterministic test key.
func FakeKey(n int) *ecdsa.PrivateKey {
	reader := rand.New(rand.NewSource(int64(n)))
	seed := make([]byte, 32)
	for {
		reader.Read(seed)
		key, err := crypto.ToECDSA(seed)
		if err == nil {
			return key
		}
	}
}
