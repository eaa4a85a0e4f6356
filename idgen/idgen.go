// Package idgen hands out identifiers for blocks and transactions.
package idgen

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/rony4d/go-essex/inter"
)

// BlockIDs assigns the ID of a freshly minted block. Every other field of the
// block is set when BlockID is called.
type BlockIDs interface {
	BlockID(b *inter.Block) hash.Hash
}

// BlockIDFunc adapts a function to BlockIDs.
type BlockIDFunc func(b *inter.Block) hash.Hash

func (f BlockIDFunc) BlockID(b *inter.Block) hash.Hash {
	return f(b)
}

// ContentIDs derives a block ID from what the block commits to: its parent,
// author, payload and creation time. Valid and the signature are excluded.
type ContentIDs struct{}

type blockContent struct {
	Parent    hash.Hash
	Validator []byte
	Payload   []string
	CreatedAt uint64
}

func (ContentIDs) BlockID(b *inter.Block) hash.Hash {
	payload := b.Payload
	if payload == nil {
		payload = []string{}
	}
	enc, err := rlp.EncodeToBytes(&blockContent{
		Parent:    b.ParentID,
		Validator: b.Validator.Bytes(),
		Payload:   payload,
		CreatedAt: uint64(b.CreatedAt),
	})
	if err != nil {
		// every field has a fixed rlp encoding
		panic(err)
	}
	return hash.BytesToHash(crypto.Keccak256(enc))
}

// KeyPair is a throwaway secp256k1 key pair whose public half names something.
type KeyPair struct {
	Secret    *ecdsa.PrivateKey
	Public    *ecdsa.PublicKey
	CreatedAt inter.Timestamp
}

// NewKeyPair generates a key pair stamped with now.
func NewKeyPair(now inter.Timestamp) (*KeyPair, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key pair: %w", err)
	}
	return &KeyPair{Secret: key, Public: &key.PublicKey, CreatedAt: now}, nil
}

// ID is unique per key pair.
func (kp *KeyPair) ID() hash.Hash {
	return hash.BytesToHash(crypto.Keccak256(crypto.CompressPubkey(kp.Public), kp.CreatedAt.Bytes()))
}

// Display renders a public key for logs.
func Display(pub *ecdsa.PublicKey) string {
	return hexutil.Encode(crypto.CompressPubkey(pub))
}

// NewID returns a fresh random identifier.
func NewID(now inter.Timestamp) (hash.Hash, error) {
	kp, err := NewKeyPair(now)
	if err != nil {
		return hash.Hash{}, err
	}
	return kp.ID(), nil
}
