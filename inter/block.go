// Package inter holds the ledger's data types and their canonical wire form.
package inter

import (
	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/go-essex/inter/validatorpk"
)

// Block is one entry of the ledger.
//
// A genesis block links to itself (ParentID == ID). Every other accepted block
// links to the ID of the block it extended. Valid is set when the engine mints
// the block and is never cleared.
type Block struct {
	// ID identifies the block. It is derived from the block content, see idgen.
	ID hash.Hash
	// ParentID is the ID of the predecessor, or ID itself for genesis.
	ParentID hash.Hash

	// Validator is the public key of the authoring validator.
	Validator validatorpk.PubKey
	// Signature is the validator's authorization signature over the agreed
	// message. It is carried as produced and is not re-verified on receipt.
	Signature []byte

	// Payload is the block data. The engine never validates an empty payload.
	Payload []string

	Valid     bool
	CreatedAt Timestamp
}

// IsGenesis reports whether b links to itself.
func (b *Block) IsGenesis() bool {
	return b.ParentID == b.ID
}

// Copy returns a deep copy of b.
func (b *Block) Copy() *Block {
	cp := *b
	cp.Validator = b.Validator.Copy()
	cp.Signature = common.CopyBytes(b.Signature)
	if b.Payload != nil {
		cp.Payload = append([]string(nil), b.Payload...)
	}
	return &cp
}

// EstimateSize approximates the in-memory and wire size in bytes.
func (b *Block) EstimateSize() int {
	size := 2*32 + len(b.Validator.Raw) + 1 + len(b.Signature) + 8 + 1
	for _, p := range b.Payload {
		size += len(p)
	}
	return size
}
