package inter

import (
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/go-essex/utils/cser"
)

// Transaction records a transfer request against a block. Transactions only
// live in the pool; nothing settles them.
type Transaction struct {
	Account   common.Address
	Block     hash.Hash
	Amount    uint64
	ID        hash.Hash
	CreatedAt Timestamp
	Valid     bool
}

func (tx *Transaction) MarshalCSER(w *cser.Writer) error {
	w.U8(SerializationVersion)
	w.FixedBytes(tx.Account[:])
	w.FixedBytes(tx.Block[:])
	w.U64(tx.Amount)
	w.FixedBytes(tx.ID[:])
	w.U64(uint64(tx.CreatedAt))
	w.Bool(tx.Valid)
	return nil
}

func (tx *Transaction) UnmarshalCSER(r *cser.Reader) error {
	if v := r.U8(); v != SerializationVersion {
		return fmt.Errorf("%w: %d", ErrUnknownVersion, v)
	}
	r.FixedBytes(tx.Account[:])
	r.FixedBytes(tx.Block[:])
	tx.Amount = r.U64()
	r.FixedBytes(tx.ID[:])
	tx.CreatedAt = Timestamp(r.U64())
	tx.Valid = r.Bool()
	return nil
}

func (tx *Transaction) MarshalBinary() ([]byte, error) {
	return cser.MarshalBinaryAdapter(tx.MarshalCSER)
}

func (tx *Transaction) UnmarshalBinary(raw []byte) error {
	return cser.UnmarshalBinaryAdapter(raw, tx.UnmarshalCSER)
}

// DeserializeTx decodes a gossiped transaction. Failures match ErrDecode.
func DeserializeTx(raw []byte) (*Transaction, error) {
	tx := new(Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("%w: transaction: %w", ErrDecode, err)
	}
	return tx, nil
}
