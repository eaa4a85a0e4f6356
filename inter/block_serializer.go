package inter

import (
	"errors"
	"fmt"

	"github.com/rony4d/go-essex/inter/validatorpk"
	"github.com/rony4d/go-essex/utils/cser"
)

var (
	// ErrDecode wraps every failure to decode a block or transaction received
	// from outside the process.
	ErrDecode         = errors.New("decode failed")
	ErrUnknownVersion = errors.New("unknown serialization version")
	ErrTooManyItems   = errors.New("too many payload items")
)

const (
	// SerializationVersion is written as the first byte of every block.
	SerializationVersion = 0

	// ProtocolMaxMsgSize bounds a single decoded payload item.
	ProtocolMaxMsgSize = 10 * 1024 * 1024
	// MaxPayloadItems bounds the number of payload items in a decoded block.
	MaxPayloadItems = 4096

	maxKeySize = 256
	maxSigSize = 256
)

// MarshalCSER writes b as
// version | id | parent | pubkey | signature | items... | valid | created_at.
func (b *Block) MarshalCSER(w *cser.Writer) error {
	w.U8(SerializationVersion)
	w.FixedBytes(b.ID[:])
	w.FixedBytes(b.ParentID[:])
	if b.Validator.Empty() {
		w.SliceBytes(nil)
	} else {
		w.SliceBytes(b.Validator.Bytes())
	}
	w.SliceBytes(b.Signature)
	w.U32(uint32(len(b.Payload)))
	for _, item := range b.Payload {
		w.SliceBytes([]byte(item))
	}
	w.Bool(b.Valid)
	w.U64(uint64(b.CreatedAt))
	return nil
}

// UnmarshalCSER reads what MarshalCSER wrote. Empty and nil signature,
// payload and validator key share one encoding and all decode as nil.
func (b *Block) UnmarshalCSER(r *cser.Reader) error {
	if v := r.U8(); v != SerializationVersion {
		return fmt.Errorf("%w: %d", ErrUnknownVersion, v)
	}
	r.FixedBytes(b.ID[:])
	r.FixedBytes(b.ParentID[:])

	b.Validator = validatorpk.PubKey{}
	if raw := r.SliceBytes(maxKeySize); len(raw) != 0 {
		pk, err := validatorpk.FromBytes(raw)
		if err != nil {
			return err
		}
		b.Validator = pk
	}

	b.Signature = nil
	if sig := r.SliceBytes(maxSigSize); len(sig) != 0 {
		b.Signature = sig
	}

	n := r.U32()
	if n > MaxPayloadItems {
		return ErrTooManyItems
	}
	b.Payload = nil
	if n != 0 {
		b.Payload = make([]string, n)
		for i := range b.Payload {
			b.Payload[i] = string(r.SliceBytes(ProtocolMaxMsgSize))
		}
	}

	b.Valid = r.Bool()
	b.CreatedAt = Timestamp(r.U64())
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (b *Block) MarshalBinary() ([]byte, error) {
	return cser.MarshalBinaryAdapter(b.MarshalCSER)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (b *Block) UnmarshalBinary(raw []byte) error {
	return cser.UnmarshalBinaryAdapter(raw, b.UnmarshalCSER)
}

// Serialize returns the wire form of b.
func Serialize(b *Block) []byte {
	raw, _ := b.MarshalBinary() // MarshalCSER has no failure path
	return raw
}

// Deserialize decodes a block received from a peer or read from disk. All
// failures match ErrDecode. Empty slices come back nil, so compare decoded
// blocks against nil-normalized ones.
func Deserialize(raw []byte) (*Block, error) {
	b := new(Block)
	if err := b.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("%w: block: %w", ErrDecode, err)
	}
	return b, nil
}
