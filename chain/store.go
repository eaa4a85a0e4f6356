// Package chain is the in-memory ledger: an append-only, linked sequence of
// accepted blocks owned by one node.
package chain

import (
	"errors"
	"sync"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-essex/essex/genesis"
	"github.com/rony4d/go-essex/inter"
)

var (
	ErrNotValidated     = errors.New("block is not marked valid")
	ErrLinkageMismatch  = errors.New("block parent is not the current tip")
	ErrCapacityExceeded = errors.New("ledger is at capacity")
)

// Store holds the ledger. Every mutation goes through Append, which holds the
// lock for its whole duration, so a check against the tip and the push that
// follows it cannot interleave with another append.
type Store struct {
	mu       sync.RWMutex
	blocks   []*inter.Block
	capacity int
	log      logrus.FieldLogger
}

// New returns an empty store holding at most capacity blocks.
func New(capacity int, log logrus.FieldLogger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{
		blocks:   make([]*inter.Block, 0, capacity),
		capacity: capacity,
		log:      log,
	}
}

// Append adds b at the end of the ledger.
//
// b must be valid. The first block is accepted as genesis; after that
// b.ParentID must equal the tip's ID. A full ledger refuses the block with
// (false, ErrCapacityExceeded). On any failure the ledger is unchanged.
func (s *Store) Append(b *inter.Block) (bool, error) {
	if b == nil || !b.Valid {
		return false, ErrNotValidated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.blocks) != 0 {
		tip := s.blocks[len(s.blocks)-1]
		if b.ParentID != tip.ID {
			return false, ErrLinkageMismatch
		}
	}
	if len(s.blocks) >= s.capacity {
		s.log.WithField("capacity", s.capacity).Warn("Ledger full, block dropped")
		return false, ErrCapacityExceeded
	}

	s.blocks = append(s.blocks, b.Copy())
	s.log.WithFields(logrus.Fields{
		"height": len(s.blocks) - 1,
		"id":     b.ID.String(),
	}).Info("Block appended")
	return true, nil
}

// Tip returns a copy of the last block, or the genesis sentinel when empty.
func (s *Store) Tip() *inter.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.blocks) == 0 {
		return genesis.Sentinel()
	}
	return s.blocks[len(s.blocks)-1].Copy()
}

// Len is the number of blocks, genesis included.
func (s *Store) Len() idx.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return idx.Block(len(s.blocks))
}

// Get returns a copy of the block at height n.
func (s *Store) Get(n idx.Block) (*inter.Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n >= idx.Block(len(s.blocks)) {
		return nil, false
	}
	return s.blocks[n].Copy(), true
}

// Blocks returns a copy of the whole ledger in order.
func (s *Store) Blocks() []*inter.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*inter.Block, len(s.blocks))
	for i, b := range s.blocks {
		out[i] = b.Copy()
	}
	return out
}

// Capacity is the maximum ledger length.
func (s *Store) Capacity() int {
	return s.capacity
}
