// Package txpool keeps an append-only record of submitted transactions. It
// never touches the ledger.
package txpool

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-essex/inter"
)

// Pool is safe for concurrent use. Entries are never removed or changed.
type Pool struct {
	mu  sync.RWMutex
	txs []*inter.Transaction
	log logrus.FieldLogger
}

func New(log logrus.FieldLogger) *Pool {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pool{log: log}
}

// Add records tx. It always succeeds.
func (p *Pool) Add(tx *inter.Transaction) bool {
	cp := *tx
	p.mu.Lock()
	p.txs = append(p.txs, &cp)
	p.mu.Unlock()
	return true
}

// Enumerate returns the transactions in insertion order. Each call starts
// over and sees everything added before it.
func (p *Pool) Enumerate() []inter.Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]inter.Transaction, len(p.txs))
	for i, tx := range p.txs {
		out[i] = *tx
	}
	return out
}

// ForEach calls fn for every transaction in insertion order until fn returns
// false. fn must not call Add.
func (p *Pool) ForEach(fn func(tx inter.Transaction) bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, tx := range p.txs {
		if !fn(*tx) {
			return
		}
	}
}

func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.txs)
}

// Log writes every transaction to the pool's logger.
func (p *Pool) Log() {
	p.ForEach(func(tx inter.Transaction) bool {
		p.log.WithFields(logrus.Fields{
			"id":      tx.ID.String(),
			"account": tx.Account.Hex(),
			"block":   tx.Block.String(),
			"amount":  tx.Amount,
			"valid":   tx.Valid,
		}).Info("Pooled transaction")
		return true
	})
}
