// Package engine validates candidate parents and mints new blocks on top of
// them. It holds no ledger state; see package chain for that.
package engine

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-essex/essex"
	"github.com/rony4d/go-essex/idgen"
	"github.com/rony4d/go-essex/inter"
	"github.com/rony4d/go-essex/validator"
)

var (
	ErrInvalidParent     = errors.New("parent block failed validation")
	ErrInsufficientStake = errors.New("validator stake does not exceed the minimum")
	ErrBadSignature      = errors.New("validator signature does not verify")
)

// Engine is safe for concurrent use; it only reads its configuration.
type Engine struct {
	rules essex.BlocksRules
	now   func() inter.Timestamp
	ids   idgen.BlockIDs
	log   logrus.FieldLogger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock.
func WithClock(now func() inter.Timestamp) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDs replaces the content-derived block IDs.
func WithIDs(ids idgen.BlockIDs) Option {
	return func(e *Engine) { e.ids = ids }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) { e.log = log }
}

func New(rules essex.BlocksRules, opts ...Option) *Engine {
	e := &Engine{
		rules: rules,
		now:   func() inter.Timestamp { return inter.FromTime(time.Now()) },
		ids:   idgen.ContentIDs{},
		log:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rules returns the rules the engine enforces.
func (e *Engine) Rules() essex.BlocksRules {
	return e.rules
}

// Now reads the engine's clock.
func (e *Engine) Now() inter.Timestamp {
	return e.now()
}

// Validate reports whether b may be extended: it is marked valid, carries a
// payload, and was created within the freshness window ending now.
func (e *Engine) Validate(b *inter.Block) bool {
	if b == nil || !b.Valid {
		return false
	}
	if len(b.Payload) == 0 {
		return false
	}
	return e.fresh(b.CreatedAt, e.now())
}

func (e *Engine) fresh(created, now inter.Timestamp) bool {
	if created > now {
		return false
	}
	return now-created <= e.rules.FreshnessWindow
}

// Mint builds a block extending parent, authored by id. Checks run in order
// and the first failure is returned before anything is built:
// ErrInvalidParent, ErrInsufficientStake, ErrBadSignature.
//
// message is what id.Signature must be a signature over. Mint does not touch
// any ledger; the caller appends the result.
func (e *Engine) Mint(parent *inter.Block, id *validator.Identity, message []byte, payload ...string) (*inter.Block, error) {
	if !e.Validate(parent) {
		return nil, ErrInvalidParent
	}
	if id == nil || id.Stake <= e.rules.MinStake {
		return nil, ErrInsufficientStake
	}
	if !validator.VerifyMessage(id.PubKey, message, id.Signature) {
		return nil, ErrBadSignature
	}

	b := &inter.Block{
		ParentID:  parent.ID,
		Validator: id.PubKey.Copy(),
		Signature: append([]byte(nil), id.Signature...),
		Valid:     true,
		CreatedAt: e.now(),
	}
	if len(payload) != 0 {
		b.Payload = append([]string(nil), payload...)
	}
	b.ID = e.ids.BlockID(b)

	e.log.WithFields(logrus.Fields{
		"id":     b.ID.String(),
		"parent": b.ParentID.String(),
		"items":  len(b.Payload),
	}).Debug("Minted block")
	return b, nil
}
