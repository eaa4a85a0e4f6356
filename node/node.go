// Package node ties the ledger together: it owns the engine, the ledger and
// the transaction pool, and reacts to gossip through a single dispatch loop.
package node

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-essex/chain"
	"github.com/rony4d/go-essex/cryptocheck"
	"github.com/rony4d/go-essex/engine"
	"github.com/rony4d/go-essex/essex"
	"github.com/rony4d/go-essex/essex/genesis"
	"github.com/rony4d/go-essex/gossip"
	"github.com/rony4d/go-essex/idgen"
	"github.com/rony4d/go-essex/inter"
	"github.com/rony4d/go-essex/txpool"
	"github.com/rony4d/go-essex/validator"
)

// CreateChainCommand asks a node to mint and append a demo block.
const CreateChainCommand = "createchain"

// ErrNoIdentity is returned by New when the node has no validator identity.
var ErrNoIdentity = errors.New("node has no validator identity")

// Broadcaster is the part of the gossip overlay the node uses.
type Broadcaster interface {
	Publish(topic string, code uint64, data []byte) error
	Subscribe(topic string) <-chan gossip.Message
}

// Journal records accepted blocks.
type Journal interface {
	Append(b *inter.Block, at inter.Timestamp) error
}

// Config is the node's own behaviour, apart from network rules.
type Config struct {
	// Topic is the gossip topic the node publishes and listens on.
	Topic string
	// DemoMessage is the agreed message the node's identity signed.
	DemoMessage string
	// DemoPayload is the payload of blocks minted on CreateChainCommand.
	// Empty means a single item holding DemoMessage.
	DemoPayload []string
}

func DefaultConfig() Config {
	return Config{
		Topic:       "essex",
		DemoMessage: "hello",
	}
}

// Node is the ledger node.
type Node struct {
	cfg      Config
	rules    essex.Rules
	identity *validator.Identity

	engine  *engine.Engine
	chain   *chain.Store
	pool    *txpool.Pool
	net     Broadcaster
	journal Journal
	checker *cryptocheck.Checker

	// mintMu keeps mint, append and journal in ledger order
	mintMu sync.Mutex

	now func() inter.Timestamp
	log logrus.FieldLogger
}

// Option customizes a Node.
type Option func(*Node)

// WithJournal records every accepted block in j.
func WithJournal(j Journal) Option {
	return func(n *Node) { n.journal = j }
}

// WithSelfCheck runs an encrypt/decrypt round trip over every accepted payload.
func WithSelfCheck(c *cryptocheck.Checker) Option {
	return func(n *Node) { n.checker = c }
}

func WithClock(now func() inter.Timestamp) Option {
	return func(n *Node) { n.now = now }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(n *Node) { n.log = log }
}

// New creates a node whose ledger starts with g's genesis block.
func New(cfg Config, g genesis.Genesis, id *validator.Identity, net Broadcaster, opts ...Option) (*Node, error) {
	if err := g.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	if id == nil {
		return nil, ErrNoIdentity
	}
	n := &Node{
		cfg:      cfg,
		rules:    g.Rules,
		identity: id,
		net:      net,
		now:      func() inter.Timestamp { return inter.FromTime(time.Now()) },
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(n)
	}
	if len(n.cfg.DemoPayload) == 0 {
		n.cfg.DemoPayload = []string{n.cfg.DemoMessage}
	}

	n.engine = engine.New(g.Rules.Blocks,
		engine.WithClock(n.now),
		engine.WithLogger(n.log.WithField("module", "engine")))
	n.chain = chain.New(g.Rules.Blocks.Capacity, n.log.WithField("module", "chain"))
	n.pool = txpool.New(n.log.WithField("module", "txpool"))

	gb := g.Block(n.now())
	if _, err := n.chain.Append(gb); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}
	n.record(gb)
	return n, nil
}

func (n *Node) Chain() *chain.Store    { return n.chain }
func (n *Node) Pool() *txpool.Pool     { return n.pool }
func (n *Node) Engine() *engine.Engine { return n.engine }
func (n *Node) Rules() essex.Rules     { return n.rules }

// Run dispatches inbound gossip until ctx is done or the subscription closes.
// It is the only goroutine acting on remote input.
func (n *Node) Run(ctx context.Context) error {
	in := n.net.Subscribe(n.cfg.Topic)
	n.log.WithField("topic", n.cfg.Topic).Info("Node running")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-in:
			if !ok {
				return nil
			}
			n.Dispatch(m)
		}
	}
}

// Dispatch handles one inbound message. Remote blocks are decoded and logged,
// never merged into the local ledger.
func (n *Node) Dispatch(m gossip.Message) {
	log := n.log.WithField("from", m.From.TerminalString())
	switch m.Code {
	case gossip.CommandMsg:
		cmd := strings.TrimSpace(string(m.Data))
		log.WithField("command", cmd).Info("Command received")
		if cmd == CreateChainCommand {
			_, _ = n.CreateChain()
		}

	case gossip.BlockMsg:
		b, err := inter.Deserialize(m.Data)
		if err != nil {
			log.WithError(err).Warn("Undecodable remote block")
			return
		}
		log.WithFields(logrus.Fields{
			"id":      b.ID.String(),
			"parent":  b.ParentID.String(),
			"payload": b.Payload,
		}).Info("Remote block received")

	case gossip.TxMsg:
		tx, err := inter.DeserializeTx(m.Data)
		if err != nil {
			log.WithError(err).Warn("Undecodable remote transaction")
			return
		}
		n.pool.Add(tx)
		log.WithField("id", tx.ID.String()).Debug("Remote transaction pooled")

	default:
		log.WithField("code", m.Code).Warn("Unexpected message")
	}
}

// CreateChain mints a demo block on the tip, appends it, and publishes it.
// A full ledger yields chain.ErrCapacityExceeded and changes nothing.
// Journal, self-check and publish failures are logged and do not undo the
// append. Concurrent calls are serialized, so the journal sees blocks in
// ledger order.
func (n *Node) CreateChain() (*inter.Block, error) {
	b, err := n.appendMinted()
	if err != nil {
		return nil, err
	}
	n.selfCheck(b)
	if err := n.net.Publish(n.cfg.Topic, gossip.BlockMsg, inter.Serialize(b)); err != nil {
		n.log.WithError(err).Warn("Block publish failed")
	}
	return b, nil
}

func (n *Node) appendMinted() (*inter.Block, error) {
	n.mintMu.Lock()
	defer n.mintMu.Unlock()

	b, err := n.engine.Mint(n.chain.Tip(), n.identity, []byte(n.cfg.DemoMessage), n.cfg.DemoPayload...)
	if err != nil {
		n.log.WithError(err).Warn("Mint refused")
		return nil, err
	}
	if _, err := n.chain.Append(b); err != nil {
		if errors.Is(err, chain.ErrCapacityExceeded) {
			n.log.Info("Ledger full, nothing minted")
		} else {
			n.log.WithError(err).Warn("Append refused")
		}
		return nil, err
	}
	n.record(b)
	return b, nil
}

// SubmitTx pools a transaction from the node's identity against the current
// tip and gossips it.
func (n *Node) SubmitTx(amount uint64) (*inter.Transaction, error) {
	now := n.now()
	id, err := idgen.NewID(now)
	if err != nil {
		return nil, err
	}
	tx := &inter.Transaction{
		Account:   n.identity.Address(),
		Block:     n.chain.Tip().ID,
		Amount:    amount,
		ID:        id,
		CreatedAt: now,
		Valid:     true,
	}
	n.pool.Add(tx)

	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if err := n.net.Publish(n.cfg.Topic, gossip.TxMsg, raw); err != nil {
		n.log.WithError(err).Warn("Transaction publish failed")
	}
	return tx, nil
}

// Broadcast publishes a text command to peers.
func (n *Node) Broadcast(cmd string) error {
	return n.net.Publish(n.cfg.Topic, gossip.CommandMsg, []byte(cmd))
}

// LogChain writes the ledger to the log, one entry per block.
func (n *Node) LogChain() {
	for i, b := range n.chain.Blocks() {
		n.log.WithFields(logrus.Fields{
			"height":  i,
			"id":      b.ID.String(),
			"parent":  b.ParentID.String(),
			"payload": b.Payload,
			"created": b.CreatedAt.String(),
		}).Info("Ledger block")
	}
}

// LogPool writes the pooled transactions to the log.
func (n *Node) LogPool() {
	n.pool.Log()
}

func (n *Node) record(b *inter.Block) {
	if n.journal == nil {
		return
	}
	if err := n.journal.Append(b, n.now()); err != nil {
		n.log.WithError(err).Error("Journal append failed")
	}
}

func (n *Node) selfCheck(b *inter.Block) {
	if n.checker == nil {
		return
	}
	if err := n.checker.Payload(b.Payload); err != nil {
		n.log.WithError(err).Error("Payload self-check failed")
		return
	}
	n.log.WithField("id", b.ID.String()).Debug("Payload self-check passed")
}
