package gossip

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/p2p"
	"github.com/ethereum/go-ethereum/p2p/enode"
	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	ErrNoPeers       = errors.New("no peers to publish to")
	ErrStopped       = errors.New("gossip service stopped")
	ErrMsgTooLarge   = errors.New("message too large")
	ErrAlreadyActive = errors.New("gossip service already started")
)

// Config configures the overlay.
type Config struct {
	// Name is advertised to peers in the devp2p handshake.
	Name string
	// ListenAddr is the TCP/UDP listen address, e.g. ":5050". Empty disables
	// listening; the node can still dial bootnodes.
	ListenAddr string
	MaxPeers   int
	// NoDiscovery disables the discv4 peer discovery.
	NoDiscovery bool
	// Bootnodes are enode URLs dialed at startup.
	Bootnodes []string

	// SeenCacheSize is how many recent message ids are remembered for dedup.
	SeenCacheSize int
	// SeenTTL is how long a message id suppresses repeats. A command sent
	// again after it expires is delivered again.
	SeenTTL time.Duration
	// InboundRate limits messages accepted per peer per second. Zero means
	// unlimited.
	InboundRate  float64
	InboundBurst int
	// SubscriptionBuffer is the channel capacity handed to each subscriber.
	SubscriptionBuffer int
}

// DefaultConfig is a listening node with discovery on.
func DefaultConfig() Config {
	return Config{
		Name:               "essex",
		ListenAddr:         ":5050",
		MaxPeers:           25,
		SeenCacheSize:      4096,
		SeenTTL:            2 * time.Minute,
		InboundRate:        50,
		InboundBurst:       100,
		SubscriptionBuffer: 256,
	}
}

type peer struct {
	id      enode.ID
	name    string
	rw      p2p.MsgReadWriter
	limiter *rate.Limiter
}

// Service is the gossip overlay.
type Service struct {
	cfg Config
	key *ecdsa.PrivateKey
	log logrus.FieldLogger

	server *p2p.Server
	now    func() time.Time

	seenMu sync.Mutex
	seen   *lru.Cache // message id -> time first seen

	mu      sync.RWMutex
	peers   map[enode.ID]*peer
	subs    map[string][]chan Message
	events  chan PeerEvent
	stopped bool
}

// New creates a service. key is the node key; its public half is the node's
// enode ID.
func New(cfg Config, key *ecdsa.PrivateKey, log logrus.FieldLogger) (*Service, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.SeenCacheSize <= 0 {
		cfg.SeenCacheSize = DefaultConfig().SeenCacheSize
	}
	if cfg.SeenTTL <= 0 {
		cfg.SeenTTL = DefaultConfig().SeenTTL
	}
	if cfg.SubscriptionBuffer <= 0 {
		cfg.SubscriptionBuffer = DefaultConfig().SubscriptionBuffer
	}
	seen, err := lru.New(cfg.SeenCacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{
		cfg:    cfg,
		key:    key,
		log:    log.WithField("module", "gossip"),
		now:    time.Now,
		seen:   seen,
		peers:  make(map[enode.ID]*peer),
		subs:   make(map[string][]chan Message),
		events: make(chan PeerEvent, 64),
	}, nil
}

// Protocol is the devp2p sub-protocol served by the service.
func (s *Service) Protocol() p2p.Protocol {
	return p2p.Protocol{
		Name:    ProtocolName,
		Version: ProtocolVersion,
		Length:  ProtocolLength,
		Run: func(p *p2p.Peer, rw p2p.MsgReadWriter) error {
			return s.handle(p.ID(), p.Name(), rw)
		},
	}
}

// Start brings up the p2p server.
func (s *Service) Start() error {
	if s.server != nil {
		return ErrAlreadyActive
	}
	bootnodes := make([]*enode.Node, 0, len(s.cfg.Bootnodes))
	for _, url := range s.cfg.Bootnodes {
		n, err := enode.Parse(enode.ValidSchemes, url)
		if err != nil {
			return fmt.Errorf("bootnode %q: %w", url, err)
		}
		bootnodes = append(bootnodes, n)
	}

	s.server = &p2p.Server{Config: p2p.Config{
		PrivateKey:     s.key,
		Name:           s.cfg.Name,
		MaxPeers:       s.cfg.MaxPeers,
		ListenAddr:     s.cfg.ListenAddr,
		NoDiscovery:    s.cfg.NoDiscovery,
		BootstrapNodes: bootnodes,
		Protocols:      []p2p.Protocol{s.Protocol()},
		Logger:         newLogBridge(s.log),
	}}
	if err := s.server.Start(); err != nil {
		return fmt.Errorf("p2p server: %w", err)
	}
	s.log.WithField("enode", s.server.Self().URLv4()).Info("Gossip started")
	return nil
}

// Stop shuts the server down and closes every subscription and the event
// channel.
func (s *Service) Stop() {
	if s.server != nil {
		s.server.Stop()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	for _, chans := range s.subs {
		for _, ch := range chans {
			close(ch)
		}
	}
	s.subs = nil
	close(s.events)
}

// Self is the local enode ID.
func (s *Service) Self() enode.ID {
	return enode.PubkeyToIDV4(&s.key.PublicKey)
}

// Subscribe returns a channel receiving every inbound message on topic. A
// subscriber that falls behind loses messages.
func (s *Service) Subscribe(topic string) <-chan Message {
	ch := make(chan Message, s.cfg.SubscriptionBuffer)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		close(ch)
		return ch
	}
	s.subs[topic] = append(s.subs[topic], ch)
	return ch
}

// PeerEvents reports peers joining and leaving. Events are dropped when
// nobody reads them.
func (s *Service) PeerEvents() <-chan PeerEvent {
	return s.events
}

// PeerCount is the number of connected peers speaking the protocol.
func (s *Service) PeerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.peers)
}

// Publish floods data on topic to every peer. It returns ErrNoPeers when
// nobody is connected; per-peer send failures are joined into the result.
func (s *Service) Publish(topic string, code uint64, data []byte) error {
	if code >= ProtocolLength {
		return fmt.Errorf("unknown message code %d", code)
	}
	env := Envelope{Topic: topic, Data: data}
	s.markSeen(messageID(code, &env))

	s.mu.RLock()
	if s.stopped {
		s.mu.RUnlock()
		return ErrStopped
	}
	targets := s.peerList(enode.ID{})
	s.mu.RUnlock()

	if len(targets) == 0 {
		return ErrNoPeers
	}
	return s.broadcast(targets, code, &env)
}

func (s *Service) peerList(except enode.ID) []*peer {
	out := make([]*peer, 0, len(s.peers))
	for id, p := range s.peers {
		if id != except {
			out = append(out, p)
		}
	}
	return out
}

func (s *Service) broadcast(targets []*peer, code uint64, env *Envelope) error {
	var errs []error
	for _, p := range targets {
		if err := p2p.Send(p.rw, code, env); err != nil {
			errs = append(errs, fmt.Errorf("peer %s: %w", p.id.TerminalString(), err))
		}
	}
	return errors.Join(errs...)
}

func messageID(code uint64, env *Envelope) [32]byte {
	var id [32]byte
	copy(id[:], crypto.Keccak256([]byte{byte(code)}, []byte(env.Topic), []byte{0}, env.Data))
	return id
}

// markSeen records id as seen now and reports whether it had already been
// seen within SeenTTL.
func (s *Service) markSeen(id [32]byte) bool {
	now := s.now()
	s.seenMu.Lock()
	defer s.seenMu.Unlock()
	if at, ok := s.seen.Get(id); ok && now.Sub(at.(time.Time)) < s.cfg.SeenTTL {
		return true
	}
	s.seen.Add(id, now)
	return false
}

func (s *Service) emit(ev PeerEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		return
	}
	select {
	case s.events <- ev:
	default:
	}
}

func (s *Service) handle(id enode.ID, name string, rw p2p.MsgReadWriter) error {
	limit, burst := rate.Inf, s.cfg.InboundBurst
	if s.cfg.InboundRate > 0 {
		limit = rate.Limit(s.cfg.InboundRate)
		if burst <= 0 {
			burst = 1
		}
	}
	p := &peer{
		id:      id,
		name:    name,
		rw:      rw,
		limiter: rate.NewLimiter(limit, burst),
	}
	log := s.log.WithField("peer", id.TerminalString())

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	if _, ok := s.peers[id]; ok {
		s.mu.Unlock()
		return p2p.DiscAlreadyConnected
	}
	s.peers[id] = p
	s.mu.Unlock()

	log.WithField("name", name).Info("Peer discovered")
	s.emit(PeerEvent{Type: Discovered, Peer: id, Name: name})
	defer func() {
		s.mu.Lock()
		delete(s.peers, id)
		s.mu.Unlock()
		log.Info("Peer expired")
		s.emit(PeerEvent{Type: Expired, Peer: id, Name: name})
	}()

	for {
		if err := s.handleMsg(p, log); err != nil {
			log.WithError(err).Debug("Peer loop ended")
			return err
		}
	}
}

func (s *Service) handleMsg(p *peer, log logrus.FieldLogger) error {
	msg, err := p.rw.ReadMsg()
	if err != nil {
		return err
	}
	defer msg.Discard()

	if msg.Size > ProtocolMaxMsgSize {
		return fmt.Errorf("%w: %d > %d", ErrMsgTooLarge, msg.Size, ProtocolMaxMsgSize)
	}
	if msg.Code >= ProtocolLength {
		log.WithField("code", msg.Code).Warn("Unknown message code")
		return nil
	}
	if !p.limiter.Allow() {
		log.WithField("code", codeName(msg.Code)).Warn("Inbound rate exceeded, message dropped")
		return nil
	}

	var env Envelope
	if err := msg.Decode(&env); err != nil {
		log.WithError(err).Warn("Malformed envelope")
		return nil
	}
	if s.markSeen(messageID(msg.Code, &env)) {
		return nil
	}

	s.mu.RLock()
	delivered := s.deliver(Message{Code: msg.Code, Topic: env.Topic, Data: env.Data, From: p.id}, log)
	relay := s.peerList(p.id)
	s.mu.RUnlock()

	if !delivered {
		return nil
	}
	if err := s.broadcast(relay, msg.Code, &env); err != nil {
		log.WithError(err).Warn("Relay failed")
	}
	return nil
}

// deliver hands m to the topic's subscribers. It reports whether anyone on
// this node subscribes to the topic. Callers hold s.mu.
func (s *Service) deliver(m Message, log logrus.FieldLogger) bool {
	if s.stopped {
		return false
	}
	chans, ok := s.subs[m.Topic]
	if !ok {
		return false
	}
	for _, ch := range chans {
		select {
		case ch <- m:
		default:
			log.WithField("topic", m.Topic).Warn("Subscriber lagging, message dropped")
		}
	}
	return true
}
