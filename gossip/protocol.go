// Package gossip replicates messages between nodes over a devp2p
// sub-protocol. Messages are published to a topic, flooded to every peer,
// relayed once by each receiver, and delivered to local subscribers of the
// topic.
package gossip

import (
	"fmt"

	"github.com/ethereum/go-ethereum/p2p/enode"
)

const (
	ProtocolName    = "essex"
	ProtocolVersion = 1
	ProtocolLength  = 3

	// ProtocolMaxMsgSize bounds any single gossip message.
	ProtocolMaxMsgSize = 10 * 1024 * 1024
)

// Message codes.
const (
	// CommandMsg carries a text control command, e.g. "createchain".
	CommandMsg = 0x00
	// BlockMsg carries a serialized block.
	BlockMsg = 0x01
	// TxMsg carries a serialized transaction.
	TxMsg = 0x02
)

// Envelope is the RLP body of every message.
type Envelope struct {
	Topic string
	Data  []byte
}

// Message is an inbound message handed to subscribers.
type Message struct {
	Code  uint64
	Topic string
	Data  []byte
	From  enode.ID
}

type PeerEventType int

const (
	Discovered PeerEventType = iota
	Expired
)

func (t PeerEventType) String() string {
	switch t {
	case Discovered:
		return "discovered"
	case Expired:
		return "expired"
	}
	return fmt.Sprintf("PeerEventType(%d)", int(t))
}

// PeerEvent reports a peer joining or leaving the overlay.
type PeerEvent struct {
	Type PeerEventType
	Peer enode.ID
	Name string
}

func codeName(code uint64) string {
	switch code {
	case CommandMsg:
		return "command"
	case BlockMsg:
		return "block"
	case TxMsg:
		return "tx"
	}
	return fmt.Sprintf("unknown(%d)", code)
}
