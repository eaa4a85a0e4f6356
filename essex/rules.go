// Package essex defines the network rules every node of a network agrees on:
// who may mint, how fresh a parent must be, and how long the ledger may grow.
package essex

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Fantom-foundation/lachesis-base/inter/pos"

	"github.com/rony4d/go-essex/inter"
)

const (
	MainNetworkID uint64 = 0xe55e
	TestNetworkID uint64 = 0xe55f
	FakeNetworkID uint64 = 0xe560

	// DefaultMinStake is the stake a validator must exceed to mint.
	DefaultMinStake pos.Weight = 30
	// DefaultFreshnessWindow is how far back a parent's creation time may lie.
	DefaultFreshnessWindow = inter.Timestamp(2 * time.Hour)
	// DefaultCapacity is the maximum ledger length, genesis included.
	DefaultCapacity = 20
)

var (
	ErrZeroCapacity  = errors.New("ledger capacity must be positive")
	ErrZeroFreshness = errors.New("freshness window must be positive")
)

// Rules is the network configuration. It is serialized as-is into config
// dumps and logs.
type Rules struct {
	Name      string
	NetworkID uint64

	Blocks BlocksRules
}

// BlocksRules governs minting, validation and ledger growth.
type BlocksRules struct {
	// MinStake is exclusive: minting needs Stake > MinStake.
	MinStake pos.Weight
	// FreshnessWindow bounds the age of a block being extended. A block created
	// after the validator's clock reading is not fresh either.
	FreshnessWindow inter.Timestamp
	// Capacity is the maximum number of blocks, genesis included. Appends
	// beyond it are refused; nothing is evicted.
	Capacity int
}

func DefaultBlocksRules() BlocksRules {
	return BlocksRules{
		MinStake:        DefaultMinStake,
		FreshnessWindow: DefaultFreshnessWindow,
		Capacity:        DefaultCapacity,
	}
}

func MainNetRules() Rules {
	return Rules{
		Name:      "main",
		NetworkID: MainNetworkID,
		Blocks:    DefaultBlocksRules(),
	}
}

func TestNetRules() Rules {
	return Rules{
		Name:      "test",
		NetworkID: TestNetworkID,
		Blocks:    DefaultBlocksRules(),
	}
}

// FakeNetRules is for local single-machine networks: a longer ledger and a
// lower stake bar.
func FakeNetRules() Rules {
	blocks := DefaultBlocksRules()
	blocks.MinStake = 0
	blocks.Capacity = 1000
	return Rules{
		Name:      "fake",
		NetworkID: FakeNetworkID,
		Blocks:    blocks,
	}
}

// RulesByName resolves main, test or fake.
func RulesByName(name string) (Rules, error) {
	switch name {
	case "main", "":
		return MainNetRules(), nil
	case "test":
		return TestNetRules(), nil
	case "fake":
		return FakeNetRules(), nil
	}
	return Rules{}, fmt.Errorf("unknown network %q", name)
}

// Validate checks the rules are usable.
func (r Rules) Validate() error {
	if r.Blocks.Capacity <= 0 {
		return ErrZeroCapacity
	}
	if r.Blocks.FreshnessWindow == 0 {
		return ErrZeroFreshness
	}
	return nil
}

// Copy returns an independent copy. Rules holds no references today.
func (r Rules) Copy() Rules {
	return r
}

// String renders the rules as JSON.
func (r Rules) String() string {
	b, _ := json.Marshal(&r)
	return string(b)
}
