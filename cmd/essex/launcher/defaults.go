package launcher

import (
	"path/filepath"

	"github.com/rony4d/go-essex/gossip"
	"github.com/rony4d/go-essex/integration"
	"github.com/rony4d/go-essex/node"
)

const (
	// DefaultJournalFile is created inside the data directory.
	DefaultJournalFile = "blocks.rlp"
	DefaultListenPort  = 5050
	// DefaultDemoStake clears the main network stake bar.
	DefaultDemoStake = 50
)

// DefaultConfig returns the baseline configuration before presets, config
// files and flags are applied. Ledger overrides are left zero so the network
// rules decide.
func DefaultConfig() Config {
	preset := integration.DefaultPreset()
	gcfg := gossip.DefaultConfig()
	ncfg := node.DefaultConfig()

	cfg := Config{
		Node: NodeConfig{
			DataDir: filepath.Join(GuessHomeDir(), ".essex"),
			Name:    "essex",
			Preset:  preset.Name,
			P2P: P2PConfig{
				ListenAddr: "0.0.0.0",
				ListenPort: DefaultListenPort,
				MaxPeers:   preset.MaxPeers,
				Bootnodes:  []string{},
			},
			Logging: LoggingConfig{
				Verbosity: 3,
				Format:    "text",
				Color:     true,
			},
		},
		Essex: EssexConfig{
			NetworkName: "main",
		},
		Ledger: LedgerConfig{
			Capacity:  preset.Capacity,
			SelfCheck: preset.SelfCheck,
		},
		Gossip: GossipConfig{
			Topic:         ncfg.Topic,
			SeenCacheSize: preset.SeenCacheSize,
			SeenTTL:       gcfg.SeenTTL.String(),
			InboundRate:   preset.InboundRate,
			InboundBurst:  gcfg.InboundBurst,
		},
		Demo: DemoConfig{
			Message:  ncfg.DemoMessage,
			Stake:    DefaultDemoStake,
			KeyIndex: -1,
		},
	}
	if preset.Journal {
		cfg.Ledger.Journal = DefaultJournalFile
	}
	return cfg
}
