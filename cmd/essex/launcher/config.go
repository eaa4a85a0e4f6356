package launcher

import (
	"crypto/ecdsa"
	"fmt"
	"math"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Fantom-foundation/lachesis-base/inter/pos"
	"github.com/ethereum/go-ethereum/crypto"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-essex/essex"
	"github.com/rony4d/go-essex/essex/genesis"
	"github.com/rony4d/go-essex/gossip"
	"github.com/rony4d/go-essex/integration"
	"github.com/rony4d/go-essex/inter"
	"github.com/rony4d/go-essex/node"
	"github.com/rony4d/go-essex/validator"
)

// Config aggregates every subsystem's configuration the launcher needs.
type Config struct {
	Node   NodeConfig
	Essex  EssexConfig
	Ledger LedgerConfig
	Gossip GossipConfig
	Demo   DemoConfig
}

type NodeConfig struct {
	DataDir string
	Name    string
	// Preset is informational: the name of the preset merged at startup.
	Preset  string
	P2P     P2PConfig
	Logging LoggingConfig
}

type P2PConfig struct {
	ListenAddr  string
	ListenPort  int
	MaxPeers    int
	NoDiscovery bool
	Bootnodes   []string
	// NodeKey is a hex encoded secp256k1 key. Empty means a fresh key per run.
	NodeKey string
}

type LoggingConfig struct {
	Verbosity int
	Format    string
	Color     bool
	SentryDSN string
}

type EssexConfig struct {
	NetworkName string
	// NetworkID overrides the id of the named network when non-zero.
	NetworkID uint64
	FakeNet   bool
}

// LedgerConfig overrides network rules locally. Zero values keep the rule.
type LedgerConfig struct {
	Capacity        int
	MinStake        uint64
	FreshnessWindow string
	// Journal is the journal file, relative to DataDir. Empty disables it.
	Journal        string
	SelfCheck      bool
	GenesisPayload []string
}

type GossipConfig struct {
	Topic         string
	SeenCacheSize int
	// SeenTTL is a Go duration; a repeated message is delivered again after it.
	SeenTTL      string
	InboundRate  float64
	InboundBurst int
}

// DemoConfig describes the validator identity the node mints with.
type DemoConfig struct {
	Message string
	Stake   uint64
	// KeyIndex selects a deterministic key; negative means a fresh key.
	KeyIndex int
}

// MakeAllConfigs merges defaults, the optional preset, the optional config
// file and finally CLI flag overrides into a single config.
func MakeAllConfigs(ctx *cli.Context) (Config, error) {
	cfg := DefaultConfig()

	if name := ctx.GlobalString("preset"); name != "" {
		p, err := integration.GetPresetByName(name)
		if err != nil {
			return cfg, err
		}
		cfg.applyPreset(p)
	}

	if file := ctx.GlobalString("config"); file != "" {
		if err := loadConfigFile(file, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to load config file %s: %w", file, err)
		}
	}

	applyCLIOverrides(ctx, &cfg)
	cfg.Node.DataDir = resolvePath(cfg.Node.DataDir)
	return cfg, nil
}

func (c *Config) applyPreset(p integration.PresetConfig) {
	current := integration.PresetConfig{
		Capacity:      c.Ledger.Capacity,
		MaxPeers:      c.Node.P2P.MaxPeers,
		SeenCacheSize: c.Gossip.SeenCacheSize,
		InboundRate:   c.Gossip.InboundRate,
		Journal:       c.Ledger.Journal != "",
		SelfCheck:     c.Ledger.SelfCheck,
	}
	integration.ApplyPreset(&current, p)

	c.Node.Preset = current.Name
	c.Ledger.Capacity = current.Capacity
	c.Node.P2P.MaxPeers = current.MaxPeers
	c.Gossip.SeenCacheSize = current.SeenCacheSize
	c.Gossip.InboundRate = current.InboundRate
	c.Ledger.SelfCheck = current.SelfCheck
	switch {
	case !current.Journal:
		c.Ledger.Journal = ""
	case c.Ledger.Journal == "":
		c.Ledger.Journal = DefaultJournalFile
	}
}

func applyCLIOverrides(ctx *cli.Context, cfg *Config) {
	if ctx.GlobalIsSet("datadir") {
		cfg.Node.DataDir = ctx.GlobalString("datadir")
	}
	if ctx.GlobalIsSet("identity") {
		cfg.Node.Name = ctx.GlobalString("identity")
	}

	if ctx.GlobalIsSet("log.format") {
		cfg.Node.Logging.Format = ctx.GlobalString("log.format")
	}
	if ctx.GlobalIsSet("log.verbosity") {
		cfg.Node.Logging.Verbosity = ctx.GlobalInt("log.verbosity")
	}
	if ctx.GlobalIsSet("log.color") {
		cfg.Node.Logging.Color = ctx.GlobalBool("log.color")
	}
	if ctx.GlobalIsSet("log.sentry") {
		cfg.Node.Logging.SentryDSN = ctx.GlobalString("log.sentry")
	}

	if ctx.GlobalIsSet("network") {
		cfg.Essex.NetworkName = ctx.GlobalString("network")
	}
	if ctx.GlobalBool("fakenet") {
		cfg.Essex.FakeNet = true
	}
	if ctx.GlobalIsSet("port") {
		cfg.Node.P2P.ListenPort = ctx.GlobalInt("port")
	}
	if ctx.GlobalIsSet("maxpeers") {
		cfg.Node.P2P.MaxPeers = ctx.GlobalInt("maxpeers")
	}
	if ctx.GlobalIsSet("bootnodes") {
		cfg.Node.P2P.Bootnodes = splitCSV(ctx.GlobalString("bootnodes"))
	}
	if ctx.GlobalIsSet("nodiscover") {
		cfg.Node.P2P.NoDiscovery = ctx.GlobalBool("nodiscover")
	}
	if ctx.GlobalIsSet("nodekey") {
		cfg.Node.P2P.NodeKey = ctx.GlobalString("nodekey")
	}

	if ctx.GlobalIsSet("gossip.topic") {
		cfg.Gossip.Topic = ctx.GlobalString("gossip.topic")
	}
	if ctx.GlobalIsSet("gossip.seencache") {
		cfg.Gossip.SeenCacheSize = ctx.GlobalInt("gossip.seencache")
	}
	if ctx.GlobalIsSet("gossip.seenttl") {
		cfg.Gossip.SeenTTL = ctx.GlobalString("gossip.seenttl")
	}
	if ctx.GlobalIsSet("gossip.rate") {
		cfg.Gossip.InboundRate = ctx.GlobalFloat64("gossip.rate")
	}
	if ctx.GlobalIsSet("gossip.burst") {
		cfg.Gossip.InboundBurst = ctx.GlobalInt("gossip.burst")
	}

	if ctx.GlobalIsSet("ledger.capacity") {
		cfg.Ledger.Capacity = ctx.GlobalInt("ledger.capacity")
	}
	if ctx.GlobalIsSet("ledger.minstake") {
		cfg.Ledger.MinStake = ctx.GlobalUint64("ledger.minstake")
	}
	if ctx.GlobalIsSet("ledger.freshness") {
		cfg.Ledger.FreshnessWindow = ctx.GlobalString("ledger.freshness")
	}
	if ctx.GlobalIsSet("ledger.journal") {
		cfg.Ledger.Journal = ctx.GlobalString("ledger.journal")
	}
	if ctx.GlobalIsSet("ledger.selfcheck") {
		cfg.Ledger.SelfCheck = ctx.GlobalBoolT("ledger.selfcheck")
	}
	if ctx.GlobalIsSet("genesis.payload") {
		cfg.Ledger.GenesisPayload = splitCSV(ctx.GlobalString("genesis.payload"))
	}

	if ctx.GlobalIsSet("demo.message") {
		cfg.Demo.Message = ctx.GlobalString("demo.message")
	}
	if ctx.GlobalIsSet("demo.stake") {
		cfg.Demo.Stake = ctx.GlobalUint64("demo.stake")
	}
	if ctx.GlobalIsSet("demo.key") {
		cfg.Demo.KeyIndex = ctx.GlobalInt("demo.key")
	}
}

// Rules resolves the network rules with local ledger overrides applied.
func (c Config) Rules() (essex.Rules, error) {
	name := c.Essex.NetworkName
	if c.Essex.FakeNet {
		name = "fake"
	}
	rules, err := essex.RulesByName(name)
	if err != nil {
		return rules, err
	}
	if c.Essex.NetworkID != 0 {
		rules.NetworkID = c.Essex.NetworkID
	}
	if c.Ledger.Capacity > 0 {
		rules.Blocks.Capacity = c.Ledger.Capacity
	}
	if c.Ledger.MinStake > 0 {
		if c.Ledger.MinStake > math.MaxUint32 {
			return rules, fmt.Errorf("min stake %d out of range", c.Ledger.MinStake)
		}
		rules.Blocks.MinStake = pos.Weight(c.Ledger.MinStake)
	}
	if c.Ledger.FreshnessWindow != "" {
		d, err := time.ParseDuration(c.Ledger.FreshnessWindow)
		if err != nil {
			return rules, fmt.Errorf("freshness window: %w", err)
		}
		if d <= 0 {
			return rules, essex.ErrZeroFreshness
		}
		rules.Blocks.FreshnessWindow = inter.Timestamp(d)
	}
	return rules, rules.Validate()
}

func (c Config) Genesis(rules essex.Rules) genesis.Genesis {
	g := genesis.Default(rules)
	if len(c.Ledger.GenesisPayload) != 0 {
		g.Payload = c.Ledger.GenesisPayload
	}
	return g
}

func (c Config) nodeConfig() node.Config {
	cfg := node.DefaultConfig()
	cfg.Topic = c.Gossip.Topic
	cfg.DemoMessage = c.Demo.Message
	return cfg
}

func (c Config) gossipConfig() (gossip.Config, error) {
	cfg := gossip.DefaultConfig()
	if c.Gossip.SeenTTL != "" {
		ttl, err := time.ParseDuration(c.Gossip.SeenTTL)
		if err != nil {
			return cfg, fmt.Errorf("seen ttl: %w", err)
		}
		if ttl <= 0 {
			return cfg, fmt.Errorf("seen ttl %s must be positive", ttl)
		}
		cfg.SeenTTL = ttl
	}
	cfg.Name = c.Node.Name
	cfg.ListenAddr = net.JoinHostPort(c.Node.P2P.ListenAddr, strconv.Itoa(c.Node.P2P.ListenPort))
	cfg.MaxPeers = c.Node.P2P.MaxPeers
	cfg.NoDiscovery = c.Node.P2P.NoDiscovery
	cfg.Bootnodes = c.Node.P2P.Bootnodes
	cfg.SeenCacheSize = c.Gossip.SeenCacheSize
	cfg.InboundRate = c.Gossip.InboundRate
	cfg.InboundBurst = c.Gossip.InboundBurst
	return cfg, nil
}

// NodeKey returns the configured p2p key or a fresh one.
func (c Config) NodeKey() (*ecdsa.PrivateKey, error) {
	if c.Node.P2P.NodeKey == "" {
		return crypto.GenerateKey()
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(c.Node.P2P.NodeKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("node key: %w", err)
	}
	return key, nil
}

// Identity builds the demo validator identity.
func (c Config) Identity() (*validator.Identity, error) {
	if c.Demo.Stake > math.MaxUint32 {
		return nil, fmt.Errorf("demo stake %d out of range", c.Demo.Stake)
	}
	stake := pos.Weight(c.Demo.Stake)
	msg := []byte(c.Demo.Message)
	if c.Demo.KeyIndex < 0 {
		return validator.Create(msg, stake)
	}
	return validator.FromKey(validator.FakeKey(c.Demo.KeyIndex), msg, stake)
}

// JournalPath is the absolute journal location, or empty when journaling is
// off.
func (c Config) JournalPath() string {
	if c.Ledger.Journal == "" {
		return ""
	}
	if filepath.IsAbs(c.Ledger.Journal) {
		return c.Ledger.Journal
	}
	return filepath.Join(c.Node.DataDir, c.Ledger.Journal)
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create datadir %s: %w", dir, err)
	}
	return nil
}

func resolvePath(p string) string {
	if strings.HasPrefix(p, "~") {
		return filepath.Join(GuessHomeDir(), strings.TrimPrefix(p, "~"))
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GuessWorkDir(), p)
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func GuessWorkDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func GuessHomeDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return dir
	}
	return "."
}
