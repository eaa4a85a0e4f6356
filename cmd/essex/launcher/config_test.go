package launcher

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Fantom-foundation/lachesis-base/inter/pos"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-essex/essex"
	"github.com/rony4d/go-essex/flags"
	"github.com/rony4d/go-essex/inter"
	"github.com/rony4d/go-essex/validator"
)

// runConfigFromArgs runs MakeAllConfigs with a synthetic CLI context.
func runConfigFromArgs(t *testing.T, args ...string) (Config, error) {
	t.Helper()

	app := cli.NewApp()
	app.HideHelp = true
	app.HideVersion = true
	app.Flags = flags.AllFlags()

	var (
		got    Config
		cfgErr error
	)
	app.Action = func(c *cli.Context) error {
		got, cfgErr = MakeAllConfigs(c)
		return nil
	}
	require.NoError(t, app.Run(append([]string{"essex"}, args...)))
	return got, cfgErr
}

func mustConfig(t *testing.T, args ...string) Config {
	t.Helper()
	cfg, err := runConfigFromArgs(t, args...)
	require.NoError(t, err)
	return cfg
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestMakeAllConfigs_defaults(t *testing.T) {
	require := require.New(t)

	cfg := mustConfig(t)
	def := DefaultConfig()
	require.Equal(def.Node.DataDir, cfg.Node.DataDir)
	require.Equal("default", cfg.Node.Preset)
	require.Equal(DefaultJournalFile, cfg.Ledger.Journal)
	require.True(cfg.Ledger.SelfCheck)
	require.Equal("essex", cfg.Gossip.Topic)
	require.Equal("hello", cfg.Demo.Message)
	require.EqualValues(DefaultDemoStake, cfg.Demo.Stake)
	require.Equal(-1, cfg.Demo.KeyIndex)

	rules, err := cfg.Rules()
	require.NoError(err)
	require.Equal(essex.MainNetRules(), rules)
}

func TestMakeAllConfigs_flagOverrides(t *testing.T) {
	dataDir := t.TempDir()

	tests := []struct {
		name string
		args []string
		want func(t *testing.T, cfg Config)
	}{
		{
			name: "datadir and identity",
			args: []string{"--datadir", dataDir, "--identity", "ugo-node"},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, dataDir, cfg.Node.DataDir)
				require.Equal(t, "ugo-node", cfg.Node.Name)
			},
		},
		{
			name: "relative datadir",
			args: []string{"--datadir", "node-data"},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, filepath.Join(GuessWorkDir(), "node-data"), cfg.Node.DataDir)
			},
		},
		{
			name: "p2p",
			args: []string{"--port", "6001", "--maxpeers", "3", "--nodiscover",
				"--bootnodes", "enode://a@127.0.0.1:1, enode://b@127.0.0.1:2"},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, 6001, cfg.Node.P2P.ListenPort)
				require.Equal(t, 3, cfg.Node.P2P.MaxPeers)
				require.True(t, cfg.Node.P2P.NoDiscovery)
				require.Equal(t, []string{"enode://a@127.0.0.1:1", "enode://b@127.0.0.1:2"}, cfg.Node.P2P.Bootnodes)
			},
		},
		{
			name: "gossip",
			args: []string{"--gossip.topic", "blocks", "--gossip.seencache", "16", "--gossip.seenttl", "30s",
				"--gossip.rate", "2.5", "--gossip.burst", "4"},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, "30s", cfg.Gossip.SeenTTL)
				require.Equal(t, "blocks", cfg.Gossip.Topic)
				require.Equal(t, 16, cfg.Gossip.SeenCacheSize)
				require.Equal(t, 2.5, cfg.Gossip.InboundRate)
				require.Equal(t, 4, cfg.Gossip.InboundBurst)
			},
		},
		{
			name: "ledger",
			args: []string{"--ledger.capacity", "5", "--ledger.minstake", "40", "--ledger.freshness", "10m",
				"--ledger.journal", "", "--ledger.selfcheck=false", "--genesis.payload", "a,b"},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, 5, cfg.Ledger.Capacity)
				require.EqualValues(t, 40, cfg.Ledger.MinStake)
				require.Equal(t, "10m", cfg.Ledger.FreshnessWindow)
				require.Empty(t, cfg.Ledger.Journal)
				require.False(t, cfg.Ledger.SelfCheck)
				require.Equal(t, []string{"a", "b"}, cfg.Ledger.GenesisPayload)
			},
		},
		{
			name: "demo identity",
			args: []string{"--demo.message", "hi", "--demo.stake", "10", "--demo.key", "2"},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, DemoConfig{Message: "hi", Stake: 10, KeyIndex: 2}, cfg.Demo)
			},
		},
		{
			name: "logging",
			args: []string{"--log.format", "json", "--log.verbosity", "5", "--log.sentry", "https://k:s@sentry.example.com/1"},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, "json", cfg.Node.Logging.Format)
				require.Equal(t, 5, cfg.Node.Logging.Verbosity)
				require.Equal(t, "https://k:s@sentry.example.com/1", cfg.Node.Logging.SentryDSN)
			},
		},
		{
			name: "fakenet",
			args: []string{"--fakenet"},
			want: func(t *testing.T, cfg Config) {
				rules, err := cfg.Rules()
				require.NoError(t, err)
				require.Equal(t, essex.FakeNetRules(), rules)
			},
		},
		{
			name: "network",
			args: []string{"--network", "test"},
			want: func(t *testing.T, cfg Config) {
				rules, err := cfg.Rules()
				require.NoError(t, err)
				require.Equal(t, essex.TestNetworkID, rules.NetworkID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want(t, mustConfig(t, tt.args...))
		})
	}
}

func TestMakeAllConfigs_presets(t *testing.T) {
	t.Run("lite", func(t *testing.T) {
		cfg := mustConfig(t, "--preset", "lite")
		require.Equal(t, "lite", cfg.Node.Preset)
		require.Equal(t, 8, cfg.Node.P2P.MaxPeers)
		require.Empty(t, cfg.Ledger.Journal)
		require.False(t, cfg.Ledger.SelfCheck)
	})

	t.Run("archive", func(t *testing.T) {
		cfg := mustConfig(t, "--preset", "archive")
		require.Equal(t, 1000, cfg.Ledger.Capacity)
		require.Equal(t, DefaultJournalFile, cfg.Ledger.Journal)
	})

	t.Run("flags win", func(t *testing.T) {
		cfg := mustConfig(t, "--preset", "lite", "--maxpeers", "2", "--ledger.journal", "j.rlp")
		require.Equal(t, 2, cfg.Node.P2P.MaxPeers)
		require.Equal(t, "j.rlp", cfg.Ledger.Journal)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := runConfigFromArgs(t, "--preset", "turbo")
		require.Error(t, err)
	})
}

func TestMakeAllConfigs_file(t *testing.T) {
	path := writeFile(t, "essex.toml", `
[Node]
Name = "from-file"

[Node.P2P]
MaxPeers = 3

[Ledger]
Capacity = 7
`)

	t.Run("applied", func(t *testing.T) {
		cfg := mustConfig(t, "--config", path)
		require.Equal(t, "from-file", cfg.Node.Name)
		require.Equal(t, 3, cfg.Node.P2P.MaxPeers)
		require.Equal(t, 7, cfg.Ledger.Capacity)
	})

	t.Run("flags win", func(t *testing.T) {
		cfg := mustConfig(t, "--config", path, "--ledger.capacity", "9")
		require.Equal(t, 9, cfg.Ledger.Capacity)
		require.Equal(t, "from-file", cfg.Node.Name)
	})

	t.Run("unknown field", func(t *testing.T) {
		bad := writeFile(t, "bad.toml", "[Node]\nBogus = 1\n")
		_, err := runConfigFromArgs(t, "--config", bad)
		require.Error(t, err)
		require.Contains(t, err.Error(), "Bogus")
	})

	t.Run("missing", func(t *testing.T) {
		_, err := runConfigFromArgs(t, "--config", filepath.Join(t.TempDir(), "nope.toml"))
		require.Error(t, err)
	})
}

func TestWriteConfig_loadsBack(t *testing.T) {
	require := require.New(t)

	cfg := DefaultConfig()
	cfg.Node.Name = "dumped"
	cfg.Essex.FakeNet = true
	cfg.Ledger.FreshnessWindow = "30m"
	cfg.Gossip.InboundRate = 7.5

	var buf bytes.Buffer
	require.NoError(writeConfig(&buf, &cfg))
	path := writeFile(t, "dump.toml", buf.String())

	loaded := DefaultConfig()
	require.NoError(loadConfigFile(path, &loaded))
	require.Equal("dumped", loaded.Node.Name)
	require.True(loaded.Essex.FakeNet)
	require.Equal("30m", loaded.Ledger.FreshnessWindow)
	require.Equal(7.5, loaded.Gossip.InboundRate)
	require.Equal(cfg.Demo, loaded.Demo)
}

func TestConfig_Rules(t *testing.T) {
	t.Run("overrides", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Essex.NetworkID = 77
		cfg.Ledger.Capacity = 3
		cfg.Ledger.MinStake = 12
		cfg.Ledger.FreshnessWindow = "90s"

		rules, err := cfg.Rules()
		require.NoError(t, err)
		require.EqualValues(t, 77, rules.NetworkID)
		require.Equal(t, 3, rules.Blocks.Capacity)
		require.Equal(t, pos.Weight(12), rules.Blocks.MinStake)
		require.Equal(t, inter.Timestamp(90*time.Second), rules.Blocks.FreshnessWindow)
	})

	for name, mod := range map[string]func(*Config){
		"unknown network":    func(c *Config) { c.Essex.NetworkName = "nowhere" },
		"bad freshness":      func(c *Config) { c.Ledger.FreshnessWindow = "soon" },
		"negative freshness": func(c *Config) { c.Ledger.FreshnessWindow = "-1h" },
		"stake overflow":     func(c *Config) { c.Ledger.MinStake = 1 << 40 },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mod(&cfg)
			_, err := cfg.Rules()
			require.Error(t, err)
		})
	}
}

func TestConfig_Genesis(t *testing.T) {
	cfg := DefaultConfig()
	rules := essex.MainNetRules()
	require.Equal(t, []string{"genesis"}, cfg.Genesis(rules).Payload)

	cfg.Ledger.GenesisPayload = []string{"first"}
	g := cfg.Genesis(rules)
	require.Equal(t, []string{"first"}, g.Payload)
	require.Equal(t, rules, g.Rules)
}

func TestConfig_Identity(t *testing.T) {
	require := require.New(t)

	cfg := DefaultConfig()
	cfg.Demo.KeyIndex = 3
	a, err := cfg.Identity()
	require.NoError(err)
	b, err := cfg.Identity()
	require.NoError(err)
	require.Equal(a.PubKey, b.PubKey)
	require.Equal(pos.Weight(DefaultDemoStake), a.Stake)
	require.True(validator.VerifyMessage(a.PubKey, []byte("hello"), a.Signature))

	cfg.Demo.KeyIndex = -1
	c, err := cfg.Identity()
	require.NoError(err)
	require.NotEqual(a.PubKey, c.PubKey)

	cfg.Demo.Stake = 1 << 33
	_, err = cfg.Identity()
	require.Error(err)
}

func TestConfig_NodeKey(t *testing.T) {
	require := require.New(t)

	key := validator.FakeKey(9)
	cfg := DefaultConfig()
	cfg.Node.P2P.NodeKey = "0x" + hex.EncodeToString(crypto.FromECDSA(key))
	got, err := cfg.NodeKey()
	require.NoError(err)
	require.Equal(key.D, got.D)

	cfg.Node.P2P.NodeKey = "zz"
	_, err = cfg.NodeKey()
	require.Error(err)

	cfg.Node.P2P.NodeKey = ""
	fresh, err := cfg.NodeKey()
	require.NoError(err)
	require.NotNil(fresh)
}

func TestConfig_JournalPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Node.DataDir = "/data"
	require.Equal(t, filepath.Join("/data", DefaultJournalFile), cfg.JournalPath())

	cfg.Ledger.Journal = "/var/blocks.rlp"
	require.Equal(t, "/var/blocks.rlp", cfg.JournalPath())

	cfg.Ledger.Journal = ""
	require.Empty(t, cfg.JournalPath())
}

func TestConfig_gossipConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Node.P2P.ListenAddr = "127.0.0.1"
	cfg.Node.P2P.ListenPort = 6000
	cfg.Node.Name = "n1"

	g, err := cfg.gossipConfig()
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:6000", g.ListenAddr)
	require.Equal(t, 2*time.Minute, g.SeenTTL)
	require.Equal(t, "n1", g.Name)
	require.Equal(t, cfg.Gossip.SeenCacheSize, g.SeenCacheSize)
	require.Equal(t, cfg.Gossip.InboundRate, g.InboundRate)
	require.Positive(t, g.SubscriptionBuffer)

	cfg.Gossip.SeenTTL = "45s"
	g, err = cfg.gossipConfig()
	require.NoError(t, err)
	require.Equal(t, 45*time.Second, g.SeenTTL)

	for _, bad := range []string{"soon", "0s", "-1m"} {
		cfg.Gossip.SeenTTL = bad
		_, err = cfg.gossipConfig()
		require.Error(t, err, bad)
	}

	n := cfg.nodeConfig()
	require.Equal(t, cfg.Gossip.Topic, n.Topic)
	require.Equal(t, cfg.Demo.Message, n.DemoMessage)
}

func TestSplitCSV(t *testing.T) {
	require.Nil(t, splitCSV(""))
	require.Equal(t, []string{"a", "b"}, splitCSV(" a, ,b "))
}
