package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// NetworkFlags covers P2P and network selection.

func NetworkFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "network",
			Usage: "Network rules to run with (main|test|fake)",
			Value: "main",
		},
		cli.BoolFlag{
			Name:  "fakenet",
			Usage: "Shorthand for --network=fake",
		},
		cli.IntFlag{
			Name:  "port",
			Usage: "P2P networking port",
			Value: 5050,
		},
		cli.IntFlag{
			Name:  "maxpeers",
			Usage: "Maximum number of peer connections",
			Value: 25,
		},
		cli.StringFlag{
			Name:  "bootnodes",
			Usage: "Comma-separated enode URLs for bootstrap peers",
		},
		cli.BoolFlag{
			Name:  "nodiscover",
			Usage: "Disable the peer discovery mechanism (manual peers only)",
		},
		cli.StringFlag{
			Name:  "nodekey",
			Usage: "Hex encoded P2P node key (a fresh key is generated if empty)",
		},
	}
}

// GossipFlags isolates gossip overlay tuning knobs.
func GossipFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "gossip.topic",
			Usage: "Topic blocks, transactions and commands are published on",
			Value: "essex",
		},
		cli.IntFlag{
			Name:  "gossip.seencache",
			Usage: "Number of message ids remembered for deduplication",
			Value: 4096,
		},
		cli.StringFlag{
			Name:  "gossip.seenttl",
			Usage: "How long a seen message id suppresses repeats (Go duration)",
			Value: "2m",
		},
		cli.Float64Flag{
			Name:  "gossip.rate",
			Usage: "Inbound messages per second accepted from a single peer",
			Value: 50,
		},
		cli.IntFlag{
			Name:  "gossip.burst",
			Usage: "Inbound message burst accepted from a single peer",
			Value: 100,
		},
	}
}

// LedgerFlags controls the local ledger and its side effects.
func LedgerFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "ledger.capacity",
			Usage: "Maximum number of blocks in the ledger, genesis included (0 uses the network rule)",
		},
		cli.Uint64Flag{
			Name:  "ledger.minstake",
			Usage: "Stake a validator must exceed to mint (0 uses the network rule)",
		},
		cli.StringFlag{
			Name:  "ledger.freshness",
			Usage: "Maximum age of a parent block as a Go duration (empty uses the network rule)",
		},
		cli.StringFlag{
			Name:  "ledger.journal",
			Usage: "Journal file for accepted blocks, relative to the datadir (empty disables)",
			Value: "blocks.rlp",
		},
		cli.BoolTFlag{
			Name:  "ledger.selfcheck",
			Usage: "Run the encrypt/decrypt round trip on every minted payload",
		},
		cli.StringFlag{
			Name:  "genesis.payload",
			Usage: "Comma-separated payload of the genesis block",
		},
	}
}
