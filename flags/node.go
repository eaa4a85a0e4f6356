package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// NodeFlags holds knobs specific to the local node instance: its name and the
// demo validator identity it mints with.

func NodeFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "identity",
			Usage: "Custom node name to advertise over the network",
		},
		cli.StringFlag{
			Name:  "demo.message",
			Usage: "Message the demo validator signs to authorize minting",
			Value: "hello",
		},
		cli.Uint64Flag{
			Name:  "demo.stake",
			Usage: "Stake of the demo validator",
			Value: 50,
		},
		cli.IntFlag{
			Name:  "demo.key",
			Usage: "Index of the deterministic demo validator key (negative for a fresh key)",
			Value: -1,
		},
	}
}
