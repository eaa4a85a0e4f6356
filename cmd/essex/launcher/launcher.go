package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-essex/cryptocheck"
	"github.com/rony4d/go-essex/flags"
	"github.com/rony4d/go-essex/gossip"
	"github.com/rony4d/go-essex/inter"
	"github.com/rony4d/go-essex/journal"
	"github.com/rony4d/go-essex/node"
)

var app = newApp()

func newApp() *cli.App {
	app := flags.NewApp("the essex ledger node")
	app.Action = runNode
	app.Commands = []cli.Command{
		{
			Name:   "dumpconfig",
			Usage:  "Show the effective configuration as TOML",
			Action: dumpConfig,
		},
		{
			Name:      "journal",
			Usage:     "Print the blocks recorded in a journal file",
			ArgsUsage: "<file>",
			Action:    printJournalCmd,
		},
	}
	return app
}

// Launch parses args and runs the selected command.
func Launch(args []string) error {
	return app.Run(args)
}

func runNode(ctx *cli.Context) error {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	log, err := setupLogging(cfg.Node.Logging, os.Stderr)
	if err != nil {
		return err
	}

	sigctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return start(sigctx, cfg, os.Stdin, log)
}

// start assembles a node from cfg and runs it until ctx is done. Lines read
// from console are operator commands; a nil console disables them.
func start(ctx context.Context, cfg Config, console io.Reader, log logrus.FieldLogger) error {
	rules, err := cfg.Rules()
	if err != nil {
		return err
	}
	if err := ensureDir(cfg.Node.DataDir); err != nil {
		return err
	}
	id, err := cfg.Identity()
	if err != nil {
		return err
	}
	key, err := cfg.NodeKey()
	if err != nil {
		return err
	}
	gcfg, err := cfg.gossipConfig()
	if err != nil {
		return err
	}
	svc, err := gossip.New(gcfg, key, log)
	if err != nil {
		return err
	}

	opts := []node.Option{node.WithLogger(log)}
	if path := cfg.JournalPath(); path != "" {
		j, err := journal.Open(path)
		if err != nil {
			return err
		}
		defer func() {
			if err := j.Close(); err != nil {
				log.WithError(err).Warn("Journal close failed")
			}
		}()
		opts = append(opts, node.WithJournal(j))
	}
	if cfg.Ledger.SelfCheck {
		c, err := cryptocheck.New()
		if err != nil {
			return err
		}
		opts = append(opts, node.WithSelfCheck(c))
	}

	n, err := node.New(cfg.nodeConfig(), cfg.Genesis(rules), id, svc, opts...)
	if err != nil {
		return err
	}

	if err := svc.Start(); err != nil {
		return err
	}
	defer svc.Stop()

	log.WithFields(logrus.Fields{
		"self":      svc.Self().TerminalString(),
		"network":   rules.Name,
		"validator": id.PubKey.String(),
		"stake":     id.Stake,
		"preset":    cfg.Node.Preset,
	}).Info("Node started")

	go logPeerEvents(svc.PeerEvents(), log)
	if console != nil {
		go func() {
			if err := runConsole(ctx, console, n, log); err != nil {
				log.WithError(err).Warn("Console closed")
			}
		}()
	}

	err = n.Run(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	log.Info("Node stopped")
	return err
}

func logPeerEvents(events <-chan gossip.PeerEvent, log logrus.FieldLogger) {
	for ev := range events {
		log.WithFields(logrus.Fields{
			"peer": ev.Peer.TerminalString(),
			"name": ev.Name,
		}).Info("Peer " + strings.ToLower(ev.Type.String()))
	}
}

func dumpConfig(ctx *cli.Context) error {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	return writeConfig(ctx.App.Writer, &cfg)
}

func printJournalCmd(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("usage: journal <file>")
	}
	return printJournal(ctx.App.Writer, ctx.Args().First())
}

// printJournal writes one line per journaled block: height, journal time,
// id, parent id and payload.
func printJournal(w io.Writer, path string) error {
	height := 0
	return journal.Read(path, func(at inter.Timestamp, b *inter.Block) error {
		_, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			height, at, b.ID.String(), b.ParentID.String(), strings.Join(b.Payload, ","))
		height++
		return err
	})
}
