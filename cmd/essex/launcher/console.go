package launcher

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-essex/gossip"
	"github.com/rony4d/go-essex/inter"
)

// consoleTarget is what operator commands act on.
type consoleTarget interface {
	CreateChain() (*inter.Block, error)
	SubmitTx(amount uint64) (*inter.Transaction, error)
	Broadcast(cmd string) error
	LogChain()
	LogPool()
}

// runConsole reads operator commands line by line until in is exhausted or
// ctx is done. Local commands:
//
//	mint         mint and append a block with the node's identity
//	tx <amount>  pool and publish a transaction
//	chain        log the ledger
//	pool         log the transaction pool
//
// Any other line is published to peers as a command.
func runConsole(ctx context.Context, in io.Reader, t consoleTarget, log logrus.FieldLogger) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		handleLine(t, scanner.Text(), log)
	}
	return scanner.Err()
}

func handleLine(t consoleTarget, line string, log logrus.FieldLogger) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	switch fields[0] {
	case "mint":
		b, err := t.CreateChain()
		if err != nil {
			log.WithError(err).Warn("Mint failed")
			return
		}
		log.WithField("id", b.ID.String()).Info("Minted block")
	case "tx":
		if len(fields) != 2 {
			log.Warn("Usage: tx <amount>")
			return
		}
		amount, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			log.WithError(err).Warn("Bad amount")
			return
		}
		if _, err := t.SubmitTx(amount); err != nil {
			log.WithError(err).Warn("Transaction failed")
		}
	case "chain":
		t.LogChain()
	case "pool":
		t.LogPool()
	default:
		cmd := strings.TrimSpace(line)
		err := t.Broadcast(cmd)
		switch {
		case errors.Is(err, gossip.ErrNoPeers):
			log.WithField("command", cmd).Warn("No peers to publish to")
		case err != nil:
			log.WithError(err).Warn("Command publish failed")
		default:
			log.WithField("command", cmd).Info("Command published")
		}
	}
}
