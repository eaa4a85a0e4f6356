package launcher

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-essex/chain"
	"github.com/rony4d/go-essex/gossip"
	"github.com/rony4d/go-essex/inter"
)

type fakeTarget struct {
	calls      []string
	amounts    []uint64
	commands   []string
	mintErr    error
	publishErr error
}

func (f *fakeTarget) CreateChain() (*inter.Block, error) {
	f.calls = append(f.calls, "mint")
	if f.mintErr != nil {
		return nil, f.mintErr
	}
	return &inter.Block{Payload: []string{"hello"}, Valid: true}, nil
}

func (f *fakeTarget) SubmitTx(amount uint64) (*inter.Transaction, error) {
	f.calls = append(f.calls, "tx")
	f.amounts = append(f.amounts, amount)
	return &inter.Transaction{Amount: amount}, nil
}

func (f *fakeTarget) Broadcast(cmd string) error {
	f.calls = append(f.calls, "broadcast")
	f.commands = append(f.commands, cmd)
	return f.publishErr
}

func (f *fakeTarget) LogChain() { f.calls = append(f.calls, "chain") }
func (f *fakeTarget) LogPool()  { f.calls = append(f.calls, "pool") }

func TestRunConsole(t *testing.T) {
	require := require.New(t)

	target := &fakeTarget{}
	log, hook := test.NewNullLogger()
	in := strings.NewReader("mint\n\ntx 25\ntx\ntx lots\nchain\npool\n  createchain  \n")
	require.NoError(runConsole(context.Background(), in, target, log))

	require.Equal([]string{"mint", "tx", "chain", "pool", "broadcast"}, target.calls)
	require.Equal([]uint64{25}, target.amounts)
	require.Equal([]string{"createchain"}, target.commands)

	var msgs []string
	for _, e := range hook.AllEntries() {
		msgs = append(msgs, e.Message)
	}
	require.Equal([]string{"Minted block", "Usage: tx <amount>", "Bad amount", "Command published"}, msgs)
}

func TestRunConsole_cancelled(t *testing.T) {
	target := &fakeTarget{}
	log, _ := test.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, runConsole(ctx, strings.NewReader("mint\n"), target, log))
	require.Empty(t, target.calls)
}

func TestHandleLine_failures(t *testing.T) {
	log, hook := test.NewNullLogger()

	handleLine(&fakeTarget{mintErr: chain.ErrCapacityExceeded}, "mint", log)
	require.Equal(t, "Mint failed", hook.LastEntry().Message)
	require.ErrorIs(t, hook.LastEntry().Data["error"].(error), chain.ErrCapacityExceeded)

	handleLine(&fakeTarget{publishErr: gossip.ErrNoPeers}, "hello peers", log)
	require.Equal(t, "No peers to publish to", hook.LastEntry().Message)
	require.Equal(t, "hello peers", hook.LastEntry().Data["command"])

	handleLine(&fakeTarget{publishErr: errors.New("closed pipe")}, "x", log)
	require.Equal(t, "Command publish failed", hook.LastEntry().Message)
}
