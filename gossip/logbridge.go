package gossip

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/sirupsen/logrus"
)

// newLogBridge returns a go-ethereum logger that forwards p2p server records
// to out. Crit maps to error and trace to debug.
func newLogBridge(out logrus.FieldLogger) log.Logger {
	l := log.New()
	l.SetHandler(log.FuncHandler(func(r *log.Record) error {
		fields := logrus.Fields{"module": "p2p"}
		for i := 0; i+1 < len(r.Ctx); i += 2 {
			fields[fmt.Sprint(r.Ctx[i])] = r.Ctx[i+1]
		}
		entry := out.WithFields(fields)
		switch r.Lvl {
		case log.LvlCrit, log.LvlError:
			entry.Error(r.Msg)
		case log.LvlWarn:
			entry.Warn(r.Msg)
		case log.LvlInfo:
			entry.Info(r.Msg)
		default:
			entry.Debug(r.Msg)
		}
		return nil
	}))
	return l
}
