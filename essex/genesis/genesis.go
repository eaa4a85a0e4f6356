// Package genesis builds the first block of a ledger.
package genesis

import (
	"github.com/rony4d/go-essex/essex"
	"github.com/rony4d/go-essex/idgen"
	"github.com/rony4d/go-essex/inter"
)

// DefaultPayload is carried by genesis so that it passes validation and can
// be extended.
var DefaultPayload = []string{"genesis"}

// Genesis describes the first block.
type Genesis struct {
	Rules essex.Rules
	// Time is the genesis creation time. Zero means the moment the block is
	// built, which keeps a fresh ledger extendable within the freshness window.
	Time    inter.Timestamp
	Payload []string
}

// Default returns the genesis for rules with the default payload.
func Default(rules essex.Rules) Genesis {
	return Genesis{
		Rules:   rules,
		Payload: DefaultPayload,
	}
}

// Block builds the genesis block. It links to itself and is valid.
func (g Genesis) Block(now inter.Timestamp) *inter.Block {
	created := g.Time
	if created == 0 {
		created = now
	}
	payload := g.Payload
	if len(payload) == 0 {
		payload = DefaultPayload
	}
	b := &inter.Block{
		Payload:   append([]string(nil), payload...),
		Valid:     true,
		CreatedAt: created,
	}
	b.ID = idgen.ContentIDs{}.BlockID(b)
	b.ParentID = b.ID
	return b
}

// Sentinel is what an empty ledger reports as its tip. It is not valid, so
// nothing can be minted on top of it.
func Sentinel() *inter.Block {
	return &inter.Block{}
}
