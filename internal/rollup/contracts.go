package rollup

import (
	"context"

	"github.com/compose-network/orbit-audit/internal/contracts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/lmittmann/w3"
	"golang.org/x/sync/errgroup"
)

// ContractReader is the part of chain.Reader used to read core addresses.
type ContractReader interface {
	ReadAddress(ctx context.Context, to common.Address, fn *w3.Func, args ...any) (common.Address, error)
}

// Contracts are the core contracts a rollup is wired to.
type Contracts struct {
	Rollup           common.Address `json:"rollup" yaml:"rollup"`
	Bridge           common.Address `json:"bridge" yaml:"bridge"`
	Inbox            common.Address `json:"inbox" yaml:"inbox"`
	SequencerInbox   common.Address `json:"sequencerInbox" yaml:"sequencerInbox"`
	Outbox           common.Address `json:"outbox" yaml:"outbox"`
	RollupEventInbox common.Address `json:"rollupEventInbox" yaml:"rollupEventInbox"`
	ChallengeManager common.Address `json:"challengeManager" yaml:"challengeManager"`
}

// Fetch reads the core contract addresses from the rollup concurrently.
func Fetch(ctx context.Context, reader ContractReader, rollup common.Address) (Contracts, error) {
	c := Contracts{Rollup: rollup}

	reads := []struct {
		fn  *w3.Func
		dst *common.Address
	}{
		{contracts.FuncBridge, &c.Bridge},
		{contracts.FuncInbox, &c.Inbox},
		{contracts.FuncSequencerInbox, &c.SequencerInbox},
		{contracts.FuncOutbox, &c.Outbox},
		{contracts.FuncRollupEventInbox, &c.RollupEventInbox},
		{contracts.FuncChallengeManager, &c.ChallengeManager},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, read := range reads {
		g.Go(func() error {
			addr, err := reader.ReadAddress(gctx, rollup, read.fn)
			if err != nil {
				return err
			}
			*read.dst = addr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Contracts{}, err
	}

	return c, nil
}
