package rollup

import (
	"context"
	"fmt"
	"math/big"

	"github.com/compose-network/orbit-audit/internal/contracts"
	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"
)

const lookupCacheSize = 1024

// AddressReader is the part of chain.Reader used to look up a rollup from its
// sequencer inbox.
type AddressReader interface {
	ContractReader
	ChainID(ctx context.Context) (*big.Int, error)
}

// rollupBySequencerInbox lives for the whole process. Entries are derived
// from immutable chain state, so concurrent writers always store the same
// value.
var rollupBySequencerInbox = mustNewCache()

func mustNewCache() *lru.Cache[string, common.Address] {
	cache, err := lru.New[string, common.Address](lookupCacheSize)
	if err != nil {
		panic(err)
	}
	return cache
}

// AddressFromSequencerInbox returns the rollup a sequencer inbox reports.
func AddressFromSequencerInbox(ctx context.Context, reader AddressReader, sequencerInbox common.Address) (common.Address, error) {
	chainID, err := reader.ChainID(ctx)
	if err != nil {
		return common.Address{}, err
	}

	key := fmt.Sprintf("%s:%s", chainID, sequencerInbox.Hex())
	if rollup, ok := rollupBySequencerInbox.Get(key); ok {
		return rollup, nil
	}

	rollup, err := reader.ReadAddress(ctx, sequencerInbox, contracts.FuncRollup)
	if err != nil {
		return common.Address{}, err
	}

	rollupBySequencerInbox.Add(key, rollup)
	return rollup, nil
}
