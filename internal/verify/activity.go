package verify

import (
	"context"
	"time"

	"github.com/compose-network/orbit-audit/internal/chain"
	"github.com/compose-network/orbit-audit/internal/contracts"
	"github.com/ethereum/go-ethereum/common"
)

// blockTimes are the block times of parent chains orbit rollups settle to.
var blockTimes = map[uint64]time.Duration{
	1:        12 * time.Second,
	17000:    12 * time.Second,
	11155111: 12 * time.Second,
	8453:     2 * time.Second,
	84532:    2 * time.Second,
	42161:    250 * time.Millisecond,
	42170:    250 * time.Millisecond,
	421614:   250 * time.Millisecond,
}

// activityWindowBlocks converts the activity window into a block count for a
// chain. Unknown chains use the fallback. When log queries are not split into
// chunks the window is capped at the fallback so that a single eth_getLogs
// call stays within what public providers accept.
func activityWindowBlocks(chainID uint64, window time.Duration, fallback, maxBlockRange uint64) uint64 {
	blockTime, ok := blockTimes[chainID]
	if !ok || window <= 0 {
		return fallback
	}

	blocks := uint64(window / blockTime)
	if maxBlockRange == 0 && fallback > 0 && blocks > fallback {
		return fallback
	}
	return blocks
}

// checkActivity checks that batches were posted and assertions were created
// within the activity window.
func (v *Verifier) checkActivity(ctx context.Context, r *run) error {
	parent := v.chains.Parent

	chainID, err := parent.ChainID(ctx)
	if err != nil {
		return err
	}
	head, err := parent.GetBlockNumber(ctx)
	if err != nil {
		return err
	}

	window := activityWindowBlocks(chainID.Uint64(), v.cfg.ActivityWindow, v.cfg.FallbackActivityBlocks, parent.MaxBlockRange())
	var from uint64
	if window > 0 && head >= window {
		from = head - window + 1
	}

	batches, err := v.hasLogs(ctx, r.core.SequencerInbox, contracts.TopicSequencerBatchDelivered, from, head)
	if err != nil {
		return err
	}
	if !batches {
		r.warnings.add("no batches posted to SequencerInbox %s in the last %d blocks", r.core.SequencerInbox.Hex(), window)
	}

	assertions, err := v.hasLogs(ctx, r.rollup, contracts.TopicNodeCreated, from, head)
	if err != nil {
		return err
	}
	if !assertions {
		assertions, err = v.hasLogs(ctx, r.rollup, contracts.TopicAssertionCreated, from, head)
		if err != nil {
			return err
		}
	}
	if !assertions {
		r.warnings.add("no assertions created on Rollup %s in the last %d blocks", r.rollup.Hex(), window)
	}
	return nil
}

func (v *Verifier) hasLogs(ctx context.Context, address common.Address, topic common.Hash, from, to uint64) (bool, error) {
	logs, err := v.chains.Parent.GetLogs(ctx, chain.LogQuery{
		Address:   address,
		Topic0:    topic,
		FromBlock: &from,
		ToBlock:   &to,
	})
	if err != nil {
		return false, err
	}
	return len(logs) > 0, nil
}
