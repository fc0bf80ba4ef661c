package batchposter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/compose-network/orbit-audit/internal/chain"
	"github.com/compose-network/orbit-audit/internal/contracts"
	"github.com/compose-network/orbit-audit/internal/logger"
	"github.com/compose-network/orbit-audit/internal/replay"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/lmittmann/w3"
	"golang.org/x/sync/errgroup"
)

// IsBatchPosterRole is the synthetic role under which batch poster changes
// are replayed.
var IsBatchPosterRole = crypto.Keccak256Hash([]byte("IS_BATCH_POSTER"))

// liveReadConcurrency bounds the concurrent isBatchPoster reads.
const liveReadConcurrency = 8

// Reader is the part of chain.Reader used by the reconciler.
type Reader interface {
	GetLogs(ctx context.Context, q chain.LogQuery) ([]types.Log, error)
	GetTransaction(ctx context.Context, hash common.Hash) (*types.Transaction, error)
	ReadContract(ctx context.Context, to common.Address, fn *w3.Func, args []any, returns ...any) error
}

// State is the reconstructed batch poster set. IsAccurate reports whether the
// set agrees with a live isBatchPoster read of every address ever seen.
type State struct {
	BatchPosters []common.Address `json:"batchPosters" yaml:"batchPosters"`
	IsAccurate   bool             `json:"isAccurate" yaml:"isAccurate"`
}

// Genesis describes the batch posters set while the rollup was created.
// Their setIsBatchPoster calls are made by the creator contract and cannot be
// decoded from the creation transaction input.
type Genesis struct {
	BatchPosters []common.Address
	BlockNumber  uint64
	TxHash       common.Hash
}

type Reconciler struct {
	reader Reader
	logger *slog.Logger
}

func NewReconciler(reader Reader) *Reconciler {
	return &Reconciler{
		reader: reader,
		logger: logger.Named("batch_poster_reconciler"),
	}
}

// GetBatchPosters replays the batch poster history of sequencerInbox and
// checks every address it mentions against the live contract.
func (r *Reconciler) GetBatchPosters(ctx context.Context, sequencerInbox common.Address, genesis *Genesis) (State, error) {
	events, err := r.setIsBatchPosterEvents(ctx, sequencerInbox)
	if err != nil {
		return State{}, err
	}

	ownerEvents, undecodable, err := r.ownerFunctionEvents(ctx, sequencerInbox, genesis)
	if err != nil {
		return State{}, err
	}
	events = append(events, ownerEvents...)

	if genesis != nil {
		for _, poster := range genesis.BatchPosters {
			events = append(events, replay.RoleEvent{
				Account:     poster,
				Role:        IsBatchPosterRole,
				Kind:        replay.Granted,
				BlockNumber: genesis.BlockNumber,
			})
		}
	}

	derived := replay.Reconstruct(events)
	candidates := candidatesOf(events)

	live, err := r.liveBatchPosters(ctx, sequencerInbox, candidates)
	if err != nil {
		return State{}, err
	}

	accurate := undecodable == 0
	for i, candidate := range candidates {
		if live[i] != derived.Has(candidate, IsBatchPosterRole) {
			accurate = false
			r.logger.
				With("sequencer_inbox", sequencerInbox.Hex()).
				With("address", candidate.Hex()).
				With("live", live[i]).
				Warn("batch poster history disagrees with contract state")
		}
	}

	r.logger.
		With("sequencer_inbox", sequencerInbox.Hex()).
		With("events", len(events)).
		With("candidates", len(candidates)).
		With("batch_posters", derived.Len()).
		With("undecodable", undecodable).
		Debug("batch posters reconciled")

	return State{BatchPosters: derived.Accounts(), IsAccurate: accurate}, nil
}

func (r *Reconciler) setIsBatchPosterEvents(ctx context.Context, sequencerInbox common.Address) ([]replay.RoleEvent, error) {
	logs, err := r.reader.GetLogs(ctx, chain.LogQuery{Address: sequencerInbox, Event: contracts.EventSetIsBatchPoster})
	if err != nil {
		return nil, err
	}

	events := make([]replay.RoleEvent, 0, len(logs))
	for i := range logs {
		var (
			poster common.Address
			set    bool
		)
		if err := contracts.EventSetIsBatchPoster.DecodeArgs(&logs[i], &poster, &set); err != nil {
			return nil, fmt.Errorf("failed to decode SetIsBatchPoster in tx %s: %w", logs[i].TxHash.Hex(), err)
		}
		events = append(events, toRoleEvent(poster, set, logs[i].BlockNumber, logs[i].Index))
	}
	return events, nil
}

// ownerFunctionEvents recovers batch poster changes announced only through
// OwnerFunctionCalled(1) by decoding the emitting transactions. The k-th such
// log of a transaction is matched with its k-th decoded call. Logs of the
// genesis transaction are skipped.
func (r *Reconciler) ownerFunctionEvents(ctx context.Context, sequencerInbox common.Address, genesis *Genesis) ([]replay.RoleEvent, int, error) {
	logs, err := r.reader.GetLogs(ctx, chain.LogQuery{
		Address: sequencerInbox,
		Event:   contracts.EventOwnerFunctionCalled,
		Topics:  [][]common.Hash{{chain.Uint64Topic(contracts.OwnerFunctionSetIsBatchPoster)}},
	})
	if err != nil {
		return nil, 0, err
	}

	var (
		events      []replay.RoleEvent
		undecodable int
		decoded     = make(map[common.Hash][]SetCall)
		failed      = make(map[common.Hash]bool)
		seen        = make(map[common.Hash]int)
	)
	for _, log := range logs {
		if genesis != nil && log.TxHash == genesis.TxHash {
			continue
		}

		calls, ok := decoded[log.TxHash]
		if !ok && !failed[log.TxHash] {
			tx, err := r.reader.GetTransaction(ctx, log.TxHash)
			if err != nil {
				return nil, 0, err
			}
			calls, err = DecodeSetCalls(tx.Data())
			if err != nil {
				r.logger.
					With("tx", log.TxHash.Hex()).
					With("err", err).
					Warn("failed to decode batch poster change")
				failed[log.TxHash] = true
			} else {
				decoded[log.TxHash] = calls
			}
		}

		position := seen[log.TxHash]
		seen[log.TxHash]++
		if failed[log.TxHash] || position >= len(calls) {
			undecodable++
			continue
		}

		call := calls[position]
		events = append(events, toRoleEvent(call.BatchPoster, call.IsBatchPoster, log.BlockNumber, log.Index))
	}

	return events, undecodable, nil
}

func (r *Reconciler) liveBatchPosters(ctx context.Context, sequencerInbox common.Address, candidates []common.Address) ([]bool, error) {
	live := make([]bool, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(liveReadConcurrency)
	for i, candidate := range candidates {
		g.Go(func() error {
			return r.reader.ReadContract(gctx, sequencerInbox, contracts.FuncIsBatchPoster, []any{candidate}, &live[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return live, nil
}

func toRoleEvent(poster common.Address, set bool, block uint64, index uint) replay.RoleEvent {
	kind := replay.Revoked
	if set {
		kind = replay.Granted
	}
	return replay.RoleEvent{
		Account:     poster,
		Role:        IsBatchPosterRole,
		Kind:        kind,
		BlockNumber: block,
		LogIndex:    index,
	}
}

// candidatesOf returns every address mentioned by events, in first-seen order.
func candidatesOf(events []replay.RoleEvent) []common.Address {
	seen := make(map[common.Address]struct{}, len(events))
	candidates := make([]common.Address, 0, len(events))
	for _, e := range events {
		if _, ok := seen[e.Account]; ok {
			continue
		}
		seen[e.Account] = struct{}{}
		candidates = append(candidates, e.Account)
	}
	return candidates
}
