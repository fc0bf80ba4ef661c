package creation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/compose-network/orbit-audit/internal/chain"
	"github.com/compose-network/orbit-audit/internal/contracts"
	"github.com/compose-network/orbit-audit/internal/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrNotFound is returned when an address never emitted RollupInitialized.
var ErrNotFound = errors.New("rollup initialization event not found")

// Reader is the part of chain.Reader used by the resolver.
type Reader interface {
	GetLogs(ctx context.Context, q chain.LogQuery) ([]types.Log, error)
	GetTransaction(ctx context.Context, hash common.Hash) (*types.Transaction, error)
	GetTransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

type Resolver struct {
	reader Reader
	logger *slog.Logger
}

func NewResolver(reader Reader) *Resolver {
	return &Resolver{
		reader: reader,
		logger: logger.Named("creation_resolver"),
	}
}

// Resolve locates the transaction that created rollup and decodes what it
// can of the creator event, the createRollup input and the chain config.
func (r *Resolver) Resolve(ctx context.Context, rollup common.Address) (*Info, error) {
	logs, err := r.reader.GetLogs(ctx, chain.LogQuery{Address: rollup, Event: contracts.EventRollupInitialized})
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNotFound, rollup.Hex())
	}

	initialized := logs[0]
	info := &Info{
		TransactionHash: initialized.TxHash,
		BlockNumber:     initialized.BlockNumber,
	}

	tx, err := r.reader.GetTransaction(ctx, initialized.TxHash)
	if err != nil {
		return nil, err
	}
	if to := tx.To(); to != nil {
		info.RollupCreatorAddress = *to
	}

	receipt, err := r.reader.GetTransactionReceipt(ctx, initialized.TxHash)
	if err != nil {
		return nil, err
	}

	log := r.logger.With("rollup", rollup.Hex()).With("tx", initialized.TxHash.Hex())

	if addresses, creator, ok := DecodeCreatedAddresses(receipt.Logs, rollup); ok {
		info.Addresses = addresses
		info.RollupCreatorAddress = creator
	} else {
		log.Warn("no supported RollupCreated event in creation receipt")
	}

	params, err := DecodeDeployParameters(tx.Data())
	if err != nil {
		log.With("err", err).Warn("creation input matches no supported createRollup version")
		return info, nil
	}
	info.DeployParameters = params

	chainConfig, err := ParseChainConfig(params.ChainConfig)
	if err != nil {
		log.With("err", err).Warn("chain config could not be parsed")
		return info, nil
	}
	info.ChainConfig = chainConfig

	log.
		With("creator", info.RollupCreatorAddress.Hex()).
		With("version", params.Version).
		With("any_trust", chainConfig.IsAnyTrust()).
		Debug("rollup creation resolved")

	return info, nil
}
