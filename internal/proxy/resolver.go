package proxy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/compose-network/orbit-audit/internal/chain"
	"github.com/compose-network/orbit-audit/internal/contracts"
	"github.com/compose-network/orbit-audit/internal/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/lmittmann/w3"
)

// StateReader is the part of chain.Reader used to resolve proxies.
type StateReader interface {
	GetStorageAt(ctx context.Context, account common.Address, slot common.Hash) (common.Hash, error)
	GetLogs(ctx context.Context, q chain.LogQuery) ([]types.Log, error)
}

// Metadata holds the EIP-1967 admin and implementation of a contract. A nil
// field means the slot is empty and no change event was ever emitted.
type Metadata struct {
	Admin          *common.Address `json:"admin" yaml:"admin"`
	Implementation *common.Address `json:"implementation" yaml:"implementation"`
}

type Resolver struct {
	reader StateReader
	logger *slog.Logger
}

func NewResolver(reader StateReader) *Resolver {
	return &Resolver{
		reader: reader,
		logger: logger.Named("proxy_resolver"),
	}
}

// ResolveAdmin returns the proxy admin of address, or nil if it has none.
func (r *Resolver) ResolveAdmin(ctx context.Context, address common.Address) (*common.Address, error) {
	return r.resolve(ctx, address, contracts.AdminSlot, contracts.EventAdminChanged, func(log *types.Log) (common.Address, error) {
		var previous, current common.Address
		err := contracts.EventAdminChanged.DecodeArgs(log, &previous, &current)
		return current, err
	})
}

// ResolveImplementation returns the implementation behind address, or nil if
// it has none.
func (r *Resolver) ResolveImplementation(ctx context.Context, address common.Address) (*common.Address, error) {
	return r.resolve(ctx, address, contracts.ImplementationSlot, contracts.EventUpgraded, func(log *types.Log) (common.Address, error) {
		var implementation common.Address
		err := contracts.EventUpgraded.DecodeArgs(log, &implementation)
		return implementation, err
	})
}

// Metadata resolves both the admin and the implementation of address.
func (r *Resolver) Metadata(ctx context.Context, address common.Address) (Metadata, error) {
	admin, err := r.ResolveAdmin(ctx, address)
	if err != nil {
		return Metadata{}, err
	}
	implementation, err := r.ResolveImplementation(ctx, address)
	if err != nil {
		return Metadata{}, err
	}
	return Metadata{Admin: admin, Implementation: implementation}, nil
}

// resolve reads slot and falls back to the latest change event when the slot
// is all zero. A non-zero slot always resolves, even if its address part is
// zero.
func (r *Resolver) resolve(
	ctx context.Context,
	address common.Address,
	slot common.Hash,
	event *w3.Event,
	decode func(*types.Log) (common.Address, error),
) (*common.Address, error) {
	value, err := r.reader.GetStorageAt(ctx, address, slot)
	if err != nil {
		return nil, err
	}
	if value != (common.Hash{}) {
		resolved := common.BytesToAddress(value.Bytes())
		return &resolved, nil
	}

	logs, err := r.reader.GetLogs(ctx, chain.LogQuery{Address: address, Event: event})
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, nil
	}

	latest := logs[len(logs)-1]
	resolved, err := decode(&latest)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s on %s: %w", event.Signature, address.Hex(), err)
	}

	r.logger.
		With("contract", address.Hex()).
		With("event", event.Signature).
		With("resolved", resolved.Hex()).
		Debug("empty slot resolved from event history")

	return &resolved, nil
}
