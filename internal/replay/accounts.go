package replay

import (
	"context"
	"fmt"

	"github.com/compose-network/orbit-audit/internal/chain"
	"github.com/compose-network/orbit-audit/internal/contracts"
	"github.com/compose-network/orbit-audit/internal/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/lmittmann/w3"
	"golang.org/x/sync/errgroup"
)

// LogReader is the part of chain.Reader used to fetch role history.
type LogReader interface {
	GetLogs(ctx context.Context, q chain.LogQuery) ([]types.Log, error)
}

// FetchPrivilegedAccounts reconstructs the current role holders of an
// UpgradeExecutor (or any OpenZeppelin AccessControl contract) from its
// RoleGranted and RoleRevoked history. An empty membership is not an error.
func FetchPrivilegedAccounts(ctx context.Context, reader LogReader, upgradeExecutor common.Address) (*Membership, error) {
	var granted, revoked []RoleEvent

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		granted, err = fetchRoleEvents(gctx, reader, upgradeExecutor, contracts.EventRoleGranted, Granted)
		return err
	})
	g.Go(func() error {
		var err error
		revoked, err = fetchRoleEvents(gctx, reader, upgradeExecutor, contracts.EventRoleRevoked, Revoked)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	membership := Reconstruct(append(granted, revoked...))

	logger.Named("replay").
		With("contract", upgradeExecutor.Hex()).
		With("granted", len(granted)).
		With("revoked", len(revoked)).
		With("accounts", membership.Len()).
		Debug("privileged accounts reconstructed")

	return membership, nil
}

func fetchRoleEvents(ctx context.Context, reader LogReader, address common.Address, event *w3.Event, kind Kind) ([]RoleEvent, error) {
	logs, err := reader.GetLogs(ctx, chain.LogQuery{Address: address, Event: event})
	if err != nil {
		return nil, err
	}

	events := make([]RoleEvent, 0, len(logs))
	for i := range logs {
		var (
			role    common.Hash
			account common.Address
			sender  common.Address
		)
		if err := event.DecodeArgs(&logs[i], &role, &account, &sender); err != nil {
			return nil, fmt.Errorf("failed to decode %s in tx %s: %w", event.Signature, logs[i].TxHash.Hex(), err)
		}
		events = append(events, RoleEvent{
			Account:     account,
			Role:        role,
			Kind:        kind,
			BlockNumber: logs[i].BlockNumber,
			LogIndex:    logs[i].Index,
		})
	}
	return events, nil
}
