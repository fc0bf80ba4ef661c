package verify

import (
	"context"

	"github.com/compose-network/orbit-audit/internal/batchposter"
	"github.com/compose-network/orbit-audit/internal/contracts"
	"github.com/compose-network/orbit-audit/internal/replay"
	"github.com/compose-network/orbit-audit/internal/rollup"
	"github.com/ethereum/go-ethereum/common"
)

type namedAddress struct {
	name    string
	address common.Address
}

// checkCreatedAddresses compares the addresses announced at creation with
// the ones the rollup is wired to today.
func (v *Verifier) checkCreatedAddresses(_ context.Context, r *run) error {
	created, ok := r.createdAddresses("rollup wiring")
	if !ok {
		return nil
	}

	pairs := []struct {
		name          string
		created, live common.Address
	}{
		{"Bridge", created.Bridge, r.core.Bridge},
		{"Inbox", created.Inbox, r.core.Inbox},
		{"SequencerInbox", created.SequencerInbox, r.core.SequencerInbox},
	}
	if !created.Legacy {
		pairs = append(pairs, []struct {
			name          string
			created, live common.Address
		}{
			{"Outbox", created.Outbox, r.core.Outbox},
			{"RollupEventInbox", created.RollupEventInbox, r.core.RollupEventInbox},
			{"ChallengeManager", created.ChallengeManager, r.core.ChallengeManager},
		}...)
	}

	for _, p := range pairs {
		if p.created != p.live {
			r.warnings.add("%s mismatch: rollup %s is wired to %s, RollupCreated announced %s",
				p.name, r.rollup.Hex(), p.live.Hex(), p.created.Hex())
		}
	}
	return nil
}

func (v *Verifier) checkSequencerInboxRollup(ctx context.Context, r *run) error {
	reported, err := rollup.AddressFromSequencerInbox(ctx, v.chains.Parent, r.core.SequencerInbox)
	if err != nil {
		return err
	}
	if reported != r.rollup {
		r.warnings.add("SequencerInbox %s reports rollup %s, expected %s",
			r.core.SequencerInbox.Hex(), reported.Hex(), r.rollup.Hex())
	}
	return nil
}

// checkProxyAdmins checks that every rollup contract proxy is administered
// by the ProxyAdmin created with the rollup.
func (v *Verifier) checkProxyAdmins(ctx context.Context, r *run) error {
	created, ok := r.createdAddresses("ProxyAdmin of rollup contracts")
	if !ok {
		return nil
	}

	proxies := []namedAddress{
		{"Bridge", r.core.Bridge},
		{"Inbox", r.core.Inbox},
		{"SequencerInbox", r.core.SequencerInbox},
		{"Outbox", r.core.Outbox},
		{"RollupEventInbox", r.core.RollupEventInbox},
		{"ChallengeManager", r.core.ChallengeManager},
	}
	if ue, ok := r.upgradeExecutor(); ok {
		proxies = append(proxies, namedAddress{"UpgradeExecutor", ue})
	}

	return v.expectProxyAdmins(ctx, r, v.parentProxy, proxies, created.AdminProxy)
}

// checkRollupOwner checks that the rollup is owned by the UpgradeExecutor.
func (v *Verifier) checkRollupOwner(ctx context.Context, r *run) error {
	ue, ok := r.upgradeExecutor()
	if !ok {
		r.warnings.add("UpgradeExecutor of rollup %s is unknown: ownership not checked", r.rollup.Hex())
		return nil
	}

	owner, err := v.parentProxy.ResolveAdmin(ctx, r.rollup)
	if err != nil {
		return err
	}
	switch {
	case owner == nil:
		r.warnings.add("Rollup %s owner not found, expected UpgradeExecutor %s", r.rollup.Hex(), ue.Hex())
	case *owner != ue:
		r.warnings.add("Rollup %s owner is %s, expected UpgradeExecutor %s", r.rollup.Hex(), owner.Hex(), ue.Hex())
	}
	return nil
}

func (v *Verifier) checkProxyAdminOwner(ctx context.Context, r *run) error {
	ue, ok := r.upgradeExecutor()
	if !ok || r.info.Addresses.AdminProxy == (common.Address{}) {
		return nil
	}

	proxyAdmin := r.info.Addresses.AdminProxy
	owner, err := v.chains.Parent.ReadAddress(ctx, proxyAdmin, contracts.FuncOwner)
	if err != nil {
		return r.readFailed(ctx, v.chains.Parent, err, "ProxyAdmin", proxyAdmin, contracts.FuncOwner)
	}
	if owner != ue {
		r.warnings.add("ProxyAdmin %s owner is %s, expected UpgradeExecutor %s", proxyAdmin.Hex(), owner.Hex(), ue.Hex())
	}
	return nil
}

// checkUpgradeExecutor checks the reconstructed role holders of the
// UpgradeExecutor and confirms each of them with hasRole.
func (v *Verifier) checkUpgradeExecutor(ctx context.Context, r *run) error {
	ue, ok := r.upgradeExecutor()
	if !ok {
		return nil
	}

	membership, err := replay.FetchPrivilegedAccounts(ctx, v.chains.Parent, ue)
	if err != nil {
		return err
	}
	if membership.Len() == 0 {
		r.warnings.add("UpgradeExecutor %s has no privileged accounts", ue.Hex())
		return nil
	}

	if !membership.Has(ue, contracts.AdminRole) {
		r.warnings.add("UpgradeExecutor %s does not hold ADMIN_ROLE on itself", ue.Hex())
	}

	executors := 0
	for _, account := range membership.Accounts() {
		for _, role := range membership.Roles(account) {
			if role == contracts.ExecutorRole {
				executors++
			}

			var held bool
			if err := v.chains.Parent.ReadContract(ctx, ue, contracts.FuncHasRole, []any{role, account}, &held); err != nil {
				if err := r.readFailed(ctx, v.chains.Parent, err, "UpgradeExecutor", ue, contracts.FuncHasRole); err != nil {
					return err
				}
				continue
			}
			if !held {
				r.warnings.add("UpgradeExecutor %s role history grants %s to %s but hasRole is false",
					ue.Hex(), contracts.RoleName(role), account.Hex())
			}
		}
	}
	if executors == 0 {
		r.warnings.add("UpgradeExecutor %s has no account with EXECUTOR_ROLE", ue.Hex())
	}
	return nil
}

func (v *Verifier) checkBatchPosters(ctx context.Context, r *run) error {
	var genesis *batchposter.Genesis
	if params := r.info.DeployParameters; params != nil {
		genesis = &batchposter.Genesis{
			BatchPosters: params.BatchPosters,
			BlockNumber:  r.info.BlockNumber,
			TxHash:       r.info.TransactionHash,
		}
	}

	state, err := v.batchPosters.GetBatchPosters(ctx, r.core.SequencerInbox, genesis)
	if err != nil {
		return err
	}

	if len(state.BatchPosters) == 0 {
		r.warnings.add("SequencerInbox %s has no batch posters", r.core.SequencerInbox.Hex())
	}
	if !state.IsAccurate {
		r.warnings.add("batch poster history of SequencerInbox %s disagrees with isBatchPoster: derived %s",
			r.core.SequencerInbox.Hex(), formatAddresses(state.BatchPosters))
	}
	return nil
}

func (v *Verifier) checkConfirmPeriod(ctx context.Context, r *run) error {
	var period uint64
	if err := v.chains.Parent.ReadContract(ctx, r.rollup, contracts.FuncConfirmPeriodBlocks, nil, &period); err != nil {
		return r.readFailed(ctx, v.chains.Parent, err, "Rollup", r.rollup, contracts.FuncConfirmPeriodBlocks)
	}
	if period < v.cfg.MinConfirmPeriodBlocks {
		r.warnings.add("Rollup %s confirmPeriodBlocks is %d, below the minimum of %d",
			r.rollup.Hex(), period, v.cfg.MinConfirmPeriodBlocks)
	}
	return nil
}

// checkOrbitChainID checks that the creation parameters, the chain config
// and the orbit chain endpoint agree on the chain id.
func (v *Verifier) checkOrbitChainID(ctx context.Context, r *run) error {
	params, cfg := r.info.DeployParameters, r.info.ChainConfig
	if params != nil && params.ChainID != nil && cfg != nil && params.ChainID.Uint64() != cfg.ChainID {
		r.warnings.add("createRollup chain id %s differs from chain config chain id %d", params.ChainID, cfg.ChainID)
	}

	if !v.chains.HasOrbit() {
		return nil
	}
	expected := r.expectedOrbitChainID()
	if expected == nil {
		return nil
	}

	actual, err := v.chains.Orbit.ChainID(ctx)
	if err != nil {
		return err
	}
	if actual.Cmp(expected) != 0 {
		r.warnings.add("orbit chain endpoint reports chain id %s, rollup %s was created for %s", actual, r.rollup.Hex(), expected)
	}
	return nil
}

func (v *Verifier) expectProxyAdmins(ctx context.Context, r *run, resolver proxyAdminResolver, proxies []namedAddress, expected common.Address) error {
	for _, p := range proxies {
		admin, err := resolver.ResolveAdmin(ctx, p.address)
		if err != nil {
			return err
		}
		switch {
		case admin == nil:
			r.warnings.add("%s (%s) ProxyAdmin not found, expected %s", p.name, p.address.Hex(), expected.Hex())
		case *admin != expected:
			r.warnings.add("%s (%s) ProxyAdmin is %s, expected %s", p.name, p.address.Hex(), admin.Hex(), expected.Hex())
		}
	}
	return nil
}

type proxyAdminResolver interface {
	ResolveAdmin(ctx context.Context, address common.Address) (*common.Address, error)
}
