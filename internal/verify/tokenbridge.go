package verify

import (
	"context"

	"github.com/compose-network/orbit-audit/internal/chain"
	"github.com/compose-network/orbit-audit/internal/contracts"
	"github.com/compose-network/orbit-audit/internal/proxy"
	"github.com/compose-network/orbit-audit/internal/tokenbridge"
	"github.com/ethereum/go-ethereum/common"
	"github.com/lmittmann/w3"
)

// checkTokenBridge compares the token bridge recorded by the creator with
// the canonical addresses it derives for the orbit chain id, and checks the
// wiring of routers and gateways from both chains.
func (v *Verifier) checkTokenBridge(ctx context.Context, r *run) error {
	if v.cfg.TokenBridgeCreator == nil {
		return nil
	}
	creator := *v.cfg.TokenBridgeCreator

	set, err := tokenbridge.Fetch(ctx, v.chains.Parent, creator, r.core.Inbox)
	if err != nil {
		return r.readFailed(ctx, v.chains.Parent, err, "TokenBridgeCreator", creator, contracts.FuncInboxToL1Deployment)
	}
	if !set.Deployed() {
		r.warnings.add("no token bridge recorded by creator %s for inbox %s", creator.Hex(), r.core.Inbox.Hex())
		return nil
	}

	if err := v.checkCanonicalTokenBridge(ctx, r, creator, set.OrbitChainContracts); err != nil {
		return err
	}
	if err := v.checkParentTokenBridge(ctx, r, set); err != nil {
		return err
	}
	if v.chains.HasOrbit() {
		if err := v.checkOrbitTokenBridge(ctx, r, v.chains.Orbit, set); err != nil {
			return err
		}
	}
	return nil
}

func (v *Verifier) checkCanonicalTokenBridge(ctx context.Context, r *run, creator common.Address, deployed tokenbridge.Contracts) error {
	chainID := r.expectedOrbitChainID()
	if chainID == nil && v.chains.HasOrbit() {
		id, err := v.chains.Orbit.ChainID(ctx)
		if err != nil {
			return err
		}
		chainID = id
	}
	if chainID == nil {
		r.warnings.add("canonical token bridge not checked: orbit chain id of rollup %s is unknown", r.rollup.Hex())
		return nil
	}

	canonical, err := tokenbridge.Canonical(ctx, v.chains.Parent, creator, chainID)
	if err != nil {
		return r.readFailed(ctx, v.chains.Parent, err, "TokenBridgeCreator", creator, contracts.FuncCanonicalL2Router)
	}

	pairs := []struct {
		name                string
		deployed, canonical common.Address
	}{
		{"Router", deployed.Router, canonical.Router},
		{"StandardGateway", deployed.StandardGateway, canonical.StandardGateway},
		{"CustomGateway", deployed.CustomGateway, canonical.CustomGateway},
		{"ProxyAdmin", deployed.ProxyAdmin, canonical.ProxyAdmin},
		{"BeaconProxyFactory", deployed.BeaconProxyFactory, canonical.BeaconProxyFactory},
		{"UpgradeExecutor", deployed.UpgradeExecutor, canonical.UpgradeExecutor},
		{"Multicall", deployed.Multicall, canonical.Multicall},
	}
	// Custom fee token chains have no weth bridge.
	if deployed.WethGateway != (common.Address{}) || deployed.Weth != (common.Address{}) {
		pairs = append(pairs, []struct {
			name                string
			deployed, canonical common.Address
		}{
			{"WethGateway", deployed.WethGateway, canonical.WethGateway},
			{"Weth", deployed.Weth, canonical.Weth},
		}...)
	}

	for _, p := range pairs {
		if p.deployed != p.canonical {
			r.warnings.add("orbit chain %s is %s, canonical address for chain %s is %s",
				p.name, p.deployed.Hex(), chainID, p.canonical.Hex())
		}
	}
	return nil
}

func (v *Verifier) checkParentTokenBridge(ctx context.Context, r *run, set tokenbridge.AddressSet) error {
	parent, orbit := set.ParentChainContracts, set.OrbitChainContracts
	reader := v.chains.Parent

	expectations := []addressExpectation{
		{"parent Router", parent.Router, contracts.FuncDefaultGateway, parent.StandardGateway},
		{"parent Router", parent.Router, contracts.FuncCounterpartGateway, orbit.Router},
		{"parent Router", parent.Router, contracts.FuncInbox, r.core.Inbox},
		{"parent StandardGateway", parent.StandardGateway, contracts.FuncL2BeaconProxyFactory, orbit.BeaconProxyFactory},
	}
	for _, gw := range set.Gateways() {
		expectations = append(expectations,
			addressExpectation{"parent " + gw.Name, gw.Parent, contracts.FuncCounterpartGateway, gw.Orbit},
			addressExpectation{"parent " + gw.Name, gw.Parent, contracts.FuncRouter, parent.Router},
			addressExpectation{"parent " + gw.Name, gw.Parent, contracts.FuncInbox, r.core.Inbox},
		)
	}
	if err := expectAddresses(ctx, r, reader, expectations); err != nil {
		return err
	}

	created, ok := r.createdAddresses("ProxyAdmin of parent chain token bridge")
	if !ok {
		return nil
	}
	proxies := []namedAddress{{"parent Router", parent.Router}}
	for _, gw := range set.Gateways() {
		proxies = append(proxies, namedAddress{"parent " + gw.Name, gw.Parent})
	}
	return v.expectProxyAdmins(ctx, r, v.parentProxy, proxies, created.AdminProxy)
}

// checkOrbitTokenBridge performs the reciprocal checks from the orbit chain.
func (v *Verifier) checkOrbitTokenBridge(ctx context.Context, r *run, reader *chain.Reader, set tokenbridge.AddressSet) error {
	parent, orbit := set.ParentChainContracts, set.OrbitChainContracts

	expectations := []addressExpectation{
		{"orbit Router", orbit.Router, contracts.FuncDefaultGateway, orbit.StandardGateway},
		{"orbit Router", orbit.Router, contracts.FuncCounterpartGateway, parent.Router},
		{"orbit StandardGateway", orbit.StandardGateway, contracts.FuncBeaconProxyFactory, orbit.BeaconProxyFactory},
		{"orbit ProxyAdmin", orbit.ProxyAdmin, contracts.FuncOwner, orbit.UpgradeExecutor},
	}
	for _, gw := range set.Gateways() {
		expectations = append(expectations,
			addressExpectation{"orbit " + gw.Name, gw.Orbit, contracts.FuncCounterpartGateway, gw.Parent},
			addressExpectation{"orbit " + gw.Name, gw.Orbit, contracts.FuncRouter, orbit.Router},
		)
	}
	if err := expectAddresses(ctx, r, reader, expectations); err != nil {
		return err
	}

	proxies := []namedAddress{
		{"orbit Router", orbit.Router},
		{"orbit BeaconProxyFactory", orbit.BeaconProxyFactory},
		{"orbit UpgradeExecutor", orbit.UpgradeExecutor},
	}
	for _, gw := range set.Gateways() {
		proxies = append(proxies, namedAddress{"orbit " + gw.Name, gw.Orbit})
	}
	if err := v.expectProxyAdmins(ctx, r, proxy.NewResolver(reader), proxies, orbit.ProxyAdmin); err != nil {
		return err
	}

	var isOwner bool
	if err := reader.ReadContract(ctx, contracts.ArbOwnerPublicAddress, contracts.FuncIsChainOwner, []any{orbit.UpgradeExecutor}, &isOwner); err != nil {
		return r.readFailed(ctx, reader, err, "ArbOwnerPublic", contracts.ArbOwnerPublicAddress, contracts.FuncIsChainOwner)
	}
	if !isOwner {
		r.warnings.add("orbit UpgradeExecutor %s is not a chain owner", orbit.UpgradeExecutor.Hex())
	}
	return nil
}

type addressExpectation struct {
	name     string
	contract common.Address
	fn       *w3.Func
	expected common.Address
}

type addressReader interface {
	codeReader
	ReadAddress(ctx context.Context, to common.Address, fn *w3.Func, args ...any) (common.Address, error)
}

func expectAddresses(ctx context.Context, r *run, reader addressReader, expectations []addressExpectation) error {
	for _, e := range expectations {
		got, err := reader.ReadAddress(ctx, e.contract, e.fn)
		if err != nil {
			if err := r.readFailed(ctx, reader, err, e.name, e.contract, e.fn); err != nil {
				return err
			}
			continue
		}
		if got != e.expected {
			r.warnings.add("%s (%s) %s is %s, expected %s", e.name, e.contract.Hex(), e.fn.Signature, got.Hex(), e.expected.Hex())
		}
	}
	return nil
}
