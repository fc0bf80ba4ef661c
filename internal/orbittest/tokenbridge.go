package orbittest

import (
	"math/big"
	"testing"

	"github.com/compose-network/orbit-audit/internal/chain/chaintest"
	"github.com/compose-network/orbit-audit/internal/contracts"
	"github.com/compose-network/orbit-audit/internal/tokenbridge"
	"github.com/ethereum/go-ethereum/common"
	"github.com/lmittmann/w3"
)

// TokenBridge describes a token bridge deployed by the token bridge creator
// for a rollup.
type TokenBridge struct {
	Creator common.Address
	Set     tokenbridge.AddressSet
}

func NewTokenBridge() *TokenBridge {
	return &TokenBridge{
		Creator: Address(200),
		Set: tokenbridge.AddressSet{
			ParentChainContracts: tokenbridge.Contracts{
				Router:          Address(201),
				StandardGateway: Address(202),
				CustomGateway:   Address(203),
				WethGateway:     Address(204),
				Weth:            Address(205),
				Multicall:       Address(206),
			},
			OrbitChainContracts: tokenbridge.Contracts{
				Router:             Address(301),
				StandardGateway:    Address(302),
				CustomGateway:      Address(303),
				WethGateway:        Address(304),
				Weth:               Address(305),
				ProxyAdmin:         Address(306),
				BeaconProxyFactory: Address(307),
				UpgradeExecutor:    Address(308),
				Multicall:          Address(309),
			},
		},
	}
}

// Deploy seeds the creator records, the canonical address derivation and the
// parent chain wiring. The orbit chain side is seeded when orbit is not nil.
func (b *TokenBridge) Deploy(t testing.TB, parent, orbit *chaintest.Chain, r *Rollup) {
	t.Helper()

	p, o := b.Set.ParentChainContracts, b.Set.OrbitChainContracts

	parent.OnCall(b.Creator, contracts.FuncInboxToL1Deployment, []any{r.Inbox},
		p.Router, p.StandardGateway, p.CustomGateway, p.WethGateway, p.Weth)
	parent.OnCall(b.Creator, contracts.FuncInboxToL2Deployment, []any{r.Inbox},
		o.Router, o.StandardGateway, o.CustomGateway, o.WethGateway, o.Weth,
		o.ProxyAdmin, o.BeaconProxyFactory, o.UpgradeExecutor, o.Multicall)
	parent.OnAddress(b.Creator, contracts.FuncL1Multicall, p.Multicall)

	chainID := new(big.Int).SetUint64(r.ChainID)
	for fn, addr := range map[*w3.Func]common.Address{
		contracts.FuncCanonicalL2Router:             o.Router,
		contracts.FuncCanonicalL2StandardGateway:    o.StandardGateway,
		contracts.FuncCanonicalL2CustomGateway:      o.CustomGateway,
		contracts.FuncCanonicalL2WethGateway:        o.WethGateway,
		contracts.FuncCanonicalL2Weth:               o.Weth,
		contracts.FuncCanonicalL2ProxyAdmin:         o.ProxyAdmin,
		contracts.FuncCanonicalL2BeaconProxyFactory: o.BeaconProxyFactory,
		contracts.FuncCanonicalL2UpgradeExecutor:    o.UpgradeExecutor,
		contracts.FuncCanonicalL2Multicall:          o.Multicall,
	} {
		parent.OnCall(b.Creator, fn, []any{chainID}, addr)
	}

	parent.OnAddress(p.Router, contracts.FuncDefaultGateway, p.StandardGateway)
	parent.OnAddress(p.Router, contracts.FuncCounterpartGateway, o.Router)
	parent.OnAddress(p.Router, contracts.FuncInbox, r.Inbox)
	parent.OnAddress(p.StandardGateway, contracts.FuncL2BeaconProxyFactory, o.BeaconProxyFactory)
	parent.SetStorage(p.Router, contracts.AdminSlot, chaintest.AddressSlot(r.ProxyAdmin))
	for _, gw := range b.Set.Gateways() {
		parent.OnAddress(gw.Parent, contracts.FuncCounterpartGateway, gw.Orbit)
		parent.OnAddress(gw.Parent, contracts.FuncRouter, p.Router)
		parent.OnAddress(gw.Parent, contracts.FuncInbox, r.Inbox)
		parent.SetStorage(gw.Parent, contracts.AdminSlot, chaintest.AddressSlot(r.ProxyAdmin))
	}

	if orbit == nil {
		return
	}

	orbit.OnAddress(o.Router, contracts.FuncDefaultGateway, o.StandardGateway)
	orbit.OnAddress(o.Router, contracts.FuncCounterpartGateway, p.Router)
	orbit.OnAddress(o.StandardGateway, contracts.FuncBeaconProxyFactory, o.BeaconProxyFactory)
	orbit.OnAddress(o.ProxyAdmin, contracts.FuncOwner, o.UpgradeExecutor)
	orbit.OnCall(contracts.ArbOwnerPublicAddress, contracts.FuncIsChainOwner, []any{o.UpgradeExecutor}, true)
	for _, a := range []common.Address{o.Router, o.BeaconProxyFactory, o.UpgradeExecutor} {
		orbit.SetStorage(a, contracts.AdminSlot, chaintest.AddressSlot(o.ProxyAdmin))
	}
	for _, gw := range b.Set.Gateways() {
		orbit.OnAddress(gw.Orbit, contracts.FuncCounterpartGateway, gw.Parent)
		orbit.OnAddress(gw.Orbit, contracts.FuncRouter, o.Router)
		orbit.SetStorage(gw.Orbit, contracts.AdminSlot, chaintest.AddressSlot(o.ProxyAdmin))
	}
}
