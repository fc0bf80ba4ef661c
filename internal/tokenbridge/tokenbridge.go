package tokenbridge

import (
	"context"
	"fmt"
	"math/big"

	"github.com/compose-network/orbit-audit/internal/contracts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/lmittmann/w3"
	"golang.org/x/sync/errgroup"
)

// ContractReader is the part of chain.Reader used to query the token bridge
// creator.
type ContractReader interface {
	ReadContract(ctx context.Context, to common.Address, fn *w3.Func, args []any, returns ...any) error
	ReadAddress(ctx context.Context, to common.Address, fn *w3.Func, args ...any) (common.Address, error)
}

// Contracts is the token bridge deployed on one chain. ProxyAdmin,
// BeaconProxyFactory and UpgradeExecutor are only recorded by the creator for
// the orbit chain.
type Contracts struct {
	Router             common.Address `json:"router" yaml:"router"`
	StandardGateway    common.Address `json:"standardGateway" yaml:"standardGateway"`
	CustomGateway      common.Address `json:"customGateway" yaml:"customGateway"`
	WethGateway        common.Address `json:"wethGateway" yaml:"wethGateway"`
	Weth               common.Address `json:"weth" yaml:"weth"`
	ProxyAdmin         common.Address `json:"proxyAdmin" yaml:"proxyAdmin"`
	BeaconProxyFactory common.Address `json:"beaconProxyFactory" yaml:"beaconProxyFactory"`
	UpgradeExecutor    common.Address `json:"upgradeExecutor" yaml:"upgradeExecutor"`
	Multicall          common.Address `json:"multicall" yaml:"multicall"`
}

// AddressSet is the token bridge of a rollup as recorded by the creator.
type AddressSet struct {
	ParentChainContracts Contracts `json:"parentChainContracts" yaml:"parentChainContracts"`
	OrbitChainContracts  Contracts `json:"orbitChainContracts" yaml:"orbitChainContracts"`
}

// Deployed reports whether the creator recorded a token bridge at all.
func (s AddressSet) Deployed() bool {
	return s.ParentChainContracts.Router != (common.Address{})
}

// Gateway names a gateway pair across both chains.
type Gateway struct {
	Name   string
	Parent common.Address
	Orbit  common.Address
}

// Gateways returns the standard, custom and, when deployed, weth gateway pairs.
func (s AddressSet) Gateways() []Gateway {
	gateways := []Gateway{
		{Name: "StandardGateway", Parent: s.ParentChainContracts.StandardGateway, Orbit: s.OrbitChainContracts.StandardGateway},
		{Name: "CustomGateway", Parent: s.ParentChainContracts.CustomGateway, Orbit: s.OrbitChainContracts.CustomGateway},
	}
	if s.ParentChainContracts.WethGateway != (common.Address{}) || s.OrbitChainContracts.WethGateway != (common.Address{}) {
		gateways = append(gateways, Gateway{Name: "WethGateway", Parent: s.ParentChainContracts.WethGateway, Orbit: s.OrbitChainContracts.WethGateway})
	}
	return gateways
}

// Fetch reads the token bridge recorded by creator for inbox.
func Fetch(ctx context.Context, reader ContractReader, creator, inbox common.Address) (AddressSet, error) {
	var (
		set    AddressSet
		parent = &set.ParentChainContracts
		orbit  = &set.OrbitChainContracts
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return reader.ReadContract(gctx, creator, contracts.FuncInboxToL1Deployment, []any{inbox},
			&parent.Router, &parent.StandardGateway, &parent.CustomGateway, &parent.WethGateway, &parent.Weth,
		)
	})
	g.Go(func() error {
		return reader.ReadContract(gctx, creator, contracts.FuncInboxToL2Deployment, []any{inbox},
			&orbit.Router, &orbit.StandardGateway, &orbit.CustomGateway, &orbit.WethGateway, &orbit.Weth,
			&orbit.ProxyAdmin, &orbit.BeaconProxyFactory, &orbit.UpgradeExecutor, &orbit.Multicall,
		)
	})
	g.Go(func() error {
		addr, err := reader.ReadAddress(gctx, creator, contracts.FuncL1Multicall)
		if err != nil {
			return err
		}
		parent.Multicall = addr
		return nil
	})
	if err := g.Wait(); err != nil {
		return AddressSet{}, fmt.Errorf("failed to read token bridge of inbox %s: %w", inbox.Hex(), err)
	}

	return set, nil
}

// Canonical computes the orbit chain token bridge addresses the creator
// derives for chainID, whether or not they were deployed.
func Canonical(ctx context.Context, reader ContractReader, creator common.Address, chainID *big.Int) (Contracts, error) {
	var c Contracts

	reads := []struct {
		fn  *w3.Func
		dst *common.Address
	}{
		{contracts.FuncCanonicalL2Router, &c.Router},
		{contracts.FuncCanonicalL2StandardGateway, &c.StandardGateway},
		{contracts.FuncCanonicalL2CustomGateway, &c.CustomGateway},
		{contracts.FuncCanonicalL2WethGateway, &c.WethGateway},
		{contracts.FuncCanonicalL2Weth, &c.Weth},
		{contracts.FuncCanonicalL2ProxyAdmin, &c.ProxyAdmin},
		{contracts.FuncCanonicalL2BeaconProxyFactory, &c.BeaconProxyFactory},
		{contracts.FuncCanonicalL2UpgradeExecutor, &c.UpgradeExecutor},
		{contracts.FuncCanonicalL2Multicall, &c.Multicall},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, read := range reads {
		g.Go(func() error {
			addr, err := reader.ReadAddress(gctx, creator, read.fn, chainID)
			if err != nil {
				return err
			}
			*read.dst = addr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Contracts{}, fmt.Errorf("failed to read canonical token bridge for chain %s: %w", chainID, err)
	}

	return c, nil
}
