package inspect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/compose-network/orbit-audit/configs"
	"github.com/compose-network/orbit-audit/internal/batchposter"
	"github.com/compose-network/orbit-audit/internal/chain"
	"github.com/compose-network/orbit-audit/internal/contracts"
	"github.com/compose-network/orbit-audit/internal/creation"
	"github.com/compose-network/orbit-audit/internal/logger"
	"github.com/compose-network/orbit-audit/internal/proxy"
	"github.com/compose-network/orbit-audit/internal/replay"
	"github.com/compose-network/orbit-audit/internal/report"
	"github.com/compose-network/orbit-audit/internal/rollup"
	"github.com/compose-network/orbit-audit/internal/tokenbridge"
	"github.com/ethereum/go-ethereum/common"
)

func reportResult(stdout io.Writer, out configs.Output, result any) error {
	return report.Emit(stdout, out.Format, out.File, result)
}

type PrivilegedAccounts struct {
	UpgradeExecutor common.Address `json:"upgradeExecutor" yaml:"upgradeExecutor"`
	Accounts        []replay.Entry `json:"accounts" yaml:"accounts"`
}

func (p PrivilegedAccounts) Table() report.Table {
	t := report.Table{Header: []string{"Account", "Roles"}}
	for _, e := range p.Accounts {
		names := make([]string, len(e.Roles))
		for i, role := range e.Roles {
			names[i] = contracts.RoleName(role)
		}
		t.Rows = append(t.Rows, []string{e.Account.Hex(), strings.Join(names, ", ")})
	}
	return t
}

func privilegedAccounts(ctx context.Context, chains chain.Chains, _ configs.Config, upgradeExecutor common.Address) (any, error) {
	membership, err := replay.FetchPrivilegedAccounts(ctx, chains.Parent, upgradeExecutor)
	if err != nil {
		return nil, err
	}
	return PrivilegedAccounts{UpgradeExecutor: upgradeExecutor, Accounts: membership.Entries()}, nil
}

type BatchPosters struct {
	SequencerInbox common.Address `json:"sequencerInbox" yaml:"sequencerInbox"`
	Rollup         common.Address `json:"rollup" yaml:"rollup"`
	// Manager is nil for sequencer inboxes predating the batch poster manager.
	Manager           *common.Address `json:"batchPosterManager,omitempty" yaml:"batchPosterManager,omitempty"`
	batchposter.State `yaml:",inline"`
}

func (b BatchPosters) Table() report.Table {
	t := report.Table{Header: []string{"Account", "Role", "Accurate"}}
	accurate := strconv.FormatBool(b.IsAccurate)
	for _, poster := range b.BatchPosters {
		t.Rows = append(t.Rows, []string{poster.Hex(), "batch poster", accurate})
	}
	if len(b.BatchPosters) == 0 {
		t.Rows = append(t.Rows, []string{"-", "batch poster", accurate})
	}
	t.Rows = append(t.Rows, []string{optionalAddress(b.Manager), "batch poster manager", "-"})
	return t
}

// batchPosters reconstructs the batch posters of sequencerInbox. The genesis
// batch posters are taken from the creation of the rollup the inbox reports;
// when that rollup has no creation record only logged changes are replayed.
func batchPosters(ctx context.Context, chains chain.Chains, _ configs.Config, sequencerInbox common.Address) (any, error) {
	log := logger.Named("inspect").With("sequencer_inbox", sequencerInbox.Hex())

	rollupAddress, err := rollup.AddressFromSequencerInbox(ctx, chains.Parent, sequencerInbox)
	if err != nil {
		return nil, err
	}

	var genesis *batchposter.Genesis
	info, err := creation.NewResolver(chains.Parent).Resolve(ctx, rollupAddress)
	switch {
	case errors.Is(err, creation.ErrNotFound):
		log.With("rollup", rollupAddress.Hex()).Warn("rollup creation not found, genesis batch posters unknown")
	case err != nil:
		return nil, err
	case info.DeployParameters != nil:
		genesis = &batchposter.Genesis{
			BatchPosters: info.DeployParameters.BatchPosters,
			BlockNumber:  info.BlockNumber,
			TxHash:       info.TransactionHash,
		}
	}

	state, err := batchposter.NewReconciler(chains.Parent).GetBatchPosters(ctx, sequencerInbox, genesis)
	if err != nil {
		return nil, err
	}

	result := BatchPosters{SequencerInbox: sequencerInbox, Rollup: rollupAddress, State: state}
	manager, err := chains.Parent.ReadAddress(ctx, sequencerInbox, contracts.FuncBatchPosterManager)
	switch {
	case chain.IsCallFailure(err):
		log.Debug("sequencer inbox has no batch poster manager")
	case err != nil:
		return nil, err
	default:
		result.Manager = &manager
	}
	return result, nil
}

type ProxyMetadata struct {
	Address        common.Address `json:"address" yaml:"address"`
	proxy.Metadata `yaml:",inline"`
}

func (p ProxyMetadata) Table() report.Table {
	return report.Table{
		Header: []string{"Field", "Value"},
		Rows: [][]string{
			{"Proxy", p.Address.Hex()},
			{"Admin", optionalAddress(p.Admin)},
			{"Implementation", optionalAddress(p.Implementation)},
		},
	}
}

func proxyMetadata(ctx context.Context, chains chain.Chains, _ configs.Config, address common.Address) (any, error) {
	metadata, err := proxy.NewResolver(chains.Parent).Metadata(ctx, address)
	if err != nil {
		return nil, err
	}
	return ProxyMetadata{Address: address, Metadata: metadata}, nil
}

type CreationInfo struct {
	Rollup        common.Address `json:"rollup" yaml:"rollup"`
	creation.Info `yaml:",inline"`
}

func (c CreationInfo) Table() report.Table {
	t := report.Table{Header: []string{"Field", "Value"}}
	add := func(name, value string) {
		t.Rows = append(t.Rows, []string{name, value})
	}

	add("Rollup", c.Rollup.Hex())
	add("RollupCreator", c.RollupCreatorAddress.Hex())
	add("TransactionHash", c.TransactionHash.Hex())
	add("BlockNumber", strconv.FormatUint(c.BlockNumber, 10))

	if a := c.Addresses; a != nil {
		add("Bridge", a.Bridge.Hex())
		add("Inbox", a.Inbox.Hex())
		add("SequencerInbox", a.SequencerInbox.Hex())
		add("ProxyAdmin", a.AdminProxy.Hex())
		if !a.Legacy {
			add("Outbox", a.Outbox.Hex())
			add("RollupEventInbox", a.RollupEventInbox.Hex())
			add("ChallengeManager", a.ChallengeManager.Hex())
			add("UpgradeExecutor", a.UpgradeExecutor.Hex())
			add("ValidatorUtils", a.ValidatorUtils.Hex())
			add("ValidatorWalletCreator", a.ValidatorWalletCreator.Hex())
			add("NativeToken", a.NativeToken.Hex())
		}
	} else {
		add("RollupCreated", "not decoded")
	}

	if p := c.DeployParameters; p != nil {
		add("CreatorVersion", string(p.Version))
		add("ChainID", p.ChainID.String())
		add("Owner", p.Owner.Hex())
		add("ConfirmPeriodBlocks", strconv.FormatUint(p.ConfirmPeriodBlocks, 10))
		add("BatchPosters", formatAddresses(p.BatchPosters))
		add("Validators", formatAddresses(p.Validators))
	} else {
		add("DeployParameters", "not decoded")
	}

	if c.ChainConfig != nil {
		add("AnyTrust", strconv.FormatBool(c.IsAnyTrust()))
		add("InitialChainOwner", c.ChainConfig.Arbitrum.InitialChainOwner.Hex())
	}
	return t
}

func creationInfo(ctx context.Context, chains chain.Chains, _ configs.Config, rollupAddress common.Address) (any, error) {
	info, err := creation.NewResolver(chains.Parent).Resolve(ctx, rollupAddress)
	if err != nil {
		return nil, err
	}
	return CreationInfo{Rollup: rollupAddress, Info: *info}, nil
}

type TokenBridge struct {
	Rollup                 common.Address `json:"rollup" yaml:"rollup"`
	Creator                common.Address `json:"tokenBridgeCreator" yaml:"tokenBridgeCreator"`
	tokenbridge.AddressSet `yaml:",inline"`
}

func (b TokenBridge) Table() report.Table {
	parent, orbit := b.ParentChainContracts, b.OrbitChainContracts
	t := report.Table{
		Header: []string{"Contract", "Parent chain", "Orbit chain"},
		Rows: [][]string{
			{"Router", parent.Router.Hex(), orbit.Router.Hex()},
		},
	}
	for _, gw := range b.Gateways() {
		t.Rows = append(t.Rows, []string{gw.Name, gw.Parent.Hex(), gw.Orbit.Hex()})
	}
	t.Rows = append(t.Rows,
		[]string{"Weth", parent.Weth.Hex(), orbit.Weth.Hex()},
		[]string{"Multicall", parent.Multicall.Hex(), orbit.Multicall.Hex()},
		[]string{"ProxyAdmin", "-", orbit.ProxyAdmin.Hex()},
		[]string{"BeaconProxyFactory", "-", orbit.BeaconProxyFactory.Hex()},
		[]string{"UpgradeExecutor", "-", orbit.UpgradeExecutor.Hex()},
	)
	return t
}

var errNoTokenBridgeCreator = errors.New("verify.token-bridge-creator is required to read the token bridge")

func tokenBridge(ctx context.Context, chains chain.Chains, cfg configs.Config, rollupAddress common.Address) (any, error) {
	creator, ok := cfg.Verify.TokenBridgeCreatorAddress()
	if !ok {
		return nil, errNoTokenBridgeCreator
	}

	core, err := rollup.Fetch(ctx, chains.Parent, rollupAddress)
	if err != nil {
		return nil, err
	}

	set, err := tokenbridge.Fetch(ctx, chains.Parent, creator, core.Inbox)
	if err != nil {
		return nil, err
	}
	if !set.Deployed() {
		return nil, fmt.Errorf("no token bridge recorded by creator %s for inbox %s", creator.Hex(), core.Inbox.Hex())
	}

	slog.With("rollup", rollupAddress.Hex()).With("router", set.ParentChainContracts.Router.Hex()).Debug("token bridge read")

	return TokenBridge{Rollup: rollupAddress, Creator: creator, AddressSet: set}, nil
}

func optionalAddress(addr *common.Address) string {
	if addr == nil {
		return "-"
	}
	return addr.Hex()
}

func formatAddresses(addresses []common.Address) string {
	if len(addresses) == 0 {
		return "-"
	}
	parts := make([]string, len(addresses))
	for i, a := range addresses {
		parts[i] = a.Hex()
	}
	return strings.Join(parts, ", ")
}
