package verify

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/compose-network/orbit-audit/internal/batchposter"
	"github.com/compose-network/orbit-audit/internal/chain"
	"github.com/compose-network/orbit-audit/internal/creation"
	"github.com/compose-network/orbit-audit/internal/deployment"
	"github.com/compose-network/orbit-audit/internal/logger"
	"github.com/compose-network/orbit-audit/internal/proxy"
	"github.com/compose-network/orbit-audit/internal/rollup"
	"github.com/ethereum/go-ethereum/common"
	"github.com/lmittmann/w3"
)

// Warnings lists every inconsistency found, in check order. Identical
// warnings are kept.
type Warnings []string

func (w *Warnings) add(format string, args ...any) {
	*w = append(*w, fmt.Sprintf(format, args...))
}

type Config struct {
	// TokenBridgeCreator enables the token bridge checks.
	TokenBridgeCreator     *common.Address
	MinConfirmPeriodBlocks uint64
	ActivityWindow         time.Duration
	FallbackActivityBlocks uint64
	// Deployment, when set, is cross-checked against chain state.
	Deployment *deployment.Record
}

type Verifier struct {
	chains chain.Chains
	cfg    Config

	creation     *creation.Resolver
	parentProxy  *proxy.Resolver
	batchPosters *batchposter.Reconciler
	logger       *slog.Logger
}

func NewVerifier(chains chain.Chains, cfg Config) *Verifier {
	return &Verifier{
		chains:       chains,
		cfg:          cfg,
		creation:     creation.NewResolver(chains.Parent),
		parentProxy:  proxy.NewResolver(chains.Parent),
		batchPosters: batchposter.NewReconciler(chains.Parent),
		logger:       logger.Named("verifier"),
	}
}

// run holds the state shared by the checks of one verification.
type run struct {
	rollup   common.Address
	info     *creation.Info
	core     rollup.Contracts
	warnings Warnings
}

type check struct {
	name string
	fn   func(ctx context.Context, r *run) error
}

func (v *Verifier) checks() []check {
	return []check{
		{"created addresses", v.checkCreatedAddresses},
		{"sequencer inbox rollup", v.checkSequencerInboxRollup},
		{"proxy admins", v.checkProxyAdmins},
		{"rollup owner", v.checkRollupOwner},
		{"proxy admin owner", v.checkProxyAdminOwner},
		{"upgrade executor", v.checkUpgradeExecutor},
		{"batch posters", v.checkBatchPosters},
		{"anytrust keysets", v.checkKeysets},
		{"activity", v.checkActivity},
		{"confirm period", v.checkConfirmPeriod},
		{"orbit chain id", v.checkOrbitChainID},
		{"token bridge", v.checkTokenBridge},
		{"deployment record", v.checkDeploymentRecord},
	}
}

// Verify audits the rollup and returns every inconsistency found, including
// reads the contracts reject. It fails only when the rollup has no creation
// record or the transport fails; in that case no warnings are returned.
func (v *Verifier) Verify(ctx context.Context, rollupAddress common.Address) (Warnings, error) {
	info, err := v.creation.Resolve(ctx, rollupAddress)
	if err != nil {
		return nil, err
	}

	core, err := rollup.Fetch(ctx, v.chains.Parent, rollupAddress)
	if err != nil {
		return nil, err
	}

	r := &run{rollup: rollupAddress, info: info, core: core, warnings: Warnings{}}
	for _, c := range v.checks() {
		before := len(r.warnings)
		if err := c.fn(ctx, r); err != nil {
			return nil, fmt.Errorf("%s check failed: %w", c.name, err)
		}
		v.logger.
			With("check", c.name).
			With("warnings", len(r.warnings)-before).
			Debug("check completed")
	}

	for _, w := range r.warnings {
		v.logger.With("rollup", rollupAddress.Hex()).Warn(w)
	}

	return r.warnings, nil
}

// createdAddresses returns the RollupCreated addresses or adds a warning
// naming what cannot be checked without them.
func (r *run) createdAddresses(what string) (*creation.CreatedAddresses, bool) {
	if r.info.Addresses == nil {
		r.warnings.add("%s not checked: RollupCreated event of %s could not be decoded", what, r.rollup.Hex())
		return nil, false
	}
	return r.info.Addresses, true
}

// upgradeExecutor returns the UpgradeExecutor announced at creation, if any.
func (r *run) upgradeExecutor() (common.Address, bool) {
	if r.info.Addresses == nil || r.info.Addresses.UpgradeExecutor == (common.Address{}) {
		return common.Address{}, false
	}
	return r.info.Addresses.UpgradeExecutor, true
}

type codeReader interface {
	GetBytecode(ctx context.Context, account common.Address) ([]byte, error)
}

// readFailed records a read rejected by the contract as a warning and
// returns nil. Transport failures are returned as is.
func (r *run) readFailed(ctx context.Context, reader codeReader, err error, name string, contract common.Address, fn *w3.Func) error {
	if !chain.IsCallFailure(err) {
		return err
	}

	code, codeErr := reader.GetBytecode(ctx, contract)
	if codeErr != nil {
		return codeErr
	}
	if len(code) == 0 {
		r.warnings.add("could not read %s on %s (%s): account has no code", fn.Signature, name, contract.Hex())
		return nil
	}
	r.warnings.add("could not read %s on %s (%s): %v", fn.Signature, name, contract.Hex(), err)
	return nil
}

// expectedOrbitChainID returns the chain id the rollup was created for, or
// nil when neither the creation parameters nor the chain config are known.
func (r *run) expectedOrbitChainID() *big.Int {
	if params := r.info.DeployParameters; params != nil && params.ChainID != nil && params.ChainID.Sign() > 0 {
		return params.ChainID
	}
	if cfg := r.info.ChainConfig; cfg != nil && cfg.ChainID != 0 {
		return new(big.Int).SetUint64(cfg.ChainID)
	}
	return nil
}

func formatAddresses(addresses []common.Address) string {
	if len(addresses) == 0 {
		return "[]"
	}
	parts := make([]string, len(addresses))
	for i, a := range addresses {
		parts[i] = a.Hex()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
