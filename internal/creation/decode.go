package creation

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/compose-network/orbit-audit/internal/contracts"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/lmittmann/w3"
)

var errShapeMismatch = errors.New("shape mismatch")

// eventDecoder decodes one RollupCreated shape.
type eventDecoder struct {
	event  *w3.Event
	decode func(*types.Log) (*CreatedAddresses, error)
}

// eventDecoders lists the supported RollupCreated shapes, newest first.
var eventDecoders = []eventDecoder{
	{event: contracts.EventRollupCreated, decode: decodeRollupCreated},
	{event: contracts.EventRollupCreatedLegacy, decode: decodeRollupCreatedLegacy},
}

func decodeRollupCreated(log *types.Log) (*CreatedAddresses, error) {
	var a CreatedAddresses
	err := contracts.EventRollupCreated.DecodeArgs(log,
		&a.Rollup, &a.NativeToken, &a.Inbox, &a.Outbox, &a.RollupEventInbox, &a.ChallengeManager,
		&a.AdminProxy, &a.SequencerInbox, &a.Bridge, &a.UpgradeExecutor, &a.ValidatorUtils, &a.ValidatorWalletCreator,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func decodeRollupCreatedLegacy(log *types.Log) (*CreatedAddresses, error) {
	a := CreatedAddresses{Legacy: true}
	err := contracts.EventRollupCreatedLegacy.DecodeArgs(log, &a.Rollup, &a.Inbox, &a.AdminProxy, &a.SequencerInbox, &a.Bridge)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// DecodeCreatedAddresses scans receipt logs for the RollupCreated event of
// rollup. Logs that match no supported shape, or announce another rollup,
// are skipped. The returned address is the creator that emitted the event.
func DecodeCreatedAddresses(logs []*types.Log, rollup common.Address) (*CreatedAddresses, common.Address, bool) {
	for _, log := range logs {
		if len(log.Topics) == 0 {
			continue
		}
		for _, d := range eventDecoders {
			if log.Topics[0] != d.event.Topic0 {
				continue
			}
			addresses, err := d.decode(log)
			if err != nil || addresses.Rollup != rollup {
				continue
			}
			return addresses, log.Address, true
		}
	}
	return nil, common.Address{}, false
}

type maxTimeVariation struct {
	DelayBlocks   *big.Int
	FutureBlocks  *big.Int
	DelaySeconds  *big.Int
	FutureSeconds *big.Int
}

// rollupConfig mirrors the Config tuple field by field.
type rollupConfig struct {
	ConfirmPeriodBlocks            uint64
	ExtraChallengeTimeBlocks       uint64
	StakeToken                     common.Address
	BaseStake                      *big.Int
	WasmModuleRoot                 common.Hash
	Owner                          common.Address
	LoserStakeEscrow               common.Address
	ChainID                        *big.Int `abi:"chainId"`
	ChainConfig                    string
	GenesisBlockNum                uint64
	SequencerInboxMaxTimeVariation maxTimeVariation
}

type deployParamsV1_1 struct {
	Config                    rollupConfig
	Validators                []common.Address
	MaxDataSize               *big.Int
	NativeToken               common.Address
	DeployFactoriesToL2       bool
	MaxFeePerGasForRetryables *big.Int
	BatchPosters              []common.Address
	BatchPosterManager        common.Address
}

type deployParamsV1_0 struct {
	Config                    rollupConfig
	BatchPoster               common.Address
	Validators                []common.Address
	MaxDataSize               *big.Int
	NativeToken               common.Address
	DeployFactoriesToL2       bool
	MaxFeePerGasForRetryables *big.Int
}

type legacyArgs struct {
	Config             rollupConfig
	ExpectedRollupAddr common.Address
}

// DecodeDeployParameters decodes createRollup input against every known
// creator version, newest first, and returns the first that decodes.
func DecodeDeployParameters(input []byte) (*DeployParameters, error) {
	methods, err := contracts.LoadCreateRollupMethods()
	if err != nil {
		return nil, err
	}
	if len(input) < 4 {
		return nil, fmt.Errorf("input too short: %d bytes", len(input))
	}

	var errs []error
	for _, m := range methods {
		params, err := decodeDeployParameters(m, input)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", m.Version, err))
			continue
		}
		return params, nil
	}
	return nil, errors.Join(errs...)
}

func decodeDeployParameters(m contracts.CreateRollupMethod, input []byte) (*DeployParameters, error) {
	if !bytes.Equal(input[:4], m.Method.ID) {
		return nil, errShapeMismatch
	}
	values, err := m.Method.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, err
	}

	switch m.Version {
	case contracts.CreatorV1_1:
		var args struct{ DeployParams deployParamsV1_1 }
		if err := m.Method.Inputs.Copy(&args, values); err != nil {
			return nil, err
		}
		p := args.DeployParams
		params := fromConfig(m.Version, p.Config)
		params.Validators = p.Validators
		params.MaxDataSize = p.MaxDataSize
		params.NativeToken = p.NativeToken
		params.DeployFactoriesToL2 = p.DeployFactoriesToL2
		params.MaxFeePerGasForRetryables = p.MaxFeePerGasForRetryables
		params.BatchPosters = p.BatchPosters
		params.BatchPosterManager = p.BatchPosterManager
		return params, nil

	case contracts.CreatorV1_0:
		var args struct{ DeployParams deployParamsV1_0 }
		if err := m.Method.Inputs.Copy(&args, values); err != nil {
			return nil, err
		}
		p := args.DeployParams
		params := fromConfig(m.Version, p.Config)
		params.BatchPosters = []common.Address{p.BatchPoster}
		params.Validators = p.Validators
		params.MaxDataSize = p.MaxDataSize
		params.NativeToken = p.NativeToken
		params.DeployFactoriesToL2 = p.DeployFactoriesToL2
		params.MaxFeePerGasForRetryables = p.MaxFeePerGasForRetryables
		return params, nil

	case contracts.CreatorLegacy:
		var args legacyArgs
		if err := m.Method.Inputs.Copy(&args, values); err != nil {
			return nil, err
		}
		params := fromConfig(m.Version, args.Config)
		params.ExpectedRollupAddress = args.ExpectedRollupAddr
		return params, nil

	default:
		return nil, fmt.Errorf("unsupported creator version %s", m.Version)
	}
}

func fromConfig(version contracts.CreatorVersion, c rollupConfig) *DeployParameters {
	return &DeployParameters{
		Version:                  version,
		ConfirmPeriodBlocks:      c.ConfirmPeriodBlocks,
		ExtraChallengeTimeBlocks: c.ExtraChallengeTimeBlocks,
		StakeToken:               c.StakeToken,
		BaseStake:                c.BaseStake,
		WasmModuleRoot:           c.WasmModuleRoot,
		Owner:                    c.Owner,
		LoserStakeEscrow:         c.LoserStakeEscrow,
		ChainID:                  c.ChainID,
		ChainConfig:              c.ChainConfig,
		GenesisBlockNum:          c.GenesisBlockNum,
		MaxTimeVariation: MaxTimeVariation{
			DelayBlocks:   c.SequencerInboxMaxTimeVariation.DelayBlocks,
			FutureBlocks:  c.SequencerInboxMaxTimeVariation.FutureBlocks,
			DelaySeconds:  c.SequencerInboxMaxTimeVariation.DelaySeconds,
			FutureSeconds: c.SequencerInboxMaxTimeVariation.FutureSeconds,
		},
	}
}

func toConfig(p *DeployParameters) rollupConfig {
	return rollupConfig{
		ConfirmPeriodBlocks:      p.ConfirmPeriodBlocks,
		ExtraChallengeTimeBlocks: p.ExtraChallengeTimeBlocks,
		StakeToken:               p.StakeToken,
		BaseStake:                orZero(p.BaseStake),
		WasmModuleRoot:           p.WasmModuleRoot,
		Owner:                    p.Owner,
		LoserStakeEscrow:         p.LoserStakeEscrow,
		ChainID:                  orZero(p.ChainID),
		ChainConfig:              p.ChainConfig,
		GenesisBlockNum:          p.GenesisBlockNum,
		SequencerInboxMaxTimeVariation: maxTimeVariation{
			DelayBlocks:   orZero(p.MaxTimeVariation.DelayBlocks),
			FutureBlocks:  orZero(p.MaxTimeVariation.FutureBlocks),
			DelaySeconds:  orZero(p.MaxTimeVariation.DelaySeconds),
			FutureSeconds: orZero(p.MaxTimeVariation.FutureSeconds),
		},
	}
}

// EncodeCreateRollup builds the createRollup input a creator of the given
// version would receive for p.
func EncodeCreateRollup(version contracts.CreatorVersion, p *DeployParameters) ([]byte, error) {
	methods, err := contracts.LoadCreateRollupMethods()
	if err != nil {
		return nil, err
	}

	var method *abi.Method
	for i := range methods {
		if methods[i].Version == version {
			method = &methods[i].Method
		}
	}
	if method == nil {
		return nil, fmt.Errorf("unsupported creator version %s", version)
	}

	var packed []byte
	switch version {
	case contracts.CreatorV1_1:
		packed, err = method.Inputs.Pack(deployParamsV1_1{
			Config:                    toConfig(p),
			Validators:                orEmpty(p.Validators),
			MaxDataSize:               orZero(p.MaxDataSize),
			NativeToken:               p.NativeToken,
			DeployFactoriesToL2:       p.DeployFactoriesToL2,
			MaxFeePerGasForRetryables: orZero(p.MaxFeePerGasForRetryables),
			BatchPosters:              orEmpty(p.BatchPosters),
			BatchPosterManager:        p.BatchPosterManager,
		})
	case contracts.CreatorV1_0:
		var poster common.Address
		if len(p.BatchPosters) > 0 {
			poster = p.BatchPosters[0]
		}
		packed, err = method.Inputs.Pack(deployParamsV1_0{
			Config:                    toConfig(p),
			BatchPoster:               poster,
			Validators:                orEmpty(p.Validators),
			MaxDataSize:               orZero(p.MaxDataSize),
			NativeToken:               p.NativeToken,
			DeployFactoriesToL2:       p.DeployFactoriesToL2,
			MaxFeePerGasForRetryables: orZero(p.MaxFeePerGasForRetryables),
		})
	default:
		packed, err = method.Inputs.Pack(toConfig(p), p.ExpectedRollupAddress)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode createRollup %s: %w", version, err)
	}

	return append(append([]byte{}, method.ID...), packed...), nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

func orEmpty(v []common.Address) []common.Address {
	if v == nil {
		return []common.Address{}
	}
	return v
}
