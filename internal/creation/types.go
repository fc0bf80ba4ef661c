package creation

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/compose-network/orbit-audit/internal/contracts"
	"github.com/ethereum/go-ethereum/common"
)

// Info describes how a rollup was created. Addresses, DeployParameters and
// ChainConfig are nil when no supported shape could decode them.
type Info struct {
	RollupCreatorAddress common.Address    `json:"rollupCreatorAddress" yaml:"rollupCreatorAddress"`
	TransactionHash      common.Hash       `json:"transactionHash" yaml:"transactionHash"`
	BlockNumber          uint64            `json:"blockNumber" yaml:"blockNumber"`
	Addresses            *CreatedAddresses `json:"addresses,omitempty" yaml:"addresses,omitempty"`
	DeployParameters     *DeployParameters `json:"deployParameters,omitempty" yaml:"deployParameters,omitempty"`
	ChainConfig          *ChainConfig      `json:"chainConfig,omitempty" yaml:"chainConfig,omitempty"`
}

// CreatedAddresses are the contracts announced by RollupCreated. Legacy
// creators announce only rollup, inbox, admin proxy, sequencer inbox and
// bridge; the other fields stay zero.
type CreatedAddresses struct {
	Rollup                 common.Address `json:"rollup" yaml:"rollup"`
	NativeToken            common.Address `json:"nativeToken" yaml:"nativeToken"`
	Inbox                  common.Address `json:"inbox" yaml:"inbox"`
	Outbox                 common.Address `json:"outbox" yaml:"outbox"`
	RollupEventInbox       common.Address `json:"rollupEventInbox" yaml:"rollupEventInbox"`
	ChallengeManager       common.Address `json:"challengeManager" yaml:"challengeManager"`
	AdminProxy             common.Address `json:"adminProxy" yaml:"adminProxy"`
	SequencerInbox         common.Address `json:"sequencerInbox" yaml:"sequencerInbox"`
	Bridge                 common.Address `json:"bridge" yaml:"bridge"`
	UpgradeExecutor        common.Address `json:"upgradeExecutor" yaml:"upgradeExecutor"`
	ValidatorUtils         common.Address `json:"validatorUtils" yaml:"validatorUtils"`
	ValidatorWalletCreator common.Address `json:"validatorWalletCreator" yaml:"validatorWalletCreator"`
	Legacy                 bool           `json:"legacy" yaml:"legacy"`
}

type MaxTimeVariation struct {
	DelayBlocks   *big.Int `json:"delayBlocks" yaml:"delayBlocks"`
	FutureBlocks  *big.Int `json:"futureBlocks" yaml:"futureBlocks"`
	DelaySeconds  *big.Int `json:"delaySeconds" yaml:"delaySeconds"`
	FutureSeconds *big.Int `json:"futureSeconds" yaml:"futureSeconds"`
}

// DeployParameters are the createRollup arguments, normalized across creator
// versions. BatchPosters holds the single v1.0 batch poster as well.
type DeployParameters struct {
	Version                   contracts.CreatorVersion `json:"version" yaml:"version"`
	ConfirmPeriodBlocks       uint64                   `json:"confirmPeriodBlocks" yaml:"confirmPeriodBlocks"`
	ExtraChallengeTimeBlocks  uint64                   `json:"extraChallengeTimeBlocks" yaml:"extraChallengeTimeBlocks"`
	StakeToken                common.Address           `json:"stakeToken" yaml:"stakeToken"`
	BaseStake                 *big.Int                 `json:"baseStake" yaml:"baseStake"`
	WasmModuleRoot            common.Hash              `json:"wasmModuleRoot" yaml:"wasmModuleRoot"`
	Owner                     common.Address           `json:"owner" yaml:"owner"`
	LoserStakeEscrow          common.Address           `json:"loserStakeEscrow" yaml:"loserStakeEscrow"`
	ChainID                   *big.Int                 `json:"chainId" yaml:"chainId"`
	ChainConfig               string                   `json:"chainConfig" yaml:"chainConfig"`
	GenesisBlockNum           uint64                   `json:"genesisBlockNum" yaml:"genesisBlockNum"`
	MaxTimeVariation          MaxTimeVariation         `json:"sequencerInboxMaxTimeVariation" yaml:"sequencerInboxMaxTimeVariation"`
	Validators                []common.Address         `json:"validators,omitempty" yaml:"validators,omitempty"`
	BatchPosters              []common.Address         `json:"batchPosters,omitempty" yaml:"batchPosters,omitempty"`
	BatchPosterManager        common.Address           `json:"batchPosterManager" yaml:"batchPosterManager"`
	MaxDataSize               *big.Int                 `json:"maxDataSize,omitempty" yaml:"maxDataSize,omitempty"`
	NativeToken               common.Address           `json:"nativeToken" yaml:"nativeToken"`
	DeployFactoriesToL2       bool                     `json:"deployFactoriesToL2" yaml:"deployFactoriesToL2"`
	MaxFeePerGasForRetryables *big.Int                 `json:"maxFeePerGasForRetryables,omitempty" yaml:"maxFeePerGasForRetryables,omitempty"`
	ExpectedRollupAddress     common.Address           `json:"expectedRollupAddress" yaml:"expectedRollupAddress"`
}

// ChainConfig is the part of the serialized orbit chain config inspected here.
type ChainConfig struct {
	ChainID  uint64         `json:"chainId" yaml:"chainId"`
	Arbitrum ArbitrumParams `json:"arbitrum" yaml:"arbitrum"`
}

type ArbitrumParams struct {
	EnableArbOS               bool           `json:"EnableArbOS" yaml:"enableArbOS"`
	AllowDebugPrecompiles     bool           `json:"AllowDebugPrecompiles" yaml:"allowDebugPrecompiles"`
	DataAvailabilityCommittee bool           `json:"DataAvailabilityCommittee" yaml:"dataAvailabilityCommittee"`
	InitialArbOSVersion       uint64         `json:"InitialArbOSVersion" yaml:"initialArbOSVersion"`
	InitialChainOwner         common.Address `json:"InitialChainOwner" yaml:"initialChainOwner"`
	GenesisBlockNum           uint64         `json:"GenesisBlockNum" yaml:"genesisBlockNum"`
	MaxCodeSize               uint64         `json:"MaxCodeSize,omitempty" yaml:"maxCodeSize,omitempty"`
	MaxInitCodeSize           uint64         `json:"MaxInitCodeSize,omitempty" yaml:"maxInitCodeSize,omitempty"`
}

// IsAnyTrust reports whether the chain posts data to a data availability
// committee.
func (c *ChainConfig) IsAnyTrust() bool {
	return c != nil && c.Arbitrum.DataAvailabilityCommittee
}

// ParseChainConfig parses a serialized chain config.
func ParseChainConfig(raw string) (*ChainConfig, error) {
	var cfg ChainConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse chain config: %w", err)
	}
	return &cfg, nil
}

// IsAnyTrust reports whether the creation parameters describe an AnyTrust
// chain. It is false when the chain config is unknown.
func (i *Info) IsAnyTrust() bool {
	return i != nil && i.ChainConfig.IsAnyTrust()
}
