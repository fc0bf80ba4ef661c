// Package orbittest seeds consistent orbit rollup deployments onto in-memory
// chains.
package orbittest

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"testing"

	"github.com/compose-network/orbit-audit/internal/chain/chaintest"
	"github.com/compose-network/orbit-audit/internal/contracts"
	"github.com/compose-network/orbit-audit/internal/creation"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

const (
	CreationBlock = 100
	ActivityBlock = 900
	HeadBlock     = 1000
)

// Address returns a deterministic fixture address.
func Address(n uint64) common.Address {
	return common.BigToAddress(new(big.Int).SetUint64(0x10000 + n))
}

// Rollup describes a rollup deployment on a parent chain.
type Rollup struct {
	ChainID uint64
	Version contracts.CreatorVersion

	Creator                common.Address
	Rollup                 common.Address
	Bridge                 common.Address
	Inbox                  common.Address
	SequencerInbox         common.Address
	Outbox                 common.Address
	RollupEventInbox       common.Address
	ChallengeManager       common.Address
	ProxyAdmin             common.Address
	UpgradeExecutor        common.Address
	ValidatorUtils         common.Address
	ValidatorWalletCreator common.Address
	NativeToken            common.Address
	Owner                  common.Address

	BatchPosters        []common.Address
	ConfirmPeriodBlocks uint64
	AnyTrust            bool
	// Keysets are posted in order when AnyTrust is set.
	Keysets [][]byte
	// Inactive skips batch and assertion events.
	Inactive bool

	// CreationTx is set by Deploy.
	CreationTx common.Hash
}

// NewRollup returns a consistent v1.1 rollup description for an orbit chain.
func NewRollup(chainID uint64) *Rollup {
	return &Rollup{
		ChainID:                chainID,
		Version:                contracts.CreatorV1_1,
		Creator:                Address(1),
		Rollup:                 Address(2),
		Bridge:                 Address(3),
		Inbox:                  Address(4),
		SequencerInbox:         Address(5),
		Outbox:                 Address(6),
		RollupEventInbox:       Address(7),
		ChallengeManager:       Address(8),
		ProxyAdmin:             Address(9),
		UpgradeExecutor:        Address(10),
		ValidatorUtils:         Address(11),
		ValidatorWalletCreator: Address(12),
		Owner:                  Address(13),
		BatchPosters:           []common.Address{Address(14)},
		ConfirmPeriodBlocks:    45818,
		Keysets:                [][]byte{Keyset(1, bytesOf(0x01, 97))},
	}
}

// Keyset serializes a keyset with the given keys.
func Keyset(assumedHonest uint64, keys ...[]byte) []byte {
	out := binary.BigEndian.AppendUint64(nil, assumedHonest)
	out = binary.BigEndian.AppendUint64(out, uint64(len(keys)))
	for _, key := range keys {
		out = binary.BigEndian.AppendUint16(out, uint16(len(key)))
		out = append(out, key...)
	}
	return out
}

// KeysetHash is the hash under which a keyset is registered in the fixture.
func KeysetHash(keyset []byte) common.Hash {
	return crypto.Keccak256Hash(keyset)
}

func bytesOf(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

// ZeroKey is an all-zero BLS public key.
func ZeroKey() []byte {
	return make([]byte, 97)
}

// ChainConfig returns the serialized chain config of the rollup.
func (r *Rollup) ChainConfig() string {
	return fmt.Sprintf(
		`{"chainId":%d,"homesteadBlock":0,"arbitrum":{"EnableArbOS":true,"AllowDebugPrecompiles":false,"DataAvailabilityCommittee":%t,"InitialArbOSVersion":32,"InitialChainOwner":"%s","GenesisBlockNum":0}}`,
		r.ChainID, r.AnyTrust, r.Owner.Hex(),
	)
}

// DeployParameters returns the createRollup arguments of the rollup.
func (r *Rollup) DeployParameters() *creation.DeployParameters {
	return &creation.DeployParameters{
		Version:                   r.Version,
		ConfirmPeriodBlocks:       r.ConfirmPeriodBlocks,
		ExtraChallengeTimeBlocks:  200,
		StakeToken:                Address(20),
		BaseStake:                 big.NewInt(1e17),
		WasmModuleRoot:            common.HexToHash("0x8b104a2e80ac6165dc58b9048de12f301d70b02a0ab51396c22b4b4b802a16a4"),
		Owner:                     r.Owner,
		LoserStakeEscrow:          Address(21),
		ChainID:                   new(big.Int).SetUint64(r.ChainID),
		ChainConfig:               r.ChainConfig(),
		MaxTimeVariation:          creation.MaxTimeVariation{DelayBlocks: big.NewInt(5760), FutureBlocks: big.NewInt(12), DelaySeconds: big.NewInt(86400), FutureSeconds: big.NewInt(3600)},
		Validators:                []common.Address{Address(22)},
		BatchPosters:              r.BatchPosters,
		BatchPosterManager:        r.Owner,
		MaxDataSize:               big.NewInt(117964),
		NativeToken:               r.NativeToken,
		MaxFeePerGasForRetryables: big.NewInt(1e8),
		ExpectedRollupAddress:     r.Rollup,
	}
}

// Deploy seeds the parent chain with the creation transaction, the wiring
// and ownership of every contract, the role and batch poster history and
// recent activity.
func (r *Rollup) Deploy(t testing.TB, c *chaintest.Chain) {
	t.Helper()

	input, err := creation.EncodeCreateRollup(r.Version, r.DeployParameters())
	require.NoError(t, err)

	tx := c.AddTransaction(r.Creator, input, CreationBlock)
	r.CreationTx = tx.Hash()

	c.Emit(chaintest.LogSpec{
		Address:     r.Rollup,
		Event:       contracts.EventRollupInitialized,
		Data:        chaintest.Pack(t, []string{"bytes32", "uint256"}, [32]byte{}, new(big.Int).SetUint64(r.ChainID)),
		BlockNumber: CreationBlock,
		TxHash:      tx.Hash(),
	})
	r.emitRollupCreated(t, c)

	// The creator enables the genesis batch posters inside the creation transaction.
	for _, poster := range r.BatchPosters {
		c.Emit(chaintest.LogSpec{
			Address:     r.SequencerInbox,
			Event:       contracts.EventOwnerFunctionCalled,
			Topics:      []common.Hash{chaintest.Uint64Topic(contracts.OwnerFunctionSetIsBatchPoster)},
			BlockNumber: CreationBlock,
			TxHash:      tx.Hash(),
		})
		c.OnCall(r.SequencerInbox, contracts.FuncIsBatchPoster, []any{poster}, true)
	}

	c.OnAddress(r.Rollup, contracts.FuncBridge, r.Bridge)
	c.OnAddress(r.Rollup, contracts.FuncInbox, r.Inbox)
	c.OnAddress(r.Rollup, contracts.FuncSequencerInbox, r.SequencerInbox)
	c.OnAddress(r.Rollup, contracts.FuncOutbox, r.Outbox)
	c.OnAddress(r.Rollup, contracts.FuncRollupEventInbox, r.RollupEventInbox)
	c.OnAddress(r.Rollup, contracts.FuncChallengeManager, r.ChallengeManager)
	c.OnCall(r.Rollup, contracts.FuncConfirmPeriodBlocks, nil, r.ConfirmPeriodBlocks)
	c.OnAddress(r.SequencerInbox, contracts.FuncRollup, r.Rollup)

	c.SetStorage(r.Rollup, contracts.AdminSlot, chaintest.AddressSlot(r.UpgradeExecutor))
	for _, p := range []common.Address{r.Bridge, r.Inbox, r.SequencerInbox, r.Outbox, r.RollupEventInbox, r.ChallengeManager, r.UpgradeExecutor} {
		c.SetStorage(p, contracts.AdminSlot, chaintest.AddressSlot(r.ProxyAdmin))
		c.SetStorage(p, contracts.ImplementationSlot, chaintest.AddressSlot(Address(100)))
	}
	c.OnAddress(r.ProxyAdmin, contracts.FuncOwner, r.UpgradeExecutor)

	r.grantRole(c, contracts.AdminRole, r.UpgradeExecutor)
	r.grantRole(c, contracts.ExecutorRole, r.Owner)

	if r.AnyTrust {
		for i, keyset := range r.Keysets {
			hash := KeysetHash(keyset)
			c.Emit(chaintest.LogSpec{
				Address:     r.SequencerInbox,
				Event:       contracts.EventSetValidKeyset,
				Topics:      []common.Hash{hash},
				Data:        chaintest.Pack(t, []string{"bytes"}, keyset),
				BlockNumber: CreationBlock + 1 + uint64(i),
			})
			c.OnCall(r.SequencerInbox, contracts.FuncIsValidKeysetHash, []any{hash}, true)
		}
	}

	if !r.Inactive {
		c.Emit(chaintest.LogSpec{Address: r.SequencerInbox, Topic0: contracts.TopicSequencerBatchDelivered, BlockNumber: ActivityBlock})
		c.Emit(chaintest.LogSpec{Address: r.Rollup, Topic0: contracts.TopicNodeCreated, BlockNumber: ActivityBlock})
	}
	c.SetHead(HeadBlock)
}

func (r *Rollup) emitRollupCreated(t testing.TB, c *chaintest.Chain) {
	if r.Version == contracts.CreatorLegacy {
		c.Emit(chaintest.LogSpec{
			Address: r.Creator,
			Event:   contracts.EventRollupCreatedLegacy,
			Topics:  []common.Hash{chaintest.AddressTopic(r.Rollup)},
			Data: chaintest.Pack(t, []string{"address", "address", "address", "address"},
				r.Inbox, r.ProxyAdmin, r.SequencerInbox, r.Bridge),
			BlockNumber: CreationBlock,
			TxHash:      r.CreationTx,
		})
		return
	}

	c.Emit(chaintest.LogSpec{
		Address: r.Creator,
		Event:   contracts.EventRollupCreated,
		Topics:  []common.Hash{chaintest.AddressTopic(r.Rollup), chaintest.AddressTopic(r.NativeToken)},
		Data: chaintest.Pack(t,
			[]string{"address", "address", "address", "address", "address", "address", "address", "address", "address", "address"},
			r.Inbox, r.Outbox, r.RollupEventInbox, r.ChallengeManager, r.ProxyAdmin,
			r.SequencerInbox, r.Bridge, r.UpgradeExecutor, r.ValidatorUtils, r.ValidatorWalletCreator,
		),
		BlockNumber: CreationBlock,
		TxHash:      r.CreationTx,
	})
}

func (r *Rollup) grantRole(c *chaintest.Chain, role common.Hash, account common.Address) {
	c.Emit(chaintest.LogSpec{
		Address:     r.UpgradeExecutor,
		Event:       contracts.EventRoleGranted,
		Topics:      []common.Hash{role, chaintest.AddressTopic(account), chaintest.AddressTopic(r.Creator)},
		BlockNumber: CreationBlock,
		TxHash:      r.CreationTx,
	})
	c.OnCall(r.UpgradeExecutor, contracts.FuncHasRole, []any{role, account}, true)
}
