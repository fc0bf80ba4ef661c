package contracts

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/lmittmann/w3"
)

// Rollup creation
var (
	EventRollupInitialized = w3.MustNewEvent("RollupInitialized(bytes32 machineHash, uint256 chainId)")

	EventRollupCreated = w3.MustNewEvent(
		"RollupCreated(address indexed rollupAddress, address indexed nativeToken, address inboxAddress, address outbox, address rollupEventInbox, address challengeManager, address adminProxy, address sequencerInbox, address bridge, address upgradeExecutor, address validatorUtils, address validatorWalletCreator)",
	)
	EventRollupCreatedLegacy = w3.MustNewEvent(
		"RollupCreated(address indexed rollupAddress, address inboxAddress, address adminProxy, address sequencerInbox, address bridge)",
	)
)

// OpenZeppelin AccessControl, emitted by the UpgradeExecutor
var (
	EventRoleGranted = w3.MustNewEvent("RoleGranted(bytes32 indexed role, address indexed account, address indexed sender)")
	EventRoleRevoked = w3.MustNewEvent("RoleRevoked(bytes32 indexed role, address indexed account, address indexed sender)")
)

// EIP-1967 proxies
var (
	EventAdminChanged = w3.MustNewEvent("AdminChanged(address previousAdmin, address newAdmin)")
	EventUpgraded     = w3.MustNewEvent("Upgraded(address indexed implementation)")
)

// SequencerInbox
var (
	EventSetIsBatchPoster     = w3.MustNewEvent("SetIsBatchPoster(address indexed batchPoster, bool isBatchPoster)")
	EventOwnerFunctionCalled  = w3.MustNewEvent("OwnerFunctionCalled(uint256 indexed id)")
	EventSetValidKeyset       = w3.MustNewEvent("SetValidKeyset(bytes32 indexed keysetHash, bytes keysetBytes)")
	EventInvalidateKeysetHash = w3.MustNewEvent("InvalidateKeysetHash(bytes32 indexed keysetHash)")
)

// OwnerFunctionSetIsBatchPoster is the OwnerFunctionCalled id the
// SequencerInbox emits for setIsBatchPoster.
const OwnerFunctionSetIsBatchPoster = 1

// Activity topics. Only topic0 is matched, the payloads are never decoded.
var (
	TopicSequencerBatchDelivered = crypto.Keccak256Hash([]byte(
		"SequencerBatchDelivered(uint256,bytes32,bytes32,bytes32,uint256,(uint64,uint64,uint64,uint64),uint8)",
	))
	TopicNodeCreated = crypto.Keccak256Hash([]byte(
		"NodeCreated(uint64,bytes32,bytes32,bytes32,(((bytes32[2],uint64[2]),uint8),((bytes32[2],uint64[2]),uint8),uint64),bytes32,bytes32,uint256)",
	))
	TopicAssertionCreated = crypto.Keccak256Hash([]byte(
		"AssertionCreated(bytes32,bytes32,((bytes32,bytes32,(bytes32,uint256,address,uint64,uint64)),((bytes32[2],uint64[2]),uint8,bytes32),((bytes32[2],uint64[2]),uint8,bytes32)),bytes32,uint256,bytes32,uint256,address,uint64)",
	))
)
