package contracts

import "github.com/lmittmann/w3"

// Rollup core
var (
	FuncBridge              = w3.MustNewFunc("bridge()", "address")
	FuncInbox               = w3.MustNewFunc("inbox()", "address")
	FuncSequencerInbox      = w3.MustNewFunc("sequencerInbox()", "address")
	FuncOutbox              = w3.MustNewFunc("outbox()", "address")
	FuncRollupEventInbox    = w3.MustNewFunc("rollupEventInbox()", "address")
	FuncChallengeManager    = w3.MustNewFunc("challengeManager()", "address")
	FuncConfirmPeriodBlocks = w3.MustNewFunc("confirmPeriodBlocks()", "uint64")
	FuncOwner               = w3.MustNewFunc("owner()", "address")
	FuncRollup              = w3.MustNewFunc("rollup()", "address")
)

// SequencerInbox
var (
	FuncIsBatchPoster      = w3.MustNewFunc("isBatchPoster(address)", "bool")
	FuncSetIsBatchPoster   = w3.MustNewFunc("setIsBatchPoster(address addr, bool isBatchPoster_)", "")
	FuncIsValidKeysetHash  = w3.MustNewFunc("isValidKeysetHash(bytes32)", "bool")
	FuncBatchPosterManager = w3.MustNewFunc("batchPosterManager()", "address")
)

// UpgradeExecutor and the multisig wallets commonly holding its executor role
var (
	FuncHasRole         = w3.MustNewFunc("hasRole(bytes32,address)", "bool")
	FuncExecuteCall     = w3.MustNewFunc("executeCall(address target, bytes targetCallData)", "")
	FuncExecute         = w3.MustNewFunc("execute(address upgrade, bytes upgradeCallData)", "")
	FuncExecTransaction = w3.MustNewFunc(
		"execTransaction(address to, uint256 value, bytes data, uint8 operation, uint256 safeTxGas, uint256 baseGas, uint256 gasPrice, address gasToken, address refundReceiver, bytes signatures)",
		"bool",
	)
)

// ArbOwnerPublic precompile
var (
	FuncIsChainOwner = w3.MustNewFunc("isChainOwner(address)", "bool")
)

// L1AtomicTokenBridgeCreator
var (
	FuncInboxToL1Deployment = w3.MustNewFunc(
		"inboxToL1Deployment(address)",
		"address router, address standardGateway, address customGateway, address wethGateway, address weth",
	)
	FuncInboxToL2Deployment = w3.MustNewFunc(
		"inboxToL2Deployment(address)",
		"address router, address standardGateway, address customGateway, address wethGateway, address weth, address proxyAdmin, address beaconProxyFactory, address upgradeExecutor, address multicall",
	)
	FuncL1Multicall = w3.MustNewFunc("l1Multicall()", "address")

	FuncCanonicalL2Router             = w3.MustNewFunc("getCanonicalL2RouterAddress(uint256)", "address")
	FuncCanonicalL2StandardGateway    = w3.MustNewFunc("getCanonicalL2StandardGatewayAddress(uint256)", "address")
	FuncCanonicalL2CustomGateway      = w3.MustNewFunc("getCanonicalL2CustomGatewayAddress(uint256)", "address")
	FuncCanonicalL2WethGateway        = w3.MustNewFunc("getCanonicalL2WethGatewayAddress(uint256)", "address")
	FuncCanonicalL2Weth               = w3.MustNewFunc("getCanonicalL2WethAddress(uint256)", "address")
	FuncCanonicalL2ProxyAdmin         = w3.MustNewFunc("getCanonicalL2ProxyAdminAddress(uint256)", "address")
	FuncCanonicalL2BeaconProxyFactory = w3.MustNewFunc("getCanonicalL2BeaconProxyFactoryAddress(uint256)", "address")
	FuncCanonicalL2UpgradeExecutor    = w3.MustNewFunc("getCanonicalL2UpgradeExecutorAddress(uint256)", "address")
	FuncCanonicalL2Multicall          = w3.MustNewFunc("getCanonicalL2Multicall(uint256)", "address")
)

// Token bridge routers and gateways (both chains)
var (
	FuncCounterpartGateway   = w3.MustNewFunc("counterpartGateway()", "address")
	FuncRouter               = w3.MustNewFunc("router()", "address")
	FuncDefaultGateway       = w3.MustNewFunc("defaultGateway()", "address")
	FuncBeaconProxyFactory   = w3.MustNewFunc("beaconProxyFactory()", "address")
	FuncL2BeaconProxyFactory = w3.MustNewFunc("l2BeaconProxyFactory()", "address")
)
