package contracts

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// EIP-1967 storage slots.
var (
	AdminSlot          = common.HexToHash("0xb53127684a568b3173ae13b9f8a6016e243e63b6e8ee1178d6a717850b5d6103")
	ImplementationSlot = common.HexToHash("0x360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc")
)

// UpgradeExecutor roles.
var (
	AdminRole    = crypto.Keccak256Hash([]byte("ADMIN_ROLE"))
	ExecutorRole = crypto.Keccak256Hash([]byte("EXECUTOR_ROLE"))
)

// ArbOwnerPublicAddress is the ArbOwnerPublic precompile on every orbit chain.
var ArbOwnerPublicAddress = common.HexToAddress("0x000000000000000000000000000000000000006b")

// RoleName returns a readable name for well-known roles and the hex hash otherwise.
func RoleName(role common.Hash) string {
	switch role {
	case AdminRole:
		return "ADMIN_ROLE"
	case ExecutorRole:
		return "EXECUTOR_ROLE"
	default:
		return role.Hex()
	}
}
