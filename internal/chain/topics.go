package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// AddressTopic left-pads an address into an indexed topic.
func AddressTopic(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

// Uint64Topic encodes n as an indexed uint topic.
func Uint64Topic(n uint64) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(n))
}
