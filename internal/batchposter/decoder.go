package batchposter

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/compose-network/orbit-audit/internal/contracts"
	"github.com/ethereum/go-ethereum/common"
)

// maxWrapDepth bounds how many wrapper calls are unwrapped around a
// setIsBatchPoster call.
const maxWrapDepth = 4

var errUnknownSelector = errors.New("unknown selector")

// SetCall is a decoded setIsBatchPoster call.
type SetCall struct {
	BatchPoster   common.Address
	IsBatchPoster bool
}

// DecodeSetCalls extracts the setIsBatchPoster calls carried by a transaction
// input, in call order. The call may be sent directly or wrapped in
// UpgradeExecutor.executeCall, UpgradeExecutor.execute or a Safe
// execTransaction.
func DecodeSetCalls(input []byte) ([]SetCall, error) {
	return decodeSetCalls(input, 0)
}

func decodeSetCalls(input []byte, depth int) ([]SetCall, error) {
	if depth > maxWrapDepth {
		return nil, fmt.Errorf("call nested deeper than %d wrappers", maxWrapDepth)
	}
	if len(input) < 4 {
		return nil, fmt.Errorf("input too short: %d bytes", len(input))
	}

	switch [4]byte(input[:4]) {
	case contracts.FuncSetIsBatchPoster.Selector:
		var call SetCall
		if err := contracts.FuncSetIsBatchPoster.DecodeArgs(input, &call.BatchPoster, &call.IsBatchPoster); err != nil {
			return nil, fmt.Errorf("failed to decode setIsBatchPoster: %w", err)
		}
		return []SetCall{call}, nil

	case contracts.FuncExecuteCall.Selector:
		var (
			target common.Address
			data   []byte
		)
		if err := contracts.FuncExecuteCall.DecodeArgs(input, &target, &data); err != nil {
			return nil, fmt.Errorf("failed to decode executeCall: %w", err)
		}
		return decodeSetCalls(data, depth+1)

	case contracts.FuncExecute.Selector:
		var (
			upgrade common.Address
			data    []byte
		)
		if err := contracts.FuncExecute.DecodeArgs(input, &upgrade, &data); err != nil {
			return nil, fmt.Errorf("failed to decode execute: %w", err)
		}
		return decodeSetCalls(data, depth+1)

	case contracts.FuncExecTransaction.Selector:
		var (
			to             common.Address
			value          *big.Int
			data           []byte
			operation      uint8
			safeTxGas      *big.Int
			baseGas        *big.Int
			gasPrice       *big.Int
			gasToken       common.Address
			refundReceiver common.Address
			signatures     []byte
		)
		if err := contracts.FuncExecTransaction.DecodeArgs(input,
			&to, &value, &data, &operation, &safeTxGas, &baseGas, &gasPrice, &gasToken, &refundReceiver, &signatures,
		); err != nil {
			return nil, fmt.Errorf("failed to decode execTransaction: %w", err)
		}
		return decodeSetCalls(data, depth+1)

	default:
		return nil, fmt.Errorf("%w 0x%x", errUnknownSelector, input[:4])
	}
}
