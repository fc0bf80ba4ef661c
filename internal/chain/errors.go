package chain

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/lmittmann/w3"
)

var (
	// ErrNoData is returned when a call to an address without code (or a
	// function the contract does not implement) returns an empty result.
	ErrNoData = errors.New("empty call result")
	// ErrUndecodable is returned when a call result does not match the
	// declared return types.
	ErrUndecodable = errors.New("undecodable call result")
)

// revertErrorCode is the JSON-RPC error code geth-compatible nodes use for
// reverted calls.
const revertErrorCode = 3

// IsCallFailure reports whether err was caused by the called contract and not
// by the transport. Such failures describe chain state and must not abort an
// audit.
func IsCallFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNoData) || errors.Is(err, ErrUndecodable) ||
		errors.Is(err, vm.ErrExecutionReverted) || errors.Is(err, w3.ErrEvmRevert) {
		return true
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == revertErrorCode {
		return true
	}
	// Some providers drop the error code.
	return strings.Contains(err.Error(), vm.ErrExecutionReverted.Error())
}
