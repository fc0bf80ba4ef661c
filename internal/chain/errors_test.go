package chain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/lmittmann/w3"
	"github.com/stretchr/testify/assert"
)

type jsonRPCError struct {
	code    int
	message string
}

func (e *jsonRPCError) Error() string  { return e.message }
func (e *jsonRPCError) ErrorCode() int { return e.code }

func TestIsCallFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"empty result", fmt.Errorf("call owner(): %w", ErrNoData), true},
		{"undecodable result", fmt.Errorf("%w: owner()", ErrUndecodable), true},
		{"vm revert", fmt.Errorf("call failed: %w", vm.ErrExecutionReverted), true},
		{"revert reason", fmt.Errorf("%w: Ownable: caller is not the owner", w3.ErrEvmRevert), true},
		{"revert error code", &jsonRPCError{code: 3, message: "reverted"}, true},
		{"revert message", errors.New("execution reverted: custom error 0x82b42900"), true},
		{"other rpc error", &jsonRPCError{code: -32000, message: "header not found"}, false},
		{"transport", errors.New("dial tcp 127.0.0.1:8545: connect: connection refused"), false},
		{"deadline", fmt.Errorf("call failed: %w", context.DeadlineExceeded), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCallFailure(tt.err))
		})
	}
}
