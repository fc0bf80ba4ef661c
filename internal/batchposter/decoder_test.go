package batchposter

import (
	"math/big"
	"testing"

	"github.com/compose-network/orbit-audit/internal/contracts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/lmittmann/w3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, fn *w3.Func, args ...any) []byte {
	t.Helper()
	input, err := fn.EncodeArgs(args...)
	require.NoError(t, err)
	return input
}

func TestDecodeSetCalls(t *testing.T) {
	poster := common.HexToAddress("0x00000000000000000000000000000000000000b0")
	inbox := common.HexToAddress("0x00000000000000000000000000000000000000c0")

	direct := encode(t, contracts.FuncSetIsBatchPoster, poster, true)
	viaExecutor := encode(t, contracts.FuncExecuteCall, inbox, direct)
	viaAction := encode(t, contracts.FuncExecute, inbox, direct)
	viaSafe := encode(t, contracts.FuncExecTransaction,
		inbox, big.NewInt(0), viaExecutor, uint8(0), big.NewInt(0), big.NewInt(0), big.NewInt(0),
		common.Address{}, common.Address{}, []byte{0x01},
	)

	want := []SetCall{{BatchPoster: poster, IsBatchPoster: true}}
	for name, input := range map[string][]byte{
		"direct":       direct,
		"executeCall":  viaExecutor,
		"execute":      viaAction,
		"safe wrapper": viaSafe,
	} {
		t.Run(name, func(t *testing.T) {
			calls, err := DecodeSetCalls(input)
			require.NoError(t, err)
			assert.Equal(t, want, calls)
		})
	}
}

func TestDecodeSetCallsFailures(t *testing.T) {
	_, err := DecodeSetCalls([]byte{0x01, 0x02})
	require.Error(t, err)

	_, err = DecodeSetCalls([]byte{0xde, 0xad, 0xbe, 0xef})
	require.ErrorIs(t, err, errUnknownSelector)

	truncated := encode(t, contracts.FuncSetIsBatchPoster, common.Address{}, true)
	_, err = DecodeSetCalls(truncated[:20])
	require.Error(t, err)

	nested := encode(t, contracts.FuncSetIsBatchPoster, common.Address{}, false)
	for i := 0; i <= maxWrapDepth; i++ {
		nested = encode(t, contracts.FuncExecuteCall, common.Address{}, nested)
	}
	_, err = DecodeSetCalls(nested)
	require.Error(t, err)
}
