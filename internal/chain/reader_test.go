package chain_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/compose-network/orbit-audit/internal/chain"
	"github.com/compose-network/orbit-audit/internal/chain/chaintest"
	"github.com/ethereum/go-ethereum/common"
	"github.com/lmittmann/w3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testEvent = w3.MustNewEvent("Ping(address indexed from, uint256 value)")
	testFunc  = w3.MustNewFunc("owner()", "address")
	contract  = common.HexToAddress("0x00000000000000000000000000000000000000c1")
)

func TestReaderGetLogsChunked(t *testing.T) {
	ctx := context.Background()
	c := chaintest.New(t, 1)
	c.MaxRange = 10
	for _, block := range []uint64{3, 15, 15, 27} {
		c.Emit(chaintest.LogSpec{
			Address:     contract,
			Event:       testEvent,
			Topics:      []common.Hash{chaintest.AddressTopic(common.HexToAddress("0x01"))},
			Data:        chaintest.Pack(t, []string{"uint256"}, big.NewInt(int64(block))),
			BlockNumber: block,
		})
	}
	c.SetHead(30)

	r := chain.NewReader(c, chain.LayerParent, chain.WithMaxBlockRange(10))
	logs, err := r.GetLogs(ctx, chain.LogQuery{Address: contract, Event: testEvent})
	require.NoError(t, err)

	require.Len(t, logs, 4)
	assert.Equal(t, uint64(3), logs[0].BlockNumber)
	assert.Equal(t, uint(0), logs[1].Index)
	assert.Equal(t, uint(1), logs[2].Index)
	assert.Equal(t, uint64(27), logs[3].BlockNumber)
	assert.Len(t, c.FilterQueries, 4)
}

func TestReaderGetLogsUnbounded(t *testing.T) {
	ctx := context.Background()
	c := chaintest.New(t, 1)
	c.Emit(chaintest.LogSpec{Address: contract, Event: testEvent, BlockNumber: 100})
	c.Emit(chaintest.LogSpec{Address: common.HexToAddress("0xdead"), Event: testEvent, BlockNumber: 100})

	r := chain.NewReader(c, chain.LayerParent)
	logs, err := r.GetLogs(ctx, chain.LogQuery{Address: contract, Event: testEvent})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Len(t, c.FilterQueries, 1)
	assert.Nil(t, c.FilterQueries[0].ToBlock)
}

func TestReaderGetLogsByTopic(t *testing.T) {
	ctx := context.Background()
	topic := common.HexToHash("0xabcdef")
	c := chaintest.New(t, 1)
	c.Emit(chaintest.LogSpec{Address: contract, Topic0: topic, BlockNumber: 5})
	c.Emit(chaintest.LogSpec{Address: contract, Event: testEvent, BlockNumber: 6})

	from := uint64(4)
	r := chain.NewReader(c, chain.LayerOrbit)
	logs, err := r.GetLogs(ctx, chain.LogQuery{Address: contract, Topic0: topic, FromBlock: &from})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, topic, logs[0].Topics[0])
}

func TestReaderReadContract(t *testing.T) {
	ctx := context.Background()
	owner := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	c := chaintest.New(t, 1)
	c.OnAddress(contract, testFunc, owner)

	r := chain.NewReader(c, chain.LayerParent)
	got, err := r.ReadAddress(ctx, contract, testFunc)
	require.NoError(t, err)
	assert.Equal(t, owner, got)

	_, err = r.ReadAddress(ctx, common.HexToAddress("0xbeef"), testFunc)
	require.ErrorIs(t, err, chaintest.ErrReverted)
}

func TestReaderChainIDCachesSuccessOnly(t *testing.T) {
	ctx := context.Background()
	c := chaintest.New(t, 42161)
	c.Err = errors.New("connection refused")

	r := chain.NewReader(c, chain.LayerOrbit)
	_, err := r.ChainID(ctx)
	require.Error(t, err)

	c.Err = nil
	id, err := r.ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42161), id.Int64())

	c.Err = errors.New("connection refused")
	id, err = r.ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42161), id.Int64())
}

func TestReaderStorage(t *testing.T) {
	ctx := context.Background()
	slot := common.HexToHash("0x01")
	value := chaintest.AddressSlot(common.HexToAddress("0x00000000000000000000000000000000000000bb"))
	c := chaintest.New(t, 1)
	c.SetStorage(contract, slot, value)

	r := chain.NewReader(c, chain.LayerParent)
	got, err := r.GetStorageAt(ctx, contract, slot)
	require.NoError(t, err)
	assert.Equal(t, value, got)

	empty, err := r.GetStorageAt(ctx, contract, common.HexToHash("0x02"))
	require.NoError(t, err)
	assert.Equal(t, common.Hash{}, empty)
}

func TestReaderGetBytecode(t *testing.T) {
	ctx := context.Background()
	c := chaintest.New(t, 1)
	c.SetCode(contract, []byte{0x60, 0x80, 0x60, 0x40})

	r := chain.NewReader(c, chain.LayerParent)
	code, err := r.GetBytecode(ctx, contract)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x80, 0x60, 0x40}, code)

	code, err = r.GetBytecode(ctx, common.HexToAddress("0xbeef"))
	require.NoError(t, err)
	assert.Empty(t, code)

	c.Err = errors.New("connection refused")
	_, err = r.GetBytecode(ctx, contract)
	require.Error(t, err)
}

func TestReaderReadContractUndecodable(t *testing.T) {
	ctx := context.Background()
	c := chaintest.New(t, 1)
	c.OnCall(contract, w3.MustNewFunc("owner()", "bool"), nil, true)

	r := chain.NewReader(c, chain.LayerParent)
	var owner [2]common.Address
	err := r.ReadContract(ctx, contract, w3.MustNewFunc("owner()", "address[2]"), nil, &owner)
	require.ErrorIs(t, err, chain.ErrUndecodable)
	assert.True(t, chain.IsCallFailure(err))
}
