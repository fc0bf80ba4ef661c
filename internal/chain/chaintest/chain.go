// Package chaintest provides an in-memory chain.Client for tests.
package chaintest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"testing"

	"github.com/compose-network/orbit-audit/internal/chain"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/lmittmann/w3"
	"github.com/stretchr/testify/require"
)

var _ chain.Client = (*Chain)(nil)

// ErrReverted is returned for calls without a registered response.
var ErrReverted = vm.ErrExecutionReverted

type callKey struct {
	to    common.Address
	input string
}

// Chain is a programmable in-memory chain.
type Chain struct {
	t testing.TB

	mu       sync.Mutex
	chainID  *big.Int
	head     uint64
	calls    map[callKey][]byte
	storage  map[common.Address]map[common.Hash]common.Hash
	code     map[common.Address][]byte
	logs     []types.Log
	txs      map[common.Hash]*types.Transaction
	receipts map[common.Hash]*types.Receipt
	nonce    uint64
	failing  map[common.Address]error

	// MaxRange makes FilterLogs reject ranges wider than this many blocks.
	MaxRange uint64
	// Err, when set, is returned by every method, simulating a transport failure.
	Err error

	FilterQueries []ethereum.FilterQuery
	CallCount     int
}

func New(t testing.TB, chainID uint64) *Chain {
	return &Chain{
		t:        t,
		chainID:  new(big.Int).SetUint64(chainID),
		calls:    make(map[callKey][]byte),
		storage:  make(map[common.Address]map[common.Hash]common.Hash),
		code:     make(map[common.Address][]byte),
		txs:      make(map[common.Hash]*types.Transaction),
		receipts: make(map[common.Hash]*types.Receipt),
		failing:  make(map[common.Address]error),
	}
}

func (c *Chain) SetHead(n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.head = n
}

func (c *Chain) Head() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.head
}

// OnCall registers the values returned by fn(args...) on to.
func (c *Chain) OnCall(to common.Address, fn *w3.Func, args []any, returns ...any) {
	c.t.Helper()

	input, err := fn.EncodeArgs(args...)
	require.NoError(c.t, err, "encode args of %s", fn.Signature)
	output, err := fn.Returns.Pack(returns...)
	require.NoError(c.t, err, "encode returns of %s", fn.Signature)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[callKey{to: to, input: hexutil.Encode(input)}] = output
	if _, ok := c.code[to]; !ok {
		c.code[to] = []byte{0x60, 0x80}
	}
}

// FailCallsTo makes every call to `to` fail with err.
func (c *Chain) FailCallsTo(to common.Address, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failing[to] = err
}

// OnAddress registers a view function without arguments returning addr.
func (c *Chain) OnAddress(to common.Address, fn *w3.Func, addr common.Address) {
	c.t.Helper()
	c.OnCall(to, fn, nil, addr)
}

func (c *Chain) SetStorage(account common.Address, slot, value common.Hash) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.storage[account] == nil {
		c.storage[account] = make(map[common.Hash]common.Hash)
	}
	c.storage[account][slot] = value
}

func (c *Chain) SetCode(account common.Address, code []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.code[account] = code
}

// LogSpec describes a log to append to the chain. Topic0 is used when Event
// is nil.
type LogSpec struct {
	Address     common.Address
	Event       *w3.Event
	Topic0      common.Hash
	Topics      []common.Hash
	Data        []byte
	BlockNumber uint64
	TxHash      common.Hash
}

// Emit appends a log. Log indexes increase within a block in emission order.
func (c *Chain) Emit(spec LogSpec) types.Log {
	c.mu.Lock()
	defer c.mu.Unlock()

	var index uint
	for _, l := range c.logs {
		if l.BlockNumber == spec.BlockNumber {
			index++
		}
	}

	topic0 := spec.Topic0
	if spec.Event != nil {
		topic0 = spec.Event.Topic0
	}
	log := types.Log{
		Address:     spec.Address,
		Topics:      append([]common.Hash{topic0}, spec.Topics...),
		Data:        spec.Data,
		BlockNumber: spec.BlockNumber,
		TxHash:      spec.TxHash,
		Index:       index,
	}
	c.logs = append(c.logs, log)
	if receipt, ok := c.receipts[spec.TxHash]; ok {
		receiptLog := log
		receipt.Logs = append(receipt.Logs, &receiptLog)
	}
	if spec.BlockNumber > c.head {
		c.head = spec.BlockNumber
	}
	return log
}

// AddTransaction stores a transaction sent to `to` with the given input,
// mined in blockNumber, with an empty successful receipt. Logs emitted later
// with the transaction's hash are appended to that receipt.
func (c *Chain) AddTransaction(to common.Address, input []byte, blockNumber uint64) *types.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    c.nonce,
		To:       &to,
		Data:     input,
		Gas:      1_000_000,
		GasPrice: big.NewInt(1),
	})
	c.nonce++

	c.txs[tx.Hash()] = tx
	c.receipts[tx.Hash()] = &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		TxHash:      tx.Hash(),
		BlockNumber: new(big.Int).SetUint64(blockNumber),
	}
	if blockNumber > c.head {
		c.head = blockNumber
	}
	return tx
}

func (c *Chain) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CallCount++

	if c.Err != nil {
		return nil, c.Err
	}
	if msg.To == nil {
		return nil, errors.New("contract creation calls are not supported")
	}
	if err, ok := c.failing[*msg.To]; ok {
		return nil, err
	}

	output, ok := c.calls[callKey{to: *msg.To, input: hexutil.Encode(msg.Data)}]
	if !ok {
		return nil, fmt.Errorf("%w: no response registered for %s on %s", ErrReverted, hexutil.Encode(msg.Data), msg.To.Hex())
	}
	return output, nil
}

func (c *Chain) FilterLogs(_ context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.FilterQueries = append(c.FilterQueries, query)

	if c.Err != nil {
		return nil, c.Err
	}

	from := uint64(0)
	if query.FromBlock != nil {
		from = query.FromBlock.Uint64()
	}
	to := c.head
	if query.ToBlock != nil {
		to = query.ToBlock.Uint64()
	}
	if c.MaxRange > 0 && to >= from && to-from+1 > c.MaxRange {
		return nil, fmt.Errorf("block range [%d, %d] exceeds limit of %d", from, to, c.MaxRange)
	}

	var out []types.Log
	for _, l := range c.logs {
		if l.BlockNumber < from || l.BlockNumber > to {
			continue
		}
		if !matchAddress(query.Addresses, l.Address) || !matchTopics(query.Topics, l.Topics) {
			continue
		}
		out = append(out, l)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].BlockNumber != out[j].BlockNumber {
			return out[i].BlockNumber < out[j].BlockNumber
		}
		return out[i].Index < out[j].Index
	})
	return out, nil
}

func (c *Chain) StorageAt(_ context.Context, account common.Address, key common.Hash, _ *big.Int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return nil, c.Err
	}
	value := c.storage[account][key]
	return value.Bytes(), nil
}

func (c *Chain) TransactionByHash(_ context.Context, hash common.Hash) (*types.Transaction, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return nil, false, c.Err
	}
	tx, ok := c.txs[hash]
	if !ok {
		return nil, false, ethereum.NotFound
	}
	return tx, false, nil
}

func (c *Chain) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return nil, c.Err
	}
	receipt, ok := c.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

func (c *Chain) CodeAt(_ context.Context, account common.Address, _ *big.Int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return nil, c.Err
	}
	return c.code[account], nil
}

func (c *Chain) BlockNumber(_ context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return 0, c.Err
	}
	return c.head, nil
}

func (c *Chain) ChainID(_ context.Context) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return nil, c.Err
	}
	return new(big.Int).Set(c.chainID), nil
}

func matchAddress(addresses []common.Address, addr common.Address) bool {
	if len(addresses) == 0 {
		return true
	}
	for _, a := range addresses {
		if a == addr {
			return true
		}
	}
	return false
}

func matchTopics(filter [][]common.Hash, topics []common.Hash) bool {
	if len(filter) > len(topics) {
		return false
	}
	for i, alternatives := range filter {
		if len(alternatives) == 0 {
			continue
		}
		found := false
		for _, t := range alternatives {
			if t == topics[i] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Pack ABI-encodes values according to the given solidity types.
func Pack(t testing.TB, typeNames []string, values ...any) []byte {
	t.Helper()

	args := make(abi.Arguments, 0, len(typeNames))
	for _, name := range typeNames {
		typ, err := abi.NewType(name, "", nil)
		require.NoError(t, err)
		args = append(args, abi.Argument{Type: typ})
	}
	data, err := args.Pack(values...)
	require.NoError(t, err)
	return data
}

// AddressTopic left-pads an address into an indexed topic.
func AddressTopic(addr common.Address) common.Hash {
	return chain.AddressTopic(addr)
}

// Uint64Topic encodes n as an indexed uint topic.
func Uint64Topic(n uint64) common.Hash {
	return chain.Uint64Topic(n)
}

// AddressSlot encodes addr as the value stored in a storage slot.
func AddressSlot(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}
