package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/compose-network/orbit-audit/internal/logger"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/lmittmann/w3"
)

type Layer string

const (
	LayerParent Layer = "parent"
	LayerOrbit  Layer = "orbit"
)

type (
	// Reader dispatches contract reads, log queries and storage reads to the
	// client of a single chain layer.
	Reader struct {
		client        Client
		layer         Layer
		maxBlockRange uint64
		fromBlock     uint64

		chainIDMu sync.Mutex
		chainID   *big.Int

		logger *slog.Logger
	}

	Option func(*Reader)

	// LogQuery selects logs of a single event emitted by a single contract.
	// Topics are matched after topic0, which is taken from Event or, for
	// events that are never decoded, from Topic0. ToBlock nil means latest.
	LogQuery struct {
		Address   common.Address
		Event     *w3.Event
		Topic0    common.Hash
		Topics    [][]common.Hash
		FromBlock *uint64
		ToBlock   *uint64
	}
)

// WithMaxBlockRange splits log queries into chunks of at most n blocks.
func WithMaxBlockRange(n uint64) Option {
	return func(r *Reader) { r.maxBlockRange = n }
}

// WithFromBlock sets the default first block for historical log queries.
func WithFromBlock(n uint64) Option {
	return func(r *Reader) { r.fromBlock = n }
}

func NewReader(client Client, layer Layer, opts ...Option) *Reader {
	r := &Reader{
		client: client,
		layer:  layer,
		logger: logger.Named("chain_reader").With("layer", layer),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reader) Layer() Layer {
	return r.layer
}

func (r *Reader) MaxBlockRange() uint64 {
	return r.maxBlockRange
}

func (r *Reader) FromBlock() uint64 {
	return r.fromBlock
}

// ChainID returns the chain ID. The first successful read is cached.
func (r *Reader) ChainID(ctx context.Context) (*big.Int, error) {
	r.chainIDMu.Lock()
	defer r.chainIDMu.Unlock()

	if r.chainID == nil {
		chainID, err := r.client.ChainID(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s chain ID: %w", r.layer, err)
		}
		r.chainID = chainID
	}
	return new(big.Int).Set(r.chainID), nil
}

// ReadContract calls fn on the contract at to and decodes the returned values into returns.
func (r *Reader) ReadContract(ctx context.Context, to common.Address, fn *w3.Func, args []any, returns ...any) error {
	input, err := fn.EncodeArgs(args...)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", fn.Signature, err)
	}

	output, err := r.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: input}, nil)
	if err != nil {
		return fmt.Errorf("%s call %s on %s failed: %w", r.layer, fn.Signature, to.Hex(), err)
	}
	if len(output) == 0 {
		return fmt.Errorf("%s call %s on %s returned no data: %w", r.layer, fn.Signature, to.Hex(), ErrNoData)
	}

	if err := fn.DecodeReturns(output, returns...); err != nil {
		return fmt.Errorf("%w: %s returned by %s: %w", ErrUndecodable, fn.Signature, to.Hex(), err)
	}

	return nil
}

// ReadAddress is a shorthand for view functions returning a single address.
func (r *Reader) ReadAddress(ctx context.Context, to common.Address, fn *w3.Func, args ...any) (common.Address, error) {
	var addr common.Address
	if err := r.ReadContract(ctx, to, fn, args, &addr); err != nil {
		return common.Address{}, err
	}
	return addr, nil
}

// GetLogs returns every log matching q in chain order. When the reader has a
// block range limit the range is split into consecutive chunks.
func (r *Reader) GetLogs(ctx context.Context, q LogQuery) ([]types.Log, error) {
	from := r.fromBlock
	if q.FromBlock != nil {
		from = *q.FromBlock
	}

	topics := append([][]common.Hash{{q.topic0()}}, q.Topics...)

	if r.maxBlockRange == 0 {
		query := ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(from),
			Addresses: []common.Address{q.Address},
			Topics:    topics,
		}
		if q.ToBlock != nil {
			query.ToBlock = new(big.Int).SetUint64(*q.ToBlock)
		}
		logs, err := r.client.FilterLogs(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("%s getLogs %s on %s failed: %w", r.layer, q.name(), q.Address.Hex(), err)
		}
		return logs, nil
	}

	var to uint64
	if q.ToBlock != nil {
		to = *q.ToBlock
	} else {
		latest, err := r.GetBlockNumber(ctx)
		if err != nil {
			return nil, err
		}
		to = latest
	}

	var logs []types.Log
	for _, job := range splitRange(from, to, r.maxBlockRange) {
		chunk, err := r.client.FilterLogs(ctx, ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(job.From),
			ToBlock:   new(big.Int).SetUint64(job.To),
			Addresses: []common.Address{q.Address},
			Topics:    topics,
		})
		if err != nil {
			return nil, fmt.Errorf("%s getLogs %s on %s in [%d, %d] failed: %w", r.layer, q.name(), q.Address.Hex(), job.From, job.To, err)
		}
		logs = append(logs, chunk...)
	}

	r.logger.
		With("event", q.name()).
		With("address", q.Address.Hex()).
		With("logs", len(logs)).
		Debug("logs fetched")

	return logs, nil
}

func (q LogQuery) topic0() common.Hash {
	if q.Event != nil {
		return q.Event.Topic0
	}
	return q.Topic0
}

func (q LogQuery) name() string {
	if q.Event != nil {
		return q.Event.Signature
	}
	return q.Topic0.Hex()
}

func (r *Reader) GetStorageAt(ctx context.Context, account common.Address, slot common.Hash) (common.Hash, error) {
	value, err := r.client.StorageAt(ctx, account, slot, nil)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%s getStorageAt %s slot %s failed: %w", r.layer, account.Hex(), slot.Hex(), err)
	}
	return common.BytesToHash(value), nil
}

func (r *Reader) GetTransaction(ctx context.Context, hash common.Hash) (*types.Transaction, error) {
	tx, _, err := r.client.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("%s getTransaction %s failed: %w", r.layer, hash.Hex(), err)
	}
	return tx, nil
}

func (r *Reader) GetTransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	receipt, err := r.client.TransactionReceipt(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("%s getTransactionReceipt %s failed: %w", r.layer, hash.Hex(), err)
	}
	return receipt, nil
}

func (r *Reader) GetBytecode(ctx context.Context, account common.Address) ([]byte, error) {
	code, err := r.client.CodeAt(ctx, account, nil)
	if err != nil {
		return nil, fmt.Errorf("%s getBytecode %s failed: %w", r.layer, account.Hex(), err)
	}
	return code, nil
}

func (r *Reader) GetBlockNumber(ctx context.Context) (uint64, error) {
	number, err := r.client.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s getBlockNumber failed: %w", r.layer, err)
	}
	return number, nil
}
