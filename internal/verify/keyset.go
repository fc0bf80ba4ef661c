package verify

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/compose-network/orbit-audit/internal/chain"
	"github.com/compose-network/orbit-audit/internal/contracts"
	"github.com/compose-network/orbit-audit/internal/replay"
	"github.com/ethereum/go-ethereum/common"
)

// maxKeysetKeys is the largest committee a keyset can describe.
const maxKeysetKeys = 64

// Keyset is a data availability committee keyset as posted to the
// SequencerInbox.
type Keyset struct {
	AssumedHonest uint64
	PubKeys       [][]byte
}

// ParseKeyset decodes serialized keyset bytes: assumed honest and key count
// as big endian uint64s, then each key prefixed by its big endian uint16
// length.
func ParseKeyset(data []byte) (*Keyset, error) {
	if len(data) < 16 {
		return nil, fmt.Errorf("keyset too short: %d bytes", len(data))
	}

	ks := &Keyset{AssumedHonest: binary.BigEndian.Uint64(data[:8])}
	count := binary.BigEndian.Uint64(data[8:16])
	if count > maxKeysetKeys {
		return nil, fmt.Errorf("keyset declares %d keys, at most %d allowed", count, maxKeysetKeys)
	}

	rest := data[16:]
	for i := uint64(0); i < count; i++ {
		if len(rest) < 2 {
			return nil, fmt.Errorf("keyset truncated at key %d", i)
		}
		size := int(binary.BigEndian.Uint16(rest[:2]))
		rest = rest[2:]
		if len(rest) < size {
			return nil, fmt.Errorf("keyset truncated in key %d", i)
		}
		ks.PubKeys = append(ks.PubKeys, rest[:size])
		rest = rest[size:]
	}
	if len(rest) != 0 {
		return nil, errors.New("keyset has trailing bytes")
	}

	return ks, nil
}

// HasZeroKey reports whether any key of the keyset is all zero.
func (k *Keyset) HasZeroKey() bool {
	for _, key := range k.PubKeys {
		if len(key) == 0 || bytes.Count(key, []byte{0}) == len(key) {
			return true
		}
	}
	return false
}

// checkKeysets checks that an AnyTrust chain has exactly one valid keyset and
// that it does not contain a placeholder all-zero key.
func (v *Verifier) checkKeysets(ctx context.Context, r *run) error {
	if !r.info.IsAnyTrust() {
		return nil
	}
	sequencerInbox := r.core.SequencerInbox

	setLogs, err := v.chains.Parent.GetLogs(ctx, chain.LogQuery{Address: sequencerInbox, Event: contracts.EventSetValidKeyset})
	if err != nil {
		return err
	}
	invalidateLogs, err := v.chains.Parent.GetLogs(ctx, chain.LogQuery{Address: sequencerInbox, Event: contracts.EventInvalidateKeysetHash})
	if err != nil {
		return err
	}

	// Keyset hashes are replayed as roles of the sequencer inbox.
	var (
		events   []replay.RoleEvent
		keysets  = make(map[common.Hash][]byte)
		hashes   []common.Hash
		seenHash = make(map[common.Hash]bool)
	)
	for i := range setLogs {
		var (
			hash common.Hash
			data []byte
		)
		if err := contracts.EventSetValidKeyset.DecodeArgs(&setLogs[i], &hash, &data); err != nil {
			return fmt.Errorf("failed to decode SetValidKeyset in tx %s: %w", setLogs[i].TxHash.Hex(), err)
		}
		keysets[hash] = data
		if !seenHash[hash] {
			seenHash[hash] = true
			hashes = append(hashes, hash)
		}
		events = append(events, replay.RoleEvent{
			Account: sequencerInbox, Role: hash, Kind: replay.Granted,
			BlockNumber: setLogs[i].BlockNumber, LogIndex: setLogs[i].Index,
		})
	}
	for i := range invalidateLogs {
		var hash common.Hash
		if err := contracts.EventInvalidateKeysetHash.DecodeArgs(&invalidateLogs[i], &hash); err != nil {
			return fmt.Errorf("failed to decode InvalidateKeysetHash in tx %s: %w", invalidateLogs[i].TxHash.Hex(), err)
		}
		events = append(events, replay.RoleEvent{
			Account: sequencerInbox, Role: hash, Kind: replay.Revoked,
			BlockNumber: invalidateLogs[i].BlockNumber, LogIndex: invalidateLogs[i].Index,
		})
	}
	derived := replay.Reconstruct(events)

	var valid []common.Hash
	for _, hash := range hashes {
		var live bool
		if err := v.chains.Parent.ReadContract(ctx, sequencerInbox, contracts.FuncIsValidKeysetHash, []any{hash}, &live); err != nil {
			if err := r.readFailed(ctx, v.chains.Parent, err, "SequencerInbox", sequencerInbox, contracts.FuncIsValidKeysetHash); err != nil {
				return err
			}
			continue
		}
		if live != derived.Has(sequencerInbox, hash) {
			r.warnings.add("keyset %s history disagrees with isValidKeysetHash (%t) on SequencerInbox %s",
				hash.Hex(), live, sequencerInbox.Hex())
		}
		if live {
			valid = append(valid, hash)
		}
	}

	switch {
	case len(valid) == 0:
		r.warnings.add("AnyTrust chain has no valid keyset on SequencerInbox %s", sequencerInbox.Hex())
	case len(valid) > 1:
		r.warnings.add("AnyTrust chain has %d valid keysets on SequencerInbox %s, expected exactly one",
			len(valid), sequencerInbox.Hex())
	}

	for _, hash := range valid {
		ks, err := ParseKeyset(keysets[hash])
		if err != nil {
			r.warnings.add("keyset %s could not be parsed: %v", hash.Hex(), err)
			continue
		}
		if ks.HasZeroKey() {
			r.warnings.add("keyset %s contains an all-zero key", hash.Hex())
		}
	}
	return nil
}
