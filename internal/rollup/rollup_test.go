package rollup_test

import (
	"context"
	"testing"

	"github.com/compose-network/orbit-audit/internal/chain"
	"github.com/compose-network/orbit-audit/internal/chain/chaintest"
	"github.com/compose-network/orbit-audit/internal/contracts"
	"github.com/compose-network/orbit-audit/internal/orbittest"
	"github.com/compose-network/orbit-audit/internal/rollup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	c := chaintest.New(t, 1)
	r := orbittest.NewRollup(412346)
	r.Deploy(t, c)

	got, err := rollup.Fetch(context.Background(), chain.NewReader(c, chain.LayerParent), r.Rollup)
	require.NoError(t, err)

	assert.Equal(t, rollup.Contracts{
		Rollup:           r.Rollup,
		Bridge:           r.Bridge,
		Inbox:            r.Inbox,
		SequencerInbox:   r.SequencerInbox,
		Outbox:           r.Outbox,
		RollupEventInbox: r.RollupEventInbox,
		ChallengeManager: r.ChallengeManager,
	}, got)
}

func TestFetchMissingGetter(t *testing.T) {
	c := chaintest.New(t, 1)
	r := orbittest.NewRollup(412346)
	c.OnAddress(r.Rollup, contracts.FuncBridge, r.Bridge)

	_, err := rollup.Fetch(context.Background(), chain.NewReader(c, chain.LayerParent), r.Rollup)
	require.ErrorIs(t, err, chaintest.ErrReverted)
}

func TestAddressFromSequencerInboxIsCached(t *testing.T) {
	ctx := context.Background()
	// The lookup cache is shared by the process; the chain id keeps this
	// test's entries apart from other tests.
	c := chaintest.New(t, 7001)
	sequencerInbox, expected := orbittest.Address(5), orbittest.Address(2)
	c.OnAddress(sequencerInbox, contracts.FuncRollup, expected)
	reader := chain.NewReader(c, chain.LayerParent)

	got, err := rollup.AddressFromSequencerInbox(ctx, reader, sequencerInbox)
	require.NoError(t, err)
	assert.Equal(t, expected, got)
	calls := c.CallCount

	got, err = rollup.AddressFromSequencerInbox(ctx, reader, sequencerInbox)
	require.NoError(t, err)
	assert.Equal(t, expected, got)
	assert.Equal(t, calls, c.CallCount)
}

func TestAddressFromSequencerInboxIsScopedByChain(t *testing.T) {
	ctx := context.Background()
	sequencerInbox := orbittest.Address(5)

	first := chaintest.New(t, 7002)
	first.OnAddress(sequencerInbox, contracts.FuncRollup, orbittest.Address(2))
	second := chaintest.New(t, 7003)
	second.OnAddress(sequencerInbox, contracts.FuncRollup, orbittest.Address(3))

	got, err := rollup.AddressFromSequencerInbox(ctx, chain.NewReader(first, chain.LayerParent), sequencerInbox)
	require.NoError(t, err)
	assert.Equal(t, orbittest.Address(2), got)

	got, err = rollup.AddressFromSequencerInbox(ctx, chain.NewReader(second, chain.LayerParent), sequencerInbox)
	require.NoError(t, err)
	assert.Equal(t, orbittest.Address(3), got)
}

func TestAddressFromSequencerInboxErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	c := chaintest.New(t, 7004)
	sequencerInbox := orbittest.Address(5)
	reader := chain.NewReader(c, chain.LayerParent)

	_, err := rollup.AddressFromSequencerInbox(ctx, reader, sequencerInbox)
	require.ErrorIs(t, err, chaintest.ErrReverted)

	c.OnAddress(sequencerInbox, contracts.FuncRollup, orbittest.Address(2))
	got, err := rollup.AddressFromSequencerInbox(ctx, reader, sequencerInbox)
	require.NoError(t, err)
	assert.Equal(t, orbittest.Address(2), got)
}
