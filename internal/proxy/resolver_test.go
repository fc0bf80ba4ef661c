package proxy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/compose-network/orbit-audit/internal/chain"
	"github.com/compose-network/orbit-audit/internal/chain/chaintest"
	"github.com/compose-network/orbit-audit/internal/contracts"
	"github.com/compose-network/orbit-audit/internal/proxy"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	bridge         = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	proxyAdmin     = common.HexToAddress("0x00000000000000000000000000000000000000ad")
	implementation = common.HexToAddress("0x0000000000000000000000000000000000000001")
)

func newResolver(c *chaintest.Chain) *proxy.Resolver {
	return proxy.NewResolver(chain.NewReader(c, chain.LayerParent))
}

func TestResolveFromSlots(t *testing.T) {
	c := chaintest.New(t, 1)
	c.SetStorage(bridge, contracts.AdminSlot, chaintest.AddressSlot(proxyAdmin))
	c.SetStorage(bridge, contracts.ImplementationSlot, chaintest.AddressSlot(implementation))

	md, err := newResolver(c).Metadata(context.Background(), bridge)
	require.NoError(t, err)
	require.NotNil(t, md.Admin)
	require.NotNil(t, md.Implementation)
	assert.Equal(t, proxyAdmin, *md.Admin)
	assert.Equal(t, implementation, *md.Implementation)
}

func TestResolveEmptySlotIsNil(t *testing.T) {
	c := chaintest.New(t, 1)

	admin, err := newResolver(c).ResolveAdmin(context.Background(), bridge)
	require.NoError(t, err)
	assert.Nil(t, admin)
}

func TestResolveZeroAddressIsNotNil(t *testing.T) {
	c := chaintest.New(t, 1)
	// Upper bytes set, address bytes zero.
	c.SetStorage(bridge, contracts.AdminSlot, common.HexToHash("0x0100000000000000000000000000000000000000000000000000000000000000"))

	admin, err := newResolver(c).ResolveAdmin(context.Background(), bridge)
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, common.Address{}, *admin)
}

func TestResolveFallsBackToLatestEvent(t *testing.T) {
	first := common.HexToAddress("0x00000000000000000000000000000000000000f1")
	c := chaintest.New(t, 1)
	c.Emit(chaintest.LogSpec{
		Address:     bridge,
		Event:       contracts.EventAdminChanged,
		Data:        chaintest.Pack(t, []string{"address", "address"}, common.Address{}, first),
		BlockNumber: 10,
	})
	c.Emit(chaintest.LogSpec{
		Address:     bridge,
		Event:       contracts.EventAdminChanged,
		Data:        chaintest.Pack(t, []string{"address", "address"}, first, proxyAdmin),
		BlockNumber: 12,
	})
	c.Emit(chaintest.LogSpec{
		Address:     bridge,
		Event:       contracts.EventUpgraded,
		Topics:      []common.Hash{chaintest.AddressTopic(implementation)},
		BlockNumber: 12,
	})

	md, err := newResolver(c).Metadata(context.Background(), bridge)
	require.NoError(t, err)
	require.NotNil(t, md.Admin)
	require.NotNil(t, md.Implementation)
	assert.Equal(t, proxyAdmin, *md.Admin)
	assert.Equal(t, implementation, *md.Implementation)
}

func TestResolvePropagatesTransportErrors(t *testing.T) {
	c := chaintest.New(t, 1)
	c.Err = errors.New("503 service unavailable")

	_, err := newResolver(c).ResolveImplementation(context.Background(), bridge)
	require.ErrorIs(t, err, c.Err)

	_, err = newResolver(c).Metadata(context.Background(), bridge)
	require.ErrorIs(t, err, c.Err)
}
