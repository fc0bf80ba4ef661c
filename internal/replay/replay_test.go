package replay

import (
	"math/rand"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	carol = common.HexToAddress("0x00000000000000000000000000000000000ca201")

	roleA = common.HexToHash("0xaa")
	roleB = common.HexToHash("0xbb")
)

func grant(account common.Address, role common.Hash, block uint64, index uint) RoleEvent {
	return RoleEvent{Account: account, Role: role, Kind: Granted, BlockNumber: block, LogIndex: index}
}

func revoke(account common.Address, role common.Hash, block uint64, index uint) RoleEvent {
	return RoleEvent{Account: account, Role: role, Kind: Revoked, BlockNumber: block, LogIndex: index}
}

func TestReconstructEmpty(t *testing.T) {
	m := Reconstruct(nil)
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Accounts())
	assert.Empty(t, m.Map())
}

func TestReconstructToggle(t *testing.T) {
	tests := []struct {
		name   string
		events []RoleEvent
		held   bool
	}{
		{
			name:   "grant",
			events: []RoleEvent{grant(alice, roleA, 1, 0)},
			held:   true,
		},
		{
			name:   "grant revoke",
			events: []RoleEvent{grant(alice, roleA, 1, 0), revoke(alice, roleA, 2, 0)},
			held:   false,
		},
		{
			name:   "grant revoke grant",
			events: []RoleEvent{grant(alice, roleA, 1, 0), revoke(alice, roleA, 2, 0), grant(alice, roleA, 3, 0)},
			held:   true,
		},
		{
			name:   "revoke without grant",
			events: []RoleEvent{revoke(alice, roleA, 1, 0)},
			held:   false,
		},
		{
			name:   "revoke before grant in the same block",
			events: []RoleEvent{grant(alice, roleA, 5, 1), revoke(alice, roleA, 5, 0)},
			held:   true,
		},
		{
			name:   "duplicate grants then revoke",
			events: []RoleEvent{grant(alice, roleA, 1, 0), grant(alice, roleA, 2, 0), revoke(alice, roleA, 3, 0)},
			held:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Reconstruct(tt.events)
			assert.Equal(t, tt.held, m.Has(alice, roleA))
			if !tt.held {
				assert.NotContains(t, m.Map(), alice)
				assert.Equal(t, 0, m.Len())
			}
		})
	}
}

func TestReconstructKeepsOtherRoles(t *testing.T) {
	m := Reconstruct([]RoleEvent{
		grant(alice, roleA, 1, 0),
		grant(alice, roleB, 1, 1),
		revoke(alice, roleA, 2, 0),
	})

	require.Equal(t, 1, m.Len())
	assert.Equal(t, []common.Hash{roleB}, m.Roles(alice))
}

func TestReconstructIsIdempotentAndOrderIndependent(t *testing.T) {
	events := []RoleEvent{
		grant(alice, roleA, 1, 0),
		grant(bob, roleA, 1, 1),
		grant(carol, roleB, 2, 0),
		revoke(bob, roleA, 3, 0),
		grant(bob, roleB, 3, 1),
		revoke(alice, roleA, 4, 0),
		grant(alice, roleA, 5, 0),
		revoke(carol, roleB, 6, 0),
	}

	want := Reconstruct(events)
	assert.Equal(t, want.Map(), Reconstruct(events).Map())
	assert.Equal(t, want.Entries(), Reconstruct(events).Entries())

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]RoleEvent(nil), events...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want.Map(), Reconstruct(shuffled).Map())
	}

	assert.Equal(t, []common.Address{alice, bob}, want.Accounts())
}

func TestReconstructDoesNotModifyInput(t *testing.T) {
	events := []RoleEvent{grant(alice, roleA, 9, 0), grant(bob, roleA, 1, 0)}
	Reconstruct(events)
	assert.Equal(t, uint64(9), events[0].BlockNumber)
}

func TestMembershipFirstSeenOrder(t *testing.T) {
	m := Reconstruct([]RoleEvent{
		grant(alice, roleA, 1, 0),
		grant(bob, roleA, 2, 0),
		revoke(alice, roleA, 3, 0),
		grant(carol, roleA, 4, 0),
		grant(alice, roleA, 5, 0),
	})

	assert.Equal(t, []common.Address{alice, bob, carol}, m.Accounts())
}

func TestMembershipCopies(t *testing.T) {
	m := Reconstruct([]RoleEvent{grant(alice, roleA, 1, 0)})

	roles := m.Roles(alice)
	roles[0] = roleB
	assert.True(t, m.Has(alice, roleA))

	mapped := m.Map()
	delete(mapped, alice)
	assert.Equal(t, 1, m.Len())
}
