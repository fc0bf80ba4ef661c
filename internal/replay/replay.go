package replay

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

type Kind uint8

const (
	Granted Kind = iota + 1
	Revoked
)

func (k Kind) String() string {
	switch k {
	case Granted:
		return "granted"
	case Revoked:
		return "revoked"
	default:
		return "unknown"
	}
}

// RoleEvent is a single grant or revoke of a role, positioned in chain order.
type RoleEvent struct {
	Account     common.Address
	Role        common.Hash
	Kind        Kind
	BlockNumber uint64
	LogIndex    uint
}

// Reconstruct folds events in chain order into the current membership.
// Revoking a role the account does not hold is a no-op. The input slice is
// not modified.
func Reconstruct(events []RoleEvent) *Membership {
	sorted := make([]RoleEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BlockNumber != sorted[j].BlockNumber {
			return sorted[i].BlockNumber < sorted[j].BlockNumber
		}
		return sorted[i].LogIndex < sorted[j].LogIndex
	})

	m := newMembership()
	for _, e := range sorted {
		switch e.Kind {
		case Granted:
			m.grant(e.Account, e.Role)
		case Revoked:
			m.revoke(e.Account, e.Role)
		}
	}
	return m
}
