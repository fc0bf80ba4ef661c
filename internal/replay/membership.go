package replay

import (
	"github.com/ethereum/go-ethereum/common"
)

// Membership maps accounts to the roles they currently hold. Accounts without
// roles are never stored. Iteration follows the order in which accounts were
// first granted a role.
type Membership struct {
	order []common.Address
	roles map[common.Address][]common.Hash
}

// Entry is one account and its roles, in a shape suitable for reports.
type Entry struct {
	Account common.Address `json:"account" yaml:"account"`
	Roles   []common.Hash  `json:"roles" yaml:"roles"`
}

func newMembership() *Membership {
	return &Membership{roles: make(map[common.Address][]common.Hash)}
}

func (m *Membership) grant(account common.Address, role common.Hash) {
	held, known := m.roles[account]
	for _, r := range held {
		if r == role {
			return
		}
	}
	if !known && !m.seen(account) {
		m.order = append(m.order, account)
	}
	m.roles[account] = append(held, role)
}

func (m *Membership) revoke(account common.Address, role common.Hash) {
	held := m.roles[account]
	for i, r := range held {
		if r != role {
			continue
		}
		if len(held) == 1 {
			delete(m.roles, account)
			return
		}
		m.roles[account] = append(held[:i:i], held[i+1:]...)
		return
	}
}

func (m *Membership) seen(account common.Address) bool {
	for _, a := range m.order {
		if a == account {
			return true
		}
	}
	return false
}

// Len returns the number of accounts holding at least one role.
func (m *Membership) Len() int {
	return len(m.roles)
}

// Accounts returns the accounts holding at least one role.
func (m *Membership) Accounts() []common.Address {
	accounts := make([]common.Address, 0, len(m.roles))
	for _, a := range m.order {
		if _, ok := m.roles[a]; ok {
			accounts = append(accounts, a)
		}
	}
	return accounts
}

// Roles returns the roles held by account in grant order.
func (m *Membership) Roles(account common.Address) []common.Hash {
	return append([]common.Hash(nil), m.roles[account]...)
}

func (m *Membership) Has(account common.Address, role common.Hash) bool {
	for _, r := range m.roles[account] {
		if r == role {
			return true
		}
	}
	return false
}

func (m *Membership) Entries() []Entry {
	entries := make([]Entry, 0, len(m.roles))
	for _, a := range m.Accounts() {
		entries = append(entries, Entry{Account: a, Roles: m.Roles(a)})
	}
	return entries
}

// Map returns a copy of the membership as a plain map.
func (m *Membership) Map() map[common.Address][]common.Hash {
	out := make(map[common.Address][]common.Hash, len(m.roles))
	for a := range m.roles {
		out[a] = m.Roles(a)
	}
	return out
}
