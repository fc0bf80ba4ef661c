package deployment

import (
	"github.com/ethereum/go-ethereum/common"
)

// Record is the deployment file written by the nitro rollup deployer
// (deploy.json). Addresses the deployer did not produce are zero.
type Record struct {
	Bridge                 common.Address `json:"bridge"`
	Inbox                  common.Address `json:"inbox"`
	SequencerInbox         common.Address `json:"sequencer-inbox"`
	DeployedAt             uint64         `json:"deployed-at"`
	Rollup                 common.Address `json:"rollup"`
	NativeToken            common.Address `json:"native-token"`
	UpgradeExecutor        common.Address `json:"upgrade-executor"`
	ValidatorUtils         common.Address `json:"validator-utils"`
	ValidatorWalletCreator common.Address `json:"validator-wallet-creator"`
}

// Field is one named address of a record.
type Field struct {
	Name    string
	Address common.Address
}

// Fields lists the non-zero addresses of the record in file order.
func (r Record) Fields() []Field {
	all := []Field{
		{"bridge", r.Bridge},
		{"inbox", r.Inbox},
		{"sequencer-inbox", r.SequencerInbox},
		{"rollup", r.Rollup},
		{"native-token", r.NativeToken},
		{"upgrade-executor", r.UpgradeExecutor},
		{"validator-utils", r.ValidatorUtils},
		{"validator-wallet-creator", r.ValidatorWalletCreator},
	}

	fields := make([]Field, 0, len(all))
	for _, f := range all {
		if f.Address != (common.Address{}) {
			fields = append(fields, f)
		}
	}
	return fields
}
