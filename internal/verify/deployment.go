package verify

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// checkDeploymentRecord compares a deployer output file with chain state.
func (v *Verifier) checkDeploymentRecord(_ context.Context, r *run) error {
	record := v.cfg.Deployment
	if record == nil {
		return nil
	}

	actual := map[string]common.Address{
		"bridge":          r.core.Bridge,
		"inbox":           r.core.Inbox,
		"sequencer-inbox": r.core.SequencerInbox,
		"rollup":          r.rollup,
	}
	if created := r.info.Addresses; created != nil && !created.Legacy {
		actual["native-token"] = created.NativeToken
		actual["upgrade-executor"] = created.UpgradeExecutor
		actual["validator-utils"] = created.ValidatorUtils
		actual["validator-wallet-creator"] = created.ValidatorWalletCreator
	}

	for _, field := range record.Fields() {
		onChain, known := actual[field.Name]
		if !known {
			continue
		}
		if field.Address != onChain {
			r.warnings.add("deployment record %s is %s, chain state has %s", field.Name, field.Address.Hex(), onChain.Hex())
		}
	}

	if record.DeployedAt != 0 && record.DeployedAt != r.info.BlockNumber {
		r.warnings.add("deployment record deployed-at is %d, rollup was created in block %d", record.DeployedAt, r.info.BlockNumber)
	}
	return nil
}
