package inspect

import (
	"context"
	"fmt"
	"io"

	"github.com/compose-network/orbit-audit/configs"
	"github.com/compose-network/orbit-audit/internal/chain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	CMD = &cobra.Command{
		Use:   "inspect",
		Short: "Reconstruct individual parts of an orbit rollup deployment",
	}

	privilegedAccountsCmd = &cobra.Command{
		Use:   "privileged-accounts",
		Short: "Replay the role history of an UpgradeExecutor",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "upgrade-executor", privilegedAccounts)
		},
	}

	batchPostersCmd = &cobra.Command{
		Use:   "batch-posters",
		Short: "Reconstruct the batch posters of a SequencerInbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "sequencer-inbox", batchPosters)
		},
	}

	proxyCmd = &cobra.Command{
		Use:   "proxy",
		Short: "Resolve the admin and implementation of a proxy",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "address", proxyMetadata)
		},
	}

	creationInfoCmd = &cobra.Command{
		Use:   "creation-info",
		Short: "Decode the creation transaction of a rollup",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "rollup", creationInfo)
		},
	}

	tokenBridgeCmd = &cobra.Command{
		Use:   "token-bridge",
		Short: "Read the token bridge recorded by the token bridge creator for a rollup",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "rollup", tokenBridge)
		},
	}
)

func init() {
	declareAddressFlag(privilegedAccountsCmd, "upgrade-executor", "UpgradeExecutor contract address on the parent chain")
	declareAddressFlag(batchPostersCmd, "sequencer-inbox", "SequencerInbox contract address on the parent chain")
	declareAddressFlag(proxyCmd, "address", "Proxy contract address on the parent chain")
	declareAddressFlag(creationInfoCmd, "rollup", "Rollup contract address on the parent chain")
	declareAddressFlag(tokenBridgeCmd, "rollup", "Rollup contract address on the parent chain")

	CMD.AddCommand(privilegedAccountsCmd)
	CMD.AddCommand(batchPostersCmd)
	CMD.AddCommand(proxyCmd)
	CMD.AddCommand(creationInfoCmd)
	CMD.AddCommand(tokenBridgeCmd)
}

func declareAddressFlag(cmd *cobra.Command, name, description string) {
	cmd.Flags().String(name, "", description)
	if err := cmd.MarkFlagRequired(name); err != nil {
		panic(err)
	}
}

// inspection reads one part of a deployment and returns its printable result.
type inspection func(ctx context.Context, chains chain.Chains, cfg configs.Config, address common.Address) (any, error)

func run(cmd *cobra.Command, addressFlag string, inspect inspection) error {
	// Re-unmarshal to include flag overrides.
	if err := viper.Unmarshal(&configs.Values); err != nil {
		return fmt.Errorf("failed to unmarshal config with flag overrides: %w", err)
	}
	cfg := configs.Values
	if err := cfg.Validate(); err != nil {
		return err
	}

	value, err := cmd.Flags().GetString(addressFlag)
	if err != nil {
		return err
	}
	if !common.IsHexAddress(value) {
		return fmt.Errorf("--%s is not a valid address: '%s'", addressFlag, value)
	}

	if err := start(cmd.Context(), cmd.OutOrStdout(), cfg, common.HexToAddress(value), inspect); err != nil {
		return fmt.Errorf("error occurred running %s: %w", cmd.Name(), err)
	}
	return nil
}

func start(ctx context.Context, stdout io.Writer, cfg configs.Config, address common.Address, inspect inspection) error {
	chains, closeChains, err := chain.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeChains()

	result, err := inspect(ctx, chains, cfg, address)
	if err != nil {
		return err
	}

	return reportResult(stdout, cfg.Output, result)
}
