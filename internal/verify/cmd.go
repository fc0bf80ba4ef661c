package verify

import (
	"fmt"
	"log/slog"

	"github.com/compose-network/orbit-audit/configs"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rollupAddress string

var CMD = &cobra.Command{
	Use:   "verify-rollup",
	Short: "Cross-verify the contract topology of an orbit rollup",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Re-unmarshal to include flag overrides.
		if err := viper.Unmarshal(&configs.Values); err != nil {
			return fmt.Errorf("failed to unmarshal config with flag overrides: %w", err)
		}
		if err := configs.Values.Validate(); err != nil {
			return err
		}
		if !common.IsHexAddress(rollupAddress) {
			return fmt.Errorf("--rollup is not a valid address: '%s'", rollupAddress)
		}

		slog.With("rollup", rollupAddress).Info("verifying rollup")

		if err := start(cmd.Context(), cmd.OutOrStdout(), configs.Values, common.HexToAddress(rollupAddress)); err != nil {
			return fmt.Errorf("error occurred verifying rollup: %w", err)
		}

		return nil
	},
}
