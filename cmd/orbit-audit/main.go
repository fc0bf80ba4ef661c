package main

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/compose-network/orbit-audit/configs"
	"github.com/compose-network/orbit-audit/internal/inspect"
	"github.com/compose-network/orbit-audit/internal/logger"
	"github.com/compose-network/orbit-audit/internal/verify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const appName = "orbit-audit"

var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "Reconstruct and verify Arbitrum Orbit rollup deployments",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := configs.SetDefaults(viper.GetViper()); err != nil {
			return err
		}

		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if execPath, err := os.Executable(); err == nil {
			execDir := filepath.Dir(execPath)
			viper.AddConfigPath(execDir)
		}
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")

		viper.SetEnvPrefix(configs.EnvPrefix)
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		viper.AutomaticEnv()

		// Flags and env vars can provide the whole configuration.
		configErr := viper.ReadInConfig()
		if configErr != nil {
			if _, ok := configErr.(viper.ConfigFileNotFoundError); !ok {
				const errMsg = "error reading config file"
				return errors.Join(configErr, errors.New(errMsg))
			}
		}

		if err := viper.Unmarshal(&configs.Values); err != nil {
			const errMsg = "unable to decode application config"
			return errors.Join(err, errors.New(errMsg))
		}

		logger.Initialize(logger.ParseLevel(configs.Values.Log.Level), configs.Values.Log.Format)

		if configErr != nil {
			slog.Debug("no config file found, will rely on flags, env and defaults")
		} else {
			slog.With("config_file", viper.ConfigFileUsed()).Debug("config file loaded")
		}
		slog.With("config", configs.Values).Debug("configuration loaded")

		return nil
	},
}

func main() {
	rootCmd.AddCommand(verify.CMD)
	rootCmd.AddCommand(inspect.CMD)

	if err := rootCmd.Execute(); err != nil {
		slog.With("err", err.Error()).Error("failed to execute root command")
		os.Exit(1)
	}
}
