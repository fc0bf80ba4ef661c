package main

import (
	"github.com/compose-network/orbit-audit/configs"
	"github.com/spf13/viper"
)

var defaults = configs.MustDefaultConfig()

func init() {
	declareStringFlag("log-level", "log.level", defaults.Log.Level, "Log level (debug, info, warn, error)")
	declareStringFlag("log-format", "log.format", defaults.Log.Format, "Log format (json or text)")

	declareStringFlag("parent-rpc-url", "parent.rpc-url", "", "Parent chain RPC URL")
	declareIntFlag("parent-max-block-range", "parent.max-block-range", int(defaults.Parent.MaxBlockRange), "Largest block range of a single parent chain eth_getLogs call (0 = unbounded)")
	declareIntFlag("parent-from-block", "parent.from-block", int(defaults.Parent.FromBlock), "First parent chain block scanned for events")

	declareStringFlag("orbit-rpc-url", "orbit.rpc-url", "", "Orbit chain RPC URL; enables the orbit chain checks")
	declareIntFlag("orbit-max-block-range", "orbit.max-block-range", int(defaults.Orbit.MaxBlockRange), "Largest block range of a single orbit chain eth_getLogs call (0 = unbounded)")
	declareIntFlag("orbit-from-block", "orbit.from-block", int(defaults.Orbit.FromBlock), "First orbit chain block scanned for events")

	declareStringFlag("token-bridge-creator", "verify.token-bridge-creator", "", "Token bridge creator on the parent chain")

	declareStringFlag("output-format", "output.format", string(defaults.Output.Format), "Output format (table, json or yaml)")
	declareStringFlag("output-file", "output.file", "", "Write the result to this file instead of stdout")
}

func declareStringFlag(name, key, defaultValue, description string) {
	rootCmd.PersistentFlags().String(name, defaultValue, description)
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(name)); err != nil {
		panic(err)
	}
}

func declareIntFlag(name, key string, defaultValue int, description string) {
	rootCmd.PersistentFlags().Int(name, defaultValue, description)
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(name)); err != nil {
		panic(err)
	}
}
