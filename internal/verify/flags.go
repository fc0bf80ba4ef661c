package verify

import (
	"github.com/compose-network/orbit-audit/configs"
	"github.com/spf13/viper"
)

type (
	flagType interface {
		string | int | bool
	}

	flagDef[T flagType] struct {
		name         string
		viperKey     string
		defaultValue T
		description  string
	}
)

var defaults = configs.MustDefaultConfig().Verify

var (
	stringFlags = []flagDef[string]{
		{"activity-window", "verify.activity-window", defaults.ActivityWindow.String(), "Window in which batches and assertions are expected"},
		{"deployment-file", "verify.deployment-file", "", "Nitro deploy.json to cross-check against chain state"},
	}

	intFlags = []flagDef[int]{
		{"min-confirm-period-blocks", "verify.min-confirm-period-blocks", int(defaults.MinConfirmPeriodBlocks), "Smallest acceptable confirmPeriodBlocks"},
		{"fallback-activity-blocks", "verify.fallback-activity-blocks", int(defaults.FallbackActivityBlocks), "Activity window in blocks for parent chains with unknown block time"},
	}

	boolFlags = []flagDef[bool]{
		{"fail-on-warnings", "verify.fail-on-warnings", defaults.FailOnWarnings, "Exit with an error when any warning is reported"},
	}
)

func init() {
	CMD.Flags().StringVar(&rollupAddress, "rollup", "", "Rollup contract address on the parent chain")
	if err := CMD.MarkFlagRequired("rollup"); err != nil {
		panic(err)
	}

	if err := declareFlags(stringFlags); err != nil {
		panic(err)
	}
	if err := declareFlags(intFlags); err != nil {
		panic(err)
	}
	if err := declareFlags(boolFlags); err != nil {
		panic(err)
	}
}

// declareFlags declares multiple flags and binds them to viper configuration keys.
func declareFlags[T flagType](flags []flagDef[T]) error {
	for _, flag := range flags {
		if err := declareFlag(flag.name, flag.viperKey, flag.defaultValue, flag.description); err != nil {
			return err
		}
	}
	return nil
}

func declareFlag[T flagType](flagName, viperKey string, defaultValue T, description string) error {
	switch v := any(defaultValue).(type) {
	case string:
		CMD.Flags().String(flagName, v, description)
	case int:
		CMD.Flags().Int(flagName, v, description)
	case bool:
		CMD.Flags().Bool(flagName, v, description)
	}
	return viper.BindPFlag(viperKey, CMD.Flags().Lookup(flagName))
}
