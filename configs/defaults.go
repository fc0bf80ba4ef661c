package configs

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

var (
	//go:embed config.example.yaml
	defaultConfigYAML string

	defaultConfigOnce sync.Once
	defaultConfig     Config
	defaultConfigErr  error
)

// DefaultConfig returns the parsed configuration from the embedded config.example.yaml.
func DefaultConfig() (Config, error) {
	defaultConfigOnce.Do(func() {
		v := viper.New()
		v.SetConfigType("yaml")
		if err := v.ReadConfig(strings.NewReader(defaultConfigYAML)); err != nil {
			defaultConfigErr = fmt.Errorf("failed to read embedded config.example.yaml: %w", err)
			return
		}

		if err := v.Unmarshal(&defaultConfig); err != nil {
			defaultConfigErr = fmt.Errorf("failed to decode embedded config.example.yaml: %w", err)
			return
		}
	})

	if defaultConfigErr != nil {
		return Config{}, defaultConfigErr
	}

	return defaultConfig, nil
}

// MustDefaultConfig returns embedded defaults or panics if they cannot be loaded.
func MustDefaultConfig() Config {
	cfg, err := DefaultConfig()
	if err != nil {
		panic(err)
	}
	return cfg
}

// SetDefaults registers the embedded defaults on v so that config files,
// env vars and flags only need to override what differs.
func SetDefaults(v *viper.Viper) error {
	cfg, err := DefaultConfig()
	if err != nil {
		return err
	}

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("parent.max-block-range", cfg.Parent.MaxBlockRange)
	v.SetDefault("orbit.max-block-range", cfg.Orbit.MaxBlockRange)
	v.SetDefault("verify.min-confirm-period-blocks", cfg.Verify.MinConfirmPeriodBlocks)
	v.SetDefault("verify.activity-window", cfg.Verify.ActivityWindow)
	v.SetDefault("verify.fallback-activity-blocks", cfg.Verify.FallbackActivityBlocks)
	v.SetDefault("verify.fail-on-warnings", cfg.Verify.FailOnWarnings)
	v.SetDefault("output.format", string(cfg.Output.Format))

	return nil
}
