package configs

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const EnvPrefix = "ORBIT_AUDIT"

var Values Config

type (
	OutputFormat string

	Config struct {
		Log    Log    `mapstructure:"log"`
		Parent Chain  `mapstructure:"parent"`
		Orbit  Chain  `mapstructure:"orbit"`
		Verify Verify `mapstructure:"verify"`
		Output Output `mapstructure:"output"`
	}

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	}

	// Chain describes how to reach one chain layer. MaxBlockRange bounds a
	// single eth_getLogs call; 0 means the provider accepts any range.
	Chain struct {
		RPCURL        string `mapstructure:"rpc-url"`
		MaxBlockRange uint64 `mapstructure:"max-block-range"`
		FromBlock     uint64 `mapstructure:"from-block"`
	}

	Verify struct {
		TokenBridgeCreator     string        `mapstructure:"token-bridge-creator"`
		MinConfirmPeriodBlocks uint64        `mapstructure:"min-confirm-period-blocks"`
		ActivityWindow         time.Duration `mapstructure:"activity-window"`
		FallbackActivityBlocks uint64        `mapstructure:"fallback-activity-blocks"`
		DeploymentFile         string        `mapstructure:"deployment-file"`
		// FailOnWarnings makes verify-rollup exit with an error when any
		// warning is reported.
		FailOnWarnings bool `mapstructure:"fail-on-warnings"`
	}

	Output struct {
		Format OutputFormat `mapstructure:"format"`
		File   string       `mapstructure:"file"`
	}
)

const (
	OutputFormatTable OutputFormat = "table"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatYAML  OutputFormat = "yaml"
)

func (c *Config) Validate() error {
	var errs []error

	if c.Parent.RPCURL == "" {
		errs = append(errs, errors.New("parent.rpc-url is required"))
	}

	if err := c.Verify.Validate(); err != nil {
		errs = append(errs, err)
	}

	switch c.Output.Format {
	case "", OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
	default:
		errs = append(errs, fmt.Errorf("output.format must be one of 'table', 'json' or 'yaml', got '%s'", c.Output.Format))
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format must be either 'json' or 'text', got '%s'", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}

func (v *Verify) Validate() error {
	var errs []error

	if v.TokenBridgeCreator != "" && !common.IsHexAddress(v.TokenBridgeCreator) {
		errs = append(errs, fmt.Errorf("verify.token-bridge-creator is not a valid address: '%s'", v.TokenBridgeCreator))
	}
	if v.ActivityWindow < 0 {
		errs = append(errs, errors.New("verify.activity-window must not be negative"))
	}

	return errors.Join(errs...)
}

// HasOrbit reports whether the orbit chain endpoint is configured.
func (c *Config) HasOrbit() bool {
	return c.Orbit.RPCURL != ""
}

// TokenBridgeCreatorAddress returns the configured token bridge creator, if any.
func (v *Verify) TokenBridgeCreatorAddress() (common.Address, bool) {
	if v.TokenBridgeCreator == "" {
		return common.Address{}, false
	}
	return common.HexToAddress(v.TokenBridgeCreator), true
}
