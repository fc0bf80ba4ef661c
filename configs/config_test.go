package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := DefaultConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, uint64(45818), cfg.Verify.MinConfirmPeriodBlocks)
	assert.Equal(t, 24*time.Hour, cfg.Verify.ActivityWindow)
	assert.Equal(t, uint64(10000), cfg.Verify.FallbackActivityBlocks)
	assert.Equal(t, OutputFormatTable, cfg.Output.Format)
	assert.False(t, cfg.HasOrbit())
}

func TestConfigValidate(t *testing.T) {
	valid := MustDefaultConfig()
	valid.Parent.RPCURL = "http://localhost:8545"
	require.NoError(t, valid.Validate())

	missingParent := valid
	missingParent.Parent.RPCURL = ""
	err := missingParent.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parent.rpc-url is required")

	badCreator := valid
	badCreator.Verify.TokenBridgeCreator = "0x1234"
	err = badCreator.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verify.token-bridge-creator")

	badFormat := valid
	badFormat.Output.Format = "xml"
	err = badFormat.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.format")
}

func TestTokenBridgeCreatorAddress(t *testing.T) {
	v := Verify{}
	_, ok := v.TokenBridgeCreatorAddress()
	assert.False(t, ok)

	v.TokenBridgeCreator = "0x60D9A46F24D5a35b95A78Dd3E793e55D94EE0660"
	addr, ok := v.TokenBridgeCreatorAddress()
	assert.True(t, ok)
	assert.Equal(t, "0x60D9A46F24D5a35b95A78Dd3E793e55D94EE0660", addr.Hex())
}
