package verify

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/compose-network/orbit-audit/configs"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deploy.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"rollup":"0x00000000000000000000000000000000000000b4","deployed-at":7}`), 0644))

	cfg, err := newConfig(configs.Verify{
		TokenBridgeCreator:     "0x60D9A46F24D5a35b95A78Dd3E793e55D94EE0660",
		MinConfirmPeriodBlocks: 10,
		ActivityWindow:         time.Hour,
		FallbackActivityBlocks: 20,
		DeploymentFile:         path,
	})
	require.NoError(t, err)

	require.NotNil(t, cfg.TokenBridgeCreator)
	assert.Equal(t, common.HexToAddress("0x60D9A46F24D5a35b95A78Dd3E793e55D94EE0660"), *cfg.TokenBridgeCreator)
	assert.Equal(t, uint64(10), cfg.MinConfirmPeriodBlocks)
	assert.Equal(t, time.Hour, cfg.ActivityWindow)
	require.NotNil(t, cfg.Deployment)
	assert.Equal(t, uint64(7), cfg.Deployment.DeployedAt)

	cfg, err = newConfig(configs.Verify{})
	require.NoError(t, err)
	assert.Nil(t, cfg.TokenBridgeCreator)
	assert.Nil(t, cfg.Deployment)

	_, err = newConfig(configs.Verify{DeploymentFile: filepath.Join(t.TempDir(), "missing.json")})
	require.Error(t, err)
}

func TestResultTable(t *testing.T) {
	empty := Result{Warnings: Warnings{}}.Table()
	require.Len(t, empty.Rows, 1)
	assert.Equal(t, "No warnings.", empty.Rows[0][1])

	table := Result{Warnings: Warnings{"a", "a"}}.Table()
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"2", "a"}, table.Rows[1])
}
