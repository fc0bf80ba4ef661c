package deployment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deployJSON = `{
  "bridge": "0x00000000000000000000000000000000000000b1",
  "inbox": "0x00000000000000000000000000000000000000b2",
  "sequencer-inbox": "0x00000000000000000000000000000000000000b3",
  "deployed-at": 100,
  "rollup": "0x00000000000000000000000000000000000000b4",
  "native-token": "0x0000000000000000000000000000000000000000",
  "upgrade-executor": "0x00000000000000000000000000000000000000b5",
  "validator-utils": "0x00000000000000000000000000000000000000b6",
  "validator-wallet-creator": "0x00000000000000000000000000000000000000b7"
}`

func TestReadRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deploy.json")
	require.NoError(t, os.WriteFile(path, []byte(deployJSON), 0644))

	record, err := NewReader().ReadRecord(path)
	require.NoError(t, err)

	assert.Equal(t, common.HexToAddress("0xb3"), record.SequencerInbox)
	assert.Equal(t, uint64(100), record.DeployedAt)

	fields := record.Fields()
	require.Len(t, fields, 7)
	assert.Equal(t, "bridge", fields[0].Name)
	assert.Equal(t, "upgrade-executor", fields[4].Name)
}

func TestReadRecordErrors(t *testing.T) {
	_, err := NewReader().ReadRecord(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "deploy.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"bridge": 12}`), 0644))
	_, err = NewReader().ReadRecord(path)
	require.Error(t, err)
}
