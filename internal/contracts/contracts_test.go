package contracts

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreateRollupMethods(t *testing.T) {
	methods, err := LoadCreateRollupMethods()
	require.NoError(t, err)
	require.Len(t, methods, 3)

	seen := make(map[[4]byte]CreatorVersion)
	for i, m := range methods {
		assert.Equal(t, CreatorVersions[i], m.Version)
		assert.Equal(t, "createRollup", m.Method.Name)

		var id [4]byte
		copy(id[:], m.Method.ID)
		_, dup := seen[id]
		assert.False(t, dup, "selector of %s collides", m.Version)
		seen[id] = m.Version
	}

	assert.Len(t, methods[0].Method.Inputs, 1)
	assert.Len(t, methods[2].Method.Inputs, 2)
}

func TestParseCreatorABIsMissingVersion(t *testing.T) {
	_, err := parseCreatorABIs([]byte(`{"v1.1": []}`))
	require.Error(t, err)
}

func TestRoleName(t *testing.T) {
	assert.Equal(t, "ADMIN_ROLE", RoleName(AdminRole))
	assert.Equal(t, "EXECUTOR_ROLE", RoleName(ExecutorRole))
	assert.Equal(t, "0x0000000000000000000000000000000000000000000000000000000000000000", RoleName([32]byte{}))
}

func TestEventTopicsDistinct(t *testing.T) {
	assert.NotEqual(t, EventRollupCreated.Topic0, EventRollupCreatedLegacy.Topic0)
	assert.NotEqual(t, EventRoleGranted.Topic0, EventRoleRevoked.Topic0)
	assert.NotEqual(t, TopicNodeCreated, TopicAssertionCreated)
}

func TestActivityTopics(t *testing.T) {
	tests := []struct {
		name  string
		topic common.Hash
		want  string
	}{
		{"SequencerBatchDelivered", TopicSequencerBatchDelivered, "0x7394f4a19a13c7b92b5bb71033245305946ef78452f7b4986ac1390b5df4ebd7"},
		{"NodeCreated", TopicNodeCreated, "0x4f4caa9e67fb994e349dd35d1ad0ce23053d4323f83ce11dc817b5435031d096"},
		{"AssertionCreated", TopicAssertionCreated, "0x901c3aee23cf4478825462caaab375c606ab83516060388344f0650340753630"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, common.HexToHash(tt.want), tt.topic)
		})
	}
}
