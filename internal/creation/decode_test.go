package creation

import (
	"math/big"
	"testing"

	"github.com/compose-network/orbit-audit/internal/contracts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDeployParametersRoundTrip(t *testing.T) {
	in := &DeployParameters{
		ConfirmPeriodBlocks: 150,
		Owner:               common.HexToAddress("0x0a"),
		ChainID:             big.NewInt(1337),
		ChainConfig:         `{"chainId":1337}`,
		BatchPosters:        []common.Address{common.HexToAddress("0x0b"), common.HexToAddress("0x0c")},
		BatchPosterManager:  common.HexToAddress("0x0d"),
	}

	for _, version := range contracts.CreatorVersions {
		t.Run(string(version), func(t *testing.T) {
			input, err := EncodeCreateRollup(version, in)
			require.NoError(t, err)

			out, err := DecodeDeployParameters(input)
			require.NoError(t, err)
			assert.Equal(t, version, out.Version)
			assert.Equal(t, uint64(150), out.ConfirmPeriodBlocks)
			assert.Equal(t, int64(1337), out.ChainID.Int64())
			assert.Equal(t, in.ChainConfig, out.ChainConfig)

			switch version {
			case contracts.CreatorV1_1:
				assert.Equal(t, in.BatchPosters, out.BatchPosters)
				assert.Equal(t, in.BatchPosterManager, out.BatchPosterManager)
			case contracts.CreatorV1_0:
				assert.Equal(t, in.BatchPosters[:1], out.BatchPosters)
			default:
				assert.Empty(t, out.BatchPosters)
			}
		})
	}
}

func TestDecodeDeployParametersUnknownSelector(t *testing.T) {
	_, err := DecodeDeployParameters([]byte{0x01, 0x02, 0x03, 0x04, 0x05})
	require.ErrorIs(t, err, errShapeMismatch)

	_, err = DecodeDeployParameters([]byte{0x01})
	require.Error(t, err)
}

func TestDecodeCreatedAddressesSkipsOtherRollups(t *testing.T) {
	other := &types.Log{
		Address: common.HexToAddress("0xc0"),
		Topics: []common.Hash{
			contracts.EventRollupCreatedLegacy.Topic0,
			common.BytesToHash(common.HexToAddress("0x99").Bytes()),
		},
		Data: make([]byte, 4*32),
	}
	unrelated := &types.Log{Topics: []common.Hash{contracts.EventRollupInitialized.Topic0}}

	_, _, ok := DecodeCreatedAddresses([]*types.Log{unrelated, other, {}}, common.HexToAddress("0x02"))
	assert.False(t, ok)

	addresses, creator, ok := DecodeCreatedAddresses([]*types.Log{unrelated, other}, common.HexToAddress("0x99"))
	require.True(t, ok)
	assert.True(t, addresses.Legacy)
	assert.Equal(t, common.HexToAddress("0xc0"), creator)
}

func TestParseChainConfig(t *testing.T) {
	cfg, err := ParseChainConfig(`{"chainId":42,"arbitrum":{"DataAvailabilityCommittee":true,"InitialChainOwner":"0x000000000000000000000000000000000000000a"}}`)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), cfg.ChainID)
	assert.True(t, cfg.IsAnyTrust())
	assert.Equal(t, common.HexToAddress("0x0a"), cfg.Arbitrum.InitialChainOwner)

	_, err = ParseChainConfig("not json")
	require.Error(t, err)

	var missing *ChainConfig
	assert.False(t, missing.IsAnyTrust())
}
