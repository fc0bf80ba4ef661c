package verify

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serializeKeyset(assumedHonest, count uint64, keys ...[]byte) []byte {
	out := binary.BigEndian.AppendUint64(nil, assumedHonest)
	out = binary.BigEndian.AppendUint64(out, count)
	for _, key := range keys {
		out = binary.BigEndian.AppendUint16(out, uint16(len(key)))
		out = append(out, key...)
	}
	return out
}

func TestParseKeyset(t *testing.T) {
	first, second := bytes.Repeat([]byte{0x01}, 97), bytes.Repeat([]byte{0x02}, 97)

	ks, err := ParseKeyset(serializeKeyset(1, 2, first, second))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), ks.AssumedHonest)
	require.Len(t, ks.PubKeys, 2)
	assert.Equal(t, second, ks.PubKeys[1])
	assert.False(t, ks.HasZeroKey())

	ks, err = ParseKeyset(serializeKeyset(1, 1, make([]byte, 97)))
	require.NoError(t, err)
	assert.True(t, ks.HasZeroKey())
}

func TestParseKeysetErrors(t *testing.T) {
	key := bytes.Repeat([]byte{0x01}, 97)

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{name: "too short", data: []byte{0, 1, 2}, want: "too short"},
		{name: "too many keys", data: serializeKeyset(1, 65), want: "at most 64"},
		{name: "missing key", data: serializeKeyset(1, 2, key), want: "truncated at key 1"},
		{name: "short key", data: serializeKeyset(1, 1, key)[:16+2+10], want: "truncated in key 0"},
		{name: "trailing bytes", data: append(serializeKeyset(1, 1, key), 0xff), want: "trailing bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseKeyset(tt.data)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
