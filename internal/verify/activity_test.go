package verify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestActivityWindowBlocks(t *testing.T) {
	tests := []struct {
		name          string
		chainID       uint64
		window        time.Duration
		fallback      uint64
		maxBlockRange uint64
		want          uint64
	}{
		{name: "ethereum day with chunking", chainID: 1, window: 24 * time.Hour, fallback: 1000, maxBlockRange: 10000, want: 7200},
		{name: "ethereum day without chunking is capped", chainID: 1, window: 24 * time.Hour, fallback: 1000, want: 1000},
		{name: "window below fallback", chainID: 1, window: time.Hour, fallback: 1000, want: 300},
		{name: "arbitrum one hour", chainID: 42161, window: time.Hour, fallback: 20000, want: 14400},
		{name: "unknown chain", chainID: 999, window: time.Hour, fallback: 1234, maxBlockRange: 10000, want: 1234},
		{name: "no window", chainID: 1, fallback: 50, want: 50},
		{name: "no fallback never caps", chainID: 8453, window: time.Hour, want: 1800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, activityWindowBlocks(tt.chainID, tt.window, tt.fallback, tt.maxBlockRange))
		})
	}
}
