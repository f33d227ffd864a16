package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBurstFor(t *testing.T) {
	tests := []struct {
		perMinute int
		want      int
	}{
		{1, 1},
		{9, 1},
		{20, 2},
		{50, 5},
		{600, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, burstFor(tt.perMinute), "perMinute=%d", tt.perMinute)
	}
}

func TestLimiter_BurstThenBlocks(t *testing.T) {
	l := NewLimiter("files", 30) // burst 3, one token every 2s
	assert.False(t, l.Unlimited())
	assert.Equal(t, "files (30/min, burst 3)", l.String())

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(), "load %d should use the burst", i)
	}
	assert.False(t, l.Allow())
}

func TestLimiter_Wait(t *testing.T) {
	l := NewLimiter("files", 120)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	require.NoError(t, l.Wait(ctx))
	assert.Less(t, time.Since(start), time.Second)
}

func TestLimiter_Unlimited(t *testing.T) {
	l := NewLimiter("files", 0)
	require.True(t, l.Unlimited())
	assert.Equal(t, "files (unlimited)", l.String())

	for i := 0; i < 1000; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	l := NewLimiter("files", 1)
	require.True(t, l.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Wait(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "files")
}
