package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_EvictsIdleCallers(t *testing.T) {
	rl := NewRateLimiter(2*time.Second, 5)
	require.Equal(t, time.Minute, rl.idle)

	clock := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	assert.True(t, rl.Allow("idle"))
	assert.True(t, rl.Allow("active"))
	require.Len(t, rl.limits, 2)

	clock = clock.Add(40 * time.Second)
	assert.True(t, rl.Allow("active"))

	clock = clock.Add(30 * time.Second)
	assert.True(t, rl.Allow("fresh"))

	assert.NotContains(t, rl.limits, "idle")
	assert.Contains(t, rl.limits, "active")
	assert.Contains(t, rl.limits, "fresh")
}

func TestRateLimiter_KeepsBucketWhileInUse(t *testing.T) {
	rl := NewRateLimiter(time.Hour, 1)
	clock := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	assert.True(t, rl.Allow("u1"))
	for i := 0; i < 3; i++ {
		clock = clock.Add(time.Minute)
		assert.False(t, rl.Allow("u1"))
	}
	assert.Len(t, rl.limits, 1)
}
