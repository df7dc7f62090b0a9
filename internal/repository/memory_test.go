package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRateLimitRepository(t *testing.T) {
	repo := NewMemoryRateLimitRepository()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	t.Run("RateLimit", func(t *testing.T) {
		key := "client-1"
		allowed, err := repo.CheckRateLimit(ctx, key, 2, time.Second)
		require.NoError(t, err)
		assert.True(t, allowed)
		allowed, _ = repo.CheckRateLimit(ctx, key, 2, time.Second)
		assert.True(t, allowed)
		allowed, _ = repo.CheckRateLimit(ctx, key, 2, time.Second)
		assert.False(t, allowed)

		now = now.Add(time.Second)
		allowed, _ = repo.CheckRateLimit(ctx, key, 2, time.Second)
		assert.True(t, allowed)
	})

	t.Run("Prune", func(t *testing.T) {
		_, _ = repo.CheckRateLimit(ctx, "short", 5, time.Millisecond)
		_, _ = repo.CheckRateLimit(ctx, "long", 5, time.Hour)

		now = now.Add(time.Minute)
		removed := repo.Prune()

		assert.Equal(t, 2, removed) // "short" and "client-1"
		_, ok := repo.entries["long"]
		assert.True(t, ok)
	})
}
