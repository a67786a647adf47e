package workflow_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/letterdesk/pkg/redis"
	"github.com/dmitrymomot/letterdesk/svc/workflow"
)

func TestMemoryGuard(t *testing.T) {
	t.Parallel()

	now := fixedNow
	g := workflow.NewMemoryGuard(func() time.Time { return now })
	ctx := context.Background()

	release, err := g.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	_, err = g.Acquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, workflow.ErrInProgress)

	_, err = g.Acquire(ctx, "other", time.Minute)
	assert.NoError(t, err)

	release()
	release2, err := g.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	// A stale release does not drop the newer lease.
	release()
	_, err = g.Acquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, workflow.ErrInProgress)
	release2()
}

func TestMemoryGuard_Expiry(t *testing.T) {
	t.Parallel()

	now := fixedNow
	g := workflow.NewMemoryGuard(func() time.Time { return now })
	ctx := context.Background()

	_, err := g.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	_, err = g.Acquire(ctx, "k", time.Second)
	assert.NoError(t, err)
}

// TestRedisGuard runs against a live server when REDIS_TEST_URL is set.
func TestRedisGuard(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}

	ctx := context.Background()
	client, err := redis.Connect(ctx, redis.Config{ConnectionURL: url, RetryAttempts: 1, ConnectTimeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	g := workflow.NewRedisGuard(client, "letterdesk:test:"+uuid.NewString()+":")

	release, err := g.Acquire(ctx, "k", 5*time.Second)
	require.NoError(t, err)
	_, err = g.Acquire(ctx, "k", 5*time.Second)
	assert.ErrorIs(t, err, workflow.ErrInProgress)

	release()
	release()
	release2, err := g.Acquire(ctx, "k", 5*time.Second)
	require.NoError(t, err)
	release2()
}
