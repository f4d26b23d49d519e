package resource

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_MemoryBlocking(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.AcquireMemory(context.Background(), 100))
	assert.Equal(t, int64(100), c.MemoryUsage())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.AcquireMemory(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.False(t, c.TryAcquireMemory(1))

	c.ReleaseMemory(10)
	assert.Equal(t, int64(90), c.MemoryUsage())

	assert.True(t, c.TryAcquireMemory(5))
	assert.Equal(t, int64(95), c.MemoryUsage())
}

func TestController_MemoryClamp(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	// Oversized requests take the whole budget instead of deadlocking.
	require.NoError(t, c.AcquireMemory(context.Background(), 500))
	assert.Equal(t, int64(500), c.MemoryUsage())
	assert.False(t, c.TryAcquireMemory(1))

	c.ReleaseMemory(500)
	assert.Equal(t, int64(0), c.MemoryUsage())
	assert.True(t, c.TryAcquireMemory(100))
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireMemory(context.Background(), 1000))
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
	assert.Equal(t, int64(0), c.MemoryLimit())
}

func TestController_Workers(t *testing.T) {
	c := NewController(Config{MaxWorkers: 2})

	require.NoError(t, c.AcquireWorker(t.Context()))
	require.NoError(t, c.AcquireWorker(t.Context()))
	assert.False(t, c.TryAcquireWorker())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.AcquireWorker(ctx))

	c.ReleaseWorker()
	assert.True(t, c.TryAcquireWorker())
}

func TestController_IO(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1000})
	ctx := context.Background()

	assert.True(t, c.IOLimited())
	assert.NoError(t, c.AcquireIO(ctx, 100))

	c2 := NewController(Config{})
	assert.False(t, c2.IOLimited())
	assert.NoError(t, c2.AcquireIO(ctx, 1000000))
	assert.True(t, c2.TryAcquireIO(1000000))
}

func TestController_NilSafe(t *testing.T) {
	var c *Controller

	assert.NoError(t, c.AcquireMemory(context.Background(), 100))
	assert.True(t, c.TryAcquireMemory(100))
	c.ReleaseMemory(100)
	assert.Equal(t, int64(0), c.MemoryUsage())
	assert.Equal(t, int64(0), c.MemoryLimit())

	assert.NoError(t, c.AcquireWorker(context.Background()))
	assert.True(t, c.TryAcquireWorker())
	c.ReleaseWorker()

	assert.NoError(t, c.AcquireIO(context.Background(), 100))
	assert.True(t, c.TryAcquireIO(100))
	assert.False(t, c.IOLimited())
}

func TestRateLimitedReader(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 10000})
	ctx := context.Background()

	r := NewRateLimitedReader(ctx, bytes.NewReader([]byte("hello world")), c)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))
	assert.NoError(t, r.Close())
}

func TestRateLimitedReader_ContextCanceled(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRateLimitedReader(ctx, bytes.NewReader([]byte("hello world")), c)

	_, err := r.Read(make([]byte, 1000))
	assert.ErrorIs(t, err, context.Canceled)
}
