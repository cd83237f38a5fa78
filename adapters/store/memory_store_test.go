package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/siggy-land/siggy/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreConsumeOnce(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "n1", "0xabc", time.Minute))

	addr, err := s.Consume(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, "0xabc", addr)

	_, err = s.Consume(ctx, "n1")
	assert.ErrorIs(t, err, core.ErrChallengeExpired)
}

func TestMemoryStoreUnknownNonce(t *testing.T) {
	_, err := NewMemoryStore().Consume(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrChallengeExpired)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	s := newMemoryStore(func() time.Time { return now })

	require.NoError(t, s.Put(ctx, "n1", "0xabc", time.Minute))
	require.NoError(t, s.Put(ctx, "n2", "0xdef", time.Hour))

	now = now.Add(time.Minute)

	_, err := s.Consume(ctx, "n1")
	assert.ErrorIs(t, err, core.ErrChallengeExpired)

	require.NoError(t, s.Put(ctx, "n3", "0x123", time.Minute))
	assert.Len(t, s.nonces, 2)

	addr, err := s.Consume(ctx, "n2")
	require.NoError(t, err)
	assert.Equal(t, "0xdef", addr)
}

func TestMemoryStoreSweepsOnInterval(t *testing.T) {
	ctx := context.Background()
	start := time.Unix(1_700_000_000, 0)
	now := start
	s := newMemoryStore(func() time.Time { return now })

	require.NoError(t, s.Put(ctx, "n1", "0xabc", 10*time.Second))

	now = start.Add(20 * time.Second)
	require.NoError(t, s.Put(ctx, "n2", "0xdef", time.Hour))
	assert.Len(t, s.nonces, 2, "expired nonce kept until the next sweep")

	now = start.Add(sweepInterval)
	require.NoError(t, s.Put(ctx, "n3", "0x123", time.Hour))
	assert.Len(t, s.nonces, 2)
	assert.NotContains(t, s.nonces, "n1")

	_, err := s.Consume(ctx, "n1")
	assert.ErrorIs(t, err, core.ErrChallengeExpired)
}

func TestMemoryStoreConcurrentConsume(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Put(ctx, "n1", "0xabc", time.Minute))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Consume(ctx, "n1"); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, wins.Load())
}
