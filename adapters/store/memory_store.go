package store

import (
	"context"
	"sync"
	"time"

	"github.com/siggy-land/siggy/core"
	"github.com/siggy-land/siggy/ports"
)

// sweepInterval bounds how often Put scans for expired nonces
const sweepInterval = time.Minute

type nonceEntry struct {
	address   string
	expiresAt time.Time
}

// MemoryStore is an in-memory implementation of the NonceStore interface.
// It only guarantees single use within one process.
type MemoryStore struct {
	nonces    map[string]nonceEntry
	mu        sync.Mutex
	now       func() time.Time
	lastSweep time.Time
}

// NewMemoryStore creates a new in-memory nonce store
func NewMemoryStore() ports.NonceStore {
	return newMemoryStore(time.Now)
}

func newMemoryStore(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		nonces: make(map[string]nonceEntry),
		now:    now,
	}
}

// Put registers a nonce until ttl elapses
func (s *MemoryStore) Put(ctx context.Context, nonce, address string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= sweepInterval {
		s.sweep(now)
		s.lastSweep = now
	}
	s.nonces[nonce] = nonceEntry{address: address, expiresAt: now.Add(ttl)}

	return nil
}

// Consume removes the nonce and returns its address
func (s *MemoryStore) Consume(ctx context.Context, nonce string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.nonces[nonce]
	if !ok {
		return "", core.ErrChallengeExpired
	}
	delete(s.nonces, nonce)

	if !s.now().Before(entry.expiresAt) {
		return "", core.ErrChallengeExpired
	}

	return entry.address, nil
}

// sweep drops expired entries; callers hold mu
func (s *MemoryStore) sweep(now time.Time) {
	for nonce, entry := range s.nonces {
		if !now.Before(entry.expiresAt) {
			delete(s.nonces, nonce)
		}
	}
}
