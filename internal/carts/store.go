package carts

import (
	"context"
	"encoding/json"
	"sync"
)

// Store persists carts. Get returns ErrCartNotFound for unknown ids.
// The registry re-binds catalog and clock after every Get.
type Store interface {
	Get(ctx context.Context, id string) (*Cart, error)
	Put(ctx context.Context, c *Cart) error
}

// MemoryStore keeps carts in process, serialized the same way the Redis
// store does so both round-trip identically.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: map[string][]byte{}}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Cart, error) {
	s.mu.RLock()
	b, ok := s.carts[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrCartNotFound
	}
	var c Cart
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *MemoryStore) Put(_ context.Context, c *Cart) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.carts[c.ID] = b
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.carts)
}
