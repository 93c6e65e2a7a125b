package cartstate

import (
	"context"
	"sync"

	"nimbus-pos/internal/cart"
)

// Memory keeps encoded carts in process. Used by tests and single-node demos.
type Memory struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, key string) (cart.State, error) {
	m.mu.RLock()
	payload, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return cart.State{}, cart.ErrNoState
	}
	return cart.DecodeState(payload)
}

func (m *Memory) Save(_ context.Context, key string, st cart.State) error {
	payload, err := cart.EncodeState(st)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.items[key] = payload
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *Memory) Ping(context.Context) error { return nil }
func (m *Memory) Close() error               { return nil }
