package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"pizza-rush/internal/game"
)

type memoryEntry struct {
	state     json.RawMessage
	expiresAt time.Time
}

type connEntry struct {
	room      string
	expiresAt time.Time
}

// MemoryStore is the single-process RoomStore backend. State round-trips
// through JSON so callers get the same copy semantics as the database
// backend: a loaded state is never aliased by another caller.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]memoryEntry
	conns map[string]connEntry
	ttl   time.Duration
	clock clockwork.Clock
}

func NewMemoryStore(ttl time.Duration, clock clockwork.Clock) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryStore{
		rooms: map[string]memoryEntry{},
		conns: map[string]connEntry{},
		ttl:   ttl,
		clock: clock,
	}
}

func (m *MemoryStore) Get(_ context.Context, room string) (*game.State, error) {
	m.mu.RLock()
	entry, ok := m.rooms[room]
	m.mu.RUnlock()
	if !ok || m.clock.Now().After(entry.expiresAt) {
		return nil, ErrNotFound
	}
	var state game.State
	if err := json.Unmarshal(entry.state, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (m *MemoryStore) Put(_ context.Context, room string, state *game.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.rooms[room] = memoryEntry{state: raw, expiresAt: m.clock.Now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, room string) error {
	m.mu.Lock()
	delete(m.rooms, room)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) ListNames(_ context.Context) ([]string, error) {
	now := m.clock.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.rooms))
	for name, entry := range m.rooms {
		if now.After(entry.expiresAt) {
			delete(m.rooms, name)
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

func (m *MemoryStore) BindConn(_ context.Context, connID, room string) error {
	m.mu.Lock()
	m.conns[connID] = connEntry{room: room, expiresAt: m.clock.Now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) ConnRoom(_ context.Context, connID string) (string, error) {
	m.mu.RLock()
	entry, ok := m.conns[connID]
	m.mu.RUnlock()
	if !ok || m.clock.Now().After(entry.expiresAt) {
		return "", ErrNotFound
	}
	return entry.room, nil
}

func (m *MemoryStore) UnbindConn(_ context.Context, connID string) error {
	m.mu.Lock()
	delete(m.conns, connID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
