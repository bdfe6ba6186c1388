package store

import (
	"context"
	"errors"
	"time"

	"pizza-rush/internal/game"
)

var ErrNotFound = errors.New("not found")

// DefaultTTL is the absolute expiry safety net on room state and connection
// bindings. Game-level reaping runs much earlier; the TTL only catches rooms
// orphaned by a crashed process.
const DefaultTTL = 24 * time.Hour

// RoomStore is keyed storage of per-room game state plus the connection ->
// room binding. It is the only mechanism through which server processes
// share room state: implementations may live in process memory or behind an
// external database, and callers must not assume which. Concurrent calls for
// different rooms are safe; callers serialize same-room read-modify-writes
// themselves (one critical section per room).
type RoomStore interface {
	// Get returns the room's state or ErrNotFound.
	Get(ctx context.Context, room string) (*game.State, error)
	// Put upserts the state and resets the expiry window.
	Put(ctx context.Context, room string, state *game.State) error
	Delete(ctx context.Context, room string) error
	ListNames(ctx context.Context) ([]string, error)

	BindConn(ctx context.Context, connID, room string) error
	// ConnRoom returns the room a connection is bound to, or ErrNotFound.
	ConnRoom(ctx context.Context, connID string) (string, error)
	UnbindConn(ctx context.Context, connID string) error

	Ping(ctx context.Context) error
	Close() error
}
