package game

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	idEntropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	idEntropyMu sync.Mutex
)

// newShortID returns an 8-char lowercase id for in-room entities
// (ingredients, pizzas, orders). Uniqueness matters only within a room.
func newShortID() string {
	idEntropyMu.Lock()
	defer idEntropyMu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), idEntropy).String()
	return strings.ToLower(id[len(id)-8:])
}
