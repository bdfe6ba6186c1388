package room

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"pizza-rush/internal/config"
	"pizza-rush/internal/game"
	"pizza-rush/internal/scoreboard"
	"pizza-rush/internal/store"
)

// Broadcaster pushes events out to connected clients. The websocket server
// implements it; tests substitute a recorder.
type Broadcaster interface {
	Broadcast(room, event string, data any)
	BroadcastAll(event string, data any)
	Send(connID, event string, data any)
	Subscribe(connID, room string)
	Unsubscribe(connID string)
}

// maxOrderRelease bounds how many round 3 orders one heartbeat may reveal,
// so a room idle for a long stretch does not flood clients on wake.
const maxOrderRelease = 10

// Coordinator serializes all game mutations. Every handler resolves the
// connection's room, takes that room's lock, runs read-modify-write against
// the store and broadcasts only after the write, so clients never observe an
// event ahead of its persisted state.
type Coordinator struct {
	store  store.RoomStore
	scores scoreboard.Scoreboard
	bc     Broadcaster
	clock  clockwork.Clock
	cfg    config.GameConfig

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	gens  map[string]uint64

	rngMu sync.Mutex
	rng   *rand.Rand

	ctx context.Context
}

func New(st store.RoomStore, scores scoreboard.Scoreboard, bc Broadcaster, clock clockwork.Clock, cfg config.GameConfig) *Coordinator {
	return &Coordinator{
		store:  st,
		scores: scores,
		bc:     bc,
		clock:  clock,
		cfg:    cfg,
		locks:  map[string]*sync.Mutex{},
		gens:   map[string]uint64{},
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		ctx:    context.Background(),
	}
}

// Start binds the coordinator's background work to ctx and launches the
// inactivity sweeper. Timers armed after Start stop when ctx is canceled.
func (c *Coordinator) Start(ctx context.Context) {
	c.ctx = ctx
	go c.runJanitor()
}

// lockFor returns the room's mutex, creating it on first use. Entries are
// never removed: a stale mutex for a deleted room is a few bytes, and
// removal would race re-creation of the same room name.
func (c *Coordinator) lockFor(room string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[room]
	if !ok {
		l = &sync.Mutex{}
		c.locks[room] = l
	}
	return l
}

func (c *Coordinator) settings() game.Settings {
	return game.Settings{
		MaxRounds:       c.cfg.MaxRounds,
		RoundDuration:   c.cfg.RoundDuration,
		DebriefDuration: c.cfg.DebriefDuration,
		OvenCapacity:    c.cfg.OvenCapacity,
	}
}

func (c *Coordinator) genOrders(roundDuration time.Duration) []game.Order {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return game.GenerateOrders(roundDuration, c.rng)
}

// broadcastRoomList pushes the lobby view (room name -> player count, plus
// the high-score table) to every connection. Reads race in-flight mutations
// harmlessly; the next change re-broadcasts.
func (c *Coordinator) broadcastRoomList(ctx context.Context) {
	names, err := c.store.ListNames(ctx)
	if err != nil {
		log.Error().Err(err).Msg("room list")
		return
	}
	rooms := make(map[string]int, len(names))
	for _, name := range names {
		st, err := c.store.Get(ctx, name)
		if err != nil {
			continue
		}
		rooms[name] = len(st.Players)
	}
	high, err := c.scores.Top(ctx)
	if err != nil {
		log.Error().Err(err).Msg("high scores")
		high = map[int]map[int]scoreboard.Entry{}
	}
	c.bc.BroadcastAll(EvtRoomList, RoomListEvent{Rooms: rooms, HighScores: high})
}

// Overview returns a coarse snapshot of every live room, sorted by name.
func (c *Coordinator) Overview(ctx context.Context) ([]RoomOverview, error) {
	names, err := c.store.ListNames(ctx)
	if err != nil {
		return nil, err
	}
	now := c.clock.Now()
	out := make([]RoomOverview, 0, len(names))
	for _, name := range names {
		st, err := c.store.Get(ctx, name)
		if err != nil {
			continue
		}
		out = append(out, RoomOverview{
			Name:        st.Name,
			Players:     len(st.Players),
			Round:       st.Round,
			Phase:       st.Phase,
			TimeLeft:    int(st.RemainingTime(now) / time.Second),
			Built:       len(st.Built),
			InOven:      len(st.Oven),
			Completed:   len(st.Completed),
			Wasted:      len(st.Wasted),
			OrdersOpen:  len(st.CustomerOrders),
			LastUpdated: st.LastUpdated.UTC().Format(time.RFC3339),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
