package room

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"pizza-rush/internal/game"
)

// Timer supersession works by generation counter: arming a timer for a room
// bumps the room's generation and tags the goroutine with it. A goroutine
// whose generation is no longer current was replaced (the phase advanced
// through the heartbeat path, or a new round started) and exits without
// firing. The state machine's own phase guards are the second line; the
// generations just keep dead timers from burning a lock.
func (c *Coordinator) bumpGen(room string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[room]++
	return c.gens[room]
}

func (c *Coordinator) genCurrent(room string, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[room] == gen
}

// armRoundTimer schedules the end of a round, sampling the workflow counters
// along the way.
func (c *Coordinator) armRoundTimer(room string, d time.Duration) {
	gen := c.bumpGen(room)
	go c.runRoundTimer(room, d, gen)
}

func (c *Coordinator) runRoundTimer(room string, d time.Duration, gen uint64) {
	interval := c.cfg.SnapshotInterval
	if interval <= 0 || interval > d {
		interval = d
	}
	remaining := d
	for remaining > interval {
		if !c.sleep(interval) {
			return
		}
		if !c.genCurrent(room, gen) {
			return
		}
		c.recordSnapshot(room)
		remaining -= interval
	}
	if remaining > 0 && !c.sleep(remaining) {
		return
	}
	if !c.genCurrent(room, gen) {
		return
	}
	// Last sample lands on the round boundary, before the history is folded
	// into the result.
	c.recordSnapshot(room)
	c.endRound(room)
}

// armDebriefTimer schedules the fall back to the waiting phase.
func (c *Coordinator) armDebriefTimer(room string, d time.Duration) {
	gen := c.bumpGen(room)
	go func() {
		if !c.sleep(d) {
			return
		}
		if !c.genCurrent(room, gen) {
			return
		}
		c.resetRound(room)
	}()
}

// sleep waits d on the injected clock, false when the coordinator is
// shutting down.
func (c *Coordinator) sleep(d time.Duration) bool {
	select {
	case <-c.ctx.Done():
		return false
	case <-c.clock.After(d):
		return true
	}
}

func (c *Coordinator) recordSnapshot(room string) {
	l := c.lockFor(room)
	l.Lock()
	defer l.Unlock()

	st, err := c.store.Get(c.ctx, room)
	if err != nil {
		return
	}
	if !st.RecordCFDSnapshot(c.clock.Now()) {
		return
	}
	if err := c.store.Put(c.ctx, room, st); err != nil {
		log.Error().Err(err).Str("room", room).Msg("snapshot: save room")
	}
}

func (c *Coordinator) endRound(room string) {
	l := c.lockFor(room)
	l.Lock()
	defer l.Unlock()

	st, err := c.store.Get(c.ctx, room)
	if err != nil {
		return
	}
	c.endRoundLocked(c.ctx, room, st, c.clock.Now())
}

func (c *Coordinator) resetRound(room string) {
	l := c.lockFor(room)
	l.Lock()
	defer l.Unlock()

	st, err := c.store.Get(c.ctx, room)
	if err != nil {
		return
	}
	c.resetRoundLocked(c.ctx, room, st, c.clock.Now())
}

// endRoundLocked finishes the round under an already-held room lock. Both
// the timer and the heartbeat funnel through here; whichever arrives second
// sees the debrief phase and does nothing.
func (c *Coordinator) endRoundLocked(ctx context.Context, room string, st *game.State, now time.Time) {
	ovenWasOn := st.OvenOn
	result, fired := st.EndRound(now)
	if !fired {
		return
	}
	if err := c.store.Put(ctx, room, st); err != nil {
		log.Error().Err(err).Str("room", room).Msg("end round: save room")
		return
	}
	if err := c.scores.Save(ctx, room, result.Round, result.Score); err != nil {
		log.Error().Err(err).Str("room", room).Msg("end round: save score")
	}
	log.Info().Str("room", room).Int("round", result.Round).Int("score", result.Score).Msg("round ended")
	if ovenWasOn {
		c.bc.Broadcast(room, EvtOvenToggled, OvenToggledEvent{State: "off"})
	}
	c.bc.Broadcast(room, EvtGameState, st.Snapshot())
	c.bc.Broadcast(room, EvtRoundEnded, result)
	c.armDebriefTimer(room, st.DebriefDuration)
	c.broadcastRoomList(ctx)
}

// resetRoundLocked returns the room to the waiting phase once the debrief
// runs out.
func (c *Coordinator) resetRoundLocked(ctx context.Context, room string, st *game.State, now time.Time) {
	if !st.ResetRound(now) {
		return
	}
	c.bumpGen(room)
	if err := c.store.Put(ctx, room, st); err != nil {
		log.Error().Err(err).Str("room", room).Msg("reset round: save room")
		return
	}
	log.Info().Str("room", room).Int("round", st.Round).Msg("room back to waiting")
	c.bc.Broadcast(room, EvtGameState, st.Snapshot())
}
