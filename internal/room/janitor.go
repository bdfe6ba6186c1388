package room

import (
	"context"

	"github.com/rs/zerolog/log"
)

// runJanitor sweeps periodically until the coordinator's context ends.
func (c *Coordinator) runJanitor() {
	ticker := c.clock.NewTicker(c.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.Chan():
			c.Sweep(c.ctx)
		}
	}
}

// Sweep reaps idle players and dead rooms. A player who has not acted or
// heartbeat within PlayerTimeout is removed; a room with no players, or no
// state change within RoomTimeout, is deleted. Exported for the tests and
// for a manual kick from the operator surface.
func (c *Coordinator) Sweep(ctx context.Context) {
	names, err := c.store.ListNames(ctx)
	if err != nil {
		log.Error().Err(err).Msg("sweep: list rooms")
		return
	}
	for _, name := range names {
		c.sweepRoom(ctx, name)
	}
}

func (c *Coordinator) sweepRoom(ctx context.Context, name string) {
	l := c.lockFor(name)
	l.Lock()
	defer l.Unlock()

	st, err := c.store.Get(ctx, name)
	if err != nil {
		return
	}
	now := c.clock.Now()

	var removed []string
	for id, p := range st.Players {
		if now.Sub(p.LastActivity) >= c.cfg.PlayerTimeout {
			removed = append(removed, id)
		}
	}
	for _, id := range removed {
		st.RemovePlayer(id)
		if err := c.store.UnbindConn(ctx, id); err != nil {
			log.Error().Err(err).Str("conn", id).Msg("sweep: unbind")
		}
		c.bc.Unsubscribe(id)
		log.Info().Str("room", name).Str("conn", id).Msg("idle player removed")
	}

	if len(st.Players) == 0 || now.Sub(st.LastUpdated) >= c.cfg.RoomTimeout {
		if err := c.store.Delete(ctx, name); err != nil {
			log.Error().Err(err).Str("room", name).Msg("sweep: delete room")
			return
		}
		log.Info().Str("room", name).Msg("idle room deleted")
		c.broadcastRoomList(ctx)
		return
	}

	if len(removed) > 0 {
		st.Touch(now)
		if err := c.store.Put(ctx, name, st); err != nil {
			log.Error().Err(err).Str("room", name).Msg("sweep: save room")
			return
		}
		for _, id := range removed {
			c.bc.Broadcast(name, EvtPlayerRemoved, PlayerRemovedEvent{PlayerID: id})
		}
		c.bc.Broadcast(name, EvtGameState, st.Snapshot())
		c.broadcastRoomList(ctx)
	}
}
