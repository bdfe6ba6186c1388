package room

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"pizza-rush/internal/game"
	"pizza-rush/internal/store"
)

// Rejection messages shown to players. Kept short; clients display them
// verbatim.
const (
	msgFieldsMissing   = "Room name and passphrase are required."
	msgMaxRooms        = "Maximum number of rooms reached."
	msgBadPassphrase   = "Incorrect passphrase."
	msgRoomFull        = "Room is full."
	msgInvalidCombo    = "Invalid Combo!"
	msgNoMatchingOrder = "No matching order!"
	msgOvenRunning     = "Oven is ON! Cannot move pizzas."
	msgOvenUnavailable = "Oven full or pizza not found."
	msgNotInRound      = "Oven can only be used during a round."
	msgStaleIngredient = "Ingredient is no longer available."
	msgUnknownTarget   = "Target player is not in the room."
)

// Connected fires on a fresh websocket before any join; the client gets the
// lobby view so it can pick a room.
func (c *Coordinator) Connected(ctx context.Context, connID string) {
	c.broadcastRoomList(ctx)
}

// Join validates the room/passphrase pair, creating the room on first join.
// Presenting the correct passphrase is the only credential there is.
func (c *Coordinator) Join(ctx context.Context, connID, name, passphrase string) {
	if name == "" || passphrase == "" {
		c.bc.Send(connID, EvtJoinError, ErrorEvent{Message: msgFieldsMissing})
		return
	}
	l := c.lockFor(name)
	l.Lock()
	defer l.Unlock()

	now := c.clock.Now()
	st, err := c.store.Get(ctx, name)
	switch {
	case errors.Is(err, store.ErrNotFound):
		names, lerr := c.store.ListNames(ctx)
		if lerr != nil {
			log.Error().Err(lerr).Str("room", name).Msg("join: list rooms")
			return
		}
		if len(names) >= c.cfg.MaxRooms {
			c.bc.Send(connID, EvtJoinError, ErrorEvent{Message: msgMaxRooms})
			return
		}
		st = game.NewState(name, passphrase, now, c.settings())
	case err != nil:
		log.Error().Err(err).Str("room", name).Msg("join: load room")
		return
	case st.Passphrase != passphrase:
		c.bc.Send(connID, EvtJoinError, ErrorEvent{Message: msgBadPassphrase})
		return
	}

	if _, rejoining := st.Players[connID]; !rejoining && len(st.Players) >= c.cfg.MaxPlayers {
		c.bc.Send(connID, EvtJoinError, ErrorEvent{Message: msgRoomFull})
		return
	}
	st.AddPlayer(connID, now)
	if err := c.store.Put(ctx, name, st); err != nil {
		log.Error().Err(err).Str("room", name).Msg("join: save room")
		return
	}
	if err := c.store.BindConn(ctx, connID, name); err != nil {
		log.Error().Err(err).Str("room", name).Msg("join: bind conn")
	}
	c.bc.Subscribe(connID, name)
	log.Info().Str("room", name).Str("conn", connID).Int("players", len(st.Players)).Msg("player joined")
	c.bc.Broadcast(name, EvtGameState, st.Snapshot())
	c.broadcastRoomList(ctx)
}

// Disconnected removes the player from their room. The last player leaving
// deletes the room outright; there is nothing worth keeping in an empty one.
func (c *Coordinator) Disconnected(ctx context.Context, connID string) {
	name, err := c.store.ConnRoom(ctx, connID)
	if err != nil {
		return
	}
	l := c.lockFor(name)
	l.Lock()
	defer l.Unlock()

	if err := c.store.UnbindConn(ctx, connID); err != nil {
		log.Error().Err(err).Str("conn", connID).Msg("disconnect: unbind")
	}
	c.bc.Unsubscribe(connID)

	st, err := c.store.Get(ctx, name)
	if err != nil {
		return
	}
	if !st.RemovePlayer(connID) {
		return
	}
	st.Touch(c.clock.Now())
	if len(st.Players) == 0 {
		if err := c.store.Delete(ctx, name); err != nil {
			log.Error().Err(err).Str("room", name).Msg("disconnect: delete room")
		}
		log.Info().Str("room", name).Msg("room closed")
	} else {
		if err := c.store.Put(ctx, name, st); err != nil {
			log.Error().Err(err).Str("room", name).Msg("disconnect: save room")
			return
		}
		c.bc.Broadcast(name, EvtGameState, st.Snapshot())
	}
	c.broadcastRoomList(ctx)
}

// PrepareIngredient adds one unit to the shared pool. Outside a round the
// request is dropped without an error; clients disable the controls but a
// stale click right at phase change is expected.
func (c *Coordinator) PrepareIngredient(ctx context.Context, connID, kind string) {
	c.withRoom(ctx, connID, func(name string, st *game.State) {
		now := c.clock.Now()
		item, err := st.PrepareIngredient(connID, game.IngredientKind(kind), now)
		if err != nil {
			return
		}
		st.TouchPlayer(connID, now)
		if err := c.store.Put(ctx, name, st); err != nil {
			log.Error().Err(err).Str("room", name).Msg("prepare: save room")
			return
		}
		c.bc.Broadcast(name, EvtIngredientPrepared, item)
		c.bc.Broadcast(name, EvtGameState, st.Snapshot())
	})
}

// TakeIngredient claims a pooled unit for a builder slot. Losing the race
// for a unit is normal play, so the loser gets a quiet per-client rejection
// rather than a room-wide error.
func (c *Coordinator) TakeIngredient(ctx context.Context, connID, ingredientID, target string) {
	c.withRoom(ctx, connID, func(name string, st *game.State) {
		now := c.clock.Now()
		item, takenBy, err := st.TakeIngredient(connID, ingredientID, target, now)
		switch {
		case errors.Is(err, game.ErrWrongPhase):
			return
		case errors.Is(err, game.ErrIngredientNotFound):
			c.bc.Send(connID, EvtActionError, ErrorEvent{Message: msgStaleIngredient})
			return
		case errors.Is(err, game.ErrUnknownPlayer):
			c.bc.Send(connID, EvtActionError, ErrorEvent{Message: msgUnknownTarget})
			return
		case err != nil:
			return
		}
		st.TouchPlayer(connID, now)
		if err := c.store.Put(ctx, name, st); err != nil {
			log.Error().Err(err).Str("room", name).Msg("take: save room")
			return
		}
		c.bc.Broadcast(name, EvtIngredientRemoved, IngredientRemovedEvent{IngredientID: item.ID, TakenBy: takenBy})
		c.bc.Broadcast(name, EvtGameState, st.Snapshot())
	})
}

// BuildPizza turns the target's builder slot into a pizza. Invalid combos
// and unmatched round 3 builds are wasted immediately and only the builder
// is told why; everyone sees the state change.
func (c *Coordinator) BuildPizza(ctx context.Context, connID, target string) {
	c.withRoom(ctx, connID, func(name string, st *game.State) {
		now := c.clock.Now()
		out, err := st.BuildPizza(connID, target, now)
		if err != nil {
			if errors.Is(err, game.ErrUnknownPlayer) {
				c.bc.Send(connID, EvtActionError, ErrorEvent{Message: msgUnknownTarget})
			}
			return
		}
		st.TouchPlayer(connID, now)
		if err := c.store.Put(ctx, name, st); err != nil {
			log.Error().Err(err).Str("room", name).Msg("build: save room")
			return
		}
		switch {
		case out.Wasted && st.Round < 3:
			c.bc.Send(connID, EvtBuildError, ErrorEvent{Message: msgInvalidCombo})
		case out.Wasted:
			c.bc.Send(connID, EvtBuildError, ErrorEvent{Message: msgNoMatchingOrder})
		default:
			if out.Order != nil {
				c.bc.Broadcast(name, EvtOrderFulfilled, OrderFulfilledEvent{OrderID: out.Order.ID})
			}
			c.bc.Broadcast(name, EvtPizzaBuilt, out.Pizza)
		}
		if st.Round > 1 {
			c.bc.Broadcast(name, EvtClearSharedBuilder, ClearBuilderEvent{PlayerID: out.Target})
		}
		c.bc.Broadcast(name, EvtGameState, st.Snapshot())
	})
}

// MoveToOven transfers a built pizza into the oven.
func (c *Coordinator) MoveToOven(ctx context.Context, connID, pizzaID string) {
	c.withRoom(ctx, connID, func(name string, st *game.State) {
		now := c.clock.Now()
		pizza, err := st.MoveToOven(pizzaID, now)
		switch {
		case errors.Is(err, game.ErrWrongPhase):
			c.bc.Send(connID, EvtOvenError, ErrorEvent{Message: msgNotInRound})
			return
		case errors.Is(err, game.ErrOvenOn):
			c.bc.Send(connID, EvtOvenError, ErrorEvent{Message: msgOvenRunning})
			return
		case err != nil:
			c.bc.Send(connID, EvtOvenError, ErrorEvent{Message: msgOvenUnavailable})
			return
		}
		st.TouchPlayer(connID, now)
		if err := c.store.Put(ctx, name, st); err != nil {
			log.Error().Err(err).Str("room", name).Msg("oven move: save room")
			return
		}
		c.bc.Broadcast(name, EvtPizzaMovedToOven, pizza)
		c.bc.Broadcast(name, EvtGameState, st.Snapshot())
	})
}

// ToggleOven starts or stops the bake timer. Stopping resolves every pizza
// in the oven by its accumulated bake time. Repeating the current state is a
// no-op with no events.
func (c *Coordinator) ToggleOven(ctx context.Context, connID, state string) {
	c.withRoom(ctx, connID, func(name string, st *game.State) {
		now := c.clock.Now()
		_, changed, err := st.SetOven(state == "on", now)
		if err != nil {
			c.bc.Send(connID, EvtOvenError, ErrorEvent{Message: msgNotInRound})
			return
		}
		if !changed {
			return
		}
		st.TouchPlayer(connID, now)
		if err := c.store.Put(ctx, name, st); err != nil {
			log.Error().Err(err).Str("room", name).Msg("oven toggle: save room")
			return
		}
		c.bc.Broadcast(name, EvtOvenToggled, OvenToggledEvent{State: state})
		c.bc.Broadcast(name, EvtGameState, st.Snapshot())
	})
}

// StartRound begins the next round from the waiting phase. Duplicate clicks
// from other players land in a non-waiting phase and are dropped.
func (c *Coordinator) StartRound(ctx context.Context, connID string) {
	c.withRoom(ctx, connID, func(name string, st *game.State) {
		now := c.clock.Now()
		var orders []game.Order
		if st.Round == 3 {
			orders = c.genOrders(st.RoundDuration)
		}
		if err := st.StartRound(now, orders); err != nil {
			return
		}
		st.TouchPlayer(connID, now)
		if err := c.store.Put(ctx, name, st); err != nil {
			log.Error().Err(err).Str("room", name).Msg("start round: save room")
			return
		}
		log.Info().Str("room", name).Int("round", st.Round).Msg("round started")
		c.bc.Broadcast(name, EvtGameState, st.Snapshot())
		c.bc.Broadcast(name, EvtRoundStarted, RoundStartedEvent{
			Round:          st.Round,
			Duration:       int(st.RoundDuration / time.Second),
			CustomerOrders: st.CustomerOrders,
		})
		c.armRoundTimer(name, st.RoundDuration)
	})
}

// TimeRequest is the client heartbeat. Besides answering with the clock it
// is the lazy backstop for everything time-driven: expired phases advance
// and due orders release even if the background timer was lost to a crash.
func (c *Coordinator) TimeRequest(ctx context.Context, connID string) {
	c.withRoom(ctx, connID, func(name string, st *game.State) {
		now := c.clock.Now()
		st.TouchPlayer(connID, now)

		if st.RoundExpired(now) {
			c.endRoundLocked(ctx, name, st, now)
			return
		}
		if st.DebriefExpired(now) {
			c.resetRoundLocked(ctx, name, st, now)
			return
		}

		released := st.ReleaseDueOrders(now, maxOrderRelease)
		if err := c.store.Put(ctx, name, st); err != nil {
			log.Error().Err(err).Str("room", name).Msg("heartbeat: save room")
			return
		}
		for _, o := range released {
			c.bc.Broadcast(name, EvtNewOrder, o)
		}
		if len(released) > 0 {
			c.bc.Broadcast(name, EvtGameStateUpdate, StateUpdateEvent{CustomerOrders: st.CustomerOrders})
		}
		c.bc.Broadcast(name, EvtTimeResponse, TimeResponseEvent{
			RoundTimeRemaining: int(st.RemainingTime(now) / time.Second),
			OvenTime:           int(st.OvenElapsed(now) / time.Second),
			Phase:              st.Phase,
		})
	})
}

// withRoom resolves the connection's room, takes its lock and loads the
// state. Connections without a binding, and rooms that disappeared under
// them, are silently dropped.
func (c *Coordinator) withRoom(ctx context.Context, connID string, fn func(name string, st *game.State)) {
	name, err := c.store.ConnRoom(ctx, connID)
	if err != nil {
		return
	}
	l := c.lockFor(name)
	l.Lock()
	defer l.Unlock()

	st, err := c.store.Get(ctx, name)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error().Err(err).Str("room", name).Msg("load room")
		}
		return
	}
	if _, ok := st.Players[connID]; !ok {
		return
	}
	fn(name, st)
}
