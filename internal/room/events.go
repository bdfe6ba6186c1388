package room

import (
	"pizza-rush/internal/game"
	"pizza-rush/internal/scoreboard"
)

// Outbound event names. game_state carries the full room snapshot and is
// re-broadcast after every accepted mutation; the finer-grained events exist
// so clients can animate the specific change.
const (
	EvtGameState       = "game_state"
	EvtGameStateUpdate = "game_state_update"
	EvtRoomList        = "room_list"

	EvtJoinError   = "join_error"
	EvtBuildError  = "build_error"
	EvtOvenError   = "oven_error"
	EvtActionError = "action_error"

	EvtIngredientPrepared = "ingredient_prepared"
	EvtIngredientRemoved  = "ingredient_removed"
	EvtPizzaBuilt         = "pizza_built"
	EvtPizzaMovedToOven   = "pizza_moved_to_oven"
	EvtOvenToggled        = "oven_toggled"
	EvtClearSharedBuilder = "clear_shared_builder"

	EvtRoundStarted   = "round_started"
	EvtRoundEnded     = "round_ended"
	EvtNewOrder       = "new_order"
	EvtOrderFulfilled = "order_fulfilled"

	EvtTimeResponse  = "time_response"
	EvtPlayerRemoved = "player_removed"
)

type ErrorEvent struct {
	Message string `json:"message"`
}

type OvenToggledEvent struct {
	State string `json:"state"`
}

type IngredientRemovedEvent struct {
	IngredientID string `json:"ingredient_id"`
	TakenBy      string `json:"taken_by"`
}

type ClearBuilderEvent struct {
	PlayerID string `json:"player_sid"`
}

type OrderFulfilledEvent struct {
	OrderID string `json:"order_id"`
}

type PlayerRemovedEvent struct {
	PlayerID string `json:"player_sid"`
}

type RoundStartedEvent struct {
	Round          int          `json:"round"`
	Duration       int          `json:"duration"`
	CustomerOrders []game.Order `json:"customer_orders"`
}

// StateUpdateEvent is the partial refresh sent when orders are released
// mid-round, cheaper than a full snapshot.
type StateUpdateEvent struct {
	CustomerOrders []game.Order `json:"customer_orders"`
}

type TimeResponseEvent struct {
	RoundTimeRemaining int        `json:"roundTimeRemaining"`
	OvenTime           int        `json:"ovenTime"`
	Phase              game.Phase `json:"phase"`
}

type RoomListEvent struct {
	Rooms      map[string]int                   `json:"rooms"`
	HighScores map[int]map[int]scoreboard.Entry `json:"high_scores"`
}

// RoomOverview is one row of the operator endpoint: a coarse look at a live
// room without the passphrase or per-player detail.
type RoomOverview struct {
	Name        string     `json:"name"`
	Players     int        `json:"players"`
	Round       int        `json:"round"`
	Phase       game.Phase `json:"phase"`
	TimeLeft    int        `json:"time_left"`
	Built       int        `json:"built"`
	InOven      int        `json:"in_oven"`
	Completed   int        `json:"completed"`
	Wasted      int        `json:"wasted"`
	OrdersOpen  int        `json:"orders_open"`
	LastUpdated string     `json:"last_updated"`
}
