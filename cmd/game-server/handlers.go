package main

import (
	"encoding/json"
	"net/http"

	"pizza-rush/internal/room"
	"pizza-rush/internal/scoreboard"
	"pizza-rush/internal/store"
)

func healthHandler(rooms store.RoomStore, scores scoreboard.Scoreboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := rooms.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "store": "down"})
			return
		}
		if err := scores.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "scoreboard": "down"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

// highScoresHandler serves the same top-3-per-round table the lobby
// broadcast carries, for clients that poll over plain HTTP.
func highScoresHandler(scores scoreboard.Scoreboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		top, err := scores.Top(r.Context())
		if err != nil {
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"high_scores": top})
	}
}

func roomsOverviewHandler(coord *room.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := coord.Overview(r.Context())
		if err != nil {
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"rooms": rows})
	}
}

func writeHTTPError(w http.ResponseWriter, status int, code string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}
