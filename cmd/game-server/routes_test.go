package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"

	"pizza-rush/internal/config"
	"pizza-rush/internal/room"
	"pizza-rush/internal/scoreboard"
	"pizza-rush/internal/store"
	"pizza-rush/internal/ws"
)

func newTestRouter(t *testing.T) (*chi.Mux, *room.Coordinator, *scoreboard.MemoryScoreboard) {
	t.Helper()
	clock := clockwork.NewRealClock()
	rooms := store.NewMemoryStore(store.DefaultTTL, clock)
	scores := scoreboard.NewMemory()
	gameCfg, err := config.LoadGame()
	if err != nil {
		t.Fatalf("load game config: %v", err)
	}
	hub := ws.NewServer()
	coord := room.New(rooms, scores, hub, clock, gameCfg)
	hub.SetHandler(coord)
	serverCfg := config.ServerConfig{HTTPAddr: ":0", AllowedOrigins: []string{"*"}}
	return newRouter(serverCfg, rooms, scores, coord, hub), coord, scores
}

func TestHealthz(t *testing.T) {
	r, _, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("body = %v, want ok=true", body)
	}
}

func TestHighScoresEndpoint(t *testing.T) {
	r, _, scores := newTestRouter(t)
	if err := scores.Save(context.Background(), "kitchen", 1, 42); err != nil {
		t.Fatalf("save score: %v", err)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/highscores", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		HighScores map[int]map[int]scoreboard.Entry `json:"high_scores"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got := body.HighScores[1][1]; got.Room != "kitchen" || got.Score != 42 {
		t.Fatalf("round 1 leader = %+v, want kitchen/42", got)
	}
}

func TestRoomsOverviewEndpoint(t *testing.T) {
	r, coord, _ := newTestRouter(t)
	coord.Join(context.Background(), "p1", "kitchen", "secret")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rooms/overview", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Rooms []room.RoomOverview `json:"rooms"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Rooms) != 1 || body.Rooms[0].Name != "kitchen" || body.Rooms[0].Players != 1 {
		t.Fatalf("overview = %+v, want one kitchen row with 1 player", body.Rooms)
	}
}
