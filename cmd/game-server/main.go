package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"pizza-rush/internal/config"
	"pizza-rush/internal/logging"
	"pizza-rush/internal/room"
	"pizza-rush/internal/scoreboard"
	"pizza-rush/internal/store"
	"pizza-rush/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rooms, scores, err := openBackends(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer rooms.Close()
	defer scores.Close()

	hub := ws.NewServer()
	coord := room.New(rooms, scores, hub, clockwork.NewRealClock(), cfg.Game)
	hub.SetHandler(coord)
	coord.Start(ctx)

	r := newRouter(cfg.Server, rooms, scores, coord, hub)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info().
		Str("addr", cfg.Server.HTTPAddr).
		Str("store", cfg.Server.StoreBackend).
		Msg("http listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("shutdown complete")
}

// openBackends selects the room store and scoreboard pair. The memory
// backend serves a single process; postgres shares state across processes
// behind one database.
func openBackends(ctx context.Context, cfg config.AppConfig) (store.RoomStore, scoreboard.Scoreboard, error) {
	switch cfg.Server.StoreBackend {
	case "memory", "":
		return store.NewMemoryStore(cfg.Game.StoreTTL, clockwork.NewRealClock()), scoreboard.NewMemory(), nil
	case "postgres":
		rs, err := store.NewPostgresStore(cfg.Server.PostgresDSN, cfg.Game.StoreTTL)
		if err != nil {
			return nil, nil, fmt.Errorf("room store: %w", err)
		}
		if err := rs.EnsureSchema(ctx); err != nil {
			return nil, nil, fmt.Errorf("room store schema: %w", err)
		}
		sb, err := scoreboard.NewPostgres(cfg.Server.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("scoreboard: %w", err)
		}
		if err := sb.EnsureSchema(ctx); err != nil {
			return nil, nil, fmt.Errorf("scoreboard schema: %w", err)
		}
		return rs, sb, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Server.StoreBackend)
	}
}
