package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
	"github.com/rs/cors"

	"pizza-rush/internal/config"
	"pizza-rush/internal/logging"
	"pizza-rush/internal/room"
	"pizza-rush/internal/scoreboard"
	"pizza-rush/internal/store"
	"pizza-rush/internal/ws"
)

func newRouter(cfg config.ServerConfig, rooms store.RoomStore, scores scoreboard.Scoreboard, coord *room.Coordinator, hub *ws.Server) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	}).Handler)

	r.With(apiLogMiddleware()).Get("/healthz", healthHandler(rooms, scores))

	r.Route("/api", func(r chi.Router) {
		r.Use(apiLogMiddleware())
		r.Get("/highscores", highScoresHandler(scores))
		r.Get("/rooms/overview", roomsOverviewHandler(coord))
	})

	// The game protocol itself; everything after the upgrade is websocket
	// frames, so no request logger here.
	r.Get("/ws", hub.HandleWS)

	return r
}

func apiLogMiddleware() func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(logging.Writer(), &slog.HandlerOptions{})),
		&httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
				rc := chi.RouteContext(req.Context())
				route := req.URL.Path
				if rc != nil && rc.RoutePattern() != "" {
					route = rc.RoutePattern()
				}
				return []slog.Attr{
					slog.String("request_id", chimw.GetReqID(req.Context())),
					slog.String("method", req.Method),
					slog.String("route", route),
					slog.String("path", req.URL.Path),
				}
			},
		},
	)
}
