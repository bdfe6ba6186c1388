package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type GameConfig struct {
	MaxRooms        int           `env:"MAX_ROOMS" envDefault:"10"`
	MaxPlayers      int           `env:"MAX_PLAYERS" envDefault:"5"`
	MaxRounds       int           `env:"MAX_ROUNDS" envDefault:"3"`
	RoundDuration   time.Duration `env:"ROUND_DURATION" envDefault:"180s"`
	DebriefDuration time.Duration `env:"DEBRIEF_DURATION" envDefault:"120s"`
	OvenCapacity    int           `env:"OVEN_CAPACITY" envDefault:"3"`

	// Snapshot cadence for the cumulative-flow samples during a round.
	SnapshotInterval time.Duration `env:"SNAPSHOT_INTERVAL" envDefault:"5s"`

	// Inactivity reaping: players idle past PlayerTimeout are removed on the
	// sweep; rooms idle past RoomTimeout (or empty) are deleted.
	PlayerTimeout time.Duration `env:"PLAYER_TIMEOUT" envDefault:"5m"`
	RoomTimeout   time.Duration `env:"ROOM_TIMEOUT" envDefault:"30m"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"60s"`

	// Absolute expiry safety net on stored room state.
	StoreTTL time.Duration `env:"STORE_TTL" envDefault:"24h"`
}

func LoadGame() (GameConfig, error) {
	var cfg GameConfig
	err := env.Parse(&cfg)
	return cfg, err
}
