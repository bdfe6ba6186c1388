package config

import (
	"testing"
	"time"
)

func TestLoadServerDefaults(t *testing.T) {
	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.StoreBackend != "memory" {
		t.Fatalf("StoreBackend = %q, want memory", cfg.StoreBackend)
	}
}

func TestLoadGameDefaults(t *testing.T) {
	cfg, err := LoadGame()
	if err != nil {
		t.Fatalf("LoadGame() error = %v", err)
	}
	if cfg.MaxRooms != 10 || cfg.MaxPlayers != 5 {
		t.Fatalf("caps = %d/%d, want 10/5", cfg.MaxRooms, cfg.MaxPlayers)
	}
	if cfg.RoundDuration != 180*time.Second {
		t.Fatalf("RoundDuration = %v, want 180s", cfg.RoundDuration)
	}
	if cfg.SnapshotInterval != 5*time.Second {
		t.Fatalf("SnapshotInterval = %v, want 5s", cfg.SnapshotInterval)
	}
	if cfg.StoreTTL != 24*time.Hour {
		t.Fatalf("StoreTTL = %v, want 24h", cfg.StoreTTL)
	}
}

func TestLoadGameParseTypes(t *testing.T) {
	t.Setenv("ROUND_DURATION", "90s")
	t.Setenv("PLAYER_TIMEOUT", "2m")
	t.Setenv("MAX_ROOMS", "4")

	cfg, err := LoadGame()
	if err != nil {
		t.Fatalf("LoadGame() error = %v", err)
	}
	if cfg.RoundDuration != 90*time.Second {
		t.Fatalf("RoundDuration = %v, want 90s", cfg.RoundDuration)
	}
	if cfg.PlayerTimeout != 2*time.Minute {
		t.Fatalf("PlayerTimeout = %v, want 2m", cfg.PlayerTimeout)
	}
	if cfg.MaxRooms != 4 {
		t.Fatalf("MaxRooms = %d, want 4", cfg.MaxRooms)
	}
}

func TestLoadLogParse(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_PRETTY", "1")

	cfg, err := LoadLog()
	if err != nil {
		t.Fatalf("LoadLog() error = %v", err)
	}
	if cfg.Level != "debug" || !cfg.Pretty {
		t.Fatalf("unexpected log config: %+v", cfg)
	}
}
