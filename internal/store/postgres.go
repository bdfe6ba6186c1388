package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"pizza-rush/internal/game"
)

// PostgresStore is the multi-process RoomStore backend: a JSONB state blob
// per room plus a connection-binding table, both with absolute expiry.
type PostgresStore struct {
	db  *sql.DB
	ttl time.Duration
}

func NewPostgresStore(dsn string, ttl time.Duration) (*PostgresStore, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{db: db, ttl: ttl}, nil
}

func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS rooms (
			name TEXT PRIMARY KEY,
			state JSONB NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS conn_bindings (
			conn_id TEXT PRIMARY KEY,
			room TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		);
	`)
	return err
}

func (p *PostgresStore) Get(ctx context.Context, room string) (*game.State, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT state FROM rooms WHERE name = $1 AND expires_at > now()`, room)
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var state game.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (p *PostgresStore) Put(ctx context.Context, room string, state *game.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO rooms (name, state, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET state = EXCLUDED.state, expires_at = EXCLUDED.expires_at
	`, room, raw, time.Now().Add(p.ttl))
	return err
}

func (p *PostgresStore) Delete(ctx context.Context, room string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM rooms WHERE name = $1`, room)
	return err
}

func (p *PostgresStore) ListNames(ctx context.Context) ([]string, error) {
	// Expired rows are dead weight; clear them on the listing pass.
	_, _ = p.db.ExecContext(ctx, `DELETE FROM rooms WHERE expires_at <= now()`)
	rows, err := p.db.QueryContext(ctx, `SELECT name FROM rooms WHERE expires_at > now() ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (p *PostgresStore) BindConn(ctx context.Context, connID, room string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO conn_bindings (conn_id, room, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (conn_id) DO UPDATE SET room = EXCLUDED.room, expires_at = EXCLUDED.expires_at
	`, connID, room, time.Now().Add(p.ttl))
	return err
}

func (p *PostgresStore) ConnRoom(ctx context.Context, connID string) (string, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT room FROM conn_bindings WHERE conn_id = $1 AND expires_at > now()`, connID)
	var room string
	if err := row.Scan(&room); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return room, nil
}

func (p *PostgresStore) UnbindConn(ctx context.Context, connID string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM conn_bindings WHERE conn_id = $1`, connID)
	return err
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.db.PingContext(ctx)
}

func (p *PostgresStore) Close() error { return p.db.Close() }
