package scoreboard

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresScoreboard struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*PostgresScoreboard, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &PostgresScoreboard{db: db}, nil
}

func (p *PostgresScoreboard) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS high_scores (
			round_number INT NOT NULL,
			ranking INT NOT NULL,
			room_name TEXT NOT NULL,
			score INT NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (round_number, ranking)
		);
	`)
	return err
}

// Save re-ranks the round's table with the new score inside one transaction:
// read current entries, merge, keep the top, rewrite.
func (p *PostgresScoreboard) Save(ctx context.Context, room string, round, score int) error {
	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT room_name, score, recorded_at FROM high_scores
		WHERE round_number = $1 ORDER BY ranking
	`, round)
	if err != nil {
		return err
	}
	existing := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Room, &e.Score, &e.Timestamp); err != nil {
			rows.Close()
			return err
		}
		existing = append(existing, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	top := rerank(existing, Entry{Room: room, Score: score, Timestamp: time.Now()})

	if _, err := tx.ExecContext(ctx, `DELETE FROM high_scores WHERE round_number = $1`, round); err != nil {
		return err
	}
	for rank, e := range top {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO high_scores (round_number, ranking, room_name, score, recorded_at)
			VALUES ($1, $2, $3, $4, $5)
		`, round, rank+1, e.Room, e.Score, e.Timestamp)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (p *PostgresScoreboard) Top(ctx context.Context) (map[int]map[int]Entry, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT round_number, ranking, room_name, score, recorded_at
		FROM high_scores ORDER BY round_number, ranking
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int]map[int]Entry{1: {}, 2: {}, 3: {}}
	for rows.Next() {
		var round, rank int
		var e Entry
		if err := rows.Scan(&round, &rank, &e.Room, &e.Score, &e.Timestamp); err != nil {
			return nil, err
		}
		if out[round] == nil {
			out[round] = map[int]Entry{}
		}
		out[round][rank] = e
	}
	return out, rows.Err()
}

func (p *PostgresScoreboard) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.db.PingContext(ctx)
}

func (p *PostgresScoreboard) Close() error { return p.db.Close() }
