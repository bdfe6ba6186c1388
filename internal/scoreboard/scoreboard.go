package scoreboard

import (
	"context"
	"time"
)

const keepTop = 3

// Entry is one ranked high score.
type Entry struct {
	Room      string    `json:"room_name"`
	Score     int       `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// Scoreboard keeps the top scores per round number, re-ranked on every
// insert. Save is called once per round end; Top feeds the room list
// broadcast and the public endpoint.
type Scoreboard interface {
	Save(ctx context.Context, room string, round, score int) error
	// Top returns round -> rank (1-based) -> entry.
	Top(ctx context.Context) (map[int]map[int]Entry, error)
	Ping(ctx context.Context) error
	Close() error
}

// rerank merges a candidate into the existing list and returns the new top
// entries, best score first.
func rerank(existing []Entry, candidate Entry) []Entry {
	merged := append(append([]Entry{}, existing...), candidate)
	for i := 1; i < len(merged); i++ {
		for j := i; j > 0 && merged[j].Score > merged[j-1].Score; j-- {
			merged[j], merged[j-1] = merged[j-1], merged[j]
		}
	}
	if len(merged) > keepTop {
		merged = merged[:keepTop]
	}
	return merged
}
