package game

import "time"

// Snapshot is the full-state broadcast payload. It carries everything a
// client renders and strips the internal-only fields: the passphrase, the
// lead-time log and the high-frequency CFD buffer.
type Snapshot struct {
	Name             string                 `json:"name"`
	Players          map[string]*Player     `json:"players"`
	Prepared         []Ingredient           `json:"prepared_ingredients"`
	Built            []*Pizza               `json:"built_pizzas"`
	Oven             []*Pizza               `json:"oven"`
	Completed        []*Pizza               `json:"completed_pizzas"`
	Wasted           []*Pizza               `json:"wasted_pizzas"`
	Round            int                    `json:"round"`
	MaxRounds        int                    `json:"max_rounds"`
	Phase            Phase                  `json:"current_phase"`
	RoundDuration    int                    `json:"round_duration"`
	DebriefDuration  int                    `json:"debrief_duration"`
	OvenCapacity     int                    `json:"max_pizzas_in_oven"`
	OvenOn           bool                   `json:"oven_on"`
	CustomerOrders   []Order                `json:"customer_orders"`
	RoundStartTime   *time.Time             `json:"round_start_time,omitempty"`
	DebriefStartTime *time.Time             `json:"debrief_start_time,omitempty"`
}

func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Name:             s.Name,
		Players:          s.Players,
		Prepared:         s.Prepared,
		Built:            s.Built,
		Oven:             s.Oven,
		Completed:        s.Completed,
		Wasted:           s.Wasted,
		Round:            s.Round,
		MaxRounds:        s.MaxRounds,
		Phase:            s.Phase,
		RoundDuration:    int(s.RoundDuration / time.Second),
		DebriefDuration:  int(s.DebriefDuration / time.Second),
		OvenCapacity:     s.OvenCapacity,
		OvenOn:           s.OvenOn,
		CustomerOrders:   s.CustomerOrders,
		RoundStartTime:   s.RoundStartTime,
		DebriefStartTime: s.DebriefStartTime,
	}
}
