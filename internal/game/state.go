package game

import "time"

type Phase string

const (
	PhaseWaiting Phase = "waiting"
	PhaseRound   Phase = "round"
	PhaseDebrief Phase = "debrief"
)

type IngredientKind string

const (
	KindBase      IngredientKind = "base"
	KindSauce     IngredientKind = "sauce"
	KindHam       IngredientKind = "ham"
	KindPineapple IngredientKind = "pineapple"
)

func ValidKind(k IngredientKind) bool {
	switch k {
	case KindBase, KindSauce, KindHam, KindPineapple:
		return true
	}
	return false
}

type PizzaStatus string

const (
	StatusInvalid     PizzaStatus = "invalid"
	StatusUnmatched   PizzaStatus = "unmatched"
	StatusUndercooked PizzaStatus = "undercooked"
	StatusCooked      PizzaStatus = "cooked"
	StatusBurnt       PizzaStatus = "burnt"
)

type Ingredient struct {
	ID         string         `json:"id"`
	Kind       IngredientKind `json:"type"`
	PreparedBy string         `json:"prepared_by"`
	PreparedAt time.Time      `json:"prepared_at"`
}

type Player struct {
	Builder      []Ingredient `json:"builder_ingredients"`
	LastActivity time.Time    `json:"last_activity"`
}

type Pizza struct {
	ID          string                 `json:"pizza_id"`
	Team        string                 `json:"team"`
	Type        string                 `json:"type,omitempty"`
	Ingredients map[IngredientKind]int `json:"ingredients"`
	BuildStart  time.Time              `json:"build_start_time"`
	BuiltAt     time.Time              `json:"built_at"`
	BakingTime  time.Duration          `json:"baking_time"`
	Status      PizzaStatus            `json:"status,omitempty"`
	OrderID     string                 `json:"order_id,omitempty"`
	OvenStart   *time.Time             `json:"oven_start,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
}

type Order struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	Ingredients map[IngredientKind]int `json:"ingredients"`
	ArrivalTime time.Duration          `json:"arrival_time"`
}

// LeadTime is the elapsed time from a pizza's earliest ingredient preparation
// to its final resolution. Status is "completed" only for cooked pizzas.
type LeadTime struct {
	PizzaID   string        `json:"pizza_id"`
	LeadTime  time.Duration `json:"lead_time"`
	Status    string        `json:"status"`
	StartTime time.Time     `json:"start_time"`
}

// CFDPoint is one cumulative-flow sample: how many pizzas sit in each
// pipeline stage at a given elapsed second of the round.
type CFDPoint struct {
	Time   int `json:"time"`
	Built  int `json:"built"`
	Oven   int `json:"oven"`
	Done   int `json:"done"`
	Wasted int `json:"wasted"`
}

// Settings are the per-room tunables fixed at room creation.
type Settings struct {
	MaxRounds       int
	RoundDuration   time.Duration
	DebriefDuration time.Duration
	OvenCapacity    int
}

func DefaultSettings() Settings {
	return Settings{
		MaxRounds:       3,
		RoundDuration:   180 * time.Second,
		DebriefDuration: 120 * time.Second,
		OvenCapacity:    3,
	}
}

// State is the authoritative model of one room. It is a plain value that is
// serialized into the room store; every mutation goes through the transition
// methods in this package, under the caller's per-room critical section.
type State struct {
	Name       string             `json:"name"`
	Passphrase string             `json:"passphrase"`
	Players    map[string]*Player `json:"players"`

	Prepared  []Ingredient `json:"prepared_ingredients"`
	Built     []*Pizza     `json:"built_pizzas"`
	Oven      []*Pizza     `json:"oven"`
	Completed []*Pizza     `json:"completed_pizzas"`
	Wasted    []*Pizza     `json:"wasted_pizzas"`

	Round           int           `json:"round"`
	MaxRounds       int           `json:"max_rounds"`
	Phase           Phase         `json:"current_phase"`
	RoundDuration   time.Duration `json:"round_duration"`
	DebriefDuration time.Duration `json:"debrief_duration"`

	OvenCapacity   int        `json:"max_pizzas_in_oven"`
	OvenOn         bool       `json:"oven_on"`
	OvenTimerStart *time.Time `json:"oven_timer_start,omitempty"`

	RoundStartTime   *time.Time `json:"round_start_time,omitempty"`
	DebriefStartTime *time.Time `json:"debrief_start_time,omitempty"`
	LastUpdated      time.Time  `json:"last_updated"`

	CustomerOrders []Order `json:"customer_orders"`
	PendingOrders  []Order `json:"pending_orders"`

	LeadTimes  []LeadTime `json:"lead_times"`
	CFDHistory []CFDPoint `json:"cfd_history"`
}

func NewState(name, passphrase string, now time.Time, s Settings) *State {
	if s.MaxRounds <= 0 {
		s = DefaultSettings()
	}
	return &State{
		Name:            name,
		Passphrase:      passphrase,
		Players:         map[string]*Player{},
		Prepared:        []Ingredient{},
		Built:           []*Pizza{},
		Oven:            []*Pizza{},
		Completed:       []*Pizza{},
		Wasted:          []*Pizza{},
		Round:           1,
		MaxRounds:       s.MaxRounds,
		Phase:           PhaseWaiting,
		RoundDuration:   s.RoundDuration,
		DebriefDuration: s.DebriefDuration,
		OvenCapacity:    s.OvenCapacity,
		CustomerOrders:  []Order{},
		PendingOrders:   []Order{},
		LeadTimes:       []LeadTime{},
		CFDHistory:      []CFDPoint{},
		LastUpdated:     now,
	}
}

func (s *State) Touch(now time.Time) {
	s.LastUpdated = now
}

func (s *State) AddPlayer(connID string, now time.Time) {
	if p, ok := s.Players[connID]; ok {
		p.LastActivity = now
		return
	}
	s.Players[connID] = &Player{Builder: []Ingredient{}, LastActivity: now}
}

func (s *State) RemovePlayer(connID string) bool {
	if _, ok := s.Players[connID]; !ok {
		return false
	}
	delete(s.Players, connID)
	return true
}

func (s *State) TouchPlayer(connID string, now time.Time) {
	if p, ok := s.Players[connID]; ok {
		p.LastActivity = now
	}
}

// RemainingTime reports seconds left in the current round or debrief,
// clamped at zero. Zero in the waiting phase.
func (s *State) RemainingTime(now time.Time) time.Duration {
	switch s.Phase {
	case PhaseRound:
		if s.RoundStartTime == nil {
			return 0
		}
		return maxDur(0, s.RoundDuration-now.Sub(*s.RoundStartTime))
	case PhaseDebrief:
		if s.DebriefStartTime == nil {
			return 0
		}
		return maxDur(0, s.DebriefDuration-now.Sub(*s.DebriefStartTime))
	}
	return 0
}

// OvenElapsed reports how long the oven has been on, zero when off.
func (s *State) OvenElapsed(now time.Time) time.Duration {
	if !s.OvenOn || s.OvenTimerStart == nil {
		return 0
	}
	return now.Sub(*s.OvenTimerStart)
}

func (s *State) RoundElapsed(now time.Time) time.Duration {
	if s.RoundStartTime == nil {
		return 0
	}
	return now.Sub(*s.RoundStartTime)
}

func maxDur(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
