package game

import "time"

// Bake thresholds. Accumulated baking time below the undercooked bound wastes
// the pizza, within [undercooked, burnt] completes it, above burns it.
const (
	BakeUndercooked = 30 * time.Second
	BakeBurnt       = 45 * time.Second
)

// Pizza type labels for the fixed round 1-2 recipes. The all-ham pizza is
// labelled "bacon" on the client side.
const (
	TypeBacon     = "bacon"
	TypePineapple = "pineapple"
)

// StartRound moves waiting -> round: wipes every per-round collection,
// stamps the round start and, in round 3, queues the customer orders.
// The generated orders start hidden; ReleaseDueOrders reveals them.
func (s *State) StartRound(now time.Time, orders []Order) error {
	if s.Phase != PhaseWaiting {
		return ErrWrongPhase
	}
	s.Phase = PhaseRound
	t := now
	s.RoundStartTime = &t
	s.Prepared = []Ingredient{}
	s.Built = []*Pizza{}
	s.Oven = []*Pizza{}
	s.Completed = []*Pizza{}
	s.Wasted = []*Pizza{}
	s.OvenOn = false
	s.OvenTimerStart = nil
	s.CustomerOrders = []Order{}
	s.PendingOrders = []Order{}
	for _, p := range s.Players {
		p.Builder = []Ingredient{}
	}
	if s.Round == 3 {
		s.PendingOrders = orders
	}
	s.Touch(now)
	return nil
}

// PrepareIngredient appends a fresh unit to the shared pool.
func (s *State) PrepareIngredient(connID string, kind IngredientKind, now time.Time) (Ingredient, error) {
	if s.Phase != PhaseRound {
		return Ingredient{}, ErrWrongPhase
	}
	if !ValidKind(kind) {
		return Ingredient{}, ErrUnknownKind
	}
	item := Ingredient{ID: newShortID(), Kind: kind, PreparedBy: connID, PreparedAt: now}
	s.Prepared = append(s.Prepared, item)
	s.Touch(now)
	return item, nil
}

// TakeIngredient moves a pooled unit into a builder slot. In round 1 players
// may only stock their own slot; from round 2 on an explicit target is
// honored. This is a gameplay rule, not a convenience.
func (s *State) TakeIngredient(connID, ingredientID, targetID string, now time.Time) (Ingredient, string, error) {
	if s.Phase != PhaseRound {
		return Ingredient{}, "", ErrWrongPhase
	}
	target := connID
	if s.Round > 1 && targetID != "" {
		target = targetID
	}
	p, ok := s.Players[target]
	if !ok {
		return Ingredient{}, "", ErrUnknownPlayer
	}
	for i, item := range s.Prepared {
		if item.ID == ingredientID {
			s.Prepared = append(s.Prepared[:i], s.Prepared[i+1:]...)
			p.Builder = append(p.Builder, item)
			s.Touch(now)
			return item, target, nil
		}
	}
	return Ingredient{}, "", ErrIngredientNotFound
}

// BuildOutcome reports what a build produced. Wasted pizzas never pass
// through the oven; their lead-time record is appended immediately.
type BuildOutcome struct {
	Pizza  *Pizza
	Order  *Order
	Target string
	Wasted bool
}

// BuildPizza consumes the target's builder slot into one pizza. Rounds 1-2
// validate against the fixed recipes; round 3 matches against the visible
// customer orders by exact ingredient counts.
func (s *State) BuildPizza(connID, targetID string, now time.Time) (BuildOutcome, error) {
	if s.Phase != PhaseRound {
		return BuildOutcome{}, ErrWrongPhase
	}
	target := connID
	if s.Round > 1 && targetID != "" {
		target = targetID
	}
	p, ok := s.Players[target]
	if !ok {
		return BuildOutcome{}, ErrUnknownPlayer
	}
	if len(p.Builder) == 0 {
		return BuildOutcome{}, ErrEmptyBuilder
	}

	counts := map[IngredientKind]int{KindBase: 0, KindSauce: 0, KindHam: 0, KindPineapple: 0}
	buildStart := p.Builder[0].PreparedAt
	for _, item := range p.Builder {
		counts[item.Kind]++
		if item.PreparedAt.Before(buildStart) {
			buildStart = item.PreparedAt
		}
	}
	p.Builder = []Ingredient{}

	pizza := &Pizza{
		ID:          newShortID(),
		Team:        s.Name,
		Ingredients: counts,
		BuildStart:  buildStart,
		BuiltAt:     now,
	}

	out := BuildOutcome{Pizza: pizza, Target: target}
	if s.Round < 3 {
		switch {
		case validRecipe(counts):
			if counts[KindHam] == 4 {
				pizza.Type = TypeBacon
			} else {
				pizza.Type = TypePineapple
			}
			s.Built = append(s.Built, pizza)
		default:
			pizza.Status = StatusInvalid
			s.Wasted = append(s.Wasted, pizza)
			s.LeadTimes = append(s.LeadTimes, LeadTime{
				PizzaID:   pizza.ID,
				LeadTime:  now.Sub(buildStart),
				Status:    "incomplete",
				StartTime: buildStart,
			})
			out.Wasted = true
		}
	} else {
		if order := s.matchOrder(counts); order != nil {
			pizza.Type = order.Type
			pizza.OrderID = order.ID
			s.Built = append(s.Built, pizza)
			out.Order = order
		} else {
			pizza.Status = StatusUnmatched
			s.Wasted = append(s.Wasted, pizza)
			out.Wasted = true
		}
	}
	s.Touch(now)
	return out, nil
}

// Exactly one base and sauce, with either 4 ham or a 2/2 ham-pineapple split.
func validRecipe(counts map[IngredientKind]int) bool {
	if counts[KindBase] != 1 || counts[KindSauce] != 1 {
		return false
	}
	ham, pine := counts[KindHam], counts[KindPineapple]
	return (ham == 4 && pine == 0) || (ham == 2 && pine == 2)
}

// matchOrder consumes and returns the first visible order whose counts match
// exactly on all four kinds.
func (s *State) matchOrder(counts map[IngredientKind]int) *Order {
	for i, o := range s.CustomerOrders {
		if o.Ingredients[KindBase] == counts[KindBase] &&
			o.Ingredients[KindSauce] == counts[KindSauce] &&
			o.Ingredients[KindHam] == counts[KindHam] &&
			o.Ingredients[KindPineapple] == counts[KindPineapple] {
			matched := o
			s.CustomerOrders = append(s.CustomerOrders[:i], s.CustomerOrders[i+1:]...)
			return &matched
		}
	}
	return nil
}

// MoveToOven transfers a built pizza into the oven. Only legal while the
// oven is off and below capacity.
func (s *State) MoveToOven(pizzaID string, now time.Time) (*Pizza, error) {
	if s.Phase != PhaseRound {
		return nil, ErrWrongPhase
	}
	if s.OvenOn {
		return nil, ErrOvenOn
	}
	if len(s.Oven) >= s.OvenCapacity {
		return nil, ErrOvenFull
	}
	for i, p := range s.Built {
		if p.ID == pizzaID {
			s.Built = append(s.Built[:i], s.Built[i+1:]...)
			t := now
			p.OvenStart = &t
			s.Oven = append(s.Oven, p)
			s.Touch(now)
			return p, nil
		}
	}
	return nil, ErrPizzaNotFound
}

// SetOven turns the bake timer on or off. Turning it off adds the elapsed
// time to every in-oven pizza, resolves each by the bake thresholds and
// empties the oven. Setting the current value is a no-op (changed=false).
func (s *State) SetOven(on bool, now time.Time) (resolved []*Pizza, changed bool, err error) {
	if s.Phase != PhaseRound {
		return nil, false, ErrWrongPhase
	}
	if on == s.OvenOn {
		return nil, false, nil
	}
	if on {
		s.OvenOn = true
		t := now
		s.OvenTimerStart = &t
		s.Touch(now)
		return nil, true, nil
	}
	resolved = s.resolveOven(now, false)
	s.Touch(now)
	return resolved, true, nil
}

// resolveOven empties the oven, accumulating bake time and classifying each
// pizza. forceUndercooked is the end-of-round cutoff: a mid-bake pizza
// always counts against the team.
func (s *State) resolveOven(now time.Time, forceUndercooked bool) []*Pizza {
	var elapsed time.Duration
	if s.OvenTimerStart != nil {
		elapsed = now.Sub(*s.OvenTimerStart)
	}
	resolved := make([]*Pizza, 0, len(s.Oven))
	for _, p := range s.Oven {
		p.BakingTime += elapsed
		t := now
		p.CompletedAt = &t
		ltStatus := "incomplete"
		switch {
		case forceUndercooked || p.BakingTime < BakeUndercooked:
			p.Status = StatusUndercooked
			s.Wasted = append(s.Wasted, p)
		case p.BakingTime <= BakeBurnt:
			p.Status = StatusCooked
			ltStatus = "completed"
			s.Completed = append(s.Completed, p)
		default:
			p.Status = StatusBurnt
			s.Wasted = append(s.Wasted, p)
		}
		s.LeadTimes = append(s.LeadTimes, LeadTime{
			PizzaID:   p.ID,
			LeadTime:  now.Sub(p.BuildStart),
			Status:    ltStatus,
			StartTime: p.BuildStart,
		})
		resolved = append(resolved, p)
	}
	s.Oven = []*Pizza{}
	s.OvenOn = false
	s.OvenTimerStart = nil
	return resolved
}

// ReleaseDueOrders reveals pending round 3 orders whose arrival offset has
// elapsed, in arrival sequence, at most max per call to bound event bursts.
func (s *State) ReleaseDueOrders(now time.Time, max int) []Order {
	if s.Phase != PhaseRound || s.Round != 3 || s.RoundStartTime == nil {
		return nil
	}
	elapsed := now.Sub(*s.RoundStartTime)
	released := []Order{}
	for len(s.PendingOrders) > 0 && len(released) < max {
		next := s.PendingOrders[0]
		if next.ArrivalTime > elapsed {
			break
		}
		s.PendingOrders = s.PendingOrders[1:]
		s.CustomerOrders = append(s.CustomerOrders, next)
		released = append(released, next)
	}
	if len(released) > 0 {
		s.Touch(now)
	}
	return released
}

// RecordCFDSnapshot appends one workflow sample. No-op outside a round.
func (s *State) RecordCFDSnapshot(now time.Time) bool {
	if s.Phase != PhaseRound || s.RoundStartTime == nil {
		return false
	}
	s.CFDHistory = append(s.CFDHistory, CFDPoint{
		Time:   int(now.Sub(*s.RoundStartTime) / time.Second),
		Built:  len(s.Built),
		Oven:   len(s.Oven),
		Done:   len(s.Completed),
		Wasted: len(s.Wasted),
	})
	return true
}

// RoundExpired reports whether the round timer has run out.
func (s *State) RoundExpired(now time.Time) bool {
	return s.Phase == PhaseRound && s.RoundStartTime != nil &&
		now.Sub(*s.RoundStartTime) >= s.RoundDuration
}

// DebriefExpired reports whether the debrief timer has run out.
func (s *State) DebriefExpired(now time.Time) bool {
	return s.Phase == PhaseDebrief && s.DebriefStartTime != nil &&
		now.Sub(*s.DebriefStartTime) >= s.DebriefDuration
}

// EndRound moves round -> debrief. Idempotent: the second caller (duplicate
// timer firing, or a heartbeat racing the timer) sees fired=false and must
// not emit anything. A running oven is cut off with no partial credit.
func (s *State) EndRound(now time.Time) (*RoundResult, bool) {
	if s.Phase != PhaseRound {
		return nil, false
	}
	if s.OvenOn {
		s.resolveOven(now, true)
	}
	result := s.scoreRound()
	s.Phase = PhaseDebrief
	t := now
	s.DebriefStartTime = &t
	s.CFDHistory = []CFDPoint{}
	s.Touch(now)
	return result, true
}

// ResetRound moves debrief -> waiting and advances the round counter,
// wrapping past MaxRounds back to 1. Idempotent on phase.
func (s *State) ResetRound(now time.Time) bool {
	if s.Phase != PhaseDebrief {
		return false
	}
	s.Phase = PhaseWaiting
	s.DebriefStartTime = nil
	s.Round++
	if s.Round > s.MaxRounds {
		s.Round = 1
	}
	s.Touch(now)
	return true
}
