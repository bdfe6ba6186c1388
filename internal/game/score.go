package game

// RoundResult is the debrief payload emitted once per round end.
type RoundResult struct {
	Round            int        `json:"round"`
	Completed        int        `json:"completed_pizzas_count"`
	Wasted           int        `json:"wasted_pizzas_count"`
	Unsold           int        `json:"unsold_pizzas_count"`
	IngredientsLeft  int        `json:"ingredients_left_count"`
	Score            int        `json:"score"`
	FulfilledOrders  int        `json:"fulfilled_orders_count"`
	UnmatchedPizzas  int        `json:"unmatched_pizzas_count"`
	RemainingOrders  int        `json:"remaining_orders_count"`
	LeadTimes        []LeadTime `json:"lead_times"`
	CFDData          []CFDPoint `json:"cfd_data"`
}

// scoreRound computes the round score from the final collections.
//
// Rounds 1-2: 10*completed - 10*wasted - 5*unsold - leftover ingredients.
// Round 3:    20*fulfilled - 10*unmatched completed - 10*wasted - 5*unsold
//             - leftover ingredients - 15*orders still outstanding.
func (s *State) scoreRound() *RoundResult {
	r := &RoundResult{
		Round:           s.Round,
		Completed:       len(s.Completed),
		Wasted:          len(s.Wasted),
		Unsold:          len(s.Built),
		IngredientsLeft: len(s.Prepared),
		LeadTimes:       append([]LeadTime{}, s.LeadTimes...),
		CFDData:         append([]CFDPoint{}, s.CFDHistory...),
	}
	if s.Round < 3 {
		r.Score = r.Completed*10 - r.Wasted*10 - r.Unsold*5 - r.IngredientsLeft
		return r
	}
	for _, p := range s.Completed {
		if p.OrderID != "" {
			r.FulfilledOrders++
		} else {
			r.UnmatchedPizzas++
		}
	}
	r.RemainingOrders = len(s.CustomerOrders)
	r.Score = r.FulfilledOrders*20 - r.UnmatchedPizzas*10 - r.Wasted*10 -
		r.Unsold*5 - r.IngredientsLeft - r.RemainingOrders*15
	return r
}
