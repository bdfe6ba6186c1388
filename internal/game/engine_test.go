package game

import (
	"testing"
	"time"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func roundState(t *testing.T, round int, players ...string) *State {
	t.Helper()
	s := NewState("kitchen-a", "secret", t0, DefaultSettings())
	for _, id := range players {
		s.AddPlayer(id, t0)
	}
	s.Round = round
	if err := s.StartRound(t0, nil); err != nil {
		t.Fatalf("StartRound() error = %v", err)
	}
	return s
}

func TestPrepareIngredientOnlyDuringRound(t *testing.T) {
	s := NewState("kitchen-a", "secret", t0, DefaultSettings())
	s.AddPlayer("p1", t0)

	if _, err := s.PrepareIngredient("p1", KindBase, t0); err != ErrWrongPhase {
		t.Fatalf("prepare in waiting: err = %v, want ErrWrongPhase", err)
	}

	if err := s.StartRound(t0, nil); err != nil {
		t.Fatalf("StartRound() error = %v", err)
	}
	item, err := s.PrepareIngredient("p1", KindBase, t0)
	if err != nil {
		t.Fatalf("PrepareIngredient() error = %v", err)
	}
	if item.Kind != KindBase || item.PreparedBy != "p1" {
		t.Fatalf("item = %+v, want base by p1", item)
	}
	if len(s.Prepared) != 1 {
		t.Fatalf("pool size = %d, want 1", len(s.Prepared))
	}
}

func TestPrepareIngredientRejectsUnknownKind(t *testing.T) {
	s := roundState(t, 1, "p1")
	if _, err := s.PrepareIngredient("p1", "anchovy", t0); err != ErrUnknownKind {
		t.Fatalf("err = %v, want ErrUnknownKind", err)
	}
}

// An ingredient must live in exactly one of pool, builder slot, or a built
// pizza at any time.
func TestIngredientExclusiveOwnership(t *testing.T) {
	s := roundState(t, 1, "p1")

	item, err := s.PrepareIngredient("p1", KindSauce, t0)
	if err != nil {
		t.Fatalf("PrepareIngredient() error = %v", err)
	}

	if _, _, err := s.TakeIngredient("p1", item.ID, "", t0); err != nil {
		t.Fatalf("TakeIngredient() error = %v", err)
	}
	if len(s.Prepared) != 0 {
		t.Fatalf("pool size after take = %d, want 0", len(s.Prepared))
	}
	if len(s.Players["p1"].Builder) != 1 {
		t.Fatalf("builder size = %d, want 1", len(s.Players["p1"].Builder))
	}

	// Taking the same unit twice is a stale reference.
	if _, _, err := s.TakeIngredient("p1", item.ID, "", t0); err != ErrIngredientNotFound {
		t.Fatalf("double take: err = %v, want ErrIngredientNotFound", err)
	}

	if _, err := s.BuildPizza("p1", "", t0); err != nil {
		t.Fatalf("BuildPizza() error = %v", err)
	}
	if len(s.Players["p1"].Builder) != 0 {
		t.Fatalf("builder not cleared after build")
	}
}

// Round 1 caps the take target to the caller regardless of the request;
// round 2 honors an explicit target.
func TestTakeIngredientTargetRule(t *testing.T) {
	s := roundState(t, 1, "p1", "p2")
	item, _ := s.PrepareIngredient("p1", KindHam, t0)

	_, target, err := s.TakeIngredient("p1", item.ID, "p2", t0)
	if err != nil {
		t.Fatalf("TakeIngredient() error = %v", err)
	}
	if target != "p1" {
		t.Fatalf("round 1 target = %q, want p1", target)
	}

	s2 := roundState(t, 2, "p1", "p2")
	item2, _ := s2.PrepareIngredient("p1", KindHam, t0)
	_, target, err = s2.TakeIngredient("p1", item2.ID, "p2", t0)
	if err != nil {
		t.Fatalf("TakeIngredient() error = %v", err)
	}
	if target != "p2" {
		t.Fatalf("round 2 target = %q, want p2", target)
	}
	if len(s2.Players["p2"].Builder) != 1 {
		t.Fatalf("p2 builder size = %d, want 1", len(s2.Players["p2"].Builder))
	}
}

func TestTakeIngredientUnknownTarget(t *testing.T) {
	s := roundState(t, 2, "p1")
	item, _ := s.PrepareIngredient("p1", KindHam, t0)
	if _, _, err := s.TakeIngredient("p1", item.ID, "ghost", t0); err != ErrUnknownPlayer {
		t.Fatalf("err = %v, want ErrUnknownPlayer", err)
	}
}

func fillBuilder(t *testing.T, s *State, player string, kinds ...IngredientKind) {
	t.Helper()
	for _, k := range kinds {
		item, err := s.PrepareIngredient(player, k, t0)
		if err != nil {
			t.Fatalf("PrepareIngredient(%s) error = %v", k, err)
		}
		if _, _, err := s.TakeIngredient(player, item.ID, player, t0); err != nil {
			t.Fatalf("TakeIngredient(%s) error = %v", k, err)
		}
	}
}

func TestBuildPizzaValidHamRecipe(t *testing.T) {
	s := roundState(t, 1, "p1")
	fillBuilder(t, s, "p1", KindBase, KindSauce, KindHam, KindHam, KindHam, KindHam)

	out, err := s.BuildPizza("p1", "", t0)
	if err != nil {
		t.Fatalf("BuildPizza() error = %v", err)
	}
	if out.Wasted {
		t.Fatal("4-ham pizza wasted, want built")
	}
	if out.Pizza.Type != TypeBacon {
		t.Fatalf("type = %q, want %q", out.Pizza.Type, TypeBacon)
	}
	if len(s.Built) != 1 || len(s.Wasted) != 0 {
		t.Fatalf("built=%d wasted=%d, want 1/0", len(s.Built), len(s.Wasted))
	}
}

func TestBuildPizzaSplitRecipe(t *testing.T) {
	s := roundState(t, 1, "p1")
	fillBuilder(t, s, "p1", KindBase, KindSauce, KindHam, KindHam, KindPineapple, KindPineapple)

	out, err := s.BuildPizza("p1", "", t0)
	if err != nil {
		t.Fatalf("BuildPizza() error = %v", err)
	}
	if out.Wasted || out.Pizza.Type != TypePineapple {
		t.Fatalf("outcome = %+v, want built %q", out, TypePineapple)
	}
}

func TestBuildPizzaInvalidComboWasted(t *testing.T) {
	s := roundState(t, 1, "p1")
	fillBuilder(t, s, "p1", KindBase, KindSauce, KindHam, KindHam, KindHam)

	out, err := s.BuildPizza("p1", "", t0)
	if err != nil {
		t.Fatalf("BuildPizza() error = %v", err)
	}
	if !out.Wasted || out.Pizza.Status != StatusInvalid {
		t.Fatalf("3-ham pizza: outcome = %+v, want invalid/wasted", out)
	}
	if len(s.Wasted) != 1 {
		t.Fatalf("wasted = %d, want 1", len(s.Wasted))
	}
	if len(s.LeadTimes) != 1 || s.LeadTimes[0].Status != "incomplete" {
		t.Fatalf("lead times = %+v, want one incomplete record", s.LeadTimes)
	}
}

func TestBuildPizzaEmptyBuilder(t *testing.T) {
	s := roundState(t, 1, "p1")
	if _, err := s.BuildPizza("p1", "", t0); err != ErrEmptyBuilder {
		t.Fatalf("err = %v, want ErrEmptyBuilder", err)
	}
}

// build_start_time anchors on the earliest prepared_at among consumed units.
func TestBuildStartIsEarliestPrepared(t *testing.T) {
	s := roundState(t, 1, "p1")
	early, _ := s.PrepareIngredient("p1", KindBase, t0)
	late, _ := s.PrepareIngredient("p1", KindSauce, t0.Add(20*time.Second))
	s.TakeIngredient("p1", late.ID, "", t0.Add(21*time.Second))
	s.TakeIngredient("p1", early.ID, "", t0.Add(22*time.Second))
	fillBuilder(t, s, "p1", KindHam, KindHam, KindHam, KindHam)

	out, err := s.BuildPizza("p1", "", t0.Add(30*time.Second))
	if err != nil {
		t.Fatalf("BuildPizza() error = %v", err)
	}
	if !out.Pizza.BuildStart.Equal(t0) {
		t.Fatalf("build start = %v, want %v", out.Pizza.BuildStart, t0)
	}
}

func TestRoundCounterWraps(t *testing.T) {
	s := NewState("kitchen-a", "secret", t0, DefaultSettings())
	s.AddPlayer("p1", t0)
	wantRounds := []int{2, 3, 1}
	for _, want := range wantRounds {
		if err := s.StartRound(t0, nil); err != nil {
			t.Fatalf("StartRound() error = %v", err)
		}
		if _, fired := s.EndRound(t0.Add(s.RoundDuration)); !fired {
			t.Fatal("EndRound did not fire")
		}
		if !s.ResetRound(t0.Add(s.RoundDuration + s.DebriefDuration)) {
			t.Fatal("ResetRound did not fire")
		}
		if s.Round != want {
			t.Fatalf("round = %d, want %d", s.Round, want)
		}
	}
}
