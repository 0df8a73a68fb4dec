package session

import "testing"

func TestPutOverwrites(t *testing.T) {
	s := New()
	s.Put(KeyPubKey, "first")
	s.Put(KeyPubKey, "second")

	got, ok := Get[string](s, KeyPubKey)
	if !ok || got != "second" {
		t.Errorf("expected overwritten value, got %q ok=%v", got, ok)
	}
}

func TestGetMissingKey(t *testing.T) {
	s := New()
	if _, ok := Get[string](s, KeyPassword); ok {
		t.Error("expected missing key to be absent")
	}
}

func TestGetTypeMismatch(t *testing.T) {
	s := New()
	s.Put(KeyBudget, "not a number")

	// A mismatch is absent, not an error.
	if _, ok := Get[int64](s, KeyBudget); ok {
		t.Error("expected type mismatch to be absent")
	}
}

func TestGuardGrantAndDebit(t *testing.T) {
	s := New()
	g := NewGuard(s)
	g.Grant(500)

	if !g.CanSpend(300) {
		t.Fatal("expected spend within budget to be approved")
	}
	budget, ok := g.Budget()
	if !ok || budget != 200 {
		t.Errorf("expected budget 200 after debit, got %d ok=%v", budget, ok)
	}
}

func TestGuardDeniesOverspendWithoutMutation(t *testing.T) {
	s := New()
	g := NewGuard(s)
	g.Grant(100)

	if g.CanSpend(150) {
		t.Fatal("expected overspend to be denied")
	}
	budget, _ := g.Budget()
	if budget != 100 {
		t.Errorf("denied spend must not mutate budget, got %d", budget)
	}
}

func TestGuardDeniesSentinel(t *testing.T) {
	s := New()
	g := NewGuard(s)
	g.Grant(1_000_000)

	if g.CanSpend(-1) {
		t.Error("expected -1 sentinel to always be denied")
	}
	budget, _ := g.Budget()
	if budget != 1_000_000 {
		t.Errorf("sentinel denial must not mutate budget, got %d", budget)
	}
}

func TestGuardDeniesWithoutGrant(t *testing.T) {
	g := NewGuard(New())
	if g.CanSpend(1) {
		t.Error("expected spend before any grant to be denied")
	}
	if g.CanSpend(0) {
		t.Error("expected zero spend before any grant to be denied")
	}
}

func TestGuardExactBudget(t *testing.T) {
	s := New()
	g := NewGuard(s)
	g.Grant(50)

	if !g.CanSpend(50) {
		t.Fatal("expected spend of exact budget to be approved")
	}
	budget, _ := g.Budget()
	if budget != 0 {
		t.Errorf("expected budget 0, got %d", budget)
	}
	if g.CanSpend(1) {
		t.Error("expected spend after exhaustion to be denied")
	}
}
