package session

// Guard is the only writer of a session's budget. Granting and spending go
// through it; handlers never touch the budget key directly.
type Guard struct {
	s *Session
}

// NewGuard wraps a session's budget field.
func NewGuard(s *Session) *Guard {
	return &Guard{s: s}
}

// Grant sets the session budget to amount. Called on the authorize
// handshake; this is a grant, not a spend, so no check applies.
func (g *Guard) Grant(amount int64) {
	g.s.Put(KeyBudget, amount)
}

// Budget returns the remaining budget, zero if none was granted.
func (g *Guard) Budget() (int64, bool) {
	return Get[int64](g.s, KeyBudget)
}

// CanSpend approves or denies spending amount and, on approval, debits the
// budget in the same critical section. Callers never observe a budget
// between check and debit. Denies the -1 sentinel (unspecified amount), any
// amount above the stored budget, and any spend before a budget was granted.
//
// The debit is committed before the downstream payment is attempted and is
// never refunded if that payment fails. Known quirk of the protocol: a
// failed payment burns budget.
func (g *Guard) CanSpend(amount int64) bool {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()

	budget, ok := g.s.values[KeyBudget].(int64)
	if amount == -1 || amount > budget {
		return false
	}
	if !ok {
		return false
	}
	g.s.values[KeyBudget] = budget - amount
	return true
}
