// Package session holds the per-bridge secrets an authorized page depends
// on: its spending budget, the session password, and the cached host public
// key. One Session exists per attached webview and dies with it; nothing is
// persisted across host restarts.
package session

import (
	"sync"

	"github.com/google/uuid"
)

// Value keys. The store is generic but the bridge only ever uses these.
const (
	KeyBudget   = "budget"
	KeyPassword = "password"
	KeyPubKey   = "pubkey"
)

// Session is a typed key/value store scoped to one bridge instance.
// Put overwrites unconditionally; Get treats a type mismatch the same as a
// missing key. There is no eviction.
type Session struct {
	id string

	mu     sync.Mutex
	values map[string]interface{}
}

// New creates an empty session.
func New() *Session {
	return &Session{
		id:     uuid.NewString(),
		values: make(map[string]interface{}),
	}
}

// ID returns the session's instance identifier, used for log correlation.
func (s *Session) ID() string {
	return s.id
}

// Put stores value under key, replacing any previous value.
func (s *Session) Put(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Get returns the value stored under key if it exists and has type T.
func Get[T any](s *Session, key string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key].(T)
	return v, ok
}
