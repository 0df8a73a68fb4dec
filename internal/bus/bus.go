// Package bus is a small in-process pub/sub for host-wide notifications.
// The bridge publishes balance changes here so other host components (wallet
// header, tray badge) can react independently of the webview response path.
package bus

import "sync"

// EventBalanceChanged is published whenever an embedded app pushes a
// balance update through the bridge.
const EventBalanceChanged = "balanceChanged"

const subscriberBuffer = 16

// Bus fans events out to subscribers. Publishing never blocks: a subscriber
// that stops draining its channel misses events instead of stalling the
// bridge.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[uint64]chan string
	nextID      uint64
	closed      bool
}

// New creates an event bus.
func New() *Bus {
	return &Bus{subscribers: make(map[uint64]chan string)}
}

// Subscribe registers a listener. The returned cancel function removes the
// subscription and closes the channel.
func (b *Bus) Subscribe() (<-chan string, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan string, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	b.subscribers[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers event to every subscriber with room in its buffer.
func (b *Bus) Publish(event string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// Close tears down all subscriptions. Further publishes are no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
	}
}
