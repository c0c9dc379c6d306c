// Package events fans lesson transitions out to live observers and keeps a
// bounded history for replay.
package events

import (
	"sync"
	"time"
)

// Publisher accepts events. The lesson engine depends only on this.
type Publisher interface {
	Publish(event Event)
}

// EventBus provides publish/subscribe for lesson events.
type EventBus interface {
	Publisher
	Subscribe(filter ...EventType) <-chan Event
	Unsubscribe(ch <-chan Event)
	History(since time.Time) []Event
	SessionHistory(sessionID string) []Event
}

// DefaultMaxHistory bounds the retained history when no limit is given.
const DefaultMaxHistory = 10000

type subscriber struct {
	ch     chan Event
	filter map[EventType]bool // empty means all events
}

// MemoryBus is an in-memory EventBus. It is safe for concurrent use.
type MemoryBus struct {
	mu          sync.RWMutex
	subscribers []subscriber
	history     []Event
	maxHistory  int
}

// NewMemoryBus creates a bus that retains at most maxHistory events,
// dropping the oldest first. maxHistory <= 0 selects DefaultMaxHistory.
func NewMemoryBus(maxHistory int) *MemoryBus {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &MemoryBus{
		history:    make([]Event, 0, min(maxHistory, 256)),
		maxHistory: maxHistory,
	}
}

func (b *MemoryBus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.history = append(b.history, event)
	if over := len(b.history) - b.maxHistory; over > 0 {
		b.history = append(b.history[:0], b.history[over:]...)
	}

	// Unsubscribe closes channels under the same lock. Sends never block.
	for _, sub := range b.subscribers {
		if len(sub.filter) > 0 && !sub.filter[event.Type] {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			// Slow subscriber; drop rather than block the lesson.
		}
	}
}

func (b *MemoryBus) Subscribe(filter ...EventType) <-chan Event {
	ch := make(chan Event, 64)
	sub := subscriber{ch: ch}
	if len(filter) > 0 {
		sub.filter = make(map[EventType]bool, len(filter))
		for _, f := range filter {
			sub.filter[f] = true
		}
	}

	b.mu.Lock()
	b.subscribers = append(b.subscribers, sub)
	b.mu.Unlock()

	return ch
}

func (b *MemoryBus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscribers {
		if sub.ch == ch {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			close(sub.ch)
			return
		}
	}
}

// History returns retained events at or after since, oldest first.
func (b *MemoryBus) History(since time.Time) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var result []Event
	for _, e := range b.history {
		if !e.Timestamp.Before(since) {
			result = append(result, e)
		}
	}
	return result
}

// SessionHistory returns the retained events of one session, oldest first.
func (b *MemoryBus) SessionHistory(sessionID string) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var result []Event
	for _, e := range b.history {
		if e.SessionID == sessionID {
			result = append(result, e)
		}
	}
	return result
}
