// Package stream fans freshly compiled alerts out to live subscribers:
// websocket clients on the API and the monitor's log sink.
package stream

import (
	"sync"
	"sync/atomic"

	"github.com/mhtran-dev/go-flood-risk/internal/models"
)

// subscriberBuffer bounds each subscriber channel; one poll cycle never
// produces more alerts than this.
const subscriberBuffer = 100

type Broadcaster struct {
	subscribers map[uint64]chan models.Alert
	nextID      atomic.Uint64
	mu          sync.RWMutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan models.Alert),
	}
}

func (b *Broadcaster) Subscribe() (uint64, chan models.Alert) {
	id := b.nextID.Add(1)
	ch := make(chan models.Alert, subscriberBuffer)

	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

func (b *Broadcaster) Broadcast(a models.Alert) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- a:
		default:
			// Skip slow subscribers
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes all subscriber channels, causing streams to exit gracefully
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
