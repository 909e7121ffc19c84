// Package live provides the in-process change bus behind continuous query
// subscriptions. Repositories publish an event after every committed
// mutation; watchers re-run their query on each relevant event and emit a
// fresh snapshot.
package live

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Entity identifies which table an event originated from.
type Entity string

const (
	EntityGarment Entity = "garment"
	EntityOutfit  Entity = "outfit"
)

// Event describes a single committed mutation.
type Event struct {
	Entity Entity `json:"entity"`
	UserID string `json:"user_id"`
	ID     string `json:"id"`
}

// subscriberBuffer bounds how many undelivered events a subscriber may
// accumulate before further events are dropped for it.
const subscriberBuffer = 64

// Bus fans mutation events out to all active subscribers.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a new subscriber. The returned channel delivers every
// published event until ctx is cancelled, at which point it is closed.
func (b *Bus) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
		close(ch)
	}()

	return ch
}

// Publish delivers an event to all subscribers. A subscriber that has fallen
// subscriberBuffer events behind misses this one; its next snapshot query
// still reflects the write, so only intermediate states are lost.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			log.Warn().
				Str("entity", string(ev.Entity)).
				Str("user_id", ev.UserID).
				Msg("Dropping live event for slow subscriber")
		}
	}
}

// SubscriberCount reports the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
