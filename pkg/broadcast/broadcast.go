// Package broadcast fans vessel events out to live subscribers (SSE clients, gRPC watchers).
package broadcast

import (
	"sync"
	"sync/atomic"
	"time"

	"liyu1981.xyz/vessel-resource-service/pkg/models"
)

type EventType string

const (
	EventResourceUpdated   EventType = "resource.updated"
	EventAlertCreated      EventType = "alert.created"
	EventAlertAcknowledged EventType = "alert.acknowledged"
	EventAlertResolved     EventType = "alert.resolved"
	EventEngineStarted     EventType = "engine.started"
	EventEngineStopped     EventType = "engine.stopped"
)

const subscriberBuffer = 64

type Event struct {
	Type      EventType           `json:"type"`
	Resource  models.ResourceType `json:"resource,omitempty"`
	Level     *float64            `json:"level,omitempty"`
	Action    models.Action       `json:"action,omitempty"`
	Actor     string              `json:"actor,omitempty"`
	Alert     *models.Alert       `json:"alert,omitempty"`
	Engine    *models.EngineState `json:"engine,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// Publisher is what producers of events depend on.
type Publisher interface {
	Publish(e Event)
}

type Broadcaster struct {
	subscribers map[uint64]chan Event
	nextID      atomic.Uint64
	mu          sync.RWMutex
	closed      bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan Event),
	}
}

// Subscribe registers a buffered channel. The channel is closed by Unsubscribe or Close.
func (b *Broadcaster) Subscribe() (uint64, <-chan Event) {
	id := b.nextID.Add(1)
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subscribers[id] = ch
	}
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

// Publish never blocks. Subscribers whose buffer is full miss the event.
func (b *Broadcaster) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- e:
		default:
			// skip slow subscribers
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
	b.closed = true
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(Event) {}
