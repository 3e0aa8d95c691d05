package events

import (
	"sync"

	"github.com/bogdang40/DouaInimi/internal/logger"
)

// Handler consumes one event. Handlers run on the dispatcher goroutine; a
// slow handler delays later events but never the publishing write path.
type Handler func(Event)

// Bus is an in-process event bus with a bounded queue. Publish never blocks:
// when the queue is full the event is dropped and logged, which honors the
// best-effort contract for notifications.
type Bus struct {
	queue    chan Event
	handlers []Handler
	mu       sync.RWMutex
	done     chan struct{}
	once     sync.Once
}

// NewBus creates a bus with the given queue capacity and starts dispatching.
func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = 256
	}
	b := &Bus{
		queue: make(chan Event, capacity),
		done:  make(chan struct{}),
	}
	go b.dispatch()
	return b
}

// Subscribe registers a handler for all events.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish enqueues an event without blocking.
func (b *Bus) Publish(ev Event) {
	select {
	case b.queue <- ev:
	default:
		logger.Warn("event queue full, dropping event", "type", ev.Type)
	}
}

// Close stops the dispatcher after draining queued events.
func (b *Bus) Close() {
	b.once.Do(func() { close(b.done) })
}

func (b *Bus) dispatch() {
	for {
		select {
		case ev := <-b.queue:
			b.deliver(ev)
		case <-b.done:
			// drain what is already queued
			for {
				select {
				case ev := <-b.queue:
					b.deliver(ev)
				default:
					return
				}
			}
		}
	}
}

func (b *Bus) deliver(ev Event) {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("event handler panicked", "type", ev.Type, "panic", r)
				}
			}()
			h(ev)
		}()
	}
}
